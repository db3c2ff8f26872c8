package script

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/roach88/taleweave/internal/state"
	"github.com/roach88/taleweave/internal/story"
)

// fakeHost is a minimal Host backed by a repository.
type fakeHost struct {
	doc     *story.Document
	repo    *story.Repository
	env     *Env
	styles  []any
	history []string
}

func (h *fakeHost) Document() *story.Document                 { return h.doc }
func (h *fakeHost) PassageByName(n string) (story.Passage, bool) { return h.repo.ByName(n) }
func (h *fakeHost) PassageByID(id int) (story.Passage, bool)   { return h.repo.ByID(id) }
func (h *fakeHost) PassagesByTag(t string) []story.Passage     { return h.repo.ByTag(t) }
func (h *fakeHost) History() []string                          { return h.history }

func (h *fakeHost) Render(name string) (string, error) {
	p, ok := h.repo.ByName(name)
	if !ok {
		return "", story.NewNameLookupError(name)
	}
	return h.env.Evaluate(p)
}

func (h *fakeHost) ApplyExternalStylesValue(v any) error {
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("want list, got %T", v)
	}
	h.styles = append(h.styles, list...)
	return nil
}

func newTestEnv(t *testing.T, entries ...story.Entry) (*Env, *state.Store, *fakeHost) {
	t.Helper()
	doc := &story.Document{Name: "Test Story", StartNode: 1, Creator: "tests", Entries: entries}
	host := &fakeHost{doc: doc, repo: doc.Repository()}
	store := state.New()
	env := NewEnv(store, host)
	host.env = env
	return env, store, host
}

func evaluate(t *testing.T, env *Env, source string) string {
	t.Helper()
	out, err := env.Evaluate(story.NewPassage(1, "Here", []string{"room"}, source))
	require.NoError(t, err)
	return out
}

func TestEvaluate_PlainTextPassesThrough(t *testing.T) {
	env, _, _ := newTestEnv(t)
	src := "Hello [[Go->Next]]\n\n*emphasis* & <b>markup</b>"
	assert.Equal(t, src, evaluate(t, env, src))
}

func TestEvaluate_EchoExpressions(t *testing.T) {
	env, store, _ := newTestEnv(t)
	store.Set("gold", 3)
	store.Set("name", "Ada")

	tests := []struct {
		src  string
		want string
	}{
		{src: "Gold: <%= s.gold %>", want: "Gold: 3"},
		{src: "Hi <%= s.name %>!", want: "Hi Ada!"},
		{src: "<%= s.missing %>|", want: "|"},
		{src: "<%= s.gold * 2 + 1 %>", want: "7"},
		{src: "<%= 1.5 %>", want: "1.5"},
		{src: "<%= [1, 2] %>", want: "[1, 2]"},
		{src: "<%= 'yes' if s.gold > 2 else 'no' %>", want: "yes"},
		{src: "<%=s.name%><%=s.name%>", want: "AdaAda"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(t, env, tt.src))
		})
	}
}

func TestEvaluate_EscapedEcho(t *testing.T) {
	env, store, _ := newTestEnv(t)
	store.Set("html", `<i>"x"</i> & y`)

	assert.Equal(t, `<i>"x"</i> & y`, evaluate(t, env, "<%= s.html %>"))
	assert.Equal(t, "&lt;i&gt;&#34;x&#34;&lt;/i&gt; &amp; y", evaluate(t, env, "<%- s.html %>"))
}

func TestEvaluate_StatementsWriteStateAndPrint(t *testing.T) {
	env, store, _ := newTestEnv(t)
	var writes []string
	store.Subscribe(func(key string, value any) {
		writes = append(writes, fmt.Sprintf("%s=%v", key, value))
	})

	src := "A<% s.visits = (s.visits or 0) + 1 %>B<% print('n', s.visits) %>C"
	assert.Equal(t, "ABn 1C", evaluate(t, env, src))
	assert.Equal(t, "ABn 2C", evaluate(t, env, src))

	v, ok := store.Get("visits")
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, []string{"visits=1", "visits=2"}, writes)
}

func TestEvaluate_IndentedMultilineBlock(t *testing.T) {
	env, store, _ := newTestEnv(t)
	store.Set("lamp", true)

	src := "Room.\n<%\n    if s.lamp:\n        print('It is lit.')\n    else:\n        print('It is dark.')\n%>\nEnd."
	assert.Equal(t, "Room.\nIt is lit.\nEnd.", evaluate(t, env, src))
}

func TestEvaluate_GlobalsCarryAcrossBlocks(t *testing.T) {
	env, _, _ := newTestEnv(t)
	src := "<% x = 20 %><% y = x + 1 %><%= x + y %>"
	assert.Equal(t, "41", evaluate(t, env, src))

	// Block globals do not leak into the next render.
	_, err := env.Evaluate(story.NewPassage(2, "Other", nil, "<%= x %>"))
	require.Error(t, err)
}

func TestEvaluate_StateMappingAccess(t *testing.T) {
	env, store, _ := newTestEnv(t)

	out := evaluate(t, env, `<% s["door"] = "open" %><%= "door" in s %>,<%= "key" in s %>,<%= s.get("key", "none") %>,<%= s["door"] %>`)
	assert.Equal(t, "True,False,none,open", out)

	v, _ := store.Get("door")
	assert.Equal(t, "open", v)

	_, err := env.Evaluate(story.NewPassage(1, "Here", nil, `<%= s["key"] %>`))
	require.Error(t, err, "subscripting a missing key raises")
}

func TestEvaluate_StoredListsAreShared(t *testing.T) {
	env, store, _ := newTestEnv(t)
	calls := 0
	store.Subscribe(func(string, any) { calls++ })

	out := evaluate(t, env, "<% s.items = [] %><% s.items.append('lamp') %><%= len(s.items) %>")
	assert.Equal(t, "1", out)
	assert.Equal(t, 1, calls, "in-place append is not observed")

	v, _ := store.Get("items")
	assert.Equal(t, []any{"lamp"}, ToGo(v))
}

func TestEvaluate_PassageObject(t *testing.T) {
	env, _, _ := newTestEnv(t)
	out := evaluate(t, env, "<%= passage.id %> <%= passage.name %> <%= ','.join(passage.tags) %>")
	assert.Equal(t, "1 Here room", out)
}

func TestEvaluate_StoryObject(t *testing.T) {
	env, _, host := newTestEnv(t,
		story.Entry{ID: 1, Name: "Start", Source: "start"},
		story.Entry{ID: 2, Name: "Next", Tags: "chapter", Source: "Gold is <%= s.gold %>"},
		story.Entry{ID: 3, Name: "Later", Tags: "chapter", Source: "later"},
	)
	host.history = []string{"Next"}

	tests := []struct {
		src  string
		want string
	}{
		{src: "<%= story.name %>/<%= story.start %>/<%= story.creator %>", want: "Test Story/1/tests"},
		{src: "<%= story.passage('Next').id %>", want: "2"},
		{src: "<%= story.passage('Missing') %>|", want: "|"},
		{src: "<%= story.passage_by_id(3).name %>", want: "Later"},
		{src: "<%= [p.name for p in story.passages_by_tag('chapter')] %>", want: `["Next", "Later"]`},
		{src: "<%= len(story.passages_by_tag('none')) %>", want: "0"},
		{src: "<% s.gold = 5 %><%= story.render('Next') %>", want: "Gold is 5"},
		{src: "<%= story.history() %>", want: `["Next"]`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(t, env, tt.src))
		})
	}
}

func TestEvaluate_StoryRenderLookupFailure(t *testing.T) {
	env, _, _ := newTestEnv(t)
	_, err := env.Evaluate(story.NewPassage(1, "Here", nil, "<%= story.render('Missing') %>"))
	require.Error(t, err)
	assert.True(t, story.IsLookupError(err))
}

func TestEvaluate_ApplyExternalStylesForwardsValue(t *testing.T) {
	env, _, host := newTestEnv(t)
	evaluate(t, env, "<% story.apply_external_styles(['a.css', 'b.css']) %>")
	assert.Equal(t, []any{"a.css", "b.css"}, host.styles)

	_, err := env.Evaluate(story.NewPassage(1, "Here", nil, "<% story.apply_external_styles('a.css') %>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want list, got string")
}

func TestEvaluate_RecursionIsBounded(t *testing.T) {
	env, _, _ := newTestEnv(t, story.Entry{ID: 1, Name: "Loop", Source: "<%= story.render('Loop') %>"})
	_, err := env.Evaluate(story.NewPassage(1, "Loop", nil, "<%= story.render('Loop') %>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRenderDepth))
}

func TestEvaluate_Errors(t *testing.T) {
	env, _, _ := newTestEnv(t)

	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{name: "unterminated", src: "ok\n<%= s.x", wantLine: 2, wantMsg: "unterminated <% block"},
		{name: "empty expression", src: "<%= %>", wantLine: 1, wantMsg: "empty expression"},
		{name: "undefined name", src: "line1\nline2\n<%= nope %>", wantLine: 3, wantMsg: "undefined: nope"},
		{name: "runtime failure", src: "<% fail('boom') %>", wantLine: 1, wantMsg: "boom"},
		{name: "syntax error", src: "<% if %>", wantLine: 1, wantMsg: "Here:1:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Evaluate(story.NewPassage(1, "Here", nil, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var te *TemplateError
			var ee *EvalError
			switch {
			case errors.As(err, &te):
				assert.Equal(t, tt.wantLine, te.Line)
			case errors.As(err, &ee):
				assert.Equal(t, tt.wantLine, ee.Line)
				assert.Equal(t, "Here", ee.Source)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
		})
	}
}

func TestExec_DefinesSharedGlobals(t *testing.T) {
	env, store, _ := newTestEnv(t)

	err := env.Exec("user script 1", "s.gold = 10\ndef greet(name):\n    return 'Hello, ' + name\n")
	require.NoError(t, err)

	v, _ := store.Get("gold")
	assert.Equal(t, int64(10), v)
	assert.Equal(t, "Hello, Ada", evaluate(t, env, "<%= greet('Ada') %>"))

	require.NoError(t, env.Exec("user script 2", "bonus = greet('Bo')"))
	assert.Equal(t, "Hello, Bo", evaluate(t, env, "<%= bonus %>"))
}

func TestExec_Error(t *testing.T) {
	env, _, _ := newTestEnv(t)
	err := env.Exec("user script 1", "x = 1 // 0")
	require.Error(t, err)

	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "user script 1", ee.Source)
	assert.Equal(t, 0, ee.Line)
}

func TestConversions(t *testing.T) {
	assert.Equal(t, starlark.None, ToStarlark(nil))
	assert.Equal(t, starlark.String("x"), ToStarlark("x"))
	assert.Equal(t, starlark.MakeInt(3), ToStarlark(3))
	assert.Equal(t, starlark.Bool(true), ToStarlark(true))
	assert.Equal(t, "[1, \"a\"]", ToStarlark([]any{1, "a"}).String())

	assert.Nil(t, fromStarlark(starlark.None))
	assert.Equal(t, int64(4), fromStarlark(starlark.MakeInt(4)))
	assert.Equal(t, 2.5, fromStarlark(starlark.Float(2.5)))

	d := starlark.NewDict(1)
	require.NoError(t, d.SetKey(starlark.String("k"), starlark.NewList([]starlark.Value{starlark.MakeInt(1)})))
	assert.Equal(t, map[string]any{"k": []any{int64(1)}}, ToGo(d))
	assert.Equal(t, []any{"a", int64(2)}, ToGo(starlark.Tuple{starlark.String("a"), starlark.MakeInt(2)}))
	assert.Equal(t, "x", ToGo("x"))
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "", dedent("  \n \n"))
	assert.Equal(t, "x = 1\n", dedent(" x = 1"))
	assert.Equal(t, "if a:\n  b()\nc()\n", dedent("\n    if a:\n      b()\n    c()\n  "))
	assert.Equal(t, "a\n\nb\n", dedent("\t\ta\n\n\t\tb"))
}

func TestParseTemplate(t *testing.T) {
	segs, err := parseTemplate("a\n<%= x %>b<%- y %>\n<% z %>")
	require.NoError(t, err)
	require.Len(t, segs, 6)

	assert.Equal(t, segment{kind: segText, text: "a\n", line: 1}, segs[0])
	assert.Equal(t, segment{kind: segEcho, text: " x ", line: 2}, segs[1])
	assert.Equal(t, segment{kind: segText, text: "b", line: 2}, segs[2])
	assert.Equal(t, segment{kind: segEscape, text: " y ", line: 2}, segs[3])
	assert.Equal(t, segment{kind: segText, text: "\n", line: 2}, segs[4])
	assert.Equal(t, segment{kind: segCode, text: " z ", line: 3}, segs[5])
}
