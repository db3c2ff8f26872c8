package script

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"maps"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/roach88/taleweave/internal/state"
	"github.com/roach88/taleweave/internal/story"
)

// DefaultMaxDepth bounds nested story.render calls.
const DefaultMaxDepth = 32

// fileOptions enables the dialect features passage authors expect:
// top-level if/for, while loops, sets, recursion, and redefining globals
// across blocks.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Env evaluates templates and scripts against one store and one host.
// It is created once per runtime.
type Env struct {
	store    *state.Store
	host     Host
	logger   *slog.Logger
	maxDepth int

	state   starlark.Value
	story   starlark.Value
	globals starlark.StringDict // defined by user scripts
	depth   int
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger sets the logger that receives print() output from user scripts.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.logger = l
	}
}

// WithMaxDepth bounds nested template renders.
func WithMaxDepth(depth int) EnvOption {
	return func(e *Env) {
		e.maxDepth = depth
	}
}

// NewEnv creates an Env bound to store and host.
func NewEnv(store *state.Store, host Host, opts ...EnvOption) *Env {
	e := &Env{
		store:    store,
		host:     host,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
		state:    &stateValue{store: store},
		globals:  starlark.StringDict{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// predeclared returns a fresh environment for one evaluation.
// The story object is built lazily because the host may still be under
// construction when the Env is created.
func (e *Env) predeclared(p *story.Passage) starlark.StringDict {
	if e.story == nil {
		e.story = storyValue(e.host)
	}
	env := maps.Clone(e.globals)
	env["s"] = e.state
	env["story"] = e.story
	if p != nil {
		env["passage"] = passageValue(*p)
	}
	return env
}

// Exec runs a user script. Globals it defines become visible to every later
// script and template. print() output goes to the logger.
func (e *Env) Exec(name, src string) error {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			e.logger.Info("script print", "script", name, "msg", msg)
		},
	}

	globals, err := starlark.ExecFileOptions(fileOptions, thread, name, src, e.predeclared(nil))
	if err != nil {
		return &EvalError{Source: name, Err: err}
	}
	maps.Copy(e.globals, globals)
	return nil
}

// Evaluate expands the template in p.Source and returns the substituted text.
// Any failure aborts the whole evaluation; partial output is discarded.
func (e *Env) Evaluate(p story.Passage) (string, error) {
	if e.depth >= e.maxDepth {
		return "", &EvalError{Source: p.Name, Err: ErrRenderDepth}
	}
	e.depth++
	defer func() { e.depth-- }()

	segs, err := parseTemplate(p.Source)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	thread := &starlark.Thread{
		Name: "passage " + p.Name,
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
		},
	}
	env := e.predeclared(&p)

	for _, seg := range segs {
		switch seg.kind {
		case segText:
			out.WriteString(seg.text)

		case segEcho, segEscape:
			expr := strings.TrimSpace(seg.text)
			if expr == "" {
				return "", &TemplateError{Line: seg.line, Message: "empty expression"}
			}
			v, err := starlark.EvalOptions(fileOptions, thread, p.Name, expr, env)
			if err != nil {
				return "", &EvalError{Source: p.Name, Line: seg.line, Err: err}
			}
			s := displayString(v)
			if seg.kind == segEscape {
				s = html.EscapeString(s)
			}
			out.WriteString(s)

		case segCode:
			code := dedent(seg.text)
			if code == "" {
				continue
			}
			globals, err := starlark.ExecFileOptions(fileOptions, thread, p.Name, code, env)
			if err != nil {
				return "", &EvalError{Source: p.Name, Line: seg.line, Err: err}
			}
			maps.Copy(env, globals)

		default:
			return "", fmt.Errorf("unknown segment kind %d", seg.kind)
		}
	}

	return out.String(), nil
}
