package story

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ps []Passage) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func sampleEntries() []Entry {
	return []Entry{
		{ID: 1, Name: "Start", Source: "Hello [[Go->Next]]"},
		{ID: 2, Name: "Next", Tags: "chapter", Source: "You arrived."},
		{ID: 3, Name: "Cellar", Tags: "  dark   chapter ", Source: "Damp."},
		{ID: 4, Name: "Attic", Tags: "dark", Source: "Dusty."},
	}
}

func TestNewRepository_PreservesDocumentOrder(t *testing.T) {
	r := NewRepository(sampleEntries())

	assert.Equal(t, 4, r.Len())
	if diff := cmp.Diff([]string{"Start", "Next", "Cellar", "Attic"}, names(r.All())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRepository_SplitsTagsOnWhitespace(t *testing.T) {
	r := NewRepository(sampleEntries())

	p, ok := r.ByName("Cellar")
	require.True(t, ok)
	assert.Equal(t, []string{"dark", "chapter"}, p.Tags())

	start, ok := r.ByName("Start")
	require.True(t, ok)
	assert.Empty(t, start.Tags())
	assert.NotNil(t, start.Tags())
}

func TestRepository_ByID(t *testing.T) {
	r := NewRepository(sampleEntries())

	for _, e := range sampleEntries() {
		p, ok := r.ByID(e.ID)
		require.True(t, ok, "id %d", e.ID)
		assert.Equal(t, e.ID, p.ID)
		assert.Equal(t, e.Name, p.Name)
	}

	for _, id := range []int{0, -1, 5, 1000} {
		_, ok := r.ByID(id)
		assert.False(t, ok, "id %d should be absent", id)
	}
}

func TestRepository_ByName(t *testing.T) {
	r := NewRepository(sampleEntries())

	for _, e := range sampleEntries() {
		p, ok := r.ByName(e.Name)
		require.True(t, ok, "name %q", e.Name)
		assert.Equal(t, e.Name, p.Name)
		assert.Equal(t, e.Source, p.Source)
	}

	for _, name := range []string{"", "start", "Missing", "Start "} {
		_, ok := r.ByName(name)
		assert.False(t, ok, "name %q should be absent", name)
	}
}

func TestRepository_ByTag(t *testing.T) {
	r := NewRepository(sampleEntries())

	tests := []struct {
		tag  string
		want []string
	}{
		{tag: "chapter", want: []string{"Next", "Cellar"}},
		{tag: "dark", want: []string{"Cellar", "Attic"}},
		{tag: "missing", want: []string{}},
		{tag: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := r.ByTag(tt.tag)
			require.NotNil(t, got)
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("ByTag(%q) mismatch (-want +got):\n%s", tt.tag, diff)
			}
			for _, p := range got {
				assert.True(t, p.HasTag(tt.tag))
			}
		})
	}
}

func TestRepository_ByTagIsDisjointFromUntagged(t *testing.T) {
	r := NewRepository(sampleEntries())

	tagged := map[string]bool{}
	for _, p := range r.ByTag("chapter") {
		tagged[p.Name] = true
	}
	for _, p := range r.All() {
		assert.Equal(t, p.HasTag("chapter"), tagged[p.Name], p.Name)
	}
}

func TestRepository_DuplicatesAreFirstMatch(t *testing.T) {
	r := NewRepository([]Entry{
		{ID: 7, Name: "Twin", Source: "first"},
		{ID: 7, Name: "Other", Source: "second id 7"},
		{ID: 8, Name: "Twin", Source: "second Twin"},
	})

	assert.Equal(t, 3, r.Len())

	p, ok := r.ByID(7)
	require.True(t, ok)
	assert.Equal(t, "first", p.Source)

	p, ok = r.ByName("Twin")
	require.True(t, ok)
	assert.Equal(t, "first", p.Source)

	p, ok = r.ByID(8)
	require.True(t, ok)
	assert.Equal(t, "second Twin", p.Source)
}

func TestPassage_TagsReturnsCopy(t *testing.T) {
	p := NewPassage(1, "A", []string{"x", "y"}, "")
	tags := p.Tags()
	tags[0] = "mutated"

	assert.Equal(t, []string{"x", "y"}, p.Tags())
	assert.True(t, p.HasTag("x"))
	assert.False(t, p.HasTag("mutated"))
}

func TestRepository_AllReturnsCopy(t *testing.T) {
	r := NewRepository(sampleEntries())
	all := r.All()
	all[0] = NewPassage(99, "Replaced", nil, "")

	p, ok := r.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "Start", p.Name)
	assert.Equal(t, "Start", r.All()[0].Name)
}

func TestLookupError(t *testing.T) {
	err := NewNameLookupError("Missing")
	assert.EqualError(t, err, `passage not found: "Missing"`)
	assert.True(t, IsLookupError(err))

	idErr := NewIDLookupError(42)
	assert.EqualError(t, idErr, "passage not found: id 42")

	wrapped := wrapErr(idErr)
	assert.True(t, IsLookupError(wrapped))
	assert.False(t, IsLookupError(assert.AnError))
}

func wrapErr(err error) error {
	return fmt.Errorf("show: %w", err)
}
