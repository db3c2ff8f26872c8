package story

import (
	"slices"
	"strings"
)

// Entry is a raw passage record as it appears in a story document.
// Tags is the whitespace-separated tags attribute; empty means no tags.
type Entry struct {
	ID     int
	Name   string
	Tags   string
	Source string
}

// Passage is a single unit of narrative content.
// Passages are values; the tag set is private so it cannot be changed after load.
type Passage struct {
	ID     int
	Name   string
	Source string

	tags []string
}

// NewPassage creates a passage with the given tags.
func NewPassage(id int, name string, tags []string, source string) Passage {
	return Passage{
		ID:     id,
		Name:   name,
		Source: source,
		tags:   slices.Clone(tags),
	}
}

// passageFromEntry splits the entry's tags attribute on whitespace.
func passageFromEntry(e Entry) Passage {
	return Passage{
		ID:     e.ID,
		Name:   e.Name,
		Source: e.Source,
		tags:   strings.Fields(e.Tags),
	}
}

// Tags returns a copy of the passage's tags.
func (p Passage) Tags() []string {
	if len(p.tags) == 0 {
		return []string{}
	}
	return slices.Clone(p.tags)
}

// HasTag reports whether the passage carries tag.
func (p Passage) HasTag(tag string) bool {
	return slices.Contains(p.tags, tag)
}
