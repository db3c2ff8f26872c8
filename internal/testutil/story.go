package testutil

import (
	"fmt"
	"html"
	"strings"
	"testing"

	"github.com/roach88/taleweave/internal/story"
)

// PassageFixture describes one passage of a fixture story.
type PassageFixture struct {
	PID  int
	Name string
	Tags string
	Text string
}

// StoryFixture describes a fixture story document.
type StoryFixture struct {
	Name      string
	StartNode int
	Passages  []PassageFixture
	Scripts   []string
	Styles    []string
}

// HTML renders the fixture as a published story document, escaping passage
// text the way the story compiler does.
func (f StoryFixture) HTML() string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><title>")
	sb.WriteString(html.EscapeString(f.Name))
	sb.WriteString("</title></head><body>\n")
	fmt.Fprintf(&sb,
		`<tw-storydata name="%s" startnode="%d" creator="taleweave-test" creator-version="1.0.0" ifid="00000000-0000-4000-8000-000000000000" format="taleweave" format-version="1.0.0" hidden>`,
		html.EscapeString(f.Name), f.StartNode)
	sb.WriteString("\n")
	for _, s := range f.Styles {
		sb.WriteString(`<style role="stylesheet" id="twine-user-stylesheet" type="text/twine-css">`)
		sb.WriteString(s)
		sb.WriteString("</style>\n")
	}
	for _, s := range f.Scripts {
		sb.WriteString(`<script role="script" id="twine-user-script" type="text/x-starlark">`)
		sb.WriteString(s)
		sb.WriteString("</script>\n")
	}
	for _, p := range f.Passages {
		fmt.Fprintf(&sb, `<tw-passagedata pid="%d" name="%s" tags="%s" position="0,0" size="100,100">`,
			p.PID, html.EscapeString(p.Name), html.EscapeString(p.Tags))
		sb.WriteString(html.EscapeString(p.Text))
		sb.WriteString("</tw-passagedata>\n")
	}
	sb.WriteString("</tw-storydata>\n</body></html>\n")
	return sb.String()
}

// TwoPassageStory is the Start/Next story used across package tests.
func TwoPassageStory() StoryFixture {
	return StoryFixture{
		Name:      "Two Rooms",
		StartNode: 1,
		Passages: []PassageFixture{
			{PID: 1, Name: "Start", Text: "Hello [[Go->Next]]"},
			{PID: 2, Name: "Next", Tags: "chapter", Text: "You arrived."},
		},
	}
}

// Document parses the fixture's HTML, failing the test on error.
func (f StoryFixture) Document(t testing.TB) *story.Document {
	t.Helper()
	doc, err := story.Parse(strings.NewReader(f.HTML()))
	if err != nil {
		t.Fatalf("parse fixture %q: %v", f.Name, err)
	}
	return doc
}
