package display

import (
	"strings"

	"golang.org/x/net/html"
)

// breakTags end the current line.
var breakTags = map[string]bool{
	"br": true, "div": true, "li": true, "tr": true, "td": true, "th": true,
	"dd": true, "dt": true, "hr": true,
}

// blockTags end the current line and leave a blank line after.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "dl": true, "table": true, "blockquote": true, "pre": true,
}

// Text converts an HTML fragment to plain text: whitespace is collapsed,
// blocks are separated by a blank line and list items are prefixed with "- ".
// Script and style content is dropped.
func Text(src string) string {
	var w textWriter
	z := html.NewTokenizer(strings.NewReader(src))
	skip := ""

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			w.flush()
			return strings.Join(w.lines, "\n")

		case html.TextToken:
			if skip == "" {
				w.text(string(z.Text()))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skip = tag
				}
			case blockTags[tag]:
				w.flush()
				w.gap = true
			case breakTags[tag]:
				w.flush()
			}
			if tag == "li" {
				w.cur.WriteString("- ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == skip:
				skip = ""
			case blockTags[tag]:
				w.flush()
				w.gap = true
			case breakTags[tag]:
				w.flush()
			}
		}
	}
}

type textWriter struct {
	lines []string
	cur   strings.Builder
	gap   bool
}

func (w *textWriter) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			w.space()
		}
		return
	}
	if startsWithSpace(s) {
		w.space()
	}
	w.cur.WriteString(strings.Join(fields, " "))
	if endsWithSpace(s) {
		w.space()
	}
}

func (w *textWriter) space() {
	if cur := w.cur.String(); cur != "" && !strings.HasSuffix(cur, " ") {
		w.cur.WriteByte(' ')
	}
}

func (w *textWriter) flush() {
	line := strings.TrimSpace(w.cur.String())
	w.cur.Reset()
	if line == "-" {
		// A list item whose text sits in a nested block keeps its marker.
		w.cur.WriteString("- ")
		return
	}
	if line == "" {
		return
	}
	if w.gap && len(w.lines) > 0 {
		w.lines = append(w.lines, "")
	}
	w.gap = false
	w.lines = append(w.lines, line)
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s, " \t\r\n") != s
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s, " \t\r\n") != s
}
