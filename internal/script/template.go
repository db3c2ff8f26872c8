package script

import (
	"strings"
)

type segmentKind int

const (
	segText   segmentKind = iota
	segEcho               // <%= expr %>
	segEscape             // <%- expr %>
	segCode               // <% stmts %>
)

// segment is one piece of a parsed template. Line is 1-based and refers to
// the line of the opening delimiter.
type segment struct {
	kind segmentKind
	text string
	line int
}

const (
	openDelim  = "<%"
	closeDelim = "%>"
)

// parseTemplate splits src into text and code segments.
func parseTemplate(src string) ([]segment, error) {
	var segs []segment
	line := 1
	rest := src

	for {
		i := strings.Index(rest, openDelim)
		if i < 0 {
			if rest != "" {
				segs = append(segs, segment{kind: segText, text: rest, line: line})
			}
			return segs, nil
		}

		if i > 0 {
			segs = append(segs, segment{kind: segText, text: rest[:i], line: line})
			line += strings.Count(rest[:i], "\n")
		}
		rest = rest[i+len(openDelim):]

		kind := segCode
		switch {
		case strings.HasPrefix(rest, "="):
			kind = segEcho
			rest = rest[1:]
		case strings.HasPrefix(rest, "-"):
			kind = segEscape
			rest = rest[1:]
		}

		j := strings.Index(rest, closeDelim)
		if j < 0 {
			return nil, &TemplateError{Line: line, Message: "unterminated " + openDelim + " block"}
		}

		segs = append(segs, segment{kind: kind, text: rest[:j], line: line})
		line += strings.Count(rest[:j], "\n")
		rest = rest[j+len(closeDelim):]
	}
}

// dedent removes leading and trailing blank lines and the indentation common
// to all remaining non-blank lines, so a statement block may be indented to
// match the surrounding text.
func dedent(code string) string {
	lines := strings.Split(code, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}
	return strings.Join(lines, "\n") + "\n"
}
