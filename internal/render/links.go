package render

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// LinkClass is the class carried by every annotated passage link.
const LinkClass = "passage-link"

// TargetAttr holds the escaped destination passage name.
const TargetAttr = "data-passage"

var linkPattern = regexp.MustCompile(`(?s)\[\[(.*?)\]\]`)

// Link is an annotated passage link read back from rendered HTML.
type Link struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

// EscapeTarget encodes a passage name for an HTML attribute.
// UnescapeTarget(EscapeTarget(s)) == s for every string s.
func EscapeTarget(name string) string {
	return html.EscapeString(name)
}

// UnescapeTarget decodes a name written by EscapeTarget.
func UnescapeTarget(attr string) string {
	return html.UnescapeString(attr)
}

// ParseLink splits the inside of a [[...]] reference into display text and
// target. Supported forms, in precedence order:
//
//	[[text->target]]  rightmost "->"
//	[[target<-text]]  leftmost "<-"
//	[[text|target]]
//	[[target]]
func ParseLink(inner string) (text, target string) {
	if i := strings.LastIndex(inner, "->"); i >= 0 {
		return inner[:i], inner[i+len("->"):]
	}
	if i := strings.Index(inner, "<-"); i >= 0 {
		return inner[i+len("<-"):], inner[:i]
	}
	if i := strings.Index(inner, "|"); i >= 0 {
		return inner[:i], inner[i+1:]
	}
	return inner, inner
}

// Placeholders stand in for [[...]] references while the markup stage runs.
// They use private-use code points, which Markdown gives no meaning.
const (
	refOpen  = "\uE000"
	refClose = "\uE001"
)

var refPattern = regexp.MustCompile(`\x{E000}(\d+)\x{E001}`)

// LinkRefs are the [[...]] references lifted out of passage source, in
// source order.
type LinkRefs []string

// ExtractLinks replaces every [[...]] reference in src with a placeholder and
// returns the references. Reference text is kept exactly as written.
func ExtractLinks(src string) (string, LinkRefs) {
	var refs LinkRefs
	out := linkPattern.ReplaceAllStringFunc(src, func(m string) string {
		refs = append(refs, linkPattern.FindStringSubmatch(m)[1])
		return refOpen + strconv.Itoa(len(refs)-1) + refClose
	})
	return out, refs
}

// Annotate rewrites every placeholder in rendered HTML into a clickable
// element for its reference.
func (refs LinkRefs) Annotate(src string) (string, error) {
	var firstErr error
	out := refPattern.ReplaceAllStringFunc(src, func(m string) string {
		if firstErr != nil {
			return m
		}
		i, err := strconv.Atoi(refPattern.FindStringSubmatch(m)[1])
		if err != nil || i >= len(refs) {
			return m
		}

		text, target := ParseLink(refs[i])
		if target == "" {
			firstErr = &LinkError{Raw: refs[i], Message: "empty target"}
			return m
		}
		return anchor(text, target)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// AnnotateLinks rewrites every [[...]] reference in src into a clickable
// element without any markup stage in between.
func AnnotateLinks(src string) (string, error) {
	body, refs := ExtractLinks(src)
	return refs.Annotate(body)
}

func anchor(text, target string) string {
	var b strings.Builder
	b.WriteString(`<a href="javascript:void(0)" class="`)
	b.WriteString(LinkClass)
	b.WriteString(`" `)
	b.WriteString(TargetAttr)
	b.WriteString(`="`)
	b.WriteString(EscapeTarget(target))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString(`</a>`)
	return b.String()
}

// Links returns the annotated passage links in rendered HTML, in document
// order, with targets unescaped.
func Links(src string) []Link {
	var links []Link
	z := html.NewTokenizer(strings.NewReader(src))

	var cur *Link
	var text strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links

		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != "a" || cur != nil {
				continue
			}
			target, ok := linkTarget(tok)
			if !ok {
				continue
			}
			cur = &Link{Target: target}
			text.Reset()

		case html.TextToken:
			if cur != nil {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			if cur == nil {
				continue
			}
			if name, _ := z.TagName(); string(name) == "a" {
				cur.Text = text.String()
				links = append(links, *cur)
				cur = nil
			}
		}
	}
}

// linkTarget returns the target of a passage link start tag. The tokenizer
// has already decoded the attribute value.
func linkTarget(tok html.Token) (string, bool) {
	var target string
	var found, isLink bool
	for _, a := range tok.Attr {
		switch a.Key {
		case TargetAttr:
			target, found = a.Val, true
		case "class":
			isLink = strings.Contains(" "+a.Val+" ", " "+LinkClass+" ")
		}
	}
	return target, found && isLink
}
