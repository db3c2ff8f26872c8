package story

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Element and attribute names of the published story format.
const (
	elemStoryData   = "tw-storydata"
	elemPassageData = "tw-passagedata"
	elemScript      = "script"
	elemStyle       = "style"
)

// ErrNoStoryData is returned when the document has no story data element.
var ErrNoStoryData = errors.New("no " + elemStoryData + " element in document")

// Document is a parsed story document.
type Document struct {
	Name           string
	StartNode      int
	Creator        string
	CreatorVersion string
	IFID           string
	Format         string
	FormatVersion  string

	// Entries are the passage records in document order.
	Entries []Entry

	// Scripts and Styles are the embedded user blocks in document order.
	Scripts []string
	Styles  []string
}

// DocumentError reports a malformed story document.
type DocumentError struct {
	Element string
	Attr    string
	Message string
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("invalid %s %s: %s", e.Element, e.Attr, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Element, e.Message)
}

// LoadFile reads and parses a story document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open story: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse story %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a story document from r.
//
// The first story data element is used. Passage text is taken verbatim after
// HTML entity decoding, which undoes the escaping applied when the story was
// published.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	data := findElement(root, elemStoryData)
	if data == nil {
		return nil, ErrNoStoryData
	}

	doc := &Document{
		Name:           attr(data, "name"),
		Creator:        attr(data, "creator"),
		CreatorVersion: attr(data, "creator-version"),
		IFID:           attr(data, "ifid"),
		Format:         attr(data, "format"),
		FormatVersion:  attr(data, "format-version"),
	}

	start, err := intAttr(data, elemStoryData, "startnode")
	if err != nil {
		return nil, err
	}
	doc.StartNode = start

	var walkErr error
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case elemPassageData:
				entry, err := parseEntry(n)
				if err != nil {
					walkErr = err
					return
				}
				doc.Entries = append(doc.Entries, entry)
				return
			case elemScript:
				doc.Scripts = append(doc.Scripts, textContent(n))
				return
			case elemStyle:
				doc.Styles = append(doc.Styles, textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := data.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	if walkErr != nil {
		return nil, walkErr
	}

	return doc, nil
}

// Repository builds the passage repository for this document.
func (d *Document) Repository() *Repository {
	return NewRepository(d.Entries)
}

func parseEntry(n *html.Node) (Entry, error) {
	pid, err := intAttr(n, elemPassageData, "pid")
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:     pid,
		Name:   attr(n, "name"),
		Tags:   attr(n, "tags"),
		Source: textContent(n),
	}, nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func intAttr(n *html.Node, element, key string) (int, error) {
	raw := strings.TrimSpace(attr(n, key))
	if raw == "" {
		return 0, &DocumentError{Element: element, Attr: key, Message: "missing"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &DocumentError{Element: element, Attr: key, Message: fmt.Sprintf("not an integer: %q", raw)}
	}
	return v, nil
}

// textContent concatenates the text below n. Element children, which only
// appear in hand-written documents, are rendered back to markup.
func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			continue
		}
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
