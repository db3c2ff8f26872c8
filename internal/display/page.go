package display

import (
	"maps"
	"slices"
)

// Page is an in-memory Display.
type Page struct {
	regions     map[string]string
	undoVisible bool
	stylesheets []string
	styles      []string
	updates     int
}

var _ Display = (*Page)(nil)

// NewPage creates an empty page with the undo control hidden.
func NewPage() *Page {
	return &Page{regions: make(map[string]string)}
}

// SetContent implements Display.
func (p *Page) SetContent(selector, html string) {
	p.regions[selector] = html
	p.updates++
}

// SetUndoVisible implements Display.
func (p *Page) SetUndoVisible(visible bool) {
	p.undoVisible = visible
}

// AppendStylesheet implements Display.
func (p *Page) AppendStylesheet(href string) {
	p.stylesheets = append(p.stylesheets, href)
}

// AppendStyle implements Display.
func (p *Page) AppendStyle(css string) {
	p.styles = append(p.styles, css)
}

// Content returns the HTML last written to selector.
func (p *Page) Content(selector string) string {
	return p.regions[selector]
}

// Text returns the content of selector as plain text.
func (p *Page) Text(selector string) string {
	return Text(p.regions[selector])
}

// UndoVisible reports whether the undo control is shown.
func (p *Page) UndoVisible() bool {
	return p.undoVisible
}

// Stylesheets returns the attached stylesheet references in order.
func (p *Page) Stylesheets() []string {
	return slices.Clone(p.stylesheets)
}

// Styles returns the attached style blocks in order.
func (p *Page) Styles() []string {
	return slices.Clone(p.styles)
}

// Selectors returns the names of all written regions, sorted.
func (p *Page) Selectors() []string {
	return slices.Sorted(maps.Keys(p.regions))
}

// Updates counts SetContent calls.
func (p *Page) Updates() int {
	return p.updates
}
