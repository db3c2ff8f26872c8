// Package display defines the surface a runtime draws on.
//
// The runtime never touches a document model directly. It replaces the
// content of named regions, toggles the undo control and attaches styles
// through a Display. Page is the in-memory implementation used by the
// terminal player, the HTTP server and tests.
package display

// MainSelector names the region that holds the current passage.
const MainSelector = "#passage"

// Display is the drawing surface of a runtime.
type Display interface {
	// SetContent replaces the HTML of the region named by selector.
	SetContent(selector, html string)

	// SetUndoVisible shows or hides the undo control.
	SetUndoVisible(visible bool)

	// AppendStylesheet attaches an external stylesheet reference.
	AppendStylesheet(href string)

	// AppendStyle attaches an inline style block.
	AppendStyle(css string)
}
