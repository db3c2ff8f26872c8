// Package engine implements the taleweave story runtime.
//
// A Runtime owns every per-story component: the passage repository, the
// state store, the event bus, the script environment, the render pipeline
// and the navigation controller. It is created once per loaded story and
// lives as long as the reader session; there is no teardown.
//
// LIFECYCLE:
//
//  1. New wires the components. Nothing is displayed.
//  2. Start injects the story's styles, attaches the configured external
//     stylesheets, runs the story's user scripts in document order and
//     shows the start passage.
//  3. Show and Undo drive navigation for the rest of the session.
//
// The Runtime is also the context handed to templates: it implements
// script.Host, so template code reaches the story only through it.
//
// Runtime is not safe for concurrent use. Callers that serve several
// goroutines (the HTTP server) serialise access themselves.
package engine
