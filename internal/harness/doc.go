// Package harness runs scripted playthroughs of a story.
//
// A scenario is a YAML file naming a story document, optional initial state,
// a list of reader steps and assertions over the outcome:
//
//	name: two_rooms_round_trip
//	description: Follow the only link, then undo back to the start.
//	story: ../stories/two_rooms.html
//	steps:
//	  - click: Go
//	  - undo: true
//	  - show: Missing
//	    expect_error: lookup
//	assertions:
//	  - type: history
//	    passages: []
//	  - type: undo_visible
//	    visible: false
//
// Each run gets a fresh runtime, an in-memory display and an in-memory
// journal stamped by a deterministic clock, so traces are reproducible and
// can be compared against golden files with RunWithGolden.
package harness
