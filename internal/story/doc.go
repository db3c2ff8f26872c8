// Package story holds the immutable passage model of a compiled story.
//
// A Document is parsed once from published story HTML. Its entries become a
// Repository of Passages that lives for the rest of the process. Passages are
// leaves: they never point at each other. Links between passages are plain
// names inside the source text and are resolved through the Repository at
// render or navigation time.
//
// Lookups are first-match in document order. Duplicate ids or names are
// accepted as-is; use the lint package to report them.
package story
