// Package script evaluates passage templates and user scripts with Starlark.
//
// # Templates
//
// A passage source is plain text with three kinds of embedded blocks:
//
//	<%= expr %>   substitutes str(expr); strings are not quoted, None is empty
//	<%- expr %>   substitutes the HTML-escaped str(expr)
//	<% stmts %>   executes statements; print(...) output is substituted in place
//
// Statement blocks must be complete on their own. Globals they define are
// visible to later blocks of the same render.
//
// # Predeclared names
//
//	s        the state store: s.key, s["key"], s.key = v, "key" in s, s.get(key, default)
//	story    the runtime API: name, start, creator, creator_version, ifid,
//	         passage(name), passage_by_id(id), passages_by_tag(tag), render(name),
//	         apply_external_styles(list), history()
//	passage  the passage being rendered: id, name, tags, source (templates only)
//
// Globals defined by user scripts are visible to every template.
//
// # Values
//
// Scalars written to the store are converted to Go (string, int64, float64,
// bool, nil). Lists, dicts and other Starlark values are stored as-is, so
// mutating them in place changes the stored value without notifying
// subscribers.
package script
