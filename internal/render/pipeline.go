// Package render turns passage source into displayable HTML.
//
// A render runs three stages in a fixed order: template expressions are
// evaluated against the state store, the result is converted from Markdown
// to HTML, and passage links are annotated with their target. A failure in
// any stage aborts the render with a *RenderError and no output.
//
// Link references are lifted out before the Markdown conversion and restored
// by the link stage, so Markdown never rewrites a target.
package render

import (
	"github.com/roach88/taleweave/internal/story"
)

// Evaluator expands template expressions in a passage's source.
type Evaluator interface {
	Evaluate(p story.Passage) (string, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(p story.Passage) (string, error)

// Evaluate calls f(p).
func (f EvaluatorFunc) Evaluate(p story.Passage) (string, error) {
	return f(p)
}

// Pipeline renders passages. It keeps no per-render state.
type Pipeline struct {
	eval   Evaluator
	markup *Markup
}

// New creates a pipeline whose expression stage is eval.
func New(eval Evaluator) *Pipeline {
	return &Pipeline{
		eval:   eval,
		markup: NewMarkup(),
	}
}

// Render runs all stages over p.
func (r *Pipeline) Render(p story.Passage) (string, error) {
	expanded, err := r.eval.Evaluate(p)
	if err != nil {
		return "", &RenderError{Passage: p.Name, Stage: StageExpressions, Err: err}
	}

	// References skip the markup stage so their targets stay verbatim.
	body, refs := ExtractLinks(expanded)
	html, err := r.markup.Convert(body)
	if err != nil {
		return "", &RenderError{Passage: p.Name, Stage: StageMarkup, Err: err}
	}

	out, err := refs.Annotate(html)
	if err != nil {
		return "", &RenderError{Passage: p.Name, Stage: StageLinks, Err: err}
	}
	return out, nil
}
