// Package lint checks a story document for problems the runtime tolerates.
//
// The runtime accepts any document that parses: duplicate passage ids and
// names resolve to the first occurrence, and a dangling link only fails when
// a reader follows it. Lint reports these ahead of time. It is never part of
// the runtime load path.
//
// Checks:
//   - the document shape against the embedded CUE schema (schema.cue)
//   - duplicate passage ids and names
//   - link targets that name no passage
//   - a start node that names no passage
package lint

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/taleweave/internal/render"
	"github.com/roach88/taleweave/internal/story"
)

//go:embed schema.cue
var schemaSource string

// Issue codes.
const (
	CodeSchema        = "E201" // document shape violates the schema
	CodeDuplicateID   = "W202" // passage id used more than once
	CodeDuplicateName = "W203" // passage name used more than once
	CodeDanglingLink  = "W204" // link target names no passage
	CodeStartNode     = "W205" // start node names no passage
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

// String formats the issue as "[code] path: message".
func (i Issue) String() string {
	if i.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// Report holds every issue found in a document, schema issues first.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Issues, func(i Issue) bool {
		return i.Severity == SeverityError
	})
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Linter checks documents against a compiled schema.
// A Linter is safe to reuse but not for concurrent use.
type Linter struct {
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Linter, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile lint schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Story"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Story: %w", err)
	}
	return &Linter{ctx: ctx, schema: def}, nil
}

// Check runs every check on doc. It does not fail fast.
func (l *Linter) Check(doc *story.Document) *Report {
	r := &Report{Issues: []Issue{}}
	r.Issues = append(r.Issues, l.checkSchema(doc)...)
	r.Issues = append(r.Issues, checkDuplicates(doc)...)

	repo := doc.Repository()
	r.Issues = append(r.Issues, checkLinks(repo)...)
	if _, ok := repo.ByID(doc.StartNode); !ok {
		r.Issues = append(r.Issues, Issue{
			Code:     CodeStartNode,
			Severity: SeverityWarning,
			Path:     "start_node",
			Message:  fmt.Sprintf("start node %d names no passage; the story cannot start", doc.StartNode),
		})
	}
	return r
}

// Check lints doc with a freshly compiled schema.
func Check(doc *story.Document) (*Report, error) {
	l, err := New()
	if err != nil {
		return nil, err
	}
	return l.Check(doc), nil
}

type passageShape struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

type storyShape struct {
	Name           string         `json:"name"`
	StartNode      int            `json:"start_node"`
	Creator        string         `json:"creator"`
	CreatorVersion string         `json:"creator_version"`
	IFID           string         `json:"ifid"`
	Format         string         `json:"format"`
	FormatVersion  string         `json:"format_version"`
	Passages       []passageShape `json:"passages"`
	Scripts        []string       `json:"scripts"`
	Styles         []string       `json:"styles"`
}

func shapeOf(doc *story.Document) storyShape {
	s := storyShape{
		Name:           doc.Name,
		StartNode:      doc.StartNode,
		Creator:        doc.Creator,
		CreatorVersion: doc.CreatorVersion,
		IFID:           doc.IFID,
		Format:         doc.Format,
		FormatVersion:  doc.FormatVersion,
		Passages:       make([]passageShape, 0, len(doc.Entries)),
		Scripts:        append([]string{}, doc.Scripts...),
		Styles:         append([]string{}, doc.Styles...),
	}
	for _, e := range doc.Entries {
		s.Passages = append(s.Passages, passageShape{
			ID:     e.ID,
			Name:   e.Name,
			Tags:   append([]string{}, strings.Fields(e.Tags)...),
			Source: e.Source,
		})
	}
	return s
}

func (l *Linter) checkSchema(doc *story.Document) []Issue {
	v := l.schema.Unify(l.ctx.Encode(shapeOf(doc)))
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var issues []Issue
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := Issue{
			Code:     CodeSchema,
			Severity: SeverityError,
			Path:     strings.Join(e.Path(), "."),
			Message:  fmt.Sprintf(format, args...),
		}
		if key := issue.String(); !seen[key] {
			seen[key] = true
			issues = append(issues, issue)
		}
	}
	return issues
}

func checkDuplicates(doc *story.Document) []Issue {
	var issues []Issue
	ids := make(map[int]string)
	names := make(map[string]int)

	for i, e := range doc.Entries {
		path := fmt.Sprintf("passages.%d", i)
		if first, ok := ids[e.ID]; ok {
			issues = append(issues, Issue{
				Code:     CodeDuplicateID,
				Severity: SeverityWarning,
				Path:     path + ".id",
				Message:  fmt.Sprintf("id %d is also used by %q; lookups return %q", e.ID, first, first),
			})
		} else {
			ids[e.ID] = e.Name
		}

		if first, ok := names[e.Name]; ok {
			issues = append(issues, Issue{
				Code:     CodeDuplicateName,
				Severity: SeverityWarning,
				Path:     path + ".name",
				Message:  fmt.Sprintf("name %q is also used by passage %d; lookups return passage %d", e.Name, first, first),
			})
		} else {
			names[e.Name] = e.ID
		}
	}
	return issues
}

var sourceLinkPattern = regexp.MustCompile(`(?s)\[\[(.*?)\]\]`)

// checkLinks reports link targets that name no passage. Links whose text is
// produced by a template expression are skipped; their target is only known
// at render time.
func checkLinks(repo *story.Repository) []Issue {
	var issues []Issue
	for _, p := range repo.All() {
		for _, m := range sourceLinkPattern.FindAllStringSubmatch(p.Source, -1) {
			inner := m[1]
			if strings.Contains(inner, "<%") {
				continue
			}
			_, target := render.ParseLink(inner)
			if target == "" {
				issues = append(issues, Issue{
					Code:     CodeDanglingLink,
					Severity: SeverityWarning,
					Path:     p.Name,
					Message:  fmt.Sprintf("link [[%s]] has an empty target", inner),
				})
				continue
			}
			if _, ok := repo.ByName(target); !ok {
				issues = append(issues, Issue{
					Code:     CodeDanglingLink,
					Severity: SeverityWarning,
					Path:     p.Name,
					Message:  fmt.Sprintf("link [[%s]] targets missing passage %q", inner, target),
				})
			}
		}
	}
	return issues
}
