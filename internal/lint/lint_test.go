package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taleweave/internal/story"
	"github.com/roach88/taleweave/internal/testutil"
)

func issuesWithCode(r *Report, code string) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Code == code {
			out = append(out, i)
		}
	}
	return out
}

func validDocument() *story.Document {
	return &story.Document{
		Name:      "Lantern",
		StartNode: 1,
		IFID:      "0B3E9D54-8A61-4C2F-B7D0-5E1F2A3C4D6E",
		Entries: []story.Entry{
			{ID: 1, Name: "Hallway", Source: "[[Descend->Cellar]]"},
			{ID: 2, Name: "Cellar", Tags: "dark underground", Source: "[[Climb->Hallway]]"},
		},
	}
}

func TestCheck_CleanDocument(t *testing.T) {
	r, err := Check(testutil.TwoPassageStory().Document(t))
	require.NoError(t, err)
	assert.Empty(t, r.Issues)
	assert.False(t, r.HasErrors())
}

func TestCheck_ValidDocumentLiteral(t *testing.T) {
	r, err := Check(validDocument())
	require.NoError(t, err)
	assert.Empty(t, r.Issues)
}

func TestCheck_SchemaEmptyName(t *testing.T) {
	doc := validDocument()
	doc.Name = ""

	r, err := Check(doc)
	require.NoError(t, err)
	assert.True(t, r.HasErrors())

	issues := issuesWithCode(r, CodeSchema)
	require.NotEmpty(t, issues)
	assert.Equal(t, "name", issues[0].Path)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestCheck_SchemaPassageID(t *testing.T) {
	doc := validDocument()
	doc.Entries[0].ID = 0

	r, err := Check(doc)
	require.NoError(t, err)

	issues := issuesWithCode(r, CodeSchema)
	require.NotEmpty(t, issues)
	assert.Equal(t, "passages.0.id", issues[0].Path)
}

func TestCheck_SchemaBadIFID(t *testing.T) {
	doc := validDocument()
	doc.IFID = "not-an-ifid"

	r, err := Check(doc)
	require.NoError(t, err)
	assert.True(t, r.HasErrors())
	assert.NotEmpty(t, issuesWithCode(r, CodeSchema))
}

func TestCheck_SchemaNoPassages(t *testing.T) {
	doc := validDocument()
	doc.Entries = nil

	r, err := Check(doc)
	require.NoError(t, err)
	assert.True(t, r.HasErrors())
	assert.NotEmpty(t, issuesWithCode(r, CodeSchema))
	// With no passages the start node cannot resolve either.
	assert.Len(t, issuesWithCode(r, CodeStartNode), 1)
}

func TestCheck_Duplicates(t *testing.T) {
	doc := validDocument()
	doc.Entries = append(doc.Entries,
		story.Entry{ID: 1, Name: "Attic", Source: "[[Hallway]]"},
		story.Entry{ID: 3, Name: "Cellar", Source: "[[Hallway]]"},
	)

	r, err := Check(doc)
	require.NoError(t, err)
	assert.False(t, r.HasErrors())

	ids := issuesWithCode(r, CodeDuplicateID)
	require.Len(t, ids, 1)
	assert.Equal(t, "passages.2.id", ids[0].Path)
	assert.Equal(t, `id 1 is also used by "Hallway"; lookups return "Hallway"`, ids[0].Message)

	names := issuesWithCode(r, CodeDuplicateName)
	require.Len(t, names, 1)
	assert.Equal(t, "passages.3.name", names[0].Path)
	assert.Equal(t, 2, r.Count(SeverityWarning))
}

func TestCheck_DanglingLinks(t *testing.T) {
	doc := validDocument()
	doc.Entries[1].Source = "[[Climb->Hallway]] [[Dig->Tunnel]] [[Tunnel<-Crawl]] [[ |]] [[<%= s.exit %>]]"

	r, err := Check(doc)
	require.NoError(t, err)

	issues := issuesWithCode(r, CodeDanglingLink)
	require.Len(t, issues, 3)
	assert.Equal(t, "Cellar", issues[0].Path)
	assert.Equal(t, `link [[Dig->Tunnel]] targets missing passage "Tunnel"`, issues[0].Message)
	assert.Equal(t, `link [[Tunnel<-Crawl]] targets missing passage "Tunnel"`, issues[1].Message)
	assert.Equal(t, "link [[ |]] has an empty target", issues[2].Message)
}

func TestCheck_StartNodeUnresolved(t *testing.T) {
	doc := validDocument()
	doc.StartNode = 7

	r, err := Check(doc)
	require.NoError(t, err)

	issues := issuesWithCode(r, CodeStartNode)
	require.Len(t, issues, 1)
	assert.Equal(t, "start_node", issues[0].Path)
	assert.Contains(t, issues[0].Message, "start node 7")
	assert.False(t, r.HasErrors())
}

func TestLinter_Reusable(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	bad := validDocument()
	bad.Name = ""
	assert.True(t, l.Check(bad).HasErrors())
	assert.Empty(t, l.Check(validDocument()).Issues)
}

func TestIssue_String(t *testing.T) {
	assert.Equal(t, "[W205] start_node: gone", Issue{Code: CodeStartNode, Path: "start_node", Message: "gone"}.String())
	assert.Equal(t, "[E201] bad", Issue{Code: CodeSchema, Message: "bad"}.String())
}
