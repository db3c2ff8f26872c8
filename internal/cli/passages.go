package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/story"
)

// PassagesOptions holds flags for the passages command.
type PassagesOptions struct {
	*RootOptions
	Tag string // only passages carrying this tag
}

// PassageInfo is one passage in the passages listing.
type PassageInfo struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// PassagesResult is the JSON payload of the passages command.
type PassagesResult struct {
	Story       string        `json:"story"`
	Fingerprint string        `json:"fingerprint"`
	StartNode   int           `json:"start_node"`
	Passages    []PassageInfo `json:"passages"`
}

// NewPassagesCommand creates the passages command.
func NewPassagesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PassagesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "passages <story.html>",
		Short: "List the passages of a story",
		Long: `List the passages of a story in document order.

Examples:
  taleweave passages story.html
  taleweave passages story.html --tag chapter
  taleweave passages story.html --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPassages(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only list passages with this tag")
	return cmd
}

func runPassages(cmd *cobra.Command, opts *PassagesOptions, path string) error {
	f := opts.formatter(cmd)
	doc, err := loadStory(f, path)
	if err != nil {
		return err
	}

	repo := doc.Repository()
	var passages []story.Passage
	if opts.Tag != "" {
		passages = repo.ByTag(opts.Tag)
	} else {
		passages = repo.All()
	}

	result := PassagesResult{
		Story:       doc.Name,
		Fingerprint: story.Fingerprint(doc),
		StartNode:   doc.StartNode,
		Passages:    make([]PassageInfo, 0, len(passages)),
	}
	for _, p := range passages {
		result.Passages = append(result.Passages, PassageInfo{ID: p.ID, Name: p.Name, Tags: p.Tags()})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n\n", result.Story, result.Fingerprint)
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAGS")
	for _, p := range result.Passages {
		marker := ""
		if p.ID == doc.StartNode {
			marker = " *"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\n", p.ID, marker, p.Name, strings.Join(p.Tags, " "))
	}
	tw.Flush()
	fmt.Fprintf(&sb, "\n%d passage(s)\n", len(result.Passages))

	return f.Success(sb.String(), result)
}
