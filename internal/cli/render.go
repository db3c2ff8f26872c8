package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/render"
	"github.com/roach88/taleweave/internal/story"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Text bool // print plain text instead of HTML
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Passage string        `json:"passage"`
	HTML    string        `json:"html"`
	Text    string        `json:"text"`
	Links   []render.Link `json:"links"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <story.html> <passage>",
		Short: "Render one passage",
		Long: `Render one passage after running the story's start sequence.

The story is started first so user scripts have run and state is set up;
the passage is then rendered without navigating to it.

Examples:
  taleweave render story.html Cellar
  taleweave render story.html Cellar --text
  taleweave render story.html Cellar --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.Text, "text", false, "print plain text instead of HTML")
	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, path, name string) error {
	f := opts.formatter(cmd)
	doc, err := loadStory(f, path)
	if err != nil {
		return err
	}

	s, err := startSession(cmd.Context(), opts.RootOptions, f, doc)
	if err != nil {
		return err
	}
	defer s.Close()

	html, err := s.runtime.Render(name)
	switch {
	case err == nil:
	case render.IsRenderError(err):
		return f.Fail(ExitFailure, ErrCodeRender, fmt.Sprintf("render %q failed", name), err)
	case story.IsLookupError(err):
		return f.Fail(ExitFailure, ErrCodeLookup, fmt.Sprintf("passage %q not found", name), err)
	default:
		return f.Fail(ExitFailure, ErrCodeGeneric, "render", err)
	}

	links := render.Links(html)
	if links == nil {
		links = []render.Link{}
	}
	result := RenderResult{
		Passage: name,
		HTML:    html,
		Text:    display.Text(html),
		Links:   links,
	}

	text := result.HTML
	if opts.Text {
		text = result.Text + "\n"
	}
	return f.Success(text, result)
}
