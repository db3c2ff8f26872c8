package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/render"
)

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <story.html>",
		Short: "Read a story in the terminal",
		Long: `Read a story in the terminal.

The displayed passage is printed as plain text followed by its numbered
links. Commands:

  <n>  follow link n
  u    undo
  h    show the history
  q    quit

Examples:
  taleweave play story.html
  taleweave play story.html --journal ./journal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runPlay(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := opts.formatter(cmd)
	doc, err := loadStory(f, path)
	if err != nil {
		return err
	}

	s, err := startSession(cmd.Context(), opts, f, doc)
	if err != nil {
		return err
	}
	defer s.Close()

	return play(s, cmd.InOrStdin(), cmd.OutOrStdout())
}

// play runs the read loop until q or end of input.
func play(s *session, in io.Reader, w io.Writer) error {
	links := printScreen(w, s)
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			fmt.Fprint(w, "> ")
			continue

		case "q", "quit":
			return nil

		case "h", "history":
			history := s.runtime.History()
			if len(history) == 0 {
				fmt.Fprintln(w, "history: (empty)")
			} else {
				fmt.Fprintf(w, "history: %s\n", strings.Join(history, " > "))
			}
			fmt.Fprint(w, "> ")
			continue

		case "u", "undo":
			if err := s.runtime.Undo(); err != nil {
				fmt.Fprintf(w, "error: %v\n> ", err)
				continue
			}
			links = printScreen(w, s)
			continue
		}

		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(links) {
			fmt.Fprintf(w, "unknown command %q\n> ", input)
			continue
		}
		if err := s.runtime.Show(links[n-1].Target); err != nil {
			fmt.Fprintf(w, "error: %v\n> ", err)
			continue
		}
		links = printScreen(w, s)
	}
	return scanner.Err()
}

// printScreen prints the displayed passage and returns its links.
func printScreen(w io.Writer, s *session) []render.Link {
	content := s.page.Content(display.MainSelector)
	links := render.Links(content)

	fmt.Fprintf(w, "\n%s\n", display.Text(content))
	if len(links) > 0 {
		fmt.Fprintln(w)
		for i, l := range links {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, l.Text)
		}
	}

	controls := "h history, q quit"
	if s.page.UndoVisible() {
		controls = "u undo, " + controls
	}
	fmt.Fprintf(w, "\n(%s)\n> ", controls)
	return links
}
