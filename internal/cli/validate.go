package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/taleweave/internal/lint"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat warnings as errors
}

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Story    string       `json:"story"`
	Valid    bool         `json:"valid"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Issues   []lint.Issue `json:"issues"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <story.html>",
		Short: "Check a story for problems",
		Long: `Check a story document against the story schema and report
duplicate passages, dangling links and an unresolved start node.

Exit codes:
  0 - No errors (warnings allowed unless --strict)
  1 - Errors found
  2 - Command error (story not found or unparseable)

Examples:
  taleweave validate story.html
  taleweave validate story.html --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as errors")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, path string) error {
	f := opts.formatter(cmd)
	doc, err := loadStory(f, path)
	if err != nil {
		return err
	}

	report, err := lint.Check(doc)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "lint", err)
	}

	result := ValidateResult{
		Story:    doc.Name,
		Errors:   report.Count(lint.SeverityError),
		Warnings: report.Count(lint.SeverityWarning),
		Issues:   report.Issues,
	}
	result.Valid = result.Errors == 0 && (!opts.Strict || result.Warnings == 0)

	if f.JSON() {
		if err := f.Success("", result); err != nil {
			return err
		}
	} else {
		var sb strings.Builder
		for _, issue := range result.Issues {
			fmt.Fprintf(&sb, "%s %s\n", issue.Severity, issue)
		}
		if result.Valid {
			fmt.Fprintf(&sb, "✓ %s: %d error(s), %d warning(s)\n", path, result.Errors, result.Warnings)
		} else {
			fmt.Fprintf(&sb, "✗ %s: %d error(s), %d warning(s)\n", path, result.Errors, result.Warnings)
		}
		if err := f.Success(sb.String(), nil); err != nil {
			return err
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d error(s), %d warning(s)", path, result.Errors, result.Warnings))
	}
	return nil
}
