package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/engine"
	"github.com/roach88/taleweave/internal/journal"
	"github.com/roach88/taleweave/internal/script"
	"github.com/roach88/taleweave/internal/story"
)

// LoadError is a failure to load a story document.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

// LoadStory reads and parses the story at path.
func LoadStory(path string) (*story.Document, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "story file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "is a directory"}
	}

	doc, err := story.LoadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}
	return doc, nil
}

// loadStory loads path and reports a failure through f.
func loadStory(f *OutputFormatter, path string) (*story.Document, error) {
	doc, err := LoadStory(path)
	if err == nil {
		return doc, nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		return nil, f.Fail(ExitCommandError, le.Code, le.Message+": "+le.Path, nil)
	}
	return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "load story", err)
}

// session is a started runtime with its page and optional journal.
type session struct {
	runtime *engine.Runtime
	page    *display.Page
	journal *journal.Journal
}

func (s *session) Close() error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Close()
}

// startSession builds and starts a runtime for doc, attaching a journal
// recorder when opts.Journal is set.
func startSession(ctx context.Context, opts *RootOptions, f *OutputFormatter, doc *story.Document) (*session, error) {
	s := &session{page: display.NewPage()}
	s.runtime = engine.New(doc, s.page,
		engine.WithLogger(opts.logger()),
		engine.WithStylesheets(opts.Config.Stylesheets),
		engine.WithMaxRenderDepth(maxDepth(opts)),
	)

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeJournal, "open journal", err)
		}
		rec, err := journal.NewRecorder(ctx, j, doc, journal.WithLogger(opts.logger()))
		if err != nil {
			j.Close()
			return nil, f.Fail(ExitCommandError, ErrCodeJournal, "start journal session", err)
		}
		rec.Attach(s.runtime.Bus())
		s.journal = j
		f.VerboseLog("recording session %s to %s", rec.Session().ID, opts.Journal)
	}

	if err := s.runtime.Start(); err != nil {
		s.Close()
		return nil, f.Fail(ExitFailure, ErrCodeStartFailed, "start story", err)
	}
	return s, nil
}

func maxDepth(opts *RootOptions) int {
	if opts.Config.MaxRenderDepth > 0 {
		return opts.Config.MaxRenderDepth
	}
	return script.DefaultMaxDepth
}
