package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/roach88/taleweave/internal/display"
	"github.com/roach88/taleweave/internal/navigation"
	"github.com/roach88/taleweave/internal/render"
	"github.com/roach88/taleweave/internal/script"
	"github.com/roach88/taleweave/internal/story"
)

// PageView is the JSON form of the displayed page.
type PageView struct {
	Current     string   `json:"current_passage"`
	History     []string `json:"history"`
	UndoVisible bool     `json:"undo_visible"`
	Content     string   `json:"content"`
}

// PassageView is one entry of GET /passages.
type PassageView struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// RenderView is the response of GET /render.
type RenderView struct {
	Passage string `json:"passage"`
	HTML    string `json:"html"`
}

type errorView struct {
	Error string `json:"error"`
}

type pageData struct {
	Title       string
	Stylesheets []string
	Styles      []template.CSS
	Content     template.HTML
	UndoVisible bool
}

// view must be called with s.mu held.
func (s *Server) view() PageView {
	v := PageView{
		History:     s.runtime.History(),
		UndoVisible: s.page.UndoVisible(),
		Content:     s.page.Content(display.MainSelector),
	}
	if v.History == nil {
		v.History = []string{}
	}
	if p, ok := s.runtime.Current(); ok {
		v.Current = p.Name
	}
	return v
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data := pageData{
		Title:       s.title,
		Stylesheets: s.page.Stylesheets(),
		UndoVisible: s.page.UndoVisible(),
		// Passage output and story styles come from the story author.
		Content: template.HTML(s.page.Content(display.MainSelector)),
	}
	for _, css := range s.page.Styles() {
		data.Styles = append(data.Styles, template.CSS(css))
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("passage")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorView{Error: "passage is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.runtime.Show(name); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.runtime.Undo(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("passage")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorView{Error: "passage is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	html, err := s.runtime.Render(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RenderView{Passage: name, HTML: html})
}

func (s *Server) handlePassages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var passages []story.Passage
	if tag := r.URL.Query().Get("tag"); tag != "" {
		passages = s.runtime.PassagesByTag(tag)
	} else {
		passages = s.runtime.Repository().All()
	}

	out := make([]PassageView, 0, len(passages))
	for _, p := range passages {
		out = append(out, PassageView{ID: p.ID, Name: p.Name, Tags: p.Tags()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.runtime.Store()
	out := make(map[string]any, store.Len())
	for _, k := range store.Keys() {
		v, _ := store.Get(k)
		out[k] = script.ToGo(v)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// writeError maps runtime errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case render.IsRenderError(err):
		status = http.StatusUnprocessableEntity
	case story.IsLookupError(err):
		status = http.StatusNotFound
	case errors.Is(err, navigation.ErrNotStarted):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorView{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "status", status, "error", err)
	}
}
