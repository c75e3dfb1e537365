// Package maimemotest provides an in-memory fake of the Maimemo notepad API for tests.
package maimemotest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akhdanfadh/momosync/internal/maimemo"
)

// Route names used by Calls and Fail.
const (
	RouteList   = "GET /notepads"
	RouteCreate = "POST /notepads"
	RouteGet    = "GET /notepads/{id}"
	RouteUpdate = "POST /notepads/{id}"
)

// Server is a fake Maimemo API backed by a map of notepads.
type Server struct {
	*httptest.Server

	token string

	mu       sync.Mutex
	order    []string // notepad ids in creation order
	notepads map[string]*maimemo.Notepad
	calls    map[string]int
	fail     map[string]int
	raw      map[string]string
	updates  []string

	parseOnCreate bool
}

// NewServer starts a fake API that accepts the given bearer token.
// The server is closed when the test ends.
func NewServer(t testing.TB, token string) *Server {
	t.Helper()

	s := &Server{
		token:    token,
		notepads: make(map[string]*maimemo.Notepad),
		calls:    make(map[string]int),
		fail:     make(map[string]int),
		raw:      make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.Get("/notepads", s.instrument(RouteList, s.handleList))
	r.Post("/notepads", s.instrument(RouteCreate, s.handleCreate))
	r.Get("/notepads/{id}", s.instrument(RouteGet, s.handleGet))
	r.Post("/notepads/{id}", s.instrument(RouteUpdate, s.handleUpdate))

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores a notepad with the given title and words and returns its id.
func (s *Server) Seed(title string, words ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.store(title, strings.Join(words, ","))
	s.notepads[id].List = parseContent(s.notepads[id].Content)
	return id
}

// Words returns the words currently stored in the notepad.
func (s *Server) Words(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	np, ok := s.notepads[id]
	if !ok {
		return nil
	}
	words := make([]string, 0, len(np.List))
	for _, item := range np.List {
		if item.IsWord() {
			words = append(words, item.Word)
		}
	}
	return words
}

// Notepad returns a copy of the stored notepad.
func (s *Server) Notepad(id string) (maimemo.Notepad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	np, ok := s.notepads[id]
	if !ok {
		return maimemo.Notepad{}, false
	}
	return *np, true
}

// Count returns the number of stored notepads.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notepads)
}

// Calls returns how many requests hit the given route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Updates returns the content of every accepted update, oldest first.
func (s *Server) Updates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.updates...)
}

// Fail makes every following request to route answer with the given status.
// A status of 0 clears the failure.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		return
	}
	s.fail[route] = status
}

// Respond makes every following request to route answer 200 with the raw body.
// An empty body clears the override.
func (s *Server) Respond(route, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body == "" {
		delete(s.raw, route)
		return
	}
	s.raw[route] = body
}

// ParseOnCreate makes created notepads expose their initial content as items,
// the way the real service lists the placeholder content as a word. By default
// a created notepad starts with an empty list.
func (s *Server) ParseOnCreate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parseOnCreate = on
}

// store must be called with s.mu held. The list of a stored notepad starts
// empty; content is parsed into items on update, by Seed, or on create when
// ParseOnCreate is set.
func (s *Server) store(title, content string) string {
	id := uuid.NewString()
	s.notepads[id] = &maimemo.Notepad{
		ID:      id,
		Title:   title,
		Status:  maimemo.StatusPublished,
		Content: content,
		List:    []maimemo.NotepadItem{},
	}
	s.order = append(s.order, id)
	return id
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument counts the call and applies any injected failure or raw body.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		status := s.fail[route]
		raw := s.raw[route]
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		if raw != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(raw))
			return
		}
		h(w, r)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	notepads := make([]maimemo.Notepad, 0, len(s.order))
	for _, id := range s.order {
		np := s.notepads[id]
		notepads = append(notepads, maimemo.Notepad{ID: np.ID, Title: np.Title, Status: np.Status})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"notepads": notepads},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req maimemo.NotepadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	id := s.store(req.Notepad.Title, req.Notepad.Content)
	if s.parseOnCreate {
		s.notepads[id].List = parseContent(req.Notepad.Content)
	}
	np := *s.notepads[id]
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"notepad": np},
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	np, ok := s.notepads[id]
	var out map[string]any
	if ok {
		// list is always present, even when empty
		out = map[string]any{
			"id":      np.ID,
			"title":   np.Title,
			"status":  np.Status,
			"content": np.Content,
			"list":    append([]maimemo.NotepadItem{}, np.List...),
		}
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"notepad": out},
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req maimemo.NotepadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	s.mu.Lock()
	np, ok := s.notepads[id]
	if ok {
		np.Title = req.Notepad.Title
		np.Status = req.Notepad.Status
		np.Content = req.Notepad.Content
		np.Brief = req.Notepad.Brief
		np.Tags = req.Notepad.Tags
		np.List = parseContent(req.Notepad.Content)
		s.updates = append(s.updates, req.Notepad.Content)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// parseContent turns notepad content into items. Lines starting with "#" become
// chapter items, everything else is split on commas into words.
func parseContent(content string) []maimemo.NotepadItem {
	items := []maimemo.NotepadItem{}
	for line := range strings.SplitSeq(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			items = append(items, maimemo.NotepadItem{Type: "CHAPTER", Word: strings.TrimSpace(line[1:])})
			continue
		}
		for word := range strings.SplitSeq(line, ",") {
			if word = strings.TrimSpace(word); word != "" {
				items = append(items, maimemo.NotepadItem{Type: "WORD", Word: word})
			}
		}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
