// Package apitest provides an in-memory fake of the debate REST API for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joss/debate/internal/domain"
)

// Default credentials accepted by the fake login endpoint.
const (
	Email    = "ada@example.com"
	Password = "secret"
	Token    = "test-token"
	UserID   = "u1"
	Username = "ada"
)

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// Bearer returns the token of the Authorization header, or "".
func (r Request) Bearer() string {
	return strings.TrimPrefix(r.Authorization, "Bearer ")
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend. Fields may be seeded before requests are made;
// use the accessors once the server is in use.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	debates   []domain.Debate
	arguments []domain.Argument
	scores    map[domain.ScoreWindow][]domain.ScoreEntry
	requests  []Request
	failures  map[string]failure
	seq       int
}

// New starts a fake backend, closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		scores:   map[domain.ScoreWindow][]domain.ScoreEntry{},
		failures: map[string]failure{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// APIURL returns the API root, e.g. "http://127.0.0.1:1234/api".
func (s *Server) APIURL() string {
	return s.Server.URL + "/api"
}

// AddDebate seeds a debate.
func (s *Server) AddDebate(d domain.Debate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debates = append(s.debates, d)
}

// AddArgument seeds an argument.
func (s *Server) AddArgument(a domain.Argument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arguments = append(s.arguments, a)
}

// SetScores seeds the scoreboard for a window.
func (s *Server) SetScores(w domain.ScoreWindow, entries []domain.ScoreEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[w] = entries
}

// Fail makes every request matching method and path (below /api) answer
// with status and message until cleared with status 0.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " /api" + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = failure{status: status, message: message}
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Argument returns the stored argument with id.
func (s *Server) Argument(id string) (domain.Argument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.arguments {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Argument{}, false
}

// Debates returns a copy of the stored debates.
func (s *Server) Debates() []domain.Debate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Debate, len(s.debates))
	copy(out, s.debates)
	return out
}

// Arguments returns a copy of the stored arguments.
func (s *Server) Arguments() []domain.Argument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Argument, len(s.arguments))
	copy(out, s.arguments)
	return out
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.inject)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Get("/debates", s.listDebates)
		r.Get("/debates/{id}", s.getDebate)
		r.With(s.requireAuth).Post("/debates", s.createDebate)
		r.Post("/debates/join/{id}", s.joinDebate)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/arguments/{debateID}", s.listArguments)
			r.Post("/arguments", s.createArgument)
			r.Put("/arguments/{id}", s.updateArgument)
			r.Delete("/arguments/{id}", s.deleteArgument)
			r.Post("/vote/{id}", s.vote)
			r.Post("/voting/{id}/vote", s.vote)
			r.Get("/score", s.scoreboard)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			respond(w, f.status, false, f.message, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			respond(w, http.StatusUnauthorized, false, "Not authorized, no token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respond(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respond(w, http.StatusBadRequest, false, "invalid request", nil)
		return
	}
	if creds.Email != Email || creds.Password != Password {
		respond(w, http.StatusUnauthorized, false, "Invalid credentials", nil)
		return
	}
	respond(w, http.StatusOK, true, "Login successful", map[string]any{
		"token": Token,
		"user": map[string]string{
			"id":       UserID,
			"username": Username,
			"email":    Email,
			"role":     "user",
		},
	})
}

func (s *Server) listDebates(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, true, "", s.Debates())
}

func (s *Server) getDebate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, d := range s.Debates() {
		if d.ID == id {
			respond(w, http.StatusOK, true, "", d)
			return
		}
	}
	respond(w, http.StatusNotFound, false, "Debate not found", nil)
}

func (s *Server) createDebate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond(w, http.StatusBadRequest, false, "invalid form", nil)
		return
	}
	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration <= 0 {
		respond(w, http.StatusBadRequest, false, "Invalid duration", nil)
		return
	}

	d := domain.Debate{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tags:        domain.ParseTags(r.FormValue("tags")),
		Duration:    duration,
		EndsAt:      time.Now().Add(time.Duration(duration * float64(time.Hour))).UTC().Truncate(time.Second),
		CreatedBy:   domain.UserRef{ID: UserID, Username: Username},
	}
	if _, hdr, err := r.FormFile("image"); err == nil {
		d.Image = "/uploads/" + hdr.Filename
	}

	s.mu.Lock()
	d.ID = s.nextID("d")
	s.debates = append(s.debates, d)
	s.mu.Unlock()

	respond(w, http.StatusCreated, true, "Debate created", d)
}

func (s *Server) joinDebate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Side domain.Side `json:"side"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Side.Valid() {
		respond(w, http.StatusBadRequest, false, "Invalid side", nil)
		return
	}
	respond(w, http.StatusOK, true, "Joined debate", nil)
}

func (s *Server) listArguments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "debateID")
	out := []domain.Argument{}
	for _, a := range s.Arguments() {
		if a.DebateID == id {
			out = append(out, a)
		}
	}
	respond(w, http.StatusOK, true, "", out)
}

func (s *Server) createArgument(w http.ResponseWriter, r *http.Request) {
	var in domain.NewArgument
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Content) == "" {
		respond(w, http.StatusBadRequest, false, "Content is required", nil)
		return
	}
	s.mu.Lock()
	a := domain.Argument{
		ID:         s.nextID("a"),
		DebateID:   in.DebateID,
		Author:     domain.UserRef{ID: UserID, Username: Username},
		Side:       in.Side,
		Content:    in.Content,
		VotedUsers: []string{},
	}
	s.arguments = append(s.arguments, a)
	s.mu.Unlock()
	respond(w, http.StatusCreated, true, "Argument created", a)
}

func (s *Server) updateArgument(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond(w, http.StatusBadRequest, false, "invalid request", nil)
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.arguments {
		if s.arguments[i].ID == id {
			s.arguments[i].Content = in.Content
			respond(w, http.StatusOK, true, "Argument updated", s.arguments[i])
			return
		}
	}
	respond(w, http.StatusNotFound, false, "Argument not found", nil)
}

func (s *Server) deleteArgument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.arguments {
		if s.arguments[i].ID == id {
			s.arguments = append(s.arguments[:i], s.arguments[i+1:]...)
			respond(w, http.StatusOK, true, "Argument deleted", nil)
			return
		}
	}
	respond(w, http.StatusNotFound, false, "Argument not found", nil)
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.arguments {
		a := &s.arguments[i]
		if a.ID != id {
			continue
		}
		if a.HasVoted(UserID) {
			respond(w, http.StatusBadRequest, false, "You have already voted", nil)
			return
		}
		a.Votes++
		a.VotedUsers = append(a.VotedUsers, UserID)
		respond(w, http.StatusOK, true, "Vote recorded", a)
		return
	}
	respond(w, http.StatusNotFound, false, "Argument not found", nil)
}

func (s *Server) scoreboard(w http.ResponseWriter, r *http.Request) {
	window := domain.ScoreWindow(r.URL.Query().Get("filter"))
	s.mu.Lock()
	entries := s.scores[window]
	s.mu.Unlock()
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}
	respond(w, http.StatusOK, true, "", entries)
}
