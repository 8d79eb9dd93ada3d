// Package handlers wires the HTTP surface: the server-rendered index page,
// login/logout, and the JSON todo API used by the page script.
package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"

	"github.com/idilsaglam/timely/internal/auth"
	"github.com/idilsaglam/timely/internal/config"
	"github.com/idilsaglam/timely/internal/db"
)

type Server struct {
	store  *db.Store
	cfg    config.Config
	hash   [sha256.Size]byte
	logger *log.Logger
	tmpl   *template.Template
	static fs.FS
}

func New(store *db.Store, cfg config.Config, logger *log.Logger, templates, static fs.FS) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": func(content string) template.HTML {
			var buf strings.Builder
			if err := goldmark.Convert([]byte(content), &buf); err != nil {
				return template.HTML("<p>Error rendering markdown</p>")
			}
			return template.HTML(buf.String())
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templates, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Server{
		store:  store,
		cfg:    cfg,
		hash:   auth.Hash(cfg.Password),
		logger: logger,
		tmpl:   tmpl,
		static: static,
	}, nil
}

// Routes builds the full handler tree. Callers mount it under the configured
// base path.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	api := http.NewServeMux()
	api.HandleFunc("GET /todos", s.handleListTodos)
	api.HandleFunc("POST /todos", s.handleCreateTodo)
	api.HandleFunc("POST /todos/toggle", s.handleToggleTodo)
	api.HandleFunc("DELETE /todos", s.handleDeleteTodo)
	mux.Handle("/todos", s.requireAuth(api))
	mux.Handle("/todos/", s.requireAuth(api))

	return s.logRequests(mux)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template", "template", name, "err", err)
	}
}

// handleIndex renders the one page the app has. Unauthenticated visitors get
// the password form; everyone else gets the todo forest.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	authed := s.authenticated(r)
	data := map[string]any{
		"Authenticated": authed,
		"BasePath":      s.cfg.BasePath,
		"LoginFailed":   r.URL.Query().Get("error") != "",
		"DateLess":      r.URL.Query().Get("date_less"),
		"DateMore":      r.URL.Query().Get("date_more"),
	}

	if authed {
		todos, err := s.store.ListTodos(r.Context(), listFilter(r))
		if err != nil {
			s.logger.Error("listing todos", "err", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		data["Todos"] = db.BuildForest(todos)
	}

	s.renderTemplate(w, "index.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !auth.Verify(s.hash, r.FormValue("password")) {
		http.Redirect(w, r, s.indexPath()+"?error=1", http.StatusSeeOther)
		return
	}

	token, err := s.store.CreateSession(r.Context(), s.cfg.SessionTTL)
	if err != nil {
		s.logger.Error("creating session", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	auth.SetSessionCookie(w, token, s.cfg.SessionTTL)
	http.Redirect(w, r, s.indexPath(), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionToken(r); token != "" {
		s.store.DeleteSession(r.Context(), token)
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, s.indexPath(), http.StatusSeeOther)
}

// JSON API

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.ListTodos(r.Context(), listFilter(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if todos == nil {
		todos = []db.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		ParentID    *int64  `json:"parent_id"`
		Date        *string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	created, err := s.store.CreateTodo(r.Context(), db.Todo{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Date:        req.Date,
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleToggleTodo flips a todo's done flag. The body is the todo id as
// plain text (which is also what a JSON-encoded integer looks like).
func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	done, err := s.store.ToggleTodo(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

// handleDeleteTodo removes a todo (and, through the cascade, its subtree)
// and responds with the updated list.
func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteTodo(r.Context(), id); err != nil {
		s.storeError(w, err)
		return
	}
	todos, err := s.store.ListTodos(r.Context(), listFilter(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if todos == nil {
		todos = []db.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

// Helpers

func (s *Server) indexPath() string {
	if s.cfg.BasePath == "" {
		return "/"
	}
	return s.cfg.BasePath + "/"
}

func (s *Server) authenticated(r *http.Request) bool {
	token := auth.SessionToken(r)
	if token == "" {
		return false
	}
	return s.store.ValidateSession(r.Context(), token) == nil
}

func listFilter(r *http.Request) db.ListFilter {
	var f db.ListFilter
	if v := r.URL.Query().Get("date_less"); v != "" {
		f.DateLess = &v
	}
	if v := r.URL.Query().Get("date_more"); v != "" {
		f.DateMore = &v
	}
	return f
}

func readID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "body must be a todo id")
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNameRequired), errors.Is(err, db.ErrBadDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("store error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
