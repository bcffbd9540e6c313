// Package fakebackend is an in-memory stand-in for the tax insights REST
// backend. It speaks the same routes and payloads, issues real JWTs and
// answers document questions by quoting the document itself.
package fakebackend

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

const maxUploadSize = 10 << 20 // 10MB

// Options configures a Server. Zero values get defaults.
type Options struct {
	Logger   *slog.Logger
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
	// PasswordCost is the bcrypt cost; tests use bcrypt.MinCost.
	PasswordCost int
	// News replaces the seeded news items.
	News []taxapi.News
}

type account struct {
	user         taxapi.User
	passwordHash []byte
}

type document struct {
	meta taxapi.Document
	text string
}

// Server holds all backend state in memory.
type Server struct {
	logger   *slog.Logger
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	cost     int

	mu        sync.Mutex
	nextID    int64
	accounts  map[string]*account // by email
	documents map[int64]*document
	chats     map[int64][]taxapi.ChatMessage // by document id
	news      []taxapi.News
	notes     map[int64]*taxapi.Note
	profiles  map[int64]*taxapi.CompanyProfile // by user id
}

func New(opts Options) *Server {
	s := &Server{
		logger:    opts.Logger,
		secret:    opts.Secret,
		tokenTTL:  opts.TokenTTL,
		now:       opts.Now,
		cost:      opts.PasswordCost,
		accounts:  make(map[string]*account),
		documents: make(map[int64]*document),
		chats:     make(map[int64][]taxapi.ChatMessage),
		notes:     make(map[int64]*taxapi.Note),
		profiles:  make(map[int64]*taxapi.CompanyProfile),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		rand.Read(s.secret)
	}
	if s.tokenTTL == 0 {
		s.tokenTTL = 30 * time.Minute
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.news = opts.News
	if s.news == nil {
		s.news = seedNews(s.now())
	}
	for _, n := range s.news {
		if n.ID > s.nextID {
			s.nextID = n.ID
		}
	}
	return s
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/token", s.handleToken)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/profile", s.handleGetProfile)
			r.Post("/profile", s.handleCreateProfile)
			r.Put("/profile", s.handleUpdateProfile)

			r.Get("/news", s.handleListNews)
			r.Get("/news/{id}", s.handleGetNews)
			r.Get("/news/{id}/personalized", s.handlePersonalizedNews)

			r.Get("/documents", s.handleListDocuments)
			r.Post("/documents", s.handleUploadDocument)
			r.Get("/documents/{id}", s.handleGetDocument)
			r.Put("/documents/{id}", s.handleUpdateDocument)
			r.Delete("/documents/{id}", s.handleDeleteDocument)

			r.Get("/chat/document/{id}", s.handleChatHistory)
			r.Post("/chat/document/{id}", s.handleAsk)

			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Get("/notes/{id}", s.handleGetNote)
			r.Put("/notes/{id}", s.handleUpdateNote)
			r.Delete("/notes/{id}", s.handleDeleteNote)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

// newID must be called with s.mu held.
func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) timestamp() taxapi.Time {
	return taxapi.Time{Time: s.now().UTC()}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// detailError writes an error body in the backend's {"detail": ...} shape.
func detailError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]any{"detail": fmt.Sprintf(format, args...)})
}

type fieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// validationError writes a 422 with one entry per missing or bad field.
func validationError(w http.ResponseWriter, issues ...fieldIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func missing(loc ...string) fieldIssue {
	return fieldIssue{Loc: loc, Msg: "field required", Type: "value_error.missing"}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
