package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/lazypower/cadence/internal/ranking"
	"github.com/lazypower/cadence/internal/store"
)

// Server is the cadence HTTP API server.
type Server struct {
	db      *store.DB
	feeds   *ranking.Service
	router  chi.Router
	version string
	started time.Time
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates a new Server over db, serving feeds through feeds.
func New(db *store.DB, feeds *ranking.Service, version string) *Server {
	s := &Server{
		db:      db,
		feeds:   feeds,
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// SetRateLimit caps feed requests across all users. rps <= 0 disables the
// limit. Call before serving.
func (s *Server) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/parse", s.handleParse)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit)
				r.Get("/feed", s.handleGetFeed)
				r.Post("/feed", s.handlePostFeed)
				r.Get("/digest", s.handleDigest)
			})
			r.Post("/invalidate", s.handleInvalidate)

			r.Get("/items", s.handleListItems)
			r.Post("/items", s.handleCreateItem)
			r.Get("/items/{itemID}", s.handleGetItem)
			r.Put("/items/{itemID}", s.handleUpdateItem)
			r.Delete("/items/{itemID}", s.handleDeleteItem)
			r.Post("/items/{itemID}/archive", s.handleArchiveItem)
		})
	})

	s.router = r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"cache":   s.feeds.CacheStats(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
