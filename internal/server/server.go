package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/parrot"
	"github.com/lazypower/reminderparrot/internal/store"
)

// Server is the parrot HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	log     logrus.FieldLogger
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over eng, which must be backed by db.
func New(db *store.DB, eng *engine.Engine, log logrus.FieldLogger, version string) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		db:      db,
		engine:  eng,
		log:     log,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/parrot", s.handleGetParrot)
		r.Get("/parrot/skills", s.handleSkills)
		r.Post("/parrot/experience", s.handleAwardExperience)

		r.Get("/reminders", s.handleListReminders)
		r.Post("/reminders", s.handleCreateReminder)
		r.Patch("/reminders/{id}", s.handleUpdateReminder)
		r.Delete("/reminders/{id}", s.handleDeleteReminder)
		r.Post("/sweep", s.handleSweep)

		r.Get("/notifications/due", s.handleDueNotifications)
		r.Post("/notifications/{id}/delivered", s.handleMarkDelivered)

		r.Route("/remindnet", func(r chi.Router) {
			r.Get("/posts", s.handleFeed)
			r.Get("/stream", s.handleStream)
			r.Post("/posts", s.handleShare)
			r.Post("/posts/{id}/like", s.handleLike)
			r.Post("/posts/{id}/import", s.handleImport)
			r.Delete("/posts/{id}", s.handleDeletePost)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.PingContext(r.Context()); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

// userFrom reads the caller identity set by the client.
func userFrom(r *http.Request) engine.User {
	return engine.User{
		ID:   r.Header.Get("X-User-ID"),
		Name: r.Header.Get("X-User-Name"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps an error class to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parrot.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, parrot.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, parrot.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, parrot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parrot.ErrAlreadyImported):
		return http.StatusConflict
	case errors.Is(err, parrot.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeErrorMsg(w, status, err.Error())
}
