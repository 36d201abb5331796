// Package server exposes the block record store over HTTP. Every route except
// registration and login requires a bearer token issued by one of them.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/logger"
	"github.com/ayoisaiah/studyblocks/store"
)

const shutdownTimeout = 5 * time.Second

// Server handles the HTTP API of the record store.
type Server struct {
	store    store.Store
	log      *slog.Logger
	validate *validator.Validate
	newToken func() string
	router   chi.Router
	blocks   config.BlocksConfig
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithTokenSource replaces the generator of access tokens.
func WithTokenSource(fn func() string) Option {
	return func(s *Server) {
		s.newToken = fn
	}
}

// New returns a server backed by st. blocks supplies the duration of a new
// block when a request does not carry one.
func New(st store.Store, blocks config.BlocksConfig, opts ...Option) *Server {
	s := &Server{
		store:    st,
		log:      logger.Discard(),
		validate: newValidator(),
		newToken: uuid.NewString,
		blocks:   blocks,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("record server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("record server shutting down")

	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/register", s.register)
	r.Post("/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Delete("/logout", s.logout)
		r.Get("/check_session", s.checkSession)

		r.Route("/study_sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Patch("/", s.updateSession)
				r.Delete("/", s.deleteSession)

				r.Get("/pomodoro_blocks", s.listBlocks)
				r.Post("/pomodoro_blocks", s.createBlock)
			})
		})

		r.Patch("/pomodoro_blocks/{id}/complete", s.completeBlock)
		r.Delete("/pomodoro_blocks/{id}", s.deleteBlock)
	})

	return r
}

// requestLogger records every request with its status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Info(
			"request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
