package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, message string, status int) {
	s.respondJSON(w, errorResponse{Error: message}, status)
}

// respondStoreError maps a record store failure onto an HTTP status.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, apperr.Message(err), http.StatusNotFound)
	case errors.Is(err, store.ErrForbidden):
		s.respondError(w, apperr.Message(err), http.StatusForbidden)
	case errors.Is(err, store.ErrUsernameTaken),
		errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrSessionCompleted):
		s.respondError(w, apperr.Message(err), http.StatusUnprocessableEntity)
	default:
		s.log.Error(
			"record store failure",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		s.respondError(w, "internal server error", http.StatusInternalServerError)
	}
}
