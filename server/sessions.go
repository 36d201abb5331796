package server

import (
	"net/http"

	"github.com/ayoisaiah/studyblocks/internal/models"
)

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), userID(r))
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, sessions, http.StatusOK)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "study session not found", http.StatusNotFound)
		return
	}

	sess, err := s.store.GetSession(r.Context(), userID(r), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, sess, http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest

	if err := s.decode(r, &req); err != nil {
		s.respondRequestError(w, err)
		return
	}

	sess := &models.StudySession{
		UserID:  userID(r),
		Subject: req.Subject,
		Goal:    req.Goal,
	}

	if err := s.store.CreateSession(r.Context(), sess); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, sess, http.StatusCreated)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "study session not found", http.StatusNotFound)
		return
	}

	var req updateSessionRequest

	if err := s.decode(r, &req); err != nil {
		s.respondRequestError(w, err)
		return
	}

	if req.TotalMinutes != nil {
		s.respondError(
			w,
			"total_minutes is derived from completed blocks and cannot be set",
			http.StatusUnprocessableEntity,
		)

		return
	}

	sess, err := s.store.UpdateSession(r.Context(), userID(r), id, models.SessionUpdate{
		Subject:   req.Subject,
		Goal:      req.Goal,
		Completed: req.Completed,
	})
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, sess, http.StatusOK)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "study session not found", http.StatusNotFound)
		return
	}

	if err := s.store.DeleteSession(r.Context(), userID(r), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, messageResponse{Message: "Session deleted successfully."}, http.StatusOK)
}
