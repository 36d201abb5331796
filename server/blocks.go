package server

import (
	"log/slog"
	"net/http"

	"github.com/ayoisaiah/studyblocks/internal/models"
)

func (s *Server) listBlocks(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "study session not found", http.StatusNotFound)
		return
	}

	blocks, err := s.store.ListBlocks(r.Context(), userID(r), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, blocks, http.StatusOK)
}

// createBlock persists a new incomplete block. The duration defaults to the
// configured length of the block type.
func (s *Server) createBlock(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := idParam(r)
	if !ok {
		s.respondError(w, "study session not found", http.StatusNotFound)
		return
	}

	var req createBlockRequest

	if err := s.decode(r, &req); err != nil {
		s.respondRequestError(w, err)
		return
	}

	bt := models.Work
	if req.BlockType != "" {
		bt = models.BlockType(req.BlockType)
	}

	minutes := s.blocks.Minutes(bt)
	if req.DurationMinutes != nil {
		minutes = *req.DurationMinutes
	}

	b := &models.PomodoroBlock{
		SessionID:       sessionID,
		Type:            bt,
		DurationMinutes: minutes,
	}

	if err := s.store.CreateBlock(r.Context(), userID(r), b); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.log.Debug(
		"block created",
		slog.Int("block_id", b.ID),
		slog.Int("session_id", sessionID),
		slog.String("block_type", string(bt)),
	)

	s.respondJSON(w, b, http.StatusCreated)
}

func (s *Server) completeBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "pomodoro block not found", http.StatusNotFound)
		return
	}

	b, err := s.store.CompleteBlock(r.Context(), userID(r), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, b, http.StatusOK)
}

func (s *Server) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, "pomodoro block not found", http.StatusNotFound)
		return
	}

	if err := s.store.DeleteBlock(r.Context(), userID(r), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	s.respondJSON(w, messageResponse{Message: "Block deleted successfully."}, http.StatusOK)
}
