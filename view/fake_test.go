package view

import (
	"context"
	"sync"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/stats"
	"github.com/ayoisaiah/studyblocks/store"
)

type memStore struct {
	sess   models.StudySession
	nextID int
	mu     sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		sess: models.StudySession{
			ID:      1,
			Subject: "Organic chemistry",
			Goal:    "Chapter 4 reactions",
		},
	}
}

func (s *memStore) CreateBlock(
	_ context.Context,
	_ int,
	bt models.BlockType,
	minutes int,
) (*models.PomodoroBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	b := models.PomodoroBlock{
		ID:              s.nextID,
		SessionID:       s.sess.ID,
		Type:            bt,
		DurationMinutes: minutes,
		StartedAt:       &now,
	}
	s.sess.Blocks = append(s.sess.Blocks, b)

	return &b, nil
}

func (s *memStore) CompleteBlock(_ context.Context, blockID int) (*models.PomodoroBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sess.Blocks {
		if s.sess.Blocks[i].ID == blockID {
			s.sess.Blocks[i].Completed = true
			s.sess.TotalMinutes = stats.TotalMinutes(s.sess.Blocks)
			b := s.sess.Blocks[i]

			return &b, nil
		}
	}

	return nil, store.ErrNotFound.Fmt("block")
}

func (s *memStore) GetSession(_ context.Context, _ int) (*models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.sess
	cp.Blocks = append([]models.PomodoroBlock(nil), s.sess.Blocks...)

	return &cp, nil
}

func (s *memStore) MarkSessionComplete(_ context.Context, _ int) (*models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess.Completed = true
	cp := s.sess

	return &cp, nil
}

type recordingAlerter struct {
	blocks []models.PomodoroBlock
}

func (r *recordingAlerter) BlockCompleted(b models.PomodoroBlock, _ *models.StudySession) {
	r.blocks = append(r.blocks, b)
}
