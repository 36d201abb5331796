package block_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/stats"
)

var errOffline = errors.New("connection refused")

// fakeStore is an in-memory record store that counts requests.
type fakeStore struct {
	failCreate   error
	failComplete error
	failGet      error
	sessions     map[int]*models.StudySession
	calls        map[string]int
	gates        map[string]*gate
	nextBlockID  int
	mu           sync.Mutex
}

func newFakeStore(sessions ...models.StudySession) *fakeStore {
	f := &fakeStore{
		sessions: make(map[int]*models.StudySession),
		calls:    make(map[string]int),
		gates:    make(map[string]*gate),
	}

	for i := range sessions {
		s := sessions[i]
		f.sessions[s.ID] = &s
	}

	return f
}

// gate holds a request after the store has applied it, until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

// hold makes the next requests named name wait on the returned gate.
func (f *fakeStore) hold(name string) *gate {
	g := &gate{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}

	f.set(func(f *fakeStore) { f.gates[name] = g })

	return g
}

func (f *fakeStore) wait(name string) {
	f.mu.Lock()
	g := f.gates[name]
	f.mu.Unlock()

	if g == nil {
		return
	}

	g.entered <- struct{}{}
	<-g.release
}

func (f *fakeStore) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[name]
}

func (f *fakeStore) storeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	for _, v := range f.calls {
		n += v
	}

	return n
}

func (f *fakeStore) set(fn func(f *fakeStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fn(f)
}

func (f *fakeStore) CreateBlock(
	ctx context.Context,
	sessionID int,
	bt models.BlockType,
	minutes int,
) (*models.PomodoroBlock, error) {
	defer f.wait("create")

	return f.createBlock(ctx, sessionID, bt, minutes)
}

func (f *fakeStore) createBlock(
	_ context.Context,
	sessionID int,
	bt models.BlockType,
	minutes int,
) (*models.PomodoroBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["create"]++

	if f.failCreate != nil {
		return nil, f.failCreate
	}

	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}

	if sess.Completed {
		return nil, errors.New("study session is already completed")
	}

	f.nextBlockID++
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	b := models.PomodoroBlock{
		ID:              f.nextBlockID,
		SessionID:       sessionID,
		Type:            bt,
		DurationMinutes: minutes,
		StartedAt:       &now,
	}

	sess.Blocks = append(sess.Blocks, b)

	return &b, nil
}

func (f *fakeStore) CompleteBlock(
	ctx context.Context,
	blockID int,
) (*models.PomodoroBlock, error) {
	defer f.wait("complete")

	return f.completeBlock(ctx, blockID)
}

func (f *fakeStore) completeBlock(
	_ context.Context,
	blockID int,
) (*models.PomodoroBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["complete"]++

	if f.failComplete != nil {
		return nil, f.failComplete
	}

	for _, sess := range f.sessions {
		for i := range sess.Blocks {
			b := &sess.Blocks[i]
			if b.ID != blockID {
				continue
			}

			b.Completed = true
			sess.TotalMinutes = stats.TotalMinutes(sess.Blocks)

			done := *b

			return &done, nil
		}
	}

	return nil, errors.New("block not found")
}

func (f *fakeStore) GetSession(
	ctx context.Context,
	sessionID int,
) (*models.StudySession, error) {
	defer f.wait("get")

	return f.getSession(ctx, sessionID)
}

func (f *fakeStore) getSession(
	_ context.Context,
	sessionID int,
) (*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["get"]++

	if f.failGet != nil {
		return nil, f.failGet
	}

	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}

	cp := *sess
	cp.Blocks = append([]models.PomodoroBlock(nil), sess.Blocks...)

	return &cp, nil
}

func (f *fakeStore) MarkSessionComplete(
	ctx context.Context,
	sessionID int,
) (*models.StudySession, error) {
	defer f.wait("mark")

	return f.markSessionComplete(ctx, sessionID)
}

func (f *fakeStore) markSessionComplete(
	_ context.Context,
	sessionID int,
) (*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls["mark"]++

	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}

	sess.Completed = true
	cp := *sess

	return &cp, nil
}
