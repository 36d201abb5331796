package block

import (
	"slices"
	"sync"
)

// Registry keeps one Manager per study session so that each session has a
// single owner of its active block.
type Registry struct {
	store    RecordStore
	managers map[int]*Manager
	opts     []Option
	mu       sync.Mutex
}

// NewRegistry returns an empty registry. opts are applied to every manager
// it creates.
func NewRegistry(store RecordStore, opts ...Option) *Registry {
	return &Registry{
		store:    store,
		managers: make(map[int]*Manager),
		opts:     opts,
	}
}

// Get returns the manager of sessionID, creating it on first use.
func (r *Registry) Get(sessionID int) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[sessionID]
	if !ok {
		m = New(r.store, sessionID, r.opts...)
		r.managers[sessionID] = m
	}

	return m
}

// Lookup returns the manager of sessionID if one exists.
func (r *Registry) Lookup(sessionID int) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[sessionID]

	return m, ok
}

// Release abandons any active block of sessionID and forgets its manager.
// Blocks awaiting completion are kept so the completion is not lost.
func (r *Registry) Release(sessionID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[sessionID]
	if !ok {
		return nil
	}

	switch m.Snapshot().State {
	case Running, Paused:
		if err := m.Cancel(); err != nil {
			return err
		}
	case Starting, Completing:
		return ErrBlockActive.Fmt(m.Snapshot().State)
	case Idle:
	}

	delete(r.managers, sessionID)

	return nil
}

// Sessions returns the ids of the managed sessions in ascending order.
func (r *Registry) Sessions() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, 0, len(r.managers))
	for id := range r.managers {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
