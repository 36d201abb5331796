// Package block owns the lifecycle of the single active pomodoro block of a
// study session. A Manager mediates between the countdown engine and the
// record store: blocks are persisted when they start and marked complete
// when their countdown reaches zero. Cancelled blocks are left incomplete in
// the record store.
package block

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/logger"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/stats"
	"github.com/ayoisaiah/studyblocks/timer"
)

const defaultTimeout = 10 * time.Second

// RecordStore is the subset of the record store used by a Manager.
type RecordStore interface {
	CreateBlock(
		ctx context.Context,
		sessionID int,
		blockType models.BlockType,
		minutes int,
	) (*models.PomodoroBlock, error)
	CompleteBlock(ctx context.Context, blockID int) (*models.PomodoroBlock, error)
	GetSession(ctx context.Context, sessionID int) (*models.StudySession, error)
	MarkSessionComplete(ctx context.Context, sessionID int) (*models.StudySession, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler sets the scheduler that drives the countdown.
func WithScheduler(s timer.Scheduler) Option {
	return func(m *Manager) {
		m.sched = s
	}
}

// WithDurations sets the block lengths sent when a block is created.
func WithDurations(d config.BlocksConfig) Option {
	return func(m *Manager) {
		m.durations = d
	}
}

// WithTimeout bounds every request to the record store.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets the logger for lifecycle transitions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithContext sets the base context of the completion request, which is
// issued from the countdown rather than from a caller.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		m.baseCtx = ctx
	}
}

// Manager is the state machine of the active block of one session. All
// methods are safe for concurrent use.
type Manager struct {
	baseCtx   context.Context
	store     RecordStore
	sched     timer.Scheduler
	engine    *timer.Engine
	log       *slog.Logger
	session   *models.StudySession
	active    *models.PomodoroBlock
	lastErr   error
	events    chan struct{}
	settled   chan struct{}
	durations config.BlocksConfig
	timeout   time.Duration
	sessionID int
	state     State
	mu        sync.Mutex
	inflight  bool
	marking   bool
}

// New returns an idle manager for the session identified by sessionID.
func New(store RecordStore, sessionID int, opts ...Option) *Manager {
	m := &Manager{
		baseCtx: context.Background(),
		store:   store,
		log:     logger.Discard(),
		durations: config.BlocksConfig{
			WorkMinutes:  config.DefaultWorkMinutes,
			BreakMinutes: config.DefaultBreakMinutes,
		},
		timeout:   defaultTimeout,
		sessionID: sessionID,
		events:    make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.engine = timer.New(
		m.sched,
		m.onCountdownDone,
		timer.WithTickHook(func(int) { m.notify() }),
	)

	m.log = m.log.With(slog.Int("session_id", sessionID))

	return m
}

// SessionID returns the id of the managed session.
func (m *Manager) SessionID() int {
	return m.sessionID
}

// Events delivers a value whenever the snapshot may have changed. Signals
// are coalesced, so a receiver should read the latest Snapshot on each one.
func (m *Manager) Events() <-chan struct{} {
	return m.events
}

// Snapshot returns the current state of the manager.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:            m.state,
		SecondsRemaining: NoTimer,
		Err:              m.lastErr,
	}

	if m.session != nil {
		sess := *m.session
		sess.Blocks = append([]models.PomodoroBlock(nil), m.session.Blocks...)
		snap.Session = &sess
		snap.Summary = stats.Summarize(&sess)
	}

	if m.active != nil {
		active := *m.active
		snap.Active = &active
		snap.ActiveType = m.active.Type

		if remaining, armed := m.engine.Remaining(); armed {
			snap.SecondsRemaining = remaining
		} else if m.state == Completing {
			snap.SecondsRemaining = 0
		}
	}

	return snap
}

// Load fetches the session and its blocks from the record store.
func (m *Manager) Load(ctx context.Context) error {
	sess, err := m.fetch(ctx)

	m.mu.Lock()
	if err != nil {
		m.lastErr = ErrRecordStore.Fmt("load the session").Wrap(err)
		err = m.lastErr
	} else {
		m.session = withActive(sess, m.active)
		m.lastErr = nil
	}
	m.mu.Unlock()

	m.notify()

	return err
}

// StartBlock creates a block of type bt in the record store and starts its
// countdown. It is refused without contacting the record store unless the
// manager is idle.
func (m *Manager) StartBlock(ctx context.Context, bt models.BlockType) error {
	m.mu.Lock()

	if m.state != Idle {
		state := m.state
		m.mu.Unlock()

		return ErrBlockActive.Fmt(state)
	}

	if m.marking {
		m.mu.Unlock()
		return ErrInvalidTransition.Fmt("start a block", "marking the session complete")
	}

	if m.session != nil && m.session.Completed {
		m.mu.Unlock()
		return ErrSessionCompleted
	}

	m.state = Starting
	m.lastErr = nil
	needLoad := m.session == nil
	minutes := m.durations.Minutes(bt)

	m.mu.Unlock()
	m.notify()

	if needLoad {
		sess, err := m.fetch(ctx)
		if err != nil {
			return m.abortStart(ErrRecordStore.Fmt("load the session").Wrap(err))
		}

		m.mu.Lock()
		m.session = withActive(sess, m.active)
		m.mu.Unlock()

		if sess.Completed {
			m.setState(Idle)
			return ErrSessionCompleted
		}
	}

	cctx, cancel := m.withTimeout(ctx)
	b, err := m.store.CreateBlock(cctx, m.sessionID, bt, minutes)
	cancel()

	if err != nil {
		return m.abortStart(ErrRecordStore.Fmt("start the block").Wrap(err))
	}

	m.mu.Lock()

	if err := m.engine.Arm(b.Seconds()); err != nil {
		m.state = Idle
		m.mu.Unlock()
		m.notify()

		return err
	}

	m.active = b
	m.session = withActive(m.session, b)
	m.state = Running

	m.mu.Unlock()

	m.log.Info(
		"block started",
		slog.Int("block_id", b.ID),
		slog.String("block_type", string(b.Type)),
		slog.Int("duration_minutes", b.DurationMinutes),
	)

	m.notify()

	return nil
}

// Pause halts the countdown of the running block.
func (m *Manager) Pause() error {
	m.mu.Lock()
	defer m.notify()
	defer m.mu.Unlock()

	if m.state != Running {
		return ErrInvalidTransition.Fmt("pause", m.state)
	}

	m.engine.Pause()
	m.state = Paused

	return nil
}

// Resume continues the countdown of the paused block.
func (m *Manager) Resume() error {
	m.mu.Lock()
	defer m.notify()
	defer m.mu.Unlock()

	if m.state != Paused {
		return ErrInvalidTransition.Fmt("resume", m.state)
	}

	m.engine.Resume()
	m.state = Running

	return nil
}

// Cancel abandons the active block. The block remains incomplete in the
// record store. Once the countdown has reached zero the completion is
// honoured and Cancel is refused.
func (m *Manager) Cancel() error {
	m.mu.Lock()

	if m.state != Running && m.state != Paused {
		state := m.state
		m.mu.Unlock()

		return ErrInvalidTransition.Fmt("cancel", state)
	}

	if !m.engine.Armed() {
		m.mu.Unlock()
		return ErrInvalidTransition.Fmt("cancel", Completing)
	}

	m.engine.Cancel()

	blockID := m.active.ID
	m.active = nil
	m.state = Idle

	m.mu.Unlock()

	m.log.Info("block cancelled", slog.Int("block_id", blockID))
	m.notify()

	return nil
}

// RetryCompletion re-issues a failed completion request for the active
// block.
func (m *Manager) RetryCompletion(ctx context.Context) error {
	m.mu.Lock()

	if m.state != Completing {
		state := m.state
		m.mu.Unlock()

		return ErrInvalidTransition.Fmt("retry completion", state)
	}

	if m.inflight || m.active == nil {
		m.mu.Unlock()
		return ErrNoActiveBlock
	}

	m.inflight = true
	m.lastErr = nil

	m.mu.Unlock()
	m.notify()

	return m.complete(ctx)
}

// MarkSessionComplete sets the completed flag of the session. It is refused
// while a request to the record store is in flight.
func (m *Manager) MarkSessionComplete(ctx context.Context) error {
	m.mu.Lock()

	if m.state == Starting || m.state == Completing {
		state := m.state
		m.mu.Unlock()

		return ErrInvalidTransition.Fmt("mark the session complete", state)
	}

	if m.marking {
		m.mu.Unlock()
		return ErrInvalidTransition.Fmt("mark the session complete", "marking the session complete")
	}

	m.marking = true

	m.mu.Unlock()

	cctx, cancel := m.withTimeout(ctx)
	sess, err := m.store.MarkSessionComplete(cctx, m.sessionID)
	cancel()

	m.mu.Lock()

	m.marking = false

	if err != nil {
		m.lastErr = ErrRecordStore.Fmt("mark the session complete").Wrap(err)
		err = m.lastErr
	} else {
		m.lastErr = nil

		if m.session != nil {
			m.session.Completed = sess.Completed
		} else {
			m.session = sess
		}
	}

	m.mu.Unlock()
	m.notify()

	if err == nil {
		m.log.Info("session marked complete")
	}

	return err
}

func (m *Manager) onCountdownDone() {
	m.mu.Lock()

	if (m.state != Running && m.state != Paused) || m.active == nil {
		m.mu.Unlock()
		return
	}

	m.state = Completing
	m.inflight = true

	m.mu.Unlock()
	m.notify()

	_ = m.complete(m.baseCtx)
}

// complete marks the active block complete and refreshes the session. It is
// entered in the Completing state with inflight set.
func (m *Manager) complete(ctx context.Context) error {
	m.mu.Lock()
	blockID := m.active.ID
	m.mu.Unlock()

	cctx, cancel := m.withTimeout(ctx)
	done, err := m.store.CompleteBlock(cctx, blockID)
	cancel()

	if err != nil {
		m.mu.Lock()
		m.inflight = false
		m.lastErr = ErrRecordStore.Fmt("complete the block").Wrap(err)
		err = m.lastErr
		m.mu.Unlock()

		m.log.Error(
			"block completion failed",
			slog.Int("block_id", blockID),
			slog.Any("error", err),
		)
		m.notify()

		return err
	}

	m.log.Info("block completed", slog.Int("block_id", blockID))

	sess, fetchErr := m.fetch(ctx)

	m.mu.Lock()

	m.active = nil
	m.inflight = false
	m.state = Idle

	if fetchErr != nil {
		m.markLocalComplete(done)
		m.lastErr = ErrRecordStore.Fmt("refresh the session").Wrap(fetchErr)
		err = m.lastErr
	} else {
		m.session = sess
		m.lastErr = nil
	}

	m.mu.Unlock()
	m.notify()

	return err
}

// markLocalComplete records a confirmed completion in the cached session
// when it could not be re-fetched. The cached total is left untouched.
func (m *Manager) markLocalComplete(done *models.PomodoroBlock) {
	if m.session == nil || done == nil {
		return
	}

	for i := range m.session.Blocks {
		if m.session.Blocks[i].ID == done.ID {
			m.session.Blocks[i] = *done
		}
	}
}

func (m *Manager) abortStart(err error) error {
	m.mu.Lock()
	m.state = Idle
	m.lastErr = err
	m.mu.Unlock()

	m.log.Error("block start failed", slog.Any("error", err))
	m.notify()

	return err
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) fetch(ctx context.Context) (*models.StudySession, error) {
	cctx, cancel := m.withTimeout(ctx)
	defer cancel()

	sess, err := m.store.GetSession(cctx, m.sessionID)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		return nil, errors.New("empty session response")
	}

	return sess, nil
}

func (m *Manager) withTimeout(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = m.baseCtx
	}

	return context.WithTimeout(ctx, m.timeout)
}

// Settle waits until no request started by the manager is in flight, or
// until ctx is done. A block whose completion has failed counts as settled.
func (m *Manager) Settle(ctx context.Context) error {
	m.mu.Lock()

	if !m.busy() {
		m.mu.Unlock()
		return nil
	}

	if m.settled == nil {
		m.settled = make(chan struct{})
	}

	ch := m.settled

	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// busy reports whether a create, complete or mark request is in flight.
// m.mu must be held.
func (m *Manager) busy() bool {
	return m.state == Starting || m.inflight || m.marking
}

// withActive returns sess with the active block b in its block list. A
// fetch that raced with the creation of b may not contain it yet.
func withActive(sess *models.StudySession, b *models.PomodoroBlock) *models.StudySession {
	if sess == nil || b == nil {
		return sess
	}

	for i := range sess.Blocks {
		if sess.Blocks[i].ID == b.ID {
			return sess
		}
	}

	sess.Blocks = append(sess.Blocks, *b)

	return sess
}

// notify signals a change to Events and wakes Settle once the manager has
// no request in flight. m.mu must not be held.
func (m *Manager) notify() {
	m.mu.Lock()
	if m.settled != nil && !m.busy() {
		close(m.settled)
		m.settled = nil
	}
	m.mu.Unlock()

	select {
	case m.events <- struct{}{}:
	default:
	}
}
