// Package view renders the countdown screen of a study session and turns key
// presses into block lifecycle intents.
package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/studyblocks/block"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
)

const (
	padding  = 2
	maxWidth = 80
)

type (
	// snapshotMsg carries the manager state after a transition or a tick.
	snapshotMsg block.Snapshot

	// resultMsg reports the outcome of an intent that called the store.
	resultMsg struct {
		err error
	}
)

// Option configures a Model.
type Option func(*Model)

// WithAlerter sets what is told about completed blocks.
func WithAlerter(a Alerter) Option {
	return func(m *Model) {
		m.alerter = a
	}
}

// WithClock sets the time source used for the end-of-block hint.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// Model is the bubbletea model of the session screen.
type Model struct {
	ctx      context.Context
	mgr      *block.Manager
	cfg      *config.Config
	alerter  Alerter
	now      func() time.Time
	err      error
	style    Style
	help     help.Model
	progress progress.Model
	snap     block.Snapshot
	keys     keymap
	quitting bool
}

// New creates the session screen for mgr.
func New(
	ctx context.Context,
	mgr *block.Manager,
	cfg *config.Config,
	opts ...Option,
) *Model {
	m := &Model{
		ctx:   ctx,
		mgr:   mgr,
		cfg:   cfg,
		now:   time.Now,
		style: NewStyle(cfg.Display.DarkTheme),
		help:  help.New(),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
		),
		keys: defaultKeymap,
		snap: mgr.Snapshot(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Snapshot returns the state the screen last rendered.
func (m *Model) Snapshot() block.Snapshot {
	return m.snap
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForEvent(m.mgr))
}

// waitForEvent blocks until the manager reports a change.
func waitForEvent(mgr *block.Manager) tea.Cmd {
	return func() tea.Msg {
		<-mgr.Events()
		return snapshotMsg(mgr.Snapshot())
	}
}

func (m *Model) load() tea.Cmd {
	return m.intent(m.mgr.Load)
}

// intent runs a store-bound manager call off the update loop.
func (m *Model) intent(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{err: fn(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.applySnapshot(block.Snapshot(msg))
		return m, waitForEvent(m.mgr)

	case resultMsg:
		m.err = msg.err
		m.applySnapshot(m.mgr.Snapshot())

		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}

		m.help.Width = msg.Width

		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if p, ok := progressModel.(progress.Model); ok {
			m.progress = p
		}

		return m, cmd

	default:
		slog.Debug(spew.Sdump(msg))
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true

		if m.snap.State == block.Running || m.snap.State == block.Paused {
			_ = m.mgr.Cancel()
		}

		return m, tea.Quit

	case key.Matches(msg, m.keys.work):
		return m, m.start(models.Work)

	case key.Matches(msg, m.keys.rest):
		return m, m.start(models.Break)

	case key.Matches(msg, m.keys.togglePlay):
		if m.snap.State == block.Paused {
			m.err = m.mgr.Resume()
		} else {
			m.err = m.mgr.Pause()
		}

	case key.Matches(msg, m.keys.cancel):
		m.err = m.mgr.Cancel()

	case key.Matches(msg, m.keys.complete):
		return m, m.intent(m.mgr.MarkSessionComplete)

	case key.Matches(msg, m.keys.retry):
		if m.snap.State == block.Completing {
			return m, m.intent(m.mgr.RetryCompletion)
		}

		return m, m.load()

	case key.Matches(msg, m.keys.refresh):
		return m, m.load()
	}

	m.applySnapshot(m.mgr.Snapshot())

	return m, nil
}

func (m *Model) start(bt models.BlockType) tea.Cmd {
	return m.intent(func(ctx context.Context) error {
		return m.mgr.StartBlock(ctx, bt)
	})
}

// applySnapshot replaces the rendered state and alerts on every block that
// became complete since the previous snapshot.
func (m *Model) applySnapshot(next block.Snapshot) {
	prev := m.snap
	m.snap = next

	if m.alerter == nil || prev.Session == nil || next.Session == nil {
		return
	}

	done := make(map[int]bool, len(prev.Session.Blocks))
	for i := range prev.Session.Blocks {
		if prev.Session.Blocks[i].Completed {
			done[prev.Session.Blocks[i].ID] = true
		}
	}

	for i := range next.Session.Blocks {
		b := next.Session.Blocks[i]
		if b.Completed && !done[b.ID] {
			m.alerter.BlockCompleted(b, next.Session)
		}
	}
}
