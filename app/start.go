package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/block"
	"github.com/ayoisaiah/studyblocks/view"
)

// startAction opens the block timer for a session. Any block still running
// when the screen is closed is cancelled and stays incomplete. A block whose
// completion is being recorded is given up to the request timeout to finish.
func startAction(ctx *cli.Context) error {
	id, err := sessionArg(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if err != nil {
		return err
	}

	return withLogger(cfg, nil, func(l *slog.Logger) error {
		bg := background(ctx)

		reg := block.NewRegistry(c,
			block.WithDurations(cfg.Blocks),
			block.WithTimeout(cfg.Client.RequestTimeout),
			block.WithLogger(l),
			block.WithContext(bg),
		)

		mgr := reg.Get(id)

		defer func() {
			if err := reg.Release(id); err != nil {
				l.Warn("block left active on exit", slog.Any("error", err))
			}
		}()

		// fail early on an unknown or foreign session
		if err := mgr.Load(bg); err != nil {
			return err
		}

		m := view.New(bg, mgr, cfg,
			view.WithAlerter(view.NewNotifier(cfg, l)),
		)

		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

		settle(mgr, cfg.Client.RequestTimeout, l)

		return err
	})
}

// settle waits for the requests of mgr to finish before the process exits.
func settle(mgr *block.Manager, timeout time.Duration, l *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := mgr.Settle(ctx); err != nil {
		l.Warn(
			"record store request still in flight on exit",
			slog.String("state", mgr.Snapshot().State.String()),
			slog.Any("error", err),
		)
	}
}
