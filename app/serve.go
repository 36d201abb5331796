package app

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/pathutil"
	"github.com/ayoisaiah/studyblocks/server"
	"github.com/ayoisaiah/studyblocks/store"
)

// openStore opens the configured storage driver, defaulting to a database
// file in the data directory.
func openStore(cfg *config.Config) (store.Store, error) {
	path := firstNonEmptyString(
		cfg.Storage.Path,
		pathutil.DBFilePath(cfg.Storage.Driver),
	)

	return store.Open(cfg.Storage, path)
}

// serveAction runs the block record server until interrupted.
func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	return withLogger(cfg, os.Stderr, func(l *slog.Logger) error {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		defer st.Close()

		l.Info(
			"storage opened",
			slog.String("driver", cfg.Storage.Driver),
		)

		sigCtx, stop := signal.NotifyContext(
			background(ctx),
			os.Interrupt,
			syscall.SIGTERM,
		)
		defer stop()

		srv := server.New(st, cfg.Blocks, server.WithLogger(l))

		return srv.ListenAndServe(sigCtx, cfg.Server.Addr)
	})
}
