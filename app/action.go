package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/client"
	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/logger"
	"github.com/ayoisaiah/studyblocks/internal/pathutil"
	"github.com/ayoisaiah/studyblocks/internal/ui"
)

const (
	envNoColor            = "NO_COLOR"
	envStudyblocksNoColor = "STUDYBLOCKS_NO_COLOR"
)

var (
	errSessionIDRequired = &apperr.Error{
		Message: "a session id is required",
	}

	errInvalidSessionID = &apperr.Error{
		Message: "invalid session id: %q",
	}

	errNotLoggedIn = &apperr.Error{
		Message: "not logged in: run 'studyblocks login' first",
	}
)

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.New(
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	return cfg, nil
}

// authedClient builds a client from the saved credentials.
func authedClient(ctx *cli.Context, cfg *config.Config) (*client.Client, error) {
	creds, err := client.LoadCredentials(pathutil.CredentialsFilePath())
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return nil, errNotLoggedIn
		}

		return nil, err
	}

	// an explicit --server wins over the server the credentials came from
	serverURL := firstNonEmptyString(ctx.String("server"), creds.ServerURL, cfg.Server.URL)

	return client.FromCredentials(
		creds,
		serverURL,
		client.WithTimeout(cfg.Client.RequestTimeout),
	), nil
}

// sessionArg parses the session id in the first positional argument.
func sessionArg(ctx *cli.Context) (int, error) {
	arg := ctx.Args().First()
	if arg == "" {
		return 0, errSessionIDRequired
	}

	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errInvalidSessionID.Fmt(arg)
	}

	return id, nil
}

// withLogger opens the log file and sets the default logger for the
// duration of an action. The serve command also tees records to stderr.
func withLogger(
	cfg *config.Config,
	tee io.Writer,
	fn func(l *slog.Logger) error,
) error {
	l, closer, err := logger.New(cfg.Log, logger.Options{
		Path: pathutil.LogFilePath(),
		Tee:  tee,
	})
	if err != nil {
		return err
	}

	defer closer.Close()

	return fn(l)
}

// editConfigAction handles the edit-config command which opens the config
// file in the user's default text editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, pathutil.ConfigFilePath())

	cmd.Stderr = config.Stderr
	cmd.Stdin = config.Stdin
	cmd.Stdout = config.Stdout

	return cmd.Run()
}

// initAction runs the interactive configuration prompts.
func initAction(_ *cli.Context) error {
	_, err := config.Prompt(pathutil.ConfigFilePath())

	return err
}

func beforeAction(ctx *cli.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	// Override the default help template
	cli.AppHelpTemplate = helpText()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envStudyblocksNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting studyblocks")

	return nil
}

// background returns the context of a command, falling back to
// context.Background for actions invoked outside of a cli.App.
func background(ctx *cli.Context) context.Context {
	if ctx.Context != nil {
		return ctx.Context
	}

	return context.Background()
}
