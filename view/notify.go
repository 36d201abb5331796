package view

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/pathutil"
	"github.com/ayoisaiah/studyblocks/internal/timeutil"
)

var errParseCommand = &apperr.Error{
	Message: "unable to parse settings.cmd option",
}

// Alerter is told about every block that completes while the screen is open.
type Alerter interface {
	BlockCompleted(b models.PomodoroBlock, sess *models.StudySession)
}

// Notifier alerts the user through a desktop notification, an optional
// sound, and an optional shell command.
type Notifier struct {
	log     *slog.Logger
	sound   string
	cmd     string
	enabled bool
}

// NewNotifier creates a Notifier from the notification settings.
func NewNotifier(cfg *config.Config, log *slog.Logger) *Notifier {
	return &Notifier{
		log:     log,
		sound:   cfg.Notifications.Sound,
		cmd:     cfg.Settings.Cmd,
		enabled: cfg.Notifications.Enabled,
	}
}

// BlockCompleted alerts the user that b has finished. Each channel runs in
// the background so that a slow sound or command never holds up the screen.
func (n *Notifier) BlockCompleted(b models.PomodoroBlock, sess *models.StudySession) {
	if n.enabled {
		title, msg := completionMessage(b, sess)

		// pathToIcon will be an empty string if file is not found
		pathToIcon, _ := xdg.SearchDataFile(
			filepath.Join(pathutil.Dir(), "static", "icon.png"),
		)

		if err := beeep.Notify(title, msg, pathToIcon); err != nil {
			n.log.Warn("unable to display notification", slog.Any("error", err))
		}

		if n.sound != "" {
			go func() {
				if err := playSound(n.sound); err != nil {
					n.log.Warn("unable to play sound", slog.Any("error", err))
				}
			}()
		}
	}

	if n.cmd != "" {
		go func() {
			if err := runCommand(n.cmd); err != nil {
				n.log.Warn(
					"completion command failed",
					slog.String("cmd", n.cmd),
					slog.Any("error", err),
				)
			}
		}()
	}
}

func completionMessage(
	b models.PomodoroBlock,
	sess *models.StudySession,
) (title, msg string) {
	title = fmt.Sprintf("%s block complete", b.Type.Label())

	subject := "your session"
	total := 0

	if sess != nil {
		subject = sess.Subject
		total = sess.TotalMinutes
	}

	if b.Type == models.Break {
		msg = fmt.Sprintf("Back to %s", subject)
	} else {
		msg = fmt.Sprintf("Time for a break from %s", subject)
	}

	return title, fmt.Sprintf("%s (%s so far)", msg, timeutil.HumanMinutes(total))
}

// splitCommand parses cmd using shell quoting rules.
func splitCommand(cmd string) ([]string, error) {
	parts, err := shellquote.Split(cmd)
	if err != nil {
		return nil, errParseCommand.Wrap(err)
	}

	return parts, nil
}

// runCommand executes the configured completion command.
func runCommand(cmd string) error {
	parts, err := splitCommand(cmd)
	if err != nil {
		return err
	}

	if len(parts) == 0 {
		return nil
	}

	return exec.Command(parts[0], parts[1:]...).Run()
}
