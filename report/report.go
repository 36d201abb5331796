// Package report prints command outcomes to the terminal.
package report

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/osutil"
)

// Error prints the user-facing message of err.
func Error(err error) {
	pterm.Error.Println(apperr.Message(err))
}

// Quit prints err and exits with code.
func Quit(err error, code osutil.ExitCode) {
	Error(err)
	os.Exit(int(code))
}
