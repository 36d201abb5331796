// Package osutil holds platform names, exit codes and file modes shared by
// the commands.
package osutil

const Windows = "windows"

// ExitCode is the status the process exits with.
type ExitCode int

const (
	ExitOK    ExitCode = 0
	ExitError ExitCode = 1
)

const DirPermission = 0o755
