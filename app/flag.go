package app

import "github.com/urfave/cli/v2"

var (
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address the record server listens on (default: :5555)",
	}

	driverFlag = &cli.StringFlag{
		Name:  "driver",
		Usage: "Storage driver of the record server: bolt or sqlite",
	}

	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the database file",
	}

	serverFlag = &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"S"},
		Usage:   "URL of the record server (default: http://localhost:5555)",
	}

	timeoutFlag = &cli.StringFlag{
		Name:  "timeout",
		Usage: "Timeout for each request to the record server (e.g. 5s)",
	}

	usernameFlag = &cli.StringFlag{
		Name:    "username",
		Aliases: []string{"u"},
		Usage:   "Account username. Prompted for when omitted",
	}

	emailFlag = &cli.StringFlag{
		Name:    "email",
		Aliases: []string{"e"},
		Usage:   "Account email. Prompted for when omitted",
	}

	passwordFlag = &cli.StringFlag{
		Name:    "password",
		EnvVars: []string{"STUDYBLOCKS_PASSWORD"},
		Usage:   "Account password. Prompted for when omitted",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output as JSON",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only list sessions created after this date (e.g. 'last week', '2024-03-01')",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort sessions by date, subject or total",
		Value: "date",
	}

	subjectFlag = &cli.StringFlag{
		Name:    "subject",
		Aliases: []string{"s"},
		Usage:   "Subject of the session",
	}

	goalFlag = &cli.StringFlag{
		Name:    "goal",
		Aliases: []string{"g"},
		Usage:   "Goal of the session",
	}

	completedFlag = &cli.BoolFlag{
		Name:  "completed",
		Usage: "Mark the session as completed (use --completed=false to reopen it)",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after a block is completed",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each block",
	}

	soundFlag = &cli.StringFlag{
		Name:  "sound",
		Usage: "Sound file (mp3, ogg, flac or wav) to play when a block completes. Disable with 'off'",
	}
)
