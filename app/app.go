package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/internal/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the studyblocks app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "studyblocks",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		studyblocks tracks study sessions made up of timed focus and break
		blocks. Blocks are recorded on a block record server as they start and
		finish, so your history follows you across machines.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the block record server",
				Flags:  []cli.Flag{addrFlag, driverFlag, dbFlag},
				Action: serveAction,
			},
			{
				Name:      "seed",
				Usage:     "Load demo users, sessions and blocks from a YAML file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{driverFlag, dbFlag},
				Action:    seedAction,
			},
			{
				Name:   "init",
				Usage:  "Configure studyblocks interactively",
				Action: initAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
			{
				Name:   "register",
				Usage:  "Create an account on the record server",
				Flags:  []cli.Flag{serverFlag, timeoutFlag, usernameFlag, emailFlag, passwordFlag},
				Action: registerAction,
			},
			{
				Name:   "login",
				Usage:  "Log in to the record server",
				Flags:  []cli.Flag{serverFlag, timeoutFlag, usernameFlag, passwordFlag},
				Action: loginAction,
			},
			{
				Name:   "logout",
				Usage:  "Log out and forget the saved credentials",
				Flags:  []cli.Flag{serverFlag, timeoutFlag},
				Action: logoutAction,
			},
			{
				Name:   "whoami",
				Usage:  "Print the logged in user",
				Flags:  []cli.Flag{serverFlag, timeoutFlag, jsonFlag},
				Action: whoamiAction,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your study sessions",
				Flags: []cli.Flag{
					serverFlag,
					timeoutFlag,
					sinceFlag,
					sortFlag,
					jsonFlag,
				},
				Action: listAction,
			},
			{
				Name:      "show",
				Usage:     "Print a session and its blocks",
				ArgsUsage: "<session-id>",
				Flags:     []cli.Flag{serverFlag, timeoutFlag, jsonFlag},
				Action:    showAction,
			},
			{
				Name:   "create",
				Usage:  "Create a study session",
				Flags:  []cli.Flag{serverFlag, timeoutFlag, subjectFlag, goalFlag},
				Action: createAction,
			},
			{
				Name:      "edit",
				Usage:     "Edit the subject, goal or completion of a session",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					serverFlag,
					timeoutFlag,
					subjectFlag,
					goalFlag,
					completedFlag,
				},
				Action: editAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a session and all of its blocks",
				ArgsUsage: "<session-id>",
				Flags:     []cli.Flag{serverFlag, timeoutFlag, yesFlag},
				Action:    deleteAction,
			},
			{
				Name:      "start",
				Usage:     "Open the block timer for a session",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					serverFlag,
					timeoutFlag,
					disableNotificationFlag,
					sessionCmdFlag,
					soundFlag,
				},
				Action: startAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
		},
		Before: beforeAction,
		After:  afterAction,
	}
}
