package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Addr          string
	ServerURL     string
	Driver        string
	DBPath        string
	Timeout       string
	SessionCmd    string
	Sound         string
	DisableNotify bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Addr:          ctx.String("addr"),
			ServerURL:     ctx.String("server"),
			Driver:        ctx.String("driver"),
			DBPath:        ctx.String("db"),
			Timeout:       ctx.String("timeout"),
			SessionCmd:    ctx.String("session-cmd"),
			Sound:         ctx.String("sound"),
			DisableNotify: ctx.Bool("disable-notification"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.Addr != "" {
		c.Server.Addr = opts.Addr
	}

	if opts.ServerURL != "" {
		c.Server.URL = opts.ServerURL
	}

	if opts.Driver != "" {
		c.Storage.Driver = opts.Driver
	}

	if opts.DBPath != "" {
		c.Storage.Path = opts.DBPath
	}

	if opts.Timeout != "" {
		d, err := time.ParseDuration(opts.Timeout)
		if err != nil {
			return errInvalidCLIDuration.Fmt("timeout", err)
		}

		c.Client.RequestTimeout = d
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	if opts.SessionCmd != "" {
		c.Settings.Cmd = opts.SessionCmd
	}

	if opts.Sound != "" {
		if opts.Sound == "off" {
			c.Notifications.Sound = ""
		} else {
			c.Notifications.Sound = opts.Sound
		}
	}

	return nil
}
