// Package config is responsible for setting the program config from
// the config file, environment and command-line arguments.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/models"
)

type (
	// Config holds all configuration settings
	Config struct {
		Server        ServerConfig       `mapstructure:"server"`
		Storage       StorageConfig      `mapstructure:"storage"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Settings      SettingsConfig     `mapstructure:"settings"`
		Log           LogConfig          `mapstructure:"log"`
		Blocks        BlocksConfig       `mapstructure:"blocks"`
		Client        ClientConfig       `mapstructure:"client"`
		Display       DisplayConfig      `mapstructure:"display"`
	}

	// ServerConfig holds the address the record server listens on and the
	// URL clients use to reach it.
	ServerConfig struct {
		Addr string `mapstructure:"addr"`
		URL  string `mapstructure:"url"`
	}

	// StorageConfig selects the storage driver for the record server.
	StorageConfig struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
	}

	// BlocksConfig holds the length of each block type in minutes.
	BlocksConfig struct {
		WorkMinutes  int `mapstructure:"work_minutes"`
		BreakMinutes int `mapstructure:"break_minutes"`
	}

	// ClientConfig holds settings for requests made to the record server.
	ClientConfig struct {
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	}

	// NotificationConfig holds notification settings
	NotificationConfig struct {
		Sound   string `mapstructure:"sound"`
		Enabled bool   `mapstructure:"enabled"`
	}

	// SettingsConfig holds miscellaneous settings
	SettingsConfig struct {
		Cmd            string `mapstructure:"cmd"`
		TwentyFourHour bool   `mapstructure:"24hr_clock"`
	}

	// DisplayConfig holds display-related settings
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	}

	// LogConfig holds settings for the rotating log file.
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

const (
	DefaultWorkMinutes  = 25
	DefaultBreakMinutes = 5
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Minutes returns the configured length of a block type.
func (b BlocksConfig) Minutes(t models.BlockType) int {
	if t == models.Break {
		return b.BreakMinutes
	}

	return b.WorkMinutes
}

// New creates a new Config and applies options in order. The result is
// validated before it is returned.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// Default returns a config populated only with default values.
func Default() *Config {
	cfg, err := New(WithDefaults())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}

	return cfg
}
