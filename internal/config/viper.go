package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "STUDYBLOCKS"

// viper keys for every configurable setting.
const (
	keyServerAddr           = "server.addr"
	keyServerURL            = "server.url"
	keyStorageDriver        = "storage.driver"
	keyStoragePath          = "storage.path"
	keyWorkMinutes          = "blocks.work_minutes"
	keyBreakMinutes         = "blocks.break_minutes"
	keyRequestTimeout       = "client.request_timeout"
	keyNotificationsEnabled = "notifications.enabled"
	keyNotificationSound    = "notifications.sound"
	keySessionCmd           = "settings.cmd"
	keyTwentyFourHour       = "settings.24hr_clock"
	keyDarkTheme            = "display.dark_theme"
	keyLogLevel             = "log.level"
	keyLogMaxSize           = "log.max_size"
	keyLogMaxBackups        = "log.max_backups"
)

// WithDefaults returns an Option that loads the default values only.
func WithDefaults() Option {
	return func(c *Config) error {
		v := viper.New()

		setupViper(v)

		return loadViperConfig(v, c)
	}
}

// WithViperConfig returns an Option that loads configuration from the file at
// configPath and from STUDYBLOCKS_* environment variables. A config file with
// the default values is written if none exists.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults and environment lookups.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyServerAddr, ":5555")
	v.SetDefault(keyServerURL, "http://localhost:5555")
	v.SetDefault(keyStorageDriver, DriverBolt)
	v.SetDefault(keyStoragePath, "")
	v.SetDefault(keyWorkMinutes, DefaultWorkMinutes)
	v.SetDefault(keyBreakMinutes, DefaultBreakMinutes)
	v.SetDefault(keyRequestTimeout, "10s")
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyNotificationSound, "")
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyTwentyFourHour, false)
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogMaxBackups, 3)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	return nil
}
