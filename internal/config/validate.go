package config

import (
	"path/filepath"
	"slices"
	"strings"
)

var (
	// Minimum and maximum block lengths in minutes.
	minBlockMinutes = 1
	maxBlockMinutes = 720 // 12 hours

	validDrivers   = []string{DriverBolt, DriverSQLite}
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validSoundExts = []string{".mp3", ".ogg", ".flac", ".wav"}
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := validateMinutes(c.Blocks.WorkMinutes, "work"); err != nil {
		return err
	}

	if err := validateMinutes(c.Blocks.BreakMinutes, "break"); err != nil {
		return err
	}

	if !slices.Contains(validDrivers, c.Storage.Driver) {
		return errInvalidDriver.Fmt(c.Storage.Driver)
	}

	if strings.TrimSpace(c.Server.URL) == "" {
		return errEmptyServerURL
	}

	if c.Client.RequestTimeout <= 0 {
		return errInvalidTimeout.Fmt(c.Client.RequestTimeout)
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	if c.Notifications.Sound != "" {
		ext := strings.ToLower(filepath.Ext(c.Notifications.Sound))
		if !slices.Contains(validSoundExts, ext) {
			return errInvalidSoundFormat.Fmt(c.Notifications.Sound)
		}
	}

	return nil
}

func validateMinutes(mins int, blockType string) error {
	if mins < minBlockMinutes || mins > maxBlockMinutes {
		return errInvalidDuration.Fmt(blockType, minBlockMinutes, maxBlockMinutes)
	}

	return nil
}
