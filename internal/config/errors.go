package config

import "github.com/ayoisaiah/studyblocks/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s duration must be between %d and %d minutes",
	}

	errInvalidDriver = &apperr.Error{
		Message: "unknown storage driver: %s (must be bolt or sqlite)",
	}

	errInvalidTimeout = &apperr.Error{
		Message: "request timeout must be greater than zero, got %v",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level: %s",
	}

	errInvalidSoundFormat = &apperr.Error{
		Message: "invalid sound file format: %s (must be mp3, ogg, flac, or wav)",
	}

	errEmptyServerURL = &apperr.Error{
		Message: "server url cannot be empty",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}
)
