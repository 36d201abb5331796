package timer

import "github.com/ayoisaiah/studyblocks/internal/apperr"

var (
	ErrAlreadyArmed = &apperr.Error{
		Message: "a countdown is already in progress",
	}

	ErrInvalidDuration = &apperr.Error{
		Message: "countdown length must not be negative, got %d seconds",
	}
)
