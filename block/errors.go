package block

import "github.com/ayoisaiah/studyblocks/internal/apperr"

var (
	ErrBlockActive = &apperr.Error{
		Message: "a block is already %s for this session",
	}

	ErrInvalidTransition = &apperr.Error{
		Message: "cannot %s while %s",
	}

	ErrSessionCompleted = &apperr.Error{
		Message: "the session has been marked as complete",
	}

	ErrNoActiveBlock = &apperr.Error{
		Message: "there is no block awaiting completion",
	}

	// ErrRecordStore wraps every failed request to the record store. The
	// operation can be retried through the same entry point.
	ErrRecordStore = &apperr.Error{
		Message: "unable to %s",
	}
)
