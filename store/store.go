// Package store persists users, study sessions and pomodoro blocks. It is the
// authoritative record behind the block lifecycle: blocks are written the
// moment they start and updated once when they complete.
package store

import (
	"context"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/models"
)

var (
	ErrNotFound = &apperr.Error{
		Message: "%s not found",
	}

	ErrForbidden = &apperr.Error{
		Message: "unauthorized",
	}

	ErrUsernameTaken = &apperr.Error{
		Message: "username already taken",
	}

	ErrEmailTaken = &apperr.Error{
		Message: "email already registered",
	}

	ErrSessionCompleted = &apperr.Error{
		Message: "study session is already completed",
	}

	errDatabaseLocked = &apperr.Error{
		Message: "is the record server already running? Only one instance can open the database at a time",
	}
)

// Store is the record store interface implemented by every storage driver.
// Session and block operations are scoped to the owning user: records of
// other users are reported as not found, except for blocks addressed by id,
// which are reported as forbidden.
type Store interface {
	// CreateUser persists u and assigns its ID and creation time.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByName(ctx context.Context, username string) (*models.User, error)

	// SaveToken associates an access token with a user.
	SaveToken(ctx context.Context, token string, userID int) error
	// TokenUser resolves an access token to a user id.
	TokenUser(ctx context.Context, token string) (int, error)
	DeleteToken(ctx context.Context, token string) error

	// ListSessions returns the sessions of a user with their block counts but
	// without the blocks themselves.
	ListSessions(ctx context.Context, userID int) ([]models.StudySession, error)
	// GetSession returns a session together with its blocks in creation order.
	GetSession(ctx context.Context, userID, id int) (*models.StudySession, error)
	CreateSession(ctx context.Context, sess *models.StudySession) error
	UpdateSession(
		ctx context.Context,
		userID, id int,
		update models.SessionUpdate,
	) (*models.StudySession, error)
	// DeleteSession removes a session and all of its blocks.
	DeleteSession(ctx context.Context, userID, id int) error

	ListBlocks(ctx context.Context, userID, sessionID int) ([]models.PomodoroBlock, error)
	// CreateBlock persists an incomplete block stamped with its start time.
	CreateBlock(ctx context.Context, userID int, b *models.PomodoroBlock) error
	// CompleteBlock marks a block as completed and recomputes the total
	// minutes of its session. Completing a completed block is a no-op.
	CompleteBlock(ctx context.Context, userID, blockID int) (*models.PomodoroBlock, error)
	DeleteBlock(ctx context.Context, userID, blockID int) error

	Close() error
}

// Option configures a storage driver.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
