// Package models defines the records persisted by the block record store.
package models

import (
	"fmt"
	"time"
)

// BlockType distinguishes focus blocks from breaks.
type BlockType string

const (
	Work  BlockType = "work"
	Break BlockType = "break"
)

// ParseBlockType converts s into a BlockType.
func ParseBlockType(s string) (BlockType, error) {
	switch BlockType(s) {
	case Work, Break:
		return BlockType(s), nil
	}

	return "", fmt.Errorf("block type must be %q or %q, got %q", Work, Break, s)
}

// Label is the human readable name of the block type.
func (b BlockType) Label() string {
	if b == Break {
		return "Break"
	}

	return "Focus"
}

// User is a registered account. Sessions are owned by exactly one user.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ID           int       `json:"id"`
}

// StudySession is a named study activity made up of pomodoro blocks.
type StudySession struct {
	CreatedAt time.Time       `json:"created_at"`
	Subject   string          `json:"subject"`
	Goal      string          `json:"goal"`
	Blocks    []PomodoroBlock `json:"pomodoro_blocks,omitempty"`
	ID        int             `json:"id"`
	UserID    int             `json:"-"`
	// TotalMinutes is derived from the completed blocks of the session and is
	// only ever written by the store.
	TotalMinutes int  `json:"total_minutes"`
	BlockCount   int  `json:"pomodoro_count"`
	Completed    bool `json:"completed"`
}

// PomodoroBlock is a single timed work or break interval.
type PomodoroBlock struct {
	StartedAt       *time.Time `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	Type            BlockType  `json:"block_type"`
	ID              int        `json:"id"`
	SessionID       int        `json:"study_session_id"`
	DurationMinutes int        `json:"duration_minutes"`
	Completed       bool       `json:"completed"`
}

// Seconds is the length of the block's countdown.
func (b *PomodoroBlock) Seconds() int {
	return b.DurationMinutes * 60
}

// SessionUpdate carries the writable fields of a session. Nil fields are left
// unchanged.
type SessionUpdate struct {
	Subject   *string `json:"subject,omitempty"`
	Goal      *string `json:"goal,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
