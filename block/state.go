package block

import (
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/stats"
)

// State is a step of the block lifecycle.
type State int

const (
	// Idle means no block is active.
	Idle State = iota
	// Starting means a create request is in flight.
	Starting
	// Running means the block is persisted and counting down.
	Running
	// Paused means the block is persisted and the countdown is halted.
	Paused
	// Completing means the completion request is in flight or has failed
	// and awaits a retry.
	Completing
)

// NoTimer is reported as the remaining seconds when no countdown is armed.
const NoTimer = -1

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completing:
		return "completing"
	}

	return "unknown"
}

// Snapshot is a consistent view of a manager for rendering. Active is a copy
// of the block being counted down or completed.
type Snapshot struct {
	Err              error
	Session          *models.StudySession
	Active           *models.PomodoroBlock
	ActiveType       models.BlockType
	Summary          stats.Summary
	State            State
	SecondsRemaining int
}

// HasActiveBlock reports whether the snapshot carries an active block.
func (s Snapshot) HasActiveBlock() bool {
	return s.Active != nil
}
