// Package stats derives the display aggregates of a study session from a
// freshly fetched snapshot of the session and its blocks.
package stats

import (
	"github.com/ayoisaiah/studyblocks/internal/models"
)

// Summary holds the aggregates shown for a single session.
type Summary struct {
	// TotalMinutes is reported by the record store and is never recomputed on
	// the client.
	TotalMinutes        int  `json:"total_minutes"`
	CompletedWorkBlocks int  `json:"completed_work_blocks"`
	CompletedBlocks     int  `json:"completed_blocks"`
	PendingBlocks       int  `json:"pending_blocks"`
	TotalBlocks         int  `json:"total_blocks"`
	Completed           bool `json:"completed"`
}

// Summarize computes the display aggregates for sess. A nil session yields the
// zero Summary.
func Summarize(sess *models.StudySession) Summary {
	if sess == nil {
		return Summary{}
	}

	s := Summary{
		TotalMinutes: sess.TotalMinutes,
		Completed:    sess.Completed,
		TotalBlocks:  len(sess.Blocks),
	}

	for i := range sess.Blocks {
		b := &sess.Blocks[i]

		if !b.Completed {
			s.PendingBlocks++
			continue
		}

		s.CompletedBlocks++

		if b.Type == models.Work {
			s.CompletedWorkBlocks++
		}
	}

	return s
}

// TotalMinutes is the sum of the durations of the completed blocks. The record
// store uses it to maintain a session's total_minutes.
func TotalMinutes(blocks []models.PomodoroBlock) int {
	var total int

	for i := range blocks {
		if blocks[i].Completed {
			total += blocks[i].DurationMinutes
		}
	}

	return total
}
