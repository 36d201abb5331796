package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/ayoisaiah/studyblocks/block"
	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/timeutil"
)

const historyLimit = 8

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.timerView())
	b.WriteString("\n\n")
	b.WriteString(m.summaryView())
	b.WriteString("\n\n")

	if history := m.historyView(); history != "" {
		b.WriteString(history)
		b.WriteString("\n\n")
	}

	if e := m.errorView(); e != "" {
		b.WriteString(e)
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.ShortHelpView(m.helpKeys()))

	return m.style.Base.Render(b.String())
}

func (m *Model) headerView() string {
	sess := m.snap.Session
	if sess == nil {
		return m.style.Hint.Render("Loading session...")
	}

	title := m.style.Title.Render(sess.Subject)

	if sess.Completed {
		title += " " + m.style.Done.Render("[Completed]")
	}

	if sess.Goal != "" {
		title += "\n" + m.style.Hint.Render(sess.Goal)
	}

	return title
}

func (m *Model) timerView() string {
	snap := m.snap

	switch snap.State {
	case block.Idle:
		return m.style.Hint.Render("No active block. Press w to focus or b to take a break.")
	case block.Starting:
		return m.style.Hint.Render("Starting block...")
	}

	label := m.style.Work.String()
	if snap.ActiveType == models.Break {
		label = m.style.Break.String()
	}

	remaining := snap.SecondsRemaining

	var status string

	switch snap.State {
	case block.Paused:
		status = m.style.Pending.Render("[Paused]")
	case block.Completing:
		status = m.style.Pending.Render("Saving...")
	default:
		format := "03:04 PM"
		if m.cfg.Settings.TwentyFourHour {
			format = "15:04"
		}

		endsAt := m.now().Add(time.Duration(remaining) * time.Second)
		status = m.style.Hint.Render("until " + endsAt.Format(format))
	}

	text := fmt.Sprintf(
		"%s%s %s",
		label,
		m.style.Clock.Render(timeutil.Clock(remaining)),
		status,
	)

	return text + "\n\n" + m.progressView()
}

func (m *Model) progressView() string {
	active := m.snap.Active
	if active == nil {
		return ""
	}

	total := active.Seconds()
	if total <= 0 {
		return m.progress.ViewAs(1)
	}

	elapsed := total - max(m.snap.SecondsRemaining, 0)

	return m.progress.ViewAs(float64(elapsed) / float64(total))
}

func (m *Model) summaryView() string {
	s := m.snap.Summary

	return m.style.Secondary.Render(fmt.Sprintf(
		"Total: %s · Focus blocks: %d · Completed: %d/%d",
		timeutil.HumanMinutes(s.TotalMinutes),
		s.CompletedWorkBlocks,
		s.CompletedBlocks,
		s.TotalBlocks,
	))
}

func (m *Model) historyView() string {
	if m.snap.Session == nil || len(m.snap.Session.Blocks) == 0 {
		return ""
	}

	blocks := m.snap.Session.Blocks
	if len(blocks) > historyLimit {
		blocks = blocks[len(blocks)-historyLimit:]
	}

	lines := make([]string, 0, len(blocks))

	for i := range blocks {
		b := &blocks[i]

		mark := m.style.Pending.Render("○")
		if b.Completed {
			mark = m.style.Done.Render("●")
		}

		line := fmt.Sprintf(
			"%s %-5s %3dm",
			mark,
			b.Type.Label(),
			b.DurationMinutes,
		)

		if b.StartedAt != nil {
			line += "  " + m.style.Hint.Render(b.StartedAt.Local().Format("Jan 02 15:04"))
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func (m *Model) errorView() string {
	err := m.err
	if err == nil {
		err = m.snap.Err
	}

	if err == nil {
		return ""
	}

	text := apperr.Message(err)
	if m.snap.State == block.Completing {
		text += " (press r to retry)"
	}

	return m.style.Error.Render(text)
}

func (m *Model) helpKeys() []key.Binding {
	switch m.snap.State {
	case block.Running, block.Paused:
		return []key.Binding{m.keys.togglePlay, m.keys.cancel, m.keys.quit}
	case block.Completing:
		return []key.Binding{m.keys.retry, m.keys.quit}
	case block.Starting:
		return []key.Binding{m.keys.quit}
	}

	if m.snap.Session != nil && m.snap.Session.Completed {
		return []key.Binding{m.keys.refresh, m.keys.quit}
	}

	return []key.Binding{
		m.keys.work,
		m.keys.rest,
		m.keys.complete,
		m.keys.refresh,
		m.keys.quit,
	}
}
