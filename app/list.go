package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/timeutil"
	"github.com/ayoisaiah/studyblocks/internal/ui"
	"github.com/ayoisaiah/studyblocks/stats"
)

const (
	noSessionsMsg = "No study sessions found"
	dateFormat    = "Jan 02, 2006 03:04 PM"
)

var errInvalidSort = &apperr.Error{
	Message: "unknown sort key %q (must be date, subject or total)",
}

// filterSince keeps the sessions created at or after since.
func filterSince(sessions []models.StudySession, since time.Time) []models.StudySession {
	out := sessions[:0:0]

	for i := range sessions {
		if !sessions[i].CreatedAt.Before(since) {
			out = append(out, sessions[i])
		}
	}

	return out
}

// sortSessions orders sessions in place. Subjects are compared in natural
// order so that "Chapter 2" sorts before "Chapter 10".
func sortSessions(sessions []models.StudySession, by string) error {
	var less func(a, b *models.StudySession) bool

	switch by {
	case "", "date":
		less = func(a, b *models.StudySession) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case "subject":
		less = func(a, b *models.StudySession) bool {
			return natural.Less(a.Subject, b.Subject)
		}
	case "total":
		less = func(a, b *models.StudySession) bool {
			return a.TotalMinutes > b.TotalMinutes
		}
	default:
		return errInvalidSort.Fmt(by)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return less(&sessions[i], &sessions[j])
	})

	return nil
}

func statusText(completed bool) string {
	if completed {
		return ui.Green("completed")
	}

	return ui.Red("in progress")
}

// printSessionsTable prints a session table to the command-line.
func printSessionsTable(w io.Writer, sessions []models.StudySession) {
	tableBody := make([][]string, len(sessions))

	for i := range sessions {
		sess := &sessions[i]

		tableBody[i] = []string{
			strconv.Itoa(sess.ID),
			sess.Subject,
			sess.CreatedAt.Local().Format(dateFormat),
			strconv.Itoa(sess.BlockCount),
			timeutil.HumanMinutes(sess.TotalMinutes),
			statusText(sess.Completed),
		}
	}

	tableBody = append([][]string{
		{"ID", "SUBJECT", "CREATED", "BLOCKS", "TOTAL", "STATUS"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// printSessionDetail prints a session followed by a table of its blocks.
func printSessionDetail(w io.Writer, sess *models.StudySession) {
	summary := stats.Summarize(sess)

	fmt.Fprintf(w, "%s %s\n", ui.Highlight(sess.Subject), statusText(sess.Completed))

	if sess.Goal != "" {
		fmt.Fprintln(w, sess.Goal)
	}

	fmt.Fprintf(
		w,
		"Total: %s · Focus blocks: %d · Completed: %d/%d\n\n",
		timeutil.HumanMinutes(summary.TotalMinutes),
		summary.CompletedWorkBlocks,
		summary.CompletedBlocks,
		summary.TotalBlocks,
	)

	if len(sess.Blocks) == 0 {
		return
	}

	tableBody := [][]string{
		{"#", "TYPE", "MINUTES", "STARTED", "ENDED", "STATUS"},
	}

	for i := range sess.Blocks {
		b := &sess.Blocks[i]

		var started, ended string
		if b.StartedAt != nil {
			started = b.StartedAt.Local().Format(dateFormat)
		}

		if b.EndedAt != nil {
			ended = b.EndedAt.Local().Format(dateFormat)
		}

		status := ui.Green("completed")
		if !b.Completed {
			status = ui.Red("incomplete")
		}

		tableBody = append(tableBody, []string{
			strconv.Itoa(i + 1),
			b.Type.Label(),
			strconv.Itoa(b.DurationMinutes),
			started,
			ended,
			status,
		})
	}

	ui.PrintTable(tableBody, w)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// listAction handles the list command and prints a table of the user's
// sessions.
func listAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if err != nil {
		return err
	}

	sessions, err := c.ListSessions(background(ctx))
	if err != nil {
		return err
	}

	if since := ctx.String("since"); since != "" {
		t, err := timeutil.FromStr(since, time.Now())
		if err != nil {
			return err
		}

		sessions = filterSince(sessions, t)
	}

	if err := sortSessions(sessions, ctx.String("sort")); err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(config.Stdout, sessions)
	}

	if len(sessions) == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}

	printSessionsTable(config.Stdout, sessions)

	return nil
}

// showAction prints a single session with its blocks.
func showAction(ctx *cli.Context) error {
	id, err := sessionArg(ctx)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if err != nil {
		return err
	}

	sess, err := c.GetSession(background(ctx), id)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(config.Stdout, sess)
	}

	printSessionDetail(config.Stdout, sess)

	return nil
}
