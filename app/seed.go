package app

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/store"
)

var (
	errSeedFileRequired = &apperr.Error{
		Message: "a seed file is required",
	}

	errParseSeed = &apperr.Error{
		Message: "unable to parse seed file",
	}

	errInvalidSeed = &apperr.Error{
		Message: "invalid seed entry: %s",
	}
)

type (
	seedFile struct {
		Users []seedUser `yaml:"users"`
	}

	seedUser struct {
		Username string        `yaml:"username"`
		Email    string        `yaml:"email"`
		Password string        `yaml:"password"`
		Sessions []seedSession `yaml:"sessions"`
	}

	seedSession struct {
		Subject   string      `yaml:"subject"`
		Goal      string      `yaml:"goal"`
		Blocks    []seedBlock `yaml:"blocks"`
		Completed bool        `yaml:"completed"`
	}

	seedBlock struct {
		Type      string `yaml:"type"`
		Minutes   int    `yaml:"minutes"`
		Completed bool   `yaml:"completed"`
	}

	// seedResult counts the records created by a seed run.
	seedResult struct {
		Users    int
		Skipped  int
		Sessions int
		Blocks   int
	}
)

// seed creates the users, sessions and blocks described by the YAML in r.
// Users whose username or email already exists are skipped with their
// sessions.
func seed(ctx context.Context, st store.Store, r io.Reader) (seedResult, error) {
	var (
		f   seedFile
		res seedResult
	)

	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return res, errParseSeed.Wrap(err)
	}

	for i := range f.Users {
		su := &f.Users[i]

		if su.Username == "" || su.Email == "" || su.Password == "" {
			return res, errInvalidSeed.Fmt("users need a username, email and password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return res, err
		}

		u := &models.User{
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: string(hash),
		}

		err = st.CreateUser(ctx, u)
		if errors.Is(err, store.ErrUsernameTaken) || errors.Is(err, store.ErrEmailTaken) {
			res.Skipped++
			continue
		}

		if err != nil {
			return res, err
		}

		res.Users++

		for j := range su.Sessions {
			n, err := seedSessionRecords(ctx, st, u.ID, &su.Sessions[j])
			if err != nil {
				return res, err
			}

			res.Sessions++
			res.Blocks += n
		}
	}

	return res, nil
}

func seedSessionRecords(
	ctx context.Context,
	st store.Store,
	userID int,
	ss *seedSession,
) (int, error) {
	if ss.Subject == "" {
		return 0, errInvalidSeed.Fmt("sessions need a subject")
	}

	sess := &models.StudySession{
		UserID:  userID,
		Subject: ss.Subject,
		Goal:    ss.Goal,
	}

	if err := st.CreateSession(ctx, sess); err != nil {
		return 0, err
	}

	for k := range ss.Blocks {
		sb := &ss.Blocks[k]

		bt, err := models.ParseBlockType(firstNonEmptyString(sb.Type, string(models.Work)))
		if err != nil {
			return 0, errInvalidSeed.Fmt(err.Error())
		}

		if sb.Minutes <= 0 {
			return 0, errInvalidSeed.Fmt("blocks need a positive number of minutes")
		}

		b := &models.PomodoroBlock{
			SessionID:       sess.ID,
			Type:            bt,
			DurationMinutes: sb.Minutes,
		}

		if err := st.CreateBlock(ctx, userID, b); err != nil {
			return 0, err
		}

		if sb.Completed {
			if _, err := st.CompleteBlock(ctx, userID, b.ID); err != nil {
				return 0, err
			}
		}
	}

	if ss.Completed {
		done := true

		_, err := st.UpdateSession(ctx, userID, sess.ID, models.SessionUpdate{
			Completed: &done,
		})
		if err != nil {
			return 0, err
		}
	}

	return len(ss.Blocks), nil
}

// seedAction loads a seed file into the configured storage.
func seedAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errSeedFileRequired
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	defer st.Close()

	res, err := seed(background(ctx), st, f)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"seeded %d users, %d sessions and %d blocks",
		res.Users,
		res.Sessions,
		res.Blocks,
	)

	if res.Skipped > 0 {
		pterm.Warning.Printfln("skipped %d existing users", res.Skipped)
	}

	return nil
}
