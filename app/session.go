package app

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
)

var errNothingToUpdate = &apperr.Error{
	Message: "nothing to update: pass --subject, --goal or --completed",
}

// createAction creates a session, prompting for the subject and goal when
// they are not given as flags.
func createAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if err != nil {
		return err
	}

	subject, goal := ctx.String("subject"), ctx.String("goal")

	if subject == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Subject").
					Value(&subject).
					Validate(notEmpty("subject")),
				huh.NewText().
					Title("Goal").
					Description("Optional").
					Value(&goal),
			),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("form interaction failed: %w", err)
		}
	}

	sess, err := c.CreateSession(background(ctx), subject, goal)
	if err != nil {
		return err
	}

	pterm.Success.Printfln(
		"session %d created: run 'studyblocks start %d' to begin",
		sess.ID,
		sess.ID,
	)

	return nil
}

// sessionUpdateFromFlags collects the flags that were explicitly set.
func sessionUpdateFromFlags(ctx *cli.Context) (models.SessionUpdate, error) {
	var update models.SessionUpdate

	if ctx.IsSet("subject") {
		s := ctx.String("subject")
		update.Subject = &s
	}

	if ctx.IsSet("goal") {
		g := ctx.String("goal")
		update.Goal = &g
	}

	if ctx.IsSet("completed") {
		done := ctx.Bool("completed")
		update.Completed = &done
	}

	if update.Subject == nil && update.Goal == nil && update.Completed == nil {
		return update, errNothingToUpdate
	}

	return update, nil
}

// editAction updates the writable fields of a session.
func editAction(ctx *cli.Context) error {
	id, err := sessionArg(ctx)
	if err != nil {
		return err
	}

	update, err := sessionUpdateFromFlags(ctx)
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

	sess, err := c.UpdateSession(background(ctx), id, update)
	if err != nil {
		return err
	}

	printSessionDetail(config.Stdout, sess)

	return nil
}

// deleteAction deletes a session and its blocks after confirmation.
func deleteAction(ctx *cli.Context) error {
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

	if !ctx.Bool("yes") {
		printSessionDetail(config.Stdout, sess)

		confirmed := false

		err := huh.NewConfirm().
			Title("The above session and its blocks will be deleted permanently").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("form interaction failed: %w", err)
		}

		if !confirmed {
			return nil
		}
	}

	if err := c.DeleteSession(background(ctx), id); err != nil {
		return err
	}

	pterm.Success.Printfln("session %d deleted", id)

	return nil
}
