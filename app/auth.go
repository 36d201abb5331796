package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/studyblocks/client"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/pathutil"
)

// credentialsPrompt holds the account fields collected for register and
// login.
type credentialsPrompt struct {
	Username string
	Email    string
	Password string
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}

		return nil
	}
}

// promptCredentials asks for every field not already supplied through flags.
func promptCredentials(p *credentialsPrompt, withEmail bool) error {
	var fields []huh.Field

	if p.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&p.Username).
			Validate(notEmpty("username")))
	}

	if withEmail && p.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&p.Email).
			Validate(notEmpty("email")))
	}

	if p.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&p.Password).
			Validate(notEmpty("password")))
	}

	if len(fields) == 0 {
		return nil
	}

	err := huh.NewForm(huh.NewGroup(fields...)).Run()
	if err != nil {
		return fmt.Errorf("form interaction failed: %w", err)
	}

	return nil
}

func promptFromFlags(ctx *cli.Context) *credentialsPrompt {
	return &credentialsPrompt{
		Username: ctx.String("username"),
		Email:    ctx.String("email"),
		Password: ctx.String("password"),
	}
}

// saveAuth stores the token of a successful register or login.
func saveAuth(cfg *config.Config, auth *client.Auth) error {
	err := client.SaveCredentials(pathutil.CredentialsFilePath(), &client.Credentials{
		ServerURL: cfg.Server.URL,
		Token:     auth.Token,
		Username:  auth.User.Username,
	})
	if err != nil {
		return err
	}

	pterm.Success.Printfln("logged in as %s", auth.User.Username)

	return nil
}

// registerAction creates an account and logs in with it.
func registerAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	p := promptFromFlags(ctx)

	if err := promptCredentials(p, true); err != nil {
		return err
	}

	c := client.New(cfg.Server.URL, client.WithTimeout(cfg.Client.RequestTimeout))

	auth, err := c.Register(background(ctx), p.Username, p.Email, p.Password)
	if err != nil {
		return err
	}

	return saveAuth(cfg, auth)
}

// loginAction exchanges a username and password for an access token.
func loginAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	p := promptFromFlags(ctx)

	if err := promptCredentials(p, false); err != nil {
		return err
	}

	c := client.New(cfg.Server.URL, client.WithTimeout(cfg.Client.RequestTimeout))

	auth, err := c.Login(background(ctx), p.Username, p.Password)
	if err != nil {
		return err
	}

	return saveAuth(cfg, auth)
}

// logoutAction revokes the saved token and removes the credentials file.
// The credentials are removed even when the server cannot be reached.
func logoutAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if errors.Is(err, errNotLoggedIn) {
		pterm.Info.Println("not logged in")
		return nil
	}

	if err != nil {
		return err
	}

	logoutErr := c.Logout(background(ctx))
	if logoutErr != nil && !errors.Is(logoutErr, client.ErrUnauthorized) {
		pterm.Warning.Printfln("unable to revoke token: %v", logoutErr)
	}

	if err := client.DeleteCredentials(pathutil.CredentialsFilePath()); err != nil {
		return err
	}

	pterm.Success.Println("logged out")

	return nil
}

// whoamiAction prints the user the saved token belongs to.
func whoamiAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, err := authedClient(ctx, cfg)
	if err != nil {
		return err
	}

	u, err := c.CurrentUser(background(ctx))
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(u)
		if err != nil {
			return err
		}

		fmt.Fprintln(config.Stdout, string(b))

		return nil
	}

	fmt.Fprintf(config.Stdout, "%s <%s>\n", u.Username, u.Email)

	return nil
}
