package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/viper"
)

// PromptOptions holds the user's responses to the setup prompts.
type PromptOptions struct {
	ServerURL    string
	Driver       string
	WorkMinutes  int
	BreakMinutes int
}

// Prompt runs the interactive setup and writes the answers to the config file
// at configPath.
func Prompt(configPath string) (*Config, error) {
	_ = putils.BulletListFromString(`Follow the prompts below to configure studyblocks.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'studyblocks edit-config' to change any settings.`, " ").
		Render()

	opts, err := promptUser()
	if err != nil {
		return nil, fmt.Errorf("user prompt failed: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setupViper(v)

	applyPromptOptions(v, opts)

	if err := v.WriteConfig(); err != nil {
		return nil, errWriteConfig.Wrap(err)
	}

	pterm.Success.Printfln("configuration saved to %s", configPath)

	return New(WithViperConfig(configPath))
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		ServerURL: "http://localhost:5555",
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Record server URL").
				Value(&opts.ServerURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || u.Scheme == "" || u.Host == "" {
						return fmt.Errorf("enter an absolute URL such as http://localhost:5555")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Title("Storage driver used by 'studyblocks serve'").
				Options(
					huh.NewOption("bolt", DriverBolt).Selected(true),
					huh.NewOption("sqlite", DriverSQLite),
				).
				Value(&opts.Driver),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Focus block length").
				Options(
					huh.NewOption("25 minutes", 25).Selected(true),
					huh.NewOption("35 minutes", 35),
					huh.NewOption("50 minutes", 50),
				).
				Value(&opts.WorkMinutes),
			huh.NewSelect[int]().
				Title("Break length").
				Options(
					huh.NewOption("5 minutes", 5).Selected(true),
					huh.NewOption("10 minutes", 10),
					huh.NewOption("15 minutes", 15),
				).
				Value(&opts.BreakMinutes),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, fmt.Errorf("form interaction failed: %w", err)
	}

	return opts, nil
}

// applyPromptOptions applies the user's prompt responses to the configuration.
func applyPromptOptions(v *viper.Viper, opts PromptOptions) {
	v.Set(keyServerURL, strings.TrimSpace(opts.ServerURL))
	v.Set(keyStorageDriver, opts.Driver)
	v.Set(keyWorkMinutes, opts.WorkMinutes)
	v.Set(keyBreakMinutes, opts.BreakMinutes)
}
