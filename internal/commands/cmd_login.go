package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/core/styles"
)

type LoginCmd struct {
	flags *Flags
	app   *App

	// flags
	email    string
	password string
}

// NewLoginCmd creates a new login command.
func NewLoginCmd(flags *Flags, app *App) *LoginCmd {
	return &LoginCmd{flags: flags, app: app}
}

// Register adds the login command to the application.
func (cmd *LoginCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "login",
		Usage:     "Authenticate against the gym backend",
		UsageText: "gymdesk login [--email <email>] [--password <password>]",
		Description: `Exchanges credentials for a token pair and stores the session locally.

Without flags an interactive form prompts for credentials. The password
flag exists for scripting; prefer the prompt so the value stays out of
shell history.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Usage:       "account email",
				Destination: &cmd.email,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "account password (prefer the interactive prompt)",
				Destination: &cmd.password,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LoginCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.email == "" || cmd.password == "" {
		if err := cmd.runForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	res := cmd.app.Session.Login(ctx, cmd.email, cmd.password)
	if !res.OK {
		return cli.Exit(styles.ErrorStyle.Render(res.Message), 1)
	}

	user := cmd.app.Session.CurrentUser()
	fmt.Fprintf(c.Root().Writer, "Logged in as %s\n", user.FullName())
	return nil
}

func (cmd *LoginCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Validate(validateRequired("email")).
				Value(&cmd.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&cmd.password),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
