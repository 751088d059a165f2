package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/core/session"
	"github.com/javiercm/gymdesk/internal/core/styles"
)

type RegisterCmd struct {
	flags *Flags
	app   *App

	input session.RegisterInput
}

// NewRegisterCmd creates a new register command.
func NewRegisterCmd(flags *Flags, app *App) *RegisterCmd {
	return &RegisterCmd{flags: flags, app: app}
}

// Register adds the register command to the application.
func (cmd *RegisterCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "register",
		Usage:     "Create a new account",
		UsageText: "gymdesk register",
		Description: `Creates a backend account interactively. Registration does not log you
in; run 'gymdesk login' afterwards.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *RegisterCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.runForm(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	res := cmd.app.Session.Register(ctx, cmd.input)
	if !res.OK {
		return cli.Exit(styles.ErrorStyle.Render(res.Message), 1)
	}

	fmt.Fprintln(c.Root().Writer, res.Message)
	return nil
}

func (cmd *RegisterCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Validate(validateRequired("email")).
				Value(&cmd.input.Email),
			huh.NewInput().
				Title("First name").
				Value(&cmd.input.FirstName),
			huh.NewInput().
				Title("Last name").
				Value(&cmd.input.LastName),
			huh.NewInput().
				Title("Phone").
				Value(&cmd.input.Phone),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&cmd.input.Password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Validate(cmd.validateConfirm).
				Value(&cmd.input.ConfirmPassword),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func (cmd *RegisterCmd) validateConfirm(s string) error {
	if s != cmd.input.Password {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}
