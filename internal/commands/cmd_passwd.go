package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/core/styles"
)

type PasswdCmd struct {
	flags *Flags
	app   *App

	// flags
	resetEmail string

	current string
	next    string
}

// NewPasswdCmd creates a new passwd command.
func NewPasswdCmd(flags *Flags, app *App) *PasswdCmd {
	return &PasswdCmd{flags: flags, app: app}
}

// Register adds the passwd command to the application.
func (cmd *PasswdCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "passwd",
		Usage:     "Change the account password",
		UsageText: "gymdesk passwd [--reset <email>]",
		Description: `Changes the password of the authenticated account.

With --reset, requests a password-reset email for the given address
instead; no session is required for that path.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "reset",
				Usage:       "request a reset email for this address",
				Destination: &cmd.resetEmail,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PasswdCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.resetEmail != "" {
		res := cmd.app.Session.RequestPasswordReset(ctx, cmd.resetEmail)
		if !res.OK {
			return cli.Exit(styles.ErrorStyle.Render(res.Message), 1)
		}
		fmt.Fprintln(out, res.Message)
		return nil
	}

	if err := cmd.runForm(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("form: %w", err)
	}

	res := cmd.app.Session.ChangePassword(ctx, cmd.current, cmd.next)
	if !res.OK {
		return cli.Exit(styles.ErrorStyle.Render(res.Message), 1)
	}

	fmt.Fprintln(out, res.Message)
	return nil
}

func (cmd *PasswdCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("current password")).
				Value(&cmd.current),
			huh.NewInput().
				Title("New password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("new password")).
				Value(&cmd.next),
		),
	).WithTheme(styles.FormTheme()).Run()
}
