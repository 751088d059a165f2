package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/core/session"
	"github.com/javiercm/gymdesk/pkg/iojson"
)

type WhoamiCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
	remote     bool
}

// NewWhoamiCmd creates a new whoami command.
func NewWhoamiCmd(flags *Flags, app *App) *WhoamiCmd {
	return &WhoamiCmd{flags: flags, app: app}
}

// Register adds the whoami command to the application.
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "whoami",
		Usage:     "Show the authenticated account",
		UsageText: "gymdesk whoami [--json] [--remote]",
		Description: `Prints the cached profile of the current session.

Use --remote to fetch a fresh profile from the backend instead of the
cached one; this also exercises the token refresh path when the access
token has expired.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "fetch the profile from the backend",
				Destination: &cmd.remote,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, c *cli.Command) error {
	var user *session.User

	if cmd.remote {
		fetched, err := cmd.app.Client.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("fetch profile: %w", err)
		}
		user = &fetched
	} else {
		user = cmd.app.Session.CurrentUser()
	}

	if user == nil {
		return cli.Exit("Not logged in", 1)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, user)
	}

	fmt.Fprintf(out, "%s <%s>\n", user.FullName(), user.Email)
	if user.Phone != "" {
		fmt.Fprintf(out, "phone: %s\n", user.Phone)
	}
	return nil
}
