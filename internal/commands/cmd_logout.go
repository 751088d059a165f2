package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type LogoutCmd struct {
	flags *Flags
	app   *App
}

// NewLogoutCmd creates a new logout command.
func NewLogoutCmd(flags *Flags, app *App) *LogoutCmd {
	return &LogoutCmd{flags: flags, app: app}
}

// Register adds the logout command to the application.
func (cmd *LogoutCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "logout",
		Usage:       "Clear the stored session",
		UsageText:   "gymdesk logout",
		Description: `Removes the stored token pair and cached profile. Purely local; the refresh token simply ages out server side.`,
		Action:      cmd.run,
	})

	return app
}

func (cmd *LogoutCmd) run(ctx context.Context, c *cli.Command) error {
	cmd.app.Session.Logout()
	fmt.Fprintln(c.Root().Writer, "Logged out")
	return nil
}
