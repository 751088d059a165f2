package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/pkg/iojson"
)

type MembershipsCmd struct {
	flags *Flags
	app   *App

	jsonOutput bool
}

// NewMembershipsCmd creates a new memberships command.
func NewMembershipsCmd(flags *Flags, app *App) *MembershipsCmd {
	return &MembershipsCmd{flags: flags, app: app}
}

// Register adds the memberships command to the application.
func (cmd *MembershipsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "memberships",
		Usage:     "List membership plans",
		UsageText: "gymdesk memberships [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MembershipsCmd) run(ctx context.Context, c *cli.Command) error {
	page, err := cmd.app.Client.MembershipPlans().List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list membership plans: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, p := range page.Results {
			if err := iojson.WriteLine(out, p); err != nil {
				return fmt.Errorf("encode plan: %w", err)
			}
		}
		return nil
	}

	if len(page.Results) == 0 {
		fmt.Fprintln(out, "No membership plans")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tMONTHLY\tMONTHS\tDESCRIPTION")
	for _, p := range page.Results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, p.Kind, p.MonthlyPrice, p.DurationMonths, p.Description)
	}
	_ = w.Flush()
	return nil
}
