package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/api"
	"github.com/javiercm/gymdesk/pkg/iojson"
)

type TrainersCmd struct {
	flags *Flags
	app   *App

	jsonOutput bool
	search     string
}

// NewTrainersCmd creates a new trainers command.
func NewTrainersCmd(flags *Flags, app *App) *TrainersCmd {
	return &TrainersCmd{flags: flags, app: app}
}

// Register adds the trainers command to the application.
func (cmd *TrainersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "trainers",
		Usage:     "List trainers",
		UsageText: "gymdesk trainers [--search <term>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Usage:       "search by name or specialty",
				Destination: &cmd.search,
			},
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

func (cmd *TrainersCmd) run(ctx context.Context, c *cli.Command) error {
	page, err := cmd.app.Client.Trainers().List(ctx, api.SearchQuery(1, cmd.search))
	if err != nil {
		return fmt.Errorf("list trainers: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range page.Results {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode trainer: %w", err)
			}
		}
		return nil
	}

	if len(page.Results) == 0 {
		fmt.Fprintln(out, "No trainers found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSPECIALTY\tEMAIL\tPHONE")
	for _, t := range page.Results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Specialty, t.Email, t.Phone)
	}
	_ = w.Flush()
	return nil
}
