package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/pkg/iojson"
)

type EquipmentCmd struct {
	flags *Flags
	app   *App

	jsonOutput bool
	status     string
}

// NewEquipmentCmd creates a new equipment command.
func NewEquipmentCmd(flags *Flags, app *App) *EquipmentCmd {
	return &EquipmentCmd{flags: flags, app: app}
}

// Register adds the equipment command to the application.
func (cmd *EquipmentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "equipment",
		Usage:     "List gym equipment",
		UsageText: "gymdesk equipment [--status <estado>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Usage:       "filter by status (disponible, mantenimiento, retirado)",
				Destination: &cmd.status,
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

func (cmd *EquipmentCmd) run(ctx context.Context, c *cli.Command) error {
	page, err := cmd.app.Client.Equipment().List(ctx, nil)
	if err != nil {
		return fmt.Errorf("list equipment: %w", err)
	}

	out := c.Root().Writer
	items := page.Results
	if cmd.status != "" {
		kept := items[:0]
		for _, e := range items {
			if e.Status == cmd.status {
				kept = append(kept, e)
			}
		}
		items = kept
	}

	if cmd.jsonOutput {
		for _, e := range items {
			if err := iojson.WriteLine(out, e); err != nil {
				return fmt.Errorf("encode equipment: %w", err)
			}
		}
		return nil
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No equipment found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tACQUIRED\tLAST MAINTENANCE")
	for _, e := range items {
		maint := e.LastMaintenance
		if maint == "" {
			maint = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Status, e.AcquiredOn, maint)
	}
	_ = w.Flush()
	return nil
}
