package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/api"
	"github.com/javiercm/gymdesk/pkg/iojson"
)

type ClassesCmd struct {
	flags *Flags
	app   *App

	// ls flags
	jsonOutput bool
	search     string

	// enroll flags
	memberID int64
}

// NewClassesCmd creates a new classes command.
func NewClassesCmd(flags *Flags, app *App) *ClassesCmd {
	return &ClassesCmd{flags: flags, app: app}
}

// Register adds the classes command to the application.
func (cmd *ClassesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "classes",
		Usage: "Browse classes and manage enrollments",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.enrollCmd(),
			cmd.rosterCmd(),
		},
	})

	return app
}

func (cmd *ClassesCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List scheduled classes",
		UsageText: "gymdesk classes ls [--search <term>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Usage:       "search by class name",
				Destination: &cmd.search,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			page, err := cmd.app.Client.Classes().List(ctx, api.SearchQuery(1, cmd.search))
			if err != nil {
				return fmt.Errorf("list classes: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, cl := range page.Results {
					if err := iojson.WriteLine(out, cl); err != nil {
						return fmt.Errorf("encode class: %w", err)
					}
				}
				return nil
			}

			if len(page.Results) == 0 {
				fmt.Fprintln(out, "No classes found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tTRAINER\tSCHEDULE\tCAPACITY")
			for _, cl := range page.Results {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\n",
					cl.ID, cl.Name, cl.TrainerID, cl.Schedule.Format("Mon 15:04"), cl.MaxCapacity)
			}
			_ = w.Flush()
			return nil
		},
	}
}

func (cmd *ClassesCmd) enrollCmd() *cli.Command {
	return &cli.Command{
		Name:      "enroll",
		Usage:     "Enroll a member in a class",
		UsageText: "gymdesk classes enroll <class-id> --member <member-id>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "member",
				Usage:       "member id to enroll",
				Required:    true,
				Destination: &cmd.memberID,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			classID, err := argID(c)
			if err != nil {
				return err
			}

			enr, err := cmd.app.Client.Enrollments().Create(ctx, map[string]any{
				"socio": cmd.memberID,
				"clase": classID,
			})
			if err != nil {
				return fmt.Errorf("enroll member %d in class %d: %w", cmd.memberID, classID, err)
			}

			fmt.Fprintf(c.Root().Writer, "Enrolled member %d in class %d (enrollment %d)\n",
				enr.MemberID, enr.ClassID, enr.ID)
			return nil
		},
	}
}

func (cmd *ClassesCmd) rosterCmd() *cli.Command {
	return &cli.Command{
		Name:      "roster",
		Usage:     "List enrollments for a class",
		UsageText: "gymdesk classes roster <class-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			classID, err := argID(c)
			if err != nil {
				return err
			}

			q := api.SearchQuery(1, "")
			q.Set("clase", strconv.FormatInt(classID, 10))
			page, err := cmd.app.Client.Enrollments().List(ctx, q)
			if err != nil {
				return fmt.Errorf("list enrollments: %w", err)
			}

			out := c.Root().Writer
			if len(page.Results) == 0 {
				fmt.Fprintln(out, "No enrollments")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ENROLLMENT\tMEMBER\tSINCE")
			for _, e := range page.Results {
				_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", e.ID, e.MemberID, e.EnrolledAt.Format("2006-01-02"))
			}
			_ = w.Flush()
			return nil
		},
	}
}
