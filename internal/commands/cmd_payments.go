package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/api"
)

type PaymentsCmd struct {
	flags *Flags
	app   *App

	// ls flags
	memberID int64

	// add flags
	amount string
	method string
}

// NewPaymentsCmd creates a new payments command.
func NewPaymentsCmd(flags *Flags, app *App) *PaymentsCmd {
	return &PaymentsCmd{flags: flags, app: app}
}

// Register adds the payments command to the application.
func (cmd *PaymentsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "payments",
		Usage: "Record and review member payments",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.addCmd(),
		},
	})

	return app
}

func (cmd *PaymentsCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List payments",
		UsageText: "gymdesk payments ls [--member <id>]",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "member",
				Usage:       "filter by member id",
				Destination: &cmd.memberID,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			q := api.SearchQuery(1, "")
			if cmd.memberID != 0 {
				q.Set("socio", strconv.FormatInt(cmd.memberID, 10))
			}

			page, err := cmd.app.Client.Payments().List(ctx, q)
			if err != nil {
				return fmt.Errorf("list payments: %w", err)
			}

			out := c.Root().Writer
			if len(page.Results) == 0 {
				fmt.Fprintln(out, "No payments found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tMEMBER\tAMOUNT\tMETHOD\tDATE")
			for _, p := range page.Results {
				_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
					p.ID, p.MemberID, p.Amount, p.Method, p.PaidAt.Format("2006-01-02"))
			}
			_ = w.Flush()
			return nil
		},
	}
}

func (cmd *PaymentsCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Record a payment",
		UsageText: "gymdesk payments add <member-id> --amount <decimal> [--method <name>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "amount",
				Usage:       "payment amount, decimal string",
				Required:    true,
				Destination: &cmd.amount,
			},
			&cli.StringFlag{
				Name:        "method",
				Usage:       "payment method",
				Value:       "efectivo",
				Destination: &cmd.method,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			memberID, err := argID(c)
			if err != nil {
				return err
			}

			p, err := cmd.app.Client.Payments().Create(ctx, map[string]any{
				"socio":      memberID,
				"monto":      cmd.amount,
				"metodo":     cmd.method,
				"fecha_pago": time.Now().Format(time.RFC3339),
			})
			if err != nil {
				return fmt.Errorf("record payment: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Recorded payment %d of %s for member %d\n",
				p.ID, p.Amount, p.MemberID)
			return nil
		},
	}
}
