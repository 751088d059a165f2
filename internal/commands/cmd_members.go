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

type MembersCmd struct {
	flags *Flags
	app   *App

	// ls flags
	jsonOutput bool
	search     string
	page       int

	// add flags
	addReader iojson.FileReader[memberInput]
}

// memberInput is the create/update payload for a member.
type memberInput struct {
	Name         string `json:"nombre"`
	Phone        string `json:"telefono"`
	Email        string `json:"correo"`
	MembershipID int64  `json:"membresia"`
}

// NewMembersCmd creates a new members command.
func NewMembersCmd(flags *Flags, app *App) *MembersCmd {
	return &MembersCmd{flags: flags, app: app}
}

// Register adds the members command to the application.
func (cmd *MembersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "members",
		Usage: "Manage gym members",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.getCmd(),
			cmd.addCmd(),
			cmd.rmCmd(),
		},
	})

	return app
}

func (cmd *MembersCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List members",
		UsageText: "gymdesk members ls [--search <term>] [--page <n>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "search",
				Usage:       "search by name, email, or phone",
				Destination: &cmd.search,
			},
			&cli.IntFlag{
				Name:        "page",
				Usage:       "result page",
				Value:       1,
				Destination: &cmd.page,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *MembersCmd) runLs(ctx context.Context, c *cli.Command) error {
	page, err := cmd.app.Client.Members().List(ctx, api.SearchQuery(cmd.page, cmd.search))
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, m := range page.Results {
			if err := iojson.WriteLine(out, m); err != nil {
				return fmt.Errorf("encode member: %w", err)
			}
		}
		return nil
	}

	if len(page.Results) == 0 {
		fmt.Fprintln(out, "No members found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tPLAN\tSINCE")
	for _, m := range page.Results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			m.ID, m.Name, m.Email, m.Phone, m.MembershipID, m.RegisteredAt.Format("2006-01-02"))
	}
	_ = w.Flush()

	if page.Count > len(page.Results) {
		fmt.Fprintf(out, "showing %d of %d\n", len(page.Results), page.Count)
	}
	return nil
}

func (cmd *MembersCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one member",
		UsageText: "gymdesk members get <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}

			m, err := cmd.app.Client.Members().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("get member: %w", err)
			}

			return iojson.WriteLine(c.Root().Writer, m)
		},
	}
}

func (cmd *MembersCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a member",
		UsageText: "gymdesk members add --file member.json",
		Description: `Creates a member from a JSON payload with the backend field names
(nombre, telefono, correo, membresia). Use --file - to read stdin.`,
		Flags: []cli.Flag{
			cmd.addReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			in, err := cmd.addReader.Read()
			if err != nil {
				return fmt.Errorf("read member payload: %w", err)
			}

			created, err := cmd.app.Client.Members().Create(ctx, in)
			if err != nil {
				return fmt.Errorf("create member: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created member %d (%s)\n", created.ID, created.Name)
			return nil
		},
	}
}

func (cmd *MembersCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a member",
		UsageText: "gymdesk members rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}

			if err := cmd.app.Client.Members().Delete(ctx, id); err != nil {
				return fmt.Errorf("delete member: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Deleted member %d\n", id)
			return nil
		},
	}
}

// argID parses the single required positional id argument.
func argID(c *cli.Command) (int64, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("missing required <id> argument")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
