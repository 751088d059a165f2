package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/styles"
	"github.com/javiercm/gymdesk/pkg/iojson"
)

type NotifyCmd struct {
	flags *Flags
	app   *App

	// ls flags
	jsonOutput bool
	category   string
	priority   string
	unreadOnly bool

	// add flags
	addTitle    string
	addMessage  string
	addType     string
	addCategory string
	addPriority string

	// stats flags
	remote bool

	// settings flags
	enable  []string
	disable []string
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags, app *App) *NotifyCmd {
	return &NotifyCmd{flags: flags, app: app}
}

// Register adds the notify command to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "notify",
		Usage: "Manage the notification feed",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.readCmd(),
			cmd.readAllCmd(),
			cmd.addCmd(),
			cmd.rmCmd(),
			cmd.clearCmd(),
			cmd.statsCmd(),
			cmd.settingsCmd(),
		},
	})

	return app
}

func (cmd *NotifyCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List notifications",
		UsageText: "gymdesk notify ls [--category <c>] [--priority <p>] [--unread] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Usage:       "filter by category",
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "priority",
				Usage:       "filter by priority",
				Destination: &cmd.priority,
			},
			&cli.BoolFlag{
				Name:        "unread",
				Usage:       "only unread notifications",
				Destination: &cmd.unreadOnly,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store := cmd.app.Notify
			store.Load(ctx, notify.Filter{})

			f := notify.Filter{
				Category: notify.Category(cmd.category),
				Priority: notify.Priority(cmd.priority),
			}
			if cmd.unreadOnly {
				unread := false
				f.Read = &unread
			}

			items := store.Filtered(f)
			out := c.Root().Writer

			if cmd.jsonOutput {
				for _, n := range items {
					if err := iojson.WriteLine(out, n); err != nil {
						return fmt.Errorf("encode notification: %w", err)
					}
				}
				return nil
			}

			if len(items) == 0 {
				fmt.Fprintln(out, "No notifications")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, " \tID\tWHEN\tCATEGORY\tPRIORITY\tTITLE")
			for _, n := range items {
				marker := styles.IconRead
				if !n.Read {
					marker = styles.IconUnread
				}
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
					marker, n.ID, n.Timestamp.Format("Jan 02 15:04"), n.Category, n.Priority, n.Title)
			}
			_ = w.Flush()

			fmt.Fprintf(out, "%d unread\n", store.UnreadCount())
			return nil
		},
	}
}

func (cmd *NotifyCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Mark a notification as read",
		UsageText: "gymdesk notify read <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}

			cmd.app.Notify.Load(ctx, notify.Filter{})
			cmd.app.Notify.MarkRead(ctx, id)
			fmt.Fprintf(c.Root().Writer, "Marked %d as read\n", id)
			return nil
		},
	}
}

func (cmd *NotifyCmd) readAllCmd() *cli.Command {
	return &cli.Command{
		Name:      "read-all",
		Usage:     "Mark every notification as read",
		UsageText: "gymdesk notify read-all",
		Action: func(ctx context.Context, c *cli.Command) error {
			cmd.app.Notify.Load(ctx, notify.Filter{})
			cmd.app.Notify.MarkAllRead(ctx)
			fmt.Fprintln(c.Root().Writer, "All notifications marked as read")
			return nil
		},
	}
}

func (cmd *NotifyCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a notification",
		UsageText: "gymdesk notify add --title <t> [--message <m>] [--type <t>] [--category <c>] [--priority <p>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Usage:       "notification title",
				Required:    true,
				Destination: &cmd.addTitle,
			},
			&cli.StringFlag{
				Name:        "message",
				Usage:       "notification body",
				Destination: &cmd.addMessage,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "info, success, warning, or error",
				Value:       string(notify.TypeInfo),
				Destination: &cmd.addType,
			},
			&cli.StringFlag{
				Name:        "category",
				Usage:       "notification category",
				Value:       string(notify.CategorySystem),
				Destination: &cmd.addCategory,
			},
			&cli.StringFlag{
				Name:        "priority",
				Usage:       "low, medium, or high",
				Value:       string(notify.PriorityMedium),
				Destination: &cmd.addPriority,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			created, err := cmd.app.Notify.Add(ctx, notify.Notification{
				Type:      notify.Type(cmd.addType),
				Title:     cmd.addTitle,
				Message:   cmd.addMessage,
				Timestamp: time.Now(),
				Category:  notify.Category(cmd.addCategory),
				Priority:  notify.Priority(cmd.addPriority),
			})
			if err != nil {
				return fmt.Errorf("create notification: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created notification %d\n", created.ID)
			return nil
		},
	}
}

func (cmd *NotifyCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a notification",
		UsageText: "gymdesk notify rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}

			cmd.app.Notify.Load(ctx, notify.Filter{})
			if err := cmd.app.Notify.Delete(ctx, id); err != nil {
				return fmt.Errorf("delete notification: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Deleted notification %d\n", id)
			return nil
		},
	}
}

func (cmd *NotifyCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Empty the local feed",
		UsageText: "gymdesk notify clear",
		Description: `Clears the in-memory feed for this invocation only. Backend records
are not touched; use rm to delete them.`,
		Action: func(ctx context.Context, c *cli.Command) error {
			cmd.app.Notify.ClearAll()
			fmt.Fprintln(c.Root().Writer, "Feed cleared")
			return nil
		},
	}
}

func (cmd *NotifyCmd) statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show notification statistics",
		UsageText: "gymdesk notify stats [--remote] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "use the server-computed stats",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var stats notify.Stats
			if cmd.remote {
				remote, err := cmd.app.Client.RemoteStats(ctx)
				if err != nil {
					return fmt.Errorf("fetch stats: %w", err)
				}
				stats = remote
			} else {
				cmd.app.Notify.Load(ctx, notify.Filter{})
				stats = cmd.app.Notify.Stats()
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				return iojson.WriteLine(out, stats)
			}

			fmt.Fprintf(out, "total: %d, unread: %d\n", stats.Total, stats.Unread)
			for _, cat := range notify.Categories() {
				if n := stats.ByCategory[cat]; n > 0 {
					fmt.Fprintf(out, "  %s: %d\n", cat, n)
				}
			}
			for _, p := range notify.Priorities() {
				if n := stats.ByPriority[p]; n > 0 {
					fmt.Fprintf(out, "  %s: %d\n", p, n)
				}
			}
			return nil
		},
	}
}

func (cmd *NotifyCmd) settingsCmd() *cli.Command {
	return &cli.Command{
		Name:      "settings",
		Usage:     "Show or change notification settings",
		UsageText: "gymdesk notify settings [--enable <key>] [--disable <key>]",
		Description: `Without flags, prints the current settings. Keys for --enable and
--disable are channel names (email, push, sms), category names, or
priority levels. Changes are persisted to the backend before being
applied locally.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "enable",
				Usage:       "enable a channel, category, or priority",
				Destination: &cmd.enable,
			},
			&cli.StringSliceFlag{
				Name:        "disable",
				Usage:       "disable a channel, category, or priority",
				Destination: &cmd.disable,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store := cmd.app.Notify
			store.LoadSettings(ctx)
			settings := store.Settings()

			out := c.Root().Writer
			if len(cmd.enable) == 0 && len(cmd.disable) == 0 {
				printSettings(out, settings)
				return nil
			}

			for _, key := range cmd.enable {
				if err := applySettingKey(&settings, key, true); err != nil {
					return err
				}
			}
			for _, key := range cmd.disable {
				if err := applySettingKey(&settings, key, false); err != nil {
					return err
				}
			}

			if err := store.UpdateSettings(ctx, settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			fmt.Fprintln(out, "Settings saved")
			return nil
		},
	}
}

func printSettings(out io.Writer, s notify.Settings) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "email\t%s\n", onOff(s.Channels.Email))
	_, _ = fmt.Fprintf(w, "push\t%s\n", onOff(s.Channels.Push))
	_, _ = fmt.Fprintf(w, "sms\t%s\n", onOff(s.Channels.SMS))
	for _, cat := range notify.Categories() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", cat, onOff(s.Categories[cat]))
	}
	for _, p := range notify.Priorities() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p, onOff(s.Priorities[p]))
	}
	_ = w.Flush()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// applySettingKey flips one settings key by name.
func applySettingKey(s *notify.Settings, key string, value bool) error {
	switch key {
	case "email":
		s.Channels.Email = value
		return nil
	case "push":
		s.Channels.Push = value
		return nil
	case "sms":
		s.Channels.SMS = value
		return nil
	}

	for _, cat := range notify.Categories() {
		if string(cat) == key {
			s.Categories[cat] = value
			return nil
		}
	}
	for _, p := range notify.Priorities() {
		if string(p) == key {
			s.Priorities[p] = value
			return nil
		}
	}

	return fmt.Errorf("unknown settings key %q", key)
}
