package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/javiercm/gymdesk/internal/api"
	"github.com/javiercm/gymdesk/internal/commands"
	"github.com/javiercm/gymdesk/internal/core/config"
	"github.com/javiercm/gymdesk/internal/core/logging"
	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/session"
	"github.com/javiercm/gymdesk/internal/core/styles"
	"github.com/javiercm/gymdesk/internal/store/credfile"
	"github.com/javiercm/gymdesk/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		gymApp    = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "gymdesk",
		Usage:     "Terminal client for the gym management backend",
		UsageText: "gymdesk [global options] command [command options]",
		Description: `gymdesk talks to the gym management REST API: members, classes,
payments, attendance, and the notification feed.

Run 'gymdesk login' first, then 'gymdesk' with no arguments to open the
interactive dashboard.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("GYMDESK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/gymdesk.log)",
				Sources:     cli.EnvVars("GYMDESK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("GYMDESK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("GYMDESK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "gymdesk.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			client := api.New(api.Options{
				BaseURL:    cfg.BaseURL,
				APIPrefix:  cfg.APIPrefix,
				AuthScheme: cfg.AuthScheme,
				Timeout:    cfg.Timeout,
				Logger:     logging.Component("api"),
			})

			creds := credfile.New(filepath.Join(cfg.DataDir, "credentials.json"))
			mgr := session.NewManager(client, creds, logging.Component("session"))
			client.SetCredentials(mgr)

			store := notify.NewStore(client, logging.Component("notify"))

			// Restore the persisted session up front so every command
			// starts from a settled state.
			mgr.Initialize(ctx)

			*gymApp = commands.App{
				Client:  client,
				Session: mgr,
				Notify:  store,
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewLoginCmd(flags, gymApp).Register(app)
	app = commands.NewLogoutCmd(flags, gymApp).Register(app)
	app = commands.NewRegisterCmd(flags, gymApp).Register(app)
	app = commands.NewWhoamiCmd(flags, gymApp).Register(app)
	app = commands.NewPasswdCmd(flags, gymApp).Register(app)
	app = commands.NewMembersCmd(flags, gymApp).Register(app)
	app = commands.NewMembershipsCmd(flags, gymApp).Register(app)
	app = commands.NewTrainersCmd(flags, gymApp).Register(app)
	app = commands.NewClassesCmd(flags, gymApp).Register(app)
	app = commands.NewAttendanceCmd(flags, gymApp).Register(app)
	app = commands.NewPaymentsCmd(flags, gymApp).Register(app)
	app = commands.NewEquipmentCmd(flags, gymApp).Register(app)
	app = commands.NewNotifyCmd(flags, gymApp).Register(app)
	app = commands.NewGuideCmd(flags).Register(app)
	app = commands.NewTuiCmd(flags, gymApp).Register(app)

	// Default to the dashboard when no subcommand is provided.
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'gymdesk --help' for usage", c.Args().First())
		}
		return commands.RunTUI(ctx, gymApp)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
