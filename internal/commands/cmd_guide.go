package commands

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
)

//go:embed guide.md
var guideMarkdown string

type GuideCmd struct {
	flags *Flags

	plain bool
}

// NewGuideCmd creates a new guide command.
func NewGuideCmd(flags *Flags) *GuideCmd {
	return &GuideCmd{flags: flags}
}

// Register adds the guide command to the application.
func (cmd *GuideCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "guide",
		Usage:     "Show the usage guide",
		UsageText: "gymdesk guide [--plain]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print raw markdown without rendering",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *GuideCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.plain {
		fmt.Fprint(out, guideMarkdown)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Renderer setup failed; raw markdown is still useful.
		fmt.Fprint(out, guideMarkdown)
		return nil
	}

	rendered, err := renderer.Render(guideMarkdown)
	if err != nil {
		fmt.Fprint(out, guideMarkdown)
		return nil
	}

	fmt.Fprint(out, rendered)
	return nil
}
