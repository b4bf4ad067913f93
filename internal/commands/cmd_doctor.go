package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/core/doctor"
	"github.com/colonyops/quill/internal/core/styles"
	"github.com/colonyops/quill/internal/quill"
	"github.com/colonyops/quill/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *quill.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *quill.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your quill setup",
		UsageText:   "quill doctor [options]",
		Description: "Runs diagnostic checks on configuration, storage, the recovery slot, and the terminal environment.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., remove corrupt database copies)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	report := doctor.Run(ctx,
		doctor.NewConfigCheck(cmd.flags.ConfigPath, cfg),
		doctor.NewStorageCheck(cfg.DataDir, cmd.app.DB, cmd.app.KV, cfg.Recovery.Key, cmd.autofix),
		doctor.NewEnvironmentCheck(cfg.Watch.Enabled),
	)

	var err error
	if cmd.format == "json" {
		err = iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, struct {
			Healthy bool            `json:"healthy"`
			Summary doctor.Tally    `json:"summary"`
			Checks  []doctor.Result `json:"checks"`
		}{report.Healthy(), report.Tally(), report.Checks})
	} else {
		cmd.printReport(c.Root().ErrWriter, report)
	}
	if err != nil {
		return err
	}

	if !report.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusWarn:
		return styles.WarningTextStyle.Render(styles.IconDirty)
	case doctor.StatusFail:
		return styles.ErrorTextStyle.Render("✘")
	default:
		return styles.SuccessTextStyle.Render("✔")
	}
}

func (cmd *DoctorCmd) printReport(w io.Writer, report doctor.Report) {
	muted := styles.DividerStyle.Render

	_, _ = fmt.Fprintf(w, "\n%s\n%s\n\n",
		styles.CommandHeaderStyle.Render("Quill Doctor"),
		muted(strings.Repeat("─", 40)))

	for _, result := range report.Checks {
		_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render(result.Name))
		for _, item := range result.Items {
			line := "  " + statusIcon(item.Status) + " " + item.Label
			if item.Detail != "" {
				line += " " + muted(item.Detail)
			}
			if item.Fixed {
				line += " " + styles.SuccessTextStyle.Render("(fixed)")
			}
			_, _ = fmt.Fprintln(w, line)
		}
		_, _ = fmt.Fprintln(w)
	}

	t := report.Tally()
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.SuccessTextStyle.Render(fmt.Sprintf("%d passed", t.Passed)),
		styles.WarningTextStyle.Render(fmt.Sprintf("%d warnings", t.Warned)),
		styles.ErrorTextStyle.Render(fmt.Sprintf("%d failed", t.Failed)),
	)

	if n := report.Fixable(); n > 0 && !cmd.autofix {
		_, _ = fmt.Fprintf(w, "\n%s\n", muted(fmt.Sprintf("Run 'quill doctor --autofix' to fix %d issue(s)", n)))
	}
}
