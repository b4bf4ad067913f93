package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "quill config validate [options]",
				Description: "Validates the configuration file, checking value ranges, the recovery key, and the data directory.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid  bool              `json:"valid"`
	Path   string            `json:"path"`
	Errors []validationIssue `json:"errors,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := validationReport{Path: cmd.flags.ConfigPath}

	cfg, err := config.Read(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err == nil {
		err = cfg.ValidateDeep(cmd.flags.ConfigPath)
	}
	report.Errors = issues(err)
	report.Valid = len(report.Errors) == 0

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
		if !report.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	return cmd.outputText(printer.Ctx(ctx), cfg, report)
}

func issues(err error) []validationIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []validationIssue{{Field: "config_file", Message: err.Error()}}
	}

	out := make([]validationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, cfg *config.Config, report validationReport) error {
	p.Section(report.Path)

	if report.Valid {
		p.Infof("virtualize above %d lines, read up to %s", cfg.Editor.VirtualizeThreshold, cfg.Ingest.MaxBytes)
		p.Infof("recovery slot %q, saved %s after the last edit", cfg.Recovery.Key, cfg.Recovery.Debounce)
		p.Printf("")
		p.Successf("Configuration is valid")
		return nil
	}

	for _, issue := range report.Errors {
		p.Errorf("%s: %s", issue.Field, issue.Message)
	}

	p.Printf("")
	p.Errorf("%d error(s) found", len(report.Errors))
	return cli.Exit(fmt.Sprintf("invalid config: %s", report.Path), 1)
}
