package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/core/editor"
	"github.com/colonyops/quill/internal/core/transform"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/quill"
)

type SortCmd struct {
	flags *Flags
	app   *quill.App

	output  string
	inPlace bool
	force   bool
}

// NewSortCmd creates the headless sort command.
func NewSortCmd(flags *Flags, app *quill.App) *SortCmd {
	return &SortCmd{flags: flags, app: app}
}

// Register adds the sort command to the application.
func (cmd *SortCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sort",
		Usage:     "Sort the lines of a file without opening the editor",
		UsageText: "quill sort <file> [-o out | --in-place]",
		Description: `Reads the file the same way the editor does, including the size cap,
sorts its lines on a background worker, and writes the result to stdout,
to --output, or back to the file with --in-place.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write the result to this path",
				Destination: &cmd.output,
			},
			&cli.BoolFlag{
				Name:        "in-place",
				Aliases:     []string{"i"},
				Usage:       "overwrite the input file",
				Destination: &cmd.inPlace,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "allow --in-place on a file larger than the read limit",
				Destination: &cmd.force,
			},
		},
		ShellComplete: RecentPathCompleter(cmd.app),
		Action:        cmd.run,
	})
	return app
}

func (cmd *SortCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	svc := cmd.app.Editor

	if c.Args().Len() != 1 {
		return cli.Exit("sort takes exactly one file", 1)
	}
	if cmd.inPlace && cmd.output != "" {
		return cli.Exit("--output and --in-place cannot be combined", 1)
	}

	path, err := svc.Resolve(c.Args().First())
	if err != nil {
		return err
	}

	res, err := svc.Read(ctx, path, nil)
	if err != nil {
		return err
	}

	dest := cmd.output
	if cmd.inPlace {
		dest = path
	}
	if dest != "" {
		if dest, err = svc.Resolve(dest); err != nil {
			return err
		}
	}

	if res.Truncated {
		if dest == path && !cmd.force {
			return cli.Exit(fmt.Sprintf("%s is larger than %s; sorting in place would drop the rest of the file (use --force)", path, cmd.app.Config.Ingest.MaxBytes), 1)
		}
		p.Warnf("only the first %s of %s was read", cmd.app.Config.Ingest.MaxBytes, path)
	}

	out := svc.Transform(ctx, transform.Job{Command: transform.CommandSortLines, Text: res.Content})
	switch {
	case errors.Is(out.Err, transform.ErrNothingToTransform):
		p.Infof("%s is blank, nothing to sort", path)
		return nil
	case out.Err != nil:
		return out.Err
	}

	if dest == "" {
		_, err := io.WriteString(c.Root().Writer, out.Result)
		return err
	}

	if err := svc.Write(ctx, editor.SaveRequest{Path: dest, Content: out.Result}); err != nil {
		return err
	}
	p.Successf("Sorted %s into %s in %s", path, dest, out.Elapsed.Round(time.Millisecond))
	return nil
}
