package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/quill"
	"github.com/colonyops/quill/pkg/iojson"
)

type RecoveryCmd struct {
	flags *Flags
	app   *quill.App

	importer iojson.FileReader[[]document.Entry]
	replace  bool
}

// NewRecoveryCmd creates the recovery command group.
func NewRecoveryCmd(flags *Flags, app *quill.App) *RecoveryCmd {
	return &RecoveryCmd{flags: flags, app: app}
}

// Register adds the recovery commands to the application.
func (cmd *RecoveryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "recovery",
		Usage: "Inspect the unsaved-document recovery slot",
		Description: `Unsaved documents are kept in a recovery slot while the editor runs and
restored the next time it starts.

Use 'quill recovery export' to copy the slot as JSON and 'quill recovery import'
to load such a file back before starting the editor.`,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "List the documents waiting to be restored",
				UsageText: "quill recovery show",
				Action:    cmd.runShow,
			},
			{
				Name:      "export",
				Usage:     "Write the recovery slot to stdout as JSON",
				UsageText: "quill recovery export > drafts.json",
				Action:    cmd.runExport,
			},
			{
				Name:      "import",
				Usage:     "Add documents to the recovery slot",
				UsageText: "quill recovery import [-f drafts.json] [--replace]",
				Flags: []cli.Flag{
					cmd.importer.Flag(),
					&cli.BoolFlag{
						Name:        "replace",
						Usage:       "replace the slot instead of appending to it",
						Destination: &cmd.replace,
					},
				},
				Action: cmd.runImport,
			},
			{
				Name:      "clear",
				Usage:     "Discard the recovery slot",
				UsageText: "quill recovery clear",
				Action:    cmd.runClear,
			},
		},
	})
	return app
}

func (cmd *RecoveryCmd) runShow(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	rec := cmd.app.Editor.Recovery()

	snap, ok := rec.Load(ctx)
	if !ok {
		p.Infof("Nothing to recover")
		return nil
	}

	p.Section(fmt.Sprintf("%d unsaved %s, saved %s", len(snap.Entries), pluralize(len(snap.Entries), "document", "documents"), humanize.Time(snap.SavedAt)))
	for _, e := range snap.Entries {
		label := e.Path
		if label == "" {
			label = document.UntitledLabel
		}
		p.Printf("  %s  %s", label, humanize.IBytes(uint64(len(e.Content))))
	}
	return nil
}

func (cmd *RecoveryCmd) runExport(ctx context.Context, c *cli.Command) error {
	snap, _ := cmd.app.Editor.Recovery().Load(ctx)
	entries := snap.Entries
	if entries == nil {
		entries = []document.Entry{}
	}
	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, entries)
}

func (cmd *RecoveryCmd) runImport(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	rec := cmd.app.Editor.Recovery()

	incoming, err := cmd.importer.Read()
	if err != nil {
		return fmt.Errorf("read recovery entries: %w", err)
	}

	var entries []document.Entry
	if !cmd.replace {
		if snap, ok := rec.Load(ctx); ok {
			entries = snap.Entries
		}
	}
	entries = append(entries, incoming...)

	if !rec.PersistNow(ctx, entries) {
		return fmt.Errorf("recovery slot %q not written, see the log for details", rec.Key())
	}
	if !cmd.app.Durable() {
		p.Warnf("storage is not durable; imported documents are lost when this command exits")
	}
	p.Successf("%d %s waiting to be restored", len(entries), pluralize(len(entries), "document", "documents"))
	return nil
}

func (cmd *RecoveryCmd) runClear(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	if err := cmd.app.Editor.Recovery().Clear(ctx); err != nil {
		return fmt.Errorf("clear recovery slot: %w", err)
	}
	p.Successf("Recovery slot cleared")
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
