package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/quill"
)

// RecentPathCompleter suggests recently opened files for positional
// arguments. Paths already on the command line and files that no longer
// exist are left out. A trailing flag argument gets the default flag
// completion instead.
func RecentPathCompleter(app *quill.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		given := cmd.Args().Slice()
		if n := len(given); n > 0 && strings.HasPrefix(given[n-1], "-") {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}
		if app.Recent == nil {
			return
		}

		w := cmd.Root().Writer
		for _, p := range app.Recent.Paths(ctx) {
			if slices.Contains(given, p) {
				continue
			}
			if _, err := os.Stat(p); err != nil {
				continue
			}
			_, _ = fmt.Fprintln(w, p)
		}
	}
}
