package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/quill/internal/core/diskwatch"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/quill"
	"github.com/colonyops/quill/internal/tui"
	"github.com/colonyops/quill/pkg/profiler"
	"github.com/colonyops/quill/pkg/utils"
)

// ErrNoTerminal is returned when the editor is started without a terminal.
var ErrNoTerminal = errors.New("quill needs an interactive terminal; use 'quill sort' for scripted use")

type EditCmd struct {
	flags *Flags
	app   *quill.App
}

// NewEditCmd creates the editor command.
func NewEditCmd(flags *Flags, app *quill.App) *EditCmd {
	return &EditCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the editor flags for registration on the root command
func (cmd *EditCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("QUILL_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run starts the editor with the files named on the command line. Exported
// for use as the default command.
func (cmd *EditCmd) Run(ctx context.Context, c *cli.Command) error {
	if cmd.app.Editor == nil {
		return errors.New("editor is not initialized")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNoTerminal
	}

	// Anything printed while the alternate screen is up would be lost.
	stderr := &utils.DeferredWriter{}
	defer func() { _ = stderr.Flush(os.Stderr) }()
	p := printer.New(os.Stdout, stderr)

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, log.Logger)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	sessionID := uuid.NewString()
	ctx = logging.WithSessionID(ctx, sessionID)
	log.Info().Ctx(ctx).Int("files", c.Args().Len()).Msg("editor session started")

	warnings := append([]string(nil), cmd.app.Warnings...)

	var watcher *diskwatch.Watcher
	if cmd.app.Config.Watch.Enabled {
		w, err := diskwatch.New(log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("file watching unavailable")
			warnings = append(warnings, "External changes will not be detected")
		} else {
			watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	sess := cmd.app.NewSession()
	restored := cmd.app.Editor.Restore(ctx, sess)
	if restored == 0 {
		sess.NewTab("", "")
	}

	m := tui.New(tui.Options{
		Context:  ctx,
		Config:   cmd.app.Config,
		Service:  cmd.app.Editor,
		Session:  sess,
		Prefs:    cmd.app.KV,
		Recent:   cmd.app.Recent,
		Watcher:  watcher,
		Files:    c.Args().Slice(),
		Restored: restored,
		Warnings: warnings,
		Logger:   log.Logger,
	})

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		// The model persists on a clean quit only.
		cmd.app.Editor.PersistNow(context.Background(), sess)
		return fmt.Errorf("run editor: %w", err)
	}

	for _, w := range warnings {
		p.Warnf("%s", w)
	}
	return nil
}
