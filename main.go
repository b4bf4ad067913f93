package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/quill/internal/commands"
	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/internal/core/styles"
	"github.com/colonyops/quill/internal/data/db"
	"github.com/colonyops/quill/internal/data/stores"
	"github.com/colonyops/quill/internal/printer"
	"github.com/colonyops/quill/internal/quill"
	"github.com/colonyops/quill/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func buildInfo() quill.BuildInfo {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
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

	return quill.BuildInfo{Version: v, Commit: c, Date: d}
}

func build() string {
	b := buildInfo()
	short := b.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s) %s", b.Version, short, b.Date)
}

const sweepInterval = 5 * time.Minute

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		quillApp    = &quill.App{}
		storage     quill.Storage
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "quill",
		Usage:     "Edit very large text files in the terminal",
		UsageText: "quill [global options] [file or glob ...]",
		Description: `Quill opens text files in tabs. Files above the configured line count open
read-only in a virtualized view that only renders what is on screen; promote
them with ctrl+e to edit.

Unsaved documents are kept in a recovery slot and restored on the next start.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("QUILL_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/quill.log)",
				Sources:     cli.EnvVars("QUILL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("QUILL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("QUILL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			ctx = printer.WithPrinter(ctx, printer.New(c.Root().Writer, c.Root().ErrWriter))

			// Always log to a file; the terminal belongs to the editor.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = commands.DefaultLogFile(flags.DataDir)
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, nil)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			// config validate reads the file itself so it can report errors.
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w (run 'quill config validate' for details)", err)
			}
			flags.Config = cfg

			// Apply configured theme; a theme toggled in the editor wins later.
			styles.SetTheme(cfg.TUI.Theme)

			storage = quill.OpenStorage(ctx, cfg.DataDir, db.DefaultOpenOptions(), log.Logger)
			if sw := storage.Sweeper(); sw != nil {
				sweepCtx, cancel := context.WithCancel(context.Background())
				sweepCancel = cancel
				go stores.StartSweep(sweepCtx, sw, sweepInterval, log.Logger)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*quillApp = *quill.New(cfg, afero.NewOsFs(), storage.DB, storage.KV, buildInfo(), log.Logger)
			if storage.Warning != nil {
				quillApp.Warnings = append(quillApp.Warnings, storage.Warning.Error())
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop background sweep
			if sweepCancel != nil {
				sweepCancel()
			}

			// Close database connection
			if err := storage.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	editCmd := commands.NewEditCmd(flags, quillApp)

	app = commands.NewSortCmd(flags, quillApp).Register(app)
	app = commands.NewRecoveryCmd(flags, quillApp).Register(app)
	app = commands.NewDoctorCmd(flags, quillApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register editor flags on root command
	app.Flags = append(app.Flags, editCmd.Flags()...)

	// Open the editor when no subcommand is provided; positional args are files.
	app.Action = editCmd.Run
	app.ShellComplete = commands.RecentPathCompleter(quillApp)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
