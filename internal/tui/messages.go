package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/diskwatch"
	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/editor"
	"github.com/colonyops/quill/internal/core/history"
	"github.com/colonyops/quill/internal/core/ingest"
	"github.com/colonyops/quill/internal/core/transform"
)

// startupMsg carries work queued by the caller before the program started.
type startupMsg struct {
	restored int
	files    []string
	warnings []string
}

// readProgressMsg reports ingestion progress. ch is the stream the next
// message comes from.
type readProgressMsg struct {
	path     string
	progress ingest.Progress
	ch       <-chan tea.Msg
}

type readDoneMsg struct {
	path   string
	result ingest.Result
	err    error
}

type saveDoneMsg struct {
	req editor.SaveRequest
	err error
}

type transformDoneMsg struct {
	outcome transform.Outcome
}

// countTickMsg fires after the status debounce; only the latest seq counts.
type countTickMsg struct{ seq uint64 }

// persistTickMsg fires after the recovery debounce; only the latest seq counts.
type persistTickMsg struct{ seq uint64 }

type diskEventMsg struct {
	event diskwatch.Event
}

type clipboardMsg struct {
	text  string // pasted text; empty for copy and cut
	paste bool
	note  string
	err   error
}

type themeSavedMsg struct{ err error }

const progressBuffer = 8

// readFile starts a chunked read of path and returns a command that yields
// progress messages followed by a single readDoneMsg.
func readFile(ctx context.Context, svc *editor.Service, path string) tea.Cmd {
	out := make(chan tea.Msg, progressBuffer)
	progress := make(chan ingest.Progress, progressBuffer)

	go func() {
		defer close(out)

		forwarded := make(chan struct{})
		go func() {
			defer close(forwarded)
			for p := range progress {
				// The UI only needs the latest value; drop when it falls behind.
				select {
				case out <- readProgressMsg{path: path, progress: p, ch: out}:
				default:
				}
			}
		}()

		res, err := svc.Read(ctx, path, progress)
		close(progress)
		<-forwarded
		out <- readDoneMsg{path: path, result: res, err: err}
	}()

	return waitFor(out)
}

// waitFor returns a command that receives the next message from ch.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func writeFile(ctx context.Context, svc *editor.Service, req editor.SaveRequest) tea.Cmd {
	return func() tea.Msg {
		return saveDoneMsg{req: req, err: svc.Write(ctx, req)}
	}
}

func runTransform(ctx context.Context, svc *editor.Service, job transform.Job) tea.Cmd {
	return func() tea.Msg {
		return transformDoneMsg{outcome: svc.Transform(ctx, job)}
	}
}

func persistRecovery(ctx context.Context, svc *editor.Service, seq uint64, entries []document.Entry) tea.Cmd {
	return func() tea.Msg {
		svc.Persist(ctx, seq, entries)
		return nil
	}
}

func rememberPath(ctx context.Context, recent *history.Recent, path string, log zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		if err := recent.Add(ctx, path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("recent path not recorded")
		}
		return nil
	}
}

func scheduleCount(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return countTickMsg{seq: seq} })
}

func schedulePersist(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return persistTickMsg{seq: seq} })
}

// listenDisk waits for the next disk event. It returns nil once the watcher
// is closed, which ends the listen loop.
func listenDisk(ch <-chan diskwatch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return diskEventMsg{event: ev}
	}
}

func copyText(clip Clipboard, text, note string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{note: note, err: clip.WriteAll(text)}
	}
}

func pasteText(clip Clipboard) tea.Cmd {
	return func() tea.Msg {
		text, err := clip.ReadAll()
		return clipboardMsg{text: text, paste: true, err: err}
	}
}
