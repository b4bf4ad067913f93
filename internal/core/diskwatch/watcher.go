// Package diskwatch reports when files bound to open documents change on
// disk outside the editor.
package diskwatch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/logging"
)

const (
	debounceDelay   = 50 * time.Millisecond
	expectWindow    = 2 * time.Second
	eventBufferSize = 32
)

// Op is the kind of change observed.
type Op uint8

const (
	OpChanged Op = iota + 1
	OpRemoved
)

func (o Op) String() string {
	switch o {
	case OpChanged:
		return "changed"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a debounced change to a tracked file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher watches the parent directories of tracked files, so editors that
// save by renaming a temp file over the original are still noticed.
type Watcher struct {
	fsw *fsnotify.Watcher
	log zerolog.Logger
	out chan Event

	mu       sync.Mutex
	files    map[string]struct{}
	dirs     map[string]int // watched dir -> tracked files inside
	expected map[string]time.Time
	debounce map[string]*time.Timer
	pending  map[string]Op
	closed   bool

	wg sync.WaitGroup
}

// New starts a watcher with nothing tracked.
func New(logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		log:      logging.For(logger, "diskwatch"),
		out:      make(chan Event, eventBufferSize),
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		expected: make(map[string]time.Time),
		debounce: make(map[string]*time.Timer),
		pending:  make(map[string]Op),
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events delivers changes. Events are dropped when the buffer is full.
func (w *Watcher) Events() <-chan Event { return w.out }

// Sync makes the tracked set equal to paths. Empty paths are ignored.
func (w *Watcher) Sync(paths []string) error {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			want[filepath.Clean(p)] = struct{}{}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}

	for p := range w.files {
		if _, ok := want[p]; !ok {
			w.untrackLocked(p)
		}
	}

	var firstErr error
	for p := range want {
		if _, ok := w.files[p]; ok {
			continue
		}
		if err := w.trackLocked(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Tracked reports whether path is tracked.
func (w *Watcher) Tracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

// Expect suppresses events for path for a short window. Call it before the
// editor writes the file itself.
func (w *Watcher) Expect(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expected[filepath.Clean(path)] = time.Now().Add(expectWindow)
}

// Close stops watching and closes the Events channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.debounce {
		t.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()

	w.mu.Lock()
	close(w.out)
	w.mu.Unlock()
	return err
}

func (w *Watcher) trackLocked(path string) error {
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			w.log.Debug().Err(err).Str("dir", dir).Msg("cannot watch directory")
			return err
		}
	}
	w.dirs[dir]++
	w.files[path] = struct{}{}
	return nil
}

func (w *Watcher) untrackLocked(path string) {
	delete(w.files, path)
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	var op Op
	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		op = OpChanged
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = OpRemoved
	default:
		return
	}

	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok || w.closed {
		return
	}
	if until, ok := w.expected[path]; ok {
		if time.Now().Before(until) {
			return
		}
		delete(w.expected, path)
	}

	// A rename-over save shows up as remove then create; the last op wins.
	w.pending[path] = op
	if t, ok := w.debounce[path]; ok {
		t.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() { w.emit(path) })
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	op, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.debounce, path)
	if !ok || w.closed {
		return
	}

	select {
	case w.out <- Event{Path: path, Op: op, Time: time.Now()}:
	default:
		w.log.Debug().Str("path", path).Msg("dropping disk event, buffer full")
	}
}
