package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/quill/internal/core/document"
	"github.com/colonyops/quill/internal/core/logging"
	"github.com/colonyops/quill/pkg/kv"
)

var (
	// ErrNothingToTransform is returned for blank or whitespace-only input.
	ErrNothingToTransform = errors.New("nothing to transform")
	// ErrSuperseded is returned when a newer job for the same document
	// replaced this one.
	ErrSuperseded = errors.New("superseded by a newer transform")
)

// TransformError is a failure reported by the worker, either from the
// transform itself or from the worker goroutine.
type TransformError struct {
	Command string
	Message string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Command, e.Message)
}

// Job identifies the document text a transform runs over. DocID and
// Generation let the caller discard results that arrive after the document
// changed.
type Job struct {
	DocID      document.ID
	Generation uint64
	Command    string
	Text       string
}

// Outcome is the result of Run. Err is nil on success.
type Outcome struct {
	DocID      document.ID
	Generation uint64
	Command    string
	Result     string
	Err        error
	Elapsed    time.Duration
}

type flight struct {
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// Runner spawns one worker per job and tracks the job in flight for each
// document.
type Runner struct {
	funcs    Registry
	inflight *kv.Store[document.ID, *flight]
	log      zerolog.Logger
}

// NewRunner returns a Runner using funcs. A nil registry means
// DefaultRegistry.
func NewRunner(funcs Registry, logger zerolog.Logger) *Runner {
	if funcs == nil {
		funcs = DefaultRegistry()
	}
	return &Runner{
		funcs:    funcs,
		inflight: kv.New[document.ID, *flight](),
		log:      logging.For(logger, "transform"),
	}
}

// Busy reports whether a job is running for id.
func (r *Runner) Busy(id document.ID) bool {
	_, ok := r.inflight.Get(id)
	return ok
}

// Cancel stops the job running for id, if any.
func (r *Runner) Cancel(id document.ID) {
	if f, ok := r.inflight.Get(id); ok {
		f.cancel()
	}
}

// Run executes job and blocks until it finishes, fails, or is cancelled.
// Starting a job for a document cancels the job already running for it.
func (r *Runner) Run(ctx context.Context, job Job) Outcome {
	out := Outcome{DocID: job.DocID, Generation: job.Generation, Command: job.Command}
	if strings.TrimSpace(job.Text) == "" {
		out.Err = ErrNothingToTransform
		return out
	}

	ctx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}
	if prev, ok := r.inflight.Swap(job.DocID, f); ok {
		prev.superseded.Store(true)
		prev.cancel()
	}
	defer func() {
		r.inflight.DeleteIf(job.DocID, func(v *flight) bool { return v == f })
		cancel()
	}()

	start := time.Now()
	w := Spawn(r.funcs)
	defer w.Terminate()

	if err := w.Send(Request{Command: job.Command, Text: job.Text}); err != nil {
		out.Err = err
		return out
	}

	select {
	case resp := <-w.Messages():
		if resp.Status == StatusError {
			out.Err = &TransformError{Command: job.Command, Message: resp.Message}
		} else {
			out.Result = resp.Result
		}
	case err := <-w.Errors():
		out.Err = &TransformError{Command: job.Command, Message: err.Error()}
	case <-ctx.Done():
		out.Err = ctx.Err()
		if f.superseded.Load() {
			out.Err = ErrSuperseded
		}
	}

	out.Elapsed = time.Since(start)
	evt := r.log.Debug()
	if out.Err != nil {
		evt = r.log.Warn().Err(out.Err)
	}
	evt.Ctx(logging.WithDocumentID(ctx, uint64(job.DocID))).
		Str("command", job.Command).
		Int("bytes", len(job.Text)).
		Dur("elapsed", out.Elapsed).
		Msg("transform finished")
	return out
}
