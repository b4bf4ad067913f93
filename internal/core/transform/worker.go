// Package transform runs whole-document text transforms off the UI goroutine.
//
// A Worker is an isolated goroutine that talks only through channels; requests
// and responses are plain values so no buffer is shared with the caller.
package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status is the outcome reported by a worker response.
type Status string

const (
	StatusDone  Status = "done"
	StatusError Status = "error"
)

// ErrTerminated is returned by Send after Terminate.
var ErrTerminated = errors.New("worker terminated")

// Request asks a worker to run Command over Text.
type Request struct {
	Command string
	Text    string
}

// Response is the reply to one Request. Message is set when Status is
// StatusError.
type Response struct {
	Status  Status
	Result  string
	Message string
}

// Func is a registered transform.
type Func func(ctx context.Context, text string) (string, error)

// Registry maps command names to transforms.
type Registry map[string]Func

// DefaultRegistry returns the built-in transforms.
func DefaultRegistry() Registry {
	return Registry{
		CommandSortLines: SortLines,
	}
}

// Worker processes requests one at a time on its own goroutine.
type Worker struct {
	funcs Registry

	in   chan Request
	out  chan Response
	errs chan error

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Spawn starts a worker goroutine.
func Spawn(funcs Registry) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		funcs:  funcs,
		in:     make(chan Request),
		out:    make(chan Response, 1),
		errs:   make(chan error, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// Send hands req to the worker. It blocks until the worker accepts it.
func (w *Worker) Send(req Request) error {
	select {
	case w.in <- req:
		return nil
	case <-w.ctx.Done():
		return ErrTerminated
	}
}

// Messages delivers responses.
func (w *Worker) Messages() <-chan Response { return w.out }

// Errors delivers worker-level failures, such as a panic inside a transform.
func (w *Worker) Errors() <-chan error { return w.errs }

// Terminate stops the worker. A transform already running is asked to stop
// through its context; its result is dropped.
func (w *Worker) Terminate() {
	w.once.Do(func() {
		w.cancel()
		<-w.done
	})
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.in:
			resp, err := w.handle(req)
			if err != nil {
				w.emitErr(err)
				continue
			}
			select {
			case w.out <- resp:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handle(req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform %q panicked: %v", req.Command, r)
		}
	}()

	fn, ok := w.funcs[req.Command]
	if !ok {
		return Response{Status: StatusError, Message: fmt.Sprintf("unknown command %q", req.Command)}, nil
	}

	result, ferr := fn(w.ctx, req.Text)
	if ferr != nil {
		return Response{Status: StatusError, Message: ferr.Error()}, nil
	}
	return Response{Status: StatusDone, Result: result}, nil
}

func (w *Worker) emitErr(err error) {
	select {
	case w.errs <- err:
	case <-w.ctx.Done():
	}
}
