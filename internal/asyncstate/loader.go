// ABOUTME: Generic async operation state machine with latest-wins semantics
// ABOUTME: Backs every screen that loads data so stale results never land

package asyncstate

import (
	"context"
	"sync"
)

// Status is the lifecycle phase of an async operation.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of an operation's progress. Data is only
// meaningful on success, unless the loader retains data on error.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loader runs one async operation at a time. Triggering a new run
// cancels and supersedes any run still in flight; only the most recent
// run may settle the state.
type Loader[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[T]
	notify func()
	retain bool
}

// New creates an idle loader. notify, if non-nil, runs after every
// state change, outside the loader's lock.
func New[T any](notify func()) *Loader[T] {
	return &Loader[T]{notify: notify}
}

// RetainDataOnError keeps the last successful data visible when a run
// fails, instead of zeroing it.
func (l *Loader[T]) RetainDataOnError() *Loader[T] {
	l.mu.Lock()
	l.retain = true
	l.mu.Unlock()
	return l
}

// Trigger starts op in a new goroutine. Any in-flight run is canceled
// and its eventual result discarded.
func (l *Loader[T]) Trigger(ctx context.Context, op func(context.Context) (T, error)) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.gen++
	gen := l.gen

	l.state.Status = StatusLoading
	l.state.Err = nil
	l.mu.Unlock()

	l.fireNotify()

	go func() {
		data, err := op(runCtx)
		cancel()

		l.mu.Lock()
		if gen != l.gen {
			// A newer run owns the state now.
			l.mu.Unlock()
			return
		}
		if err != nil {
			l.state.Status = StatusError
			l.state.Err = err
			if !l.retain {
				var zero T
				l.state.Data = zero
			}
		} else {
			l.state.Status = StatusSuccess
			l.state.Data = data
			l.state.Err = nil
		}
		l.mu.Unlock()

		l.fireNotify()
	}()
}

// Reset cancels any in-flight run and returns the loader to idle with
// zeroed data.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	var zero T
	l.state = State[T]{Status: StatusIdle, Data: zero}
	l.mu.Unlock()

	l.fireNotify()
}

// State returns the current snapshot.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader[T]) fireNotify() {
	if l.notify != nil {
		l.notify()
	}
}
