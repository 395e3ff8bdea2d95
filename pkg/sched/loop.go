// Package sched provides the single-threaded cooperative scheduler that
// toast lifecycles run on. All mutations of a toast, its gesture
// callbacks, its timers, and its animation completions execute on one
// Loop, so the state machine needs no locks. Code running off the loop
// hands work in through Dispatch.
package sched

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the dispatch queue capacity when no option is given.
const DefaultQueueSize = 256

// Scheduler queues work onto a cooperative single-threaded loop.
type Scheduler interface {
	// Dispatch enqueues fn to run on the loop. It never blocks the
	// caller; on a stopped loop or a full queue the callback is
	// discarded.
	Dispatch(fn func())

	// After runs fn on the loop once d has elapsed.
	After(d time.Duration, fn func())
}

// Loop is the production Scheduler. Create one with NewLoop, start it
// with Run (usually in its own goroutine), and stop it with Stop.
type Loop struct {
	dispatchCh chan func()
	done       chan struct{}
	closed     atomic.Bool
	stopOnce   sync.Once
	logger     *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for panic and overflow reports.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.dispatchCh = make(chan func(), n)
		}
	}
}

// NewLoop creates a stopped-state loop. Nothing runs until Run is called.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		dispatchCh: make(chan func(), DefaultQueueSize),
		done:       make(chan struct{}),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes dispatched callbacks until Stop is called. It blocks;
// callers normally run it in a dedicated goroutine:
//
//	loop := sched.NewLoop()
//	go loop.Run()
//	defer loop.Stop()
func (l *Loop) Run() {
	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
		case <-l.done:
			return
		}
	}
}

// execute runs a dispatched function with panic recovery so a broken
// callback cannot take down the loop.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(stack))
		}
	}()

	fn()
}

// Dispatch enqueues fn onto the loop.
func (l *Loop) Dispatch(fn func()) {
	if l.closed.Load() {
		return
	}
	select {
	case l.dispatchCh <- fn:
		// Successfully queued
	case <-l.done:
		// Loop is stopping, discard
	default:
		// Queue full - this shouldn't happen normally, but log it
		l.logger.Warn("dispatch queue full, discarding callback")
	}
}

// After runs fn on the loop once d has elapsed. The timer fires on a
// runtime goroutine and hands the callback to Dispatch, so fn still
// observes loop ordering. Timers outstanding when the loop stops are
// discarded.
func (l *Loop) After(d time.Duration, fn func()) {
	if l.closed.Load() {
		return
	}
	time.AfterFunc(d, func() {
		l.Dispatch(fn)
	})
}

// Stop halts the loop. Idempotent. Queued callbacks that have not run
// yet are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Done is closed when the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	return l.closed.Load()
}
