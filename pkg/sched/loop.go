package sched

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// ErrLoopClosed is returned when work is submitted to a stopped loop.
var ErrLoopClosed = errors.New("sched: loop closed")

// ErrQueueFull is returned when the task queue is full and a task is dropped.
var ErrQueueFull = errors.New("sched: task queue full")

// LoopConfig configures a Loop.
type LoopConfig struct {
	// SliceBudget is the time granted to each idle slice.
	// Default: 5ms
	SliceBudget time.Duration

	// FrameInterval is the period between commit slices.
	// Default: 16ms
	FrameInterval time.Duration

	// QueueSize is the capacity of the task queue.
	// Default: 256
	QueueSize int

	// Logger receives panic reports. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultLoopConfig returns a LoopConfig with the default values.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		SliceBudget:   5 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		QueueSize:     256,
	}
}

// Loop is a single-goroutine Scheduler. Tasks, idle slices and commit slices
// all run on the goroutine executing Run, so reconciler state touched from
// them needs no locking. Other goroutines hand work to the loop with Submit
// or Do.
type Loop struct {
	cfg    LoopConfig
	logger *slog.Logger

	tasks chan func()
	wake  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	idle    []func(Deadline)
	commits []func()

	closeOnce sync.Once
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.SliceBudget <= 0 {
		cfg.SliceBudget = def.SliceBudget
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:    cfg,
		logger: logger.With("component", "sched"),
		tasks:  make(chan func(), cfg.QueueSize),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// RequestIdleSlice queues fn for the next idle slice.
func (l *Loop) RequestIdleSlice(fn func(Deadline)) {
	l.mu.Lock()
	l.idle = append(l.idle, fn)
	l.mu.Unlock()
	l.signal()
}

// RequestCommitSlice queues fn for the next frame tick.
func (l *Loop) RequestCommitSlice(fn func()) {
	l.mu.Lock()
	l.commits = append(l.commits, fn)
	l.mu.Unlock()
}

// Submit queues fn to run on the loop. It is safe to call from any
// goroutine and never blocks.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	default:
		l.logger.Warn("task queue full, dropping task")
		return ErrQueueFull
	}
}

// Do runs fn on the loop and waits for it to return.
// Calling Do from the loop goroutine deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Submit(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes the loop until ctx is canceled. Tasks take priority over
// idle work; commit slices run on frame ticks.
func (l *Loop) Run(ctx context.Context) {
	defer l.closeOnce.Do(func() { close(l.done) })

	ticker := time.NewTicker(l.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.safely("task", fn)
			continue
		case <-ticker.C:
			l.runCommits()
			continue
		default:
		}

		if fn := l.popIdle(); fn != nil {
			deadline := Until(time.Now().Add(l.cfg.SliceBudget))
			l.safely("idle slice", func() { fn(deadline) })
			continue
		}

		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.safely("task", fn)
		case <-ticker.C:
			l.runCommits()
		case <-l.wake:
		}
	}
}

func (l *Loop) popIdle() func(Deadline) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.idle) == 0 {
		return nil
	}
	fn := l.idle[0]
	l.idle = l.idle[1:]
	return fn
}

func (l *Loop) runCommits() {
	l.mu.Lock()
	commits := l.commits
	l.commits = nil
	l.mu.Unlock()

	for _, fn := range commits {
		l.safely("commit slice", fn)
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// safely runs fn, recovering and logging a panic so one bad callback does
// not take the loop down.
func (l *Loop) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(what+" panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
