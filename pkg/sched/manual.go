package sched

import "errors"

// ErrRunaway is returned by Flush when callbacks keep scheduling more work
// past the flush limit.
var ErrRunaway = errors.New("sched: flush limit exceeded")

// flushLimit bounds the number of callbacks a single Flush will run.
const flushLimit = 100000

// Manual is a Scheduler driven explicitly by the caller. It is the
// deterministic scheduler used by tests and by one-shot renders.
// Manual is not safe for concurrent use.
type Manual struct {
	idle   []func(Deadline)
	commit []func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// RequestIdleSlice queues fn.
func (m *Manual) RequestIdleSlice(fn func(Deadline)) {
	m.idle = append(m.idle, fn)
}

// RequestCommitSlice queues fn.
func (m *Manual) RequestCommitSlice(fn func()) {
	m.commit = append(m.commit, fn)
}

// Pending returns the number of queued idle and commit callbacks.
func (m *Manual) Pending() (idle, commit int) {
	return len(m.idle), len(m.commit)
}

// Idle runs the oldest queued idle callback with a budget of steps units.
// A non-positive steps grants an unlimited budget. It returns false if no
// idle callback was queued.
func (m *Manual) Idle(steps int) bool {
	if len(m.idle) == 0 {
		return false
	}
	fn := m.idle[0]
	m.idle = m.idle[1:]
	if steps <= 0 {
		fn(Unlimited)
	} else {
		fn(Steps(steps))
	}
	return true
}

// Commit runs the oldest queued commit callback. It returns false if no
// commit callback was queued.
func (m *Manual) Commit() bool {
	if len(m.commit) == 0 {
		return false
	}
	fn := m.commit[0]
	m.commit = m.commit[1:]
	fn()
	return true
}

// Flush runs queued callbacks until none remain. Idle work drains before
// any commit, as it would between two frames.
func (m *Manual) Flush() error {
	for n := 0; ; n++ {
		if n >= flushLimit {
			return ErrRunaway
		}
		if m.Idle(0) {
			continue
		}
		if !m.Commit() {
			return nil
		}
	}
}
