// Package sched provides the two-phase scheduling primitives the reconciler
// runs on: idle slices, which grant a time budget for interruptible work,
// and commit slices, which run uninterrupted at the next frame boundary.
package sched

import (
	"math"
	"time"
)

// Deadline reports the time left in an idle slice.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Scheduler grants idle and commit slices.
type Scheduler interface {
	// RequestIdleSlice arranges for fn to run once with a budget.
	RequestIdleSlice(fn func(Deadline))

	// RequestCommitSlice arranges for fn to run once at the next commit
	// opportunity.
	RequestCommitSlice(fn func())
}

// Unlimited is a Deadline that never expires.
var Unlimited Deadline = unlimited{}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return math.MaxInt64 }

// Until returns a Deadline that expires at t.
func Until(t time.Time) Deadline {
	return wallDeadline(t)
}

type wallDeadline time.Time

func (d wallDeadline) TimeRemaining() time.Duration {
	if r := time.Until(time.Time(d)); r > 0 {
		return r
	}
	return 0
}

// Steps returns a Deadline that allows exactly n units of work, assuming
// the caller checks it once after each unit.
func Steps(n int) Deadline {
	return &stepDeadline{left: n}
}

type stepDeadline struct {
	left int
}

func (d *stepDeadline) TimeRemaining() time.Duration {
	d.left--
	if d.left > 0 {
		return time.Millisecond
	}
	return 0
}
