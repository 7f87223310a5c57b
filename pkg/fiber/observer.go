package fiber

import "time"

// CommitReport summarizes one commit.
type CommitReport struct {
	Pass      uint64        // Pass generation that committed
	Added     int           // Fibers tagged ADD
	Updated   int           // Fibers tagged UPDATE
	Removed   int           // Subtrees torn down
	Mutations int           // Host primitive calls made by the pass
	Duration  time.Duration // Time spent in the commit walk
}

// Observer receives engine lifecycle notifications. All methods are called
// on the session's goroutine and must not block.
type Observer interface {
	PassStarted(reason string)
	PassDiscarded()
	PassAborted(err error)
	SliceFinished(units int, yielded bool)
	Committed(r CommitReport)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) PassStarted(string)      {}
func (NopObserver) PassDiscarded()          {}
func (NopObserver) PassAborted(error)       {}
func (NopObserver) SliceFinished(int, bool) {}
func (NopObserver) Committed(CommitReport)  {}
