package fiber

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/host"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

const tracerName = "github.com/vango-dev/loom/pkg/fiber"

// Session is the reconciliation context of one render root.
type Session struct {
	host     host.Host
	meter    *meter
	inserter host.Inserter
	releaser host.Releaser
	sched    sched.Scheduler

	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	onError  func(error)
	onCommit []func(CommitReport)

	current   *Fiber   // committed tree
	wip       *Fiber   // in-progress tree
	next      *Fiber   // next unit of work
	deletions []*Fiber // fibers tagged REMOVE by the current pass
	priorTags []Action // tags the deleted fibers carried before the pass

	gen           uint64 // pass generation
	idleRequested bool
	inUnit        bool
	rerender      bool
	err           error

	passCtx  context.Context
	passSpan trace.Span
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithTracer sets the tracer used for pass and commit spans.
// Default: the global otel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithErrorHandler registers fn to receive errors that abort a pass.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Session) {
		s.onError = fn
	}
}

// New creates a session rendering through h on scheduler sc.
func New(h host.Host, sc sched.Scheduler, opts ...Option) *Session {
	s := &Session{
		host:     h,
		meter:    &meter{h: h},
		sched:    sc,
		logger:   slog.Default(),
		observer: NopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	s.inserter, _ = h.(host.Inserter)
	s.releaser, _ = h.(host.Releaser)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "fiber")
	return s
}

// Render starts a pass that reconciles root into mount. The first call
// renders against an empty tree; later calls on the same mount diff against
// the committed tree. A pass that has not committed is discarded.
func (s *Session) Render(root *vdom.Node, mount host.Node) error {
	if mount == nil {
		return errors.New("E005").WithOp("Render")
	}
	if err := vdom.Validate(root); err != nil {
		return errors.FromError(err, "E002").WithOp("Render")
	}
	if s.wip != nil {
		s.discard()
	}
	s.err = nil

	var alt *Fiber
	if s.current != nil && host.Same(s.current.Node, mount) {
		alt = s.current
	}
	s.startPass(mount, []*vdom.Node{root}, alt, "render")
	return nil
}

// OnCommit registers fn to run after every commit.
func (s *Session) OnCommit(fn func(CommitReport)) {
	s.onCommit = append(s.onCommit, fn)
}

// Current returns the root of the committed tree, or nil before the first
// commit.
func (s *Session) Current() *Fiber {
	return s.current
}

// WorkInProgress returns the root of the in-progress tree, or nil.
func (s *Session) WorkInProgress() *Fiber {
	return s.wip
}

// Deletions returns the fibers the in-progress pass will tear down.
func (s *Session) Deletions() []*Fiber {
	out := make([]*Fiber, len(s.deletions))
	copy(out, s.deletions)
	return out
}

// Pending reports whether a pass is in progress.
func (s *Session) Pending() bool {
	return s.wip != nil
}

// Err returns the error that aborted the most recent pass, if any.
func (s *Session) Err() error {
	return s.err
}

// Generation returns the number of passes started so far.
func (s *Session) Generation() uint64 {
	return s.gen
}

// requestUpdate is called by setters.
func (s *Session) requestUpdate() {
	switch {
	case s.inUnit:
		// A setter called while a component renders lands in the pass
		// after this one.
		s.rerender = true
	case s.current == nil:
		if s.wip != nil {
			s.rerender = true
		}
	default:
		s.restart("update")
	}
}

// restart begins a new pass rooted at the committed tree.
func (s *Session) restart(reason string) {
	if s.current == nil {
		return
	}
	if s.wip != nil {
		s.discard()
	}
	s.startPass(s.current.Node, s.current.children, s.current, reason)
}

func (s *Session) startPass(mount host.Node, children []*vdom.Node, alt *Fiber, reason string) {
	s.gen++
	s.wip = &Fiber{
		Kind:      rootKind,
		Node:      mount,
		Alternate: alt,
		children:  children,
	}
	s.next = s.wip
	s.deletions = nil
	s.priorTags = nil
	s.meter.n = 0

	s.startPassSpan(reason)
	s.logger.Debug("pass started", "pass", s.gen, "reason", reason)
	s.observer.PassStarted(reason)
	s.requestIdle()
}

func (s *Session) requestIdle() {
	if s.idleRequested {
		return
	}
	s.idleRequested = true
	s.sched.RequestIdleSlice(s.workLoop)
}

// dropPass releases the in-progress tree without committing it.
func (s *Session) dropPass() {
	if s.wip != nil && s.releaser != nil {
		s.wip.Walk(func(f *Fiber) bool {
			if f.Action == ActionAdd && f.Node != nil {
				s.releaser.ReleaseNode(f.Node)
			}
			return true
		})
	}
	for i, f := range s.deletions {
		f.Action = s.priorTags[i]
	}
	s.wip = nil
	s.next = nil
	s.deletions = nil
	s.priorTags = nil
}

// discard drops the in-progress pass in favor of a new one.
func (s *Session) discard() {
	s.logger.Debug("pass discarded", "pass", s.gen)
	s.endPassSpan(nil, true)
	s.dropPass()
	s.observer.PassDiscarded()
}

// abort drops the in-progress pass because of err. The pass is not retried.
func (s *Session) abort(err error) {
	s.err = err
	s.logger.Warn("pass aborted", "pass", s.gen, "error", err)
	s.endPassSpan(err, false)
	s.dropPass()
	s.rerender = false
	s.observer.PassAborted(err)
	if s.onError != nil {
		s.onError(err)
	}
}
