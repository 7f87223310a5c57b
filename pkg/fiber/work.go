package fiber

import (
	"fmt"
	"runtime/debug"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/host"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

// workLoop performs units of work until the pass is complete or the slice
// deadline expires. At least one unit runs per slice.
func (s *Session) workLoop(d sched.Deadline) {
	s.idleRequested = false
	if s.next == nil {
		return
	}

	gen := s.gen
	units := 0
	for s.next != nil {
		next, err := s.performUnitOfWork(s.next)
		units++
		if gen != s.gen {
			// Render was called from inside the unit; the new pass owns
			// the cursor now.
			break
		}
		if err != nil {
			s.abort(err)
			break
		}
		s.next = next
		if d.TimeRemaining() <= 0 {
			break
		}
	}
	s.observer.SliceFinished(units, s.next != nil)

	switch {
	case s.next != nil:
		s.requestIdle()
	case s.wip != nil && gen == s.gen:
		s.sched.RequestCommitSlice(func() {
			if gen != s.gen || s.wip == nil {
				// The pass this slice was requested for was discarded.
				return
			}
			s.commitRoot()
		})
	}
}

// performUnitOfWork processes f and returns the next fiber in preorder. A
// panic raised by the host while f is processed becomes an E006 error, so
// the pass aborts instead of leaving the cursor set with no slice queued.
func (s *Session) performUnitOfWork(f *Fiber) (next *Fiber, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("host panic",
				"kind", f.Kind.String(),
				"panic", r,
				"stack", string(debug.Stack()))
			next = nil
			err = errors.New("E006").
				WithDetailf("%s: %v", f.Kind, r).
				Wrap(panicError(r))
		}
	}()

	if f.Kind.IsComponent() {
		err = s.updateComponent(f)
	} else {
		err = s.updateHost(f)
	}
	if err != nil {
		return nil, err
	}

	if f.Child != nil {
		return f.Child, nil
	}
	for n := f; n != nil && n != s.wip; n = n.Parent {
		if n.Sibling != nil {
			return n.Sibling, nil
		}
	}
	return nil, nil
}

func (s *Session) updateHost(f *Fiber) error {
	if f.Node == nil {
		f.Node = s.meter.CreateNode(f.Kind.Tag())
		host.Apply(s.meter, f.Node, vdom.DiffProps(nil, f.Props))
	}
	for _, c := range f.children {
		if err := vdom.Validate(c); err != nil {
			return err
		}
	}
	s.reconcileChildren(f, f.children)
	return nil
}

func (s *Session) updateComponent(f *Fiber) error {
	scope := &Scope{fiber: f, session: s, active: true}
	f.hooks = nil

	out, err := s.invoke(f, scope)
	scope.active = false
	if err != nil {
		return err
	}

	var children []*vdom.Node
	if out != nil {
		if err := vdom.Validate(out); err != nil {
			return errors.FromError(err, "E002").WithOp(f.Kind.String())
		}
		children = []*vdom.Node{out}
	}
	s.reconcileChildren(f, children)
	return nil
}

// invoke calls the component, converting a panic into an error that aborts
// the pass.
func (s *Session) invoke(f *Fiber, scope *Scope) (out *vdom.Node, err error) {
	s.inUnit = true
	defer func() {
		s.inUnit = false
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok && e.Code == "E001" {
				err = e
				return
			}
			s.logger.Error("component panic",
				"component", f.Kind.String(),
				"panic", r,
				"stack", string(debug.Stack()))
			err = errors.New("E004").
				WithDetailf("%s: %v", f.Kind, r).
				Wrap(panicError(r))
		}
	}()
	return f.Kind.Component()(scope, f.Props), nil
}

func panicError(r any) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("%v", r)
}
