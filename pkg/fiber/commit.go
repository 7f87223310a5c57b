package fiber

import (
	"time"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/host"
	"github.com/vango-dev/loom/pkg/vdom"
)

// commitRoot applies the finished in-progress tree to the host and makes it
// the committed tree. It never yields.
func (s *Session) commitRoot() {
	if s.wip == nil || s.next != nil {
		panic(errors.New("E003").WithOp("commitRoot"))
	}
	span := s.startCommitSpan()
	start := time.Now()
	report := CommitReport{Pass: s.gen}

	for _, f := range s.deletions {
		s.teardown(f)
		report.Removed++
	}

	s.wip.Walk(func(f *Fiber) bool {
		switch f.Action {
		case ActionAdd:
			report.Added++
			if f.Node != nil {
				s.place(f)
			}
		case ActionUpdate:
			report.Updated++
			if f.Node != nil {
				host.Apply(s.meter, f.Node, vdom.DiffProps(f.Alternate.Props, f.Props))
			}
		}
		for _, h := range f.hooks {
			h.settle()
		}
		return true
	})

	// The superseded tree is no longer reachable once alternates are cleared.
	s.wip.Walk(func(f *Fiber) bool {
		f.Alternate = nil
		return true
	})
	for _, f := range s.deletions {
		f.Parent = nil
		f.Sibling = nil
		f.hooks = nil
	}

	report.Mutations = s.meter.n
	report.Duration = time.Since(start)

	s.current = s.wip
	s.wip = nil
	s.deletions = nil
	s.priorTags = nil

	s.endCommitSpan(span, report)
	s.logger.Debug("committed",
		"pass", report.Pass,
		"added", report.Added,
		"updated", report.Updated,
		"removed", report.Removed,
		"mutations", report.Mutations,
		"duration", report.Duration)
	s.observer.Committed(report)
	for _, fn := range s.onCommit {
		fn(report)
	}

	if s.rerender {
		s.rerender = false
		s.restart("rerender")
	}
}

// teardown removes the host nodes of f's subtree. A fiber without a host
// node contributes its children instead.
func (s *Session) teardown(f *Fiber) {
	stack := []*Fiber{f}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Node != nil {
			s.meter.RemoveNode(n.Node)
			continue
		}
		stack = pushChildren(stack, n)
	}
}

// place inserts an ADD fiber's node under its nearest host ancestor.
func (s *Session) place(f *Fiber) {
	parent := f.Parent
	for parent.Node == nil {
		parent = parent.Parent
	}
	if s.inserter != nil {
		if ref := hostSibling(f); ref != nil {
			s.meter.insertBefore(s.inserter, parent.Node, f.Node, ref)
			return
		}
	}
	s.meter.AppendChild(parent.Node, f.Node)
}

// hostSibling returns the host node that f's node must precede, or nil if
// it belongs at the end of its host parent. Nodes tagged ADD are skipped
// because later fibers in preorder are not placed yet.
func hostSibling(f *Fiber) host.Node {
	n := f
siblings:
	for {
		for n.Sibling == nil {
			if n.Parent == nil || n.Parent.Node != nil {
				return nil
			}
			n = n.Parent
		}
		n = n.Sibling
		for n.Node == nil || n.Action == ActionAdd {
			if n.Action == ActionAdd || n.Child == nil {
				continue siblings
			}
			n = n.Child
		}
		return n.Node
	}
}

// meter forwards host calls and counts them.
type meter struct {
	h host.Host
	n int
}

func (m *meter) CreateNode(kind string) host.Node {
	m.n++
	return m.h.CreateNode(kind)
}

func (m *meter) SetProperty(n host.Node, key string, value any) {
	m.n++
	m.h.SetProperty(n, key, value)
}

func (m *meter) ClearProperty(n host.Node, key string) {
	m.n++
	m.h.ClearProperty(n, key)
}

func (m *meter) MergeStyle(n host.Node, decls map[string]string) {
	m.n++
	m.h.MergeStyle(n, decls)
}

func (m *meter) AddListener(n host.Node, event string, l *vdom.Listener) {
	m.n++
	m.h.AddListener(n, event, l)
}

func (m *meter) RemoveListener(n host.Node, event string, l *vdom.Listener) {
	m.n++
	m.h.RemoveListener(n, event, l)
}

func (m *meter) AppendChild(parent, child host.Node) {
	m.n++
	m.h.AppendChild(parent, child)
}

func (m *meter) RemoveNode(n host.Node) {
	m.n++
	m.h.RemoveNode(n)
}

func (m *meter) insertBefore(ins host.Inserter, parent, child, ref host.Node) {
	m.n++
	ins.InsertBefore(parent, child, ref)
}
