package fiber

import (
	"testing"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

type harness struct {
	t       *testing.T
	doc     *dom.Document
	m       *sched.Manual
	s       *Session
	reports []CommitReport
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, doc: dom.New(), m: sched.NewManual()}
	h.s = New(h.doc, h.m, opts...)
	h.s.OnCommit(func(r CommitReport) { h.reports = append(h.reports, r) })
	return h
}

func (h *harness) render(n *vdom.Node) {
	h.t.Helper()
	if err := h.s.Render(n, h.doc.Root); err != nil {
		h.t.Fatalf("Render() error = %v", err)
	}
}

// work runs idle slices until the pass is fully reconciled, without
// committing.
func (h *harness) work() {
	for h.m.Idle(0) {
	}
}

func (h *harness) flush() {
	h.t.Helper()
	if err := h.m.Flush(); err != nil {
		h.t.Fatalf("Flush() error = %v", err)
	}
}

func (h *harness) lastReport() CommitReport {
	h.t.Helper()
	if len(h.reports) == 0 {
		h.t.Fatal("no commit happened")
	}
	return h.reports[len(h.reports)-1]
}

func actions(fs []*Fiber) []Action {
	out := make([]Action, len(fs))
	for i, f := range fs {
		out[i] = f.Action
	}
	return out
}

func list(items ...string) *vdom.Node {
	ul := vdom.Ul()
	for _, s := range items {
		ul.Children = append(ul.Children, vdom.Li(vdom.Text(s)))
	}
	return ul
}

// firstHost returns the first fiber under the root, skipping components.
func firstHost(root *Fiber) *Fiber {
	f := root.Child
	for f != nil && f.Kind.IsComponent() {
		f = f.Child
	}
	return f
}
