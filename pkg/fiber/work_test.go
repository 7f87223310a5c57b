package fiber

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

type recordingObserver struct {
	events []string
	slices []bool
}

func (o *recordingObserver) PassStarted(reason string) { o.events = append(o.events, "start:"+reason) }
func (o *recordingObserver) PassDiscarded()            { o.events = append(o.events, "discard") }
func (o *recordingObserver) PassAborted(err error)     { o.events = append(o.events, "abort") }
func (o *recordingObserver) SliceFinished(units int, yielded bool) {
	o.slices = append(o.slices, yielded)
}
func (o *recordingObserver) Committed(r CommitReport) { o.events = append(o.events, "commit") }

func TestWorkResumesAcrossSlices(t *testing.T) {
	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	h.render(list("A", "B", "C"))

	// root, ul, three li and three text nodes
	slices := 0
	for h.m.Idle(1) {
		slices++
	}
	if slices != 8 {
		t.Errorf("slices = %d, want 8", slices)
	}
	if len(h.doc.Root.Children) != 0 {
		t.Error("nothing may reach the mount before commit")
	}
	if _, commits := h.m.Pending(); commits != 1 {
		t.Fatalf("pending commits = %d, want 1", commits)
	}

	h.m.Commit()
	if got := h.doc.Root.TextContent(); got != "ABC" {
		t.Errorf("TextContent() = %q, want ABC", got)
	}

	yielded := 0
	for _, y := range obs.slices {
		if y {
			yielded++
		}
	}
	if yielded != 7 || obs.slices[7] {
		t.Errorf("slices = %v, want 7 yields then completion", obs.slices)
	}
	if diff := cmp.Diff([]string{"start:render", "commit"}, obs.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkStepsThroughBudget(t *testing.T) {
	h := newHarness(t)
	h.render(list("A", "B", "C"))
	h.m.Idle(3)

	// Three units: root, ul, first li.
	next := h.s.next
	if next == nil || !next.Kind.IsText() {
		t.Fatalf("cursor = %v, want the first text node", next)
	}
	if next.Parent != h.s.WorkInProgress().Child.Child {
		t.Error("cursor should sit under the first li")
	}
}

func TestSetterDiscardsPassInProgress(t *testing.T) {
	var toggle Setter[bool]
	comp := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		on, set := UseState(ctx, false)
		toggle = set
		if on {
			return vdom.Div(vdom.P("x"), vdom.P("y"))
		}
		return vdom.Div()
	}

	obs := &recordingObserver{}
	h := newHarness(t, WithObserver(obs))
	h.render(vdom.C(comp))
	h.flush()
	baseline := h.doc.Len()
	h.doc.ResetOps()

	toggle.Set(true)
	h.m.Idle(4) // root, component, div, first <p>
	toggle.Set(false)
	h.flush()

	var released int
	for _, op := range h.doc.Ops() {
		switch op.Kind {
		case dom.OpRelease:
			released++
		case dom.OpAppend, dom.OpInsertBefore:
			t.Errorf("discarded nodes must never be attached: %+v", op)
		}
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
	if h.doc.Len() != baseline {
		t.Errorf("Len() = %d, want %d", h.doc.Len(), baseline)
	}
	want := []string{"start:render", "commit", "start:update", "discard", "start:update", "commit"}
	if diff := cmp.Diff(want, obs.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscardRestoresRemovalTags(t *testing.T) {
	h := newHarness(t)
	h.render(list("A", "B"))
	h.flush()

	h.render(list("A"))
	h.work()
	removed := h.s.Deletions()[0]
	h.render(list("A", "B"))

	if removed.Action != ActionAdd {
		t.Errorf("Action = %v, want the committed tag Add restored", removed.Action)
	}
}

func TestStaleCommitSliceIsSkipped(t *testing.T) {
	h := newHarness(t)
	h.render(vdom.P("first"))
	h.work()
	h.render(vdom.P("second"))

	if !h.m.Commit() {
		t.Fatal("the first pass should have requested a commit slice")
	}
	if len(h.doc.Root.Children) != 0 {
		t.Error("a discarded pass must not commit")
	}

	h.flush()
	if got := h.doc.Root.TextContent(); got != "second" {
		t.Errorf("TextContent() = %q, want second", got)
	}
}

func TestComponentPanicAbortsPass(t *testing.T) {
	boom := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		panic("boom")
	}

	var handled error
	h := newHarness(t, WithErrorHandler(func(err error) { handled = err }))
	h.render(vdom.Div(vdom.Span("ok"), vdom.C(boom)))
	h.flush()

	if !errors.IsCode(h.s.Err(), "E004") {
		t.Fatalf("Err() = %v, want E004", h.s.Err())
	}
	if handled == nil {
		t.Error("error handler was not called")
	}
	if h.s.Current() != nil || h.s.Pending() {
		t.Error("an aborted first pass leaves no tree")
	}
	if h.doc.Len() != 1 {
		t.Errorf("Len() = %d, want only the mount", h.doc.Len())
	}
	if len(h.reports) != 0 {
		t.Error("an aborted pass must not commit")
	}
}

func TestMalformedComponentOutputAbortsPass(t *testing.T) {
	bad := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		return &vdom.Node{Kind: vdom.Tag("ul"), Children: []*vdom.Node{nil}}
	}

	h := newHarness(t)
	h.render(vdom.C(bad))
	h.flush()
	if !errors.IsCode(h.s.Err(), "E002") {
		t.Errorf("Err() = %v, want E002", h.s.Err())
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	if err := h.s.Render(&vdom.Node{}, h.doc.Root); !errors.IsCode(err, "E002") {
		t.Errorf("Render(zero kind) error = %v, want E002", err)
	}
	if err := h.s.Render(vdom.Div(), nil); !errors.IsCode(err, "E005") {
		t.Errorf("Render(nil mount) error = %v, want E005", err)
	}
	if h.s.Pending() {
		t.Error("rejected input must not start a pass")
	}
}

func TestCommitWithoutFinishedPassPanics(t *testing.T) {
	s := New(dom.New(), sched.NewManual())
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.IsCode(err, "E003") {
			t.Errorf("recover() = %v, want E003", err)
		}
	}()
	s.commitRoot()
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:   "None",
		ActionAdd:    "Add",
		ActionUpdate: "Update",
		ActionRemove: "Remove",
		Action(9):    "Unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", a, got, want)
		}
	}
}
