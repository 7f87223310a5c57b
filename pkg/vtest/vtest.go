package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Harness drives a fiber.Session against an in-memory document.
type Harness struct {
	t        testing.TB
	Doc      *dom.Document
	Sched    *sched.Manual
	Session  *fiber.Session
	renderer *render.Renderer
	commits  []fiber.CommitReport
}

// New creates a harness. Session options are passed through.
func New(t testing.TB, opts ...fiber.Option) *Harness {
	h := &Harness{
		t:        t,
		Doc:      dom.New(),
		Sched:    sched.NewManual(),
		renderer: render.NewRenderer(render.RendererConfig{}),
	}
	h.Session = fiber.New(h.Doc, h.Sched, opts...)
	h.Session.OnCommit(func(r fiber.CommitReport) {
		h.commits = append(h.commits, r)
	})
	return h
}

// Render creates a harness, renders root into its document and flushes.
func Render(t testing.TB, root *vdom.Node, opts ...fiber.Option) *Harness {
	t.Helper()
	h := New(t, opts...)
	h.Mount(root)
	h.Flush()
	return h
}

// Mount starts a render pass for root without running it.
func (h *Harness) Mount(root *vdom.Node) {
	h.t.Helper()
	if err := h.Session.Render(root, h.Doc.Root); err != nil {
		h.t.Fatalf("Render() error = %v", err)
	}
}

// Flush runs queued slices until the scheduler is empty.
func (h *Harness) Flush() {
	h.t.Helper()
	if err := h.Sched.Flush(); err != nil {
		h.t.Fatalf("Flush() error = %v", err)
	}
}

// Idle runs one idle slice with a budget of steps units of work. A
// non-positive steps is unlimited. It returns false if none was queued.
func (h *Harness) Idle(steps int) bool {
	return h.Sched.Idle(steps)
}

// Commit runs one queued commit slice. It returns false if none was
// queued.
func (h *Harness) Commit() bool {
	return h.Sched.Commit()
}

// Commits returns the reports of every commit so far.
func (h *Harness) Commits() []fiber.CommitReport {
	return h.commits
}

// LastCommit returns the most recent commit report.
func (h *Harness) LastCommit() fiber.CommitReport {
	h.t.Helper()
	if len(h.commits) == 0 {
		h.t.Fatal("no commit happened")
	}
	return h.commits[len(h.commits)-1]
}

// Err returns the error of the most recently aborted pass.
func (h *Harness) Err() error {
	return h.Session.Err()
}

// HTML returns the rendered children of the mount element.
func (h *Harness) HTML() string {
	h.t.Helper()
	html, err := h.renderer.RenderChildren(h.Doc.Root)
	if err != nil {
		h.t.Fatalf("render: %v", err)
	}
	return html
}

// Get returns the element whose id property is id.
func (h *Harness) Get(id string) *dom.Element {
	h.t.Helper()
	e := h.Doc.Root.Find(func(e *dom.Element) bool { return e.Prop("id") == id })
	if e == nil {
		h.t.Fatalf("no element with id %q in:\n%s", id, truncate(h.HTML(), 500))
	}
	return e
}

// FindText returns the first element with the given tag whose text
// content is text, or nil.
func (h *Harness) FindText(tag, text string) *dom.Element {
	return h.Doc.Root.Find(func(e *dom.Element) bool {
		return e.Tag == tag && e.TextContent() == text
	})
}

// All returns every element with the given tag in document order.
func (h *Harness) All(tag string) []*dom.Element {
	return h.Doc.Root.FindAll(func(e *dom.Element) bool { return e.Tag == tag })
}

// Fire dispatches an event of type typ at e and flushes.
func (h *Harness) Fire(e *dom.Element, typ, value string) int {
	h.t.Helper()
	called := h.Doc.Dispatch(e, &vdom.Event{Type: typ, Value: value})
	h.Flush()
	return called
}

// Click fires a click at the element with the given id.
func (h *Harness) Click(id string) {
	h.t.Helper()
	h.Fire(h.Get(id), "click", "")
}

// Change fires a change event carrying value at the element with the
// given id.
func (h *Harness) Change(id, value string) {
	h.t.Helper()
	h.Fire(h.Get(id), "change", value)
}

// Submit fires a submit event at the element with the given id.
func (h *Harness) Submit(id string) {
	h.t.Helper()
	h.Fire(h.Get(id), "submit", "")
}

// ExpectContains asserts that the rendered output contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the rendered output contains a tag.
func (h *Harness) ExpectElement(tag string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, "<"+tag) {
		h.t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the rendered output contains an attribute
// value.
func (h *Harness) ExpectAttribute(attr, value string) {
	h.t.Helper()
	html := h.HTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		h.t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
