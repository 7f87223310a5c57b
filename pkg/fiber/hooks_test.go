package fiber

import (
	"testing"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/vdom"
)

func TestFunctionalUpdatesApplyInOrder(t *testing.T) {
	var setCount Setter[int]
	var seen int
	counter := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		count, set := UseState(ctx, 0)
		setCount, seen = set, count
		return vdom.Span(vdom.Textf("%d", count))
	}

	h := newHarness(t)
	h.render(vdom.C(counter))
	h.flush()

	inc := func(c int) int { return c + 1 }
	setCount.Update(inc)
	setCount.Update(inc)
	h.flush()

	if seen != 2 {
		t.Errorf("count = %d, want 2", seen)
	}
	if got := h.doc.Root.TextContent(); got != "2" {
		t.Errorf("TextContent() = %q, want 2", got)
	}

	setCount.Set(10)
	setCount.Update(inc)
	h.flush()
	if seen != 11 {
		t.Errorf("count = %d, want 11", seen)
	}
}

func TestStatePersistsPerPosition(t *testing.T) {
	var setName Setter[string]
	var gotName string
	var gotAge int
	profile := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		name, set := UseState(ctx, "ada")
		age, _ := UseState(ctx, 36)
		setName, gotName, gotAge = set, name, age
		return vdom.P(name)
	}

	h := newHarness(t)
	h.render(vdom.Div(vdom.C(profile)))
	h.flush()

	setName.Set("grace")
	h.flush()
	if gotName != "grace" || gotAge != 36 {
		t.Errorf("state = %q, %d, want grace, 36", gotName, gotAge)
	}
}

func TestLazyInitializerRunsOnce(t *testing.T) {
	calls := 0
	var set Setter[[]string]
	comp := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		items, s := UseStateFunc(ctx, func() []string {
			calls++
			return []string{"a"}
		})
		set = s
		return vdom.P(vdom.Textf("%d", len(items)))
	}

	h := newHarness(t)
	h.render(vdom.C(comp))
	h.flush()
	set.Update(func(items []string) []string { return append(items, "b") })
	h.flush()

	if calls != 1 {
		t.Errorf("initializer calls = %d, want 1", calls)
	}
	if got := h.doc.Root.TextContent(); got != "2" {
		t.Errorf("TextContent() = %q, want 2", got)
	}
}

func TestSetterBeforeFirstCommit(t *testing.T) {
	var set Setter[int]
	var seen int
	comp := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		v, s := UseState(ctx, 0)
		set, seen = s, v
		return vdom.P(vdom.Textf("%d", v))
	}

	h := newHarness(t)
	h.render(vdom.C(comp))
	h.work()
	set.Set(5)
	if h.s.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1 before the first commit", h.s.Generation())
	}

	h.flush()
	if seen != 5 {
		t.Errorf("value = %d, want 5 after the follow-up pass", seen)
	}
	if len(h.reports) != 2 {
		t.Errorf("commits = %d, want 2", len(h.reports))
	}
}

func TestSetterDuringRenderRunsAnotherPass(t *testing.T) {
	comp := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		v, set := UseState(ctx, 0)
		if v < 3 {
			set.Set(v + 1)
		}
		return vdom.P(vdom.Textf("%d", v))
	}

	h := newHarness(t)
	h.render(vdom.C(comp))
	h.flush()

	if got := h.doc.Root.TextContent(); got != "3" {
		t.Errorf("TextContent() = %q, want 3", got)
	}
	if len(h.reports) != 4 {
		t.Errorf("commits = %d, want 4", len(h.reports))
	}
}

func TestUseStateOutsideComponentPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.IsCode(err, "E001") {
			t.Errorf("recover() = %v, want E001", r)
		}
	}()
	UseState[int](nil, 0)
}

func TestUseStateWithStaleContextAbortsPass(t *testing.T) {
	var stale vdom.Context
	var rerender Setter[int]
	comp := func(ctx vdom.Context, props vdom.Props) *vdom.Node {
		n, set := UseState(ctx, 0)
		rerender = set
		if stale == nil {
			stale = ctx
		} else if n > 0 {
			UseState(stale, 0)
		}
		return vdom.P("x")
	}

	var handled error
	h := newHarness(t, WithErrorHandler(func(err error) { handled = err }))
	h.render(vdom.C(comp))
	h.flush()

	rerender.Set(1)
	h.flush()

	if !errors.IsCode(h.s.Err(), "E001") {
		t.Errorf("Err() = %v, want E001", h.s.Err())
	}
	if handled != h.s.Err() {
		t.Error("error handler should receive the aborting error")
	}
	if got := h.doc.Root.TextContent(); got != "x" {
		t.Errorf("committed tree should be untouched, got %q", got)
	}
}

func TestZeroSetterIsInert(t *testing.T) {
	var s Setter[int]
	s.Set(1)
	s.Update(func(int) int { return 2 })
}
