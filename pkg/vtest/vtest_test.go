package vtest_test

import (
	"testing"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
	"github.com/vango-dev/loom/pkg/vtest"
)

func greeter(ctx vdom.Context, props vdom.Props) *vdom.Node {
	name, setName := fiber.UseState(ctx, "world")
	return vdom.Div(
		vdom.Class("greeting"),
		vdom.P(vdom.Textf("Hello, %s", name)),
		vdom.Input(vdom.ID("name"), vdom.OnChange(func(e *vdom.Event) { setName.Set(e.Value) })),
		vdom.Button(vdom.ID("shout"), vdom.OnClick(func() { setName.Update(func(s string) string { return s + "!" }) })),
	)
}

func TestRender(t *testing.T) {
	h := vtest.Render(t, vdom.C(greeter))

	h.ExpectContains("Hello, world")
	h.ExpectElement("p")
	h.ExpectAttribute("class", "greeting")
	h.ExpectNotContains("Goodbye")

	if got := len(h.Commits()); got != 1 {
		t.Errorf("commits = %d, want 1", got)
	}
	if h.Err() != nil {
		t.Errorf("Err() = %v", h.Err())
	}
}

func TestEvents(t *testing.T) {
	h := vtest.Render(t, vdom.C(greeter))

	h.Change("name", "loom")
	h.ExpectContains("Hello, loom")

	h.Click("shout")
	h.ExpectContains("Hello, loom!")

	if r := h.LastCommit(); r.Added != 0 || r.Updated == 0 {
		t.Errorf("LastCommit() = %+v, want updates only", r)
	}
}

func TestFindText(t *testing.T) {
	h := vtest.Render(t, vdom.C(greeter))

	if e := h.FindText("p", "Hello, world"); e == nil {
		t.Error("FindText(p) = nil")
	}
	if e := h.FindText("p", "nope"); e != nil {
		t.Errorf("FindText(nope) = %v, want nil", e)
	}
	if got := len(h.All("input")); got != 1 {
		t.Errorf("All(input) = %d, want 1", got)
	}
}

func TestStepping(t *testing.T) {
	h := vtest.New(t)
	h.Mount(vdom.C(greeter))

	if h.Commit() {
		t.Fatal("commit queued before any work ran")
	}
	if !h.Idle(1) {
		t.Fatal("no idle slice queued")
	}
	if h.HTML() != "" {
		t.Errorf("HTML() = %q before commit, want empty", h.HTML())
	}

	h.Flush()
	h.ExpectContains("Hello, world")
	if h.Idle(0) || h.Commit() {
		t.Error("scheduler should be empty after Flush")
	}
}
