package dom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/vdom"
)

func TestDocumentTreeOps(t *testing.T) {
	d := New()
	ul := d.CreateNode("ul").(*Element)
	a := d.CreateNode("li").(*Element)
	c := d.CreateNode("li").(*Element)
	b := d.CreateNode("li").(*Element)

	d.AppendChild(d.Root, ul)
	d.AppendChild(ul, a)
	d.AppendChild(ul, c)
	d.InsertBefore(ul, b, c)

	got := []int64{}
	for _, e := range ul.Children {
		got = append(got, e.ID)
	}
	want := []int64{a.ID, b.ID, c.ID}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	d.RemoveNode(ul)
	if len(d.Root.Children) != 0 {
		t.Errorf("root children = %d, want 0", len(d.Root.Children))
	}
	if _, ok := d.ByID(b.ID); ok {
		t.Error("removed subtree should be forgotten")
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
}

func TestDocumentProperties(t *testing.T) {
	d := New()
	e := d.CreateNode("div").(*Element)

	d.SetProperty(e, "title", "a")
	d.MergeStyle(e, map[string]string{"color": "red", "margin": "0"})
	d.MergeStyle(e, map[string]string{"margin": ""})
	if e.Prop("title") != "a" {
		t.Errorf("title = %v, want a", e.Prop("title"))
	}
	if diff := cmp.Diff(map[string]string{"color": "red"}, e.Style); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}

	d.ClearProperty(e, "title")
	d.ClearProperty(e, "style")
	if _, ok := e.Props["title"]; ok {
		t.Error("title should be cleared")
	}
	if e.Style != nil {
		t.Errorf("style = %v, want nil", e.Style)
	}
}

func TestDocumentOpsLog(t *testing.T) {
	d := New()
	var seen []OpKind
	d.Observe(func(op Op) { seen = append(seen, op.Kind) })

	text := d.CreateNode(vdom.TextTag)
	d.SetProperty(text, vdom.NodeValue, "hi")
	d.AppendChild(d.Root, text)

	want := []OpKind{OpCreate, OpSetProp, OpAppend}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("observed ops mismatch (-want +got):\n%s", diff)
	}
	if len(d.TakeOps()) != 3 {
		t.Error("TakeOps() should return the three ops")
	}
	if len(d.Ops()) != 0 {
		t.Error("TakeOps() should clear the log")
	}
	if d.Root.TextContent() != "hi" {
		t.Errorf("TextContent() = %q, want hi", d.Root.TextContent())
	}
}

func TestDocumentRelease(t *testing.T) {
	d := New()
	n := d.CreateNode("p")
	d.ReleaseNode(n)
	d.ReleaseNode(n)

	ops := d.Ops()
	if len(ops) != 2 || ops[1].Kind != OpRelease {
		t.Errorf("ops = %+v, want create then a single release", ops)
	}
	if OpRelease.IsMutation() {
		t.Error("release should not count as a mutation")
	}
}

func TestDispatchBubbles(t *testing.T) {
	d := New()
	outer := d.CreateNode("div").(*Element)
	inner := d.CreateNode("button").(*Element)
	d.AppendChild(d.Root, outer)
	d.AppendChild(outer, inner)

	var order []string
	d.AddListener(outer, "click", vdom.Listen(func(e *vdom.Event) { order = append(order, "outer") }))
	d.AddListener(inner, "click", vdom.Listen(func(e *vdom.Event) { order = append(order, "inner") }))

	if n := d.Dispatch(inner, &vdom.Event{Type: "click"}); n != 2 {
		t.Errorf("Dispatch() = %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"inner", "outer"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	stop := vdom.Listen(func(e *vdom.Event) { e.StopPropagation() })
	d.AddListener(inner, "keydown", stop)
	d.AddListener(outer, "keydown", vdom.Listen(func(*vdom.Event) { t.Error("propagation should stop") }))
	d.Dispatch(inner, &vdom.Event{Type: "keydown"})

	d.RemoveListener(inner, "keydown", stop)
	if inner.ListenerCount("keydown") != 0 {
		t.Error("listener should be removed")
	}
}

func TestDispatchID(t *testing.T) {
	d := New()
	if _, err := d.DispatchID(99, &vdom.Event{Type: "click"}); !errors.IsCode(err, "E161") {
		t.Errorf("DispatchID() error = %v, want E161", err)
	}
}
