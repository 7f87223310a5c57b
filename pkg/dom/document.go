// Package dom is an in-memory render target.
//
// Document implements host.Host, host.Inserter and host.Releaser. Every
// primitive call is applied to a tree of Elements and recorded as an Op, so
// the same document serves tests and the mutation stream sent to browsers.
// A Document is not safe for concurrent use.
package dom

import (
	"fmt"

	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/host"
	"github.com/vango-dev/loom/pkg/vdom"
)

// RootID is the id of the mount element of every document.
const RootID int64 = 1

// Document is an in-memory host tree.
type Document struct {
	Root *Element

	nextID    int64
	nodes     map[int64]*Element
	ops       []Op
	observers []func(Op)
}

// New creates an empty document with a mount element.
func New() *Document {
	root := &Element{ID: RootID, Tag: "#root", Props: map[string]any{}}
	return &Document{
		Root:   root,
		nextID: RootID,
		nodes:  map[int64]*Element{RootID: root},
	}
}

var (
	_ host.Host     = (*Document)(nil)
	_ host.Inserter = (*Document)(nil)
	_ host.Releaser = (*Document)(nil)
)

// ByID returns the live element with the given id.
func (d *Document) ByID(id int64) (*Element, bool) {
	e, ok := d.nodes[id]
	return e, ok
}

// Len returns the number of live elements, the root included.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Ops returns the ops recorded since the last ResetOps.
func (d *Document) Ops() []Op {
	out := make([]Op, len(d.ops))
	copy(out, d.ops)
	return out
}

// ResetOps clears the op log.
func (d *Document) ResetOps() {
	d.ops = d.ops[:0]
}

// TakeOps returns the recorded ops and clears the log.
func (d *Document) TakeOps() []Op {
	ops := d.Ops()
	d.ResetOps()
	return ops
}

// Observe registers fn to see every op as it is applied.
func (d *Document) Observe(fn func(Op)) {
	d.observers = append(d.observers, fn)
}

func (d *Document) record(op Op) {
	d.ops = append(d.ops, op)
	for _, fn := range d.observers {
		fn(op)
	}
}

func (d *Document) el(n host.Node) *Element {
	e, ok := n.(*Element)
	if !ok || e == nil {
		panic(fmt.Sprintf("dom: node %T is not a *dom.Element", n))
	}
	return e
}

// CreateNode creates a detached element.
func (d *Document) CreateNode(kind string) host.Node {
	d.nextID++
	e := &Element{
		ID:    d.nextID,
		Tag:   kind,
		Props: map[string]any{},
	}
	d.nodes[e.ID] = e
	d.record(Op{Kind: OpCreate, Node: e.ID, Tag: kind})
	return e
}

// SetProperty writes a property.
func (d *Document) SetProperty(n host.Node, key string, value any) {
	e := d.el(n)
	e.Props[key] = value
	d.record(Op{Kind: OpSetProp, Node: e.ID, Key: key, Value: value})
}

// ClearProperty removes a property. Clearing "style" drops every
// style declaration.
func (d *Document) ClearProperty(n host.Node, key string) {
	e := d.el(n)
	delete(e.Props, key)
	if key == "style" {
		e.Style = nil
	}
	d.record(Op{Kind: OpClearProp, Node: e.ID, Key: key})
}

// MergeStyle merges declarations; empty values remove a declaration.
func (d *Document) MergeStyle(n host.Node, decls map[string]string) {
	e := d.el(n)
	if e.Style == nil {
		e.Style = map[string]string{}
	}
	copied := make(map[string]string, len(decls))
	for k, v := range decls {
		copied[k] = v
		if v == "" {
			delete(e.Style, k)
		} else {
			e.Style[k] = v
		}
	}
	d.record(Op{Kind: OpMergeStyle, Node: e.ID, Style: copied})
}

// AddListener attaches a listener.
func (d *Document) AddListener(n host.Node, event string, l *vdom.Listener) {
	e := d.el(n)
	if e.Listeners == nil {
		e.Listeners = map[string][]*vdom.Listener{}
	}
	e.Listeners[event] = append(e.Listeners[event], l)
	d.record(Op{Kind: OpAddListener, Node: e.ID, Event: event})
}

// RemoveListener detaches a listener.
func (d *Document) RemoveListener(n host.Node, event string, l *vdom.Listener) {
	e := d.el(n)
	ls := e.Listeners[event]
	for i, x := range ls {
		if x == l {
			e.Listeners[event] = append(ls[:i], ls[i+1:]...)
			break
		}
	}
	if len(e.Listeners[event]) == 0 {
		delete(e.Listeners, event)
	}
	d.record(Op{Kind: OpRemoveListener, Node: e.ID, Event: event})
}

// AppendChild moves child to the end of parent.
func (d *Document) AppendChild(parent, child host.Node) {
	p, c := d.el(parent), d.el(child)
	c.detach()
	c.Parent = p
	p.Children = append(p.Children, c)
	d.record(Op{Kind: OpAppend, Node: c.ID, Parent: p.ID})
}

// InsertBefore moves child before ref under parent. A ref that is not a
// child of parent appends.
func (d *Document) InsertBefore(parent, child, ref host.Node) {
	p, c, r := d.el(parent), d.el(child), d.el(ref)
	c.detach()
	c.Parent = p
	i := p.indexOf(r)
	if i < 0 {
		p.Children = append(p.Children, c)
		d.record(Op{Kind: OpAppend, Node: c.ID, Parent: p.ID})
		return
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = c
	d.record(Op{Kind: OpInsertBefore, Node: c.ID, Parent: p.ID, Ref: r.ID})
}

// RemoveNode detaches n and forgets its subtree.
func (d *Document) RemoveNode(n host.Node) {
	e := d.el(n)
	e.detach()
	d.forget(e)
	d.record(Op{Kind: OpRemove, Node: e.ID})
}

// ReleaseNode forgets a node that was created but never committed.
func (d *Document) ReleaseNode(n host.Node) {
	e := d.el(n)
	if _, ok := d.nodes[e.ID]; !ok {
		return
	}
	e.detach()
	d.forget(e)
	d.record(Op{Kind: OpRelease, Node: e.ID})
}

func (d *Document) forget(e *Element) {
	e.walk(func(n *Element) {
		delete(d.nodes, n.ID)
	})
}

// Dispatch delivers ev to target and its ancestors until a listener stops
// propagation. It returns the number of listeners invoked.
func (d *Document) Dispatch(target *Element, ev *vdom.Event) int {
	ev.Target = target
	called := 0
	for e := target; e != nil; e = e.Parent {
		// Listeners may detach themselves; iterate over a copy.
		ls := append([]*vdom.Listener(nil), e.Listeners[ev.Type]...)
		for _, l := range ls {
			l.Handle(ev)
			called++
		}
		if ev.Stopped() {
			break
		}
	}
	return called
}

// DispatchID delivers an event to the live element with the given id.
func (d *Document) DispatchID(id int64, ev *vdom.Event) (int, error) {
	e, ok := d.nodes[id]
	if !ok {
		return 0, errors.New("E161").WithDetailf("no live node %d", id)
	}
	return d.Dispatch(e, ev), nil
}
