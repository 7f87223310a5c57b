// Package host defines the primitives a rendering target supplies to the
// reconciler.
//
// The reconciler never touches a concrete node type. It creates, patches and
// links nodes through a Host, so the same engine drives an in-memory
// document, a remote browser over a socket, or a test double.
package host

import (
	"reflect"

	"github.com/vango-dev/loom/pkg/vdom"
)

// Node is an opaque handle to a host node. Handles should be comparable
// (pointers, ids); handles of other types never compare equal in Same.
type Node any

// Same reports whether a and b are the same handle. Unlike ==, it does not
// panic on handles of uncomparable dynamic types.
func Same(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Host creates and mutates host nodes.
type Host interface {
	// CreateNode returns a new detached node of the given primitive kind.
	// The text kind is vdom.TextTag.
	CreateNode(kind string) Node

	// SetProperty writes a property on n.
	SetProperty(n Node, key string, value any)

	// ClearProperty resets a property that is no longer declared.
	ClearProperty(n Node, key string)

	// MergeStyle writes the given style declarations; an empty value
	// removes a declaration.
	MergeStyle(n Node, decls map[string]string)

	// AddListener attaches l for the event type.
	AddListener(n Node, event string, l *vdom.Listener)

	// RemoveListener detaches l for the event type.
	RemoveListener(n Node, event string, l *vdom.Listener)

	// AppendChild links child as the last child of parent.
	AppendChild(parent, child Node)

	// RemoveNode detaches n from its parent.
	RemoveNode(n Node)
}

// Inserter is implemented by hosts that can insert before a reference node.
// When available, nodes added between existing siblings land in position
// instead of at the end of the parent.
type Inserter interface {
	InsertBefore(parent, child, ref Node)
}

// Releaser is implemented by hosts that track created nodes and want to be
// told when a node was created for a pass that never committed.
type Releaser interface {
	ReleaseNode(n Node)
}

// Apply runs a property change list against n.
func Apply(h Host, n Node, changes []vdom.PropChange) {
	for _, c := range changes {
		switch c.Op {
		case vdom.PropDetach:
			h.RemoveListener(n, c.Event, c.Listener)
		case vdom.PropClear:
			h.ClearProperty(n, c.Key)
		case vdom.PropAttach:
			h.AddListener(n, c.Event, c.Listener)
		case vdom.PropSet:
			h.SetProperty(n, c.Key, c.Value)
		case vdom.PropMergeStyle:
			h.MergeStyle(n, c.Style)
		}
	}
}
