package fiber

import (
	"github.com/vango-dev/loom/pkg/host"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Action is the pending change recorded on a fiber by the reconciler.
type Action uint8

const (
	ActionNone   Action = iota // Nothing to apply
	ActionAdd                  // Create and insert the host node
	ActionUpdate               // Patch properties of the reused host node
	ActionRemove               // Tear down the host subtree
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionAdd:
		return "Add"
	case ActionUpdate:
		return "Update"
	case ActionRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// rootKind marks the fiber standing for the mount node.
var rootKind = vdom.Tag("#root")

// Fiber is the reconciliation record of one tree position.
type Fiber struct {
	Kind  vdom.Kind
	Props vdom.Props

	// Node is the host node. Component fibers never have one.
	Node host.Node

	Parent  *Fiber
	Child   *Fiber
	Sibling *Fiber

	// Alternate is the fiber at the same position in the committed tree.
	// It is cleared once the fiber's tree commits.
	Alternate *Fiber

	Action Action

	children []*vdom.Node // declared children
	hooks    []*hook
}

// IsRoot reports whether f stands for a mount node.
func (f *Fiber) IsRoot() bool {
	return f.Parent == nil && f.Kind.Equal(rootKind)
}

// Children returns the fiber's child chain as a slice.
func (f *Fiber) Children() []*Fiber {
	var out []*Fiber
	for c := f.Child; c != nil; c = c.Sibling {
		out = append(out, c)
	}
	return out
}

// Walk visits f and its descendants in preorder. Returning false from fn
// skips the fiber's children.
func (f *Fiber) Walk(fn func(*Fiber) bool) {
	if f == nil {
		return
	}
	stack := []*Fiber{f}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		stack = pushChildren(stack, n)
	}
}

// pushChildren pushes n's children so that the first child pops first.
func pushChildren(stack []*Fiber, n *Fiber) []*Fiber {
	mark := len(stack)
	for c := n.Child; c != nil; c = c.Sibling {
		stack = append(stack, c)
	}
	for i, j := mark, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}
