// Package vdom provides the declarative node model for Loom.
//
// A Node describes one position of a UI tree: its Kind, its properties and
// its ordered children. Nodes are plain values that are rebuilt on every
// render call; the fiber engine compares them against what it rendered
// previously and applies the difference to a host.
//
// # Kinds
//
// Kind is a tagged variant. A primitive kind names a host primitive
// ("div", "li", or the reserved TextTag for text); a component kind holds a
// Component function that is invoked to produce the node's subtree.
//
//	vdom.Tag("ul")
//	vdom.Comp(TodoList)
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("list"),
//	    Li(Text("A")),
//	    Li(Text("B")),
//	    OnClick(handler),
//	)
//
// # Property Diffing
//
// DiffProps compares two property sets and returns the ordered PropChange
// list a committer must apply: listener detaches, property clears,
// listener attaches, then property writes and style merges.
package vdom
