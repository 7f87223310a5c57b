package vdom

import (
	"reflect"
	"runtime"
	"strings"
)

// TextTag is the reserved primitive kind of text nodes.
const TextTag = "#text"

// NodeValue is the property holding a text node's content.
const NodeValue = "nodeValue"

// Component renders a subtree from its properties. The Context is valid
// only for the duration of the call.
type Component func(ctx Context, props Props) *Node

// Context is handed to a component while the engine invokes it.
type Context interface {
	// Children returns the children declared on the component's node.
	Children() []*Node
}

// Kind is the node type discriminator: either a primitive tag or a component.
type Kind struct {
	tag  string
	comp Component
	id   uintptr
}

// Tag returns the primitive kind named name.
func Tag(name string) Kind {
	return Kind{tag: name}
}

// Comp returns the component kind for c.
// Components are matched by code pointer. A call site yields the same kind
// on every render, but closures from one literal may differ per call site
// once the compiler inlines the function that returns them.
func Comp(c Component) Kind {
	if c == nil {
		return Kind{}
	}
	return Kind{comp: c, id: reflect.ValueOf(c).Pointer()}
}

// Tag returns the primitive tag, or "" for component kinds.
func (k Kind) Tag() string {
	return k.tag
}

// Component returns the component function, or nil for primitive kinds.
func (k Kind) Component() Component {
	return k.comp
}

// IsComponent returns true if k is a component kind.
func (k Kind) IsComponent() bool {
	return k.comp != nil
}

// IsText returns true if k is the text sentinel.
func (k Kind) IsText() bool {
	return k.comp == nil && k.tag == TextTag
}

// IsZero returns true if k names neither a tag nor a component.
func (k Kind) IsZero() bool {
	return k.comp == nil && k.tag == ""
}

// Equal reports whether k and o describe the same kind.
func (k Kind) Equal(o Kind) bool {
	if k.comp != nil || o.comp != nil {
		return k.comp != nil && o.comp != nil && k.id == o.id
	}
	return k.tag == o.tag
}

// String returns the tag, or the component's function name.
func (k Kind) String() string {
	if k.comp != nil {
		if fn := runtime.FuncForPC(k.id); fn != nil {
			name := fn.Name()
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			return name
		}
		return "component"
	}
	if k.tag == "" {
		return "<none>"
	}
	return k.tag
}

// Node is a declarative description of one tree position.
type Node struct {
	Kind     Kind    // Tag or component
	Props    Props   // Attributes, styles and event handlers
	Children []*Node // Child nodes, matched by position
}

// Props holds attributes and event handlers.
type Props map[string]any

// Text returns the content of a text node.
func (n *Node) Text() string {
	if n == nil || !n.Kind.IsText() {
		return ""
	}
	s, _ := n.Props[NodeValue].(string)
	return s
}

// IsInteractive returns true if this node has event handlers.
func (n *Node) IsInteractive() bool {
	if n == nil || n.Kind.IsComponent() {
		return false
	}
	for key := range n.Props {
		if IsEventHandler(key) {
			return true
		}
	}
	return false
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Event is delivered to listeners by a host.
type Event struct {
	Type   string         // "click", "input", etc.
	Target any            // Host node the event was dispatched at
	Value  string         // Input value, if any
	Data   map[string]any // Host-specific payload

	stopped bool
}

// StopPropagation prevents the event from bubbling further.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener is an event handler stored in Props. Listeners compare by
// identity: a fresh Listener is a changed handler.
type Listener struct {
	fn func(*Event)
}

// Listen wraps fn in a Listener.
func Listen(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// Handle invokes the listener.
func (l *Listener) Handle(e *Event) {
	if l == nil || l.fn == nil {
		return
	}
	l.fn(e)
}

// toListener converts the handler shapes accepted by the event helpers.
func toListener(handler any) *Listener {
	switch h := handler.(type) {
	case *Listener:
		return h
	case func(*Event):
		return Listen(h)
	case func():
		return Listen(func(*Event) { h() })
	default:
		return nil
	}
}
