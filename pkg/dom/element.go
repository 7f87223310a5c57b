package dom

import (
	"strings"

	"github.com/vango-dev/loom/pkg/vdom"
)

// Element is a node of an in-memory document.
type Element struct {
	ID        int64
	Tag       string
	Props     map[string]any
	Style     map[string]string
	Listeners map[string][]*vdom.Listener
	Parent    *Element
	Children  []*Element
}

// IsText returns true for text nodes.
func (e *Element) IsText() bool {
	return e.Tag == vdom.TextTag
}

// NodeValue returns the content of a text node.
func (e *Element) NodeValue() string {
	s, _ := e.Props[vdom.NodeValue].(string)
	return s
}

// TextContent returns the concatenated text of e's subtree.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.NodeValue()
	}
	var sb strings.Builder
	for _, c := range e.Children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Prop returns the value of a property.
func (e *Element) Prop(key string) any {
	return e.Props[key]
}

// ListenerCount returns the number of listeners attached for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.Listeners[event])
}

// Find returns the first element in e's subtree, e included, for which
// match returns true.
func (e *Element) Find(match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in e's subtree matching match, in
// document order.
func (e *Element) FindAll(match func(*Element) bool) []*Element {
	var out []*Element
	e.walk(func(n *Element) {
		if match(n) {
			out = append(out, n)
		}
	})
	return out
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.walk(fn)
	}
}

func (e *Element) indexOf(child *Element) int {
	for i, c := range e.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (e *Element) detach() {
	if e.Parent == nil {
		return
	}
	p := e.Parent
	if i := p.indexOf(e); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	e.Parent = nil
}
