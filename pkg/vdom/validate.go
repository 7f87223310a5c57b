package vdom

import (
	"github.com/vango-dev/loom/internal/errors"
)

// Validate checks that n can be handed to the reconciler. It inspects n and
// its direct children only; descendants are validated when their parent is
// reconciled.
func Validate(n *Node) error {
	if n == nil {
		return errors.New("E002").WithDetail("node is nil")
	}
	if n.Kind.IsZero() {
		return errors.New("E002").WithDetail("node has no kind")
	}
	if n.Kind.IsText() {
		if len(n.Children) > 0 {
			return errors.New("E002").WithDetail("text node has children")
		}
		if v, ok := n.Props[NodeValue]; ok {
			if _, isString := v.(string); !isString {
				return errors.New("E002").WithDetailf("text node value is %T, want string", v)
			}
		}
	}
	for key, v := range n.Props {
		if !IsEventHandler(key) || v == nil {
			continue
		}
		if l, ok := v.(*Listener); !ok || l == nil {
			return errors.New("E002").
				WithDetailf("<%s> handler %q is %T, want *vdom.Listener", n.Kind, key, v).
				WithSuggestion("Wrap handlers with vdom.Listen or use the On* helpers")
		}
	}
	for i, c := range n.Children {
		if c == nil {
			return errors.New("E002").WithDetailf("child %d of <%s> is nil", i, n.Kind)
		}
	}
	return nil
}
