package fiber

import "github.com/vango-dev/loom/pkg/vdom"

// reconcileChildren builds wip's child chain from elements, matching them
// by position against the committed children of wip's alternate.
//
// A matching kind yields an UPDATE fiber that reuses the old host node.
// Otherwise the element yields an ADD fiber and the old fiber is tagged
// REMOVE and queued for teardown.
func (s *Session) reconcileChildren(wip *Fiber, elements []*vdom.Node) {
	var old *Fiber
	if wip.Alternate != nil {
		old = wip.Alternate.Child
	}

	wip.Child = nil
	var prev *Fiber
	for i := 0; i < len(elements) || old != nil; i++ {
		var el *vdom.Node
		if i < len(elements) {
			el = elements[i]
		}

		var nf *Fiber
		same := old != nil && el != nil && old.Kind.Equal(el.Kind)

		if same {
			nf = &Fiber{
				Kind:      el.Kind,
				Props:     el.Props,
				Node:      old.Node,
				Parent:    wip,
				Alternate: old,
				Action:    ActionUpdate,
				children:  el.Children,
			}
		}
		if el != nil && !same {
			nf = &Fiber{
				Kind:     el.Kind,
				Props:    el.Props,
				Parent:   wip,
				Action:   ActionAdd,
				children: el.Children,
			}
		}
		if old != nil && !same {
			s.priorTags = append(s.priorTags, old.Action)
			old.Action = ActionRemove
			s.deletions = append(s.deletions, old)
		}

		if old != nil {
			old = old.Sibling
		}
		if nf == nil {
			continue
		}
		if prev == nil {
			wip.Child = nf
		} else {
			prev.Sibling = nf
		}
		prev = nf
	}
}
