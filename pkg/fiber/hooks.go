package fiber

import (
	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Scope is the vdom.Context handed to a component while the work loop
// invokes it. It carries the hook cursor for that invocation.
type Scope struct {
	fiber   *Fiber
	session *Session
	index   int
	active  bool
}

// Children returns the children declared on the component's node.
func (sc *Scope) Children() []*vdom.Node {
	return sc.fiber.children
}

// Props returns the component's properties.
func (sc *Scope) Props() vdom.Props {
	return sc.fiber.Props
}

// cell is the persistent state of one UseState call site. It outlives
// the fibers that read it: the queue only shrinks when a render that
// consumed it commits.
type cell struct {
	base  any
	queue []func(any) any
}

// hook is a fiber's view of a cell for one render.
type hook struct {
	cell    *cell
	value   any
	applied int
}

// settle folds the actions this render consumed into the cell.
func (h *hook) settle() {
	h.cell.base = h.value
	h.cell.queue = h.cell.queue[h.applied:]
	h.applied = 0
}

// Setter schedules updates to one state cell.
type Setter[T any] struct {
	session *Session
	cell    *cell
}

// Set enqueues a replacement value.
func (st Setter[T]) Set(v T) {
	st.dispatch(func(any) any { return v })
}

// Update enqueues fn, applied to the value left by earlier actions.
func (st Setter[T]) Update(fn func(T) T) {
	st.dispatch(func(prev any) any { return fn(as[T](prev)) })
}

func (st Setter[T]) dispatch(action func(any) any) {
	if st.cell == nil {
		return
	}
	st.cell.queue = append(st.cell.queue, action)
	st.session.requestUpdate()
}

// UseState returns the value of the component's next state cell and its
// setter. Cells are matched by call order, so UseState must be called the
// same number of times, in the same order, on every render.
//
// UseState panics with E001 when ctx is not the context of a component
// the work loop is invoking right now.
func UseState[T any](ctx vdom.Context, initial T) (T, Setter[T]) {
	return useState(scopeOf(ctx), func() T { return initial })
}

// UseStateFunc is UseState with an initializer that runs only when the cell
// is created.
func UseStateFunc[T any](ctx vdom.Context, init func() T) (T, Setter[T]) {
	return useState(scopeOf(ctx), init)
}

func useState[T any](sc *Scope, init func() T) (T, Setter[T]) {
	f := sc.fiber
	idx := sc.index
	sc.index++

	var prior *hook
	if f.Alternate != nil && idx < len(f.Alternate.hooks) {
		prior = f.Alternate.hooks[idx]
	}

	h := &hook{}
	if prior != nil {
		h.cell = prior.cell
		v := h.cell.base
		for _, action := range h.cell.queue {
			v = action(v)
		}
		h.value = v
		h.applied = len(h.cell.queue)
	} else {
		h.cell = &cell{base: init()}
		h.value = h.cell.base
	}
	f.hooks = append(f.hooks, h)

	return as[T](h.value), Setter[T]{session: sc.session, cell: h.cell}
}

func scopeOf(ctx vdom.Context) *Scope {
	sc, ok := ctx.(*Scope)
	if !ok || sc == nil || !sc.active {
		panic(errors.New("E001").
			WithSuggestion("Call UseState at the top level of a component, with the context it was given."))
	}
	return sc
}

// as converts a stored value to T, mapping nil to T's zero value.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
