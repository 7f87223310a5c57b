// Package demo holds the components served by the loom CLI: the todo
// list and a counter.
package demo

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
)

// Todo is one entry of the todo list.
type Todo struct {
	ID        int
	Text      string
	Completed bool
}

// InitialTodos is the list a fresh TodoList starts with.
func InitialTodos() []Todo {
	return []Todo{
		{ID: 1, Text: "Buy milk"},
		{ID: 2, Text: "Walk the dog", Completed: true},
		{ID: 3, Text: "Learn Go"},
	}
}

// TodoList renders an editable todo list. Items are addressed by
// position, so each row carries its todo id in a data attribute.
func TodoList(ctx vdom.Context, props vdom.Props) *vdom.Node {
	todos, setTodos := fiber.UseStateFunc(ctx, InitialTodos)
	draft, setDraft := fiber.UseState(ctx, "")
	nextID, setNextID := fiber.UseState(ctx, 4)

	submit := func(e *vdom.Event) {
		text := strings.TrimSpace(draft)
		if text == "" {
			return
		}
		id := nextID
		setTodos.Update(func(prev []Todo) []Todo {
			return append(clone(prev), Todo{ID: id, Text: text})
		})
		setDraft.Set("")
		setNextID.Set(id + 1)
	}

	toggle := func(id int) func() {
		return func() {
			setTodos.Update(func(prev []Todo) []Todo {
				next := clone(prev)
				for i := range next {
					if next[i].ID == id {
						next[i].Completed = !next[i].Completed
					}
				}
				return next
			})
		}
	}

	remove := func(id int) func() {
		return func() {
			setTodos.Update(func(prev []Todo) []Todo {
				next := make([]Todo, 0, len(prev))
				for _, t := range prev {
					if t.ID != id {
						next = append(next, t)
					}
				}
				return next
			})
		}
	}

	return vdom.Section(
		vdom.H1(vdom.Class("title"), "Todo List"),
		vdom.Form(
			vdom.ID("todo-form"),
			vdom.OnSubmit(submit),
			vdom.Input(
				vdom.ID("todo-input"),
				vdom.Type("text"),
				vdom.Value(draft),
				vdom.Placeholder("Add new todo"),
				vdom.OnChange(func(e *vdom.Event) { setDraft.Set(e.Value) }),
			),
			vdom.Button(vdom.Type("submit"), "Add"),
		),
		vdom.Ul(
			vdom.Class("list"),
			vdom.Range(todos, func(t Todo, _ int) *vdom.Node {
				decoration := "none"
				if t.Completed {
					decoration = "line-through"
				}
				return vdom.Li(
					vdom.Class("todo-item"),
					vdom.Data("todo", strconv.Itoa(t.ID)),
					vdom.Input(
						vdom.Type("checkbox"),
						vdom.Checked(t.Completed),
						vdom.OnChange(toggle(t.ID)),
					),
					vdom.Span(
						vdom.Style(map[string]string{"text-decoration": decoration}),
						t.Text,
					),
					vdom.Button(vdom.Class("delete-button"), vdom.OnClick(remove(t.ID)), "Delete"),
				)
			}),
		),
	)
}

// Counter renders a button that counts its clicks. The optional "start"
// prop sets the initial count.
func Counter(ctx vdom.Context, props vdom.Props) *vdom.Node {
	start, _ := props["start"].(int)
	count, setCount := fiber.UseState(ctx, start)
	return vdom.Div(
		vdom.Class("counter"),
		vdom.Button(
			vdom.ID("increment"),
			vdom.OnClick(func() { setCount.Update(func(c int) int { return c + 1 }) }),
			vdom.Textf("Clicked %d times", count),
		),
		vdom.If(count > 0, vdom.Button(
			vdom.ID("reset"),
			vdom.OnClick(func() { setCount.Set(0) }),
			"Reset",
		)),
	)
}

var apps = map[string]vdom.Component{
	"todo":    TodoList,
	"counter": Counter,
}

// Lookup returns the demo component registered under name.
func Lookup(name string) (vdom.Component, bool) {
	c, ok := apps[name]
	return c, ok
}

// Names returns the registered demo names in sorted order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clone(todos []Todo) []Todo {
	return append([]Todo(nil), todos...)
}
