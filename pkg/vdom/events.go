package vdom

import "strings"

// On binds handler to the named event ("click" binds "onclick").
// The handler may be a *Listener, a func(*Event) or a func().
func On(name string, handler any) Attr {
	return attr("on"+name, toListener(handler))
}

// IsEventHandler returns true if the key is an event handler (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName returns the event type for a handler key: "onClick" -> "click".
func EventName(key string) string {
	if !IsEventHandler(key) {
		return ""
	}
	return strings.ToLower(key[2:])
}

// Mouse events

// OnClick handles click events.
func OnClick(handler any) Attr { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) Attr { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler any) Attr { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler any) Attr { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) Attr { return On("keydown", handler) }

// OnKeyUp handles keyup events.
func OnKeyUp(handler any) Attr { return On("keyup", handler) }

// Form events

// OnInput handles input events (fired when value changes).
func OnInput(handler any) Attr { return On("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) Attr { return On("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) Attr { return On("submit", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) Attr { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) Attr { return On("blur", handler) }
