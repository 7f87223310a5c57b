package vdom

import (
	"reflect"
	"sort"
)

// DiffProps compares two property sets and returns the host operations
// that turn prev into next, in application order:
//
//  1. listeners removed or changed are detached
//  2. plain properties removed are cleared
//  3. listeners added or changed are attached
//  4. plain properties added or changed are written; a map-valued
//     "style" is merged field by field
//
// Identical property sets produce no operations. A fresh node is patched
// against a nil prev.
func DiffProps(prev, next Props) []PropChange {
	var changes []PropChange

	prevKeys := sortedKeys(prev)
	nextKeys := sortedKeys(next)

	for _, key := range prevKeys {
		if !IsEventHandler(key) {
			continue
		}
		nextVal, exists := next[key]
		if !exists || !propsEqual(prev[key], nextVal) {
			if l := asListener(prev[key]); l != nil {
				changes = append(changes, PropChange{Op: PropDetach, Key: key, Event: EventName(key), Listener: l})
			}
		}
	}

	for _, key := range prevKeys {
		if IsEventHandler(key) {
			continue
		}
		if _, exists := next[key]; !exists {
			changes = append(changes, PropChange{Op: PropClear, Key: key})
		}
	}

	for _, key := range nextKeys {
		if !IsEventHandler(key) {
			continue
		}
		prevVal, exists := prev[key]
		if !exists || !propsEqual(prevVal, next[key]) {
			if l := asListener(next[key]); l != nil {
				changes = append(changes, PropChange{Op: PropAttach, Key: key, Event: EventName(key), Listener: l})
			}
		}
	}

	for _, key := range nextKeys {
		if IsEventHandler(key) {
			continue
		}
		nextVal := next[key]
		prevVal, exists := prev[key]
		if exists && propsEqual(prevVal, nextVal) {
			continue
		}
		if key == "style" {
			if decls, ok := nextVal.(map[string]string); ok {
				var old map[string]string
				if exists {
					old, _ = prevVal.(map[string]string)
				}
				if merged := diffStyle(old, decls); len(merged) > 0 {
					changes = append(changes, PropChange{Op: PropMergeStyle, Key: key, Style: merged})
				}
				continue
			}
		}
		changes = append(changes, PropChange{Op: PropSet, Key: key, Value: nextVal})
	}

	return changes
}

// diffStyle returns the declarations to merge onto a live style that was
// last set from prev. Declarations dropped from next are reset to "".
func diffStyle(prev, next map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			out[k] = v
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			out[k] = ""
		}
	}
	return out
}

func asListener(v any) *Listener {
	l, _ := v.(*Listener)
	return l
}

func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case *Listener:
		bv, ok := b.(*Listener)
		return ok && av == bv
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}
