// Package vtest provides testing helpers for loom components.
//
// A Harness wires an in-memory dom.Document, a deterministic
// sched.Manual and a fiber.Session together, so a test can render a
// component, fire events at it and assert on the committed HTML without
// any goroutines or timers.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Render(t, vdom.C(Counter))
//	    h.Click("increment")
//	    h.ExpectContains("Clicked 1 times")
//	}
//
// # Stepping
//
// Render and the event helpers flush the scheduler, running every queued
// idle and commit slice. Tests that need to observe a pass in progress
// use Mount instead and step with Idle and Commit:
//
//	h := vtest.New(t)
//	h.Mount(vdom.C(App))
//	h.Idle(3)      // three units of work
//	h.Commit()     // nothing queued yet, returns false
//	h.Flush()
//
// # Render Assertions
//
// Assert on the serialized mount element:
//
//	h.ExpectContains("Welcome")
//	h.ExpectNotContains("Error")
//	h.ExpectElement("button")
//	h.ExpectAttribute("class", "btn-primary")
package vtest
