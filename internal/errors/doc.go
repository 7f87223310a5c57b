// Package errors provides structured, coded error values for Loom.
//
// Every error raised by the engine carries a short code that maps to a
// registered template:
//   - A category (hook, tree, commit, render, config, snapshot, protocol)
//   - A short message describing the error
//   - A longer explanation
//
// # Error Codes
//
//	E001  hook called outside an active component invocation
//	E002  malformed declarative node
//	E003  commit requested without a finished work-in-progress tree
//	E004  component panicked while rendering
//	E005  render called without a mount node
//
// # Usage
//
//	err := errors.New("E002").
//	    WithDetail("child 3 of <ul> is nil").
//	    WithSuggestion("Drop nil children before building the node")
//
//	if errors.IsCode(err, "E002") { ... }
//	fmt.Println(err.Format())
package errors
