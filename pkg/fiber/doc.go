// Package fiber is the incremental reconciliation engine.
//
// A Session holds one committed fiber tree and at most one in-progress tree.
// Rendering happens in two phases:
//
//   - Work. The in-progress tree is built one fiber per step. Each step
//     invokes a component or creates a host node, then reconciles the
//     fiber's children against the committed tree by position. Steps run
//     inside idle slices granted by a sched.Scheduler and stop when the
//     slice's deadline expires; the next slice resumes from the same fiber.
//
//   - Commit. Once every fiber is processed, a commit slice tears down
//     removed subtrees and applies the ADD and UPDATE tags in preorder,
//     without yielding. The in-progress tree then becomes the committed tree.
//
// Components keep state in cells obtained from UseState. A setter enqueues
// an action and restarts reconciliation from the committed root, discarding
// any pass that has not committed yet.
//
// A Session is not safe for concurrent use. Drive it from the goroutine
// that runs its scheduler (see sched.Loop.Submit).
package fiber
