// Package engine runs the sketch mutation pipeline: it receives sketch
// mutations (new elements, constraint edits, point drags), infers
// auto-constraints, runs the solve cycle, and persists the result.
//
// ARCHITECTURE:
//
// Single-Writer Mutation Loop:
// All mutations are processed in a single goroutine. The solver is
// synchronous and run-to-completion with no internal locking, so two
// solves must never touch the same sketch concurrently - the queue is the
// serialization point the solver's contract requires. This also gives:
// - Deterministic solve order for a given mutation sequence
// - A monotonic revision number per applied mutation
// - Simple reasoning about which state each solve saw
//
// Mutation Processing Flow:
// 1. Mutations enqueued to a FIFO queue from any goroutine
// 2. Run() dequeues one at a time and loads the owning sketch's document
// 3. The mutation is applied to the in-memory document
//    (element creation also runs auto-constraint inference)
// 4. Solve cycle: extract primitives, solve constraints, write positions
//    back onto the elements
// 5. The updated document and a solve record are persisted at the next
//    revision number
//
// ERROR BOUNDARY:
// A failed mutation never kills the loop. Extraction or binding failures
// (a constraint naming geometry that no longer exists) mark the owning
// sketch invalid in the store with a descriptive reason; the loop logs
// and moves on. Numeric divergence is not an error - the solver keeps its
// last valid state and the result records Diverged.
package engine
