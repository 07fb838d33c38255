// Package scheduler is the orchestrating facade of the engine: task
// CRUD, event materialization, policy-gated completion, stats, and
// change notification.
//
// All mutating operations are serialized through one mutex because the
// read-modify-write around the state blob is not safe under concurrent
// mutation. Listeners are notified only after the corresponding write
// was issued, and in-memory state is swapped only after the write
// succeeded, so observers never see state that diverges from disk.
package scheduler
