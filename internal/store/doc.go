// Package store persists the engine's authoritative state.
//
// The whole state travels as one opaque blob under a caller-supplied
// key. There is no delta persistence: every mutation rewrites the full
// blob, which keeps the contract trivially consistent at the expected
// data volume (tens to low hundreds of tasks and outcomes).
//
// Drivers:
//   - "file": one JSON blob file per key, written atomically
//   - "sqlite": single-table key/blob database
//   - "memory": process-local, for tests and dry runs
package store
