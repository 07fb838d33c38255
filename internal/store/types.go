package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrDisabled = errors.New("store disabled")

// Config configures persistence.
//
// Driver values:
//   - "file": blob-per-key files under Path (a directory)
//   - "sqlite", "sqlite3": SQLite database file at Path
//   - "memory": in-memory only
//
// If Driver is empty or "none", persistence is disabled and the engine
// runs purely in memory.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// KV is the minimal blob contract the engine persists through: one get
// and one set per load/save, nothing else.
type KV interface {
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Put(ctx context.Context, key string, blob []byte) error
	Close() error
}

// ReadError wraps a failed or corrupt state read. Reads are always
// recovered into an empty state; the error exists so callers can warn.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("state read %q: %v", e.Key, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed state write. Unlike reads, write failures
// propagate: a silently dropped save could lose a completion record.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("state write %q: %v", e.Key, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
