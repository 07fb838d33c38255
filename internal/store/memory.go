package store

import (
	"context"
	"sync"
)

// Memory is an in-process KV used by tests and dry runs. It can be
// told to fail writes, which exercises the facade's write-then-commit
// behavior.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte

	failPut error
}

func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, true, nil
}

func (m *Memory) Put(ctx context.Context, key string, blob []byte) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	m.blobs[key] = cp
	return nil
}

// FailWrites makes every subsequent Put return err (nil restores
// normal operation).
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.failPut = err
	m.mu.Unlock()
}
