package store

import "sync"

// Memory is an in-memory Blob implementation for testing.
type Memory struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	fails  error
	writes int
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) ReadBlob(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return nil, m.fails
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) WriteBlob(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	m.writes++
	return nil
}

func (m *Memory) DeleteBlob(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// Test helpers

// SetError makes every subsequent operation fail with err.
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails = err
}

// Has reports whether a blob exists under key.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

// WriteCount returns the number of successful writes.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Verify Memory implements Blob at compile time.
var _ Blob = (*Memory)(nil)
