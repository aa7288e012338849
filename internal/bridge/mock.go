package bridge

import (
	"sync"
	"time"
)

// MockEngine is a test double for Engine. It records every command.
type MockEngine struct {
	mu sync.Mutex

	loadCalls   []string
	playCalls   int
	pauseCalls  int
	seekCalls   []time.Duration
	volumeCalls []float64
}

// NewMockEngine creates a new mock engine for testing.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) Load(mediaID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, mediaID)
}

func (m *MockEngine) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
}

func (m *MockEngine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
}

func (m *MockEngine) Seek(to time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, to)
}

func (m *MockEngine) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeCalls = append(m.volumeCalls, v)
}

// Test helpers

func (m *MockEngine) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *MockEngine) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *MockEngine) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *MockEngine) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *MockEngine) VolumeCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumeCalls...)
}

// Verify MockEngine implements Engine at compile time.
var _ Engine = (*MockEngine)(nil)
