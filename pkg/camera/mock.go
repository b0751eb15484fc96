package camera

import (
	"sync"

	"github.com/facegate/go-facegate/pkg/capture"
)

// Mock implements capture.Source for testing.
// All methods can be customized via function fields.
type Mock struct {
	// FrameFunc is called when Frame is invoked.
	// If nil, returns (nil, nil): no frame available.
	FrameFunc func() (*capture.Frame, error)

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	mu     sync.Mutex
	frames int
}

// Frame implements capture.Source.
func (m *Mock) Frame() (*capture.Frame, error) {
	m.mu.Lock()
	m.frames++
	m.mu.Unlock()

	if m.FrameFunc != nil {
		return m.FrameFunc()
	}
	return nil, nil
}

// Close implements capture.Source.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// FrameCount returns how many times Frame was called.
func (m *Mock) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
