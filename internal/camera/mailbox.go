package camera

import (
	"sync"

	"eduvid/internal/frame"
)

// mailbox holds the newest frame only. A frame replaced before anyone read it
// is counted as dropped.
type mailbox struct {
	mu      sync.Mutex
	current frame.Frame
	has     bool
	unread  bool
	stored  uint64
	dropped uint64
}

func (m *mailbox) put(f frame.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unread {
		m.dropped++
	}
	m.current = f
	m.has = true
	m.unread = true
	m.stored++
}

func (m *mailbox) latest() (frame.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return frame.Frame{}, false
	}
	m.unread = false
	return m.current, true
}

func (m *mailbox) stats() StreamStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return StreamStats{Frames: m.stored, Dropped: m.dropped}
}
