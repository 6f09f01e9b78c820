package logging

import (
	"strings"
	"sync"
	"time"
)

// RepeatSampler suppresses repetitive log lines (for example the same
// inference failure on every tick) while preserving signal when the message
// key changes. A repeated key is let through every `every` occurrences or once
// `window` has elapsed since it was last emitted.
type RepeatSampler struct {
	mu         sync.Mutex
	every      int
	window     time.Duration
	now        func() time.Time
	lastKey    string
	lastEmit   time.Time
	repeats    int
	suppressed int
}

// NewRepeatSampler constructs a sampler. Non-positive values fall back to
// every 20th repeat and a 30 second window.
func NewRepeatSampler(every int, window time.Duration) *RepeatSampler {
	if every <= 0 {
		every = 20
	}
	if window <= 0 {
		window = 30 * time.Second
	}
	return &RepeatSampler{every: every, window: window, now: time.Now}
}

// ShouldLog reports whether an event with the given key should be logged. The
// second value is the number of events suppressed since the previous emit.
func (s *RepeatSampler) ShouldLog(key string) (bool, int) {
	if s == nil {
		return true, 0
	}
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if key != s.lastKey {
		s.lastKey = key
		s.repeats = 0
		return s.emitLocked(now)
	}
	s.repeats++
	if s.repeats%s.every == 0 || now.Sub(s.lastEmit) >= s.window {
		return s.emitLocked(now)
	}
	s.suppressed++
	return false, 0
}

func (s *RepeatSampler) emitLocked(now time.Time) (bool, int) {
	dropped := s.suppressed
	s.suppressed = 0
	s.lastEmit = now
	return true, dropped
}

// Reset clears the sampler state (e.g. when a new session starts).
func (s *RepeatSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.lastKey = ""
	s.lastEmit = time.Time{}
	s.repeats = 0
	s.suppressed = 0
	s.mu.Unlock()
}
