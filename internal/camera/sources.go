package camera

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"eduvid/internal/frame"
)

// DirectorySource replays the still images of a directory in name order,
// advancing one image per interval and wrapping around.
type DirectorySource struct {
	dir      string
	frames   []frame.Frame
	interval time.Duration
	start    time.Time
	now      func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	served    uint64
}

// NewDirectorySource loads every .jpg, .jpeg and .png file in dir.
func NewDirectorySource(dir string, interval time.Duration) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: frames dir %s: %w", ErrNoDevice, dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: frames dir %s contains no images", ErrNoDevice, dir)
	}

	frames := make([]frame.Frame, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrCameraOther, name, err)
		}
		f, err := frame.New(uint64(i+1), time.Time{}, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCameraOther, name, err)
		}
		frames = append(frames, f)
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &DirectorySource{
		dir:      dir,
		frames:   frames,
		interval: interval,
		start:    time.Now(),
		now:      time.Now,
		done:     make(chan struct{}),
	}, nil
}

// Latest returns the image due at the current time.
func (d *DirectorySource) Latest() (frame.Frame, bool) {
	select {
	case <-d.done:
		return frame.Frame{}, false
	default:
	}
	elapsed := d.now().Sub(d.start)
	if elapsed < 0 {
		elapsed = 0
	}
	step := uint64(elapsed / d.interval)
	f := d.frames[step%uint64(len(d.frames))]
	f.Seq = step + 1
	f.CapturedAt = d.start.Add(time.Duration(step) * d.interval)

	d.mu.Lock()
	d.served++
	d.mu.Unlock()
	return f, true
}

// Len returns the number of images loaded.
func (d *DirectorySource) Len() int { return len(d.frames) }

func (d *DirectorySource) Device() string        { return d.dir }
func (d *DirectorySource) Done() <-chan struct{} { return d.done }
func (d *DirectorySource) Err() error            { return nil }

func (d *DirectorySource) Stats() StreamStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return StreamStats{Frames: d.served}
}

func (d *DirectorySource) Close() error {
	d.closeOnce.Do(func() { close(d.done) })
	return nil
}

// StaticSource serves the same frame forever. A zero-value frame makes the
// source report not ready, which is how tests model a camera still warming up.
type StaticSource struct {
	mu        sync.Mutex
	frame     frame.Frame
	ready     bool
	name      string
	done      chan struct{}
	closeOnce sync.Once
	closes    int
}

// NewStaticSource returns a source serving f.
func NewStaticSource(name string, f frame.Frame) *StaticSource {
	return &StaticSource{name: name, frame: f, ready: len(f.Data) > 0, done: make(chan struct{})}
}

// Set replaces the served frame.
func (s *StaticSource) Set(f frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.ready = len(f.Data) > 0
}

func (s *StaticSource) Latest() (frame.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return frame.Frame{}, false
	}
	return s.frame, true
}

func (s *StaticSource) Device() string        { return s.name }
func (s *StaticSource) Done() <-chan struct{} { return s.done }
func (s *StaticSource) Err() error            { return nil }
func (s *StaticSource) Stats() StreamStats    { return StreamStats{} }

// Close marks the source closed.
func (s *StaticSource) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closes++
		s.ready = false
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

// Closes returns the number of releases performed (zero or one).
func (s *StaticSource) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
