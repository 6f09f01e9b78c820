package logging

import (
	"testing"
	"time"
)

func TestRepeatSamplerDefaults(t *testing.T) {
	s := NewRepeatSampler(0, 0)
	if s.every != 20 {
		t.Errorf("every = %d, want 20", s.every)
	}
	if s.window != 30*time.Second {
		t.Errorf("window = %s, want 30s", s.window)
	}
}

func TestRepeatSamplerNil(t *testing.T) {
	var s *RepeatSampler
	if ok, _ := s.ShouldLog("x"); !ok {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestRepeatSamplerSuppressesRepeats(t *testing.T) {
	clock := time.Unix(0, 0)
	s := NewRepeatSampler(3, time.Hour)
	s.now = func() time.Time { return clock }

	if ok, _ := s.ShouldLog("timeout"); !ok {
		t.Fatal("first occurrence should log")
	}
	if ok, _ := s.ShouldLog("timeout"); ok {
		t.Fatal("first repeat should be suppressed")
	}
	if ok, _ := s.ShouldLog("timeout"); ok {
		t.Fatal("second repeat should be suppressed")
	}
	ok, dropped := s.ShouldLog("timeout")
	if !ok {
		t.Fatal("third repeat should log")
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
}

func TestRepeatSamplerKeyChangeAndWindow(t *testing.T) {
	clock := time.Unix(0, 0)
	s := NewRepeatSampler(100, time.Minute)
	s.now = func() time.Time { return clock }

	s.ShouldLog("a")
	if ok, _ := s.ShouldLog("a"); ok {
		t.Fatal("repeat should be suppressed")
	}
	if ok, dropped := s.ShouldLog("b"); !ok || dropped != 1 {
		t.Fatalf("key change should log with 1 dropped, got %v %d", ok, dropped)
	}
	clock = clock.Add(2 * time.Minute)
	if ok, _ := s.ShouldLog("b"); !ok {
		t.Fatal("repeat after window should log")
	}
	s.Reset()
	if ok, _ := s.ShouldLog("b"); !ok {
		t.Fatal("first occurrence after reset should log")
	}
}
