package recognition

import "testing"

func TestStabilityFilterConfirmsAfterConsecutiveTicks(t *testing.T) {
	f := NewStabilityFilter(3)
	seq := []string{"Fan", "Fan", "Lamp", "Fan", "Fan", "Fan"}
	var changedAt []int
	for i, label := range seq {
		obs := f.Observe(label)
		if obs.Changed {
			changedAt = append(changedAt, i)
		}
		if i < 5 && f.Confirmed() != "" {
			t.Fatalf("confirmed too early at tick %d: %q", i, f.Confirmed())
		}
	}
	if len(changedAt) != 1 || changedAt[0] != 5 {
		t.Fatalf("expected a single confirmation at tick 5, got %v", changedAt)
	}
	if f.Confirmed() != "Fan" {
		t.Fatalf("confirmed = %q, want Fan", f.Confirmed())
	}
}

func TestStabilityFilterInterleavingResetsCount(t *testing.T) {
	f := NewStabilityFilter(3)
	f.Observe("Cup")
	f.Observe("Cup")
	obs := f.Observe("Bottle")
	if obs.Count != 1 {
		t.Fatalf("count after interleave = %d, want 1", obs.Count)
	}
	if key, count := f.Pending(); key != "Bottle" || count != 1 {
		t.Fatalf("pending = %q/%d", key, count)
	}
}

func TestStabilityFilterSignalLossKeepsSubject(t *testing.T) {
	f := NewStabilityFilter(2)
	f.Observe("Book")
	if obs := f.Observe("Book"); !obs.Changed {
		t.Fatal("expected confirmation")
	}
	f.Observe("Chair")
	obs := f.Observe("")
	if !obs.SignalLost {
		t.Fatal("expected signal lost")
	}
	if obs.Confirmed != "Book" {
		t.Fatalf("confirmed after loss = %q, want Book", obs.Confirmed)
	}
	if key, count := f.Pending(); key != "" || count != 0 {
		t.Fatalf("pending not cleared: %q/%d", key, count)
	}
	// The pending Chair count was discarded, so one more Chair is not enough.
	if obs := f.Observe("Chair"); obs.Changed {
		t.Fatal("chair confirmed without consecutive ticks")
	}
}

func TestStabilityFilterNeverClearingThreshold(t *testing.T) {
	f := NewStabilityFilter(3)
	for i := 0; i < 50; i++ {
		if obs := f.Observe(""); obs.Changed || obs.Confirmed != "" {
			t.Fatalf("unexpected confirmation at tick %d", i)
		}
	}
}

func TestStabilityFilterSameSubjectDoesNotRefire(t *testing.T) {
	f := NewStabilityFilter(2)
	f.Observe("Apple")
	f.Observe("Apple")
	for i := 0; i < 5; i++ {
		if obs := f.Observe("Apple"); obs.Changed {
			t.Fatalf("re-confirmed same subject at extra tick %d", i)
		}
	}
	f.Observe("")
	f.Observe("Apple")
	if obs := f.Observe("Apple"); obs.Changed {
		t.Fatal("same subject re-confirmed after signal loss")
	}
	f.Reset()
	if f.Confirmed() != "" {
		t.Fatal("reset kept confirmed subject")
	}
}

func TestNewStabilityFilterClampsFrames(t *testing.T) {
	f := NewStabilityFilter(0)
	if obs := f.Observe("Mouse"); !obs.Changed {
		t.Fatal("single-frame filter should confirm immediately")
	}
}
