package recognition

// Observation reports what one tick did to the stability filter.
type Observation struct {
	// Label is the normalized label seen this tick ("" when nothing cleared
	// the threshold).
	Label string
	// Count is the consecutive-tick count for Label.
	Count int
	// Confirmed is the confirmed subject after this tick.
	Confirmed string
	// Changed is true when this tick replaced the confirmed subject.
	Changed bool
	// SignalLost is true when the tick carried no label.
	SignalLost bool
}

// StabilityFilter confirms a subject once the same label has been the top
// result for a fixed number of consecutive ticks. It tracks a single
// hypothesis: any different label resets the count to one.
type StabilityFilter struct {
	frames    int
	key       string
	count     int
	confirmed string
}

// NewStabilityFilter returns a filter requiring frames consecutive agreeing
// ticks (at least one).
func NewStabilityFilter(frames int) *StabilityFilter {
	if frames < 1 {
		frames = 1
	}
	return &StabilityFilter{frames: frames}
}

// Observe feeds the top label of one tick. label must already be normalized.
// An empty label clears the counter but keeps the confirmed subject.
func (f *StabilityFilter) Observe(label string) Observation {
	if label == "" {
		f.key = ""
		f.count = 0
		return Observation{Confirmed: f.confirmed, SignalLost: true}
	}
	if label == f.key {
		f.count++
	} else {
		f.key = label
		f.count = 1
	}
	obs := Observation{Label: label, Count: f.count, Confirmed: f.confirmed}
	if f.count >= f.frames && label != f.confirmed {
		f.confirmed = label
		obs.Confirmed = label
		obs.Changed = true
	}
	return obs
}

// Confirmed returns the current confirmed subject ("" before the first one).
func (f *StabilityFilter) Confirmed() string {
	return f.confirmed
}

// Pending returns the label being counted and its count.
func (f *StabilityFilter) Pending() (string, int) {
	return f.key, f.count
}

// Reset forgets the counter and the confirmed subject.
func (f *StabilityFilter) Reset() {
	f.key = ""
	f.count = 0
	f.confirmed = ""
}
