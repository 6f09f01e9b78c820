package testsupport

import (
	"context"
	"sync"

	"eduvid/internal/frame"
	"eduvid/internal/recognition"
)

// ScriptedRecognizer returns a fixed sequence of labels, one per call, and
// repeats the last entry once the script is exhausted. An empty label means
// nothing cleared the threshold.
type ScriptedRecognizer struct {
	mu      sync.Mutex
	labels  []string
	calls   int
	loadErr error
	err     error
}

// NewScriptedRecognizer returns a recognizer replaying labels.
func NewScriptedRecognizer(labels ...string) *ScriptedRecognizer {
	return &ScriptedRecognizer{labels: labels}
}

// FailLoad makes Load return err.
func (r *ScriptedRecognizer) FailLoad(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

// FailRecognize makes every subsequent Recognize return err.
func (r *ScriptedRecognizer) FailRecognize(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// SetLabels replaces the remaining script.
func (r *ScriptedRecognizer) SetLabels(labels ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = labels
	r.calls = 0
}

// Load implements recognition.Loader.
func (r *ScriptedRecognizer) Load(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// Recognize implements recognition.Recognizer.
func (r *ScriptedRecognizer) Recognize(ctx context.Context, _ frame.Frame) ([]recognition.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if len(r.labels) == 0 {
		return nil, nil
	}
	idx := r.calls
	if idx >= len(r.labels) {
		idx = len(r.labels) - 1
	}
	r.calls++
	label := r.labels[idx]
	if label == "" {
		return nil, nil
	}
	return []recognition.Result{{Label: label, Confidence: 0.9, Box: &recognition.Box{X: 4, Y: 4, W: 20, H: 16}}}, nil
}

// Calls reports how many frames were recognized.
func (r *ScriptedRecognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
