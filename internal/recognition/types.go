package recognition

import (
	"context"

	"eduvid/internal/frame"
)

// Box is an axis-aligned rectangle in frame pixel coordinates.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Prediction is one class probability from an image classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Detection is one localized object from a detector.
type Detection struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
	Box   Box     `json:"box"`
}

// Result is the per-frame output of a recognizer. Box is nil when the label
// came from a classifier that does not localize.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        *Box    `json:"box,omitempty"`
}

// Classifier scores a whole frame against its label set.
type Classifier interface {
	Classify(ctx context.Context, f frame.Frame) ([]Prediction, error)
}

// Detector localizes objects in a frame.
type Detector interface {
	Detect(ctx context.Context, f frame.Frame) ([]Detection, error)
}

// Recognizer produces the results for one frame, primary result first. An
// empty slice means nothing cleared the confidence threshold.
type Recognizer interface {
	Recognize(ctx context.Context, f frame.Frame) ([]Result, error)
}

// Loader is implemented by models that need warm-up before the first frame.
type Loader interface {
	Load(ctx context.Context) error
}

// Closer is implemented by models holding resources.
type Closer interface {
	Close() error
}

// TopResult returns the primary result, if any.
func TopResult(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

// LoadModel warms up m when it implements Loader.
func LoadModel(ctx context.Context, m any) error {
	if loader, ok := m.(Loader); ok && loader != nil {
		return loader.Load(ctx)
	}
	return nil
}

// CloseModel releases m when it implements Closer.
func CloseModel(m any) error {
	if closer, ok := m.(Closer); ok && closer != nil {
		return closer.Close()
	}
	return nil
}
