package recognition

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"eduvid/internal/frame"
)

// ClassifierRecognizer adapts a bare classifier. Classifiers do not localize,
// so results carry no box.
type ClassifierRecognizer struct {
	Model     Classifier
	Threshold float64
}

// Recognize returns the top prediction when it clears the threshold.
func (r ClassifierRecognizer) Recognize(ctx context.Context, f frame.Frame) ([]Result, error) {
	if r.Model == nil {
		return nil, errors.New("classifier recognizer: no model")
	}
	predictions, err := r.Model.Classify(ctx, f)
	if err != nil {
		return nil, err
	}
	top, ok := topPrediction(predictions, r.Threshold)
	if !ok {
		return nil, nil
	}
	return []Result{top}, nil
}

// Load warms up the model when supported.
func (r ClassifierRecognizer) Load(ctx context.Context) error { return LoadModel(ctx, r.Model) }

// Close releases the model when supported.
func (r ClassifierRecognizer) Close() error { return CloseModel(r.Model) }

// DetectorRecognizer adapts a bare detector; every detection above the
// threshold becomes a result, highest score first.
type DetectorRecognizer struct {
	Model     Detector
	Threshold float64
}

// Recognize returns the detections above the threshold.
func (r DetectorRecognizer) Recognize(ctx context.Context, f frame.Frame) ([]Result, error) {
	if r.Model == nil {
		return nil, errors.New("detector recognizer: no model")
	}
	detections, err := r.Model.Detect(ctx, f)
	if err != nil {
		return nil, err
	}
	return detectionResults(detections, r.Threshold), nil
}

// Load warms up the model when supported.
func (r DetectorRecognizer) Load(ctx context.Context) error { return LoadModel(ctx, r.Model) }

// Close releases the model when supported.
func (r DetectorRecognizer) Close() error { return CloseModel(r.Model) }

// Pair runs a fine-grained classifier and a coarse detector on the same frame.
// The fine model names the subject; the coarse model places its box. When the
// fine model has nothing above its threshold the coarse label is used. One
// failing model degrades to the other; both failing fails the frame.
type Pair struct {
	Fine            Classifier
	Coarse          Detector
	FineThreshold   float64
	CoarseThreshold float64
}

// Recognize implements Recognizer.
func (p Pair) Recognize(ctx context.Context, f frame.Frame) ([]Result, error) {
	var (
		predictions []Prediction
		detections  []Detection
		fineErr     error
		coarseErr   error
		g           errgroup.Group
	)
	// Errors stay per model so one failure never discards the other's result.
	g.Go(func() error {
		predictions, fineErr = p.Fine.Classify(ctx, f)
		return nil
	})
	g.Go(func() error {
		detections, coarseErr = p.Coarse.Detect(ctx, f)
		return nil
	})
	_ = g.Wait()

	if fineErr != nil && coarseErr != nil {
		return nil, fmt.Errorf("recognize: both models failed: %w", errors.Join(fineErr, coarseErr))
	}

	boxes := detectionResults(detections, p.CoarseThreshold)
	fine, fineOK := topPrediction(predictions, p.FineThreshold)

	switch {
	case fineOK && len(boxes) > 0:
		primary := fine
		box := *boxes[0].Box
		primary.Box = &box
		return append([]Result{primary}, boxes[1:]...), nil
	case fineOK:
		return []Result{fine}, nil
	default:
		return boxes, nil
	}
}

// Load warms up both models concurrently.
func (p Pair) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return LoadModel(gctx, p.Fine) })
	g.Go(func() error { return LoadModel(gctx, p.Coarse) })
	return g.Wait()
}

// Close releases both models.
func (p Pair) Close() error {
	return errors.Join(CloseModel(p.Fine), CloseModel(p.Coarse))
}

func topPrediction(predictions []Prediction, threshold float64) (Result, bool) {
	best := -1
	for i, pred := range predictions {
		if best < 0 || pred.Probability > predictions[best].Probability {
			best = i
		}
	}
	if best < 0 || predictions[best].Probability < threshold {
		return Result{}, false
	}
	label := NormalizeLabel(predictions[best].Label)
	if label == "" {
		return Result{}, false
	}
	return Result{Label: label, Confidence: predictions[best].Probability}, true
}

func detectionResults(detections []Detection, threshold float64) []Result {
	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if det.Score >= threshold && NormalizeLabel(det.Class) != "" {
			kept = append(kept, det)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	results := make([]Result, 0, len(kept))
	for _, det := range kept {
		box := det.Box
		results = append(results, Result{Label: NormalizeLabel(det.Class), Confidence: det.Score, Box: &box})
	}
	return results
}
