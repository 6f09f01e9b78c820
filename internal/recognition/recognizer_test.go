package recognition

import (
	"context"
	"errors"
	"testing"

	"eduvid/internal/frame"
)

type fakeClassifier struct {
	predictions []Prediction
	err         error
	loaded      bool
	loadErr     error
}

func (f *fakeClassifier) Classify(context.Context, frame.Frame) ([]Prediction, error) {
	return f.predictions, f.err
}

func (f *fakeClassifier) Load(context.Context) error {
	f.loaded = true
	return f.loadErr
}

type fakeDetector struct {
	detections []Detection
	err        error
	closed     bool
}

func (f *fakeDetector) Detect(context.Context, frame.Frame) ([]Detection, error) {
	return f.detections, f.err
}

func (f *fakeDetector) Close() error {
	f.closed = true
	return nil
}

func TestPairFineLabelCoarseBox(t *testing.T) {
	pair := Pair{
		Fine: &fakeClassifier{predictions: []Prediction{
			{Label: "desk", Probability: 0.05},
			{Label: "ceiling_fan, fan", Probability: 0.42},
		}},
		Coarse: &fakeDetector{detections: []Detection{
			{Class: "chair", Score: 0.55, Box: Box{X: 1, Y: 1, W: 5, H: 5}},
			{Class: "person", Score: 0.3, Box: Box{X: 9, Y: 9, W: 1, H: 1}},
			{Class: "tv", Score: 0.8, Box: Box{X: 10, Y: 20, W: 30, H: 40}},
		}},
		FineThreshold:   0.08,
		CoarseThreshold: 0.5,
	}
	results, err := pair.Recognize(context.Background(), frame.Frame{})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected primary plus one secondary, got %+v", results)
	}
	primary := results[0]
	if primary.Label != "Ceiling fan" || primary.Confidence != 0.42 {
		t.Fatalf("unexpected primary %+v", primary)
	}
	if primary.Box == nil || *primary.Box != (Box{X: 10, Y: 20, W: 30, H: 40}) {
		t.Fatalf("primary box should come from the top coarse detection, got %+v", primary.Box)
	}
	if results[1].Label != "Chair" {
		t.Fatalf("unexpected secondary %+v", results[1])
	}
}

func TestPairFallsBackToCoarseLabel(t *testing.T) {
	pair := Pair{
		Fine:            &fakeClassifier{predictions: []Prediction{{Label: "thing", Probability: 0.01}}},
		Coarse:          &fakeDetector{detections: []Detection{{Class: "cell phone", Score: 0.9}}},
		FineThreshold:   0.08,
		CoarseThreshold: 0.5,
	}
	results, err := pair.Recognize(context.Background(), frame.Frame{})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if top, ok := TopResult(results); !ok || top.Label != "Cell phone" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestPairDegradesWhenOneModelFails(t *testing.T) {
	pair := Pair{
		Fine:            &fakeClassifier{err: errors.New("fine down")},
		Coarse:          &fakeDetector{detections: []Detection{{Class: "book", Score: 0.7}}},
		FineThreshold:   0.08,
		CoarseThreshold: 0.5,
	}
	results, err := pair.Recognize(context.Background(), frame.Frame{})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if top, _ := TopResult(results); top.Label != "Book" {
		t.Fatalf("unexpected results %+v", results)
	}

	pair.Fine = &fakeClassifier{predictions: []Prediction{{Label: "mug", Probability: 0.5}}}
	pair.Coarse = &fakeDetector{err: errors.New("coarse down")}
	results, err = pair.Recognize(context.Background(), frame.Frame{})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if top, _ := TopResult(results); top.Label != "Mug" || top.Box != nil {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestPairFailsWhenBothModelsFail(t *testing.T) {
	fineErr := errors.New("fine down")
	pair := Pair{Fine: &fakeClassifier{err: fineErr}, Coarse: &fakeDetector{err: errors.New("coarse down")}}
	if _, err := pair.Recognize(context.Background(), frame.Frame{}); !errors.Is(err, fineErr) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestPairLoadAndClose(t *testing.T) {
	fine := &fakeClassifier{}
	coarse := &fakeDetector{}
	pair := Pair{Fine: fine, Coarse: coarse}
	if err := pair.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !fine.loaded {
		t.Fatal("fine model not loaded")
	}
	if err := pair.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !coarse.closed {
		t.Fatal("coarse model not closed")
	}

	fine.loadErr = errors.New("weights missing")
	if err := pair.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestSingleModelAdapters(t *testing.T) {
	cls := ClassifierRecognizer{Model: &fakeClassifier{predictions: []Prediction{{Label: "banana", Probability: 0.2}}}, Threshold: 0.08}
	results, err := cls.Recognize(context.Background(), frame.Frame{})
	if err != nil || len(results) != 1 || results[0].Label != "Banana" {
		t.Fatalf("classifier adapter returned %+v, %v", results, err)
	}
	cls.Threshold = 0.5
	if results, _ := cls.Recognize(context.Background(), frame.Frame{}); len(results) != 0 {
		t.Fatalf("expected no results under threshold, got %+v", results)
	}

	det := DetectorRecognizer{Model: &fakeDetector{detections: []Detection{
		{Class: "cup", Score: 0.6},
		{Class: "bottle", Score: 0.95},
		{Class: "dog", Score: 0.1},
	}}, Threshold: 0.5}
	results, err = det.Recognize(context.Background(), frame.Frame{})
	if err != nil || len(results) != 2 || results[0].Label != "Bottle" || results[1].Label != "Cup" {
		t.Fatalf("detector adapter returned %+v, %v", results, err)
	}
	if results[0].Box == nil {
		t.Fatal("detector results should carry boxes")
	}
}
