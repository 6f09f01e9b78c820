package classify

import (
	"context"
	"sort"

	"eduvid/internal/frame"
	"eduvid/internal/recognition"
)

// HTTPClassifier is a whole-frame image classifier behind HTTP.
type HTTPClassifier struct {
	endpoint
}

// NewHTTPClassifier returns a classifier posting frames to baseURL.
func NewHTTPClassifier(baseURL string, opts ...Option) *HTTPClassifier {
	return &HTTPClassifier{endpoint: newEndpoint("fine-classifier", baseURL, opts)}
}

type classifyResponse struct {
	Predictions []struct {
		ClassName   string  `json:"className"`
		Label       string  `json:"label"`
		Probability float64 `json:"probability"`
	} `json:"predictions"`
}

// Classify returns predictions ordered by descending probability.
func (c *HTTPClassifier) Classify(ctx context.Context, f frame.Frame) ([]recognition.Prediction, error) {
	var decoded classifyResponse
	if err := c.post(ctx, "classify", "/classify", f, &decoded); err != nil {
		return nil, err
	}
	out := make([]recognition.Prediction, 0, len(decoded.Predictions))
	for _, p := range decoded.Predictions {
		label := p.ClassName
		if label == "" {
			label = p.Label
		}
		if label == "" {
			continue
		}
		out = append(out, recognition.Prediction{Label: label, Probability: p.Probability})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	return out, nil
}

// Load checks that the model server is up.
func (c *HTTPClassifier) Load(ctx context.Context) error {
	return c.health(ctx)
}
