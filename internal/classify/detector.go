package classify

import (
	"context"
	"sort"

	"eduvid/internal/frame"
	"eduvid/internal/recognition"
)

// HTTPDetector is an object detector behind HTTP.
type HTTPDetector struct {
	endpoint
}

// NewHTTPDetector returns a detector posting frames to baseURL.
func NewHTTPDetector(baseURL string, opts ...Option) *HTTPDetector {
	return &HTTPDetector{endpoint: newEndpoint("coarse-detector", baseURL, opts)}
}

type detectResponse struct {
	Detections []struct {
		Class string    `json:"class"`
		Score float64   `json:"score"`
		BBox  []float64 `json:"bbox"`
	} `json:"detections"`
}

// Detect returns detections ordered by descending score. Boxes are
// [x, y, width, height] in frame pixels.
func (d *HTTPDetector) Detect(ctx context.Context, f frame.Frame) ([]recognition.Detection, error) {
	var decoded detectResponse
	if err := d.post(ctx, "detect", "/detect", f, &decoded); err != nil {
		return nil, err
	}
	out := make([]recognition.Detection, 0, len(decoded.Detections))
	for _, det := range decoded.Detections {
		if det.Class == "" {
			continue
		}
		var box recognition.Box
		if len(det.BBox) == 4 {
			box = recognition.Box{X: det.BBox[0], Y: det.BBox[1], W: det.BBox[2], H: det.BBox[3]}
		}
		out = append(out, recognition.Detection{Class: det.Class, Score: det.Score, Box: box})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// Load checks that the model server is up.
func (d *HTTPDetector) Load(ctx context.Context) error {
	return d.health(ctx)
}
