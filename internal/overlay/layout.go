package overlay

import (
	"fmt"
	"image"
	"math"

	"eduvid/internal/recognition"
)

// Caption metrics for basicfont.Face7x13.
const (
	glyphWidth  = 7
	lineHeight  = 13
	captionPadX = 3
	captionPadY = 2
)

// Label is one thing to draw.
type Label struct {
	// Box is the outlined region. It is empty for banner captions.
	Box     image.Rectangle
	Text    string
	Primary bool
	// Caption is the filled background behind Text.
	Caption image.Rectangle
}

// Layout positions results inside a width x height frame. Boxes are clamped to
// the frame and dropped when nothing remains; captions sit above their box
// when there is room and inside its top edge otherwise.
func Layout(results []recognition.Result, subject string, width, height int) []Label {
	if width <= 0 || height <= 0 {
		return nil
	}
	bounds := image.Rect(0, 0, width, height)
	labels := make([]Label, 0, len(results))
	banners := 0
	for _, r := range results {
		if r.Label == "" {
			continue
		}
		text := Caption(r)
		primary := subject != "" && r.Label == subject
		if r.Box == nil {
			top := banners * (lineHeight + 2*captionPadY)
			caption := captionRect(image.Pt(0, top), text).Intersect(bounds)
			banners++
			if caption.Empty() {
				continue
			}
			labels = append(labels, Label{Text: text, Primary: primary, Caption: caption})
			continue
		}
		box := toRect(*r.Box).Intersect(bounds)
		if box.Empty() {
			continue
		}
		labels = append(labels, Label{
			Box:     box,
			Text:    text,
			Primary: primary,
			Caption: placeCaption(box, text, bounds),
		})
	}
	return labels
}

// Caption formats a result as "Label 87%".
func Caption(r recognition.Result) string {
	pct := int(math.Round(r.Confidence * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%s %d%%", r.Label, pct)
}

func toRect(b recognition.Box) image.Rectangle {
	x0 := int(math.Floor(b.X))
	y0 := int(math.Floor(b.Y))
	x1 := int(math.Ceil(b.X + b.W))
	y1 := int(math.Ceil(b.Y + b.H))
	return image.Rect(x0, y0, x1, y1)
}

func captionRect(origin image.Point, text string) image.Rectangle {
	w := len([]rune(text))*glyphWidth + 2*captionPadX
	h := lineHeight + 2*captionPadY
	return image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h)
}

func placeCaption(box image.Rectangle, text string, bounds image.Rectangle) image.Rectangle {
	h := lineHeight + 2*captionPadY
	origin := image.Pt(box.Min.X, box.Min.Y-h)
	if origin.Y < bounds.Min.Y {
		origin.Y = box.Min.Y
	}
	caption := captionRect(origin, text)
	if over := caption.Max.X - bounds.Max.X; over > 0 {
		caption = caption.Sub(image.Pt(min(over, caption.Min.X-bounds.Min.X), 0))
	}
	return caption.Intersect(bounds)
}
