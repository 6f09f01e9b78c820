package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"eduvid/internal/frame"
)

// Style controls colours and stroke width.
type Style struct {
	Primary   color.RGBA
	Secondary color.RGBA
	Text      color.RGBA
	Stroke    int
}

// DefaultStyle is green for the confirmed subject, amber for the rest.
var DefaultStyle = Style{
	Primary:   color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff},
	Secondary: color.RGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 0xff},
	Text:      color.RGBA{R: 0x0b, G: 0x0b, B: 0x0b, A: 0xff},
	Stroke:    2,
}

// Render draws labels onto f and returns the result as JPEG. A frame with no
// labels is returned re-encoded only when it was not JPEG to begin with.
func Render(f frame.Frame, labels []Label, style Style) ([]byte, error) {
	if len(labels) == 0 {
		return f.JPEG()
	}
	src, err := f.Image()
	if err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(src.Bounds())
	draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	Draw(canvas, labels, style)
	return frame.EncodeJPEG(canvas)
}

// Draw paints labels onto dst in place. Secondary labels are drawn first so
// the confirmed subject ends up on top.
func Draw(dst draw.Image, labels []Label, style Style) {
	if style.Stroke <= 0 {
		style.Stroke = 1
	}
	for _, primary := range []bool{false, true} {
		for _, l := range labels {
			if l.Primary != primary {
				continue
			}
			c := style.Secondary
			if l.Primary {
				c = style.Primary
			}
			if !l.Box.Empty() {
				strokeRect(dst, l.Box, style.Stroke, c)
			}
			if !l.Caption.Empty() {
				draw.Draw(dst, l.Caption, image.NewUniform(c), image.Point{}, draw.Src)
				drawText(dst, l.Caption, l.Text, style.Text)
			}
		}
	}
}

func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	fill := image.NewUniform(c)
	width = min(width, r.Dx(), r.Dy())
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), fill, image.Point{}, draw.Src)
	}
}

func drawText(dst draw.Image, area image.Rectangle, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  clipped{dst, area},
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(area.Min.X+captionPadX, area.Min.Y+captionPadY+face.Ascent),
	}
	d.DrawString(text)
}

// clipped restricts writes to a rectangle so long captions do not spill out
// of their background.
type clipped struct {
	draw.Image
	clip image.Rectangle
}

func (c clipped) Set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.clip) {
		c.Image.Set(x, y, col)
	}
}

func (c clipped) Bounds() image.Rectangle {
	return c.Image.Bounds().Intersect(c.clip)
}
