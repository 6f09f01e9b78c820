package frame

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestNewReadsDimensions(t *testing.T) {
	data, err := EncodeJPEG(solid(32, 24))
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	f, err := New(3, time.Now(), data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Width != 32 || f.Height != 24 || f.Seq != 3 {
		t.Fatalf("unexpected frame %+v", f)
	}
	if !IsJPEG(f.Data) {
		t.Fatal("expected jpeg data")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(1, time.Now(), nil); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := New(1, time.Now(), []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestJPEGReencodesPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(8, 8)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	f, err := New(1, time.Now(), buf.Bytes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := f.JPEG()
	if err != nil {
		t.Fatalf("JPEG: %v", err)
	}
	if !IsJPEG(out) {
		t.Fatal("expected re-encoded jpeg")
	}
}
