package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eduvid/internal/frame"
)

// JPEG returns a small solid-colour JPEG image.
func JPEG(t testing.TB, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 255 - shade, B: shade / 2, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// Frame returns a decoded-header frame wrapping JPEG(shade).
func Frame(t testing.TB, seq uint64, shade uint8) frame.Frame {
	t.Helper()
	f, err := frame.New(seq, time.Now(), JPEG(t, shade))
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return f
}

// WriteJPEG writes JPEG(shade) to path, creating parent directories.
func WriteJPEG(t testing.TB, path string, shade uint8) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, JPEG(t, shade), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
