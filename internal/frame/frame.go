// Package frame defines the still-image unit that flows from the camera to
// the recognizers and the overlay renderer.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"time"
)

// Frame is a single encoded camera image.
type Frame struct {
	Seq        uint64
	CapturedAt time.Time
	// Data holds the encoded image (JPEG from live capture, JPEG or PNG when
	// replayed from disk).
	Data   []byte
	Width  int
	Height int
}

// Source yields the most recent frame. ok is false until the first frame has
// been captured.
type Source interface {
	Latest() (Frame, bool)
}

var ErrEmpty = errors.New("frame: empty image data")

// New builds a frame from encoded bytes, reading dimensions from the header.
func New(seq uint64, at time.Time, data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, ErrEmpty
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("frame: decode header: %w", err)
	}
	return Frame{Seq: seq, CapturedAt: at, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
}

// Image decodes the frame.
func (f Frame) Image() (image.Image, error) {
	if len(f.Data) == 0 {
		return nil, ErrEmpty
	}
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("frame: decode: %w", err)
	}
	return img, nil
}

// JPEG returns the frame encoded as JPEG, re-encoding non-JPEG sources.
func (f Frame) JPEG() ([]byte, error) {
	if IsJPEG(f.Data) {
		return f.Data, nil
	}
	img, err := f.Image()
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(img)
}

// EncodeJPEG encodes an image at the quality used throughout the pipeline.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("frame: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// IsJPEG reports whether data starts with a JPEG SOI marker.
func IsJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}
