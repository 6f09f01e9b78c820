package camera

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const maxFrameBytes = 8 << 20

var (
	jpegSOI = []byte{0xFF, 0xD8}
	jpegEOI = []byte{0xFF, 0xD9}
)

var errFrameTooLarge = errors.New("camera: mjpeg frame exceeds limit")

// splitJPEG is a bufio.SplitFunc yielding one complete JPEG image per token
// from a concatenated MJPEG stream. Bytes before the first SOI marker are
// discarded.
func splitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// Keep a trailing 0xFF that may begin the next marker.
		if n := len(data); n > 0 && data[n-1] == 0xFF {
			return n - 1, nil, nil
		}
		return len(data), nil, nil
	}
	end := bytes.Index(data[start+2:], jpegEOI)
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		if len(data)-start > maxFrameBytes {
			return 0, nil, errFrameTooLarge
		}
		return start, nil, nil
	}
	stop := start + 2 + end + 2
	return stop, data[start:stop], nil
}

// newJPEGScanner wraps r for frame-by-frame reading.
func newJPEGScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256<<10), maxFrameBytes+4)
	scanner.Split(splitJPEG)
	return scanner
}
