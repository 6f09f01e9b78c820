package camera

import (
	"bytes"
	"testing"
	"testing/iotest"

	"eduvid/internal/logging"
)

func TestSplitJPEGStream(t *testing.T) {
	first := testJPEG(t, 10)
	second := testJPEG(t, 200)

	var stream bytes.Buffer
	stream.WriteString("noise")
	stream.Write(first)
	stream.Write([]byte{0x00, 0x01})
	stream.Write(second)
	stream.Write(second[:10])

	scanner := newJPEGScanner(iotest.OneByteReader(&stream))
	var got [][]byte
	for scanner.Scan() {
		got = append(got, append([]byte(nil), scanner.Bytes()...))
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got))
	}
	if !bytes.Equal(got[0], first) || !bytes.Equal(got[1], second) {
		t.Fatal("frames do not match input images")
	}
}

func TestReadFramesKeepsLatest(t *testing.T) {
	var stream bytes.Buffer
	for _, shade := range []uint8{0, 80, 160} {
		stream.Write(testJPEG(t, shade))
	}
	s := &captureStream{device: "test", logger: logging.NewNop()}
	if err := s.readFrames(&stream); err != nil {
		t.Fatalf("readFrames: %v", err)
	}
	f, ok := s.Latest()
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Seq != 3 || f.Width != 8 || f.Height != 6 {
		t.Fatalf("unexpected frame %+v", f)
	}
	stats := s.Stats()
	if stats.Frames != 3 || stats.Dropped != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestMailboxCountsOnlyUnreadDrops(t *testing.T) {
	var box mailbox
	if _, ok := box.latest(); ok {
		t.Fatal("empty mailbox reported a frame")
	}
	box.put(frameWithSeq(1))
	if f, _ := box.latest(); f.Seq != 1 {
		t.Fatalf("got seq %d", f.Seq)
	}
	box.put(frameWithSeq(2))
	box.put(frameWithSeq(3))
	if f, _ := box.latest(); f.Seq != 3 {
		t.Fatalf("got seq %d", f.Seq)
	}
	if stats := box.stats(); stats.Dropped != 1 || stats.Frames != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
