package camera

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"eduvid/internal/frame"
	"eduvid/internal/logging"
)

// Stream is an acquired frame source. Done is closed when capture ends on its
// own (device removed, ffmpeg exited); Err then reports why. Close releases
// the device and is safe to call more than once.
type Stream interface {
	frame.Source
	Device() string
	Done() <-chan struct{}
	Err() error
	Stats() StreamStats
	Close() error
}

// StreamStats counts frames that went through the mailbox.
type StreamStats struct {
	Frames  uint64 `json:"frames"`
	Dropped uint64 `json:"dropped"`
}

// CaptureOptions configures an ffmpeg capture.
type CaptureOptions struct {
	FFmpegBinary string
	Width        int
	Height       int
	Framerate    int
	Logger       *slog.Logger
}

func (o CaptureOptions) args(device string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-f", "v4l2"}
	if o.Framerate > 0 {
		args = append(args, "-framerate", strconv.Itoa(o.Framerate))
	}
	if o.Width > 0 && o.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", o.Width, o.Height))
	}
	return append(args, "-i", device, "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "5", "-")
}

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// captureStream reads ffmpeg's MJPEG output into a mailbox.
type captureStream struct {
	device  string
	logger  *slog.Logger
	box     mailbox
	cancel  context.CancelFunc
	done    chan struct{}
	release func()

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// OpenCapture starts ffmpeg on device. The returned stream owns the process;
// release, when non-nil, runs once after the process has exited.
func OpenCapture(ctx context.Context, device string, opts CaptureOptions, release func()) (Stream, error) {
	return openCapture(ctx, device, opts, release, exec.CommandContext)
}

func openCapture(ctx context.Context, device string, opts CaptureOptions, release func(), command commandFunc) (Stream, error) {
	binary := opts.FFmpegBinary
	if binary == "" {
		binary = "ffmpeg"
	}
	captureCtx, cancel := context.WithCancel(ctx)
	cmd := command(captureCtx, binary, opts.args(device)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: stdout pipe: %w", ErrCameraOther, device, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: 16 << 10}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: start %s: %w", ErrCameraOther, binary, err)
	}

	s := &captureStream{
		device:  device,
		logger:  logging.NewComponentLogger(opts.Logger, "camera"),
		cancel:  cancel,
		done:    make(chan struct{}),
		release: release,
	}
	go s.run(captureCtx, cmd, stdout, &stderr)
	s.logger.Info("camera capture started",
		logging.String(logging.FieldEventType, "camera_capture_started"),
		logging.String("device", device),
		logging.String("ffmpeg", binary),
	)
	return s, nil
}

func (s *captureStream) run(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, stderr *bytes.Buffer) {
	defer close(s.done)
	readErr := s.readFrames(stdout)
	closing := ctx.Err() != nil
	if readErr != nil {
		// Nothing drains stdout any more; ffmpeg would block on the full pipe.
		s.cancel()
	}
	if err := cmd.Wait(); err != nil {
		s.logger.Debug("ffmpeg exited", logging.Error(err), logging.String("device", s.device))
	}
	if s.release != nil {
		s.release()
	}
	if closing || (readErr == nil && ctx.Err() != nil) {
		return
	}
	err := classifyCaptureOutput(s.device, stderr.String())
	if readErr != nil {
		err = fmt.Errorf("%w: %s: %w", ErrCameraOther, s.device, readErr)
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	logging.WarnWithContext(s.logger, "camera capture ended", "camera_capture_ended",
		logging.Error(err),
		logging.String("device", s.device),
		logging.String(logging.FieldErrorHint, "check that the camera is still connected"),
		logging.String(logging.FieldImpact, "recognition stops until a camera is acquired again"),
	)
}

// readFrames pushes every complete JPEG into the mailbox until r ends.
func (s *captureStream) readFrames(r io.Reader) error {
	scanner := newJPEGScanner(r)
	var seq uint64
	for scanner.Scan() {
		data := append([]byte(nil), scanner.Bytes()...)
		seq++
		f, err := frame.New(seq, time.Now(), data)
		if err != nil {
			s.logger.Debug("skipping undecodable frame", logging.Error(err), logging.Uint64("seq", seq))
			continue
		}
		s.box.put(f)
	}
	return scanner.Err()
}

func (s *captureStream) Latest() (frame.Frame, bool) { return s.box.latest() }
func (s *captureStream) Device() string              { return s.device }
func (s *captureStream) Done() <-chan struct{}       { return s.done }
func (s *captureStream) Stats() StreamStats          { return s.box.stats() }

func (s *captureStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *captureStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		stats := s.box.stats()
		s.logger.Info("camera capture stopped",
			logging.String(logging.FieldEventType, "camera_capture_stopped"),
			logging.String("device", s.device),
			logging.Uint64("frames", stats.Frames),
			logging.Uint64("dropped", stats.Dropped),
		)
	})
	return nil
}

// limitedWriter keeps the first limit bytes written to it.
type limitedWriter struct {
	mu    sync.Mutex
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if room := w.limit - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
