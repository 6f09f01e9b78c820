package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"eduvid/internal/logging"
)

// Preferences steer device selection.
type Preferences struct {
	// Device is the configured default node, tried after facing matches.
	Device string
	// LockDir holds per-device lock files. Empty uses os.TempDir().
	LockDir string
	Capture CaptureOptions
	Logger  *slog.Logger
}

// Opener starts capture on one device. release must run once the stream is
// finished with the device.
type Opener func(ctx context.Context, device string, release func()) (Stream, error)

// Acquirer picks and opens a capture device.
type Acquirer struct {
	prefs Preferences
	open  Opener
	probe func(path string) error
}

// NewAcquirer returns an acquirer that opens devices with ffmpeg.
func NewAcquirer(prefs Preferences) *Acquirer {
	a := &Acquirer{prefs: prefs, probe: probe}
	a.open = func(ctx context.Context, device string, release func()) (Stream, error) {
		opts := prefs.Capture
		if opts.Logger == nil {
			opts.Logger = prefs.Logger
		}
		return OpenCapture(ctx, device, opts, release)
	}
	return a
}

// Candidates orders devices for acquisition: environment-facing first, then
// user-facing, then the configured default, then anything else.
func Candidates(devices []Device, preferred string) []string {
	preferred = strings.TrimSpace(preferred)
	seen := make(map[string]bool, len(devices)+1)
	out := make([]string, 0, len(devices)+1)
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, facing := range []Facing{FacingEnvironment, FacingUser} {
		for _, d := range devices {
			if d.Facing == facing {
				add(d.Path)
			}
		}
	}
	add(preferred)
	for _, d := range devices {
		add(d.Path)
	}
	return out
}

// Acquire opens the first candidate that can be locked, probed and started.
// When every candidate fails the most specific failure wins: permission
// denied, then other failures, then no device.
func (a *Acquirer) Acquire(ctx context.Context, devices []Device) (Stream, error) {
	logger := logging.NewComponentLogger(a.prefs.Logger, "camera")
	candidates := Candidates(devices, a.prefs.Device)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no capture devices found", ErrNoDevice)
	}

	var failures []error
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCameraOther, err)
		}
		stream, err := a.tryDevice(ctx, path)
		if err == nil {
			logger.Info("camera acquired",
				logging.String(logging.FieldEventType, "camera_acquired"),
				logging.String("device", path),
			)
			return stream, nil
		}
		logger.Debug("camera candidate rejected", logging.String("device", path), logging.Error(err))
		failures = append(failures, err)
	}
	return nil, pickFailure(failures)
}

func (a *Acquirer) tryDevice(ctx context.Context, path string) (Stream, error) {
	lock := flock.New(a.lockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: lock %s: %w", ErrCameraOther, path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s held by another session", ErrBusy, path)
	}
	unlock := func() { _ = lock.Unlock() }

	if a.probe != nil {
		if err := a.probe(path); err != nil {
			unlock()
			return nil, err
		}
	}
	stream, err := a.open(ctx, path, unlock)
	if err != nil {
		unlock()
		return nil, err
	}
	return stream, nil
}

func (a *Acquirer) lockPath(device string) string {
	dir := a.prefs.LockDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := strings.NewReplacer("/", "_").Replace(strings.TrimPrefix(device, "/"))
	return filepath.Join(dir, "eduvid-"+name+".lock")
}

func pickFailure(failures []error) error {
	var other, missing error
	for _, err := range failures {
		switch Classify(err) {
		case ReasonPermissionDenied:
			return err
		case ReasonNoDevice:
			if missing == nil {
				missing = err
			}
		default:
			if other == nil {
				other = err
			}
		}
	}
	if other != nil {
		return other
	}
	if missing != nil {
		return missing
	}
	return errors.Join(ErrNoDevice, errors.New("no candidates"))
}
