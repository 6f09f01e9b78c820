package camera

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	// ErrPermissionDenied means the process may not open the device.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNoDevice means no usable capture device exists.
	ErrNoDevice = errors.New("no camera device")
	// ErrCameraOther covers every other acquisition failure.
	ErrCameraOther = errors.New("camera unavailable")
	// ErrBusy means another process holds the device.
	ErrBusy = fmt.Errorf("%w: device busy", ErrCameraOther)
)

// Reason is the failure category reported to users.
type Reason string

const (
	ReasonPermissionDenied Reason = "permission-denied"
	ReasonNoDevice         Reason = "no-device"
	ReasonOther            Reason = "other"
)

// Classify maps an acquisition error onto its reason. nil maps to "".
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrNoDevice):
		return ReasonNoDevice
	default:
		return ReasonOther
	}
}

// UserMessage renders an acquisition failure for the person holding the camera.
func UserMessage(err error) string {
	switch Classify(err) {
	case "":
		return ""
	case ReasonPermissionDenied:
		return "Camera access was denied. Allow access to the camera and try again."
	case ReasonNoDevice:
		return "No camera was found. Connect a camera and try again."
	default:
		if errors.Is(err, ErrBusy) {
			return "The camera is being used by another application. Close it and try again."
		}
		return "The camera could not be started. Try reconnecting it."
	}
}

// classifyOpenError tags a raw open error with the matching sentinel.
func classifyOpenError(path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w: %s: %w", ErrNoDevice, path, err)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w: %s: %w", ErrBusy, path, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrCameraOther, path, err)
	}
}

// classifyCaptureOutput inspects ffmpeg's stderr for a known failure.
func classifyCaptureOutput(path, stderr string) error {
	lower := strings.ToLower(stderr)
	detail := lastLine(stderr)
	switch {
	case strings.Contains(lower, "permission denied"):
		return fmt.Errorf("%w: %s: %s", ErrPermissionDenied, path, detail)
	case strings.Contains(lower, "no such file or directory"), strings.Contains(lower, "no such device"):
		return fmt.Errorf("%w: %s: %s", ErrNoDevice, path, detail)
	case strings.Contains(lower, "device or resource busy"):
		return fmt.Errorf("%w: %s: %s", ErrBusy, path, detail)
	case detail == "":
		return fmt.Errorf("%w: %s: capture exited", ErrCameraOther, path)
	default:
		return fmt.Errorf("%w: %s: %s", ErrCameraOther, path, detail)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// probe opens and closes the device node to surface permission and presence
// errors before ffmpeg is started.
func probe(path string) error {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return classifyOpenError(path, err)
	}
	_ = unix.Close(fd)
	return nil
}
