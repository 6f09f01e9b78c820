package camera

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestClassifyOpenError(t *testing.T) {
	cases := []struct {
		errno unix.Errno
		want  Reason
	}{
		{unix.EACCES, ReasonPermissionDenied},
		{unix.EPERM, ReasonPermissionDenied},
		{unix.ENOENT, ReasonNoDevice},
		{unix.ENODEV, ReasonNoDevice},
		{unix.ENXIO, ReasonNoDevice},
		{unix.EBUSY, ReasonOther},
		{unix.EIO, ReasonOther},
	}
	for _, tc := range cases {
		err := classifyOpenError("/dev/video0", tc.errno)
		if got := Classify(err); got != tc.want {
			t.Errorf("%v classified as %q, want %q", tc.errno, got, tc.want)
		}
		if !errors.Is(err, tc.errno) {
			t.Errorf("%v lost the original errno", tc.errno)
		}
	}
	if !errors.Is(classifyOpenError("/dev/video0", unix.EBUSY), ErrBusy) {
		t.Fatal("EBUSY should map to ErrBusy")
	}
}

func TestUserMessagesAreDistinct(t *testing.T) {
	errs := []error{ErrPermissionDenied, ErrNoDevice, ErrBusy, ErrCameraOther}
	seen := map[string]bool{}
	for _, err := range errs {
		msg := UserMessage(err)
		if msg == "" {
			t.Fatalf("empty message for %v", err)
		}
		if seen[msg] {
			t.Fatalf("duplicate message %q", msg)
		}
		seen[msg] = true
	}
	if UserMessage(nil) != "" {
		t.Fatal("nil error should have no message")
	}
}

func TestClassifyCaptureOutput(t *testing.T) {
	cases := []struct {
		stderr string
		want   error
	}{
		{"[video4linux2,v4l2 @ 0x1] Cannot open video device /dev/video0: Permission denied\n", ErrPermissionDenied},
		{"/dev/video9: No such file or directory\n", ErrNoDevice},
		{"ioctl(VIDIOC_STREAMON): Device or resource busy", ErrBusy},
		{"", ErrCameraOther},
		{"some unexpected failure", ErrCameraOther},
	}
	for _, tc := range cases {
		err := classifyCaptureOutput("/dev/video0", tc.stderr)
		if !errors.Is(err, tc.want) {
			t.Errorf("stderr %q -> %v, want %v", tc.stderr, err, tc.want)
		}
	}
}

var (
	errNoEnt  error = unix.ENOENT
	errAccess error = unix.EACCES
)
