package camera

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"eduvid/internal/frame"
)

func TestCandidatesOrder(t *testing.T) {
	devices := []Device{
		{Path: "/dev/video0", Facing: FacingUser},
		{Path: "/dev/video2", Facing: FacingUnknown},
		{Path: "/dev/video4", Facing: FacingEnvironment},
		{Path: "/dev/video6", Facing: FacingUnknown},
	}
	got := Candidates(devices, "/dev/video6")
	want := []string{"/dev/video4", "/dev/video0", "/dev/video6", "/dev/video2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates = %v, want %v", got, want)
	}

	got = Candidates(nil, " /dev/video9 ")
	if !reflect.DeepEqual(got, []string{"/dev/video9"}) {
		t.Fatalf("configured device should be tried even when undiscovered, got %v", got)
	}
}

func newTestAcquirer(t *testing.T, device string, probe func(string) error, open Opener) *Acquirer {
	t.Helper()
	return &Acquirer{
		prefs: Preferences{Device: device, LockDir: t.TempDir()},
		probe: probe,
		open:  open,
	}
}

func TestAcquireFallsThroughFailures(t *testing.T) {
	devices := []Device{
		{Path: "/dev/video0", Facing: FacingEnvironment},
		{Path: "/dev/video1", Facing: FacingUser},
	}
	probe := func(path string) error {
		if path == "/dev/video0" {
			return classifyOpenError(path, errNoEnt)
		}
		return nil
	}
	var opened []string
	open := func(_ context.Context, device string, release func()) (Stream, error) {
		opened = append(opened, device)
		return NewStaticSource(device, frame.Frame{}), nil
	}
	a := newTestAcquirer(t, "", probe, open)

	stream, err := a.Acquire(context.Background(), devices)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if stream.Device() != "/dev/video1" {
		t.Fatalf("acquired %s", stream.Device())
	}
	if !reflect.DeepEqual(opened, []string{"/dev/video1"}) {
		t.Fatalf("opened %v", opened)
	}
}

func TestAcquireNoDevices(t *testing.T) {
	a := newTestAcquirer(t, "", nil, nil)
	_, err := a.Acquire(context.Background(), nil)
	if Classify(err) != ReasonNoDevice {
		t.Fatalf("expected no-device, got %v", err)
	}
}

func TestAcquirePrefersPermissionFailure(t *testing.T) {
	devices := []Device{{Path: "/dev/video0"}, {Path: "/dev/video1"}, {Path: "/dev/video2"}}
	probe := func(path string) error {
		switch path {
		case "/dev/video0":
			return classifyOpenError(path, errNoEnt)
		case "/dev/video1":
			return classifyOpenError(path, errAccess)
		default:
			return fmt.Errorf("%w: weird", ErrCameraOther)
		}
	}
	a := newTestAcquirer(t, "", probe, nil)
	_, err := a.Acquire(context.Background(), devices)
	if Classify(err) != ReasonPermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestAcquireRejectsLockedDevice(t *testing.T) {
	var releases int
	open := func(_ context.Context, device string, release func()) (Stream, error) {
		return &releasingSource{StaticSource: NewStaticSource(device, frame.Frame{}), release: func() {
			releases++
			release()
		}}, nil
	}
	lockDir := t.TempDir()
	first := &Acquirer{prefs: Preferences{Device: "/dev/video0", LockDir: lockDir}, open: open}
	second := &Acquirer{prefs: Preferences{Device: "/dev/video0", LockDir: lockDir}, open: open}

	stream, err := first.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	_, err = second.Acquire(context.Background(), nil)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while locked, got %v", err)
	}

	_ = stream.Close()
	if releases != 1 {
		t.Fatalf("release ran %d times", releases)
	}
	again, err := second.Acquire(context.Background(), nil)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = again.Close()
}

type releasingSource struct {
	*StaticSource
	release func()
}

func (r *releasingSource) Close() error {
	if r.StaticSource.Closes() == 0 {
		r.release()
	}
	return r.StaticSource.Close()
}
