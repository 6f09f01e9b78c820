package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeScript(t, t.TempDir(), "present", "exit 0")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Command != present || results[0].Detail != "" {
		t.Fatalf("unexpected present status %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected missing status %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected blank status %#v", results[2])
	}
}

func TestCheckFFmpegCapture(t *testing.T) {
	dir := t.TempDir()
	withV4L2 := writeScript(t, dir, "ffmpeg-v4l2", `cat <<'OUT'
Devices:
 D. = Demuxing supported
 .E = Muxing supported
 --
 DE alsa            ALSA audio output
 D  video4linux2,v4l2 Video4Linux2 device grab
OUT`)
	without := writeScript(t, dir, "ffmpeg-bare", `echo "Devices:"; echo " DE alsa ALSA audio output"`)
	outputOnly := writeScript(t, dir, "ffmpeg-out", `echo " E  video4linux2,v4l2 Video4Linux2 output device"`)
	failing := writeScript(t, dir, "ffmpeg-broken", "exit 3")

	ctx := context.Background()
	if status := CheckFFmpegCapture(ctx, withV4L2); !status.Available {
		t.Fatalf("expected capture support, got %q", status.Detail)
	}
	for _, bin := range []string{without, outputOnly, failing} {
		status := CheckFFmpegCapture(ctx, bin)
		if status.Available || status.Detail == "" {
			t.Fatalf("%s: expected failure, got %#v", filepath.Base(bin), status)
		}
	}

	t.Setenv("PATH", "")
	if status := CheckFFmpegCapture(ctx, ""); status.Available || status.Command != "ffmpeg" {
		t.Fatalf("expected default ffmpeg to be missing, got %#v", status)
	}
}
