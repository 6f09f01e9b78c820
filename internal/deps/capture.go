package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// CheckFFmpegCapture resolves the ffmpeg binary used for camera capture and
// confirms its build lists the video4linux2 input device.
func CheckFFmpegCapture(ctx context.Context, binary string) Status {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	status := check(Requirement{
		Name:        "FFmpeg",
		Command:     binary,
		Description: "Required for live camera capture",
	})
	if !status.Available {
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, status.Command, "-hide_banner", "-devices").Output()
	if err != nil {
		status.Available = false
		status.Detail = "ffmpeg -devices failed: " + err.Error()
		return status
	}
	if !hasV4L2(out) {
		status.Available = false
		status.Detail = "ffmpeg build lacks the v4l2 input device"
	}
	return status
}

// hasV4L2 scans `ffmpeg -devices` output for a demuxing v4l2 entry, e.g.
// " D  video4linux2,v4l2 Video4Linux2 output device".
func hasV4L2(out []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.Contains(fields[0], "D") {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			if name == "v4l2" || name == "video4linux2" {
				return true
			}
		}
	}
	return false
}
