package camera

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where the kernel lists video4linux nodes.
const DefaultSysfsRoot = "/sys/class/video4linux"

// Facing describes which way a camera points relative to the user.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
	FacingUnknown     Facing = "unknown"
)

// Device is one capture node.
type Device struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Index  int    `json:"index"`
	Facing Facing `json:"facing"`
}

// Discover lists capture devices under root (DefaultSysfsRoot when empty).
// Metadata nodes (index > 0) are skipped since they cannot stream frames. A
// missing root yields no devices and no error.
func Discover(root string) ([]Device, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultSysfsRoot
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("camera: list %s: %w", root, err)
	}

	devices := make([]Device, 0, len(entries))
	for _, entry := range entries {
		node := entry.Name()
		if !strings.HasPrefix(node, "video") {
			continue
		}
		dir := filepath.Join(root, node)
		if idx, ok := readInt(filepath.Join(dir, "index")); ok && idx != 0 {
			continue
		}
		name := readTrimmed(filepath.Join(dir, "name"))
		devices = append(devices, Device{
			Path:   "/dev/" + node,
			Name:   name,
			Index:  nodeNumber(node),
			Facing: FacingFromName(name),
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Index < devices[j].Index })
	return devices, nil
}

// FacingFromName guesses the facing of a camera from its driver name.
func FacingFromName(name string) Facing {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "back", "rear", "world", "environment", "document", "usb camera", "hd pro webcam c9"):
		return FacingEnvironment
	case containsAny(lower, "front", "user", "integrated", "facetime", "built-in", "ir camera"):
		return FacingUser
	default:
		return FacingUnknown
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readInt(path string) (int, bool) {
	value := readTrimmed(path)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

func nodeNumber(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(node, "video"))
	if err != nil {
		return -1
	}
	return n
}
