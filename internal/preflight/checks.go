package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"eduvid/internal/camera"
	"eduvid/internal/classify"
	"eduvid/internal/config"
	"eduvid/internal/content"
	"eduvid/internal/deps"
	"eduvid/internal/services/llm"
)

const checkTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCamera confirms a frame source exists: the replay directory when one
// is configured, otherwise at least one capture device.
func CheckCamera(cfg *config.Config) Result {
	const name = "Camera"
	if cfg.Camera.FramesDir != "" {
		src, err := camera.NewDirectorySource(cfg.Camera.FramesDir, time.Second)
		if err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		defer src.Close()
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("replaying %d frames from %s", src.Len(), cfg.Camera.FramesDir)}
	}
	return checkDevices(name, camera.DefaultSysfsRoot, cfg.Camera.Device)
}

func checkDevices(name, root, preferred string) Result {
	devices, err := camera.Discover(root)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(devices) == 0 {
		return Result{Name: name, Detail: camera.UserMessage(camera.ErrNoDevice)}
	}
	order := camera.Candidates(devices, preferred)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d device(s), first choice %s", len(devices), order[0])}
}

// CheckFFmpeg verifies the capture binary supports v4l2.
func CheckFFmpeg(ctx context.Context, binary string) Result {
	status := deps.CheckFFmpegCapture(ctx, binary)
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}

// CheckClassifiers probes the health endpoint of each configured model.
func CheckClassifiers(ctx context.Context, cfg *config.Config) []Result {
	timeout := classify.WithTimeout(cfg.ClassifierTimeout())
	var results []Result
	if cfg.Classifier.FineURL != "" {
		results = append(results, probe(ctx, "Fine classifier", cfg.Classifier.FineURL,
			classify.NewHTTPClassifier(cfg.Classifier.FineURL, timeout).Load))
	}
	if cfg.Classifier.CoarseURL != "" {
		results = append(results, probe(ctx, "Coarse detector", cfg.Classifier.CoarseURL,
			classify.NewHTTPDetector(cfg.Classifier.CoarseURL, timeout).Load))
	}
	if len(results) == 0 {
		results = append(results, Result{Name: "Classifier", Detail: "no classifier configured (set classifier.fine_url or classifier.coarse_url)"})
	}
	return results
}

func probe(ctx context.Context, name, url string, load func(context.Context) error) Result {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := load(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: url + " healthy"}
}

// CheckLLM verifies the generation server answers and lists models.
func CheckLLM(ctx context.Context, settings config.LLM) Result {
	const name = "LLM"
	client := llm.NewClientFrom(settings, llm.WithRetryMaxAttempts(1))
	if client == nil {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if !client.Available(ctx) {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable; uncatalogued objects get the generic card", settings.BaseURL)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s reachable", client.Model())}
}

// CheckContentAPI verifies a remote content API answers the objects listing.
func CheckContentAPI(ctx context.Context, baseURL string) Result {
	const name = "Content API"
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	listing, err := content.NewClient(baseURL, checkTimeout).Objects(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d catalogued objects", len(listing.DetectableObjects))}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out"
	}
	return err.Error()
}
