package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eduvid/internal/camera"
	"eduvid/internal/classify"
	"eduvid/internal/config"
	"eduvid/internal/content"
	"eduvid/internal/recognition"
	"eduvid/internal/services"
	"eduvid/internal/services/llm"
	"eduvid/internal/session"
)

// AcquireFunc opens the camera for one session.
type AcquireFunc func(ctx context.Context) (camera.Stream, error)

// NewRecognizer builds the recognizer described by cfg.Classifier: the
// fine/coarse pair when both URLs are set, otherwise whichever one is.
func NewRecognizer(cfg *config.Config) (recognition.Recognizer, error) {
	timeout := classify.WithTimeout(cfg.ClassifierTimeout())
	fineURL, coarseURL := cfg.Classifier.FineURL, cfg.Classifier.CoarseURL
	switch {
	case fineURL != "" && coarseURL != "":
		return recognition.Pair{
			Fine:            classify.NewHTTPClassifier(fineURL, timeout),
			Coarse:          classify.NewHTTPDetector(coarseURL, timeout),
			FineThreshold:   cfg.Recognition.FineThreshold,
			CoarseThreshold: cfg.Recognition.CoarseThreshold,
		}, nil
	case fineURL != "":
		return recognition.ClassifierRecognizer{
			Model:     classify.NewHTTPClassifier(fineURL, timeout),
			Threshold: cfg.Recognition.FineThreshold,
		}, nil
	case coarseURL != "":
		return recognition.DetectorRecognizer{
			Model:     classify.NewHTTPDetector(coarseURL, timeout),
			Threshold: cfg.Recognition.CoarseThreshold,
		}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "daemon", "recognizer",
			"set classifier.fine_url or classifier.coarse_url", nil)
	}
}

// NewAcquire returns the camera opener for cfg. A frames directory replays
// stills; otherwise devices are discovered and acquired in preference order.
func NewAcquire(cfg *config.Config, logger *slog.Logger) AcquireFunc {
	if dir := cfg.Camera.FramesDir; dir != "" {
		interval := frameInterval(cfg.Camera.Framerate)
		return func(context.Context) (camera.Stream, error) {
			src, err := camera.NewDirectorySource(dir, interval)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", camera.ErrNoDevice, err)
			}
			return src, nil
		}
	}

	acquirer := camera.NewAcquirer(camera.Preferences{
		Device: cfg.Camera.Device,
		Capture: camera.CaptureOptions{
			FFmpegBinary: cfg.Camera.FFmpegBinary,
			Width:        cfg.Camera.Width,
			Height:       cfg.Camera.Height,
			Framerate:    cfg.Camera.Framerate,
		},
		Logger: logger,
	})
	return func(ctx context.Context) (camera.Stream, error) {
		devices, err := camera.Discover(camera.DefaultSysfsRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", camera.ErrCameraOther, err)
		}
		return acquirer.Acquire(ctx, devices)
	}
}

func frameInterval(framerate int) time.Duration {
	if framerate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(framerate)
}

// NewContentService builds the catalog-backed content service, with LLM
// generation for uncatalogued objects when enabled. A configured
// llm.fallback_url is tried after the local server.
func NewContentService(cfg *config.Config, cat content.Catalog, logger *slog.Logger) *content.Service {
	var generator content.Generator
	if client := llm.NewClientFrom(cfg.LLM); client != nil {
		generator = client
	}
	var opts []content.ServiceOption
	if fallback := llm.NewChatClientFrom(cfg.LLM); fallback != nil {
		opts = append(opts, content.WithFallbackGenerator(fallback))
	}
	return content.NewService(cat, generator, logger, opts...)
}

// NewProvider picks the content source sessions talk to: a remote content API
// when content.base_url is set, else the in-process service.
func NewProvider(cfg *config.Config, svc *content.Service) content.Provider {
	if cfg.Content.BaseURL != "" {
		return content.NewClient(cfg.Content.BaseURL, cfg.ContentTimeout())
	}
	return content.Local{Service: svc}
}

// SessionOptions assembles the options for one live session.
func SessionOptions(cfg *config.Config, rec recognition.Recognizer, acquire AcquireFunc, provider content.Provider, sightings session.SightingRecorder, logger *slog.Logger) session.Options {
	return session.Options{
		SampleInterval:  cfg.SampleInterval(),
		StabilityFrames: cfg.Recognition.StabilityFrames,
		Debounce:        cfg.DebounceDelay(),
		ContentTimeout:  cfg.ContentTimeout(),
		Recognizer:      rec,
		Acquire:         acquire,
		Content:         provider,
		Sightings:       sightings,
		Logger:          logger,
	}
}
