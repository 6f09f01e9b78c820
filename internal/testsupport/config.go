package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"eduvid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// LLM generation is disabled and the API binds to an ephemeral port.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Paths.EnvFile = ""
	cfgVal.Content.CatalogPath = filepath.Join(base, "data", "catalog.db")
	cfgVal.Camera.WatchHotplug = false
	cfgVal.LLM.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLLM enables generation against the given Ollama-compatible server.
func WithLLM(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Enabled = true
		b.cfg.LLM.BaseURL = baseURL
	}
}

// WithLLMFallback enables generation with a chat fallback endpoint behind the
// Ollama-compatible server.
func WithLLMFallback(baseURL, fallbackURL string) ConfigOption {
	return func(b *configBuilder) {
		WithLLM(baseURL)(b)
		b.cfg.LLM.FallbackURL = fallbackURL
	}
}

// WithClassifiers points the fine and coarse models at the given servers.
func WithClassifiers(fineURL, coarseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classifier.FineURL = fineURL
		b.cfg.Classifier.CoarseURL = coarseURL
	}
}

// WithFrames writes count JPEG stills into a frames directory and points the
// camera at it.
func WithFrames(count int) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "frames")
		for i := 0; i < count; i++ {
			WriteJPEG(b.t, filepath.Join(dir, frameName(i)), uint8(i*40))
		}
		b.cfg.Camera.FramesDir = dir
	}
}

func frameName(i int) string {
	return "frame-" + string(rune('a'+i%26)) + ".jpg"
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
