package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"eduvid/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OLLAMA_BASE_URL",
		"OLLAMA_MODEL",
		"EDUVID_LLM_API_KEY",
		"EDUVID_API_BIND",
		"EDUVID_CAMERA_DEVICE",
		"EDUVID_FINE_CLASSIFIER_URL",
		"EDUVID_COARSE_DETECTOR_URL",
		"EDUVID_CONTENT_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "eduvid")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Content.CatalogPath != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", cfg.Content.CatalogPath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7590" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.SampleInterval() != 700*time.Millisecond {
		t.Fatalf("unexpected sample interval: %s", cfg.SampleInterval())
	}
	if cfg.DebounceDelay() != 1200*time.Millisecond {
		t.Fatalf("unexpected debounce delay: %s", cfg.DebounceDelay())
	}
	if cfg.Recognition.StabilityFrames != 3 {
		t.Fatalf("unexpected stability frames: %d", cfg.Recognition.StabilityFrames)
	}
	if cfg.Recognition.FineThreshold != 0.08 || cfg.Recognition.CoarseThreshold != 0.5 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Recognition)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434" || cfg.LLM.Model != "mistral" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.ContentBaseURL() != "http://127.0.0.1:7590/api/practical" {
		t.Fatalf("unexpected content base url: %q", cfg.ContentBaseURL())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "eduvid.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Camera struct {
			Device string `toml:"device"`
		} `toml:"camera"`
		Recognition struct {
			SampleIntervalMS int `toml:"sample_interval_ms"`
			StabilityFrames  int `toml:"stability_frames"`
		} `toml:"recognition"`
		Classifier struct {
			FineURL string `toml:"fine_url"`
		} `toml:"classifier"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Camera.Device = "/dev/video2"
	custom.Recognition.SampleIntervalMS = 500
	custom.Recognition.StabilityFrames = 5
	custom.Classifier.FineURL = "http://127.0.0.1:8501/"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Camera.Device != "/dev/video2" {
		t.Fatalf("expected device from file, got %q", cfg.Camera.Device)
	}
	if cfg.SampleInterval() != 500*time.Millisecond {
		t.Fatalf("expected 500ms interval, got %s", cfg.SampleInterval())
	}
	if cfg.Recognition.StabilityFrames != 5 {
		t.Fatalf("expected 5 stability frames, got %d", cfg.Recognition.StabilityFrames)
	}
	if cfg.Classifier.FineURL != "http://127.0.0.1:8501" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Classifier.FineURL)
	}
	if cfg.Content.CatalogPath != filepath.Join(tempDir, "data", "catalog.db") {
		t.Fatalf("unexpected catalog path %q", cfg.Content.CatalogPath)
	}
}

func TestEnvOverridesLLMSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434/")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("EDUVID_LLM_API_KEY", "secret")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.BaseURL != "http://gpu-box:11434" {
		t.Errorf("expected base url from env, got %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("expected model from env, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "secret" {
		t.Errorf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	envPath := filepath.Join(tempDir, "eduvid.env")
	if err := os.WriteFile(envPath, []byte("OLLAMA_MODEL=phi3\nEDUVID_CAMERA_DEVICE=/dev/video4\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	configPath := filepath.Join(tempDir, "eduvid.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nenv_file = \""+envPath+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "phi3" {
		t.Fatalf("expected model from env file, got %q", cfg.LLM.Model)
	}
	if cfg.Camera.Device != "/dev/video4" {
		t.Fatalf("expected device from env file, got %q", cfg.Camera.Device)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"interval too small", func(c *config.Config) { c.Recognition.SampleIntervalMS = 10 }, "sample_interval_ms"},
		{"stability frames", func(c *config.Config) { c.Recognition.StabilityFrames = 0 }, "stability_frames"},
		{"fine threshold", func(c *config.Config) { c.Recognition.FineThreshold = 1.5 }, "fine_threshold"},
		{"device path", func(c *config.Config) { c.Camera.Device = "video0" }, "camera.device"},
		{"bind", func(c *config.Config) { c.Paths.APIBind = "nope" }, "api_bind"},
		{"scheme", func(c *config.Config) { c.Classifier.CoarseURL = "ftp://host" }, "classifier.coarse_url"},
		{"fallback scheme", func(c *config.Config) { c.LLM.FallbackURL = "text.example.test" }, "llm.fallback_url"},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	path := filepath.Join(tempDir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Recognition.DebounceMS != 1200 {
		t.Fatalf("unexpected debounce from sample: %d", cfg.Recognition.DebounceMS)
	}
}
