package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
	EnvFile string `toml:"env_file"`
}

// Camera contains capture device settings.
type Camera struct {
	// Device pins a specific /dev/videoN node. Empty means "pick by facing".
	Device       string `toml:"device"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Framerate    int    `toml:"framerate"`
	FFmpegBinary string `toml:"ffmpeg_binary"`
	// FramesDir replays still images instead of opening a device.
	FramesDir string `toml:"frames_dir"`
	// WatchHotplug enables netlink monitoring for device removal.
	WatchHotplug bool `toml:"watch_hotplug"`
}

// Recognition contains the sampling and smoothing knobs of the live loop.
type Recognition struct {
	SampleIntervalMS int     `toml:"sample_interval_ms"`
	StabilityFrames  int     `toml:"stability_frames"`
	FineThreshold    float64 `toml:"fine_threshold"`
	CoarseThreshold  float64 `toml:"coarse_threshold"`
	DebounceMS       int     `toml:"debounce_ms"`
}

// Classifier contains the endpoints of the image models.
type Classifier struct {
	FineURL        string `toml:"fine_url"`
	CoarseURL      string `toml:"coarse_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Content contains the educational content API settings.
type Content struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CatalogPath    string `toml:"catalog_path"`
}

// LLM contains the text generation settings used for uncatalogued objects.
type LLM struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	FallbackURL    string `toml:"fallback_url"`
	FallbackModel  string `toml:"fallback_model"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for eduvid.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories, API bind address and .env location
//   - Camera: capture device, resolution and ffmpeg binary
//   - Recognition: sampling cadence, stability and debounce windows
//   - Classifier: fine and coarse model endpoints
//   - Content: educational content API and local catalog
//   - LLM: text generation for objects missing from the catalog
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Camera      Camera      `toml:"camera"`
	Recognition Recognition `toml:"recognition"`
	Classifier  Classifier  `toml:"classifier"`
	Content     Content     `toml:"content"`
	LLM         LLM         `toml:"llm"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/eduvid/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFile reads KEY=value pairs into the process environment. Variables
// that are already set win over the file.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("eduvid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Content.CatalogPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the daemon single-instance lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "eduvid.lock")
}

// SampleInterval returns the recognition tick period.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Recognition.SampleIntervalMS) * time.Millisecond
}

// DebounceDelay returns the content fetch debounce window.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Recognition.DebounceMS) * time.Millisecond
}

// ClassifierTimeout returns the per-request model timeout.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// ContentTimeout returns the per-request content API timeout.
func (c *Config) ContentTimeout() time.Duration {
	return time.Duration(c.Content.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
