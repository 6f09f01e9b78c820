package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCamera(); err != nil {
		return err
	}
	c.normalizeRecognition()
	c.normalizeClassifier()
	if err := c.normalizeContent(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if value, ok := os.LookupEnv("EDUVID_API_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIBind = strings.TrimSpace(value)
	}
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeCamera() error {
	var err error
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	if c.Camera.Device == "" {
		if value, ok := os.LookupEnv("EDUVID_CAMERA_DEVICE"); ok {
			c.Camera.Device = strings.TrimSpace(value)
		}
	}
	if c.Camera.Width <= 0 {
		c.Camera.Width = defaultCameraWidth
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = defaultCameraHeight
	}
	if c.Camera.Framerate <= 0 {
		c.Camera.Framerate = defaultCameraFramerate
	}
	c.Camera.FFmpegBinary = strings.TrimSpace(c.Camera.FFmpegBinary)
	if c.Camera.FFmpegBinary == "" {
		c.Camera.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Camera.FramesDir, err = expandPath(strings.TrimSpace(c.Camera.FramesDir)); err != nil {
		return fmt.Errorf("camera.frames_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecognition() {
	if c.Recognition.SampleIntervalMS == 0 {
		c.Recognition.SampleIntervalMS = defaultSampleIntervalMS
	}
	if c.Recognition.StabilityFrames == 0 {
		c.Recognition.StabilityFrames = defaultStabilityFrames
	}
	if c.Recognition.DebounceMS == 0 {
		c.Recognition.DebounceMS = defaultDebounceMS
	}
}

func (c *Config) normalizeClassifier() {
	c.Classifier.FineURL = strings.TrimRight(strings.TrimSpace(c.Classifier.FineURL), "/")
	if c.Classifier.FineURL == "" {
		if value, ok := os.LookupEnv("EDUVID_FINE_CLASSIFIER_URL"); ok {
			c.Classifier.FineURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Classifier.CoarseURL = strings.TrimRight(strings.TrimSpace(c.Classifier.CoarseURL), "/")
	if c.Classifier.CoarseURL == "" {
		if value, ok := os.LookupEnv("EDUVID_COARSE_DETECTOR_URL"); ok {
			c.Classifier.CoarseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaultClassifierTimeout
	}
}

func (c *Config) normalizeContent() error {
	var err error
	c.Content.BaseURL = strings.TrimRight(strings.TrimSpace(c.Content.BaseURL), "/")
	if c.Content.BaseURL == "" {
		if value, ok := os.LookupEnv("EDUVID_CONTENT_URL"); ok {
			c.Content.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Content.TimeoutSeconds <= 0 {
		c.Content.TimeoutSeconds = defaultContentTimeout
	}
	if strings.TrimSpace(c.Content.CatalogPath) == "" {
		c.Content.CatalogPath = filepath.Join(c.Paths.DataDir, defaultCatalogFile)
	}
	if c.Content.CatalogPath, err = expandPath(c.Content.CatalogPath); err != nil {
		return fmt.Errorf("content.catalog_path: %w", err)
	}
	return nil
}

// ContentBaseURL returns the content API root, defaulting to the local daemon.
func (c *Config) ContentBaseURL() string {
	if c.Content.BaseURL != "" {
		return c.Content.BaseURL
	}
	return "http://" + c.Paths.APIBind + defaultContentBasePathSuffix
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("EDUVID_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if value, ok := os.LookupEnv("OLLAMA_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if value, ok := os.LookupEnv("OLLAMA_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.Model = strings.TrimSpace(value)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.FallbackURL = strings.TrimSpace(c.LLM.FallbackURL)
	c.LLM.FallbackModel = strings.TrimSpace(c.LLM.FallbackModel)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
