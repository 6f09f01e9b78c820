package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateRecognition(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Device != "" && !strings.HasPrefix(c.Camera.Device, "/dev/") {
		return fmt.Errorf("camera.device must be a /dev path, got %q", c.Camera.Device)
	}
	return ensurePositiveMap(map[string]int{
		"camera.width":     c.Camera.Width,
		"camera.height":    c.Camera.Height,
		"camera.framerate": c.Camera.Framerate,
	})
}

func (c *Config) validateRecognition() error {
	r := c.Recognition
	if r.SampleIntervalMS < minSampleIntervalMS || r.SampleIntervalMS > maxSampleIntervalMS {
		return fmt.Errorf("recognition.sample_interval_ms must be between %d and %d", minSampleIntervalMS, maxSampleIntervalMS)
	}
	if r.StabilityFrames < 1 {
		return errors.New("recognition.stability_frames must be >= 1")
	}
	if r.FineThreshold < 0 || r.FineThreshold > 1 {
		return errors.New("recognition.fine_threshold must be between 0 and 1")
	}
	if r.CoarseThreshold < 0 || r.CoarseThreshold > 1 {
		return errors.New("recognition.coarse_threshold must be between 0 and 1")
	}
	if r.DebounceMS < 0 {
		return errors.New("recognition.debounce_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	for key, value := range map[string]string{
		"classifier.fine_url":   c.Classifier.FineURL,
		"classifier.coarse_url": c.Classifier.CoarseURL,
		"content.base_url":      c.Content.BaseURL,
		"llm.base_url":          c.LLM.BaseURL,
		"llm.fallback_url":      c.LLM.FallbackURL,
	} {
		if value == "" {
			continue
		}
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must use http or https, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
