// Package config loads, normalizes, and validates eduvid configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file, and honours environment
// fallbacks such as OLLAMA_BASE_URL. The Config type centralizes every knob the
// daemon and CLI need so camera, model, and content settings are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
