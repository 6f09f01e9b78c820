// Package services defines shared utilities consumed by the recognition
// session and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stages, subjects, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     permanent failures (validation, not found) from transient ones.
//
// Use these helpers when wiring new integrations so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
