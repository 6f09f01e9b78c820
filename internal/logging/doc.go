// Package logging assembles structured slog loggers and formatting helpers used
// across eduvid.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so session code can tag log lines
// with session IDs, stages, and subjects. The package also provides the
// bounded Hub used for log tailing and session event streams, a sampler for
// noisy per-tick warnings, and a no-op logger for tests.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
