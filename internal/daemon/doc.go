// Package daemon hosts the long-running eduvid process.
//
// It holds a flock-based instance lock, serves the HTTP API, watches udev for
// camera removal and owns at most one live recognition session at a time.
// Construction of the recognizer, camera acquisition and content provider
// from configuration lives in wiring.go so the CLI can build the same parts
// for terminal sessions.
package daemon
