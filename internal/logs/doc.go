// Package logs reads daemon logs for the CLI: the buffered event stream
// served on /api/logs, and the eduvid.log file when the daemon is down.
package logs
