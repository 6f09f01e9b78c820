// Package main hosts the eduvid CLI.
//
// The cobra command tree runs the daemon (serve), a terminal recognition
// session (practice), device discovery, catalog inspection, configuration
// scaffolding and environment checks. Wiring of recognizers, cameras and
// content providers lives in internal/daemon so both long-running modes
// build the same parts.
package main
