// Package testsupport holds shared fixtures for package tests: temp-directory
// configs, a seeded catalog, JPEG frames and a scripted recognizer.
package testsupport
