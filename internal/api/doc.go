// Package api exposes eduvid over HTTP.
//
// The router serves two groups of routes. /api/practical answers content
// requests from the catalog (features, quizzes, answer checks and the object
// listing) and is what content.Client talks to. /api/session drives the live
// recognition session owned by the daemon: snapshots, quiz and feature panel
// actions, a websocket event stream and the annotated camera frame. /api/logs
// tails the daemon's structured log buffer.
package api
