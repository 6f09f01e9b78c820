// Package llm provides a small client for an Ollama-compatible text
// generation API.
//
// The content service uses it to write feature cards for objects that are not
// in the prebuilt catalog.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Available: quick reachability probe (GET /api/tags).
// Client.Generate: send system/user prompts, receive cleaned text.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty responses and network
// timeouts with exponential backoff (base 1s, max 10s, up to 3 attempts by
// default). Context cancellation aborts retries immediately.
//
// # Fallback
//
// If the LLM is unavailable or returns an error, callers fall back to static
// content.
package llm
