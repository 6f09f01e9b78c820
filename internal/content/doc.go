// Package content serves the educational side of practical mode: feature
// cards and quiz questions for a recognized object.
//
// Service answers from the catalog and falls back to LLM-generated cards for
// objects the catalog does not know. Client speaks to a Service exposed over
// HTTP. Both satisfy Provider, the port the live session uses.
package content
