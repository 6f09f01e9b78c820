// Package recognition holds the live recognition loop primitives: label
// normalization, the recognizer ports and adapters (single model or a fine
// classifier paired with a coarse detector), the frame sampler, the stability
// filter that turns noisy per-frame labels into a confirmed subject, and the
// debouncer that gates content fetches.
//
// None of these types know about sessions or the content API; the session
// package composes them.
package recognition
