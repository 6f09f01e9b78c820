// Package overlay draws recognition results onto camera frames.
//
// Layout turns per-frame results into clamped label rectangles with caption
// positions; Render paints them onto a decoded frame and re-encodes it as
// JPEG. The confirmed subject is drawn in the primary colour, everything else
// in the secondary colour. Results without geometry produce a caption banner
// in the top-left corner instead of a box.
package overlay
