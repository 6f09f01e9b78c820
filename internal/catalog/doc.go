// Package catalog stores the educational content served for recognized
// objects: feature cards, quiz questions and the history of confirmed
// sightings.
//
// The catalog is a single SQLite file (modernc.org/sqlite, no cgo). On first
// open the embedded seed is loaded so a fresh install answers for the common
// household objects out of the box.
package catalog
