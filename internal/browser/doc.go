// Package browser models one cell of the video grid: a directory listing
// that can be searched and can play a video in place.
//
// The cell's mode is an explicit State value (Listing, Searching or
// Playing) moved between by pure transition functions. Cell holds the
// state plus the data needed to render it and derives a View on demand.
// Mixer applies the grid-wide audio rule that at most one playing video is
// audible.
package browser
