// Package settings persists the grid UI preferences served at /api/config.
//
// Settings live in a small JSON file. A missing file means the defaults; a
// save is validated first and replaces the file atomically.
package settings
