// Package handlers provides HTTP request handlers for the video grid API.
//
// It includes handlers for:
//   - The flattened catalog and single directory listings
//   - Video streaming and thumbnails
//   - Fuzzy name suggestions
//   - Persisted grid settings
//   - Health checks and build information
package handlers
