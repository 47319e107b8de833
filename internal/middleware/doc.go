// Package middleware provides HTTP middleware for the video grid server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - gzip compression for JSON and text responses
//
// Video and thumbnail responses are never compressed, and their paths are
// collapsed in metrics labels.
package middleware
