// Package middleware holds the gin middleware shared by every route: CORS,
// per-client rate limiting and gzip compression.
package middleware
