// Package middleware provides the HTTP middleware chain: W3C access
// logging, Prometheus metrics, gzip compression and CORS headers.
package middleware
