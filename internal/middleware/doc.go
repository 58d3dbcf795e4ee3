// Package middleware provides HTTP middleware for the tagctl metrics
// exporter.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by gorilla/mux route template
//   - Configurable filtering for health checks
package middleware
