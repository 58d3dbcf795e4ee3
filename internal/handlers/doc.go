// Package handlers provides the HTTP endpoints of the tagctl metrics
// exporter: Prometheus metrics, health and readiness probes, and build
// version.
package handlers
