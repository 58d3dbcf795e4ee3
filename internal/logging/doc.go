// Package logging provides a simple leveled logging interface for the
// tag library and its tooling.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (compiled SQL, bound tag ids)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true. Messages are written through a zap
// sugared logger; LOG_FORMAT=json selects structured JSON output, anything
// else the human-readable console encoder.
package logging
