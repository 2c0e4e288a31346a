// Package logging assembles structured slog loggers and formatting helpers used
// across ciff.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context helpers so pipeline code can tag log lines with the run ID
// and the sample being processed. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
