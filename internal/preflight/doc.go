// Package preflight provides readiness checks for the files and directories
// a prediction run depends on.
//
// The CLI "ciff doctor" command runs RunAll and prints one line per check.
// Checks for optional features are skipped when the feature is disabled.
package preflight
