// Package report renders ranked predictions: the per-input CSV, the console
// summary and table, the comparison plot, and the run manifest.
package report
