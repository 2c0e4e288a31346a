// Package curve loads pair distribution function data from text files and
// turns it into the fixed-length feature vector the structure classifier
// expects.
//
// A curve file holds whitespace-separated numeric columns: r in the first
// column and G(r) in the second. Files may start with an unknown number of
// header lines; Load retries with an increasing skip count until the rest of
// the file parses as a numeric table. Loaded curves must start at r = 0 and
// reach at least r = 30. Prepare scales G(r) to a peak of 1 and resamples it
// with linear interpolation onto the grid 0.0, 0.1, ..., 30.0.
package curve
