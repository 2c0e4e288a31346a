// Package pipeline runs a prediction over one curve file or a directory of
// them.
//
// Run resolves the input, creates the results directory, then streams the
// curves one at a time: each is classified, ranked, summarised on the
// console, optionally re-scored against the reference bank and plotted, and
// written out as a CSV. A manifest describing every input is written when
// the run ends, including runs aborted by a failing input.
package pipeline
