// Package refbank stores reference curves used to re-score classifier
// candidates.
//
// Curves live in a SQLite database keyed by catalog ID. Every curve is
// resampled onto the model grid at import time so lookups can be compared
// point for point with an input's feature vector. Arrays are stored as
// msgpack blobs. Lookups are cached per label for the lifetime of a Store.
package refbank
