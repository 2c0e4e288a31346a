package testsupport

import (
	"context"
	"fmt"

	"ciff/internal/curve"
	"ciff/internal/refbank"
)

// FakeClassifier returns fixed probabilities and records every call.
type FakeClassifier struct {
	Probs  []float64
	Calls  int
	Closed bool
	Err    error
}

// NewFakeClassifier builds a classifier that always returns probs.
func NewFakeClassifier(probs []float64) *FakeClassifier {
	return &FakeClassifier{Probs: probs}
}

func (f *FakeClassifier) Predict(features []float64) ([]float64, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if len(features) != curve.GridPoints {
		return nil, fmt.Errorf("fake classifier: expected %d features, got %d", curve.GridPoints, len(features))
	}
	out := make([]float64, len(f.Probs))
	copy(out, f.Probs)
	return out, nil
}

func (f *FakeClassifier) Classes() int { return len(f.Probs) }

func (f *FakeClassifier) Name() string { return "fake" }

func (f *FakeClassifier) Close() error {
	f.Closed = true
	return nil
}

// FakeBank serves reference curves from memory and counts lookups.
type FakeBank struct {
	Curves  map[string][]refbank.Reference
	Lookups []string
}

// References returns the curves stored for label.
func (b *FakeBank) References(_ context.Context, label string) ([]refbank.Reference, error) {
	b.Lookups = append(b.Lookups, label)
	return b.Curves[label], nil
}
