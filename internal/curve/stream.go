package curve

import (
	"iter"

	"ciff/internal/input"
)

// Sample is one prepared input curve.
type Sample struct {
	Name        string
	Path        string
	HeaderLines int
	// Curve is the loaded curve scaled to a peak of 1.
	Curve    Curve
	Features Features
}

// ReadSample loads and prepares the curve file at path.
func ReadSample(path string) (Sample, error) {
	sample := Sample{Name: input.Stem(path), Path: path}
	loaded, err := Load(path)
	if err != nil {
		return sample, err
	}
	sample.HeaderLines = loaded.HeaderLines
	features, normalized, err := Prepare(loaded.Curve)
	if err != nil {
		return sample, err
	}
	sample.Curve = normalized
	sample.Features = features
	return sample, nil
}

// Stream lazily reads paths in order. A failed file yields a Sample carrying
// only Name and Path together with the error; the consumer decides whether to
// keep ranging.
func Stream(paths []string) iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		for _, path := range paths {
			if !yield(ReadSample(path)) {
				return
			}
		}
	}
}
