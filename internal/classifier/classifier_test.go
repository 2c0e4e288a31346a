package classifier_test

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"ciff/internal/classifier"
	"ciff/internal/config"
	"ciff/internal/testsupport"
)

func TestOpenRejectsBadOptions(t *testing.T) {
	fsys := fstest.MapFS{
		"model.bin": {Data: []byte("definitely not an xgboost model")},
	}
	cases := []struct {
		name string
		opts classifier.Options
		want string
	}{
		{name: "unknown backend", opts: classifier.Options{Backend: "lightgbm", File: "model.bin"}, want: "unsupported backend"},
		{name: "no file", opts: classifier.Options{Backend: config.BackendXGBoost}, want: "model file not set"},
		{name: "corrupt xgboost", opts: classifier.Options{Backend: config.BackendXGBoost, File: "model.bin"}, want: "load xgboost model"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := classifier.Open(fsys, tc.opts)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestOpenMissingModelFile(t *testing.T) {
	for _, backend := range []string{config.BackendXGBoost, config.BackendONNX} {
		t.Run(backend, func(t *testing.T) {
			_, err := classifier.Open(fstest.MapFS{}, classifier.Options{Backend: backend, File: "absent.bin"})
			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("expected fs.ErrNotExist, got %v", err)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Model.Backend = config.BackendONNX
	cfg.Model.Threads = 3

	opts := classifier.OptionsFromConfig(cfg)
	if opts.Backend != config.BackendONNX || opts.Threads != 3 || opts.File != cfg.Model.File {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.ONNXInputName != "input" || opts.ONNXOutputName != "probabilities" {
		t.Fatalf("unexpected onnx names: %+v", opts)
	}
}

func TestFakeClassifierSatisfiesInterface(t *testing.T) {
	var c classifier.Classifier = testsupport.NewFakeClassifier([]float64{0.2, 0.8})
	probs, err := c.Predict(make([]float64, 301))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(probs) != c.Classes() || probs[1] != 0.8 {
		t.Fatalf("unexpected probabilities %v", probs)
	}
}

func TestXGBoostPredictsClassProbabilities(t *testing.T) {
	c, err := classifier.Open(os.DirFS("testdata"), classifier.Options{
		Backend: config.BackendXGBoost,
		File:    "softprob_3class.model",
		Threads: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if c.Classes() != 3 {
		t.Fatalf("expected 3 classes, got %d", c.Classes())
	}

	cases := []struct {
		name string
		hot  int
		want int
	}{
		{name: "flat curve", hot: -1, want: 2},
		{name: "peak at feature 10", hot: 10, want: 0},
		{name: "peak at feature 200", hot: 200, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			features := make([]float64, 301)
			if tc.hot >= 0 {
				features[tc.hot] = 1
			}
			probs, err := c.Predict(features)
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}
			if len(probs) != c.Classes() {
				t.Fatalf("expected %d probabilities, got %v", c.Classes(), probs)
			}
			sum, best := 0.0, 0
			for i, p := range probs {
				if p <= 0 || p >= 1 {
					t.Fatalf("probability out of range: %v", probs)
				}
				sum += p
				if p > probs[best] {
					best = i
				}
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Fatalf("probabilities sum to %v: %v", sum, probs)
			}
			if best != tc.want {
				t.Fatalf("expected class %d to win, got %d: %v", tc.want, best, probs)
			}
		})
	}

	if _, err := c.Predict(make([]float64, 300)); err == nil || !strings.Contains(err.Error(), "expected 301 features") {
		t.Fatalf("expected width error, got %v", err)
	}
}

func TestXGBoostRejectsFeatureMismatch(t *testing.T) {
	_, err := classifier.Open(os.DirFS("testdata"), classifier.Options{
		Backend:  config.BackendXGBoost,
		File:     "softprob_3class.model",
		Features: 150,
	})
	if err == nil || !strings.Contains(err.Error(), "expects 301 features") {
		t.Fatalf("expected feature mismatch error, got %v", err)
	}
}
