// Package classifier runs the pre-trained structure classifier. A model maps
// one resampled curve to a probability per catalog entry.
package classifier

import (
	"fmt"
	"io/fs"
	"strings"

	"ciff/internal/config"
	"ciff/internal/curve"
)

// Classifier scores one feature vector against every class.
type Classifier interface {
	// Predict returns one probability per class.
	Predict(features []float64) ([]float64, error)
	// Classes is the number of output classes.
	Classes() int
	// Name identifies the loaded model in logs and manifests.
	Name() string
	Close() error
}

// Options selects the model artifact and backend.
type Options struct {
	Backend string
	// File is the model file name inside the asset filesystem.
	File    string
	Threads int
	// Features is the expected input width; zero means curve.GridPoints.
	Features int

	ONNXRuntimeLibrary string
	ONNXInputName      string
	ONNXOutputName     string
}

// OptionsFromConfig maps the [model] section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Backend:            cfg.Model.Backend,
		File:               cfg.Model.File,
		Threads:            cfg.Model.Threads,
		ONNXRuntimeLibrary: cfg.Model.ONNXRuntimeLibrary,
		ONNXInputName:      cfg.Model.ONNXInputName,
		ONNXOutputName:     cfg.Model.ONNXOutputName,
	}
}

// Open loads the model named by opts.File from fsys.
func Open(fsys fs.FS, opts Options) (Classifier, error) {
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	if opts.Features <= 0 {
		opts.Features = curve.GridPoints
	}
	if strings.TrimSpace(opts.File) == "" {
		return nil, fmt.Errorf("classifier: model file not set")
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", config.BackendXGBoost:
		return openXGBoost(fsys, opts)
	case config.BackendONNX:
		return openONNX(fsys, opts)
	default:
		return nil, fmt.Errorf("classifier: unsupported backend %q", opts.Backend)
	}
}

func checkWidth(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: expected %d features, got %d", name, want, got)
	}
	return nil
}
