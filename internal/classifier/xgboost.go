package classifier

import (
	"bufio"
	"fmt"
	"io/fs"
	"math"

	"github.com/dmitryikh/leaves"
	"gonum.org/v1/gonum/floats"
)

type xgboostModel struct {
	ensemble *leaves.Ensemble
	file     string
	threads  int
}

func openXGBoost(fsys fs.FS, opts Options) (*xgboostModel, error) {
	f, err := fsys.Open(opts.File)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	// leaves only knows the binary:logistic transform, so multi-class models
	// are loaded as raw margins and softmaxed in Predict.
	ensemble, err := leaves.XGEnsembleFromReader(bufio.NewReader(f), false)
	if err != nil {
		return nil, fmt.Errorf("load xgboost model %s: %w", opts.File, err)
	}
	if n := ensemble.NFeatures(); n != opts.Features {
		return nil, fmt.Errorf("xgboost model %s expects %d features, curves provide %d", opts.File, n, opts.Features)
	}
	if ensemble.NOutputGroups() < 2 {
		return nil, fmt.Errorf("xgboost model %s has %d output group, want a multi-class model", opts.File, ensemble.NOutputGroups())
	}
	return &xgboostModel{ensemble: ensemble, file: opts.File, threads: opts.Threads}, nil
}

func (m *xgboostModel) Predict(features []float64) ([]float64, error) {
	if err := checkWidth(m.Name(), len(features), m.ensemble.NFeatures()); err != nil {
		return nil, err
	}
	out := make([]float64, m.ensemble.NOutputGroups())
	if err := m.ensemble.PredictDense(features, 1, len(features), out, 0, m.threads); err != nil {
		return nil, fmt.Errorf("%s: predict: %w", m.Name(), err)
	}
	softmax(out)
	return out, nil
}

func softmax(margins []float64) {
	lse := floats.LogSumExp(margins)
	for i, v := range margins {
		margins[i] = math.Exp(v - lse)
	}
}

func (m *xgboostModel) Classes() int { return m.ensemble.NOutputGroups() }

func (m *xgboostModel) Name() string { return "xgboost:" + m.file }

func (m *xgboostModel) Close() error { return nil }
