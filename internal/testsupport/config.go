package testsupport

import (
	"path/filepath"
	"testing"

	"ciff/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AssetsDir = filepath.Join(base, "assets")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.BankPath = filepath.Join(base, "bank", "reference_bank.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPearson enables Pearson re-ranking for the first n candidates.
func WithPearson(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Predict.Pearson = n
	}
}

// WithPlot enables the comparison plot.
func WithPlot() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Plot = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.AssetsDir)
}
