package preflight

import (
	"context"

	"ciff/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryReadable("Assets directory", cfg.Paths.AssetsDir),
		CheckFileReadable("Model file", cfg.ModelPath()),
		CheckCatalog(cfg.CatalogPath()),
		CheckOutputDirectory("Output directory", cfg.Paths.OutputDir),
	}

	if cfg.Model.Backend == config.BackendONNX && cfg.Model.ONNXRuntimeLibrary != "" {
		results = append(results, CheckFileReadable("ONNX Runtime library", cfg.Model.ONNXRuntimeLibrary))
	}

	if cfg.PearsonEnabled() {
		results = append(results, CheckBank(ctx, cfg.Paths.BankPath))
	}

	return results
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
