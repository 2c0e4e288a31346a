package config

const (
	defaultConfigPath     = "~/.config/ciff/config.toml"
	defaultOutputDir      = "."
	defaultModelBackend   = BackendXGBoost
	defaultModelFile      = "xgb_model_bayse_optimization_00000.bin"
	defaultCatalogFile    = "labels.csv"
	defaultModelThreads   = 1
	defaultONNXInputName  = "input"
	defaultONNXOutputName = "probabilities"
	defaultShow           = 5
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Supported classifier backends.
const (
	BackendXGBoost = "xgboost"
	BackendONNX    = "onnx"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Model: Model{
			Backend:        defaultModelBackend,
			File:           defaultModelFile,
			CatalogFile:    defaultCatalogFile,
			Threads:        defaultModelThreads,
			ONNXInputName:  defaultONNXInputName,
			ONNXOutputName: defaultONNXOutputName,
		},
		Predict: Predict{
			Show: defaultShow,
		},
		Output: Output{
			CSV: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
