package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains asset, output, and reference bank locations. Empty asset and
// bank paths resolve to CIFF_ASSETS_DIR / CIFF_BANK_PATH, then to the XDG data
// directory.
type Paths struct {
	AssetsDir string `toml:"assets_dir"`
	OutputDir string `toml:"output_dir"`
	BankPath  string `toml:"bank_path"`
	LogDir    string `toml:"log_dir"`
}

// Model selects the classifier artifact and the inference backend.
type Model struct {
	Backend     string `toml:"backend"`
	File        string `toml:"file"`
	CatalogFile string `toml:"catalog_file"`
	Threads     int    `toml:"threads"`
	// ONNX backend only.
	ONNXRuntimeLibrary string `toml:"onnx_runtime_library"`
	ONNXInputName      string `toml:"onnx_input_name"`
	ONNXOutputName     string `toml:"onnx_output_name"`
}

// Predict contains ranking knobs.
type Predict struct {
	// Show is the number of best predictions printed per input.
	Show int `toml:"show"`
	// Pearson is the number of top candidates re-scored against the
	// reference bank. 0 disables the stage, -1 means every catalog entry.
	Pearson         int  `toml:"pearson"`
	ContinueOnError bool `toml:"continue_on_error"`
}

// Output controls which artifacts are written per input.
type Output struct {
	CSV      bool   `toml:"csv"`
	Plot     bool   `toml:"plot"`
	Table    bool   `toml:"table"`
	FileName string `toml:"file_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ciff.
//
// Configuration sections:
//   - Paths: model assets, results root, reference bank, log directory
//   - Model: classifier backend, artifact names, thread count
//   - Predict: how many predictions to show and re-score
//   - Output: CSV/plot/table toggles and results directory naming
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Model   Model   `toml:"model"`
	Predict Predict `toml:"predict"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ciff.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the results root and the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ModelPath returns the absolute path of the classifier artifact.
func (c *Config) ModelPath() string {
	return filepath.Join(c.Paths.AssetsDir, c.Model.File)
}

// CatalogPath returns the absolute path of the structure catalog.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.AssetsDir, c.Model.CatalogFile)
}

// BankLockPath returns the lock file guarding reference bank imports.
func (c *Config) BankLockPath() string {
	return c.Paths.BankPath + ".lock"
}

// PearsonEnabled reports whether the correlation stage runs.
func (c *Config) PearsonEnabled() bool {
	return c.Predict.Pearson != 0
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "ciff")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/share/ciff"
	}
	return filepath.Join(home, ".local", "share", "ciff")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
