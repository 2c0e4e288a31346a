package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeModel()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

// Normalize re-applies defaults and path expansion after callers override
// fields (for example from command-line flags).
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		if value, ok := os.LookupEnv("CIFF_ASSETS_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.AssetsDir = strings.TrimSpace(value)
		} else {
			c.Paths.AssetsDir = filepath.Join(defaultDataDir(), "model")
		}
	}
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BankPath) == "" {
		if value, ok := os.LookupEnv("CIFF_BANK_PATH"); ok && strings.TrimSpace(value) != "" {
			c.Paths.BankPath = strings.TrimSpace(value)
		} else {
			c.Paths.BankPath = filepath.Join(defaultDataDir(), "reference_bank.db")
		}
	}
	if c.Paths.BankPath, err = expandPath(c.Paths.BankPath); err != nil {
		return fmt.Errorf("paths.bank_path: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeModel() {
	c.Model.Backend = strings.ToLower(strings.TrimSpace(c.Model.Backend))
	if c.Model.Backend == "" {
		c.Model.Backend = defaultModelBackend
	}
	c.Model.File = strings.TrimSpace(c.Model.File)
	if c.Model.File == "" {
		c.Model.File = defaultModelFile
	}
	c.Model.CatalogFile = strings.TrimSpace(c.Model.CatalogFile)
	if c.Model.CatalogFile == "" {
		c.Model.CatalogFile = defaultCatalogFile
	}
	c.Model.ONNXRuntimeLibrary = strings.TrimSpace(c.Model.ONNXRuntimeLibrary)
	if c.Model.ONNXRuntimeLibrary == "" {
		if value, ok := os.LookupEnv("ONNXRUNTIME_LIB"); ok {
			c.Model.ONNXRuntimeLibrary = strings.TrimSpace(value)
		}
	}
	c.Model.ONNXInputName = strings.TrimSpace(c.Model.ONNXInputName)
	if c.Model.ONNXInputName == "" {
		c.Model.ONNXInputName = defaultONNXInputName
	}
	c.Model.ONNXOutputName = strings.TrimSpace(c.Model.ONNXOutputName)
	if c.Model.ONNXOutputName == "" {
		c.Model.ONNXOutputName = defaultONNXOutputName
	}
}

func (c *Config) normalizeOutput() {
	c.Output.FileName = strings.TrimSpace(c.Output.FileName)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
