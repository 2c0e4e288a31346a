package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validatePredict(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateModel() error {
	switch c.Model.Backend {
	case BackendXGBoost, BackendONNX:
	default:
		return fmt.Errorf("model.backend must be %q or %q, got %q", BackendXGBoost, BackendONNX, c.Model.Backend)
	}
	if c.Model.Threads <= 0 {
		return errors.New("model.threads must be positive")
	}
	if strings.ContainsAny(c.Model.File, `/\`) {
		return errors.New("model.file must be a file name inside paths.assets_dir")
	}
	if strings.ContainsAny(c.Model.CatalogFile, `/\`) {
		return errors.New("model.catalog_file must be a file name inside paths.assets_dir")
	}
	return nil
}

func (c *Config) validatePredict() error {
	if c.Predict.Show <= 0 {
		return errors.New("predict.show must be positive")
	}
	if c.Predict.Pearson < -1 {
		return errors.New("predict.pearson must be -1 (all), 0 (disabled), or a positive count")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.ContainsAny(c.Output.FileName, `/\`) {
		return errors.New("output.file_name must not contain path separators")
	}
	if c.Output.Plot && !c.PearsonEnabled() {
		return errors.New("output.plot requires predict.pearson to be enabled")
	}
	return nil
}
