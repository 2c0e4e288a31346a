package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ciff/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("CIFF_ASSETS_DIR", "")
	t.Setenv("CIFF_BANK_PATH", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantAssets := filepath.Join(tempHome, ".local", "share", "ciff", "model")
	if cfg.Paths.AssetsDir != wantAssets {
		t.Fatalf("unexpected assets dir: got %q want %q", cfg.Paths.AssetsDir, wantAssets)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Model.Backend != config.BackendXGBoost {
		t.Fatalf("unexpected backend: %q", cfg.Model.Backend)
	}
	if cfg.Model.Threads != 1 {
		t.Fatalf("unexpected threads: %d", cfg.Model.Threads)
	}
	if cfg.Predict.Show != 5 {
		t.Fatalf("unexpected show: %d", cfg.Predict.Show)
	}
	if cfg.PearsonEnabled() {
		t.Fatal("expected pearson disabled by default")
	}
	if !cfg.Output.CSV || cfg.Output.Plot {
		t.Fatalf("unexpected output toggles: %+v", cfg.Output)
	}
	if got := cfg.ModelPath(); got != filepath.Join(wantAssets, "xgb_model_bayse_optimization_00000.bin") {
		t.Fatalf("unexpected model path: %q", got)
	}
	if got := cfg.CatalogPath(); got != filepath.Join(wantAssets, "labels.csv") {
		t.Fatalf("unexpected catalog path: %q", got)
	}
}

func TestLoadHonoursEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assets := t.TempDir()
	bank := filepath.Join(t.TempDir(), "bank.db")
	t.Setenv("CIFF_ASSETS_DIR", assets)
	t.Setenv("CIFF_BANK_PATH", bank)

	path := filepath.Join(t.TempDir(), "ciff.toml")
	if err := os.WriteFile(path, []byte("[paths]\nassets_dir = \"\"\nbank_path = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.AssetsDir != assets {
		t.Fatalf("expected assets from env, got %q", cfg.Paths.AssetsDir)
	}
	if cfg.Paths.BankPath != bank {
		t.Fatalf("expected bank path from env, got %q", cfg.Paths.BankPath)
	}
	if cfg.BankLockPath() != bank+".lock" {
		t.Fatalf("unexpected lock path: %q", cfg.BankLockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "ciff.toml")

	type payload struct {
		Model struct {
			Backend string `toml:"backend"`
			Threads int    `toml:"threads"`
		} `toml:"model"`
		Predict struct {
			Show    int `toml:"show"`
			Pearson int `toml:"pearson"`
		} `toml:"predict"`
		Output struct {
			Plot     bool   `toml:"plot"`
			FileName string `toml:"file_name"`
		} `toml:"output"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Model.Backend = " ONNX "
	custom.Model.Threads = 4
	custom.Predict.Show = 3
	custom.Predict.Pearson = -1
	custom.Output.Plot = true
	custom.Output.FileName = "batch-7"
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Model.Backend != config.BackendONNX {
		t.Fatalf("expected onnx backend, got %q", cfg.Model.Backend)
	}
	if cfg.Model.Threads != 4 || cfg.Predict.Show != 3 || cfg.Predict.Pearson != -1 {
		t.Fatalf("unexpected numeric overrides: %+v %+v", cfg.Model, cfg.Predict)
	}
	if !cfg.Output.Plot || cfg.Output.FileName != "batch-7" {
		t.Fatalf("unexpected output overrides: %+v", cfg.Output)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsMissingExplicitPath(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ciff.toml")
	if err := os.WriteFile(path, []byte("[predict]\nshw = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults"},
		{
			name:    "unknown backend",
			mutate:  func(c *config.Config) { c.Model.Backend = "lightgbm" },
			wantErr: "model.backend",
		},
		{
			name:    "zero threads",
			mutate:  func(c *config.Config) { c.Model.Threads = 0 },
			wantErr: "model.threads",
		},
		{
			name:    "zero show",
			mutate:  func(c *config.Config) { c.Predict.Show = 0 },
			wantErr: "predict.show",
		},
		{
			name:    "pearson below minus one",
			mutate:  func(c *config.Config) { c.Predict.Pearson = -2 },
			wantErr: "predict.pearson",
		},
		{
			name:   "pearson all",
			mutate: func(c *config.Config) { c.Predict.Pearson = -1 },
		},
		{
			name:    "plot without pearson",
			mutate:  func(c *config.Config) { c.Output.Plot = true },
			wantErr: "output.plot",
		},
		{
			name:    "file name with separator",
			mutate:  func(c *config.Config) { c.Output.FileName = "a/b" },
			wantErr: "output.file_name",
		},
		{
			name:    "model file outside assets",
			mutate:  func(c *config.Config) { c.Model.File = "../model.bin" },
			wantErr: "model.file",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Model.File != "xgb_model_bayse_optimization_00000.bin" {
		t.Fatalf("unexpected model file from sample: %q", cfg.Model.File)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
