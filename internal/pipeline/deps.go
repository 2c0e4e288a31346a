package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ciff/internal/catalog"
	"ciff/internal/classifier"
	"ciff/internal/config"
	"ciff/internal/logging"
	"ciff/internal/refbank"
)

// Deps are the long-lived resources a run needs.
type Deps struct {
	Classifier classifier.Classifier
	Catalog    *catalog.Catalog
	// Bank is nil unless Pearson refinement is enabled.
	Bank *refbank.Store
}

// Load opens the classifier, catalog and, when refinement is enabled, the
// reference bank described by cfg.
func Load(cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	logger = logging.NewComponentLogger(logger, "loader")
	assets := os.DirFS(cfg.Paths.AssetsDir)

	cat, err := catalog.LoadFS(assets, cfg.Model.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	logger.Info("loading model",
		logging.String("model", cfg.ModelPath()),
		logging.String("backend", cfg.Model.Backend),
		logging.Int("threads", cfg.Model.Threads),
	)
	start := time.Now()
	model, err := classifier.Open(assets, classifier.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("model loaded",
		logging.Duration("took", time.Since(start)),
		logging.Int("classes", model.Classes()),
	)
	if model.Classes() != cat.Len() {
		_ = model.Close()
		return nil, fmt.Errorf("model has %d classes but catalog %s has %d entries",
			model.Classes(), cfg.CatalogPath(), cat.Len())
	}

	deps := &Deps{Classifier: model, Catalog: cat}
	if cfg.PearsonEnabled() {
		if _, err := os.Stat(cfg.Paths.BankPath); err != nil {
			_ = model.Close()
			return nil, fmt.Errorf("reference bank %s unavailable (populate it with 'ciff bank import'): %w", cfg.Paths.BankPath, err)
		}
		bank, err := refbank.Open(cfg.Paths.BankPath)
		if err != nil {
			_ = model.Close()
			return nil, fmt.Errorf("open reference bank: %w", err)
		}
		deps.Bank = bank
	}
	return deps, nil
}

// Close releases the classifier and bank.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Classifier != nil {
		errs = append(errs, d.Classifier.Close())
	}
	if d.Bank != nil {
		errs = append(errs, d.Bank.Close())
	}
	return errors.Join(errs...)
}
