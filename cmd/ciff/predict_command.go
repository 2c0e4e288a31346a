package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ciff/internal/config"
	"ciff/internal/logging"
	"ciff/internal/pipeline"
	"ciff/internal/report"
)

// loadDeps opens the model, catalog and bank. Tests replace it.
var loadDeps = pipeline.Load

type predictFlags struct {
	data            string
	nCPU            int
	show            int
	pearson         int
	fileName        string
	outputDir       string
	plot            bool
	noCSV           bool
	table           bool
	continueOnError bool
	assets          string
	bank            string
}

func (f *predictFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.data, "data", "d", "", "Input PDF curve file or directory of curve files")
	flags.IntVarP(&f.nCPU, "n-cpu", "n", 1, "Number of threads used by the classifier")
	flags.IntVarP(&f.show, "show", "s", 5, "Number of best predictions printed")
	flags.IntVarP(&f.pearson, "pearson", "p", 0, "Re-score the best N candidates against the reference bank (0 off, -1 all)")
	flags.StringVarP(&f.fileName, "file-name", "f", "", "Name of the results directory (default ciff_ress_<timestamp>)")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", "Directory in which the results directory is created")
	flags.BoolVar(&f.plot, "plot", false, "Write a comparison plot of the refined candidates")
	flags.BoolVar(&f.noCSV, "no-csv", false, "Do not write per-input CSV files")
	flags.BoolVar(&f.table, "table", false, "Print the best predictions as a table")
	flags.BoolVar(&f.continueOnError, "continue-on-error", false, "Skip inputs that fail instead of aborting the run")
	flags.StringVar(&f.assets, "assets", "", "Directory holding the model and catalog")
	flags.StringVar(&f.bank, "bank", "", "Reference bank database path")
	_ = cmd.MarkFlagRequired("data")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *predictFlags) apply(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	flags := cmd.Flags()
	if flags.Changed("n-cpu") {
		cfg.Model.Threads = f.nCPU
	}
	if flags.Changed("show") {
		cfg.Predict.Show = f.show
	}
	if flags.Changed("pearson") {
		cfg.Predict.Pearson = f.pearson
	}
	if flags.Changed("file-name") {
		cfg.Output.FileName = f.fileName
	}
	if flags.Changed("output-dir") {
		cfg.Paths.OutputDir = f.outputDir
	}
	if flags.Changed("plot") {
		cfg.Output.Plot = f.plot
	}
	if flags.Changed("no-csv") {
		cfg.Output.CSV = !f.noCSV
	}
	if flags.Changed("table") {
		cfg.Output.Table = f.table
	}
	if flags.Changed("continue-on-error") {
		cfg.Predict.ContinueOnError = f.continueOnError
	}
	if flags.Changed("assets") {
		cfg.Paths.AssetsDir = f.assets
	}
	if flags.Changed("bank") {
		cfg.Paths.BankPath = f.bank
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runPredict(cmd *cobra.Command, ctx *commandContext, f *predictFlags) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := f.apply(cmd, base)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	deps, err := loadDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("failed to release resources", logging.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	opts := pipeline.Options{
		Input:           strings.TrimSpace(f.data),
		OutputDir:       cfg.Paths.OutputDir,
		DirName:         cfg.Output.FileName,
		Show:            cfg.Predict.Show,
		Pearson:         cfg.Predict.Pearson,
		Plot:            cfg.Output.Plot,
		CSV:             cfg.Output.CSV,
		Table:           cfg.Output.Table,
		ContinueOnError: cfg.Predict.ContinueOnError,
		Classifier:      deps.Classifier,
		Catalog:         deps.Catalog,
		Stdout:          out,
		Color:           report.ShouldColorize(out),
		Logger:          logger,
	}
	if deps.Bank != nil {
		opts.Bank = deps.Bank
	}

	res, err := pipeline.Run(cmd.Context(), opts)
	if errors.Is(err, pipeline.ErrPartialFailure) {
		fmt.Fprintf(out, "\n%d of %d inputs failed; see %s\n",
			res.Manifest.Failed(), len(res.Manifest.Items), res.Dir)
	}
	return err
}
