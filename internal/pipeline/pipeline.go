package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ciff/internal/catalog"
	"ciff/internal/classifier"
	"ciff/internal/curve"
	"ciff/internal/input"
	"ciff/internal/logging"
	"ciff/internal/ranking"
	"ciff/internal/report"
	"ciff/internal/textutil"
)

// ResultsDirPrefix starts every timestamped results directory name.
const ResultsDirPrefix = "ciff_ress_"

const resultsTimeLayout = "2006-01-02_15-04-05"

// ResultsDirName names the timestamped results directory for t, down to the
// microsecond.
func ResultsDirName(t time.Time) string {
	return fmt.Sprintf("%s%s-%06d", ResultsDirPrefix, t.Format(resultsTimeLayout), t.Nanosecond()/1000)
}

// ErrPartialFailure reports a run that skipped failing inputs.
var ErrPartialFailure = errors.New("some inputs failed")

// ItemError identifies the input that stopped or was skipped by a run.
type ItemError struct {
	Name string
	Err  error
}

func (e *ItemError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// Options configures one run.
type Options struct {
	Input string
	// OutputDir is the parent of the results directory.
	OutputDir string
	// DirName names the results directory; empty selects a timestamped name.
	DirName string

	Show int
	// Pearson is the number of candidates to re-score: 0 disables refinement
	// and -1 re-scores every candidate.
	Pearson         int
	Plot            bool
	CSV             bool
	Table           bool
	ContinueOnError bool

	Classifier classifier.Classifier
	Catalog    *catalog.Catalog
	Bank       ranking.Bank

	// Stdout receives the console summary. Nil discards it.
	Stdout io.Writer
	Color  bool
	Logger *slog.Logger
	// RunID defaults to a random UUID.
	RunID string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result describes a finished or aborted run.
type Result struct {
	Dir      string
	Manifest report.Manifest
}

// Run executes the prediction pipeline.
func Run(ctx context.Context, opts Options) (Result, error) {
	if err := opts.validate(); err != nil {
		return Result{}, err
	}
	opts.defaults()
	logger := logging.NewComponentLogger(opts.Logger, "pipeline")
	ctx = logging.WithRunID(ctx, opts.RunID)
	logger = logging.WithContext(ctx, logger)

	src, err := input.Resolve(opts.Input)
	if err != nil {
		return Result{}, err
	}
	if src.IsDir {
		logger.Info("input is directory", logging.String("path", src.Path), logging.Int("files", len(src.Files)))
	} else {
		logger.Info("input is file", logging.String("path", src.Path))
	}

	dir, err := opts.createResultsDir()
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(opts.Stdout, "\n%s has been created!\n", dir)

	result := Result{
		Dir: dir,
		Manifest: report.Manifest{
			RunID:     opts.RunID,
			StartedAt: opts.Now(),
			Input:     src.Path,
			OutputDir: dir,
			Model:     opts.Classifier.Name(),
			Classes:   opts.Classifier.Classes(),
			Show:      opts.Show,
			Pearson:   opts.Pearson,
		},
	}

	names := newNameSet()
	var runErr error
	for sample, err := range curve.Stream(src.Files) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = ctxErr
			break
		}
		item := report.ManifestItem{Name: sample.Name, Path: sample.Path}
		sampleLog := logging.WithContext(logging.WithSample(ctx, sample.Name), logger)
		fmt.Fprintf(opts.Stdout, "\n%s\n", sample.Name)

		if err == nil {
			err = opts.process(ctx, sample, dir, names.claim(sample.Name), &item, sampleLog)
		}
		if err != nil {
			item.Status = report.StatusFailed
			item.Error = err.Error()
			result.Manifest.Items = append(result.Manifest.Items, item)
			itemErr := &ItemError{Name: sample.Name, Err: err}
			if !opts.ContinueOnError || errors.Is(err, context.Canceled) {
				runErr = itemErr
				break
			}
			logging.WarnWithContext(sampleLog, "skipping input", "input_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no results written for this input"),
			)
			continue
		}
		item.Status = report.StatusOK
		result.Manifest.Items = append(result.Manifest.Items, item)
	}

	result.Manifest.FinishedAt = opts.Now()
	if err := report.WriteManifest(filepath.Join(dir, report.ManifestFile), result.Manifest); err != nil {
		logger.Error("failed to write run manifest", logging.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("write manifest: %w", err)
		}
	}
	if runErr != nil {
		return result, runErr
	}
	if failed := result.Manifest.Failed(); failed > 0 {
		return result, fmt.Errorf("%w: %d of %d inputs", ErrPartialFailure, failed, len(result.Manifest.Items))
	}
	logger.Info("run complete",
		logging.String("dir", dir),
		logging.Int("inputs", len(result.Manifest.Items)),
	)
	return result, nil
}

func (opts Options) process(ctx context.Context, sample curve.Sample, dir, outName string, item *report.ManifestItem, logger *slog.Logger) error {
	item.HeaderLines = sample.HeaderLines
	if sample.HeaderLines > 0 {
		logger.Debug("skipped header lines", logging.Int("lines", sample.HeaderLines))
	}

	probs, err := opts.Classifier.Predict(sample.Features)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	preds, err := ranking.Rank(probs, opts.Catalog)
	if err != nil {
		return err
	}
	if len(preds) > 0 {
		item.TopLabel = preds[0].Entry.Label
		item.TopProb = preds[0].Probability
	}

	refined := opts.Pearson != 0
	if refined {
		n, err := ranking.Refine(ctx, preds, opts.Bank, opts.Pearson, sample.Features, logger)
		if err != nil {
			return fmt.Errorf("refine: %w", err)
		}
		item.Refined = n
		logger.Debug("refined candidates", logging.Int("candidates", n))
	}

	report.Summary(opts.Stdout, preds, opts.Show, opts.Color)
	if refined {
		report.PearsonSummary(opts.Stdout, preds, opts.Color)
	}
	if opts.Table {
		fmt.Fprintln(opts.Stdout, report.Table(preds, opts.Show, refined))
	}

	if opts.Plot && refined {
		path := filepath.Join(dir, outName+".png")
		switch err := report.PlotComparison(path, sample.Features, preds); {
		case errors.Is(err, report.ErrNothingToPlot):
			logging.WarnWithContext(logger, "no reference curves matched any candidate", "plot_skipped",
				logging.String(logging.FieldImpact, "comparison plot not written"),
			)
		case err != nil:
			return err
		default:
			item.Plot = path
		}
	}

	if opts.CSV {
		path := filepath.Join(dir, outName+".csv")
		if err := report.WriteCSVFile(path, preds, refined); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		item.CSV = path
	}
	return nil
}

func (opts Options) validate() error {
	switch {
	case opts.Classifier == nil:
		return errors.New("pipeline: classifier is required")
	case opts.Catalog == nil:
		return errors.New("pipeline: catalog is required")
	case opts.Show <= 0:
		return fmt.Errorf("pipeline: show must be positive, got %d", opts.Show)
	case opts.Pearson < -1:
		return fmt.Errorf("pipeline: pearson must be -1, 0 or positive, got %d", opts.Pearson)
	case opts.Pearson != 0 && opts.Bank == nil:
		return errors.New("pipeline: pearson refinement requires a reference bank")
	case opts.Plot && opts.Pearson == 0:
		return errors.New("pipeline: plot requires pearson refinement")
	}
	return nil
}

func (opts *Options) defaults() {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
}

func (opts Options) createResultsDir() (string, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if opts.DirName != "" {
		name := textutil.SanitizeFileName(opts.DirName)
		if name == "" {
			return "", fmt.Errorf("%w: unusable results directory name %q", input.ErrInvalidInput, opts.DirName)
		}
		dir := filepath.Join(opts.OutputDir, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create results directory: %w", err)
		}
		return dir, nil
	}
	dir := filepath.Join(opts.OutputDir, ResultsDirName(opts.Now()))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}
	return dir, nil
}

// nameSet hands out unique output stems within one results directory.
type nameSet map[string]int

func newNameSet() nameSet { return nameSet{} }

func (s nameSet) claim(stem string) string {
	base := textutil.OutputName(stem, "input")
	s[base]++
	if n := s[base]; n > 1 {
		return base + "_" + strconv.Itoa(n)
	}
	return base
}
