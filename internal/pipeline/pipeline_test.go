package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ciff/internal/curve"
	"ciff/internal/input"
	"ciff/internal/pipeline"
	"ciff/internal/refbank"
	"ciff/internal/report"
	"ciff/internal/testsupport"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.Local)

func writeGoodCurve(t *testing.T, path string, centers ...float64) {
	t.Helper()
	r := testsupport.Axis(351, 0.1)
	testsupport.WriteCurve(t, path, []string{"# synthetic", "rmin = 0", "rmax = 35"}, r, testsupport.Peaks(r, centers...))
}

func baseOptions(t *testing.T, in string) (pipeline.Options, *testsupport.FakeClassifier, *bytes.Buffer) {
	t.Helper()
	probs := []float64{0.1, 0.05, 0.6, 0.15, 0.1}
	fake := testsupport.NewFakeClassifier(probs)
	var out bytes.Buffer
	return pipeline.Options{
		Input:      in,
		OutputDir:  filepath.Join(t.TempDir(), "out"),
		Show:       3,
		CSV:        true,
		Classifier: fake,
		Catalog:    testsupport.NewCatalog(t, len(probs)),
		Stdout:     &out,
		RunID:      "run-test",
		Now:        func() time.Time { return fixedNow },
	}, fake, &out
}

func readManifest(t *testing.T, dir string) report.Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, report.ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m report.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return m
}

func TestResultsDirNameKeepsMicroseconds(t *testing.T) {
	if got, want := pipeline.ResultsDirName(fixedNow), "ciff_ress_2024-03-05_14-07-09-123456"; got != want {
		t.Fatalf("ResultsDirName = %q, want %q", got, want)
	}
	early := time.Date(2024, 3, 5, 14, 7, 9, 7000, time.Local)
	if got, want := pipeline.ResultsDirName(early), "ciff_ress_2024-03-05_14-07-09-000007"; got != want {
		t.Fatalf("ResultsDirName = %q, want %q", got, want)
	}
}

func TestRunsWithinOneSecondGetSeparateDirs(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sample.gr")
	writeGoodCurve(t, in, 2.3)

	opts, _, _ := baseOptions(t, in)
	opts.Now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 111111000, time.Local) }
	first, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}

	opts.Now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 999999000, time.Local) }
	second, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.Dir == second.Dir {
		t.Fatalf("both runs wrote to %s", first.Dir)
	}
}

func TestRunSingleFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sample.gr")
	writeGoodCurve(t, in, 2.3, 3.9)
	opts, fake, out := baseOptions(t, in)

	res, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.Calls != 1 {
		t.Fatalf("expected 1 prediction, got %d", fake.Calls)
	}
	if want := pipeline.ResultsDirPrefix + "2024-03-05_14-07-09-123456"; filepath.Base(res.Dir) != want {
		t.Fatalf("expected results dir %s, got %s", want, res.Dir)
	}

	data, err := os.ReadFile(filepath.Join(res.Dir, "sample.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "rank,label,probability,similar" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 6 || !strings.HasPrefix(lines[1], "1,"+testsupport.CatalogLabel(2)+",0.6,") {
		t.Fatalf("unexpected csv:\n%s", data)
	}

	console := out.String()
	if !strings.Contains(console, "has been created!") || !strings.Contains(console, "\nsample\n") {
		t.Fatalf("unexpected console output:\n%s", console)
	}
	if strings.Count(console, "Probability:") != 3 {
		t.Fatalf("expected 3 summary entries:\n%s", console)
	}

	m := readManifest(t, res.Dir)
	if m.RunID != "run-test" || len(m.Items) != 1 || m.Items[0].Status != report.StatusOK {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.Items[0].HeaderLines != 3 || m.Items[0].TopLabel != testsupport.CatalogLabel(2) {
		t.Fatalf("unexpected manifest item %+v", m.Items[0])
	}
}

func TestRunDirectoryProcessesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeGoodCurve(t, filepath.Join(dir, "b.gr"), 2.0)
	writeGoodCurve(t, filepath.Join(dir, "a.gr"), 3.0)
	writeGoodCurve(t, filepath.Join(dir, "_ignored.gr"), 3.0)
	writeGoodCurve(t, filepath.Join(dir, ".hidden.gr"), 3.0)
	opts, fake, _ := baseOptions(t, dir)
	opts.DirName = "my results"

	res, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if filepath.Base(res.Dir) != "my results" {
		t.Fatalf("expected named results dir, got %s", res.Dir)
	}
	if fake.Calls != 2 {
		t.Fatalf("expected 2 predictions, got %d", fake.Calls)
	}
	m := readManifest(t, res.Dir)
	if len(m.Items) != 2 || m.Items[0].Name != "a" || m.Items[1].Name != "b" {
		t.Fatalf("unexpected items %+v", m.Items)
	}
	for _, name := range []string{"a.csv", "b.csv"} {
		if _, err := os.Stat(filepath.Join(res.Dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestRunAbortsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	writeGoodCurve(t, filepath.Join(dir, "a.gr"), 2.0)
	testsupport.WriteFile(t, filepath.Join(dir, "b.gr"), "no numbers here\n")
	writeGoodCurve(t, filepath.Join(dir, "c.gr"), 2.0)
	opts, fake, _ := baseOptions(t, dir)

	res, err := pipeline.Run(context.Background(), opts)
	var itemErr *pipeline.ItemError
	if !errors.As(err, &itemErr) || itemErr.Name != "b" {
		t.Fatalf("expected ItemError for b, got %v", err)
	}
	if !errors.Is(err, curve.ErrUnparsableFile) {
		t.Fatalf("expected ErrUnparsableFile, got %v", err)
	}
	if fake.Calls != 1 {
		t.Fatalf("expected processing to stop after b, got %d predictions", fake.Calls)
	}
	m := readManifest(t, res.Dir)
	if len(m.Items) != 2 || m.Items[1].Status != report.StatusFailed {
		t.Fatalf("unexpected manifest items %+v", m.Items)
	}
}

func TestRunContinueOnErrorSkipsOnlyBadFile(t *testing.T) {
	dir := t.TempDir()
	writeGoodCurve(t, filepath.Join(dir, "a.gr"), 2.0)
	short := testsupport.Axis(100, 0.1)
	testsupport.WriteCurve(t, filepath.Join(dir, "b.gr"), nil, short, testsupport.Peaks(short, 2))
	writeGoodCurve(t, filepath.Join(dir, "c.gr"), 2.0)
	opts, fake, _ := baseOptions(t, dir)
	opts.ContinueOnError = true

	res, err := pipeline.Run(context.Background(), opts)
	if !errors.Is(err, pipeline.ErrPartialFailure) {
		t.Fatalf("expected ErrPartialFailure, got %v", err)
	}
	if fake.Calls != 2 {
		t.Fatalf("expected 2 predictions, got %d", fake.Calls)
	}
	m := readManifest(t, res.Dir)
	if m.Failed() != 1 || m.Items[1].Name != "b" || !strings.Contains(m.Items[1].Error, "out of range") {
		t.Fatalf("unexpected manifest %+v", m.Items)
	}
	if _, err := os.Stat(filepath.Join(res.Dir, "b.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no csv for b, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(res.Dir, "c.csv")); err != nil {
		t.Fatalf("expected csv for c: %v", err)
	}
}

func TestRunWithPearsonAndPlot(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sample.gr")
	writeGoodCurve(t, in, 2.3)
	opts, _, out := baseOptions(t, in)
	bank := &testsupport.FakeBank{Curves: map[string][]refbank.Reference{}}
	for i, center := range []float64{2.3, 5.0, 7.0} {
		id := strings.TrimSuffix(testsupport.CatalogLabel(i), ".cif")
		bank.Curves[id] = []refbank.Reference{{
			Label: id,
			Name:  "ref",
			R:     curve.Grid(),
			G:     testsupport.Peaks(curve.Grid(), center),
		}}
	}
	opts.Bank = bank
	opts.Pearson = 2
	opts.Plot = true

	res, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bank.Lookups) != 2 {
		t.Fatalf("expected 2 bank lookups, got %v", bank.Lookups)
	}
	data, err := os.ReadFile(filepath.Join(res.Dir, "sample.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(data), "rank,label,probability,similar,pearson\n") {
		t.Fatalf("expected pearson column:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(res.Dir, "sample.png")); err != nil {
		t.Fatalf("expected plot: %v", err)
	}
	if !strings.Contains(out.String(), "Pearson ranking:") {
		t.Fatalf("expected Pearson summary:\n%s", out.String())
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sample.gr")
	writeGoodCurve(t, in, 2.3)

	opts, _, _ := baseOptions(t, in)
	opts.Pearson = 3
	if _, err := pipeline.Run(context.Background(), opts); err == nil {
		t.Fatal("expected error for pearson without bank")
	}

	opts, _, _ = baseOptions(t, in)
	opts.Plot = true
	if _, err := pipeline.Run(context.Background(), opts); err == nil {
		t.Fatal("expected error for plot without pearson")
	}

	opts, _, _ = baseOptions(t, filepath.Join(t.TempDir(), "missing.gr"))
	if _, err := pipeline.Run(context.Background(), opts); !errors.Is(err, input.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunClassifierMismatch(t *testing.T) {
	in := filepath.Join(t.TempDir(), "sample.gr")
	writeGoodCurve(t, in, 2.3)
	opts, _, _ := baseOptions(t, in)
	opts.Catalog = testsupport.NewCatalog(t, 4)

	if _, err := pipeline.Run(context.Background(), opts); err == nil {
		t.Fatal("expected error when probabilities do not match the catalog")
	}
}
