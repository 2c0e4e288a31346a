package curve_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ciff/internal/curve"
	"ciff/internal/testsupport"
)

func TestParseSkipsLeadingHeaderLines(t *testing.T) {
	text := strings.Join([]string{
		"[DEFAULT]",
		"version = pdfgetx3",
		"r G(r)",
		"0.0 0.5",
		"0.1 0.7",
		"0.2 0.9",
	}, "\n")

	loaded, err := curve.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loaded.HeaderLines != 3 {
		t.Fatalf("expected 3 skipped lines, got %d", loaded.HeaderLines)
	}
	if loaded.Len() != 3 || loaded.R[2] != 0.2 || loaded.G[1] != 0.7 {
		t.Fatalf("unexpected curve: %+v", loaded.Curve)
	}
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	text := "# generated\n\n0 1 0.01\n0.5 2 0.01 # trailing\n\n1.0 3 0.02\n"

	loaded, err := curve.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loaded.HeaderLines != 0 {
		t.Fatalf("expected no skipped lines, got %d", loaded.HeaderLines)
	}
	if loaded.Columns != 3 || loaded.Len() != 3 {
		t.Fatalf("unexpected shape: cols=%d len=%d", loaded.Columns, loaded.Len())
	}
}

func TestParseFailures(t *testing.T) {
	manyHeaders := strings.Repeat("header line\n", curve.MaxHeaderSkips) + "0 1\n1 2\n"
	justEnough := strings.Repeat("header line\n", curve.MaxHeaderSkips-1) + "0 1\n1 2\n"

	cases := map[string]string{
		"no numeric rows":      "alpha\nbeta\ngamma\n",
		"single column":        "0\n1\n2\n",
		"ragged trailing row":  "0 1\n1 2\n2\n",
		"text after data":      "0 1\n1 2\nend\n",
		"empty":                "",
		"header beyond budget": manyHeaders,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := curve.Parse(strings.NewReader(text))
			if !errors.Is(err, curve.ErrUnparsableFile) {
				t.Fatalf("expected ErrUnparsableFile, got %v", err)
			}
		})
	}

	loaded, err := curve.Parse(strings.NewReader(justEnough))
	if err != nil {
		t.Fatalf("expected %d header lines to parse: %v", curve.MaxHeaderSkips-1, err)
	}
	if loaded.HeaderLines != curve.MaxHeaderSkips-1 {
		t.Fatalf("unexpected header count %d", loaded.HeaderLines)
	}
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gr")
	testsupport.WriteFile(t, path, "not numbers\n")

	_, err := curve.Load(path)
	if !errors.Is(err, curve.ErrUnparsableFile) {
		t.Fatalf("expected ErrUnparsableFile, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected path in error, got %v", err)
	}
}
