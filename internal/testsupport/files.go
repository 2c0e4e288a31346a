package testsupport

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCurve writes a two-column curve file preceded by header lines.
func WriteCurve(t testing.TB, path string, header []string, r, g []float64) {
	t.Helper()

	if len(r) != len(g) {
		t.Fatalf("WriteCurve: length mismatch %d != %d", len(r), len(g))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var b strings.Builder
	for _, line := range header {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i := range r {
		fmt.Fprintf(&b, "%.4f %.6f\n", r[i], g[i])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Axis returns n evenly spaced points starting at 0 with the given step.
func Axis(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// Peaks evaluates a sum of unit-width Gaussians centred at centers on r,
// giving a PDF-like curve whose shape depends on the peak positions.
func Peaks(r []float64, centers ...float64) []float64 {
	out := make([]float64, len(r))
	for i, x := range r {
		for j, c := range centers {
			amp := 1 / float64(j+1)
			out[i] += amp * math.Exp(-(x-c)*(x-c)/0.08)
		}
	}
	return out
}
