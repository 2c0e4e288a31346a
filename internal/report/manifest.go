package report

import (
	"encoding/json"
	"io"
	"time"

	"ciff/internal/fileutil"
)

// ManifestFile is the manifest name inside a results directory.
const ManifestFile = "manifest.json"

// Item statuses recorded in the manifest.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Manifest describes one prediction run.
type Manifest struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Input      string         `json:"input"`
	OutputDir  string         `json:"output_dir"`
	Model      string         `json:"model"`
	Classes    int            `json:"classes"`
	Show       int            `json:"show"`
	Pearson    int            `json:"pearson"`
	Items      []ManifestItem `json:"items"`
}

// ManifestItem is the outcome for one input curve.
type ManifestItem struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	HeaderLines int     `json:"header_lines,omitempty"`
	TopLabel    string  `json:"top_label,omitempty"`
	TopProb     float64 `json:"top_probability,omitempty"`
	Refined     int     `json:"refined,omitempty"`
	CSV         string  `json:"csv,omitempty"`
	Plot        string  `json:"plot,omitempty"`
}

// Failed counts items that did not complete.
func (m Manifest) Failed() int {
	n := 0
	for _, item := range m.Items {
		if item.Status == StatusFailed {
			n++
		}
	}
	return n
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteJSON(w, m)
	})
}

// WriteJSON encodes v as two-space indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
