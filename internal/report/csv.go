package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ciff/internal/fileutil"
	"ciff/internal/ranking"
)

// CSV column names.
const (
	ColumnRank        = "rank"
	ColumnLabel       = "label"
	ColumnProbability = "probability"
	ColumnSimilar     = "similar"
	ColumnPearson     = "pearson"
)

// SimilarSeparator joins similar-structure labels within one CSV cell.
const SimilarSeparator = ";"

// Header returns the CSV header row.
func Header(withPearson bool) []string {
	header := []string{ColumnRank, ColumnLabel, ColumnProbability, ColumnSimilar}
	if withPearson {
		header = append(header, ColumnPearson)
	}
	return header
}

// WriteCSV writes one row per prediction in the given order. Ranks start at 1.
// The pearson column is left empty for candidates that were not re-scored.
func WriteCSV(w io.Writer, preds []ranking.Prediction, withPearson bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(withPearson)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, pred := range preds {
		row := []string{
			strconv.Itoa(i + 1),
			pred.Entry.Label,
			strconv.FormatFloat(pred.Probability, 'g', -1, 64),
			strings.Join(pred.Entry.Similar, SimilarSeparator),
		}
		if withPearson {
			cell := ""
			if pred.HasPearson {
				cell = strconv.FormatFloat(pred.Pearson, 'f', 6, 64)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV to path, replacing it atomically.
func WriteCSVFile(path string, preds []ranking.Prediction, withPearson bool) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteCSV(w, preds, withPearson)
	})
}
