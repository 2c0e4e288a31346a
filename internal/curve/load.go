package curve

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MaxHeaderSkips bounds how many leading lines Load will try to skip.
const MaxHeaderSkips = 100

var (
	// ErrUnparsableFile reports a file with no numeric table within MaxHeaderSkips.
	ErrUnparsableFile = errors.New("unparsable file")
	// ErrOutOfRange reports a curve outside the range the classifier was trained on.
	ErrOutOfRange = errors.New("data out of range")
)

// Curve is a sampled G(r). R and G have equal length.
type Curve struct {
	R []float64
	G []float64
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.R) }

// Loaded is the result of parsing a curve file.
type Loaded struct {
	Curve
	// HeaderLines is the number of leading lines skipped before the table parsed.
	HeaderLines int
	// Columns is the column count of the numeric table.
	Columns int
}

// Load reads and parses the curve file at path.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("read %s: %w", path, err)
	}
	loaded, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Loaded{}, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// line is one pre-tokenized input line. blank lines carry no values and are
// ignored by the table parser.
type line struct {
	values []float64
	blank  bool
	ok     bool
}

// Parse reads a numeric table from r. Text after '#' on any line is a comment.
func Parse(r io.Reader) (Loaded, error) {
	lines, err := tokenize(r)
	if err != nil {
		return Loaded{}, err
	}
	for skip := 0; skip < MaxHeaderSkips; skip++ {
		if skip > len(lines) {
			break
		}
		table, cols, ok := parseTable(lines[skip:])
		if !ok {
			continue
		}
		out := Loaded{HeaderLines: skip, Columns: cols}
		out.R = make([]float64, len(table))
		out.G = make([]float64, len(table))
		for i, row := range table {
			out.R[i] = row[0]
			out.G[i] = row[1]
		}
		return out, nil
	}
	return Loaded{}, fmt.Errorf("%w: no numeric table found after skipping up to %d header lines", ErrUnparsableFile, MaxHeaderSkips-1)
}

func tokenize(r io.Reader) ([]line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []line
	for scanner.Scan() {
		text := scanner.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			lines = append(lines, line{blank: true, ok: true})
			continue
		}
		values := make([]float64, len(fields))
		ok := true
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			values[i] = v
		}
		if !ok {
			values = nil
		}
		lines = append(lines, line{values: values, ok: ok})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return lines, nil
}

// parseTable succeeds when every non-blank line is numeric, all rows share
// one column count of at least two, and at least one row exists.
func parseTable(lines []line) ([][]float64, int, bool) {
	var (
		rows [][]float64
		cols int
	)
	for _, ln := range lines {
		if ln.blank {
			continue
		}
		if !ln.ok {
			return nil, 0, false
		}
		if cols == 0 {
			cols = len(ln.values)
		} else if len(ln.values) != cols {
			return nil, 0, false
		}
		rows = append(rows, ln.values)
	}
	if len(rows) == 0 || cols < 2 {
		return nil, 0, false
	}
	return rows, cols, true
}
