package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"golang.org/x/text/cases"
)

// Column names recognised in the catalog header.
const (
	ColumnLabel       = "Label"
	ColumnSimilar     = "Similar"
	ColumnComposition = "composition"
	ColumnSpaceGroup  = "space_group_symmetry"
)

// Entry is one catalog row.
type Entry struct {
	Index int
	Label string
	// Similar holds the labels of structurally equivalent entries, without
	// their .csv suffix.
	Similar []string
	// Composition and SpaceGroups describe the entry itself at index 0 and its
	// Similar members from index 1 on.
	Composition []string
	SpaceGroups []string
}

// ID returns the label without its file extension.
func (e Entry) ID() string {
	return trimExt(e.Label)
}

// Member describes one structure in an entry's similarity group.
type Member struct {
	ID          string
	Composition string
	SpaceGroup  string
}

// Self describes the entry itself.
func (e Entry) Self() Member {
	return Member{ID: e.ID(), Composition: at(e.Composition, 0), SpaceGroup: at(e.SpaceGroups, 0)}
}

// Members describes the entry's similar structures.
func (e Entry) Members() []Member {
	out := make([]Member, len(e.Similar))
	for i, label := range e.Similar {
		out[i] = Member{
			ID:          trimExt(label),
			Composition: at(e.Composition, i+1),
			SpaceGroup:  at(e.SpaceGroups, i+1),
		}
	}
	return out
}

// Catalog is the immutable list of classifier classes.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns entry i. It panics when i is out of range.
func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Entries returns a copy of all entries in class order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup finds an entry by label or ID, ignoring case.
func (c *Catalog) Lookup(label string) (Entry, bool) {
	label = strings.TrimSpace(label)
	if i, ok := c.index[foldKey(label)]; ok {
		return c.entries[i], true
	}
	if i, ok := c.index[foldKey(trimExt(label))]; ok {
		return c.entries[i], true
	}
	return Entry{}, false
}

// New builds a catalog from entries, renumbering them in order. When two
// entries share a label, Lookup resolves to the first.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		index:   make(map[string]int, 2*len(entries)),
	}
	for i, entry := range entries {
		entry.Index = i
		if strings.TrimSpace(entry.Label) == "" {
			return nil, fmt.Errorf("catalog row %d: empty label", i)
		}
		for _, key := range []string{foldKey(entry.Label), foldKey(entry.ID())} {
			if _, taken := c.index[key]; !taken {
				c.index[key] = i
			}
		}
		c.entries[i] = entry
	}
	return c, nil
}

// LoadFS reads the catalog file name from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	cat, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cat, nil
}

// Load reads a catalog CSV.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty catalog")
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := columnIndex(header)
	labelCol, ok := cols[strings.ToLower(ColumnLabel)]
	if !ok {
		return nil, fmt.Errorf("catalog header missing %q column", ColumnLabel)
	}

	var entries []Entry
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", row, err)
		}
		entry := Entry{Label: strings.TrimSpace(cell(record, labelCol))}
		if entry.Similar, err = listColumn(record, cols, ColumnSimilar); err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", row, err)
		}
		for i, label := range entry.Similar {
			entry.Similar[i] = strings.TrimSuffix(label, ".csv")
		}
		if entry.Composition, err = listColumn(record, cols, ColumnComposition); err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", row, err)
		}
		if entry.SpaceGroups, err = listColumn(record, cols, ColumnSpaceGroup); err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", row, err)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, errors.New("catalog has no entries")
	}
	return New(entries)
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name == "" {
			continue
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func listColumn(record []string, cols map[string]int, name string) ([]string, error) {
	idx, ok := cols[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	values, err := ParseList(cell(record, idx))
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", name, err)
	}
	return values, nil
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// foldKey applies Unicode case folding; a Caser is stateful, so one is made per call.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

func trimExt(label string) string {
	if i := strings.LastIndexByte(label, '.'); i > 0 {
		return label[:i]
	}
	return label
}
