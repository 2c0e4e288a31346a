package refbank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ciff/internal/curve"
)

type referenceRow struct {
	Label string `db:"label"`
	Name  string `db:"name"`
	R     []byte `db:"r"`
	G     []byte `db:"g"`
}

// References returns the curves stored under label ordered by name. A label
// with no curves yields an empty slice.
func (s *Store) References(ctx context.Context, label string) ([]Reference, error) {
	ctx = ensureContext(ctx)
	if refs, ok := s.cached(label); ok {
		return refs, nil
	}

	var rows []referenceRow
	err := retryOnBusy(ctx, func() error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows,
			"SELECT label, name, r, g FROM reference_curves WHERE label = ? ORDER BY name", label)
	})
	if err != nil {
		return nil, fmt.Errorf("select references for %s: %w", label, err)
	}

	refs := make([]Reference, 0, len(rows))
	for _, row := range rows {
		ref, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	s.remember(label, refs)
	return refs, nil
}

// Import validates c, resamples it onto the model grid and stores it under
// label/name, replacing any curve with the same key.
func (s *Store) Import(ctx context.Context, label, name string, c curve.Curve) error {
	ctx = ensureContext(ctx)
	label = strings.TrimSpace(label)
	name = strings.TrimSpace(name)
	if label == "" || name == "" {
		return errors.New("import reference: label and name are required")
	}
	features, _, err := curve.Prepare(c)
	if err != nil {
		return fmt.Errorf("import reference %s/%s: %w", label, name, err)
	}
	r, err := msgpack.Marshal(curve.Grid())
	if err != nil {
		return fmt.Errorf("encode r for %s/%s: %w", label, name, err)
	}
	g, err := msgpack.Marshal([]float64(features))
	if err != nil {
		return fmt.Errorf("encode g for %s/%s: %w", label, name, err)
	}

	err = retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `INSERT INTO reference_curves (label, name, r, g, imported_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(label, name) DO UPDATE SET r = excluded.r, g = excluded.g, imported_at = excluded.imported_at`,
			label, name, r, g, time.Now().UTC().Format(time.RFC3339))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("store reference %s/%s: %w", label, name, err)
	}
	s.forget(label)
	return nil
}

// Labels returns the distinct labels present in the bank in ascending order.
func (s *Store) Labels(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	var labels []string
	err := retryOnBusy(ctx, func() error {
		labels = labels[:0]
		return s.db.SelectContext(ctx, &labels, "SELECT DISTINCT label FROM reference_curves ORDER BY label")
	})
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

// Count returns the number of stored curves.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ensureContext(ctx), &n, "SELECT COUNT(1) FROM reference_curves"); err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return n, nil
}

func decodeRow(row referenceRow) (Reference, error) {
	ref := Reference{Label: row.Label, Name: row.Name}
	if err := msgpack.Unmarshal(row.R, &ref.R); err != nil {
		return Reference{}, fmt.Errorf("decode r for %s/%s: %w", row.Label, row.Name, err)
	}
	if err := msgpack.Unmarshal(row.G, &ref.G); err != nil {
		return Reference{}, fmt.Errorf("decode g for %s/%s: %w", row.Label, row.Name, err)
	}
	return ref, nil
}
