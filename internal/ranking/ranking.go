// Package ranking orders classifier output and optionally re-scores the best
// candidates by Pearson correlation against reference curves.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"ciff/internal/catalog"
	"ciff/internal/curve"
	"ciff/internal/logging"
	"ciff/internal/refbank"
)

// Prediction is the classifier's score for one catalog entry.
type Prediction struct {
	// Index is the catalog row the probability belongs to.
	Index       int
	Entry       catalog.Entry
	Probability float64
	// Pearson is the best correlation against the entry's reference curves.
	// It is meaningful only when HasPearson is set.
	Pearson    float64
	HasPearson bool
	// BestReference is the reference curve that produced Pearson.
	BestReference *refbank.Reference
}

// Rank pairs probs with catalog entries and sorts them by probability,
// highest first. Equal probabilities keep catalog order.
func Rank(probs []float64, cat *catalog.Catalog) ([]Prediction, error) {
	if cat == nil {
		return nil, fmt.Errorf("rank: nil catalog")
	}
	if len(probs) != cat.Len() {
		return nil, fmt.Errorf("rank: classifier returned %d probabilities for %d catalog entries", len(probs), cat.Len())
	}
	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{Index: i, Entry: cat.Entry(i), Probability: p}
	}
	slices.SortStableFunc(preds, func(a, b Prediction) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	return preds, nil
}

// Top returns at most n leading predictions.
func Top(preds []Prediction, n int) []Prediction {
	if n <= 0 {
		return nil
	}
	if n > len(preds) {
		n = len(preds)
	}
	return preds[:n]
}

// Bank supplies reference curves by catalog ID.
type Bank interface {
	References(ctx context.Context, label string) ([]refbank.Reference, error)
}

// CandidateCount resolves the number of candidates to re-score: -1 or any
// count beyond n means all of them.
func CandidateCount(k, n int) int {
	if k < 0 || k > n {
		return n
	}
	return k
}

// Refine computes Pearson scores for the first k predictions in place and
// returns how many candidates were processed. Candidates without reference
// curves are left unscored.
func Refine(ctx context.Context, preds []Prediction, bank Bank, k int, input curve.Features, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	count := CandidateCount(k, len(preds))
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		pred := &preds[i]
		id := pred.Entry.ID()
		refs, err := bank.References(ctx, id)
		if err != nil {
			return i, fmt.Errorf("reference curves for %s: %w", id, err)
		}
		if len(refs) == 0 {
			logging.WarnWithContext(logger, "no reference curves for candidate", "bank_miss",
				logging.String("label", id),
				logging.String(logging.FieldImpact, "candidate keeps its probability without a Pearson score"),
			)
			continue
		}
		best := math.Inf(-1)
		var bestRef *refbank.Reference
		for j := range refs {
			ref := &refs[j]
			if len(ref.G) != len(input) {
				logger.Debug("skipping reference with mismatched length",
					logging.String("label", id),
					logging.String("reference", ref.Name),
					logging.Int("points", len(ref.G)),
				)
				continue
			}
			r := stat.Correlation(input, ref.G, nil)
			if math.IsNaN(r) {
				continue
			}
			if r > best {
				best, bestRef = r, ref
			}
		}
		if bestRef == nil {
			continue
		}
		pred.Pearson = best
		pred.HasPearson = true
		pred.BestReference = bestRef
	}
	return count, nil
}

// ByPearson returns the scored predictions ordered by correlation, highest
// first.
func ByPearson(preds []Prediction) []Prediction {
	out := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		if p.HasPearson {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Prediction) int {
		return cmp.Compare(b.Pearson, a.Pearson)
	})
	return out
}
