package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Resampling grid and the r range every input must cover.
const (
	GridStart  = 0.0
	GridEnd    = 30.0
	GridStep   = 0.1
	GridPoints = 301

	DomainMin      = 0.0
	DomainMinReach = 30.0
)

// Features is a curve resampled onto Grid with a peak of exactly 1.
type Features []float64

// Grid returns the resampling grid {0.0, 0.1, ..., 30.0}.
func Grid() []float64 {
	grid := make([]float64, GridPoints)
	for i := range grid {
		// Divide rather than accumulate so the last point is exactly GridEnd.
		grid[i] = float64(i) / 10
	}
	return grid
}

// CheckDomain requires min(r) == minVal and max(r) >= maxVal.
func CheckDomain(r []float64, minVal, maxVal float64) error {
	if len(r) == 0 {
		return fmt.Errorf("%w: empty r column", ErrOutOfRange)
	}
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: r column contains non-finite values", ErrOutOfRange)
		}
	}
	lo, hi := floats.Min(r), floats.Max(r)
	if lo != minVal || hi < maxVal {
		return fmt.Errorf("%w: minimum r should be %g and maximum r should be at least %g, got [%g, %g]",
			ErrOutOfRange, minVal, maxVal, lo, hi)
	}
	return nil
}

// CheckIncreasing requires r to be strictly increasing.
func CheckIncreasing(r []float64) error {
	for i := 1; i < len(r); i++ {
		if !(r[i] > r[i-1]) {
			return fmt.Errorf("%w: r must be strictly increasing (r[%d]=%g follows %g)", ErrOutOfRange, i, r[i], r[i-1])
		}
	}
	return nil
}

// Validate applies the checks every classifier input must pass.
func (c Curve) Validate() error {
	if len(c.R) != len(c.G) {
		return fmt.Errorf("%w: r and G(r) lengths differ (%d != %d)", ErrOutOfRange, len(c.R), len(c.G))
	}
	if err := CheckDomain(c.R, DomainMin, DomainMinReach); err != nil {
		return err
	}
	return CheckIncreasing(c.R)
}

// Normalize returns g divided by its maximum.
func Normalize(g []float64) ([]float64, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: empty intensity column", ErrOutOfRange)
	}
	for _, v := range g {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: intensity column contains non-finite values", ErrOutOfRange)
		}
	}
	peak := floats.Max(g)
	if peak <= 0 {
		return nil, fmt.Errorf("%w: intensity maximum must be positive, got %g", ErrOutOfRange, peak)
	}
	out := make([]float64, len(g))
	for i, v := range g {
		out[i] = v / peak
	}
	return out, nil
}

// Resample linearly interpolates (r, g) at every Grid point. r must cover
// [GridStart, GridEnd]; no extrapolation is performed.
func Resample(r, g []float64) (Features, error) {
	if len(r) != len(g) {
		return nil, fmt.Errorf("%w: r and G(r) lengths differ (%d != %d)", ErrOutOfRange, len(r), len(g))
	}
	if len(r) < 2 {
		return nil, fmt.Errorf("%w: need at least two samples to interpolate", ErrOutOfRange)
	}
	// interp panics on unsorted abscissae.
	if err := CheckIncreasing(r); err != nil {
		return nil, err
	}
	if r[0] > GridStart || r[len(r)-1] < GridEnd {
		return nil, fmt.Errorf("%w: r span [%g, %g] does not cover the grid [%g, %g]",
			ErrOutOfRange, r[0], r[len(r)-1], GridStart, GridEnd)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(r, g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	grid := Grid()
	out := make(Features, len(grid))
	for i, x := range grid {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// Prepare validates c and produces the classifier feature vector together
// with the peak-normalized curve.
func Prepare(c Curve) (Features, Curve, error) {
	if err := c.Validate(); err != nil {
		return nil, Curve{}, err
	}
	g, err := Normalize(c.G)
	if err != nil {
		return nil, Curve{}, err
	}
	features, err := Resample(c.R, g)
	if err != nil {
		return nil, Curve{}, err
	}
	// The raw peak may fall between grid points or beyond GridEnd.
	peak := floats.Max(features)
	if peak <= 0 {
		return nil, Curve{}, fmt.Errorf("%w: no positive intensity within r <= %g", ErrOutOfRange, GridEnd)
	}
	for i := range features {
		features[i] /= peak
	}
	r := make([]float64, len(c.R))
	copy(r, c.R)
	return features, Curve{R: r, G: g}, nil
}

// FeatureCurve pairs features with Grid.
func FeatureCurve(f Features) Curve {
	g := make([]float64, len(f))
	copy(g, f)
	return Curve{R: Grid(), G: g}
}
