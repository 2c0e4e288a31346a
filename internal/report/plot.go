package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"ciff/internal/curve"
	"ciff/internal/ranking"
)

// MaxPlotted is the number of refined candidates drawn in a comparison plot.
const MaxPlotted = 5

// plotOffset separates consecutive input/reference pairs. Curves are scaled
// to a peak of 1.
const plotOffset = 1.5

// ErrNothingToPlot reports that no candidate carries a best reference.
var ErrNothingToPlot = errors.New("no refined candidates to plot")

// PlotCandidates returns the refined candidates that carry a best reference,
// highest correlation first, capped at MaxPlotted.
func PlotCandidates(preds []ranking.Prediction) []ranking.Prediction {
	var picked []ranking.Prediction
	for _, pred := range ranking.ByPearson(preds) {
		if pred.BestReference == nil {
			continue
		}
		picked = append(picked, pred)
		if len(picked) == MaxPlotted {
			break
		}
	}
	return picked
}

// PlotComparison writes a PNG to path overlaying input with the best
// reference curve of each PlotCandidates entry. Pairs are stacked with a
// vertical offset, the best correlation at the bottom.
func PlotComparison(path string, input curve.Features, preds []ranking.Prediction) error {
	picked := PlotCandidates(preds)
	if len(picked) == 0 {
		return ErrNothingToPlot
	}

	p := plot.New()
	p.Title.Text = "Input vs best reference"
	p.X.Label.Text = "r (Å)"
	p.Y.Label.Text = "G(r), offset"
	p.Legend.Top = true

	grid := curve.Grid()
	var inputThumb plot.Thumbnailer
	for i, pred := range picked {
		offset := float64(i) * plotOffset
		in, err := plotter.NewLine(offsetXYs(grid, input, offset))
		if err != nil {
			return fmt.Errorf("input line: %w", err)
		}
		in.Color = color.Black
		in.Width = vg.Points(1)
		if inputThumb == nil {
			inputThumb = in
		}

		ref := pred.BestReference
		refR := ref.R
		if len(refR) != len(ref.G) {
			refR = grid
		}
		refLine, err := plotter.NewLine(offsetXYs(refR, ref.G, offset))
		if err != nil {
			return fmt.Errorf("reference line for %s: %w", pred.Entry.ID(), err)
		}
		refLine.Color = plotutil.Color(i)
		refLine.Width = vg.Points(1)
		refLine.Dashes = plotutil.Dashes(1)

		p.Add(in, refLine)
		p.Legend.Add(fmt.Sprintf("%s (%s) r=%.3f", pred.Entry.ID(), ref.Name, pred.Pearson), refLine)
	}
	p.Legend.Add("input", inputThumb)

	height := vg.Length(3+1.2*float64(len(picked))) * vg.Inch
	if err := p.Save(8*vg.Inch, height, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

func offsetXYs(x, y []float64, offset float64) plotter.XYs {
	n := min(len(x), len(y))
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i].X = x[i]
		pts[i].Y = y[i] + offset
	}
	return pts
}
