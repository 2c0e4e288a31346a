package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"ciff/internal/catalog"
	"ciff/internal/ranking"
)

type palette struct {
	heading *color.Color
	value   *color.Color
	muted   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: color.New(color.FgCyan, color.Bold),
		value:   color.New(color.FgGreen),
		muted:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.heading, p.value, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Summary prints the first n predictions with their catalog metadata and
// similar structures.
func Summary(w io.Writer, preds []ranking.Prediction, n int, useColor bool) {
	p := newPalette(useColor)
	for i, pred := range ranking.Top(preds, n) {
		fmt.Fprintln(w)
		p.heading.Fprintf(w, "%d) ", i+1)
		fmt.Fprint(w, "Probability: ")
		p.value.Fprintf(w, "%.1f%%", pred.Probability*100)
		if pred.HasPearson {
			fmt.Fprint(w, ", Pearson: ")
			p.value.Fprintf(w, "%.3f", pred.Pearson)
		}
		fmt.Fprintln(w)
		writeMember(w, p, pred.Entry.Self())
		for _, member := range pred.Entry.Members() {
			writeMember(w, p, member)
		}
	}
}

func writeMember(w io.Writer, p palette, m catalog.Member) {
	fmt.Fprintf(w, "    COD-IDs: %s", m.ID)
	if m.Composition != "" {
		fmt.Fprint(w, ", composition: ")
		p.muted.Fprint(w, m.Composition)
	}
	if m.SpaceGroup != "" {
		fmt.Fprint(w, ", space group: ")
		p.muted.Fprint(w, m.SpaceGroup)
	}
	fmt.Fprintln(w)
}

// PearsonSummary prints the re-scored candidates ordered by correlation.
func PearsonSummary(w io.Writer, preds []ranking.Prediction, useColor bool) {
	scored := ranking.ByPearson(preds)
	if len(scored) == 0 {
		return
	}
	p := newPalette(useColor)
	fmt.Fprintln(w)
	p.heading.Fprintln(w, "Pearson ranking:")
	for i, pred := range scored {
		ref := ""
		if pred.BestReference != nil {
			ref = pred.BestReference.Name
		}
		fmt.Fprintf(w, "    %d) %s r=", i+1, pred.Entry.ID())
		p.value.Fprintf(w, "%.3f", pred.Pearson)
		fmt.Fprintf(w, " (probability %.1f%%", pred.Probability*100)
		if ref != "" {
			fmt.Fprintf(w, ", reference %s", ref)
		}
		fmt.Fprintln(w, ")")
	}
}
