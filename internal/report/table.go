package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ciff/internal/ranking"
)

// Column is one column of a rendered table.
type Column struct {
	Header string
	Right  bool
}

// RenderTable draws rows under cols with a rounded border. Headers keep their
// case; short rows are padded with empty cells.
func RenderTable(cols []Column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, col := range cols {
		header[i] = col.Header
		align := text.AlignLeft
		if col.Right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range cols {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// Table renders the first n predictions. The Pearson column is present only
// when withPearson is set; unscored candidates show "-".
func Table(preds []ranking.Prediction, n int, withPearson bool) string {
	cols := []Column{{Header: "#", Right: true}, {Header: "ID"}, {Header: "Probability", Right: true}}
	if withPearson {
		cols = append(cols, Column{Header: "Pearson", Right: true})
	}
	cols = append(cols, Column{Header: "Composition"}, Column{Header: "Space group"}, Column{Header: "Similar"})

	top := ranking.Top(preds, n)
	rows := make([][]string, 0, len(top))
	for i, pred := range top {
		self := pred.Entry.Self()
		row := []string{
			strconv.Itoa(i + 1),
			self.ID,
			strconv.FormatFloat(pred.Probability*100, 'f', 1, 64) + "%",
		}
		if withPearson {
			cell := "-"
			if pred.HasPearson {
				cell = strconv.FormatFloat(pred.Pearson, 'f', 3, 64)
			}
			row = append(row, cell)
		}
		members := pred.Entry.Members()
		similar := make([]string, 0, len(members))
		for _, m := range members {
			similar = append(similar, m.ID)
		}
		rows = append(rows, append(row, self.Composition, self.SpaceGroup, strings.Join(similar, ", ")))
	}
	return RenderTable(cols, rows)
}
