package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// catalogTable accumulates rows for the rounded console tables the list and
// status commands print. Columns named in rightAligned (0-based) are right
// justified; headers always render left.
type catalogTable struct {
	writer  table.Writer
	columns int
}

func newCatalogTable(headers []string, rightAligned ...int) *catalogTable {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		header[i] = h
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
	}
	for _, col := range rightAligned {
		if col >= 0 && col < len(configs) {
			configs[col].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	return &catalogTable{writer: tw, columns: len(headers)}
}

// addRow appends one row, padding short rows with empty cells.
func (t *catalogTable) addRow(cells ...string) {
	row := make(table.Row, t.columns)
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.writer.AppendRow(row)
}

func (t *catalogTable) render() string {
	return t.writer.Render()
}
