package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableView describes a rendered table. Columns listed in numeric are
// right-aligned.
type tableView struct {
	title   string
	headers []string
	rows    [][]string
	numeric map[int]bool
	footer  []string
}

func (v tableView) render() string {
	columns := len(v.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if v.title != "" {
		tw.SetTitle(v.title)
	}
	tw.AppendHeader(padRow(v.headers, columns))
	for _, row := range v.rows {
		tw.AppendRow(padRow(row, columns))
	}
	if len(v.footer) > 0 {
		tw.AppendFooter(padRow(v.footer, columns))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if v.numeric[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func padRow(values []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
