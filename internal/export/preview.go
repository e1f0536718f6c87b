package export

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

// Preview cell markers
const (
	MissingCell = "-"
	LowCell     = "?"
)

// WritePreview renders records as a text grid with one row per line item and
// one column per year, in the order the records are given.
func WritePreview(out io.Writer, records []finance.Record) {
	var (
		items []finance.LineItem
		years []finance.Year
		cells = make(map[finance.LineItem]map[finance.Year]string)
	)

	for _, rec := range records {
		row, ok := cells[rec.LineItem]
		if !ok {
			row = make(map[finance.Year]string)
			cells[rec.LineItem] = row
			items = append(items, rec.LineItem)
		}
		if !containsYear(years, rec.Year) {
			years = append(years, rec.Year)
		}
		row[rec.Year] = previewCell(rec)
	}

	header := make([]string, 0, len(years)+1)
	header = append(header, "Line Item")
	for _, y := range years {
		header = append(header, y.String())
	}

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	for _, item := range items {
		line := make([]string, 0, len(header))
		line = append(line, item.String())
		for _, y := range years {
			cell, ok := cells[item][y]
			if !ok {
				cell = MissingCell
			}
			line = append(line, cell)
		}
		table.Append(line)
	}
	table.Render()
}

func previewCell(rec finance.Record) string {
	switch {
	case rec.HasValue():
		return FormatValue(rec.Value)
	case rec.Confidence == finance.ConfidenceLow:
		return LowCell
	default:
		return MissingCell
	}
}

func containsYear(years []finance.Year, y finance.Year) bool {
	for _, have := range years {
		if have == y {
			return true
		}
	}
	return false
}
