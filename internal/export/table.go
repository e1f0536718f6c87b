// Package export serializes extraction results to CSV and XLSX files.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/a3tai/mcp-financial-extractor/internal/finance"
)

// NullValue is written in place of an absent value
const NullValue = "NULL"

// Header lists the output columns in order
var Header = []string{"Line Item", "Year", "Value", "Currency", "Units", "Confidence Flag"}

// Row is one serialized record. Value and Year keep their numeric form so
// spreadsheet writers can store real numbers.
type Row struct {
	LineItem   string
	Year       finance.Year
	Value      *float64
	Currency   string
	Units      string
	Confidence string
}

// Rows flattens a result into output rows, attaching the document metadata to each
func Rows(result *finance.Result) []Row {
	rows := make([]Row, 0, len(result.Records))
	for _, rec := range result.Records {
		rows = append(rows, Row{
			LineItem:   rec.LineItem.String(),
			Year:       rec.Year,
			Value:      rec.Value,
			Currency:   string(result.Metadata.Currency),
			Units:      string(result.Metadata.Units),
			Confidence: rec.Confidence.String(),
		})
	}
	return rows
}

// Strings renders the row as text cells in Header order
func (r Row) Strings() []string {
	return []string{r.LineItem, r.Year.String(), FormatValue(r.Value), r.Currency, r.Units, r.Confidence}
}

// FormatValue renders a value without float noise, or NullValue when absent
func FormatValue(v *float64) string {
	if v == nil {
		return NullValue
	}
	return decimal.NewFromFloat(*v).String()
}

func yearCell(y finance.Year) any {
	if !y.Known() {
		return y.String()
	}
	return int(y)
}
