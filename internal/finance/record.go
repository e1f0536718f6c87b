package finance

import (
	"encoding/json"
	"strconv"
)

// Confidence tags how trustworthy an extracted value is
type Confidence int

const (
	ConfidenceOK Confidence = iota
	ConfidenceLow
	ConfidenceMissing
	// ConfidenceReviewRequired is ranked but no heuristic currently produces it
	ConfidenceReviewRequired
)

// Rank orders confidences for deduplication, lower is better
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceOK, ConfidenceLow, ConfidenceMissing, ConfidenceReviewRequired:
		return int(c)
	default:
		return 9
	}
}

// Better reports whether c is strictly more reliable than other
func (c Confidence) Better(other Confidence) bool {
	return c.Rank() < other.Rank()
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceOK:
		return "OK"
	case ConfidenceLow:
		return "Low Confidence"
	case ConfidenceMissing:
		return "Missing"
	case ConfidenceReviewRequired:
		return "Review Required"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Year is a fiscal year; the zero value means the year could not be determined
type Year int

// UnknownYear marks a value that could not be aligned to a fiscal year
const UnknownYear Year = 0

// Known reports whether y is an actual calendar year
func (y Year) Known() bool {
	return y != UnknownYear
}

func (y Year) String() string {
	if !y.Known() {
		return "Unknown"
	}
	return strconv.Itoa(int(y))
}

// MarshalJSON writes known years as numbers and the unknown year as "Unknown"
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Known() {
		return json.Marshal(y.String())
	}
	return []byte(strconv.Itoa(int(y))), nil
}

// Record is one extracted (line item, year) observation
type Record struct {
	LineItem   LineItem   `json:"line_item"`
	Year       Year       `json:"year"`
	Value      *float64   `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// HasValue reports whether the record carries a parsed number
func (r Record) HasValue() bool {
	return r.Value != nil
}

type recordKey struct {
	item LineItem
	year Year
}

func (r Record) key() recordKey {
	return recordKey{item: r.LineItem, year: r.Year}
}

func missingRecord(item LineItem, year Year) Record {
	return Record{LineItem: item, Year: year, Confidence: ConfidenceMissing}
}
