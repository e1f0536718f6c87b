// Package finance turns the plain text of financial statements into normalized
// per-year line item records.
//
// The pipeline is a single synchronous pass over the page texts: document
// metadata and fiscal years are inferred from the whole text, each line is
// matched against an alias table, the numbers on matched lines are aligned to
// years, and the candidates are deduplicated and gap-filled. Nothing is shared
// between calls except the read-only alias table, so an Extractor may be used
// from several goroutines at once.
package finance

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoText is returned when there is no page text to extract from
var ErrNoText = eris.New("finance: no text to extract from")

// Result is the outcome of extracting one document
type Result struct {
	Metadata DocumentMetadata `json:"metadata"`
	Years    YearSet          `json:"years"`
	// Records holds exactly one record per canonical line item and coverage year,
	// sorted by line item then year.
	Records []Record `json:"records"`
	// RowCount is the number of records that are not Missing.
	RowCount int `json:"row_count"`
	// Unaligned holds values that were found but could not be tied to one of
	// the detected years. It is always empty when no year was detected.
	Unaligned []Record `json:"unaligned,omitempty"`
}

// Option configures an Extractor
type Option func(*Extractor)

// WithAliasTable replaces the default alias table
func WithAliasTable(table *AliasTable) Option {
	return func(e *Extractor) {
		if table != nil {
			e.matcher = NewMatcher(table)
		}
	}
}

// WithAlignStrategy replaces positional year alignment
func WithAlignStrategy(align AlignStrategy) Option {
	return func(e *Extractor) {
		if align != nil {
			e.align = align
		}
	}
}

// WithMaxYears sets how many of the most recent years are kept
func WithMaxYears(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxYears = n
		}
	}
}

// Extractor runs the extraction pipeline. It holds no per-document state.
type Extractor struct {
	matcher  *Matcher
	align    AlignStrategy
	maxYears int
}

// NewExtractor creates an extractor with the default alias table and positional alignment
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		matcher:  NewMatcher(DefaultAliasTable()),
		align:    AlignByPosition,
		maxYears: DefaultMaxYears,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the pipeline with a default Extractor
func Extract(pages []string) (*Result, error) {
	return NewExtractor().Extract(pages)
}

// Items returns the canonical line items the extractor reports on
func (e *Extractor) Items() []LineItem {
	return e.matcher.Table().Items()
}

// AliasTable returns the table the extractor matches lines against
func (e *Extractor) AliasTable() *AliasTable {
	return e.matcher.Table()
}

// MaxYears returns the fiscal-year cap used for detection
func (e *Extractor) MaxYears() int {
	return e.maxYears
}

// Extract converts page texts into a deduplicated, gap-filled record set.
// It fails only with ErrNoText; any text, however malformed, yields a result.
func (e *Extractor) Extract(pages []string) (*Result, error) {
	if !hasText(pages) {
		return nil, ErrNoText
	}

	combined := strings.Join(pages, " ")
	meta := DetectMetadata(combined)
	years := DetectYears(combined, e.maxYears)

	var candidates []Record
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			candidates = append(candidates, e.ExtractLine(line, years)...)
		}
	}

	deduped := Deduplicate(candidates)
	aligned, unaligned := splitUnaligned(deduped, years)
	records := FillGaps(aligned, e.Items(), years)
	SortRecords(records)
	SortRecords(unaligned)

	return &Result{
		Metadata:  meta,
		Years:     years,
		Records:   records,
		RowCount:  countRows(records),
		Unaligned: unaligned,
	}, nil
}

// ExtractLine returns the candidate records of a single raw text line.
// Lines that match no line item yield nothing. A matched line without numbers
// yields one Missing record for the unknown year.
func (e *Extractor) ExtractLine(line string, years YearSet) []Record {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	item, ok := e.matcher.Match(strings.ToLower(line))
	if !ok {
		return nil
	}

	tokens := NumericTokens(line)
	if len(tokens) == 0 {
		return []Record{missingRecord(item, UnknownYear)}
	}

	assigned := e.align(len(tokens), years)
	records := make([]Record, 0, len(tokens))
	for i, tok := range tokens {
		year := UnknownYear
		if i < len(assigned) {
			year = assigned[i]
		}

		rec := Record{LineItem: item, Year: year, Value: parseValue(tok), Confidence: ConfidenceOK}
		if !rec.HasValue() {
			rec.Confidence = ConfidenceLow
		}
		records = append(records, rec)
	}
	return records
}

// splitUnaligned separates records outside the detected years. Placeholders for
// the unknown year carry nothing and are dropped; gap filling covers those items.
func splitUnaligned(records []Record, years YearSet) (aligned, unaligned []Record) {
	if len(years) == 0 {
		return records, nil
	}

	aligned = make([]Record, 0, len(records))
	for _, rec := range records {
		switch {
		case years.Contains(rec.Year):
			aligned = append(aligned, rec)
		case rec.Confidence != ConfidenceMissing:
			unaligned = append(unaligned, rec)
		}
	}
	return aligned, unaligned
}

func countRows(records []Record) int {
	n := 0
	for _, rec := range records {
		if rec.Confidence != ConfidenceMissing {
			n++
		}
	}
	return n
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
