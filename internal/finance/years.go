package finance

import (
	"regexp"
	"sort"
	"strconv"
)

const (
	MinFiscalYear = 1990
	MaxFiscalYear = 2030

	// DefaultMaxYears bounds how many distinct years a document may report on
	DefaultMaxYears = 5
)

var yearPattern = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// YearSet holds the fiscal years of a document in ascending order
type YearSet []int

// Descending returns the years most recent first
func (ys YearSet) Descending() []Year {
	out := make([]Year, len(ys))
	for i, y := range ys {
		out[len(ys)-1-i] = Year(y)
	}
	return out
}

// Coverage returns the years every line item must be reported for:
// the set itself, or the unknown year alone when the set is empty.
func (ys YearSet) Coverage() []Year {
	if len(ys) == 0 {
		return []Year{UnknownYear}
	}
	out := make([]Year, len(ys))
	for i, y := range ys {
		out[i] = Year(y)
	}
	return out
}

// Contains reports whether year belongs to the set
func (ys YearSet) Contains(year Year) bool {
	for _, y := range ys {
		if Year(y) == year {
			return true
		}
	}
	return false
}

// DetectYears finds the fiscal years mentioned in text.
// Only years in [MinFiscalYear, MaxFiscalYear] count, and only the maxYears most
// recent are kept so page numbers and reference codes cannot crowd the set.
// A non-positive maxYears falls back to DefaultMaxYears.
func DetectYears(text string, maxYears int) YearSet {
	if maxYears <= 0 {
		maxYears = DefaultMaxYears
	}

	seen := make(map[int]bool)
	years := YearSet{}
	for _, m := range yearPattern.FindAllString(text, -1) {
		y, err := strconv.Atoi(m)
		if err != nil || y < MinFiscalYear || y > MaxFiscalYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}

	sort.Ints(years)
	if len(years) > maxYears {
		years = years[len(years)-maxYears:]
	}
	return years
}
