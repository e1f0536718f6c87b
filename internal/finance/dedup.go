package finance

import "sort"

// Deduplicate keeps one record per (line item, year).
// The first record seen for a key survives unless a later one has strictly better
// confidence, so a restated figure never displaces the first parsed value while a
// Missing placeholder is still upgraded once a real value turns up.
// Output order follows the first appearance of each key.
func Deduplicate(records []Record) []Record {
	index := make(map[recordKey]int, len(records))
	out := make([]Record, 0, len(records))

	for _, rec := range records {
		k := rec.key()
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, rec)
			continue
		}
		if rec.Confidence.Better(out[i].Confidence) {
			out[i] = rec
		}
	}

	return out
}

// FillGaps adds a Missing placeholder for every (item, year) pair that has no
// record, so each item reports on every year of the coverage set even when the
// document never mentions it.
func FillGaps(records []Record, items []LineItem, years YearSet) []Record {
	present := make(map[recordKey]bool, len(records))
	for _, rec := range records {
		present[rec.key()] = true
	}

	out := append([]Record(nil), records...)
	for _, item := range items {
		for _, year := range years.Coverage() {
			k := recordKey{item: item, year: year}
			if present[k] {
				continue
			}
			present[k] = true
			out = append(out, missingRecord(item, year))
		}
	}

	return out
}

// SortRecords orders records by line item name, then year ascending with the
// unknown year last
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.LineItem != b.LineItem {
			return a.LineItem.String() < b.LineItem.String()
		}
		return yearLess(a.Year, b.Year)
	})
}

func yearLess(a, b Year) bool {
	switch {
	case a.Known() && b.Known():
		return a < b
	case a.Known():
		return true
	default:
		return false
	}
}
