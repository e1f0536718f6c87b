package finance

// AlignStrategy assigns a fiscal year to each of tokenCount values found on one line
type AlignStrategy func(tokenCount int, years YearSet) []Year

// AlignByPosition pairs the i-th value with the i-th most recent year.
//
// Statements conventionally print the latest year in the first column, so the
// first value goes to the newest year. Values beyond the number of known years,
// and all values when no year is known, get UnknownYear. Column headers are not
// consulted.
func AlignByPosition(tokenCount int, years YearSet) []Year {
	desc := years.Descending()
	out := make([]Year, tokenCount)
	for i := range out {
		if i < len(desc) {
			out[i] = desc[i]
		} else {
			out[i] = UnknownYear
		}
	}
	return out
}
