package finance

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// optional sign or opening paren, comma-grouped digits, optional fraction, optional closing paren
	numericTokenPattern = regexp.MustCompile(`[(\-]?[\d,]+(?:\.\d+)?\)?`)
	bareYearPattern     = regexp.MustCompile(`^\d{4}$`)
	parenthesizedValue  = regexp.MustCompile(`^\([\d,.]+\)$`)
)

// NumericTokens returns the numeric tokens of line in order of appearance.
// Bare four-digit tokens are treated as stray years and dropped; "1,500" is kept.
func NumericTokens(line string) []string {
	matches := numericTokenPattern.FindAllString(line, -1)
	tokens := matches[:0]
	for _, tok := range matches {
		if bareYearPattern.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ParseNumber converts a numeric token to a float.
// A token wrapped in parentheses is negative. The boolean is false when the token
// does not hold a number, e.g. a lone comma or an unbalanced parenthesis.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if parenthesizedValue.MatchString(raw) {
		raw = "-" + raw[1:len(raw)-1]
	}
	raw = strings.ReplaceAll(raw, ",", "")

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func parseValue(raw string) *float64 {
	v, ok := ParseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}
