package finance

import "strings"

// Currency is the reporting currency inferred for a document
type Currency string

const (
	CurrencyUSD     Currency = "USD"
	CurrencyINR     Currency = "INR"
	CurrencyEUR     Currency = "EUR"
	CurrencyGBP     Currency = "GBP"
	CurrencyCNY     Currency = "CNY"
	CurrencyUnclear Currency = "Unclear"
)

// Units is the scale figures are reported in
type Units string

const (
	UnitsCrores    Units = "Crores"
	UnitsMillions  Units = "Millions"
	UnitsThousands Units = "Thousands"
	UnitsBillions  Units = "Billions"
	UnitsUnclear   Units = "Unclear"
)

// DocumentMetadata applies to every record of a document
type DocumentMetadata struct {
	Currency Currency `json:"currency"`
	Units    Units    `json:"units"`
}

type currencyHint struct {
	currency Currency
	keywords []string
}

type unitsHint struct {
	units    Units
	keywords []string
}

// Checked in order; the first hit decides.
var (
	currencyHints = []currencyHint{
		{CurrencyUSD, []string{"usd", "u.s. dollar", "$"}},
		{CurrencyINR, []string{"inr", "indian rupee", "₹"}},
		{CurrencyEUR, []string{"eur", "euro", "€"}},
		{CurrencyGBP, []string{"gbp", "british pound", "£"}},
		{CurrencyCNY, []string{"cny", "rmb", "yuan"}},
	}
	unitsHints = []unitsHint{
		{UnitsCrores, []string{"crore"}},
		{UnitsMillions, []string{"million"}},
		{UnitsThousands, []string{"thousand"}},
		{UnitsBillions, []string{"billion"}},
	}
)

// DetectMetadata infers one currency and one unit scale for the whole document.
// Documents mixing currencies or scales get whichever label ranks first.
func DetectMetadata(text string) DocumentMetadata {
	lower := strings.ToLower(text)

	meta := DocumentMetadata{Currency: CurrencyUnclear, Units: UnitsUnclear}

currency:
	for _, hint := range currencyHints {
		for _, kw := range hint.keywords {
			if strings.Contains(lower, kw) {
				meta.Currency = hint.currency
				break currency
			}
		}
	}

units:
	for _, hint := range unitsHints {
		for _, kw := range hint.keywords {
			if strings.Contains(lower, kw) {
				meta.Units = hint.units
				break units
			}
		}
	}

	return meta
}
