package finance

import (
	"strings"

	"github.com/rotisserie/eris"
)

// LineItem is a canonical financial statement category
type LineItem int

// Canonical line items in declaration order. Matching precedence follows this order.
const (
	Revenue LineItem = iota + 1
	CostOfGoodsSold
	GrossProfit
	OperatingExpenses
	ResearchAndDevelopment
	OperatingIncome
	InterestExpense
	ProfitBeforeTax
	TaxExpense
	NetIncome
	DepreciationAndAmortization
	EBITDA
)

var lineItemNames = map[LineItem]string{
	Revenue:                     "Revenue",
	CostOfGoodsSold:             "Cost of Goods Sold",
	GrossProfit:                 "Gross Profit",
	OperatingExpenses:           "Operating Expenses",
	ResearchAndDevelopment:      "Research & Development",
	OperatingIncome:             "Operating Income",
	InterestExpense:             "Interest Expense",
	ProfitBeforeTax:             "Profit Before Tax",
	TaxExpense:                  "Tax Expense",
	NetIncome:                   "Net Income",
	DepreciationAndAmortization: "Depreciation & Amortization",
	EBITDA:                      "EBITDA",
}

func (li LineItem) String() string {
	if name, ok := lineItemNames[li]; ok {
		return name
	}
	return "Unknown Line Item"
}

// MarshalText implements encoding.TextMarshaler
func (li LineItem) MarshalText() ([]byte, error) {
	return []byte(li.String()), nil
}

// AliasSet binds a line item to the lowercase phrases that identify it
type AliasSet struct {
	Item    LineItem
	Aliases []string
}

// AliasTable is an ordered, read-only mapping from line items to alias phrases.
// Once built it is never mutated, so one table may back any number of matchers.
type AliasTable struct {
	sets []AliasSet
}

// NewAliasTable builds a table from sets given in precedence order.
// Aliases are trimmed and lowercased; empty aliases and repeated items are rejected.
func NewAliasTable(sets ...AliasSet) (*AliasTable, error) {
	if len(sets) == 0 {
		return nil, eris.New("finance: alias table needs at least one line item")
	}

	seen := make(map[LineItem]bool, len(sets))
	table := &AliasTable{sets: make([]AliasSet, 0, len(sets))}
	for _, set := range sets {
		if seen[set.Item] {
			return nil, eris.Errorf("finance: line item %q declared twice", set.Item)
		}
		seen[set.Item] = true

		if len(set.Aliases) == 0 {
			return nil, eris.Errorf("finance: line item %q has no aliases", set.Item)
		}

		aliases := make([]string, 0, len(set.Aliases))
		for _, alias := range set.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" {
				return nil, eris.Errorf("finance: line item %q has an empty alias", set.Item)
			}
			aliases = append(aliases, alias)
		}
		table.sets = append(table.sets, AliasSet{Item: set.Item, Aliases: aliases})
	}

	return table, nil
}

// DefaultAliasTable returns a freshly built table of the twelve canonical line items
func DefaultAliasTable() *AliasTable {
	table, err := NewAliasTable(
		AliasSet{Revenue, []string{
			"revenue", "net sales", "total revenue", "net revenue",
			"sales", "total net revenue", "total sales", "gross revenue",
		}},
		AliasSet{CostOfGoodsSold, []string{
			"cost of goods sold", "cost of sales", "cost of revenue",
			"cogs", "cost of products sold",
		}},
		AliasSet{GrossProfit, []string{
			"gross profit", "gross margin", "gross income",
		}},
		AliasSet{OperatingExpenses, []string{
			"operating expenses", "operating costs", "total operating expenses",
			"selling general and administrative", "sg&a", "operating expenditure",
		}},
		AliasSet{ResearchAndDevelopment, []string{
			"research and development", "r&d", "r & d expenses",
			"research & development expenses",
		}},
		AliasSet{OperatingIncome, []string{
			"operating income", "operating profit", "income from operations",
			"profit from operations", "ebit",
		}},
		AliasSet{InterestExpense, []string{
			"interest expense", "finance costs", "interest cost",
			"interest charges", "net interest expense",
		}},
		AliasSet{ProfitBeforeTax, []string{
			"profit before tax", "pbt", "income before tax",
			"earnings before tax", "pre-tax income", "pretax income",
		}},
		AliasSet{TaxExpense, []string{
			"income tax", "tax expense", "provision for income taxes",
			"income tax expense", "income taxes",
		}},
		AliasSet{NetIncome, []string{
			"net income", "net profit", "profit after tax", "pat",
			"net earnings", "profit for the year", "profit for the period",
			"net income attributable", "net profit after tax",
		}},
		AliasSet{DepreciationAndAmortization, []string{
			"depreciation", "amortization", "depreciation and amortization",
			"d&a", "depreciation & amortization",
		}},
		AliasSet{EBITDA, []string{
			"ebitda", "earnings before interest tax depreciation amortization",
		}},
	)
	if err != nil {
		// The literal above is fixed; failing here is a programming error.
		panic(err)
	}
	return table
}

// Items returns the table's line items in precedence order
func (t *AliasTable) Items() []LineItem {
	items := make([]LineItem, len(t.sets))
	for i, set := range t.sets {
		items[i] = set.Item
	}
	return items
}

// Aliases returns a copy of the aliases registered for item
func (t *AliasTable) Aliases(item LineItem) []string {
	for _, set := range t.sets {
		if set.Item == item {
			return append([]string(nil), set.Aliases...)
		}
	}
	return nil
}

// Matcher maps lowercased text lines to canonical line items
type Matcher struct {
	table *AliasTable
}

// NewMatcher creates a matcher backed by table
func NewMatcher(table *AliasTable) *Matcher {
	return &Matcher{table: table}
}

// Match returns the line item of the first alias contained in lineLower.
//
// Items are tried in table order and aliases in declaration order, using plain
// substring containment. An earlier item therefore wins whenever aliases of several
// items occur in the same line, and short aliases such as "sales" or "pat" also hit
// inside longer words and phrases ("cost of sales", "compatible").
func (m *Matcher) Match(lineLower string) (LineItem, bool) {
	for _, set := range m.table.sets {
		for _, alias := range set.Aliases {
			if strings.Contains(lineLower, alias) {
				return set.Item, true
			}
		}
	}
	return 0, false
}

// Table returns the alias table backing the matcher
func (m *Matcher) Table() *AliasTable {
	return m.table
}
