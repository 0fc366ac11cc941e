package carrier

import (
	"fmt"
	"sort"
)

// overageStepGrams is the step size used to price weight beyond the last
// bracket of a provider's table.
const overageStepGrams = 500

// Bracket is one weight tier of a provider's static price table.
type Bracket struct {
	CeilingGrams int
	Price        int64
}

// FeeTable holds static, carrier-specific weight-bracket prices. It backs
// fallback quotes when a live carrier quote is unavailable.
type FeeTable struct {
	brackets map[string][]Bracket
	overage  map[string]int64
}

// NewFeeTable creates an empty fee table.
func NewFeeTable() *FeeTable {
	return &FeeTable{
		brackets: make(map[string][]Bracket),
		overage:  make(map[string]int64),
	}
}

// DefaultFeeTable returns a table seeded with the standard domestic price
// brackets for every supported provider. Prices are VND.
func DefaultFeeTable() *FeeTable {
	t := NewFeeTable()
	t.Set("viettelpost", 4500, []Bracket{
		{CeilingGrams: 500, Price: 16500},
		{CeilingGrams: 1000, Price: 18000},
		{CeilingGrams: 2000, Price: 23000},
		{CeilingGrams: 3000, Price: 28500},
	})
	t.Set("spx", 5000, []Bracket{
		{CeilingGrams: 500, Price: 15000},
		{CeilingGrams: 1000, Price: 16500},
		{CeilingGrams: 2000, Price: 21000},
		{CeilingGrams: 3000, Price: 26000},
	})
	t.Set("jtexpress", 4800, []Bracket{
		{CeilingGrams: 500, Price: 16000},
		{CeilingGrams: 1000, Price: 17500},
		{CeilingGrams: 2000, Price: 22500},
		{CeilingGrams: 3000, Price: 27500},
	})
	return t
}

// Set replaces a provider's brackets and overage unit. Brackets are kept
// sorted by ceiling.
func (t *FeeTable) Set(provider string, overageUnit int64, brackets []Bracket) {
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CeilingGrams < sorted[j].CeilingGrams })
	t.brackets[provider] = sorted
	t.overage[provider] = overageUnit
}

// Providers returns the providers with a configured table, sorted.
func (t *FeeTable) Providers() []string {
	names := make([]string, 0, len(t.brackets))
	for name := range t.brackets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the fallback fee for a provider and weight. The first
// bracket whose ceiling covers the weight wins; weight beyond the last
// ceiling is priced at the last bracket plus an overage unit per started
// 500g step. The result is monotonically non-decreasing in weight.
func (t *FeeTable) Lookup(provider string, weightGrams int) (int64, error) {
	brackets, ok := t.brackets[provider]
	if !ok || len(brackets) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoFallbackTable, provider)
	}
	if weightGrams < 0 {
		weightGrams = 0
	}
	for _, b := range brackets {
		if weightGrams <= b.CeilingGrams {
			return b.Price, nil
		}
	}
	last := brackets[len(brackets)-1]
	over := weightGrams - last.CeilingGrams
	steps := int64((over + overageStepGrams - 1) / overageStepGrams)
	return last.Price + steps*t.overage[provider], nil
}
