// Package consolidate merges extracted statement rows into one canonical
// record per fiscal year and writes the master datasets used by analysis.
package consolidate

import (
	"math"
	"sort"
	"strings"

	"equity_research/pkg/models"
)

// fieldSpec names one canonical field and the label fragments that identify
// it, in priority order. The first candidate with any match wins.
type fieldSpec struct {
	name       string
	candidates []string
}

var incomeFields = []fieldSpec{
	{"revenue", []string{"net revenue", "total revenue", "revenue"}},
	{"cost_of_revenues", []string{"cost of goods sold", "cost of revenue", "cogs"}},
	{"gross_profit", []string{"gross profit"}},
	{"research_development", []string{"research", "r&d", "research and development"}},
	{"selling_general_admin", []string{"selling, general", "sg&a", "sga"}},
	{"operating_expenses", []string{"total operating expense", "operating expense"}},
	{"operating_income", []string{"operating income", "operating profit"}},
	{"operating_loss", []string{"operating loss"}},
	{"net_income", []string{"net income"}},
	{"net_loss", []string{"net loss"}},
}

var balanceFields = []fieldSpec{
	{"cash_and_equivalents", []string{"cash and cash equivalents", "cash"}},
	{"short_term_investments", []string{"short-term investment", "short term investment"}},
	{"current_assets", []string{"total current assets", "current assets"}},
	{"total_assets", []string{"total assets"}},
	{"short_term_debt", []string{"short-term debt", "current portion"}},
	{"current_liabilities", []string{"total current liabilities", "current liabilities"}},
	{"long_term_debt", []string{"long-term debt", "long term debt"}},
	{"total_liabilities", []string{"total liabilities"}},
	{"stockholders_equity", []string{"stockholders equity", "shareholders equity", "total equity"}},
}

var cashflowFields = []fieldSpec{
	{"depreciation_amortization", []string{"depreciation", "amortization"}},
	{"operating_cash_flow", []string{"operating activities", "cash from operations", "net cash provided by operating"}},
	{"capital_expenditures", []string{"capital expenditure", "capex", "property and equipment"}},
	{"investing_cash_flow", []string{"investing activities", "cash from investing", "net cash used in investing"}},
	{"financing_cash_flow", []string{"financing activities", "cash from financing", "net cash provided by financing"}},
}

// sheetPriority ranks the table a row came from. Primary statement exhibits
// beat note tables, which beat MD&A summaries that often hold percentages.
func sheetPriority(sheetName string) int {
	s := strings.ToLower(sheetName)
	switch {
	case strings.Contains(s, "financial statement"):
		return 0
	case strings.Contains(s, "consolidated") && (strings.Contains(s, "operation") || strings.Contains(s, "balance")):
		return 1
	case strings.Contains(s, "operations") || strings.Contains(s, "income"):
		return 2
	case strings.Contains(s, "balance"):
		return 3
	case strings.Contains(s, "valuation") || strings.Contains(s, "contingent"):
		return 4
	case strings.Contains(s, "consideration"):
		return 8
	case strings.Contains(s, "management") || strings.Contains(s, "selected financial"):
		return 9
	default:
		return 5
	}
}

type candidateValue struct {
	priority int
	order    int
	value    float64 // absolute magnitude
}

// pickField resolves one canonical field for one year. Matches are ranked by
// sheet priority then encounter order, and full-magnitude values (> 100
// thousand) are preferred over stray small numbers like per-share figures.
func pickField(rows []models.StatementRow, spec fieldSpec) float64 {
	for _, candidate := range spec.candidates {
		var found []candidateValue
		for i, row := range rows {
			if !strings.Contains(strings.ToLower(row.LineItem), candidate) {
				continue
			}
			if models.IsMissing(row.Value) || math.Abs(row.Value) <= 0.01 {
				continue
			}
			found = append(found, candidateValue{
				priority: sheetPriority(row.SheetName),
				order:    i,
				value:    math.Abs(row.Value),
			})
		}
		if len(found) == 0 {
			continue
		}
		sort.Slice(found, func(i, j int) bool {
			if found[i].priority != found[j].priority {
				return found[i].priority < found[j].priority
			}
			return found[i].order < found[j].order
		})
		for _, cv := range found {
			if cv.value > 100 {
				return cv.value
			}
		}
		return found[0].value
	}
	return models.Missing()
}

// extractFields resolves every spec for one year's rows into a name→value map.
func extractFields(rows []models.StatementRow, specs []fieldSpec) map[string]float64 {
	out := make(map[string]float64, len(specs))
	for _, spec := range specs {
		out[spec.name] = pickField(rows, spec)
	}
	return out
}
