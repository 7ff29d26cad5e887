package analysis

import (
	"time"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/core/quarterly"
	"equity_research/pkg/core/scenario"
	"equity_research/pkg/core/trend"
	"equity_research/pkg/core/valuation"
)

// CompanyAnalysis is the complete analytical profile for one company,
// produced by the engine and consumed by the report builder and the
// Postgres repository.
type CompanyAnalysis struct {
	Ticker       string    `json:"ticker"`
	Company      string    `json:"company"`
	LastAnalyzed time.Time `json:"last_analyzed"`

	Growth        []calc.GrowthMetrics        `json:"growth_metrics"`
	Profitability []calc.ProfitabilityMetrics `json:"profitability_metrics"`
	Balance       []calc.BalanceMetrics       `json:"balance_sheet_metrics"`
	Returns       []calc.ReturnsMetrics       `json:"returns_metrics"`
	Efficiency    []calc.EfficiencyMetrics    `json:"efficiency_metrics"`

	RevenueSummary     calc.Summary `json:"revenue_summary"`
	GrossMarginSummary calc.Summary `json:"gross_margin_summary"`

	Trends trend.Trends `json:"trends"`

	Multiples      valuation.Multiples      `json:"multiples"`
	FairValue      valuation.FairValue      `json:"fair_value"`
	Attractiveness valuation.Attractiveness `json:"attractiveness"`

	Scenarios    scenario.Expected `json:"scenarios"`
	HaveScenario bool              `json:"have_scenario"`

	Seasonality quarterly.Seasonality `json:"seasonality"`
	Volatility  quarterly.Volatility  `json:"volatility"`

	Decision Decision `json:"decision"`
}

// LatestBalance returns the most recent balance sheet metrics row.
func (a *CompanyAnalysis) LatestBalance() (calc.BalanceMetrics, bool) {
	if len(a.Balance) == 0 {
		return calc.BalanceMetrics{}, false
	}
	return a.Balance[len(a.Balance)-1], true
}

// LatestProfit returns the most recent profitability metrics row.
func (a *CompanyAnalysis) LatestProfit() (calc.ProfitabilityMetrics, bool) {
	if len(a.Profitability) == 0 {
		return calc.ProfitabilityMetrics{}, false
	}
	return a.Profitability[len(a.Profitability)-1], true
}
