// Package analysis turns consolidated fiscal years into the full company
// profile: metrics, trends, valuation, scenarios, and the final decision.
package analysis

import (
	"fmt"
	"time"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/core/consolidate"
	"equity_research/pkg/core/quarterly"
	"equity_research/pkg/core/scenario"
	"equity_research/pkg/core/trend"
	"equity_research/pkg/core/valuation"
	"equity_research/pkg/models"
)

// Engine orchestrates the analysis stages over consolidated data.
type Engine struct {
	Ticker          string
	Company         string
	SharesThousands float64
	CutoffYear      int
	DiscountRate    float64
	TerminalGrowth  float64
	ScenarioConfig  scenario.Config
}

// NewEngine returns an engine with the standard assumptions: a 10 percent
// discount rate, 2 percent terminal growth, and 2020 as the start of the
// recent-history window.
func NewEngine(ticker, company string) *Engine {
	return &Engine{
		Ticker:         ticker,
		Company:        company,
		CutoffYear:     2020,
		DiscountRate:   0.10,
		TerminalGrowth: 0.02,
		ScenarioConfig: scenario.DefaultConfig(),
	}
}

// Analyze runs every stage over the consolidated records. Quarterly rows
// and the market summary are optional; the stages that need them degrade
// to missing results.
func (e *Engine) Analyze(
	records []models.AnnualFinancials,
	quarters []models.QuarterlyFinancials,
	market []consolidate.MarketYear,
) (*CompanyAnalysis, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no consolidated records to analyze")
	}

	a := &CompanyAnalysis{
		Ticker:       e.Ticker,
		Company:      e.Company,
		LastAnalyzed: time.Now(),
	}

	a.Growth = calc.ComputeGrowth(records)
	a.Profitability = calc.ComputeProfitability(records)
	a.Balance = calc.ComputeBalance(records)
	a.Returns = calc.ComputeReturns(records)
	a.Efficiency = calc.ComputeEfficiency(records)

	revenues := make([]float64, 0, len(a.Profitability))
	grossMargins := make([]float64, 0, len(a.Profitability))
	for _, p := range a.Profitability {
		revenues = append(revenues, p.Revenue)
		grossMargins = append(grossMargins, p.GrossMargin)
	}
	a.RevenueSummary = calc.Summarize(revenues)
	a.GrossMarginSummary = calc.Summarize(grossMargins)

	a.Trends = trend.NewAnalyzer().Analyze(a.Growth, a.Profitability, a.Balance, a.Returns)

	price := models.Missing()
	if len(market) > 0 {
		price = market[len(market)-1].Close
	}
	a.Multiples = valuation.CalculateMultiples(a.Profitability, a.Balance, price, e.SharesThousands)

	// Engine rates are fractions; the DCF model works in percents.
	dcfInput, haveDCF := valuation.DCFInputFromHistory(
		a.Profitability, e.CutoffYear, e.DiscountRate*100, e.TerminalGrowth*100)
	a.FairValue = valuation.EstimateFairValue(a.Multiples, dcfInput, haveDCF)

	scoreInputs := valuation.ScoreInputsFromMetrics(
		a.Multiples, a.Growth, a.Profitability, a.Balance, e.CutoffYear)
	a.Attractiveness = valuation.ScoreAttractiveness(scoreInputs)

	expected, ok, err := scenario.RunFromMetrics(e.ScenarioConfig, a.Profitability)
	if err != nil {
		return nil, fmt.Errorf("scenario projection failed: %w", err)
	}
	a.Scenarios = expected
	a.HaveScenario = ok

	a.Seasonality = quarterly.AnalyzeSeasonality(quarters)
	a.Volatility = quarterly.AnalyzeVolatility(quarters)

	a.Decision = BuildDecision(a)
	return a, nil
}
