package scenario

import (
	"fmt"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// ProjectedYear is one year of a scenario projection. Revenue and income
// figures are in thousands, margins in percent.
type ProjectedYear struct {
	Year            int
	Revenue         float64
	GrossMargin     float64
	OperatingMargin float64
	GrossProfit     float64
	OperatingIncome float64
	NetIncome       float64
}

// Scenario is a fully projected case with its implied exit valuation.
type Scenario struct {
	Assumptions           Assumptions
	Projections           []ProjectedYear
	FinalRevenue          float64
	RevenueCAGR           float64
	ImpliedEV             float64
	NormalizedProbability float64
}

// Expected holds the probability-weighted outcome across all scenarios.
type Expected struct {
	Revenue   float64
	CAGR      float64
	Valuation float64
	Scenarios []Scenario
}

// growthFor returns the growth rate for projection year i (zero-based).
// The last scheduled rate carries forward past the end of the schedule.
func (a Assumptions) growthFor(i int) float64 {
	if i >= len(a.RevenueGrowth) {
		return a.RevenueGrowth[len(a.RevenueGrowth)-1]
	}
	return a.RevenueGrowth[i]
}

// Build projects a single scenario forward from the latest actual year.
// startMargin is the current operating margin in percent; each year it
// drifts by MarginDrift and is clamped to the cap and floor when set.
func Build(a Assumptions, baseYear int, currentRevenue, startMargin float64, years int) Scenario {
	revenue := currentRevenue
	margin := startMargin

	projections := make([]ProjectedYear, 0, years)
	for i := 0; i < years; i++ {
		revenue *= 1 + a.growthFor(i)/100
		margin += a.MarginDrift
		if a.MarginCap != nil && margin > *a.MarginCap {
			margin = *a.MarginCap
		}
		if a.MarginFloor != nil && margin < *a.MarginFloor {
			margin = *a.MarginFloor
		}

		operatingIncome := revenue * margin / 100
		projections = append(projections, ProjectedYear{
			Year:            baseYear + i + 1,
			Revenue:         revenue,
			GrossMargin:     a.GrossMargin,
			OperatingMargin: margin,
			GrossProfit:     revenue * a.GrossMargin / 100,
			OperatingIncome: operatingIncome,
			NetIncome:       operatingIncome * (1 - a.TaxRate/100),
		})
	}

	final := projections[len(projections)-1].Revenue
	return Scenario{
		Assumptions:  a,
		Projections:  projections,
		FinalRevenue: final,
		RevenueCAGR:  calc.CAGR(final, currentRevenue, years) * 100,
		ImpliedEV:    final * a.ExitMultiple,
	}
}

// Run projects every scenario in the config and weights the outcomes by
// normalized probability.
func Run(cfg Config, baseYear int, currentRevenue, currentMargin float64) (Expected, error) {
	if currentRevenue <= 0 {
		return Expected{}, fmt.Errorf("current revenue must be positive, got %.2f", currentRevenue)
	}

	totalProbability := 0.0
	for _, a := range cfg.Scenarios {
		totalProbability += a.Probability
	}

	expected := Expected{Scenarios: make([]Scenario, 0, len(cfg.Scenarios))}
	for _, a := range cfg.Scenarios {
		s := Build(a, baseYear, currentRevenue, currentMargin, cfg.ProjectionYears)
		s.NormalizedProbability = a.Probability / totalProbability

		expected.Revenue += s.FinalRevenue * s.NormalizedProbability
		expected.CAGR += s.RevenueCAGR * s.NormalizedProbability
		expected.Valuation += s.ImpliedEV * s.NormalizedProbability
		expected.Scenarios = append(expected.Scenarios, s)
	}
	return expected, nil
}

// RunFromMetrics seeds the projection from the most recent profitability
// row that has both revenue and an operating margin. The bool reports
// whether a usable starting point was found.
func RunFromMetrics(cfg Config, profit []calc.ProfitabilityMetrics) (Expected, bool, error) {
	for i := len(profit) - 1; i >= 0; i-- {
		p := profit[i]
		if models.IsMissing(p.Revenue) || p.Revenue <= 0 || models.IsMissing(p.OperatingMargin) {
			continue
		}
		expected, err := Run(cfg, p.Year, p.Revenue, p.OperatingMargin)
		if err != nil {
			return Expected{}, false, err
		}
		return expected, true, nil
	}
	return Expected{}, false, nil
}
