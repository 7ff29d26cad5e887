package valuation

import (
	"math"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// DCFInput drives the simplified two-stage model: revenue compounds at the
// historical average growth rate, EBITDA follows the historical average
// margin, and free cash flow is taken as 80% of EBITDA. Rates are percents,
// money is thousands of USD.
type DCFInput struct {
	LatestYear       int
	LatestRevenue    float64
	AvgRevenueGrowth float64 // percent per year
	AvgEBITDAMargin  float64 // percent of revenue
	DiscountRate     float64 // percent
	TerminalGrowth   float64 // percent
	ProjectionYears  int
}

// ProjectedYear is one year of the DCF projection.
type ProjectedYear struct {
	Year    int
	Revenue float64
	EBITDA  float64
	FCF     float64
	PVFCF   float64
}

// DCFResult holds the valuation outputs.
type DCFResult struct {
	Projections             []ProjectedYear
	TerminalValue           float64
	PVTerminalValue         float64
	PVCashFlows             float64
	EnterpriseValue         float64 // thousands
	EnterpriseValueMillions float64
}

const fcfConversionRate = 0.8 // share of EBITDA that converts to free cash flow

// CalculateDCF projects forward from the latest fiscal year and discounts
// back at the input rate. The Gordon terminal value collapses to zero when
// the discount rate does not exceed terminal growth; a perpetuity at or
// below the growth rate has no finite value.
func CalculateDCF(input DCFInput) DCFResult {
	years := input.ProjectionYears
	if years <= 0 {
		years = 5
	}

	var result DCFResult
	revenue := input.LatestRevenue
	for i := 1; i <= years; i++ {
		revenue *= 1 + input.AvgRevenueGrowth/100
		ebitda := revenue * input.AvgEBITDAMargin / 100
		fcf := ebitda * fcfConversionRate
		pv := fcf / math.Pow(1+input.DiscountRate/100, float64(i))
		result.Projections = append(result.Projections, ProjectedYear{
			Year:    input.LatestYear + i,
			Revenue: revenue,
			EBITDA:  ebitda,
			FCF:     fcf,
			PVFCF:   pv,
		})
		result.PVCashFlows += pv
	}

	last := result.Projections[len(result.Projections)-1]
	if input.DiscountRate > input.TerminalGrowth {
		terminalFCF := last.FCF * (1 + input.TerminalGrowth/100)
		result.TerminalValue = terminalFCF / ((input.DiscountRate - input.TerminalGrowth) / 100)
		result.PVTerminalValue = result.TerminalValue / math.Pow(1+input.DiscountRate/100, float64(years))
	}

	result.EnterpriseValue = result.PVCashFlows + result.PVTerminalValue
	result.EnterpriseValueMillions = result.EnterpriseValue / 1000
	return result
}

// DCFInputFromHistory derives the model inputs from the profitability
// series: average YoY revenue growth and average EBITDA margin since the
// cutoff year.
func DCFInputFromHistory(profit []calc.ProfitabilityMetrics, cutoffYear int, discountRate, terminalGrowth float64) (DCFInput, bool) {
	var recent []calc.ProfitabilityMetrics
	for _, p := range profit {
		if p.Year >= cutoffYear {
			recent = append(recent, p)
		}
	}
	if len(recent) == 0 {
		return DCFInput{}, false
	}

	var growths, margins []float64
	for i, p := range recent {
		if i > 0 {
			prev := recent[i-1].Revenue
			if !models.IsMissing(prev) && prev != 0 && !models.IsMissing(p.Revenue) {
				growths = append(growths, (p.Revenue-prev)/prev*100)
			}
		}
		if !models.IsMissing(p.EBITDA) && !models.IsMissing(p.Revenue) && p.Revenue != 0 {
			margins = append(margins, p.EBITDA/p.Revenue*100)
		}
	}

	latest := recent[len(recent)-1]
	if models.IsMissing(latest.Revenue) {
		return DCFInput{}, false
	}
	return DCFInput{
		LatestYear:       latest.Year,
		LatestRevenue:    latest.Revenue,
		AvgRevenueGrowth: calc.Mean(growths),
		AvgEBITDAMargin:  calc.Mean(margins),
		DiscountRate:     discountRate,
		TerminalGrowth:   terminalGrowth,
		ProjectionYears:  5,
	}, true
}
