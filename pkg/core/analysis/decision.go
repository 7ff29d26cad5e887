package analysis

import (
	"fmt"
	"strings"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// HorizonCall is the recommendation for one investment time horizon.
type HorizonCall struct {
	Horizon        string `json:"horizon"`
	Period         string `json:"period"`
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
	Assessment     string `json:"assessment"`
}

// Decision is the final investment call assembled from the valuation score,
// the scenario outcomes, and the liquidity picture.
type Decision struct {
	Recommendation   string        `json:"recommendation"`
	Confidence       string        `json:"confidence"`
	Score            int           `json:"score"`
	Horizons         []HorizonCall `json:"horizons"`
	CashRunwayMonths float64       `json:"cash_runway_months"`
	ExpectedValue    float64       `json:"expected_value"`
	Positives        []string      `json:"positives"`
	Negatives        []string      `json:"negatives"`
	SuitableFor      string        `json:"suitable_for"`
	NotSuitableFor   string        `json:"not_suitable_for"`
	RiskTolerance    string        `json:"risk_tolerance"`
	TimeHorizon      string        `json:"time_horizon"`
}

// cashRunwayMonths estimates how long the latest cash balance covers the
// current operating burn. Missing when the company is not burning cash.
func cashRunwayMonths(balance []calc.BalanceMetrics, profit []calc.ProfitabilityMetrics) float64 {
	if len(balance) == 0 || len(profit) == 0 {
		return models.Missing()
	}
	cash := balance[len(balance)-1].Cash
	ebit := profit[len(profit)-1].EBIT
	if models.IsMissing(cash) || models.IsMissing(ebit) || ebit >= 0 {
		return models.Missing()
	}
	monthlyBurn := -ebit / 12
	return cash / monthlyBurn
}

func assessShortTerm(runway float64) string {
	switch {
	case models.IsMissing(runway):
		return "STABLE - No operating cash burn"
	case runway < 6:
		return "CRITICAL - Immediate cash concerns"
	case runway < 12:
		return "CONCERNING - Limited cash runway"
	case runway < 24:
		return "MODERATE - Cash management needed"
	default:
		return "STABLE - Adequate liquidity"
	}
}

func assessMediumTerm(operatingMargin float64) string {
	switch {
	case models.IsMissing(operatingMargin):
		return "UNKNOWN - No margin data"
	case operatingMargin < -50:
		return "LOW - Significant operational challenges"
	case operatingMargin < -20:
		return "MODERATE - Path to profitability unclear"
	case operatingMargin < 0:
		return "GOOD - Near breakeven"
	default:
		return "EXCELLENT - Already profitable"
	}
}

func assessLongTerm(revenue float64) string {
	switch {
	case models.IsMissing(revenue):
		return "UNKNOWN - No revenue data"
	case revenue > 50000:
		return "HIGH - Strong market presence"
	case revenue > 20000:
		return "MODERATE - Niche player with potential"
	default:
		return "LOW - Limited scale"
	}
}

// BuildDecision folds the analysis into per-horizon recommendations and the
// key factors behind them.
func BuildDecision(a *CompanyAnalysis) Decision {
	d := Decision{
		Recommendation: a.Attractiveness.Recommendation,
		Confidence:     a.Attractiveness.Confidence,
		Score:          a.Attractiveness.Score,
		ExpectedValue:  models.Missing(),
		SuitableFor:    "High-risk/high-reward opportunity investors",
		NotSuitableFor: "Conservative, income-focused, or capital preservation investors",
		RiskTolerance:  "Very High",
		TimeHorizon:    "2-5 years",
	}

	runway := cashRunwayMonths(a.Balance, a.Profitability)
	d.CashRunwayMonths = runway

	shortRec := "SPECULATIVE"
	shortReason := "No operating cash burn"
	if !models.IsMissing(runway) {
		shortReason = fmt.Sprintf("Cash runway: %.0f months", runway)
		if runway < 12 {
			shortRec = "AVOID"
		}
	}
	d.Horizons = append(d.Horizons, HorizonCall{
		Horizon:        "short_term",
		Period:         "1-2 Years",
		Recommendation: shortRec,
		Reason:         shortReason,
		Assessment:     assessShortTerm(runway),
	})

	latestMargin := models.Missing()
	if p, ok := a.LatestProfit(); ok {
		latestMargin = p.OperatingMargin
	}
	mediumRec := "SELL"
	mediumReason := "No scenario projection available"
	if a.HaveScenario {
		d.ExpectedValue = a.Scenarios.Valuation
		mediumReason = fmt.Sprintf("Expected CAGR: %.1f%%", a.Scenarios.CAGR)
		if a.Scenarios.CAGR > 0 {
			mediumRec = "HOLD"
		}
	}
	d.Horizons = append(d.Horizons, HorizonCall{
		Horizon:        "medium_term",
		Period:         "3-5 Years",
		Recommendation: mediumRec,
		Reason:         mediumReason,
		Assessment:     assessMediumTerm(latestMargin),
	})

	latestRevenue := models.Missing()
	if p, ok := a.LatestProfit(); ok {
		latestRevenue = p.Revenue
	}
	longAssessment := assessLongTerm(latestRevenue)
	longRec := "SPECULATIVE BUY"
	if strings.HasPrefix(longAssessment, "LOW") {
		longRec = "AVOID"
	}
	d.Horizons = append(d.Horizons, HorizonCall{
		Horizon:        "long_term",
		Period:         "5+ Years",
		Recommendation: longRec,
		Reason:         "Strategic value and acquisition potential",
		Assessment:     longAssessment,
	})

	d.Positives, d.Negatives = decisionFactors(a, runway)
	return d
}

func decisionFactors(a *CompanyAnalysis, runway float64) (positives, negatives []string) {
	grossMargins := make([]float64, 0, len(a.Profitability))
	opMargins := make([]float64, 0, len(a.Profitability))
	for _, p := range a.Profitability {
		grossMargins = append(grossMargins, p.GrossMargin)
		opMargins = append(opMargins, p.OperatingMargin)
	}
	avgGross := calc.Mean(calc.Tail(grossMargins, 3))
	avgOp := calc.Mean(calc.Tail(opMargins, 3))

	if !models.IsMissing(avgGross) && avgGross > 50 {
		positives = append(positives, fmt.Sprintf("Strong gross margins (%.1f%% avg)", avgGross))
	}
	if b, ok := a.LatestBalance(); ok {
		if !models.IsMissing(b.CurrentRatio) && b.CurrentRatio > 2 {
			positives = append(positives, fmt.Sprintf("Good liquidity (Current ratio: %.2f)", b.CurrentRatio))
		}
		if !models.IsMissing(b.Cash) && b.Cash < 10000 {
			negatives = append(negatives, fmt.Sprintf("Critical cash position: $%.0fK", b.Cash))
		}
	}
	if a.HaveScenario && a.Scenarios.CAGR < 0 {
		negatives = append(negatives, fmt.Sprintf("Expected revenue decline: %.1f%% CAGR", a.Scenarios.CAGR))
	}
	if !models.IsMissing(avgOp) && avgOp < 0 {
		negatives = append(negatives, fmt.Sprintf("Negative operating margins: %.1f%% avg", avgOp))
	}
	if !models.IsMissing(runway) && runway < 24 {
		negatives = append(negatives, fmt.Sprintf("Cash runway: %.0f months", runway))
	}
	return positives, negatives
}
