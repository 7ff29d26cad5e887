package valuation

import (
	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// Attractiveness is the additive valuation score and its recommendation.
type Attractiveness struct {
	Score          int
	Factors        []string
	Recommendation string // STRONG BUY .. STRONG SELL
	Confidence     string // High / Medium
}

// ScoreInputs feeds the attractiveness model with recent averages. The
// cutoff year bounds "recent", matching the DCF history window.
type ScoreInputs struct {
	Multiples          Multiples
	AvgRevenueGrowth   float64 // percent, recent years
	AvgOperatingMargin float64 // percent, recent years
	AvgCash            float64 // thousands, recent years
	AvgCurrentRatio    float64
}

// ScoreInputsFromMetrics averages the recent slices of each series.
func ScoreInputsFromMetrics(
	m Multiples,
	growth []calc.GrowthMetrics,
	profit []calc.ProfitabilityMetrics,
	balance []calc.BalanceMetrics,
	cutoffYear int,
) ScoreInputs {
	var growths, margins, cash, ratios []float64
	for _, g := range growth {
		if g.Year >= cutoffYear {
			growths = append(growths, g.RevenueGrowthYoY)
		}
	}
	for _, p := range profit {
		if p.Year >= cutoffYear {
			margins = append(margins, p.OperatingMargin)
		}
	}
	for _, b := range balance {
		if b.Year >= cutoffYear {
			cash = append(cash, b.Cash)
			ratios = append(ratios, b.CurrentRatio)
		}
	}
	return ScoreInputs{
		Multiples:          m,
		AvgRevenueGrowth:   calc.Mean(growths),
		AvgOperatingMargin: calc.Mean(margins),
		AvgCash:            calc.Mean(cash),
		AvgCurrentRatio:    calc.Mean(ratios),
	}
}

// ScoreAttractiveness applies the additive rubric: cheap multiples, growth,
// margins, cash, and liquidity each move the score, and the total maps onto
// the five recommendation bands.
func ScoreAttractiveness(in ScoreInputs) Attractiveness {
	score := 0
	var factors []string

	if !models.IsMissing(in.Multiples.PERatio) {
		switch {
		case in.Multiples.PERatio < 10:
			score += 2
			factors = append(factors, "Low P/E ratio")
		case in.Multiples.PERatio < 15:
			score++
			factors = append(factors, "Moderate P/E ratio")
		default:
			score--
			factors = append(factors, "High P/E ratio")
		}
	}

	if !models.IsMissing(in.Multiples.PBVRatio) {
		switch {
		case in.Multiples.PBVRatio < 1.0:
			score += 2
			factors = append(factors, "Trading below book value")
		case in.Multiples.PBVRatio < 1.5:
			score++
			factors = append(factors, "Moderate P/BV ratio")
		default:
			score--
			factors = append(factors, "High P/BV ratio")
		}
	}

	if !models.IsMissing(in.AvgRevenueGrowth) {
		switch {
		case in.AvgRevenueGrowth > 5:
			score += 2
			factors = append(factors, "Strong revenue growth")
		case in.AvgRevenueGrowth > 0:
			score++
			factors = append(factors, "Positive revenue growth")
		default:
			score -= 2
			factors = append(factors, "Negative revenue growth")
		}
	}

	if !models.IsMissing(in.AvgOperatingMargin) {
		switch {
		case in.AvgOperatingMargin > 10:
			score += 2
			factors = append(factors, "Strong operating margins")
		case in.AvgOperatingMargin > 0:
			score++
			factors = append(factors, "Positive operating margins")
		default:
			score -= 2
			factors = append(factors, "Negative operating margins")
		}
	}

	if !models.IsMissing(in.AvgCash) {
		if in.AvgCash > 10000 { // above $10M
			score++
			factors = append(factors, "Strong cash position")
		} else if in.AvgCash < 1000 { // below $1M
			score -= 2
			factors = append(factors, "Weak cash position")
		}
	}

	if !models.IsMissing(in.AvgCurrentRatio) {
		if in.AvgCurrentRatio > 2.0 {
			score++
			factors = append(factors, "Strong liquidity")
		} else if in.AvgCurrentRatio < 1.0 {
			score -= 2
			factors = append(factors, "Weak liquidity")
		}
	}

	recommendation, confidence := recommendationFor(score)
	return Attractiveness{
		Score:          score,
		Factors:        factors,
		Recommendation: recommendation,
		Confidence:     confidence,
	}
}

func recommendationFor(score int) (string, string) {
	switch {
	case score >= 4:
		return "STRONG BUY", "High"
	case score >= 2:
		return "BUY", "Medium"
	case score >= 0:
		return "HOLD", "Medium"
	case score >= -2:
		return "SELL", "Medium"
	default:
		return "STRONG SELL", "High"
	}
}
