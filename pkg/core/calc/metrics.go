package calc

import (
	"equity_research/pkg/models"
)

// GrowthMetrics covers revenue growth for one fiscal year. CAGR windows
// need enough trailing history and stay missing until it exists.
type GrowthMetrics struct {
	Year             int
	Revenue          float64
	RevenueGrowthYoY float64 // percent
	RevenueCAGR3Y    float64 // percent
	RevenueCAGR5Y    float64 // percent
	RevenueCAGR10Y   float64 // percent
}

// ProfitabilityMetrics covers margins for one fiscal year. EBITDA is proxied
// by EBIT; depreciation detail in the filings is too sparse to split out.
type ProfitabilityMetrics struct {
	Year            int
	Revenue         float64
	GrossProfit     float64
	EBIT            float64
	EBITDA          float64
	NetIncome       float64
	GrossMargin     float64 // percent
	OperatingMargin float64 // percent
	NetMargin       float64 // percent
}

// BalanceMetrics covers leverage and liquidity for one fiscal year.
type BalanceMetrics struct {
	Year               int
	TotalAssets        float64
	TotalLiabilities   float64
	StockholdersEquity float64
	Cash               float64
	TotalDebt          float64
	NetDebt            float64
	DebtToEquity       float64
	DebtToAssets       float64
	CurrentRatio       float64
	QuickRatio         float64
}

// ReturnsMetrics covers capital returns for one fiscal year.
type ReturnsMetrics struct {
	Year               int
	NetIncome          float64
	TotalAssets        float64
	StockholdersEquity float64
	InvestedCapital    float64
	ROE                float64 // percent
	ROA                float64 // percent
	ROIC               float64 // percent
}

// EfficiencyMetrics covers turnover ratios for one fiscal year.
type EfficiencyMetrics struct {
	Year               int
	Revenue            float64
	TotalAssets        float64
	StockholdersEquity float64
	AssetTurnover      float64
	EquityTurnover     float64
}

// EBIT derives earnings before interest and taxes from gross profit and
// operating expenses, missing when either input is.
func EBIT(r models.AnnualFinancials) float64 {
	if models.IsMissing(r.GrossProfit) || models.IsMissing(r.OperatingExpenses) {
		return models.Missing()
	}
	return r.GrossProfit - r.OperatingExpenses
}

// TotalDebt sums long and short term debt, treating a missing component as
// zero so debt-free years read as zero rather than unknown.
func TotalDebt(r models.AnnualFinancials) float64 {
	total := 0.0
	if !models.IsMissing(r.LongTermDebt) {
		total += r.LongTermDebt
	}
	if !models.IsMissing(r.ShortTermDebt) {
		total += r.ShortTermDebt
	}
	return total
}

// ratio guards a percent-style ratio: missing unless both inputs are present
// and the denominator is positive.
func ratio(num, den, scale float64) float64 {
	if models.IsMissing(num) || models.IsMissing(den) || den <= 0 {
		return models.Missing()
	}
	return num / den * scale
}

// ComputeGrowth produces one row per fiscal year, records sorted ascending.
func ComputeGrowth(records []models.AnnualFinancials) []GrowthMetrics {
	out := make([]GrowthMetrics, 0, len(records))
	for i, r := range records {
		m := GrowthMetrics{
			Year:             r.Year,
			Revenue:          r.Revenue,
			RevenueGrowthYoY: models.Missing(),
			RevenueCAGR3Y:    models.Missing(),
			RevenueCAGR5Y:    models.Missing(),
			RevenueCAGR10Y:   models.Missing(),
		}
		if i > 0 {
			prev := records[i-1].Revenue
			if !models.IsMissing(prev) && prev > 0 && !models.IsMissing(r.Revenue) {
				m.RevenueGrowthYoY = GrowthRate(r.Revenue, prev) * 100
			}
		}
		m.RevenueCAGR3Y = windowCAGR(records, i, 2, 3)
		m.RevenueCAGR5Y = windowCAGR(records, i, 4, 5)
		m.RevenueCAGR10Y = windowCAGR(records, i, 9, 10)
		out = append(out, m)
	}
	return out
}

// windowCAGR compounds revenue from lag rows back over span years, in
// percent.
func windowCAGR(records []models.AnnualFinancials, i, lag, span int) float64 {
	if i < lag {
		return models.Missing()
	}
	base := records[i-lag].Revenue
	cur := records[i].Revenue
	if models.IsMissing(base) || base <= 0 || models.IsMissing(cur) {
		return models.Missing()
	}
	return CAGR(cur, base, span) * 100
}

// ComputeProfitability produces margin rows per fiscal year.
func ComputeProfitability(records []models.AnnualFinancials) []ProfitabilityMetrics {
	out := make([]ProfitabilityMetrics, 0, len(records))
	for _, r := range records {
		ebit := EBIT(r)
		out = append(out, ProfitabilityMetrics{
			Year:            r.Year,
			Revenue:         r.Revenue,
			GrossProfit:     r.GrossProfit,
			EBIT:            ebit,
			EBITDA:          ebit,
			NetIncome:       r.NetIncome,
			GrossMargin:     ratio(r.GrossProfit, r.Revenue, 100),
			OperatingMargin: ratio(ebit, r.Revenue, 100),
			NetMargin:       ratio(r.NetIncome, r.Revenue, 100),
		})
	}
	return out
}

// ComputeBalance produces leverage and liquidity rows per fiscal year. The
// quick ratio uses cash alone in the numerator; receivables are not carried
// in the consolidated dataset.
func ComputeBalance(records []models.AnnualFinancials) []BalanceMetrics {
	out := make([]BalanceMetrics, 0, len(records))
	for _, r := range records {
		totalDebt := TotalDebt(r)
		netDebt := models.Missing()
		if !models.IsMissing(r.Cash) {
			netDebt = totalDebt - r.Cash
		}
		out = append(out, BalanceMetrics{
			Year:               r.Year,
			TotalAssets:        r.TotalAssets,
			TotalLiabilities:   r.TotalLiabilities,
			StockholdersEquity: r.StockholdersEquity,
			Cash:               r.Cash,
			TotalDebt:          totalDebt,
			NetDebt:            netDebt,
			DebtToEquity:       ratio(totalDebt, r.StockholdersEquity, 1),
			DebtToAssets:       ratio(totalDebt, r.TotalAssets, 1),
			CurrentRatio:       ratio(r.CurrentAssets, r.CurrentLiabilities, 1),
			QuickRatio:         ratio(r.Cash, r.CurrentLiabilities, 1),
		})
	}
	return out
}

// ComputeReturns produces capital-return rows per fiscal year. ROIC uses
// EBIT over invested capital (equity plus total debt).
func ComputeReturns(records []models.AnnualFinancials) []ReturnsMetrics {
	out := make([]ReturnsMetrics, 0, len(records))
	for _, r := range records {
		totalDebt := TotalDebt(r)
		invested := models.Missing()
		if !models.IsMissing(r.StockholdersEquity) {
			invested = r.StockholdersEquity + totalDebt
		}
		out = append(out, ReturnsMetrics{
			Year:               r.Year,
			NetIncome:          r.NetIncome,
			TotalAssets:        r.TotalAssets,
			StockholdersEquity: r.StockholdersEquity,
			InvestedCapital:    invested,
			ROE:                ratio(r.NetIncome, r.StockholdersEquity, 100),
			ROA:                ratio(r.NetIncome, r.TotalAssets, 100),
			ROIC:               ratio(EBIT(r), invested, 100),
		})
	}
	return out
}

// ComputeEfficiency produces turnover rows per fiscal year.
func ComputeEfficiency(records []models.AnnualFinancials) []EfficiencyMetrics {
	out := make([]EfficiencyMetrics, 0, len(records))
	for _, r := range records {
		out = append(out, EfficiencyMetrics{
			Year:               r.Year,
			Revenue:            r.Revenue,
			TotalAssets:        r.TotalAssets,
			StockholdersEquity: r.StockholdersEquity,
			AssetTurnover:      ratio(r.Revenue, r.TotalAssets, 1),
			EquityTurnover:     ratio(r.Revenue, r.StockholdersEquity, 1),
		})
	}
	return out
}
