package valuation

import (
	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// Multiples holds the trading multiples for the latest fiscal year. Money
// is thousands of USD; the share count is thousands of shares so the market
// cap lands in the same unit as the financials.
type Multiples struct {
	Year               int
	CurrentPrice       float64 // dollars per share
	MarketCap          float64 // thousands
	PERatio            float64
	PBVRatio           float64
	EVEBITDA           float64
	EVSales            float64
	Revenue            float64
	EBITDA             float64
	NetIncome          float64
	StockholdersEquity float64
}

// defaultSharesThousands stands in when the share count is not configured.
const defaultSharesThousands = 1000

// CalculateMultiples computes P/E, P/BV, EV/EBITDA, and EV/Sales from the
// latest year's metrics and share price. Market cap proxies enterprise
// value; the company runs a net cash balance sheet, so EV would only come
// out lower. Ratios against non-positive denominators stay missing.
func CalculateMultiples(
	profit []calc.ProfitabilityMetrics,
	balance []calc.BalanceMetrics,
	price float64,
	sharesThousands float64,
) Multiples {
	m := Multiples{
		CurrentPrice:       price,
		MarketCap:          models.Missing(),
		PERatio:            models.Missing(),
		PBVRatio:           models.Missing(),
		EVEBITDA:           models.Missing(),
		EVSales:            models.Missing(),
		Revenue:            models.Missing(),
		EBITDA:             models.Missing(),
		NetIncome:          models.Missing(),
		StockholdersEquity: models.Missing(),
	}
	if len(profit) == 0 {
		return m
	}

	latest := profit[len(profit)-1]
	m.Year = latest.Year
	m.Revenue = latest.Revenue
	m.EBITDA = latest.EBITDA
	m.NetIncome = latest.NetIncome
	for _, b := range balance {
		if b.Year == latest.Year {
			m.StockholdersEquity = b.StockholdersEquity
		}
	}

	if models.IsMissing(price) {
		return m
	}
	if sharesThousands <= 0 {
		sharesThousands = defaultSharesThousands
	}
	m.MarketCap = price * sharesThousands

	mult := func(den float64) float64 {
		if models.IsMissing(den) || den <= 0 {
			return models.Missing()
		}
		return m.MarketCap / den
	}
	m.PERatio = mult(m.NetIncome)
	m.PBVRatio = mult(m.StockholdersEquity)
	m.EVEBITDA = mult(m.EBITDA)
	m.EVSales = mult(m.Revenue)
	return m
}
