// Package trend rolls the per-year metrics up into 3-year, 10-year, and
// all-time windows with direction labels.
package trend

import (
	"strconv"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// Window keys, in the order windows are reported.
const (
	Window3Y  = "3y"
	Window10Y = "10y"
	WindowAll = "all_time"
)

// WindowOrder fixes iteration order for CSV and report output.
var WindowOrder = []string{Window3Y, Window10Y, WindowAll}

// RevenueTrend summarizes revenue over one window.
type RevenueTrend struct {
	Period       string // e.g. "2023-2025"
	StartRevenue float64
	EndRevenue   float64
	CAGR         float64 // percent
	AvgGrowth    float64 // percent
	Volatility   float64 // stddev of YoY growth, percent
	Direction    string  // growing / declining
	PeakRevenue  float64 // all-time window only
	PeakYear     int
}

// MarginTrend summarizes profitability over one window.
type MarginTrend struct {
	Period                   string
	AvgGrossMargin           float64
	AvgOperatingMargin       float64
	AvgNetMargin             float64
	GrossMarginTrend         string // improving / declining
	OperatingMarginTrend     string
	BestGrossMargin          float64 // all-time window only
	BestGrossMarginYear      int
	WorstOperatingMargin     float64
	WorstOperatingMarginYear int
}

// BalanceTrend summarizes the balance sheet over one window.
type BalanceTrend struct {
	Period          string
	AvgCash         float64
	AvgTotalAssets  float64
	AvgDebtToEquity float64
	AvgCurrentRatio float64
	CashTrend       string
	AssetsTrend     string
	PeakCash        float64 // all-time window only
	PeakCashYear    int
	PeakAssets      float64
	PeakAssetsYear  int
}

// ReturnsTrend summarizes capital returns over one window.
type ReturnsTrend struct {
	Period   string
	AvgROE   float64
	AvgROA   float64
	AvgROIC  float64
	ROETrend string
	ROATrend string
}

// Trends is the full windowed view, keyed by WindowOrder entries. Windows
// without enough history are absent from the maps.
type Trends struct {
	Revenue map[string]RevenueTrend
	Margins map[string]MarginTrend
	Balance map[string]BalanceTrend
	Returns map[string]ReturnsTrend
}

// Analyzer computes trends from the calc series. RecentCutoff drops the
// noisy early filing years; zero means keep everything.
type Analyzer struct {
	RecentCutoff int
}

// NewAnalyzer returns an analyzer with the standard 2011 cutoff.
func NewAnalyzer() *Analyzer {
	return &Analyzer{RecentCutoff: 2011}
}

func direction(later, earlier float64, up, down string) string {
	if models.IsMissing(later) || models.IsMissing(earlier) {
		return down
	}
	if later > earlier {
		return up
	}
	return down
}

func periodLabel(years []int) string {
	if len(years) == 0 {
		return ""
	}
	return strconv.Itoa(years[0]) + "-" + strconv.Itoa(years[len(years)-1])
}

// Analyze produces all four trend families. The input series must be sorted
// by year ascending, which is how calc emits them.
func (a *Analyzer) Analyze(
	growth []calc.GrowthMetrics,
	profit []calc.ProfitabilityMetrics,
	balance []calc.BalanceMetrics,
	returns []calc.ReturnsMetrics,
) Trends {
	return Trends{
		Revenue: a.revenueTrends(growth),
		Margins: a.marginTrends(profit),
		Balance: a.balanceTrends(balance),
		Returns: a.returnsTrends(returns),
	}
}

func (a *Analyzer) revenueTrends(growth []calc.GrowthMetrics) map[string]RevenueTrend {
	var recent []calc.GrowthMetrics
	for _, g := range growth {
		if g.Year >= a.RecentCutoff {
			recent = append(recent, g)
		}
	}

	out := map[string]RevenueTrend{}
	build := func(rows []calc.GrowthMetrics, cagr float64) RevenueTrend {
		var years []int
		var yoy []float64
		for _, r := range rows {
			years = append(years, r.Year)
			yoy = append(yoy, r.RevenueGrowthYoY)
		}
		first, last := rows[0], rows[len(rows)-1]
		return RevenueTrend{
			Period:       periodLabel(years),
			StartRevenue: first.Revenue,
			EndRevenue:   last.Revenue,
			CAGR:         cagr,
			AvgGrowth:    calc.Mean(yoy),
			Volatility:   calc.Std(yoy),
			Direction:    direction(last.Revenue, first.Revenue, "growing", "declining"),
			PeakRevenue:  models.Missing(),
		}
	}

	if rows := tailGrowth(recent, 3); len(rows) >= 3 {
		out[Window3Y] = build(rows, rows[len(rows)-1].RevenueCAGR3Y)
	}
	if rows := tailGrowth(recent, 10); len(rows) >= 5 {
		out[Window10Y] = build(rows, rows[len(rows)-1].RevenueCAGR10Y)
	}
	if len(recent) >= 10 {
		// The 10-year CAGR stands in for the full span.
		t := build(recent, recent[len(recent)-1].RevenueCAGR10Y)
		for _, r := range recent {
			if !models.IsMissing(r.Revenue) && (models.IsMissing(t.PeakRevenue) || r.Revenue > t.PeakRevenue) {
				t.PeakRevenue = r.Revenue
				t.PeakYear = r.Year
			}
		}
		out[WindowAll] = t
	}
	return out
}

func (a *Analyzer) marginTrends(profit []calc.ProfitabilityMetrics) map[string]MarginTrend {
	var recent []calc.ProfitabilityMetrics
	for _, p := range profit {
		if p.Year >= a.RecentCutoff {
			recent = append(recent, p)
		}
	}

	out := map[string]MarginTrend{}
	build := func(rows []calc.ProfitabilityMetrics) MarginTrend {
		var years []int
		var gross, op, net []float64
		for _, r := range rows {
			years = append(years, r.Year)
			gross = append(gross, r.GrossMargin)
			op = append(op, r.OperatingMargin)
			net = append(net, r.NetMargin)
		}
		first, last := rows[0], rows[len(rows)-1]
		return MarginTrend{
			Period:               periodLabel(years),
			AvgGrossMargin:       calc.Mean(gross),
			AvgOperatingMargin:   calc.Mean(op),
			AvgNetMargin:         calc.Mean(net),
			GrossMarginTrend:     direction(last.GrossMargin, first.GrossMargin, "improving", "declining"),
			OperatingMarginTrend: direction(last.OperatingMargin, first.OperatingMargin, "improving", "declining"),
			BestGrossMargin:      models.Missing(),
			WorstOperatingMargin: models.Missing(),
		}
	}

	if rows := tailProfit(recent, 3); len(rows) >= 3 {
		out[Window3Y] = build(rows)
	}
	if rows := tailProfit(recent, 10); len(rows) >= 5 {
		out[Window10Y] = build(rows)
	}
	if len(recent) >= 10 {
		t := build(recent)
		for _, r := range recent {
			if !models.IsMissing(r.GrossMargin) && (models.IsMissing(t.BestGrossMargin) || r.GrossMargin > t.BestGrossMargin) {
				t.BestGrossMargin = r.GrossMargin
				t.BestGrossMarginYear = r.Year
			}
			if !models.IsMissing(r.OperatingMargin) && (models.IsMissing(t.WorstOperatingMargin) || r.OperatingMargin < t.WorstOperatingMargin) {
				t.WorstOperatingMargin = r.OperatingMargin
				t.WorstOperatingMarginYear = r.Year
			}
		}
		out[WindowAll] = t
	}
	return out
}

func (a *Analyzer) balanceTrends(balance []calc.BalanceMetrics) map[string]BalanceTrend {
	var recent []calc.BalanceMetrics
	for _, b := range balance {
		if b.Year >= a.RecentCutoff {
			recent = append(recent, b)
		}
	}

	out := map[string]BalanceTrend{}
	build := func(rows []calc.BalanceMetrics) BalanceTrend {
		var years []int
		var cash, assets, de, cr []float64
		for _, r := range rows {
			years = append(years, r.Year)
			cash = append(cash, r.Cash)
			assets = append(assets, r.TotalAssets)
			de = append(de, r.DebtToEquity)
			cr = append(cr, r.CurrentRatio)
		}
		first, last := rows[0], rows[len(rows)-1]
		return BalanceTrend{
			Period:          periodLabel(years),
			AvgCash:         calc.Mean(cash),
			AvgTotalAssets:  calc.Mean(assets),
			AvgDebtToEquity: calc.Mean(de),
			AvgCurrentRatio: calc.Mean(cr),
			CashTrend:       direction(last.Cash, first.Cash, "improving", "declining"),
			AssetsTrend:     direction(last.TotalAssets, first.TotalAssets, "improving", "declining"),
			PeakCash:        models.Missing(),
			PeakAssets:      models.Missing(),
		}
	}

	if rows := tailBalance(recent, 3); len(rows) >= 3 {
		out[Window3Y] = build(rows)
	}
	if rows := tailBalance(recent, 10); len(rows) >= 5 {
		out[Window10Y] = build(rows)
	}
	if len(recent) >= 10 {
		t := build(recent)
		for _, r := range recent {
			if !models.IsMissing(r.Cash) && (models.IsMissing(t.PeakCash) || r.Cash > t.PeakCash) {
				t.PeakCash = r.Cash
				t.PeakCashYear = r.Year
			}
			if !models.IsMissing(r.TotalAssets) && (models.IsMissing(t.PeakAssets) || r.TotalAssets > t.PeakAssets) {
				t.PeakAssets = r.TotalAssets
				t.PeakAssetsYear = r.Year
			}
		}
		out[WindowAll] = t
	}
	return out
}

func (a *Analyzer) returnsTrends(returns []calc.ReturnsMetrics) map[string]ReturnsTrend {
	var recent []calc.ReturnsMetrics
	for _, r := range returns {
		if r.Year >= a.RecentCutoff {
			recent = append(recent, r)
		}
	}

	out := map[string]ReturnsTrend{}
	build := func(rows []calc.ReturnsMetrics) ReturnsTrend {
		var years []int
		var roe, roa, roic []float64
		for _, r := range rows {
			years = append(years, r.Year)
			roe = append(roe, r.ROE)
			roa = append(roa, r.ROA)
			roic = append(roic, r.ROIC)
		}
		first, last := rows[0], rows[len(rows)-1]
		return ReturnsTrend{
			Period:   periodLabel(years),
			AvgROE:   calc.Mean(roe),
			AvgROA:   calc.Mean(roa),
			AvgROIC:  calc.Mean(roic),
			ROETrend: direction(last.ROE, first.ROE, "improving", "declining"),
			ROATrend: direction(last.ROA, first.ROA, "improving", "declining"),
		}
	}

	if rows := tailReturns(recent, 3); len(rows) >= 3 {
		out[Window3Y] = build(rows)
	}
	if rows := tailReturns(recent, 10); len(rows) >= 5 {
		out[Window10Y] = build(rows)
	}
	if len(recent) >= 10 {
		out[WindowAll] = build(recent)
	}
	return out
}

func tailGrowth(rows []calc.GrowthMetrics, n int) []calc.GrowthMetrics {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func tailProfit(rows []calc.ProfitabilityMetrics, n int) []calc.ProfitabilityMetrics {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func tailBalance(rows []calc.BalanceMetrics, n int) []calc.BalanceMetrics {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func tailReturns(rows []calc.ReturnsMetrics, n int) []calc.ReturnsMetrics {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
