package trend

import (
	"math"
	"testing"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

func growthSeries(startYear int, revenues []float64) []calc.GrowthMetrics {
	var records []models.AnnualFinancials
	for i, rev := range revenues {
		r := models.NewAnnualFinancials(startYear + i)
		r.Revenue = rev
		records = append(records, r)
	}
	return calc.ComputeGrowth(records)
}

func TestRevenueTrendsWindows(t *testing.T) {
	// 12 years, revenue rising then falling: peak of 80 in 2018.
	revenues := []float64{20, 25, 30, 40, 55, 70, 80, 60, 50, 45, 40, 35}
	growth := growthSeries(2012, revenues)

	a := NewAnalyzer()
	trends := a.Analyze(growth, nil, nil, nil)

	t3, ok := trends.Revenue[Window3Y]
	if !ok {
		t.Fatal("no 3y revenue window")
	}
	if t3.Period != "2021-2023" {
		t.Errorf("3y period = %q", t3.Period)
	}
	if t3.Direction != "declining" {
		t.Errorf("3y direction = %q", t3.Direction)
	}
	if t3.StartRevenue != 45 || t3.EndRevenue != 35 {
		t.Errorf("3y revenue span = %v - %v", t3.StartRevenue, t3.EndRevenue)
	}

	all, ok := trends.Revenue[WindowAll]
	if !ok {
		t.Fatal("no all-time revenue window")
	}
	if all.PeakRevenue != 80 || all.PeakYear != 2018 {
		t.Errorf("peak = %v in %d, want 80 in 2018", all.PeakRevenue, all.PeakYear)
	}
}

func TestTrendsRespectCutoff(t *testing.T) {
	// Two years before the cutoff plus three after: only the 3y window fits.
	revenues := []float64{5, 6, 10, 11, 12}
	growth := growthSeries(2009, revenues)

	a := NewAnalyzer()
	trends := a.Analyze(growth, nil, nil, nil)

	if _, ok := trends.Revenue[WindowAll]; ok {
		t.Error("all-time window produced with only 3 recent years")
	}
	t3, ok := trends.Revenue[Window3Y]
	if !ok {
		t.Fatal("no 3y window")
	}
	if t3.StartRevenue != 10 {
		t.Errorf("3y window started at %v; pre-cutoff years leaked in", t3.StartRevenue)
	}
}

func TestMarginTrends(t *testing.T) {
	var records []models.AnnualFinancials
	// Gross margin climbs from 50% to 61% over 12 years.
	for i := 0; i < 12; i++ {
		r := models.NewAnnualFinancials(2012 + i)
		r.Revenue = 100
		r.GrossProfit = float64(50 + i)
		r.OperatingExpenses = 60
		r.NetIncome = float64(50+i) - 60
		records = append(records, r)
	}
	profit := calc.ComputeProfitability(records)

	trends := NewAnalyzer().Analyze(nil, profit, nil, nil)
	t3 := trends.Margins[Window3Y]
	// Last three gross margins: 59, 60, 61.
	if math.Abs(t3.AvgGrossMargin-60) > 1e-9 {
		t.Errorf("3y avg gross margin = %v, want 60", t3.AvgGrossMargin)
	}
	if t3.GrossMarginTrend != "improving" {
		t.Errorf("gross margin trend = %q", t3.GrossMarginTrend)
	}

	all := trends.Margins[WindowAll]
	if all.BestGrossMargin != 61 || all.BestGrossMarginYear != 2023 {
		t.Errorf("best gross margin = %v in %d", all.BestGrossMargin, all.BestGrossMarginYear)
	}
	if all.WorstOperatingMargin != -10 || all.WorstOperatingMarginYear != 2012 {
		t.Errorf("worst operating margin = %v in %d", all.WorstOperatingMargin, all.WorstOperatingMarginYear)
	}
}

func TestShortHistoryYieldsNoWindows(t *testing.T) {
	growth := growthSeries(2022, []float64{10, 12})
	trends := NewAnalyzer().Analyze(growth, nil, nil, nil)
	if len(trends.Revenue) != 0 {
		t.Errorf("two years produced %d windows", len(trends.Revenue))
	}
}
