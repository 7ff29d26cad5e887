package quarterly

import (
	"math"
	"testing"

	"equity_research/pkg/models"
)

func quarterRow(year int, quarter, item string, value float64) models.StatementRow {
	return models.StatementRow{
		Statement:  models.StatementIncome,
		FiscalYear: year,
		Period:     quarter,
		SheetName:  "condensed consolidated statements of operations",
		LineItem:   item,
		Value:      value,
	}
}

func TestFromStatementRows(t *testing.T) {
	rows := []models.StatementRow{
		quarterRow(2023, "Q1", "Net revenues", 8901),
		quarterRow(2023, "Q1", "Gross profit", 5341),
		quarterRow(2023, "Q1", "Net loss", 3983),
		// Per-share figure must not be mistaken for revenue.
		quarterRow(2023, "Q2", "Net revenues per share", 0.36),
		quarterRow(2023, "Q2", "Net revenues", 7632),
		quarterRow(2023, "Q2", "Net income", 120),
		// Annual rows are ignored.
		{Statement: models.StatementIncome, FiscalYear: 2023, Period: "FY", LineItem: "Net revenues", Value: 33350},
	}

	quarters := FromStatementRows(rows)
	if len(quarters) != 2 {
		t.Fatalf("expected 2 quarters, got %d", len(quarters))
	}

	q1 := quarters[0]
	if q1.Quarter != "Q1" || q1.Revenue != 8901 || q1.GrossProfit != 5341 {
		t.Errorf("unexpected Q1 record: %+v", q1)
	}
	// Net loss rows flip sign.
	if q1.NetIncome != -3983 {
		t.Errorf("expected Q1 net income -3983, got %.0f", q1.NetIncome)
	}

	q2 := quarters[1]
	if q2.Revenue != 7632 {
		t.Errorf("expected Q2 revenue 7632, got %.0f", q2.Revenue)
	}
	if q2.NetIncome != 120 {
		t.Errorf("expected Q2 net income 120, got %.0f", q2.NetIncome)
	}
	if !models.IsMissing(q2.GrossProfit) {
		t.Errorf("expected Q2 gross profit missing, got %.0f", q2.GrossProfit)
	}
}

func seasonalFixture() []models.QuarterlyFinancials {
	// Three full years where Q2 always leads and Q4 always trails.
	quarters := []models.QuarterlyFinancials{}
	for year := 2021; year <= 2023; year++ {
		base := float64((year - 2020) * 1000)
		quarters = append(quarters,
			models.QuarterlyFinancials{Year: year, Quarter: "Q1", Revenue: base + 200},
			models.QuarterlyFinancials{Year: year, Quarter: "Q2", Revenue: base + 500},
			models.QuarterlyFinancials{Year: year, Quarter: "Q3", Revenue: base + 100},
			models.QuarterlyFinancials{Year: year, Quarter: "Q4", Revenue: base},
		)
	}
	return quarters
}

func TestAnalyzeSeasonality(t *testing.T) {
	s := AnalyzeSeasonality(seasonalFixture())

	if !s.Detected {
		t.Fatal("expected seasonality to be detected with 12 quarters")
	}
	if len(s.Quarters) != 4 {
		t.Fatalf("expected 4 quarter averages, got %d", len(s.Quarters))
	}
	// Q1 average: (1200 + 2200 + 3200) / 3 = 2200.
	if s.Quarters[0].Quarter != "Q1" || s.Quarters[0].AvgRevenue != 2200 {
		t.Errorf("unexpected Q1 average: %+v", s.Quarters[0])
	}
	if s.Strongest != "Q2" {
		t.Errorf("expected strongest quarter Q2, got %s", s.Strongest)
	}
	if s.Weakest != "Q4" {
		t.Errorf("expected weakest quarter Q4, got %s", s.Weakest)
	}
}

func TestAnalyzeSeasonalityInsufficientData(t *testing.T) {
	quarters := seasonalFixture()[:8]

	s := AnalyzeSeasonality(quarters)
	if s.Detected {
		t.Error("expected no seasonality call on 8 quarters")
	}
	if s.Note == "" {
		t.Error("expected an explanatory note")
	}
}

func TestAnalyzeVolatility(t *testing.T) {
	quarters := []models.QuarterlyFinancials{
		{Year: 2022, Quarter: "Q1", Revenue: 9000},
		{Year: 2022, Quarter: "Q2", Revenue: 11000},
		{Year: 2023, Quarter: "Q1", Revenue: 8000},
		{Year: 2023, Quarter: "Q2", Revenue: 8000},
		// Single quarter years are skipped.
		{Year: 2024, Quarter: "Q1", Revenue: 5000},
	}

	v := AnalyzeVolatility(quarters)
	if len(v.ByYear) != 2 {
		t.Fatalf("expected 2 volatility years, got %d", len(v.ByYear))
	}

	y2022 := v.ByYear[0]
	if y2022.AvgRevenue != 10000 {
		t.Errorf("expected 2022 average 10000, got %.0f", y2022.AvgRevenue)
	}
	// Sample std of {9000, 11000} is sqrt(2e6) = 1414.2, CV 14.14%.
	wantStd := math.Sqrt(2000000)
	if math.Abs(y2022.StdDev-wantStd) > 1e-6 {
		t.Errorf("expected 2022 std %.2f, got %.2f", wantStd, y2022.StdDev)
	}

	y2023 := v.ByYear[1]
	if y2023.StdDev != 0 || y2023.CV != 0 {
		t.Errorf("expected flat 2023 quarters, got %+v", y2023)
	}

	// Average CV: (14.142 + 0) / 2 = 7.07 -> LOW band.
	wantCV := wantStd / 10000 * 100 / 2
	if math.Abs(v.AvgCV-wantCV) > 1e-6 {
		t.Errorf("expected average CV %.3f, got %.3f", wantCV, v.AvgCV)
	}
	if v.Interpretation != "LOW - Stable quarterly performance" {
		t.Errorf("unexpected interpretation %q", v.Interpretation)
	}
}

func TestAnalyzeVolatilityEmpty(t *testing.T) {
	v := AnalyzeVolatility(nil)
	if len(v.ByYear) != 0 {
		t.Errorf("expected no volatility rows, got %d", len(v.ByYear))
	}
	if v.Interpretation != "Insufficient data" {
		t.Errorf("unexpected interpretation %q", v.Interpretation)
	}
}
