package valuation

import (
	"math"
	"testing"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

func approxEq(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestCalculateWACC(t *testing.T) {
	input := WACCInput{
		UnleveredBeta:     1.2,
		RiskFreeRate:      0.04,
		MarketRiskPremium: 0.055,
		PreTaxCostOfDebt:  0.07,
		TaxRate:           0.25,
		DebtToEquityRatio: 0.5,
	}
	res := CalculateWACC(input)

	// BetaL = 1.2 * (1 + 0.75*0.5) = 1.65
	if !approxEq(res.LeveredBeta, 1.65, 1e-9) {
		t.Errorf("levered beta = %v", res.LeveredBeta)
	}
	// Ke = 0.04 + 1.65*0.055 = 0.13075
	if !approxEq(res.CostOfEquity, 0.13075, 1e-9) {
		t.Errorf("cost of equity = %v", res.CostOfEquity)
	}
	// Kd = 0.07*0.75 = 0.0525; Wd = 1/3, We = 2/3
	// WACC = 0.13075*(2/3) + 0.0525*(1/3) = 0.1046666...
	if !approxEq(res.WACC, 0.13075*2/3+0.0525/3, 1e-9) {
		t.Errorf("wacc = %v", res.WACC)
	}
}

func TestCalculateDCF(t *testing.T) {
	input := DCFInput{
		LatestYear:       2024,
		LatestRevenue:    1000,
		AvgRevenueGrowth: 10,
		AvgEBITDAMargin:  20,
		DiscountRate:     10,
		TerminalGrowth:   2,
		ProjectionYears:  5,
	}
	res := CalculateDCF(input)

	if len(res.Projections) != 5 {
		t.Fatalf("%d projection years", len(res.Projections))
	}
	// Year 1: revenue 1100, EBITDA 220, FCF 176, PV 176/1.1 = 160.
	p1 := res.Projections[0]
	if p1.Year != 2025 || !approxEq(p1.Revenue, 1100, 1e-9) {
		t.Errorf("year1 = %+v", p1)
	}
	if !approxEq(p1.FCF, 176, 1e-9) || !approxEq(p1.PVFCF, 160, 1e-9) {
		t.Errorf("year1 FCF/PV = %v/%v", p1.FCF, p1.PVFCF)
	}
	// Growth equals the discount rate, so every year's PV FCF stays 160.
	if !approxEq(res.PVCashFlows, 800, 1e-6) {
		t.Errorf("PV cash flows = %v", res.PVCashFlows)
	}
	// Terminal: FCF5 = 176*1.1^4 = 257.6816; TV = 257.6816*1.02/0.08.
	fcf5 := 176 * math.Pow(1.1, 4)
	wantTV := fcf5 * 1.02 / 0.08
	if !approxEq(res.TerminalValue, wantTV, 1e-6) {
		t.Errorf("terminal value = %v, want %v", res.TerminalValue, wantTV)
	}
	if !approxEq(res.EnterpriseValue, res.PVCashFlows+res.PVTerminalValue, 1e-9) {
		t.Errorf("EV = %v", res.EnterpriseValue)
	}
}

func TestDCFTerminalGuard(t *testing.T) {
	input := DCFInput{
		LatestYear:       2024,
		LatestRevenue:    1000,
		AvgRevenueGrowth: 5,
		AvgEBITDAMargin:  20,
		DiscountRate:     2,
		TerminalGrowth:   3, // growth above the discount rate
		ProjectionYears:  5,
	}
	res := CalculateDCF(input)
	if res.TerminalValue != 0 || res.PVTerminalValue != 0 {
		t.Errorf("terminal value = %v with g > r, want 0", res.TerminalValue)
	}
	if res.EnterpriseValue != res.PVCashFlows {
		t.Errorf("EV = %v, want PV of cash flows only", res.EnterpriseValue)
	}
}

func metricsFixture() ([]calc.ProfitabilityMetrics, []calc.BalanceMetrics) {
	var records []models.AnnualFinancials
	for i, rev := range []float64{30000, 26000, 21843} {
		r := models.NewAnnualFinancials(2022 + i)
		r.Revenue = rev
		r.GrossProfit = rev * 0.55
		r.OperatingExpenses = rev*0.55 + 5000 // EBIT pinned at -5000
		r.NetIncome = -6000
		r.StockholdersEquity = 35760
		r.Cash = 14429
		r.CurrentAssets = 32414
		r.CurrentLiabilities = 7066
		records = append(records, r)
	}
	return calc.ComputeProfitability(records), calc.ComputeBalance(records)
}

func TestCalculateMultiples(t *testing.T) {
	profit, balance := metricsFixture()
	m := CalculateMultiples(profit, balance, 10.0, 25000)

	if m.Year != 2024 {
		t.Errorf("year = %d", m.Year)
	}
	// 10 * 25000 = 250000 thousand.
	if !approxEq(m.MarketCap, 250000, 1e-9) {
		t.Errorf("market cap = %v", m.MarketCap)
	}
	// Net income negative: P/E stays missing.
	if !models.IsMissing(m.PERatio) {
		t.Errorf("P/E with losses = %v, want missing", m.PERatio)
	}
	if !approxEq(m.PBVRatio, 250000.0/35760, 1e-9) {
		t.Errorf("P/BV = %v", m.PBVRatio)
	}
	if !approxEq(m.EVSales, 250000.0/21843, 1e-9) {
		t.Errorf("EV/Sales = %v", m.EVSales)
	}
}

func TestEstimateFairValue(t *testing.T) {
	profit, balance := metricsFixture()
	m := CalculateMultiples(profit, balance, 10.0, 25000)
	dcfInput, ok := DCFInputFromHistory(profit, 2020, 10, 2)
	if !ok {
		t.Fatal("no DCF input from history")
	}

	fv := EstimateFairValue(m, dcfInput, true)
	// P/E method skipped (losses); P/BV, DCF, and revenue methods remain.
	if len(fv.Methods) != 3 {
		t.Fatalf("%d methods, want 3", len(fv.Methods))
	}
	for _, method := range fv.Methods {
		if method.Method == "P/E Multiple" {
			t.Error("P/E method present despite negative earnings")
		}
	}
	// P/BV: 35760 * 1.5 / 1000 = 53.64M.
	if !approxEq(fv.Methods[0].FairValue, 53.64, 1e-9) {
		t.Errorf("P/BV fair value = %v", fv.Methods[0].FairValue)
	}
	if models.IsMissing(fv.Average) || models.IsMissing(fv.Median) {
		t.Errorf("summary stats missing: avg=%v median=%v", fv.Average, fv.Median)
	}
}

func TestScoreAttractiveness(t *testing.T) {
	in := ScoreInputs{
		Multiples: Multiples{
			PERatio:  models.Missing(),
			PBVRatio: 0.8, // below book: +2
		},
		AvgRevenueGrowth:   -12, // -2
		AvgOperatingMargin: -20, // -2
		AvgCash:            14429,
		AvgCurrentRatio:    4.5,
	}
	// +2 -2 -2 +1 +1 = 0 -> HOLD
	att := ScoreAttractiveness(in)
	if att.Score != 0 {
		t.Errorf("score = %d, want 0", att.Score)
	}
	if att.Recommendation != "HOLD" {
		t.Errorf("recommendation = %q", att.Recommendation)
	}
	if len(att.Factors) != 5 {
		t.Errorf("%d factors: %v", len(att.Factors), att.Factors)
	}
}

func TestRecommendationBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{5, "STRONG BUY"}, {4, "STRONG BUY"}, {3, "BUY"}, {1, "HOLD"},
		{0, "HOLD"}, {-1, "SELL"}, {-2, "SELL"}, {-3, "STRONG SELL"},
	}
	for _, c := range cases {
		got, _ := recommendationFor(c.score)
		if got != c.want {
			t.Errorf("score %d -> %q, want %q", c.score, got, c.want)
		}
	}
}
