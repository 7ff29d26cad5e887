package scenario

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestBuildBullCase(t *testing.T) {
	cfg := DefaultConfig()
	bull := cfg.Scenarios[0]

	// Start from revenue 20000 with a -10% operating margin.
	s := Build(bull, 2024, 20000, -10, 5)

	if len(s.Projections) != 5 {
		t.Fatalf("expected 5 projection years, got %d", len(s.Projections))
	}

	p1 := s.Projections[0]
	if p1.Year != 2025 {
		t.Errorf("expected first projection year 2025, got %d", p1.Year)
	}
	// Year 1: revenue 20000 * 1.10 = 22000, margin -10 + 5 = -5.
	if !almostEqual(p1.Revenue, 22000) {
		t.Errorf("expected year 1 revenue 22000, got %.2f", p1.Revenue)
	}
	if !almostEqual(p1.OperatingMargin, -5) {
		t.Errorf("expected year 1 operating margin -5, got %.2f", p1.OperatingMargin)
	}
	// Gross profit at 65% margin: 22000 * 0.65 = 14300.
	if !almostEqual(p1.GrossProfit, 14300) {
		t.Errorf("expected year 1 gross profit 14300, got %.2f", p1.GrossProfit)
	}
	// Net income: 22000 * -0.05 * 0.75 = -825.
	if !almostEqual(p1.NetIncome, -825) {
		t.Errorf("expected year 1 net income -825, got %.2f", p1.NetIncome)
	}

	// Margin path: -5, 0, 5, 10, 15. The cap holds at 15 thereafter.
	p5 := s.Projections[4]
	if !almostEqual(p5.OperatingMargin, 15) {
		t.Errorf("expected year 5 operating margin at cap 15, got %.2f", p5.OperatingMargin)
	}

	// Final revenue 20000 * 1.1^5 = 32210.2, CAGR exactly 10%.
	if !almostEqual(s.FinalRevenue, 20000*math.Pow(1.1, 5)) {
		t.Errorf("unexpected final revenue %.4f", s.FinalRevenue)
	}
	if !almostEqual(s.RevenueCAGR, 10) {
		t.Errorf("expected 10%% CAGR, got %.4f", s.RevenueCAGR)
	}
	// Implied EV at 3.0x exit: 32210.2 * 3.
	if !almostEqual(s.ImpliedEV, 20000*math.Pow(1.1, 5)*3) {
		t.Errorf("unexpected implied EV %.4f", s.ImpliedEV)
	}
}

func TestBuildMarginCapOnEntry(t *testing.T) {
	cfg := DefaultConfig()
	base := cfg.Scenarios[1]

	// Starting margin already above the 5% cap clamps immediately.
	s := Build(base, 2024, 10000, 20, 5)
	if !almostEqual(s.Projections[0].OperatingMargin, 5) {
		t.Errorf("expected margin clamped to 5, got %.2f", s.Projections[0].OperatingMargin)
	}
}

func TestGrowthScheduleCarriesForward(t *testing.T) {
	cfg := DefaultConfig()
	base := cfg.Scenarios[1]

	s := Build(base, 2024, 10000, 0, 5)

	// Flat for two years, then 3% compounding.
	if !almostEqual(s.Projections[0].Revenue, 10000) {
		t.Errorf("expected year 1 revenue 10000, got %.2f", s.Projections[0].Revenue)
	}
	if !almostEqual(s.Projections[1].Revenue, 10000) {
		t.Errorf("expected year 2 revenue 10000, got %.2f", s.Projections[1].Revenue)
	}
	if !almostEqual(s.Projections[2].Revenue, 10300) {
		t.Errorf("expected year 3 revenue 10300, got %.2f", s.Projections[2].Revenue)
	}
	want := 10000 * math.Pow(1.03, 3)
	if !almostEqual(s.Projections[4].Revenue, want) {
		t.Errorf("expected year 5 revenue %.4f, got %.4f", want, s.Projections[4].Revenue)
	}
}

func TestBearCaseDeclines(t *testing.T) {
	cfg := DefaultConfig()
	bear := cfg.Scenarios[2]

	s := Build(bear, 2024, 20000, -10, 5)

	// No floor: margin keeps deteriorating, -12 down to -20.
	if !almostEqual(s.Projections[0].OperatingMargin, -12) {
		t.Errorf("expected year 1 margin -12, got %.2f", s.Projections[0].OperatingMargin)
	}
	if !almostEqual(s.Projections[4].OperatingMargin, -20) {
		t.Errorf("expected year 5 margin -20, got %.2f", s.Projections[4].OperatingMargin)
	}
	if !almostEqual(s.RevenueCAGR, -10) {
		t.Errorf("expected -10%% CAGR, got %.4f", s.RevenueCAGR)
	}
	// Distressed 0.5x exit multiple.
	if !almostEqual(s.ImpliedEV, 20000*math.Pow(0.9, 5)*0.5) {
		t.Errorf("unexpected implied EV %.4f", s.ImpliedEV)
	}
}

func TestRunWeightsByNormalizedProbability(t *testing.T) {
	cfg := Config{
		ProjectionYears: 5,
		Scenarios: []Assumptions{
			{Name: "Up", Probability: 30, RevenueGrowth: []float64{10}, GrossMargin: 60, TaxRate: 25, ExitMultiple: 2},
			{Name: "Down", Probability: 10, RevenueGrowth: []float64{-10}, GrossMargin: 50, TaxRate: 25, ExitMultiple: 1},
		},
	}

	expected, err := Run(cfg, 2024, 10000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(expected.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(expected.Scenarios))
	}
	// Probabilities 30/10 normalize to 0.75/0.25.
	if !almostEqual(expected.Scenarios[0].NormalizedProbability, 0.75) {
		t.Errorf("expected normalized probability 0.75, got %.4f", expected.Scenarios[0].NormalizedProbability)
	}

	up := 10000 * math.Pow(1.1, 5)
	down := 10000 * math.Pow(0.9, 5)
	if !almostEqual(expected.Revenue, 0.75*up+0.25*down) {
		t.Errorf("unexpected expected revenue %.4f", expected.Revenue)
	}
	// CAGRs are exactly +10% and -10%.
	if !almostEqual(expected.CAGR, 0.75*10+0.25*-10) {
		t.Errorf("unexpected expected CAGR %.4f", expected.CAGR)
	}
	if !almostEqual(expected.Valuation, 0.75*up*2+0.25*down*1) {
		t.Errorf("unexpected expected valuation %.4f", expected.Valuation)
	}
}

func TestRunRejectsNonPositiveRevenue(t *testing.T) {
	_, err := Run(DefaultConfig(), 2024, 0, 0)
	if err == nil {
		t.Fatal("expected error for zero revenue, got nil")
	}
}

func TestRunFromMetricsPicksLatestUsableRow(t *testing.T) {
	profit := []calc.ProfitabilityMetrics{
		{Year: 2022, Revenue: 30000, OperatingMargin: -5},
		{Year: 2023, Revenue: 25000, OperatingMargin: -8},
		{Year: 2024, Revenue: models.Missing(), OperatingMargin: models.Missing()},
	}

	expected, ok, err := RunFromMetrics(DefaultConfig(), profit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a usable starting row")
	}
	// Seeded from 2023, so projections start at 2024.
	if got := expected.Scenarios[0].Projections[0].Year; got != 2024 {
		t.Errorf("expected first projection year 2024, got %d", got)
	}
}

func TestRunFromMetricsNoUsableRow(t *testing.T) {
	profit := []calc.ProfitabilityMetrics{
		{Year: 2023, Revenue: models.Missing(), OperatingMargin: models.Missing()},
	}

	_, ok, err := RunFromMetrics(DefaultConfig(), profit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no usable starting row")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.hjson")

	// Hjson allows comments and unquoted keys.
	content := `{
  // two-case sanity set
  projection_years: 3
  scenarios: [
    {
      name: Recovery
      probability: 60
      revenue_growth: [5, 5, 5]
      gross_margin: 62
      margin_drift: 1
      margin_cap: 8
      exit_multiple: 2.0
    }
    {
      name: Stagnation
      probability: 40
      revenue_growth: [0]
      gross_margin: 58
      margin_drift: 0
      exit_multiple: 1.0
    }
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectionYears != 3 {
		t.Errorf("expected 3 projection years, got %d", cfg.ProjectionYears)
	}
	if len(cfg.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(cfg.Scenarios))
	}
	if cfg.Scenarios[0].MarginCap == nil || *cfg.Scenarios[0].MarginCap != 8 {
		t.Error("expected margin cap 8 on first scenario")
	}
	if cfg.Scenarios[1].MarginCap != nil {
		t.Error("expected no margin cap on second scenario")
	}
	// Omitted tax rate defaults to 25.
	if cfg.Scenarios[0].TaxRate != 25 {
		t.Errorf("expected default tax rate 25, got %.1f", cfg.Scenarios[0].TaxRate)
	}
}

func TestLoadConfigRejectsBadProbability(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.hjson")
	content := `{scenarios: [{name: Broken, probability: 0, revenue_growth: [1], exit_multiple: 1}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for zero probability, got nil")
	}
}
