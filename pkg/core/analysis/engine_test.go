package analysis

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"equity_research/pkg/core/consolidate"
	"equity_research/pkg/models"
)

// historyFixture builds twelve loss-making fiscal years with a strong cash
// position, the shape of a declining niche semiconductor company.
func historyFixture() []models.AnnualFinancials {
	records := []models.AnnualFinancials{}
	for year := 2013; year <= 2024; year++ {
		r := models.NewAnnualFinancials(year)
		// Revenue drifts from 60000 down to 27000.
		r.Revenue = 60000 - float64(year-2013)*3000
		r.CostOfRevenues = r.Revenue * 0.4
		r.GrossProfit = r.Revenue * 0.6
		r.OperatingExpenses = r.GrossProfit + 4800
		r.NetIncome = -4800
		r.Cash = 30000
		r.CurrentAssets = 45000
		r.CurrentLiabilities = 9000
		r.TotalAssets = 60000
		r.TotalLiabilities = 12000
		r.StockholdersEquity = 48000
		records = append(records, r)
	}
	return records
}

func TestEngineAnalyze(t *testing.T) {
	engine := NewEngine("GSIT", "GSI Technology")
	market := []consolidate.MarketYear{{Year: 2024, Close: 2.50}}

	a, err := engine.Analyze(historyFixture(), nil, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Ticker != "GSIT" {
		t.Errorf("expected ticker GSIT, got %s", a.Ticker)
	}
	if len(a.Growth) != 12 || len(a.Profitability) != 12 {
		t.Fatalf("expected 12 metric rows, got %d growth, %d profitability",
			len(a.Growth), len(a.Profitability))
	}

	// Every year loses 4800, so EBIT is -4800 throughout.
	if a.Profitability[0].EBIT != -4800 {
		t.Errorf("expected EBIT -4800, got %.0f", a.Profitability[0].EBIT)
	}

	// Latest close seeds the multiples.
	if a.Multiples.CurrentPrice != 2.50 {
		t.Errorf("expected current price 2.50, got %.2f", a.Multiples.CurrentPrice)
	}
	// Losses keep P/E missing.
	if !models.IsMissing(a.Multiples.PERatio) {
		t.Errorf("expected missing P/E on losses, got %.2f", a.Multiples.PERatio)
	}

	// Scenarios seed from the 2024 row.
	if !a.HaveScenario {
		t.Fatal("expected scenario projection")
	}
	if got := a.Scenarios.Scenarios[0].Projections[0].Year; got != 2025 {
		t.Errorf("expected first projection year 2025, got %d", got)
	}

	if a.Decision.Recommendation == "" {
		t.Error("expected a recommendation")
	}
	if len(a.Decision.Horizons) != 3 {
		t.Errorf("expected 3 horizon calls, got %d", len(a.Decision.Horizons))
	}
}

func TestEngineDiscountRateInPercentTerms(t *testing.T) {
	// Flat 30000 revenue with a 20% EBITDA margin: EBITDA 6000, FCF 4800.
	records := []models.AnnualFinancials{}
	for year := 2020; year <= 2024; year++ {
		r := models.NewAnnualFinancials(year)
		r.Revenue = 30000
		r.GrossProfit = 18000
		r.OperatingExpenses = 12000
		r.NetIncome = 4000
		records = append(records, r)
	}

	a, err := NewEngine("GSIT", "GSI Technology").Analyze(records, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.FairValue.DCF == nil {
		t.Fatal("expected a DCF result")
	}
	dcf := a.FairValue.DCF

	// The engine's 0.10 fraction must reach the model as 10 percent:
	// year-1 PV = 4800 / 1.1 = 4363.6364.
	if got := dcf.Projections[0].PVFCF; math.Abs(got-4800/1.1) > 1e-6 {
		t.Errorf("expected year-1 PV 4363.64, got %.2f", got)
	}
	// Terminal value = 4800*1.02 / (0.10-0.02) = 61200.
	if math.Abs(dcf.TerminalValue-61200) > 1e-6 {
		t.Errorf("expected terminal value 61200, got %.2f", dcf.TerminalValue)
	}
}

func TestAnalysisCSVsReproducible(t *testing.T) {
	market := []consolidate.MarketYear{{Year: 2024, Close: 2.50}}
	when := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	write := func(dir string) {
		a, err := NewEngine("GSIT", "GSI Technology").Analyze(historyFixture(), nil, market)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a.LastAnalyzed = when
		if err := WriteAnalysisCSVs(dir, a); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	dir1 := filepath.Join(t.TempDir(), "run1")
	dir2 := filepath.Join(t.TempDir(), "run2")
	write(dir1)
	write(dir2)

	entries, err := os.ReadDir(dir1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no CSVs written")
	}
	for _, e := range entries {
		b1, err := os.ReadFile(filepath.Join(dir1, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		b2, err := os.ReadFile(filepath.Join(dir2, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if string(b1) != string(b2) {
			t.Errorf("%s differs between identical runs", e.Name())
		}
	}
}

func TestEngineAnalyzeEmpty(t *testing.T) {
	engine := NewEngine("GSIT", "GSI Technology")
	if _, err := engine.Analyze(nil, nil, nil); err == nil {
		t.Fatal("expected error for empty history, got nil")
	}
}

func TestCashRunway(t *testing.T) {
	a, err := NewEngine("GSIT", "GSI Technology").Analyze(historyFixture(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cash 30000 over a 4800 annual burn: 30000 / (4800/12) = 75 months.
	if math.Abs(a.Decision.CashRunwayMonths-75) > 1e-9 {
		t.Errorf("expected 75 month runway, got %.2f", a.Decision.CashRunwayMonths)
	}

	short := a.Decision.Horizons[0]
	if short.Recommendation != "SPECULATIVE" {
		t.Errorf("expected SPECULATIVE short-term call, got %s", short.Recommendation)
	}
	if !strings.HasPrefix(short.Assessment, "STABLE") {
		t.Errorf("expected STABLE short-term assessment, got %s", short.Assessment)
	}
}

func TestDecisionHorizons(t *testing.T) {
	a, err := NewEngine("GSIT", "GSI Technology").Analyze(historyFixture(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	medium := a.Decision.Horizons[1]
	// Base-heavy scenario mix on a shrinking topline still nets out to a
	// small positive expected CAGR under the default assumptions.
	if a.Scenarios.CAGR > 0 && medium.Recommendation != "HOLD" {
		t.Errorf("expected HOLD on positive expected CAGR, got %s", medium.Recommendation)
	}
	if a.Scenarios.CAGR <= 0 && medium.Recommendation != "SELL" {
		t.Errorf("expected SELL on non-positive expected CAGR, got %s", medium.Recommendation)
	}

	long := a.Decision.Horizons[2]
	// Latest revenue 27000 sits in the niche band.
	if !strings.HasPrefix(long.Assessment, "MODERATE") {
		t.Errorf("expected MODERATE long-term assessment, got %s", long.Assessment)
	}
	if long.Recommendation != "SPECULATIVE BUY" {
		t.Errorf("expected SPECULATIVE BUY long-term call, got %s", long.Recommendation)
	}
}

func TestDecisionFactors(t *testing.T) {
	a, err := NewEngine("GSIT", "GSI Technology").Analyze(historyFixture(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60% gross margins and a 5x current ratio show up as positives.
	foundMargin := false
	for _, p := range a.Decision.Positives {
		if strings.Contains(p, "gross margins") {
			foundMargin = true
		}
	}
	if !foundMargin {
		t.Errorf("expected a gross margin positive, got %v", a.Decision.Positives)
	}

	foundOpMargin := false
	for _, n := range a.Decision.Negatives {
		if strings.Contains(n, "operating margins") {
			foundOpMargin = true
		}
	}
	if !foundOpMargin {
		t.Errorf("expected an operating margin negative, got %v", a.Decision.Negatives)
	}
}

func TestWriteAnalysisCSVs(t *testing.T) {
	a, err := NewEngine("GSIT", "GSI Technology").Analyze(historyFixture(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir := t.TempDir()
	if err := WriteAnalysisCSVs(dir, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"executive_summary.csv",
		"complete_growth_metrics.csv",
		"complete_profitability_metrics.csv",
		"complete_balance_sheet_metrics.csv",
		"complete_returns_metrics.csv",
		"complete_efficiency_metrics.csv",
		"scenario_analysis_summary.csv",
		"complete_investment_decision.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "executive_summary.csv"))
	if err != nil {
		t.Fatalf("failed to read executive summary: %v", err)
	}
	if !strings.Contains(string(data), "GSIT") {
		t.Error("expected ticker in executive summary")
	}
	if !strings.Contains(string(data), "2013-2024") {
		t.Error("expected analysis period in executive summary")
	}
}
