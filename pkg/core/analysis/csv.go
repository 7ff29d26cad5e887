package analysis

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"equity_research/pkg/models"
)

func formatValue(v float64) string {
	if models.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAnalysisCSVs persists the analysis stage results under dir, one CSV
// per metric family plus the scenario and decision summaries.
func WriteAnalysisCSVs(dir string, a *CompanyAnalysis) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create analysis dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(string) error
	}{
		{"executive_summary.csv", a.writeExecutiveSummary},
		{"complete_growth_metrics.csv", a.writeGrowth},
		{"complete_profitability_metrics.csv", a.writeProfitability},
		{"complete_balance_sheet_metrics.csv", a.writeBalance},
		{"complete_returns_metrics.csv", a.writeReturns},
		{"complete_efficiency_metrics.csv", a.writeEfficiency},
		{"scenario_analysis_summary.csv", a.writeScenarioSummary},
		{"complete_investment_decision.csv", a.writeDecision},
	}
	for _, w := range writers {
		if err := w.write(filepath.Join(dir, w.name)); err != nil {
			return err
		}
		fmt.Printf("  Saved %s\n", w.name)
	}
	return nil
}

func (a *CompanyAnalysis) analysisPeriod() string {
	if len(a.Growth) == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d", a.Growth[0].Year, a.Growth[len(a.Growth)-1].Year)
}

func (a *CompanyAnalysis) writeExecutiveSummary(path string) error {
	header := []string{
		"analysis_date", "company", "ticker", "analysis_period",
		"recommendation", "confidence", "score",
	}
	row := []string{
		a.LastAnalyzed.Format("2006-01-02"),
		a.Company,
		a.Ticker,
		a.analysisPeriod(),
		a.Attractiveness.Recommendation,
		a.Attractiveness.Confidence,
		strconv.Itoa(a.Attractiveness.Score),
	}
	return writeCSV(path, header, [][]string{row})
}

func (a *CompanyAnalysis) writeGrowth(path string) error {
	header := []string{
		"year", "revenue", "revenue_growth_yoy",
		"revenue_cagr_3y", "revenue_cagr_5y", "revenue_cagr_10y",
	}
	rows := make([][]string, 0, len(a.Growth))
	for _, g := range a.Growth {
		rows = append(rows, []string{
			strconv.Itoa(g.Year),
			formatValue(g.Revenue),
			formatValue(g.RevenueGrowthYoY),
			formatValue(g.RevenueCAGR3Y),
			formatValue(g.RevenueCAGR5Y),
			formatValue(g.RevenueCAGR10Y),
		})
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeProfitability(path string) error {
	header := []string{
		"year", "revenue", "gross_profit", "ebit", "ebitda", "net_income",
		"gross_margin", "operating_margin", "net_margin",
	}
	rows := make([][]string, 0, len(a.Profitability))
	for _, p := range a.Profitability {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			formatValue(p.Revenue),
			formatValue(p.GrossProfit),
			formatValue(p.EBIT),
			formatValue(p.EBITDA),
			formatValue(p.NetIncome),
			formatValue(p.GrossMargin),
			formatValue(p.OperatingMargin),
			formatValue(p.NetMargin),
		})
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeBalance(path string) error {
	header := []string{
		"year", "total_assets", "total_liabilities", "stockholders_equity",
		"cash", "total_debt", "net_debt", "debt_to_equity", "debt_to_assets",
		"current_ratio", "quick_ratio",
	}
	rows := make([][]string, 0, len(a.Balance))
	for _, b := range a.Balance {
		rows = append(rows, []string{
			strconv.Itoa(b.Year),
			formatValue(b.TotalAssets),
			formatValue(b.TotalLiabilities),
			formatValue(b.StockholdersEquity),
			formatValue(b.Cash),
			formatValue(b.TotalDebt),
			formatValue(b.NetDebt),
			formatValue(b.DebtToEquity),
			formatValue(b.DebtToAssets),
			formatValue(b.CurrentRatio),
			formatValue(b.QuickRatio),
		})
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeReturns(path string) error {
	header := []string{
		"year", "net_income", "total_assets", "stockholders_equity",
		"invested_capital", "roe", "roa", "roic",
	}
	rows := make([][]string, 0, len(a.Returns))
	for _, r := range a.Returns {
		rows = append(rows, []string{
			strconv.Itoa(r.Year),
			formatValue(r.NetIncome),
			formatValue(r.TotalAssets),
			formatValue(r.StockholdersEquity),
			formatValue(r.InvestedCapital),
			formatValue(r.ROE),
			formatValue(r.ROA),
			formatValue(r.ROIC),
		})
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeEfficiency(path string) error {
	header := []string{
		"year", "revenue", "total_assets", "stockholders_equity",
		"asset_turnover", "equity_turnover",
	}
	rows := make([][]string, 0, len(a.Efficiency))
	for _, e := range a.Efficiency {
		rows = append(rows, []string{
			strconv.Itoa(e.Year),
			formatValue(e.Revenue),
			formatValue(e.TotalAssets),
			formatValue(e.StockholdersEquity),
			formatValue(e.AssetTurnover),
			formatValue(e.EquityTurnover),
		})
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeScenarioSummary(path string) error {
	header := []string{
		"name", "probability", "five_year_revenue", "five_year_cagr",
		"implied_enterprise_value",
	}
	rows := [][]string{}
	if a.HaveScenario {
		for _, s := range a.Scenarios.Scenarios {
			rows = append(rows, []string{
				s.Assumptions.Name,
				formatValue(s.Assumptions.Probability),
				formatValue(s.FinalRevenue),
				formatValue(s.RevenueCAGR),
				formatValue(s.ImpliedEV),
			})
		}
	}
	return writeCSV(path, header, rows)
}

func (a *CompanyAnalysis) writeDecision(path string) error {
	header := []string{
		"recommendation", "confidence", "score",
		"short_term_rec", "medium_term_rec", "long_term_rec",
		"cash_runway_months", "expected_value",
		"suitable_for", "risk_tolerance",
	}
	horizonRec := func(name string) string {
		for _, h := range a.Decision.Horizons {
			if h.Horizon == name {
				return h.Recommendation
			}
		}
		return ""
	}
	row := []string{
		a.Decision.Recommendation,
		a.Decision.Confidence,
		strconv.Itoa(a.Decision.Score),
		horizonRec("short_term"),
		horizonRec("medium_term"),
		horizonRec("long_term"),
		formatValue(a.Decision.CashRunwayMonths),
		formatValue(a.Decision.ExpectedValue),
		a.Decision.SuitableFor,
		a.Decision.RiskTolerance,
	}
	return writeCSV(path, header, [][]string{row})
}
