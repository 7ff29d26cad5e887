package report

import (
	"fmt"
	"strings"

	"equity_research/pkg/core/analysis"
	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// recentYears is how much history the report tables show.
const recentYears = 8

// Builder assembles the Markdown report from a finished analysis.
type Builder struct {
	Analysis  *analysis.CompanyAnalysis
	Narrative string // optional analyst commentary section body
}

// NewBuilder returns a builder for the given analysis.
func NewBuilder(a *analysis.CompanyAnalysis) *Builder {
	return &Builder{Analysis: a}
}

// Build renders the full report as Markdown.
func (b *Builder) Build() string {
	var sb strings.Builder

	b.writeTitle(&sb)
	b.writeExecutiveSummary(&sb)
	b.writeFinancialPerformance(&sb)
	b.writeValuation(&sb)
	b.writeScenarios(&sb)
	b.writeRecommendation(&sb)
	if b.Narrative != "" {
		sb.WriteString("## Analyst Commentary\n\n")
		sb.WriteString(strings.TrimSpace(b.Narrative))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (b *Builder) writeTitle(sb *strings.Builder) {
	a := b.Analysis
	fmt.Fprintf(sb, "# Equity Research Report: %s\n\n", a.Company)
	fmt.Fprintf(sb, "**Ticker:** %s  \n", a.Ticker)
	fmt.Fprintf(sb, "**Report Date:** %s  \n", a.LastAnalyzed.Format("2006-01-02"))
	if period := reportPeriod(a); period != "" {
		fmt.Fprintf(sb, "**Analysis Period:** %s  \n", period)
	}
	sb.WriteString("\n---\n\n")
}

func reportPeriod(a *analysis.CompanyAnalysis) string {
	if len(a.Growth) == 0 {
		return ""
	}
	return fmt.Sprintf("FY%d - FY%d", a.Growth[0].Year, a.Growth[len(a.Growth)-1].Year)
}

func (b *Builder) writeExecutiveSummary(sb *strings.Builder) {
	a := b.Analysis
	sb.WriteString("## Executive Summary\n\n")

	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(sb, "| **Recommendation** | **%s** |\n", a.Decision.Recommendation)
	fmt.Fprintf(sb, "| **Confidence** | %s |\n", a.Decision.Confidence)
	fmt.Fprintf(sb, "| **Score** | %d/10 |\n", a.Decision.Score)
	fmt.Fprintf(sb, "| **Current Price** | %s |\n\n", FormatPrice(a.Multiples.CurrentPrice))

	sb.WriteString("### Key Findings\n\n")
	if len(a.Growth) > 0 {
		latest := a.Growth[len(a.Growth)-1]
		fmt.Fprintf(sb, "- **Revenue Trend:** latest revenue %s, 3-year CAGR %s\n",
			FormatMoney(latest.Revenue), FormatPercent(latest.RevenueCAGR3Y))
	}
	grossAvg, opAvg := b.recentMarginAverages()
	if !models.IsMissing(grossAvg) {
		fmt.Fprintf(sb, "- **Gross Margins:** %s average over the last three years\n",
			FormatPercent(grossAvg))
	}
	if !models.IsMissing(opAvg) {
		fmt.Fprintf(sb, "- **Operating Margins:** %s average over the last three years\n",
			FormatPercent(opAvg))
	}
	if bal, ok := a.LatestBalance(); ok {
		fmt.Fprintf(sb, "- **Cash Position:** %s", FormatMoney(bal.Cash))
		if !models.IsMissing(a.Decision.CashRunwayMonths) {
			fmt.Fprintf(sb, " (~%.0f months of runway at the current burn rate)",
				a.Decision.CashRunwayMonths)
		}
		sb.WriteString("\n")
		fmt.Fprintf(sb, "- **Liquidity:** current ratio of %s\n", FormatRatio(bal.CurrentRatio))
	}
	sb.WriteString("\n")

	sb.WriteString("### Investment Suitability\n\n")
	fmt.Fprintf(sb, "> Suitable for %s. Requires %s risk tolerance over a %s horizon. Not suitable for %s.\n\n",
		strings.ToLower(a.Decision.SuitableFor), strings.ToLower(a.Decision.RiskTolerance),
		a.Decision.TimeHorizon, strings.ToLower(a.Decision.NotSuitableFor))
}

func (b *Builder) recentMarginAverages() (gross, operating float64) {
	var grossVals, opVals []float64
	for _, p := range b.Analysis.Profitability {
		grossVals = append(grossVals, p.GrossMargin)
		opVals = append(opVals, p.OperatingMargin)
	}
	return calc.Mean(calc.Tail(grossVals, 3)), calc.Mean(calc.Tail(opVals, 3))
}

func (b *Builder) writeFinancialPerformance(sb *strings.Builder) {
	a := b.Analysis
	sb.WriteString("## Financial Performance\n\n")

	sb.WriteString("### Revenue Growth\n\n")
	sb.WriteString("| Year | Revenue | YoY Growth | 3Y CAGR |\n")
	sb.WriteString("|---|---|---|---|\n")
	growth := a.Growth
	if len(growth) > recentYears {
		growth = growth[len(growth)-recentYears:]
	}
	for _, g := range growth {
		fmt.Fprintf(sb, "| %d | %s | %s | %s |\n",
			g.Year, FormatMoney(g.Revenue),
			FormatPercent(g.RevenueGrowthYoY), FormatPercent(g.RevenueCAGR3Y))
	}
	sb.WriteString("\n")

	sb.WriteString("### Profitability\n\n")
	sb.WriteString("| Year | Revenue | Gross Margin | Operating Margin | Net Margin |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	profit := a.Profitability
	if len(profit) > recentYears {
		profit = profit[len(profit)-recentYears:]
	}
	for _, p := range profit {
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s |\n",
			p.Year, FormatMoney(p.Revenue), FormatPercent(p.GrossMargin),
			FormatPercent(p.OperatingMargin), FormatPercent(p.NetMargin))
	}
	sb.WriteString("\n")

	sb.WriteString("### Balance Sheet\n\n")
	sb.WriteString("| Year | Cash | Total Assets | Equity | Current Ratio |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	balance := a.Balance
	if len(balance) > recentYears {
		balance = balance[len(balance)-recentYears:]
	}
	for _, bal := range balance {
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s |\n",
			bal.Year, FormatMoney(bal.Cash), FormatMoney(bal.TotalAssets),
			FormatMoney(bal.StockholdersEquity), FormatRatio(bal.CurrentRatio))
	}
	sb.WriteString("\n")
}

func (b *Builder) writeValuation(sb *strings.Builder) {
	a := b.Analysis
	sb.WriteString("## Valuation\n\n")

	sb.WriteString("### Current Multiples\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(sb, "| Market Cap | %s |\n", FormatMoney(a.Multiples.MarketCap))
	fmt.Fprintf(sb, "| P/E | %s |\n", FormatRatio(a.Multiples.PERatio))
	fmt.Fprintf(sb, "| P/BV | %s |\n", FormatRatio(a.Multiples.PBVRatio))
	fmt.Fprintf(sb, "| EV/EBITDA | %s |\n", FormatRatio(a.Multiples.EVEBITDA))
	fmt.Fprintf(sb, "| EV/Sales | %s |\n\n", FormatRatio(a.Multiples.EVSales))

	if len(a.FairValue.Methods) > 0 {
		sb.WriteString("### Fair Value Estimates\n\n")
		sb.WriteString("| Method | Fair Value |\n|---|---|\n")
		for _, m := range a.FairValue.Methods {
			fmt.Fprintf(sb, "| %s | %s |\n", m.Method, FormatMillions(m.FairValue))
		}
		fmt.Fprintf(sb, "| **Average** | %s |\n", FormatMillions(a.FairValue.Average))
		fmt.Fprintf(sb, "| **Median** | %s |\n\n", FormatMillions(a.FairValue.Median))
	}
}

func (b *Builder) writeScenarios(sb *strings.Builder) {
	a := b.Analysis
	sb.WriteString("## Scenario Analysis\n\n")
	if !a.HaveScenario {
		sb.WriteString("No scenario projection could be built from the available history.\n\n")
		return
	}

	sb.WriteString("Five-year outcomes under bull, base, and bear assumptions, weighted by probability.\n\n")
	sb.WriteString("| Scenario | Probability | 5Y Revenue | 5Y CAGR | Implied EV |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, s := range a.Scenarios.Scenarios {
		fmt.Fprintf(sb, "| %s | %.0f%% | %s | %s | %s |\n",
			s.Assumptions.Name, s.NormalizedProbability*100,
			FormatMoney(s.FinalRevenue), FormatPercent(s.RevenueCAGR),
			FormatMoney(s.ImpliedEV))
	}
	fmt.Fprintf(sb, "| **Expected** | | %s | %s | %s |\n\n",
		FormatMoney(a.Scenarios.Revenue), FormatPercent(a.Scenarios.CAGR),
		FormatMoney(a.Scenarios.Valuation))
}

func (b *Builder) writeRecommendation(sb *strings.Builder) {
	a := b.Analysis
	sb.WriteString("## Investment Recommendation\n\n")
	fmt.Fprintf(sb, "**%s** (Confidence: %s, Score: %d/10)\n\n",
		a.Decision.Recommendation, a.Decision.Confidence, a.Decision.Score)

	sb.WriteString("### By Investment Horizon\n\n")
	sb.WriteString("| Horizon | Call | Rationale |\n|---|---|---|\n")
	for _, h := range a.Decision.Horizons {
		fmt.Fprintf(sb, "| %s | **%s** | %s |\n", h.Period, h.Recommendation, h.Reason)
	}
	sb.WriteString("\n")

	if len(a.Decision.Negatives) > 0 {
		sb.WriteString("### Risk Factors\n\n")
		for _, n := range a.Decision.Negatives {
			fmt.Fprintf(sb, "- %s\n", n)
		}
		sb.WriteString("\n")
	}
	if len(a.Decision.Positives) > 0 {
		sb.WriteString("### Upside Factors\n\n")
		for _, p := range a.Decision.Positives {
			fmt.Fprintf(sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Conclusion\n\n")
	fmt.Fprintf(sb, "> Given the current trajectory, a **%s** recommendation is warranted for %s.\n\n",
		a.Decision.Recommendation, strings.ToLower(a.Decision.SuitableFor))
}
