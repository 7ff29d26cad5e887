// Package pipeline chains the extract, analyze, and report stages into a
// single run over the filesystem layout the config describes. Each stage
// reads only CSV intermediates, so any stage can also be re-run on its own
// through the per-stage commands.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"equity_research/pkg/core/analysis"
	"equity_research/pkg/core/config"
	"equity_research/pkg/core/consolidate"
	"equity_research/pkg/core/extract"
	"equity_research/pkg/core/llm"
	"equity_research/pkg/core/quarterly"
	"equity_research/pkg/core/report"
	"equity_research/pkg/core/scenario"
	"equity_research/pkg/core/store"
	"equity_research/pkg/core/valuation"
	"equity_research/pkg/models"
)

// Orchestrator runs the full pipeline for one company.
type Orchestrator struct {
	cfg config.Config

	// SaveToStore mirrors the finished analysis into Postgres.
	SaveToStore bool
	// Narrative generates the analyst commentary section through the
	// given provider. Nil provider skips it.
	Narrative llm.Provider
}

func NewOrchestrator(cfg config.Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Run executes extract, analyze, and report in order, failing fast on the
// first stage error.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.New().String()
	fmt.Printf("Pipeline run %s for %s (%s)\n", runID, o.cfg.Company.Name, o.cfg.Company.Ticker)
	start := time.Now()

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"extract", o.runExtract},
		{"analyze", o.runAnalyze},
		{"report", o.runReport},
	}
	for _, stage := range stages {
		fmt.Printf("\n=== Stage: %s ===\n", stage.name)
		stageStart := time.Now()
		if err := stage.fn(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
		fmt.Printf("Stage %s done in %v\n", stage.name, time.Since(stageStart).Round(time.Millisecond))
	}

	fmt.Printf("\nPipeline run %s completed in %v\n", runID, time.Since(start).Round(time.Millisecond))
	return nil
}

func (o *Orchestrator) runExtract(context.Context) error {
	runner := &extract.Runner{
		RawAnnualDir:    o.cfg.Paths.RawAnnualDir,
		RawQuarterlyDir: o.cfg.Paths.RawQuarterlyDir,
		RawMarketFile:   o.cfg.Paths.RawMarketFile,
		ProcessedDir:    o.cfg.Paths.ProcessedDir,
		Ticker:          o.cfg.Company.Ticker,
		Company:         o.cfg.Company.Name,
	}
	if err := runner.Run(); err != nil {
		return err
	}

	c := &consolidate.Consolidator{
		ProcessedDir: o.cfg.Paths.ProcessedDir,
		OutputDir:    o.cfg.Paths.ConsolidatedDir,
	}
	_, err := c.Run()
	return err
}

func (o *Orchestrator) runAnalyze(ctx context.Context) error {
	records, quarters, market, err := LoadInputs(o.cfg)
	if err != nil {
		return err
	}
	if err := ValidateRecords(records, o.cfg.Validation); err != nil {
		return err
	}

	a, err := BuildAnalysis(o.cfg, records, quarters, market)
	if err != nil {
		return err
	}
	if err := analysis.WriteAnalysisCSVs(o.cfg.Paths.AnalysisDir, a); err != nil {
		return err
	}

	if o.SaveToStore {
		if err := store.NewAnalysisRepo().Save(ctx, a); err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		fmt.Printf("Saved analysis for %s to database\n", a.Ticker)
	}
	return nil
}

func (o *Orchestrator) runReport(ctx context.Context) error {
	records, quarters, market, err := LoadInputs(o.cfg)
	if err != nil {
		return err
	}
	a, err := BuildAnalysis(o.cfg, records, quarters, market)
	if err != nil {
		return err
	}

	builder := report.NewBuilder(a)
	if o.Narrative != nil {
		narrative, err := report.GenerateCommentary(ctx, o.Narrative, a)
		if err != nil {
			fmt.Printf("Warning: analyst commentary skipped: %v\n", err)
		} else {
			builder.Narrative = narrative
		}
	}

	mdPath, pdfPath, err := report.Write(o.cfg.Paths.OutputDir, builder.Build())
	if err != nil {
		return err
	}
	fmt.Printf("Report written: %s, %s\n", mdPath, pdfPath)
	return nil
}

// LoadInputs reads the consolidated masters, quarterly income rows, and
// the annual market summary. Consolidation runs first if the masters are
// not on disk yet. Quarterly and market inputs are optional.
func LoadInputs(cfg config.Config) ([]models.AnnualFinancials, []models.QuarterlyFinancials, []consolidate.MarketYear, error) {
	records, err := consolidate.ReadMasterCSVs(cfg.Paths.ConsolidatedDir)
	if err != nil {
		fmt.Printf("Consolidated masters not readable (%v), rebuilding\n", err)
		c := &consolidate.Consolidator{
			ProcessedDir: cfg.Paths.ProcessedDir,
			OutputDir:    cfg.Paths.ConsolidatedDir,
		}
		records, err = c.Run()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("consolidate: %w", err)
		}
	}

	var quarters []models.QuarterlyFinancials
	quarterlyFile := filepath.Join(cfg.Paths.ProcessedDir, "quarterly_reports", "income_statements.csv")
	if rows, err := extract.ReadStatementCSV(quarterlyFile); err == nil {
		quarters = quarterly.FromStatementRows(rows)
		fmt.Printf("Loaded %d quarterly records\n", len(quarters))
	} else {
		fmt.Printf("No quarterly data: %v\n", err)
	}

	var market []consolidate.MarketYear
	marketFile := filepath.Join(cfg.Paths.ConsolidatedDir, "market_data_annual.csv")
	if summary, err := consolidate.ReadMarketSummaryCSV(marketFile); err == nil {
		market = summary
	} else {
		fmt.Printf("No market summary: %v\n", err)
	}

	return records, quarters, market, nil
}

// BuildAnalysis configures the engine from the pipeline config and runs it.
func BuildAnalysis(cfg config.Config, records []models.AnnualFinancials, quarters []models.QuarterlyFinancials, market []consolidate.MarketYear) (*analysis.CompanyAnalysis, error) {
	engine := analysis.NewEngine(cfg.Company.Ticker, cfg.Company.Name)
	engine.SharesThousands = cfg.Company.SharesThousands
	engine.CutoffYear = cfg.Valuation.CutoffYear
	engine.DiscountRate = cfg.Valuation.DiscountRate
	engine.TerminalGrowth = cfg.Valuation.TerminalGrowth
	if capm := cfg.Valuation.CAPM; capm != nil {
		res := valuation.CalculateWACC(valuation.WACCInput{
			UnleveredBeta:     capm.UnleveredBeta,
			RiskFreeRate:      capm.RiskFreeRate,
			MarketRiskPremium: capm.MarketRiskPremium,
			PreTaxCostOfDebt:  capm.PreTaxCostOfDebt,
			TaxRate:           capm.TaxRate,
			DebtToEquityRatio: capm.DebtToEquity,
		})
		engine.DiscountRate = res.WACC
		fmt.Printf("Discount rate from WACC: %.2f%%\n", res.WACC*100)
	}
	if cfg.ScenarioFile != "" {
		sc, err := scenario.LoadConfig(cfg.ScenarioFile)
		if err != nil {
			return nil, fmt.Errorf("scenario config: %w", err)
		}
		engine.ScenarioConfig = sc
	}
	return engine.Analyze(records, quarters, market)
}

// ValidateRecords runs the integrity checks between consolidation and
// analysis: fiscal years must be strictly increasing, and the accounting
// equation must hold within tolerance. Equation gaps are warnings unless
// strict validation is on.
func ValidateRecords(records []models.AnnualFinancials, vc config.ValidationConfig) error {
	if len(records) == 0 {
		return fmt.Errorf("no consolidated records")
	}
	for i := 1; i < len(records); i++ {
		if records[i].Year <= records[i-1].Year {
			return fmt.Errorf("fiscal years out of order: %d after %d", records[i].Year, records[i-1].Year)
		}
	}

	for _, r := range records {
		if models.IsMissing(r.TotalAssets) || models.IsMissing(r.TotalLiabilities) || models.IsMissing(r.StockholdersEquity) {
			continue
		}
		diff := math.Abs(r.TotalAssets - (r.TotalLiabilities + r.StockholdersEquity))
		var diffPercent float64
		if r.TotalAssets > 0 {
			diffPercent = diff / r.TotalAssets * 100
		}
		if diffPercent > vc.BalanceTolerance {
			msg := fmt.Sprintf("FY%d balance equation off by %.2f (%.3f%% of assets)", r.Year, diff, diffPercent)
			if vc.Strict {
				return fmt.Errorf("%s", msg)
			}
			fmt.Printf("Warning: %s\n", msg)
		}
	}
	return nil
}
