package consolidate

import (
	"fmt"
	"path/filepath"
	"sort"

	"equity_research/pkg/core/extract"
	"equity_research/pkg/models"
)

// Consolidator reads the processed statement CSVs and produces the master
// per-year datasets.
type Consolidator struct {
	ProcessedDir string // data/processed
	OutputDir    string // data/consolidated
}

// Run loads the annual statement files, consolidates them, and writes the
// three master CSVs plus the annual market summary. Income and balance data
// are required; cash flow and market data degrade gracefully.
func (c *Consolidator) Run() ([]models.AnnualFinancials, error) {
	annualDir := filepath.Join(c.ProcessedDir, "annual_reports")

	income, err := extract.ReadStatementCSV(filepath.Join(annualDir, "income_statements.csv"))
	if err != nil {
		return nil, fmt.Errorf("load income statements: %w", err)
	}
	balance, err := extract.ReadStatementCSV(filepath.Join(annualDir, "balance_sheets.csv"))
	if err != nil {
		return nil, fmt.Errorf("load balance sheets: %w", err)
	}
	cashflow, err := extract.ReadStatementCSV(filepath.Join(annualDir, "cash_flows.csv"))
	if err != nil {
		fmt.Printf("  No cash flow data: %v\n", err)
		cashflow = nil
	}

	fmt.Printf("Loaded %d income, %d balance, %d cash flow rows\n",
		len(income), len(balance), len(cashflow))

	records := Consolidate(income, balance, cashflow)
	if len(records) == 0 {
		return nil, fmt.Errorf("consolidation produced no fiscal years")
	}

	if err := WriteMasterCSVs(c.OutputDir, records); err != nil {
		return nil, err
	}
	fmt.Printf("Master datasets: %d fiscal years (%d-%d) -> %s\n",
		len(records), records[0].Year, records[len(records)-1].Year, c.OutputDir)

	marketFile := filepath.Join(c.ProcessedDir, "market_data", "stock_prices.csv")
	if bars, err := extract.ReadPriceCSV(marketFile); err == nil {
		summary := SummarizeMarketByYear(bars)
		out := filepath.Join(c.OutputDir, "market_data_annual.csv")
		if err := WriteMarketSummaryCSV(out, summary); err != nil {
			return nil, err
		}
		fmt.Printf("Market summary: %d years -> %s\n", len(summary), out)
	} else {
		fmt.Printf("  No market data: %v\n", err)
	}

	return records, nil
}

// Consolidate maps long-form statement rows onto canonical per-year records.
// Values are stored as magnitudes; sign is restored where the statements
// split a field into income and loss variants.
func Consolidate(income, balance, cashflow []models.StatementRow) []models.AnnualFinancials {
	byYear := map[int]*models.AnnualFinancials{}
	record := func(year int) *models.AnnualFinancials {
		if r, ok := byYear[year]; ok {
			return r
		}
		r := models.NewAnnualFinancials(year)
		byYear[year] = &r
		return byYear[year]
	}

	for year, rows := range groupByYear(income) {
		fields := extractFields(rows, incomeFields)
		r := record(year)
		r.Revenue = fields["revenue"]
		r.CostOfRevenues = fields["cost_of_revenues"]
		r.GrossProfit = fields["gross_profit"]
		r.RDExpense = fields["research_development"]
		r.SGAExpense = fields["selling_general_admin"]
		r.OperatingExpenses = fields["operating_expenses"]
		r.OperatingIncome = signedPair(fields["operating_income"], fields["operating_loss"])
		r.NetIncome = signedPair(fields["net_income"], fields["net_loss"])
		if models.IsMissing(r.OperatingExpenses) &&
			!models.IsMissing(r.RDExpense) && !models.IsMissing(r.SGAExpense) {
			r.OperatingExpenses = r.RDExpense + r.SGAExpense
		}
	}

	for year, rows := range groupByYear(balance) {
		fields := extractFields(rows, balanceFields)
		r := record(year)
		r.Cash = fields["cash_and_equivalents"]
		r.ShortTermInvestments = fields["short_term_investments"]
		r.CurrentAssets = fields["current_assets"]
		r.TotalAssets = fields["total_assets"]
		r.CurrentLiabilities = fields["current_liabilities"]
		r.TotalLiabilities = fields["total_liabilities"]
		r.StockholdersEquity = fields["stockholders_equity"]
		r.LongTermDebt = fields["long_term_debt"]
		r.ShortTermDebt = fields["short_term_debt"]
	}

	for year, rows := range groupByYear(cashflow) {
		fields := extractFields(rows, cashflowFields)
		r := record(year)
		r.OperatingCashFlow = fields["operating_cash_flow"]
		r.InvestingCashFlow = fields["investing_cash_flow"]
		r.FinancingCashFlow = fields["financing_cash_flow"]
		r.Capex = fields["capital_expenditures"]
		r.Depreciation = fields["depreciation_amortization"]
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]models.AnnualFinancials, 0, len(years))
	for _, year := range years {
		out = append(out, *byYear[year])
	}
	return out
}

// signedPair resolves an income/loss field pair: the income variant keeps
// its magnitude, the loss variant flips negative.
func signedPair(income, loss float64) float64 {
	if !models.IsMissing(income) {
		return income
	}
	if !models.IsMissing(loss) {
		return -loss
	}
	return models.Missing()
}

// groupByYear keeps only full-year rows; quarterly periods never feed the
// annual masters.
func groupByYear(rows []models.StatementRow) map[int][]models.StatementRow {
	byYear := map[int][]models.StatementRow{}
	for _, row := range rows {
		if row.Period != "FY" {
			continue
		}
		byYear[row.FiscalYear] = append(byYear[row.FiscalYear], row)
	}
	return byYear
}
