package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"equity_research/pkg/models"
)

func formatValue(v float64) string {
	if models.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseValue(s string) float64 {
	if s == "" {
		return models.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Missing()
	}
	return v
}

type masterColumn struct {
	name string
	get  func(*models.AnnualFinancials) *float64
}

var incomeColumns = []masterColumn{
	{"revenue", func(r *models.AnnualFinancials) *float64 { return &r.Revenue }},
	{"cost_of_revenues", func(r *models.AnnualFinancials) *float64 { return &r.CostOfRevenues }},
	{"gross_profit", func(r *models.AnnualFinancials) *float64 { return &r.GrossProfit }},
	{"research_development", func(r *models.AnnualFinancials) *float64 { return &r.RDExpense }},
	{"selling_general_admin", func(r *models.AnnualFinancials) *float64 { return &r.SGAExpense }},
	{"operating_expenses", func(r *models.AnnualFinancials) *float64 { return &r.OperatingExpenses }},
	{"operating_income", func(r *models.AnnualFinancials) *float64 { return &r.OperatingIncome }},
	{"net_income", func(r *models.AnnualFinancials) *float64 { return &r.NetIncome }},
}

var balanceColumns = []masterColumn{
	{"cash_and_equivalents", func(r *models.AnnualFinancials) *float64 { return &r.Cash }},
	{"short_term_investments", func(r *models.AnnualFinancials) *float64 { return &r.ShortTermInvestments }},
	{"current_assets", func(r *models.AnnualFinancials) *float64 { return &r.CurrentAssets }},
	{"total_assets", func(r *models.AnnualFinancials) *float64 { return &r.TotalAssets }},
	{"current_liabilities", func(r *models.AnnualFinancials) *float64 { return &r.CurrentLiabilities }},
	{"total_liabilities", func(r *models.AnnualFinancials) *float64 { return &r.TotalLiabilities }},
	{"stockholders_equity", func(r *models.AnnualFinancials) *float64 { return &r.StockholdersEquity }},
	{"long_term_debt", func(r *models.AnnualFinancials) *float64 { return &r.LongTermDebt }},
	{"short_term_debt", func(r *models.AnnualFinancials) *float64 { return &r.ShortTermDebt }},
}

var cashflowColumns = []masterColumn{
	{"operating_cash_flow", func(r *models.AnnualFinancials) *float64 { return &r.OperatingCashFlow }},
	{"investing_cash_flow", func(r *models.AnnualFinancials) *float64 { return &r.InvestingCashFlow }},
	{"financing_cash_flow", func(r *models.AnnualFinancials) *float64 { return &r.FinancingCashFlow }},
	{"capital_expenditures", func(r *models.AnnualFinancials) *float64 { return &r.Capex }},
	{"depreciation_amortization", func(r *models.AnnualFinancials) *float64 { return &r.Depreciation }},
}

var masterFiles = []struct {
	name    string
	columns []masterColumn
}{
	{"master_income_statement.csv", incomeColumns},
	{"master_balance_sheet.csv", balanceColumns},
	{"master_cashflow.csv", cashflowColumns},
}

// WriteMasterCSVs writes the three consolidated datasets, one row per
// fiscal year.
func WriteMasterCSVs(dir string, records []models.AnnualFinancials) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, mf := range masterFiles {
		if err := writeMasterCSV(filepath.Join(dir, mf.name), mf.columns, records); err != nil {
			return err
		}
	}
	return nil
}

func writeMasterCSV(path string, columns []masterColumn, records []models.AnnualFinancials) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"year"}
	for _, col := range columns {
		header = append(header, col.name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range records {
		rec := []string{strconv.Itoa(records[i].Year)}
		for _, col := range columns {
			rec = append(rec, formatValue(*col.get(&records[i])))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMasterCSVs loads the consolidated datasets back into per-year records
// sorted by fiscal year. Each file is optional individually, but at least
// the income and balance masters must exist.
func ReadMasterCSVs(dir string) ([]models.AnnualFinancials, error) {
	byYear := map[int]*models.AnnualFinancials{}

	required := map[string]bool{
		"master_income_statement.csv": true,
		"master_balance_sheet.csv":    true,
	}

	for _, mf := range masterFiles {
		path := filepath.Join(dir, mf.name)
		if err := readMasterCSV(path, mf.columns, byYear); err != nil {
			if os.IsNotExist(err) && !required[mf.name] {
				continue
			}
			return nil, err
		}
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return nil, fmt.Errorf("no consolidated years under %s", dir)
	}

	out := make([]models.AnnualFinancials, 0, len(years))
	for _, year := range years {
		out = append(out, *byYear[year])
	}
	return out, nil
}

func readMasterCSV(path string, columns []masterColumn, byYear map[int]*models.AnnualFinancials) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return fmt.Errorf("%s: no data rows", path)
	}

	header := records[0]
	if len(header) < 1 || header[0] != "year" {
		return fmt.Errorf("%s: first column must be year", path)
	}
	colIndex := map[string]int{}
	for i, name := range header {
		colIndex[name] = i
	}

	for _, rec := range records[1:] {
		year, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("%s: bad year %q: %w", path, rec[0], err)
		}
		r, ok := byYear[year]
		if !ok {
			nr := models.NewAnnualFinancials(year)
			byYear[year] = &nr
			r = byYear[year]
		}
		for _, col := range columns {
			idx, ok := colIndex[col.name]
			if !ok || idx >= len(rec) {
				continue
			}
			*col.get(r) = parseValue(rec[idx])
		}
	}
	return nil
}
