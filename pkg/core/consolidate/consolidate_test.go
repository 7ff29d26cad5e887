package consolidate

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"equity_research/pkg/models"
)

func row(stmt string, year int, sheet, item string, value float64) models.StatementRow {
	return models.StatementRow{
		Statement:  stmt,
		FiscalYear: year,
		Period:     "FY",
		SheetName:  sheet,
		LineItem:   item,
		Value:      value,
	}
}

func TestConsolidateBasic(t *testing.T) {
	income := []models.StatementRow{
		row(models.StatementIncome, 2024, "Consolidated Statements of Operations", "Net revenues", 21843),
		row(models.StatementIncome, 2024, "Consolidated Statements of Operations", "Cost of revenues", 10028),
		row(models.StatementIncome, 2024, "Consolidated Statements of Operations", "Gross profit", 11815),
		row(models.StatementIncome, 2024, "Consolidated Statements of Operations", "Net loss", 20086),
	}
	balance := []models.StatementRow{
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Cash and cash equivalents", 14429),
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Total current assets", 32414),
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Total assets", 47038),
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Total current liabilities", 7066),
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Total liabilities", 11278),
		row(models.StatementBalanceSheet, 2024, "Consolidated Balance Sheets", "Total stockholders equity", 35760),
	}
	cashflow := []models.StatementRow{
		row(models.StatementCashFlow, 2024, "Consolidated Statements of Cash Flows", "Net cash provided by operating activities", 1234),
		row(models.StatementCashFlow, 2024, "Consolidated Statements of Cash Flows", "Depreciation and amortization", 2100),
	}

	records := Consolidate(income, balance, cashflow)
	if len(records) != 1 {
		t.Fatalf("got %d years, want 1", len(records))
	}
	r := records[0]
	if r.Year != 2024 {
		t.Errorf("year = %d", r.Year)
	}
	if r.Revenue != 21843 {
		t.Errorf("revenue = %v", r.Revenue)
	}
	// Net loss resolves to a negative net income.
	if r.NetIncome != -20086 {
		t.Errorf("net income = %v, want -20086", r.NetIncome)
	}
	if r.StockholdersEquity != 35760 {
		t.Errorf("equity = %v", r.StockholdersEquity)
	}
	if r.Depreciation != 2100 {
		t.Errorf("depreciation = %v", r.Depreciation)
	}
	// No operating expense rows at all leaves the field missing.
	if !models.IsMissing(r.OperatingExpenses) {
		t.Errorf("operating expenses = %v, want missing", r.OperatingExpenses)
	}
}

func TestConsolidateSheetPriority(t *testing.T) {
	// The MD&A summary carries a percentage-scale revenue figure that must
	// lose to the consolidated statement value.
	income := []models.StatementRow{
		row(models.StatementIncome, 2023, "Management Discussion", "Net revenues", 100.0),
		row(models.StatementIncome, 2023, "Consolidated Statements of Operations", "Net revenues", 29691),
	}
	records := Consolidate(income, nil, nil)
	if len(records) != 1 || records[0].Revenue != 29691 {
		t.Fatalf("revenue = %v, want 29691", records[0].Revenue)
	}
}

func TestConsolidateOperatingExpenseFallback(t *testing.T) {
	income := []models.StatementRow{
		row(models.StatementIncome, 2024, "ops", "Net revenues", 21843),
		row(models.StatementIncome, 2024, "ops", "Research and development", 15000),
		row(models.StatementIncome, 2024, "ops", "Selling, general and administrative", 9000),
	}
	records := Consolidate(income, nil, nil)
	// 15000 + 9000
	if got := records[0].OperatingExpenses; got != 24000 {
		t.Errorf("operating expenses = %v, want 24000", got)
	}
}

func TestConsolidateSkipsQuarterlyPeriods(t *testing.T) {
	q := row(models.StatementIncome, 2024, "ops", "Net revenues", 5000)
	q.Period = "Q2"
	records := Consolidate([]models.StatementRow{q}, nil, nil)
	if len(records) != 0 {
		t.Fatalf("quarterly rows produced %d annual records", len(records))
	}
}

func TestMasterCSVRoundTrip(t *testing.T) {
	r := models.NewAnnualFinancials(2024)
	r.Revenue = 21843
	r.NetIncome = -20086
	r.TotalAssets = 47038
	r.OperatingCashFlow = 1234

	dir := t.TempDir()
	if err := WriteMasterCSVs(dir, []models.AnnualFinancials{r}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadMasterCSVs(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0].Revenue != 21843 || got[0].NetIncome != -20086 || got[0].TotalAssets != 47038 {
		t.Errorf("record = %+v", got[0])
	}
	if !models.IsMissing(got[0].GrossProfit) {
		t.Errorf("gross profit = %v, want missing", got[0].GrossProfit)
	}
}

func TestConsolidateOutputReproducible(t *testing.T) {
	// Input rows arrive in no particular year order; the masters must come
	// out byte-identical run over run.
	income := []models.StatementRow{
		row(models.StatementIncome, 2023, "Operations", "Net revenues", 28400),
		row(models.StatementIncome, 2021, "Operations", "Net revenues", 33350),
		row(models.StatementIncome, 2024, "Operations", "Net revenues", 21843),
		row(models.StatementIncome, 2022, "Operations", "Net revenues", 35900),
	}
	balance := []models.StatementRow{
		row(models.StatementBalanceSheet, 2024, "Balance Sheets", "Total assets", 47038),
		row(models.StatementBalanceSheet, 2021, "Balance Sheets", "Total assets", 92000),
	}

	write := func(dir string) {
		records := Consolidate(income, balance, nil)
		if err := WriteMasterCSVs(dir, records); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	dir1 := t.TempDir()
	dir2 := t.TempDir()
	write(dir1)
	write(dir2)

	entries, err := os.ReadDir(dir1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no masters written")
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

func TestSummarizeMarketByYear(t *testing.T) {
	day := func(y int, m time.Month, d int, close float64) models.PriceBar {
		return models.PriceBar{
			Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Open: close - 0.1, High: close + 0.2, Low: close - 0.3, Close: close, Volume: 1000,
		}
	}
	bars := []models.PriceBar{
		day(2023, time.March, 1, 10.0),
		day(2023, time.December, 29, 8.0),
		day(2024, time.June, 3, 10.0),
	}
	summary := SummarizeMarketByYear(bars)
	if len(summary) != 2 {
		t.Fatalf("got %d years", len(summary))
	}
	if summary[0].Close != 8.0 || summary[0].Volume != 2000 {
		t.Errorf("2023 = %+v", summary[0])
	}
	// (10 - 8) / 8 * 100 = 25
	if math.Abs(summary[1].AnnualReturn-25.0) > 1e-9 {
		t.Errorf("2024 return = %v, want 25", summary[1].AnnualReturn)
	}
	if !models.IsMissing(summary[0].AnnualReturn) {
		t.Errorf("first year return should be missing, got %v", summary[0].AnnualReturn)
	}
}

func TestSummarizeMarketByYearMissingClose(t *testing.T) {
	// A year whose bars never carry a close stays missing, not zero, and
	// contributes no annual return to the following year.
	bars := []models.PriceBar{
		{
			Date: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
			Open: 9.9, High: 10.2, Low: 9.7, Close: models.Missing(), Volume: 1000,
		},
		{
			Date: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
			Open: 9.9, High: 10.2, Low: 9.7, Close: 10.0, Volume: 1000,
		},
	}
	summary := SummarizeMarketByYear(bars)
	if len(summary) != 2 {
		t.Fatalf("got %d years", len(summary))
	}
	if !models.IsMissing(summary[0].Close) {
		t.Errorf("2023 close = %v, want missing", summary[0].Close)
	}
	if !models.IsMissing(summary[1].AnnualReturn) {
		t.Errorf("2024 return = %v, want missing without a prior close", summary[1].AnnualReturn)
	}
}
