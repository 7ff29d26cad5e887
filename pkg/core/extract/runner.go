package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"equity_research/pkg/models"
)

// Runner drives the extraction stage over the raw data layout and writes the
// processed intermediates the analysis stage reads.
type Runner struct {
	RawAnnualDir    string // data/raw/annual_reports/<year>/*.htm[l]
	RawQuarterlyDir string // data/raw/quarterly_reports/<year>/*.htm[l]
	RawMarketFile   string // raw OHLCV CSV export
	ProcessedDir    string // data/processed
	Ticker          string
	Company         string
}

var quarterPattern = regexp.MustCompile(`(?i)q([1-4])`)

// Run executes annual, quarterly, and market extraction in order. Quarterly
// input is optional; annual statements and market data are not.
func (r *Runner) Run() error {
	fmt.Printf("Extracting annual reports from %s\n", r.RawAnnualDir)
	if err := r.ProcessAnnual(); err != nil {
		return fmt.Errorf("annual reports: %w", err)
	}

	if _, err := os.Stat(r.RawQuarterlyDir); err == nil {
		fmt.Printf("Extracting quarterly reports from %s\n", r.RawQuarterlyDir)
		if err := r.ProcessQuarterly(); err != nil {
			return fmt.Errorf("quarterly reports: %w", err)
		}
	} else {
		fmt.Println("No quarterly reports directory, skipping")
	}

	fmt.Printf("Extracting market data from %s\n", r.RawMarketFile)
	if err := r.ProcessMarket(); err != nil {
		return fmt.Errorf("market data: %w", err)
	}
	return nil
}

// ProcessAnnual parses every 10-K exhibit under the annual reports tree and
// writes one processed CSV per statement type.
func (r *Runner) ProcessAnnual() error {
	rows, err := r.processFilings(r.RawAnnualDir, "FY")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no statement tables recognized under %s", r.RawAnnualDir)
	}
	return r.writeByStatement(rows, filepath.Join(r.ProcessedDir, "annual_reports"))
}

// ProcessQuarterly does the same for 10-Q exhibits. Cash-flow tables in
// 10-Qs are cumulative and are left out of the quarterly outputs.
func (r *Runner) ProcessQuarterly() error {
	rows, err := r.processFilings(r.RawQuarterlyDir, "Q")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no statement tables recognized under %s", r.RawQuarterlyDir)
	}
	var kept []models.StatementRow
	for _, row := range rows {
		if row.Statement == models.StatementCashFlow {
			continue
		}
		kept = append(kept, row)
	}
	return r.writeByStatement(kept, filepath.Join(r.ProcessedDir, "quarterly_reports"))
}

// ProcessMarket cleans the raw OHLCV export into stock_prices.csv.
func (r *Runner) ProcessMarket() error {
	bars, err := CleanMarketData(r.RawMarketFile, r.Ticker, r.Company)
	if err != nil {
		return err
	}
	out := filepath.Join(r.ProcessedDir, "market_data", "stock_prices.csv")
	if err := WritePriceCSV(out, bars); err != nil {
		return err
	}
	fmt.Printf("  %d price bars (%s to %s) -> %s\n",
		len(bars),
		bars[0].Date.Format("2006-01-02"),
		bars[len(bars)-1].Date.Format("2006-01-02"),
		out)
	return nil
}

// processFilings walks <dir>/<year>/*.htm[l] in sorted order so re-runs
// produce identical row order.
func (r *Runner) processFilings(dir, periodKind string) ([]models.StatementRow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var yearDirs []string
	for _, e := range entries {
		if e.IsDir() {
			yearDirs = append(yearDirs, e.Name())
		}
	}
	sort.Strings(yearDirs)
	fmt.Printf("  Found %d year directories\n", len(yearDirs))

	var all []models.StatementRow
	for _, yd := range yearDirs {
		year, err := strconv.Atoi(yd)
		if err != nil {
			fmt.Printf("  Skipping non-year directory %q\n", yd)
			continue
		}
		files, err := filepath.Glob(filepath.Join(dir, yd, "*.htm*"))
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
		for _, file := range files {
			filing := Filing{
				Year:   year,
				Period: filePeriod(file, periodKind),
				Source: filepath.Base(file),
			}
			f, err := os.Open(file)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", file, err)
			}
			rows, err := ParseFilingHTML(f, filing)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			fmt.Printf("  %s: %d rows\n", filing.Source, len(rows))
			all = append(all, rows...)
		}
	}
	return all, nil
}

// filePeriod derives the filing period from the file name. Annual exhibits
// are always FY; quarterly ones carry a Q1..Q4 marker, defaulting to Q1 when
// the name has none.
func filePeriod(file, periodKind string) string {
	if periodKind == "FY" {
		return "FY"
	}
	if m := quarterPattern.FindStringSubmatch(filepath.Base(file)); m != nil {
		return "Q" + m[1]
	}
	return "Q1"
}

var statementFileNames = map[string]string{
	models.StatementBalanceSheet:        "balance_sheets.csv",
	models.StatementIncome:              "income_statements.csv",
	models.StatementCashFlow:            "cash_flows.csv",
	models.StatementEquity:              "equity_statements.csv",
	models.StatementComprehensiveIncome: "comprehensive_income.csv",
}

func (r *Runner) writeByStatement(rows []models.StatementRow, outDir string) error {
	byStatement := map[string][]models.StatementRow{}
	for _, row := range rows {
		byStatement[row.Statement] = append(byStatement[row.Statement], row)
	}

	var statements []string
	for stmt := range byStatement {
		statements = append(statements, stmt)
	}
	sort.Strings(statements)

	for _, stmt := range statements {
		name, ok := statementFileNames[stmt]
		if !ok {
			continue
		}
		out := filepath.Join(outDir, name)
		if err := WriteStatementCSV(out, byStatement[stmt]); err != nil {
			return err
		}
		fmt.Printf("  %s: %d rows -> %s\n", stmt, len(byStatement[stmt]), out)
	}

	required := []string{models.StatementIncome, models.StatementBalanceSheet}
	for _, stmt := range required {
		if strings.Contains(outDir, "annual") && len(byStatement[stmt]) == 0 {
			return fmt.Errorf("no %s rows extracted", stmt)
		}
	}
	return nil
}
