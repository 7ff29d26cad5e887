package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"equity_research/pkg/models"
)

var statementCSVHeader = []string{
	"statement_type", "fiscal_year", "period", "sheet_name", "line_item", "value",
}

// WriteStatementCSV writes long-form statement rows. Missing values are
// written as empty cells.
func WriteStatementCSV(path string, rows []models.StatementRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statementCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		value := ""
		if !models.IsMissing(r.Value) {
			value = strconv.FormatFloat(r.Value, 'f', -1, 64)
		}
		record := []string{
			r.Statement,
			strconv.Itoa(r.FiscalYear),
			r.Period,
			r.SheetName,
			r.LineItem,
			value,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadStatementCSV reads rows written by WriteStatementCSV.
func ReadStatementCSV(path string) ([]models.StatementRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	rows := make([]models.StatementRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(statementCSVHeader) {
			return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(statementCSVHeader), len(rec))
		}
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s: bad fiscal year %q: %w", path, rec[1], err)
		}
		value := models.Missing()
		if rec[5] != "" {
			value, err = strconv.ParseFloat(rec[5], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad value %q: %w", path, rec[5], err)
			}
		}
		rows = append(rows, models.StatementRow{
			Statement:  rec[0],
			FiscalYear: year,
			Period:     rec[2],
			SheetName:  rec[3],
			LineItem:   rec[4],
			Value:      value,
		})
	}
	return rows, nil
}
