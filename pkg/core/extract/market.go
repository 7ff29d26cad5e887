package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"equity_research/pkg/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2-Jan-2006",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanMarketData reads a raw OHLCV export and normalizes it into price
// bars: headers are lowercased to snake case, close_price folds into close,
// rows without a parseable date are dropped, and the result is sorted by
// date ascending.
func CleanMarketData(rawPath, ticker, company string) ([]models.PriceBar, error) {
	f, err := os.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("open market data: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read market data: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("market data %s has no rows", rawPath)
	}

	colIndex := map[string]int{}
	for i, col := range records[0] {
		name := strings.ToLower(strings.TrimSpace(col))
		name = strings.ReplaceAll(name, "/", "_")
		name = strings.ReplaceAll(name, " ", "_")
		if name == "close_price" {
			name = "close"
		}
		colIndex[name] = i
	}
	dateIdx, ok := colIndex["date"]
	if !ok {
		return nil, fmt.Errorf("market data %s has no date column", rawPath)
	}

	numeric := func(row []string, name string) float64 {
		idx, ok := colIndex[name]
		if !ok || idx >= len(row) {
			return models.Missing()
		}
		return CleanNumericValue(row[idx])
	}

	var bars []models.PriceBar
	for _, row := range records[1:] {
		if dateIdx >= len(row) {
			continue
		}
		date, ok := parseDate(row[dateIdx])
		if !ok {
			continue
		}
		bars = append(bars, models.PriceBar{
			Ticker:  ticker,
			Company: company,
			Date:    date,
			Open:    numeric(row, "open"),
			High:    numeric(row, "high"),
			Low:     numeric(row, "low"),
			Close:   numeric(row, "close"),
			Volume:  numeric(row, "volume"),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("market data %s produced no dated rows", rawPath)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

var priceCSVHeader = []string{"ticker", "company", "date", "open", "high", "low", "close", "volume"}

// WritePriceCSV writes cleaned price bars to the processed market data file.
func WritePriceCSV(path string, bars []models.PriceBar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(priceCSVHeader); err != nil {
		return err
	}
	field := func(v float64) string {
		if models.IsMissing(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	for _, b := range bars {
		record := []string{
			b.Ticker, b.Company, b.Date.Format("2006-01-02"),
			field(b.Open), field(b.High), field(b.Low), field(b.Close), field(b.Volume),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadPriceCSV reads bars written by WritePriceCSV.
func ReadPriceCSV(path string) ([]models.PriceBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no price rows", path)
	}

	parse := func(s string) float64 {
		if s == "" {
			return models.Missing()
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Missing()
		}
		return v
	}

	bars := make([]models.PriceBar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(priceCSVHeader) {
			return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(priceCSVHeader), len(rec))
		}
		date, ok := parseDate(rec[2])
		if !ok {
			return nil, fmt.Errorf("%s: bad date %q", path, rec[2])
		}
		bars = append(bars, models.PriceBar{
			Ticker:  rec[0],
			Company: rec[1],
			Date:    date,
			Open:    parse(rec[3]),
			High:    parse(rec[4]),
			Low:     parse(rec[5]),
			Close:   parse(rec[6]),
			Volume:  parse(rec[7]),
		})
	}
	return bars, nil
}
