package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"equity_research/pkg/models"
)

// MarketYear summarizes one calendar year of trading.
type MarketYear struct {
	Year         int
	Open         float64 // first open of the year
	High         float64
	Low          float64
	Close        float64 // last close of the year
	Volume       float64
	AnnualReturn float64 // percent change of close vs prior year
}

// SummarizeMarketByYear aggregates daily bars into per-year open, high,
// low, last close, summed volume, and close-to-close annual return. Bars
// must be sorted by date, the order the processed file carries.
func SummarizeMarketByYear(bars []models.PriceBar) []MarketYear {
	byYear := map[int]*MarketYear{}
	for _, bar := range bars {
		year := bar.Date.Year()
		my, ok := byYear[year]
		if !ok {
			my = &MarketYear{
				Year:         year,
				Open:         bar.Open,
				High:         bar.High,
				Low:          bar.Low,
				Close:        models.Missing(),
				Volume:       0,
				AnnualReturn: models.Missing(),
			}
			byYear[year] = my
		}
		if !models.IsMissing(bar.High) && (models.IsMissing(my.High) || bar.High > my.High) {
			my.High = bar.High
		}
		if !models.IsMissing(bar.Low) && (models.IsMissing(my.Low) || bar.Low < my.Low) {
			my.Low = bar.Low
		}
		if !models.IsMissing(bar.Close) {
			my.Close = bar.Close
		}
		if !models.IsMissing(bar.Volume) {
			my.Volume += bar.Volume
		}
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]MarketYear, 0, len(years))
	for i, year := range years {
		my := *byYear[year]
		if i > 0 {
			prev := byYear[years[i-1]]
			if prev.Close != 0 && !models.IsMissing(prev.Close) && !models.IsMissing(my.Close) {
				my.AnnualReturn = (my.Close - prev.Close) / prev.Close * 100
			}
		}
		out = append(out, my)
	}
	return out
}

// WriteMarketSummaryCSV writes the per-year market summary.
func WriteMarketSummaryCSV(path string, summary []MarketYear) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"year", "open", "high", "low", "close", "volume", "annual_return"}); err != nil {
		return err
	}
	for _, my := range summary {
		rec := []string{
			strconv.Itoa(my.Year),
			formatValue(my.Open),
			formatValue(my.High),
			formatValue(my.Low),
			formatValue(my.Close),
			formatValue(my.Volume),
			formatValue(my.AnnualReturn),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMarketSummaryCSV loads a per-year market summary written by
// WriteMarketSummaryCSV.
func ReadMarketSummaryCSV(path string) ([]MarketYear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}

	out := make([]MarketYear, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		if len(rec) < 7 {
			continue
		}
		year, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		out = append(out, MarketYear{
			Year:         year,
			Open:         parseValue(rec[1]),
			High:         parseValue(rec[2]),
			Low:          parseValue(rec[3]),
			Close:        parseValue(rec[4]),
			Volume:       parseValue(rec[5]),
			AnnualReturn: parseValue(rec[6]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}
