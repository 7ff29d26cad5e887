// Package quarterly analyzes seasonality and volatility in the 10-Q data.
package quarterly

import (
	"sort"
	"strings"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// minQuartersForSeasonality is the smallest sample from which a
// quarter-over-quarter pattern is worth reporting.
const minQuartersForSeasonality = 12

// quarterOrder lists fiscal quarters in reporting order.
var quarterOrder = []string{"Q1", "Q2", "Q3", "Q4"}

// FromStatementRows pulls one revenue, gross profit, and net income figure
// per fiscal quarter out of raw quarterly statement rows. Revenue needs a
// value above 100 to rule out per-share figures and ratios.
func FromStatementRows(rows []models.StatementRow) []models.QuarterlyFinancials {
	type key struct {
		year    int
		quarter string
	}
	byQuarter := map[key]*models.QuarterlyFinancials{}

	record := func(r models.StatementRow) *models.QuarterlyFinancials {
		k := key{r.FiscalYear, r.Period}
		q, ok := byQuarter[k]
		if !ok {
			q = &models.QuarterlyFinancials{
				Year:        r.FiscalYear,
				Quarter:     r.Period,
				Revenue:     models.Missing(),
				GrossProfit: models.Missing(),
				NetIncome:   models.Missing(),
			}
			byQuarter[k] = q
		}
		return q
	}

	for _, r := range rows {
		if r.Statement != models.StatementIncome || models.IsMissing(r.Value) {
			continue
		}
		if !strings.HasPrefix(r.Period, "Q") {
			continue
		}
		item := strings.ToLower(r.LineItem)
		switch {
		case strings.Contains(item, "revenue"):
			q := record(r)
			if models.IsMissing(q.Revenue) && r.Value > 100 {
				q.Revenue = r.Value
			}
		case strings.Contains(item, "gross profit"):
			q := record(r)
			if models.IsMissing(q.GrossProfit) {
				q.GrossProfit = r.Value
			}
		case strings.Contains(item, "net income"), strings.Contains(item, "net loss"):
			q := record(r)
			if models.IsMissing(q.NetIncome) {
				v := r.Value
				if strings.Contains(item, "net loss") {
					v = -v
				}
				q.NetIncome = v
			}
		}
	}

	quarters := make([]models.QuarterlyFinancials, 0, len(byQuarter))
	for _, q := range byQuarter {
		quarters = append(quarters, *q)
	}
	sort.Slice(quarters, func(i, j int) bool {
		if quarters[i].Year != quarters[j].Year {
			return quarters[i].Year < quarters[j].Year
		}
		return quarters[i].Quarter < quarters[j].Quarter
	})
	return quarters
}

// QuarterAverage is the average revenue for one fiscal quarter across years.
type QuarterAverage struct {
	Quarter    string
	AvgRevenue float64
	Count      int
}

// Seasonality summarizes which fiscal quarters run strong or weak.
type Seasonality struct {
	Detected  bool
	Quarters  []QuarterAverage
	Strongest string
	Weakest   string
	Note      string
}

// AnalyzeSeasonality averages revenue by fiscal quarter across all years.
// With fewer than three years of quarters it reports nothing.
func AnalyzeSeasonality(quarters []models.QuarterlyFinancials) Seasonality {
	revenues := map[string][]float64{}
	usable := 0
	for _, q := range quarters {
		if models.IsMissing(q.Revenue) {
			continue
		}
		revenues[q.Quarter] = append(revenues[q.Quarter], q.Revenue)
		usable++
	}

	if usable < minQuartersForSeasonality {
		return Seasonality{
			Note: "Insufficient quarterly data for seasonality analysis",
		}
	}

	s := Seasonality{Detected: true}
	for _, quarter := range quarterOrder {
		vs, ok := revenues[quarter]
		if !ok {
			continue
		}
		avg := calc.Mean(vs)
		s.Quarters = append(s.Quarters, QuarterAverage{
			Quarter:    quarter,
			AvgRevenue: avg,
			Count:      len(vs),
		})
		if s.Strongest == "" || avg > s.averageFor(s.Strongest) {
			s.Strongest = quarter
		}
		if s.Weakest == "" || avg < s.averageFor(s.Weakest) {
			s.Weakest = quarter
		}
	}
	return s
}

func (s Seasonality) averageFor(quarter string) float64 {
	for _, q := range s.Quarters {
		if q.Quarter == quarter {
			return q.AvgRevenue
		}
	}
	return models.Missing()
}

// YearVolatility measures revenue dispersion across the quarters of one
// fiscal year. CV is the coefficient of variation in percent.
type YearVolatility struct {
	Year         int
	QuarterCount int
	AvgRevenue   float64
	StdDev       float64
	CV           float64
}

// Volatility is the per-year dispersion series with an overall reading.
type Volatility struct {
	ByYear         []YearVolatility
	AvgCV          float64
	Interpretation string
}

// AnalyzeVolatility computes quarterly revenue dispersion for each fiscal
// year with at least two reported quarters.
func AnalyzeVolatility(quarters []models.QuarterlyFinancials) Volatility {
	byYear := map[int][]float64{}
	for _, q := range quarters {
		if models.IsMissing(q.Revenue) {
			continue
		}
		byYear[q.Year] = append(byYear[q.Year], q.Revenue)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	v := Volatility{}
	cvs := []float64{}
	for _, year := range years {
		vs := byYear[year]
		if len(vs) < 2 {
			continue
		}
		avg := calc.Mean(vs)
		std := calc.Std(vs)
		cv := models.Missing()
		if avg > 0 {
			cv = std / avg * 100
		}
		v.ByYear = append(v.ByYear, YearVolatility{
			Year:         year,
			QuarterCount: len(vs),
			AvgRevenue:   avg,
			StdDev:       std,
			CV:           cv,
		})
		cvs = append(cvs, cv)
	}

	v.AvgCV = calc.Mean(cvs)
	v.Interpretation = interpretVolatility(v.AvgCV)
	return v
}

func interpretVolatility(cv float64) string {
	switch {
	case models.IsMissing(cv):
		return "Insufficient data"
	case cv > 30:
		return "HIGH - Significant quarterly fluctuations"
	case cv > 15:
		return "MODERATE - Normal quarterly variation"
	default:
		return "LOW - Stable quarterly performance"
	}
}
