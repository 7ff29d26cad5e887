package calc

import "equity_research/pkg/models"

// Summary holds trailing-window statistics for one metric series.
type Summary struct {
	Avg3Y  float64
	Std3Y  float64
	Avg10Y float64
	Std10Y float64
	AvgAll float64
	StdAll float64
	MinAll float64
	MaxAll float64
}

// Summarize computes trailing 3-year, trailing 10-year, and full-history
// statistics over a year-ordered series. The 3-year window requires three
// rows and the 10-year window at least five, otherwise those stats stay
// missing.
func Summarize(values []float64) Summary {
	s := Summary{
		Avg3Y:  models.Missing(),
		Std3Y:  models.Missing(),
		Avg10Y: models.Missing(),
		Std10Y: models.Missing(),
		AvgAll: Mean(values),
		StdAll: Std(values),
		MinAll: Min(values),
		MaxAll: Max(values),
	}
	if len(values) >= 3 {
		last3 := Tail(values, 3)
		s.Avg3Y = Mean(last3)
		s.Std3Y = Std(last3)
	}
	if len(values) >= 5 {
		last10 := Tail(values, 10)
		s.Avg10Y = Mean(last10)
		s.Std10Y = Std(last10)
	}
	return s
}
