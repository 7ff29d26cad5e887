// Package calc holds the pure metric math over consolidated fiscal years.
package calc

import (
	"math"
	"sort"

	"equity_research/pkg/models"
)

// GrowthRate returns the fractional change from prior to current.
func GrowthRate(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (current - prior) / math.Abs(prior)
}

// CAGR returns the compound annual growth rate over the given span.
func CAGR(endingValue, beginningValue float64, years int) float64 {
	if beginningValue == 0 || years == 0 {
		return 0
	}
	return math.Pow(endingValue/beginningValue, 1.0/float64(years)) - 1
}

// present filters out missing values.
func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !models.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean averages the non-missing values, missing when none remain.
func Mean(values []float64) float64 {
	vs := present(values)
	if len(vs) == 0 {
		return models.Missing()
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Std is the sample standard deviation of the non-missing values.
func Std(values []float64) float64 {
	vs := present(values)
	if len(vs) < 2 {
		return models.Missing()
	}
	mean := Mean(vs)
	sum := 0.0
	for _, v := range vs {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vs)-1))
}

// Min returns the smallest non-missing value.
func Min(values []float64) float64 {
	vs := present(values)
	if len(vs) == 0 {
		return models.Missing()
	}
	min := vs[0]
	for _, v := range vs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest non-missing value.
func Max(values []float64) float64 {
	vs := present(values)
	if len(vs) == 0 {
		return models.Missing()
	}
	max := vs[0]
	for _, v := range vs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Median returns the middle non-missing value.
func Median(values []float64) float64 {
	vs := present(values)
	if len(vs) == 0 {
		return models.Missing()
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Tail returns the last n values, or all of them when fewer exist.
func Tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
