// Package report builds the equity research report in Markdown and renders
// it to PDF.
package report

import (
	"fmt"

	"equity_research/pkg/models"
)

// missingMark renders for any value the data never produced.
const missingMark = "--"

// FormatMoney renders a value in thousands as millions, one decimal.
func FormatMoney(thousands float64) string {
	if models.IsMissing(thousands) {
		return missingMark
	}
	return fmt.Sprintf("$%.1fM", thousands/1000)
}

// FormatPrice renders a per-share dollar price.
func FormatPrice(dollars float64) string {
	if models.IsMissing(dollars) {
		return missingMark
	}
	return fmt.Sprintf("$%.2f", dollars)
}

// FormatPercent renders margins, growth rates, and returns, one decimal.
func FormatPercent(pct float64) string {
	if models.IsMissing(pct) {
		return missingMark
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRatio renders unitless ratios and multiples, two decimals.
func FormatRatio(v float64) string {
	if models.IsMissing(v) {
		return missingMark
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatMillions renders a value already expressed in millions.
func FormatMillions(millions float64) string {
	if models.IsMissing(millions) {
		return missingMark
	}
	return fmt.Sprintf("$%.1fM", millions)
}
