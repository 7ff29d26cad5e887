// Package extract parses raw filing tables and market data into the
// structured intermediate CSVs the analysis stage consumes.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"equity_research/pkg/models"
)

var currencyStripper = regexp.MustCompile(`[$€£¥,\s]`)

// CleanNumericValue converts a raw table cell into a float64. Parenthesized
// values are negative, currency symbols and thousands separators are
// stripped, and percents become fractions. Dashes, N/A and anything that
// still fails to parse come back as the missing sentinel.
func CleanNumericValue(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "-", "—", "–", "N/A", "n/a", "NA":
		return models.Missing()
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyStripper.ReplaceAllString(s, "")

	if strings.Contains(s, "%") {
		s = strings.ReplaceAll(s, "%", "")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Missing()
		}
		return v / 100
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Missing()
	}
	if negative {
		return -v
	}
	return v
}

// LooksLikeNumber reports whether a cell would survive CleanNumericValue.
func LooksLikeNumber(raw string) bool {
	return !models.IsMissing(CleanNumericValue(raw))
}

type itemMapping struct {
	pattern   *regexp.Regexp
	canonical string
}

// Label mappings are matched in order against the lowercased line item.
// Patterns anchor at the start, mirroring how filings phrase these rows.
var itemMappings = []itemMapping{
	{regexp.MustCompile(`^.*cash.*cash equivalents.*`), "Cash and cash equivalents"},
	{regexp.MustCompile(`^.*short.term.*investments?.*`), "Short-term investments"},
	{regexp.MustCompile(`^.*accounts? receivable.*`), "Accounts receivable"},
	{regexp.MustCompile(`^.*inventories.*`), "Inventories"},
	{regexp.MustCompile(`^.*total current assets.*`), "Total current assets"},
	{regexp.MustCompile(`^.*property.*equipment.*`), "Property and equipment"},
	{regexp.MustCompile(`^.*total assets.*`), "Total assets"},
	{regexp.MustCompile(`^.*accounts? payable.*`), "Accounts payable"},
	{regexp.MustCompile(`^.*accrued.*expenses.*`), "Accrued expenses"},
	{regexp.MustCompile(`^.*total current liabilities.*`), "Total current liabilities"},
	{regexp.MustCompile(`^.*total liabilities.*`), "Total liabilities"},
	{regexp.MustCompile(`^.*stockholders?.* equity.*`), "Stockholders equity"},
	{regexp.MustCompile(`^.*shareholders?.* equity.*`), "Stockholders equity"},
	{regexp.MustCompile(`^.*net revenues?.*`), "Net revenues"},
	{regexp.MustCompile(`^.*cost of (?:goods|revenue).*sold.*`), "Cost of revenues"},
	{regexp.MustCompile(`^.*gross profit.*`), "Gross profit"},
	{regexp.MustCompile(`^.*research.*development.*`), "Research and development"},
	{regexp.MustCompile(`^.*selling.*general.*administrative.*`), "Selling, general and administrative"},
	{regexp.MustCompile(`^.*operating (?:income|profit).*`), "Operating income"},
	{regexp.MustCompile(`^.*operating loss.*`), "Operating loss"},
	{regexp.MustCompile(`^.*net income.*`), "Net income"},
	{regexp.MustCompile(`^.*net loss.*`), "Net loss"},
	{regexp.MustCompile(`^.*(?:basic|diluted) (?:earnings|loss) per share.*`), "Earnings per share"},
}

// NormalizeLineItem maps a raw row label to its canonical form. Labels with
// no mapping pass through trimmed but otherwise untouched.
func NormalizeLineItem(name string) string {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, m := range itemMappings {
		if m.pattern.MatchString(lower) {
			return m.canonical
		}
	}
	return trimmed
}

var punctOnly = regexp.MustCompile(`^[^\w]+$`)

// isUsableLabel filters out empty rows and decoration rows (rules made of
// punctuation) before they become line items.
func isUsableLabel(label string) bool {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return false
	}
	return !punctOnly.MatchString(trimmed)
}

var subtotalKeywords = []string{"subtotal", "sub-total", "continued"}

// isSubtotalLabel flags rows that repeat amounts already carried by other
// rows and would double count in consolidation.
func isSubtotalLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range subtotalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
