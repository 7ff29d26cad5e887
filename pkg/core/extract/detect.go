package extract

import (
	"strings"

	"equity_research/pkg/models"
)

var statementKeywords = map[string][]string{
	models.StatementBalanceSheet: {
		"assets", "liabilities", "cash and cash equivalents",
		"accounts receivable", "inventories", "stockholders equity",
		"property and equipment", "current assets",
	},
	models.StatementIncome: {
		"net revenues", "revenue", "cost of revenues", "gross profit",
		"operating expenses", "research and development",
		"selling, general and administrative", "net income", "net loss",
		"loss from operations", "income from operations",
	},
	models.StatementCashFlow: {
		"cash flows", "operating activities", "investing activities",
		"financing activities", "net increase", "net decrease",
		"depreciation", "capital expenditures",
	},
	models.StatementEquity: {
		"common stock", "additional paid-in capital", "retained earnings",
		"accumulated other comprehensive", "treasury stock",
		"stock-based compensation expense", "issuance of common stock",
	},
	models.StatementComprehensiveIncome: {
		"comprehensive income", "comprehensive loss",
		"unrealized gain", "unrealized loss",
	},
}

// Evaluation order matters only for deterministic tie-breaking.
var statementOrder = []string{
	models.StatementBalanceSheet,
	models.StatementIncome,
	models.StatementCashFlow,
	models.StatementEquity,
	models.StatementComprehensiveIncome,
}

// DetectStatementType classifies a table by scoring keyword hits over its
// row labels. Tables need at least three rows and at least two keyword
// matches for the winning type, otherwise they stay unknown.
func DetectStatementType(labels []string) string {
	if len(labels) < 3 {
		return models.StatementUnknown
	}

	allText := strings.ToLower(strings.Join(labels, " "))

	best := models.StatementUnknown
	bestScore := 0
	for _, stmt := range statementOrder {
		score := 0
		for _, kw := range statementKeywords[stmt] {
			if strings.Contains(allText, kw) {
				score++
			}
		}
		if score > bestScore {
			best = stmt
			bestScore = score
		}
	}

	if bestScore >= 2 {
		return best
	}
	return models.StatementUnknown
}
