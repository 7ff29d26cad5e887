package models

import (
	"math"
	"time"
)

// Statement type labels used across extraction and consolidation.
const (
	StatementBalanceSheet        = "balance_sheet"
	StatementIncome              = "income_statement"
	StatementCashFlow            = "cash_flow"
	StatementEquity              = "equity"
	StatementComprehensiveIncome = "comprehensive_income"
	StatementUnknown             = "unknown"
)

// Missing is the sentinel for absent financial values. All monetary figures are
// thousands of USD unless noted otherwise.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether a value is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// StatementRow is one extracted line item in long form, the unit of the
// processed CSV files written by the extraction stage.
type StatementRow struct {
	Statement  string  // balance_sheet, income_statement, cash_flow, ...
	FiscalYear int
	Period     string // "FY", "Q1".."Q4"
	SheetName  string // source table heading, kept for provenance
	LineItem   string // normalized label
	Value      float64
}

// AnnualFinancials is the consolidated canonical record for one fiscal year.
// Field order matches the master CSV column order.
type AnnualFinancials struct {
	Year int

	// Income statement
	Revenue           float64
	CostOfRevenues    float64
	GrossProfit       float64
	RDExpense         float64
	SGAExpense        float64
	OperatingExpenses float64
	OperatingIncome   float64
	NetIncome         float64

	// Balance sheet
	Cash                 float64
	ShortTermInvestments float64
	CurrentAssets        float64
	TotalAssets          float64
	CurrentLiabilities   float64
	TotalLiabilities     float64
	StockholdersEquity   float64
	LongTermDebt         float64
	ShortTermDebt        float64

	// Cash flow
	OperatingCashFlow float64
	InvestingCashFlow float64
	FinancingCashFlow float64
	Capex             float64
	Depreciation      float64
}

// NewAnnualFinancials returns a record with every field set to missing.
func NewAnnualFinancials(year int) AnnualFinancials {
	m := Missing()
	return AnnualFinancials{
		Year:                 year,
		Revenue:              m,
		CostOfRevenues:       m,
		GrossProfit:          m,
		RDExpense:            m,
		SGAExpense:           m,
		OperatingExpenses:    m,
		OperatingIncome:      m,
		NetIncome:            m,
		Cash:                 m,
		ShortTermInvestments: m,
		CurrentAssets:        m,
		TotalAssets:          m,
		CurrentLiabilities:   m,
		TotalLiabilities:     m,
		StockholdersEquity:   m,
		LongTermDebt:         m,
		ShortTermDebt:        m,
		OperatingCashFlow:    m,
		InvestingCashFlow:    m,
		FinancingCashFlow:    m,
		Capex:                m,
		Depreciation:         m,
	}
}

// QuarterlyFinancials holds the small per-quarter slice used by the
// seasonality analysis.
type QuarterlyFinancials struct {
	Year        int
	Quarter     string // "Q1".."Q4"
	Revenue     float64
	GrossProfit float64
	NetIncome   float64
}

// PriceBar is one trading day of market data.
type PriceBar struct {
	Ticker  string
	Company string
	Date    time.Time
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Volume  float64
}
