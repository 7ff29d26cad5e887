// Package valuation implements the discounted cash flow model, trading
// multiples, fair value estimation, and the attractiveness score.
package valuation

// WACCInput holds the CAPM parameters for the cost of capital. Rates are
// fractions, not percents.
type WACCInput struct {
	UnleveredBeta     float64
	RiskFreeRate      float64
	MarketRiskPremium float64
	PreTaxCostOfDebt  float64
	TaxRate           float64
	DebtToEquityRatio float64 // target leverage (D/E)
}

// WACCResult holds the calculated rates.
type WACCResult struct {
	LeveredBeta  float64
	CostOfEquity float64
	CostOfDebt   float64 // after-tax
	WACC         float64
	WeightDebt   float64
	WeightEquity float64
}

// CalculateWACC computes the weighted average cost of capital with CAPM,
// re-levering beta via the Hamada equation.
func CalculateWACC(input WACCInput) WACCResult {
	// BetaL = BetaU * (1 + (1-t)*(D/E))
	leveredBeta := input.UnleveredBeta * (1 + (1-input.TaxRate)*input.DebtToEquityRatio)

	// Ke = Rf + BetaL * ERP
	ke := input.RiskFreeRate + leveredBeta*input.MarketRiskPremium

	// Kd = PreTaxKd * (1 - t)
	kd := input.PreTaxCostOfDebt * (1 - input.TaxRate)

	// With D/E = x: Wd = x/(1+x), We = 1/(1+x)
	wd := input.DebtToEquityRatio / (1 + input.DebtToEquityRatio)
	we := 1.0 / (1 + input.DebtToEquityRatio)

	wacc := (ke * we) + (kd * wd)

	return WACCResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         wacc,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}
