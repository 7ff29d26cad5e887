package valuation

import (
	"math"

	"equity_research/pkg/core/calc"
	"equity_research/pkg/models"
)

// Industry reference multiples for the fair value methods.
const (
	IndustryPE      = 15.0
	IndustryPBV     = 1.5
	IndustryEVSales = 2.0
)

// FairValueMethod is one valuation approach's result, in millions of USD.
type FairValueMethod struct {
	Method     string
	Multiple   float64 // industry multiple applied, zero for DCF
	FairValue  float64 // millions
	Confidence string  // low / medium / high
}

// FairValue aggregates the methods that produced a value.
type FairValue struct {
	Methods []FairValueMethod
	Average float64 // millions
	Median  float64
	Std     float64
	DCF     *DCFResult
}

// EstimateFairValue runs the P/E, P/BV, DCF, and revenue multiple methods,
// skipping any whose inputs are missing, and summarizes the spread across
// the rest.
func EstimateFairValue(m Multiples, dcfInput DCFInput, haveDCF bool) FairValue {
	var fv FairValue

	if !models.IsMissing(m.PERatio) && !models.IsMissing(m.NetIncome) {
		fv.Methods = append(fv.Methods, FairValueMethod{
			Method:     "P/E Multiple",
			Multiple:   IndustryPE,
			FairValue:  m.NetIncome * IndustryPE / 1000,
			Confidence: "medium",
		})
	}
	if !models.IsMissing(m.PBVRatio) && !models.IsMissing(m.StockholdersEquity) {
		fv.Methods = append(fv.Methods, FairValueMethod{
			Method:     "P/BV Multiple",
			Multiple:   IndustryPBV,
			FairValue:  m.StockholdersEquity * IndustryPBV / 1000,
			Confidence: "medium",
		})
	}
	if haveDCF {
		dcf := CalculateDCF(dcfInput)
		if !models.IsMissing(dcf.EnterpriseValueMillions) {
			fv.DCF = &dcf
			fv.Methods = append(fv.Methods, FairValueMethod{
				Method:     "DCF Analysis",
				FairValue:  dcf.EnterpriseValueMillions,
				Confidence: "high",
			})
		}
	}
	if !models.IsMissing(m.Revenue) {
		fv.Methods = append(fv.Methods, FairValueMethod{
			Method:     "Revenue Multiple",
			Multiple:   IndustryEVSales,
			FairValue:  m.Revenue * IndustryEVSales / 1000,
			Confidence: "low",
		})
	}

	var values []float64
	for _, method := range fv.Methods {
		values = append(values, method.FairValue)
	}
	fv.Average = calc.Mean(values)
	fv.Median = calc.Median(values)
	fv.Std = populationStd(values)
	return fv
}

// populationStd matches the divide-by-n convention the fair value spread
// has always been reported with.
func populationStd(values []float64) float64 {
	mean := calc.Mean(values)
	if models.IsMissing(mean) || len(values) == 0 {
		return models.Missing()
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
