// Package config loads the pipeline configuration from a YAML file with
// sensible defaults for every field, so the tools run without a config
// file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Company    CompanyConfig    `yaml:"company"`
	Paths      PathsConfig      `yaml:"paths"`
	Valuation  ValuationConfig  `yaml:"valuation"`
	Validation ValidationConfig `yaml:"validation"`
	// ScenarioFile points at an Hjson scenario assumptions file. Empty
	// means the built-in assumptions.
	ScenarioFile string `yaml:"scenario_file"`
}

type CompanyConfig struct {
	Ticker   string `yaml:"ticker"`
	Name     string `yaml:"name"`
	Exchange string `yaml:"exchange"`
	// SharesThousands is the diluted share count in thousands, used for
	// per-share multiples.
	SharesThousands float64 `yaml:"shares_thousands"`
}

type PathsConfig struct {
	RawAnnualDir    string `yaml:"raw_annual_dir"`
	RawQuarterlyDir string `yaml:"raw_quarterly_dir"`
	RawMarketFile   string `yaml:"raw_market_file"`
	ProcessedDir    string `yaml:"processed_dir"`
	ConsolidatedDir string `yaml:"consolidated_dir"`
	AnalysisDir     string `yaml:"analysis_dir"`
	OutputDir       string `yaml:"output_dir"`
}

type ValuationConfig struct {
	CutoffYear     int     `yaml:"cutoff_year"`
	DiscountRate   float64 `yaml:"discount_rate"`
	TerminalGrowth float64 `yaml:"terminal_growth"`
	// CAPM, when present, derives the discount rate from the cost of
	// capital instead of the flat discount_rate. Rates are fractions.
	CAPM *CAPMConfig `yaml:"capm"`
}

type CAPMConfig struct {
	UnleveredBeta     float64 `yaml:"unlevered_beta"`
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	MarketRiskPremium float64 `yaml:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `yaml:"pretax_cost_of_debt"`
	TaxRate           float64 `yaml:"tax_rate"`
	DebtToEquity      float64 `yaml:"debt_to_equity"`
}

type ValidationConfig struct {
	Strict bool `yaml:"strict"`
	// BalanceTolerance is the allowed relative gap for the accounting
	// equation check, as a percent of total assets.
	BalanceTolerance float64 `yaml:"balance_tolerance"`
}

// Default returns the configuration the original study ran with.
func Default() Config {
	return Config{
		Company: CompanyConfig{
			Ticker:          "GSIT",
			Name:            "GSI Technology",
			Exchange:        "US",
			SharesThousands: 1000,
		},
		Paths: PathsConfig{
			RawAnnualDir:    filepath.Join("data", "raw", "annual_reports"),
			RawQuarterlyDir: filepath.Join("data", "raw", "quarterly_reports"),
			RawMarketFile:   filepath.Join("data", "raw", "market_data", "stock_prices.csv"),
			ProcessedDir:    filepath.Join("data", "processed"),
			ConsolidatedDir: filepath.Join("data", "consolidated"),
			AnalysisDir:     filepath.Join("data", "analysis"),
			OutputDir:       "output",
		},
		Valuation: ValuationConfig{
			CutoffYear:     2020,
			DiscountRate:   0.10,
			TerminalGrowth: 0.02,
		},
		Validation: ValidationConfig{
			Strict:           false,
			BalanceTolerance: 0.1,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Company.Ticker == "" {
		return fmt.Errorf("company.ticker is required")
	}
	if c.Valuation.DiscountRate <= 0 {
		return fmt.Errorf("valuation.discount_rate must be positive")
	}
	if c.Valuation.TerminalGrowth >= c.Valuation.DiscountRate {
		return fmt.Errorf("valuation.terminal_growth must be below the discount rate")
	}
	if c.Validation.BalanceTolerance < 0 {
		return fmt.Errorf("validation.balance_tolerance must not be negative")
	}
	return nil
}
