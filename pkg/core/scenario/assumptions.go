package scenario

import (
	"fmt"
	"os"

	"equity_research/pkg/core/utils"
)

// Assumptions drives a single named scenario projection. Growth rates and
// margins are percentages, not fractions. RevenueGrowth lists one rate per
// projection year; when the schedule is shorter than the horizon the last
// rate repeats.
type Assumptions struct {
	Name          string    `json:"name"`
	Probability   float64   `json:"probability"`
	RevenueGrowth []float64 `json:"revenue_growth"`
	GrossMargin   float64   `json:"gross_margin"`
	MarginDrift   float64   `json:"margin_drift"`
	MarginCap     *float64  `json:"margin_cap,omitempty"`
	MarginFloor   *float64  `json:"margin_floor,omitempty"`
	TaxRate       float64   `json:"tax_rate"`
	ExitMultiple  float64   `json:"exit_multiple"`
	KeyDrivers    []string  `json:"key_drivers,omitempty"`
}

// Config is the scenario set loaded from an Hjson assumptions file.
type Config struct {
	ProjectionYears int           `json:"projection_years"`
	Scenarios       []Assumptions `json:"scenarios"`
}

func capAt(v float64) *float64 { return &v }

// DefaultConfig returns the built-in Bull / Base / Bear scenario set used
// when no assumptions file is supplied.
func DefaultConfig() Config {
	return Config{
		ProjectionYears: 5,
		Scenarios: []Assumptions{
			{
				Name:          "Bull Case - Successful Turnaround",
				Probability:   25,
				RevenueGrowth: []float64{10},
				GrossMargin:   65.0,
				MarginDrift:   5.0,
				MarginCap:     capAt(15.0),
				TaxRate:       25,
				ExitMultiple:  3.0,
				KeyDrivers: []string{
					"New product launches successful",
					"Market share gains in memory solutions",
					"Operational efficiency improvements",
					"R&D investments pay off",
				},
			},
			{
				Name:          "Base Case - Stabilization",
				Probability:   50,
				RevenueGrowth: []float64{0, 0, 3},
				GrossMargin:   60.0,
				MarginDrift:   2.0,
				MarginCap:     capAt(5.0),
				TaxRate:       25,
				ExitMultiple:  1.5,
				KeyDrivers: []string{
					"Revenue stabilizes at current levels",
					"Cost cutting initiatives succeed",
					"Maintains market position",
					"No major breakthroughs or failures",
				},
			},
			{
				Name:          "Bear Case - Continued Decline",
				Probability:   25,
				RevenueGrowth: []float64{-10},
				GrossMargin:   55.0,
				MarginDrift:   -2.0,
				TaxRate:       25,
				ExitMultiple:  0.5,
				KeyDrivers: []string{
					"Market share losses continue",
					"Technology becomes obsolete",
					"Competition intensifies",
					"Unable to achieve profitability",
				},
			},
		},
	}
}

// LoadConfig reads a scenario assumptions file. The file is Hjson, so
// comments and trailing commas are allowed.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read assumptions file: %w", err)
	}

	var cfg Config
	if err := utils.ParseHJSONToStruct(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse assumptions file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid assumptions file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded scenario set for usable values and fills in
// defaults where a field was omitted.
func (c *Config) Validate() error {
	if c.ProjectionYears <= 0 {
		c.ProjectionYears = 5
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("no scenarios defined")
	}

	totalProbability := 0.0
	for i := range c.Scenarios {
		s := &c.Scenarios[i]
		if s.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if s.Probability <= 0 {
			return fmt.Errorf("scenario %q has non-positive probability", s.Name)
		}
		if len(s.RevenueGrowth) == 0 {
			return fmt.Errorf("scenario %q has no revenue growth schedule", s.Name)
		}
		if s.ExitMultiple <= 0 {
			return fmt.Errorf("scenario %q has non-positive exit multiple", s.Name)
		}
		if s.TaxRate == 0 {
			s.TaxRate = 25
		}
		totalProbability += s.Probability
	}
	if totalProbability <= 0 {
		return fmt.Errorf("scenario probabilities sum to zero")
	}
	return nil
}
