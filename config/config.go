package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/optimizer"
	"github.com/nordbess/bessopt/core/tariff"
)

type Config struct {
	Input       InputConfig       `json:"input"`
	Battery     BatteryConfig     `json:"battery"`
	Tariff      TariffConfig      `json:"tariff"`
	Degradation DegradationConfig `json:"degradation"`
	Optimizer   OptimizerConfig   `json:"optimizer"`
	Economics   EconomicsConfig   `json:"economics"`
	Metrics     metrics.Config    `json:"metrics"`
}

// InputConfig points at the pre-aligned series file and the optional
// trajectory output.
type InputConfig struct {
	SeriesPath string `json:"series_path"`
	OutputPath string `json:"output_path"`
}

// BatteryConfig describes the battery under study.
type BatteryConfig struct {
	CapacityKWh  float64 `json:"capacity_kwh"`
	PowerLimitKW float64 `json:"power_limit_kw"`
	Efficiency   float64 `json:"efficiency"`
	MinSoC       float64 `json:"min_soc"`
	MaxSoC       float64 `json:"max_soc"`
	InitialSoC   float64 `json:"initial_soc"`
}

// SetDefaults applies sane defaults.
func (c *BatteryConfig) SetDefaults() {
	if c.Efficiency == 0 {
		c.Efficiency = 0.92
	}
	if c.MaxSoC == 0 {
		c.MaxSoC = 1
	}
	if c.InitialSoC == 0 {
		c.InitialSoC = c.MinSoC
	}
}

// State builds the initial battery state.
func (c BatteryConfig) State() model.BatteryState {
	return model.BatteryState{
		CapacityKWh:  c.CapacityKWh,
		PowerLimitKW: c.PowerLimitKW,
		Efficiency:   c.Efficiency,
		MinSoC:       c.MinSoC,
		MaxSoC:       c.MaxSoC,
		EnergyKWh:    c.InitialSoC * c.CapacityKWh,
	}
}

// BracketConfig is one row of the power tariff table. UpperKW 0 marks the
// open-ended top bracket.
type BracketConfig struct {
	LowerKW float64 `json:"lower_kw"`
	UpperKW float64 `json:"upper_kw"`
	CostNOK float64 `json:"cost_nok"`
}

// TariffConfig describes the grid tariff.
type TariffConfig struct {
	DayRateNOK   float64         `json:"day_rate_nok"`
	NightRateNOK float64         `json:"night_rate_nok"`
	DayStartHour int             `json:"day_start_hour"`
	DayEndHour   int             `json:"day_end_hour"`
	SummerTaxNOK float64         `json:"summer_tax_nok"`
	WinterTaxNOK float64         `json:"winter_tax_nok"`
	Brackets     []BracketConfig `json:"brackets"`
}

// SetDefaults applies sane defaults.
func (c *TariffConfig) SetDefaults() {
	if c.DayStartHour == 0 && c.DayEndHour == 0 {
		c.DayStartHour = 6
		c.DayEndHour = 22
	}
}

// TimeOfUse builds the energy tariff component.
func (c TariffConfig) TimeOfUse() tariff.TimeOfUse {
	return tariff.TimeOfUse{
		DayRateNOK:   c.DayRateNOK,
		NightRateNOK: c.NightRateNOK,
		DayStartHour: c.DayStartHour,
		DayEndHour:   c.DayEndHour,
		SummerTaxNOK: c.SummerTaxNOK,
		WinterTaxNOK: c.WinterTaxNOK,
	}
}

// Table builds the validated bracket table, or nil when no brackets are
// configured.
func (c TariffConfig) Table() (*tariff.BracketTable, error) {
	if len(c.Brackets) == 0 {
		return nil, nil
	}
	rows := make([]tariff.Bracket, len(c.Brackets))
	for i, b := range c.Brackets {
		upper := b.UpperKW
		if upper == 0 {
			upper = math.Inf(1)
		}
		rows[i] = tariff.Bracket{LowerKW: b.LowerKW, UpperKW: upper, CostNOK: b.CostNOK}
	}
	return tariff.NewBracketTable(rows)
}

// DegradationConfig holds the rated aging constants.
type DegradationConfig struct {
	CycleLife     float64 `json:"cycle_life"`
	CalendarYears float64 `json:"calendar_years"`
	EOLPercent    float64 `json:"eol_percent"`
}

// SetDefaults applies sane defaults.
func (c *DegradationConfig) SetDefaults() {
	if c.CycleLife == 0 {
		c.CycleLife = 5000
	}
	if c.CalendarYears == 0 {
		c.CalendarYears = 15
	}
	if c.EOLPercent == 0 {
		c.EOLPercent = 20
	}
}

// Model builds the degradation model.
func (c DegradationConfig) Model() degradation.Model {
	return degradation.Model{
		CycleLife:     c.CycleLife,
		CalendarYears: c.CalendarYears,
		EOLPercent:    c.EOLPercent,
	}
}

// OptimizerConfig selects the mode and carries the shared optimizer
// settings.
type OptimizerConfig struct {
	// Mode is "block" (one solve per calendar month) or "rolling".
	Mode string `json:"mode"`
	// Squash flattens the embedded fields into this section's keys.
	optimizer.Config `json:",squash"`
}

// SetDefaults applies sane defaults.
func (c *OptimizerConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "block"
	}
	c.Config.SetDefaults()
}

// Validate checks mandatory fields.
func (c OptimizerConfig) Validate() error {
	if c.Mode != "block" && c.Mode != "rolling" {
		return fmt.Errorf("unknown optimizer mode %q", c.Mode)
	}
	return c.Config.Validate()
}

// EconomicsConfig parameterizes the break-even computation.
type EconomicsConfig struct {
	LifetimeYears float64 `json:"lifetime_years"`
	DiscountRate  float64 `json:"discount_rate"`
}

// SetDefaults applies sane defaults.
func (c *EconomicsConfig) SetDefaults() {
	if c.LifetimeYears == 0 {
		c.LifetimeYears = 10
	}
	if c.DiscountRate == 0 {
		c.DiscountRate = 0.05
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback emits dot-joined keys, so
	// the provider delimiter must be "." for them to land as nested paths.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Battery.SetDefaults()
	cfg.Tariff.SetDefaults()
	cfg.Degradation.SetDefaults()
	cfg.Optimizer.SetDefaults()
	cfg.Economics.SetDefaults()
	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Battery.State().Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Degradation.Model().Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Tariff.Table(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
