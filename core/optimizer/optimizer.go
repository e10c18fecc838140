// Package optimizer builds and solves the battery dispatch linear program.
//
// For every timestep of a window it decides charge, discharge, grid import,
// grid export and curtailment so that total cost is minimized under a
// time-varying energy price, a progressive monthly power tariff and a
// battery-wear cost, subject to battery physics and power balance.
//
// Two orchestrators drive the solver:
//   - BlockOptimizer: one solve per calendar month, the whole trajectory is
//     committed and only the final state carries over.
//   - RecedingHorizonOptimizer: the classic rolling-horizon loop, solving a
//     forward-looking window but committing only the first timestep before
//     re-solving with updated state.
package optimizer

import (
	"context"
	"fmt"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/tariff"
)

// Optimizer runs one dispatch optimization over an input series.
type Optimizer interface {
	Optimize(ctx context.Context, series model.TimeSeriesInput) (model.DispatchResult, error)
}

// Config holds the settings shared by both optimizer modes.
type Config struct {
	// HorizonHours is the look-ahead of each rolling window. Ignored in
	// block mode, which always solves whole calendar months.
	HorizonHours float64 `json:"horizon_hours"`
	// TariffAware includes the monthly peak variable and the convex bracket
	// cost term in the objective.
	TariffAware bool `json:"tariff_aware"`
	// BatteryCostNOKPerKWh prices degradation. Zero disables the wear term.
	BatteryCostNOKPerKWh float64 `json:"battery_cost_nok_per_kwh"`
	// GridImportLimitKW / GridExportLimitKW cap grid exchange per timestep.
	// Zero means unlimited.
	GridImportLimitKW float64 `json:"grid_import_limit_kw"`
	GridExportLimitKW float64 `json:"grid_export_limit_kw"`
	// ViolationTolerance escalates post-solve constraint violations larger
	// than this to a solver failure.
	ViolationTolerance float64 `json:"violation_tolerance"`
	// Noise is the solver slack below which post-solve deviations are
	// ignored entirely.
	Noise float64 `json:"noise"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = 24
	}
	if c.ViolationTolerance == 0 {
		c.ViolationTolerance = 1e-3
	}
	if c.Noise == 0 {
		c.Noise = 1e-6
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.HorizonHours <= 0 {
		return fmt.Errorf("horizon must be positive, got %g hours", c.HorizonHours)
	}
	if c.ViolationTolerance <= 0 {
		return fmt.Errorf("violation tolerance must be positive")
	}
	return nil
}

// RunOutcome bundles what an optimizer run leaves behind besides the
// trajectory: the battery state after the last committed action and the
// tariff state with the last billing month's peak.
type RunOutcome struct {
	Battery model.BatteryState
	Tariff  tariff.State
}

// degCostPerPct returns the NOK value of one percent of capacity loss.
func degCostPerPct(cfg Config, deg degradation.Model, bat model.BatteryState) float64 {
	if cfg.BatteryCostNOKPerKWh <= 0 {
		return 0
	}
	return deg.CostCoefficient(cfg.BatteryCostNOKPerKWh, bat.CapacityKWh)
}
