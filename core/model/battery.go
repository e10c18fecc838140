package model

import "fmt"

// BatteryState describes a stationary battery at one instant. It is the
// carry-over state between successive optimizations: the orchestrator owns
// and mutates it, the LP builder only ever consumes a value copy.
type BatteryState struct {
	CapacityKWh    float64 // usable energy capacity in kWh
	PowerLimitKW   float64 // max charge and discharge power in kW
	Efficiency     float64 // round-trip efficiency between 0 and 1
	MinSoC         float64 // minimum state of charge fraction
	MaxSoC         float64 // maximum state of charge fraction
	EnergyKWh      float64 // currently stored energy in kWh
	DegradationPct float64 // cumulative capacity loss in percent
	AgeHours       float64 // calendar age in hours
}

// MinEnergyKWh returns the lowest admissible stored energy.
func (b BatteryState) MinEnergyKWh() float64 { return b.MinSoC * b.CapacityKWh }

// MaxEnergyKWh returns the highest admissible stored energy.
func (b BatteryState) MaxEnergyKWh() float64 { return b.MaxSoC * b.CapacityKWh }

// SoC returns the state of charge as a fraction of capacity.
func (b BatteryState) SoC() float64 {
	if b.CapacityKWh == 0 {
		return 0
	}
	return b.EnergyKWh / b.CapacityKWh
}

// Disabled reports whether the battery is a no-battery placeholder used for
// baseline runs.
func (b BatteryState) Disabled() bool {
	return b.CapacityKWh == 0 && b.PowerLimitKW == 0
}

// Validate checks that the battery configuration is sound. A zero
// capacity/power battery is accepted as the disabled baseline.
func (b BatteryState) Validate() error {
	if b.Disabled() {
		return nil
	}
	if b.CapacityKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive, got %g", b.CapacityKWh)
	}
	if b.PowerLimitKW <= 0 {
		return fmt.Errorf("battery power limit must be positive, got %g", b.PowerLimitKW)
	}
	if b.Efficiency <= 0 || b.Efficiency > 1 {
		return fmt.Errorf("round-trip efficiency must be in (0,1], got %g", b.Efficiency)
	}
	if b.MinSoC < 0 || b.MaxSoC > 1 || b.MinSoC >= b.MaxSoC {
		return fmt.Errorf("soc bounds must satisfy 0 <= min < max <= 1, got [%g,%g]", b.MinSoC, b.MaxSoC)
	}
	return nil
}
