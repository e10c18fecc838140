package optimizer

import (
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/tariff"
)

// Window is one optimization problem instance: a slice of the input series
// together with the battery and tariff state valid at its start. It is
// immutable once constructed and consumed exactly once by the builder.
type Window struct {
	Index       int
	Series      model.TimeSeriesInput
	Battery     model.BatteryState
	Tariff      tariff.State
	TariffAware bool // include the monthly peak variable and bracket cost term
}

// validate fails fast on structural input problems (InvalidInputError) and
// on a starting state the LP can never satisfy (InfeasibleError).
func (w Window) validate() error {
	if err := w.Battery.Validate(); err != nil {
		return &InvalidInputError{Field: "battery", Reason: err.Error()}
	}
	if err := w.Series.Validate(); err != nil {
		return &InvalidInputError{Field: "series", Reason: err.Error()}
	}
	if w.TariffAware && w.Tariff.Table == nil {
		return &InvalidInputError{Field: "tariff", Reason: "tariff-aware window without bracket table"}
	}
	if w.Tariff.PeakKW < 0 {
		return &InvalidInputError{Field: "tariff", Reason: "negative observed peak"}
	}
	if !w.Battery.Disabled() {
		if w.Battery.EnergyKWh < w.Battery.MinEnergyKWh() {
			return &InfeasibleError{WindowIndex: w.Index, Bound: "initial energy below min SoC bound"}
		}
		if w.Battery.EnergyKWh > w.Battery.MaxEnergyKWh() {
			return &InfeasibleError{WindowIndex: w.Index, Bound: "initial energy above max SoC bound"}
		}
	}
	return nil
}
