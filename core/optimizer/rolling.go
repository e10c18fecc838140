package optimizer

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/logger"
	"github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/tariff"
)

// RecedingHorizonOptimizer implements the rolling control loop: solve a
// forward-looking window, commit only the first timestep's action, update
// the battery and tariff state, advance one step and re-solve. Windows are
// strictly sequential; window k+1 never starts before window k's committed
// action has updated the state.
type RecedingHorizonOptimizer struct {
	engine  engine
	battery model.BatteryState
	tariff  tariff.State
}

// NewRecedingHorizonOptimizer creates a rolling optimizer starting from the
// given battery and tariff state.
func NewRecedingHorizonOptimizer(cfg Config, deg degradation.Model, bat model.BatteryState, ts tariff.State, log logger.Logger, sink metrics.MetricsSink) *RecedingHorizonOptimizer {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &RecedingHorizonOptimizer{
		engine:  engine{cfg: cfg, deg: deg, log: log, sink: sink, mode: "rolling"},
		battery: bat,
		tariff:  ts,
	}
}

// Outcome returns the battery and tariff state after the last committed
// action.
func (o *RecedingHorizonOptimizer) Outcome() RunOutcome {
	return RunOutcome{Battery: o.battery, Tariff: o.tariff}
}

// Optimize walks the series one timestep at a time. If any window fails, the
// loop halts and the partial committed trajectory is returned together with
// the error carrying the failing window index; no default action is ever
// substituted.
func (o *RecedingHorizonOptimizer) Optimize(ctx context.Context, series model.TimeSeriesInput) (model.DispatchResult, error) {
	if err := series.Validate(); err != nil {
		return model.DispatchResult{}, &InvalidInputError{Field: "series", Reason: err.Error()}
	}
	o.engine.runID = uuid.NewString()

	horizon := int(math.Round(o.engine.cfg.HorizonHours / series.StepHours))
	if horizon < 1 {
		horizon = 1
	}

	var committed model.DispatchResult
	n := series.Len()
	for k := 0; k < n; k++ {
		select {
		case <-ctx.Done():
			return committed, ctx.Err()
		default:
		}
		end := k + horizon
		if end > n {
			end = n
		}
		w := Window{
			Index:       k,
			Series:      series.Slice(k, end),
			Battery:     o.battery,
			Tariff:      o.tariff.Snapshot(),
			TariffAware: o.engine.cfg.TariffAware && o.tariff.Table != nil,
		}
		res, err := o.engine.solveWindow(w)
		if err != nil {
			return committed, err
		}

		step := o.commitFirstStep(w, res)
		ts := series.Timestamps[k]
		if o.tariff.Table != nil && (ts.Month() != o.tariff.Month || ts.Year() != o.tariff.Year) {
			// Bill the month that just closed before the peak resets.
			committed.TariffCostNOK += o.tariff.Table.Cost(o.tariff.PeakKW)
		}
		o.tariff.Observe(ts, step.GridImportKW[0])
		o.battery.EnergyKWh = step.FinalEnergyKWh
		o.battery.DegradationPct += step.DegradationPct[0]
		o.battery.AgeHours += series.StepHours
		committed.Append(step)

		o.engine.log.Debugw("control step", map[string]any{
			"run": o.engine.runID, "window": k, "phase": phaseApplied.String(),
			"charge_kw": step.ChargeKW[0], "discharge_kw": step.DischargeKW[0],
			"energy_kwh": step.FinalEnergyKWh,
		})
	}
	if o.tariff.Table != nil {
		committed.TariffCostNOK += o.tariff.Table.Cost(o.tariff.PeakKW)
	}
	return committed, nil
}

// commitFirstStep extracts the near-term action from a solved window as a
// one-step result with its exact committed costs. The rest of the window is
// discarded.
func (o *RecedingHorizonOptimizer) commitFirstStep(w Window, res model.DispatchResult) model.DispatchResult {
	dt := w.Series.StepHours
	rate := w.Tariff.Energy.Rate(w.Series.Timestamps[0])
	spot := w.Series.SpotPriceNOK[0]
	energyCost := (spot+rate)*res.GridImportKW[0]*dt - spot*res.GridExportKW[0]*dt
	degCost := degCostPerPct(o.engine.cfg, o.engine.deg, w.Battery) * res.DegradationPct[0]

	return model.DispatchResult{
		Timestamps:      res.Timestamps[:1:1],
		ChargeKW:        res.ChargeKW[:1:1],
		DischargeKW:     res.DischargeKW[:1:1],
		GridImportKW:    res.GridImportKW[:1:1],
		GridExportKW:    res.GridExportKW[:1:1],
		CurtailmentKW:   res.CurtailmentKW[:1:1],
		StoredEnergyKWh: res.StoredEnergyKWh[:1:1],
		DegradationPct:  res.DegradationPct[:1:1],
		Objective:       energyCost + degCost,
		EnergyCostNOK:   energyCost,
		DegradationNOK:  degCost,
		PeakKW:          res.GridImportKW[0],
		FinalEnergyKWh:  res.StoredEnergyKWh[0],
		Solved:          true,
		Status:          res.Status,
	}
}
