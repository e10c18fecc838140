package optimizer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/logger"
	"github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/tariff"
)

// BlockOptimizer solves each calendar month as one LP and commits the whole
// trajectory. Only the final stored energy and the accumulated degradation
// carry over to the next month; the monthly peak resets at each boundary.
type BlockOptimizer struct {
	engine  engine
	battery model.BatteryState
	tariff  tariff.State
}

// NewBlockOptimizer creates a block optimizer starting from the given
// battery and tariff state.
func NewBlockOptimizer(cfg Config, deg degradation.Model, bat model.BatteryState, ts tariff.State, log logger.Logger, sink metrics.MetricsSink) *BlockOptimizer {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &BlockOptimizer{
		engine:  engine{cfg: cfg, deg: deg, log: log, sink: sink, mode: "block"},
		battery: bat,
		tariff:  ts,
	}
}

// Outcome returns the battery and tariff state after the last committed
// window.
func (o *BlockOptimizer) Outcome() RunOutcome {
	return RunOutcome{Battery: o.battery, Tariff: o.tariff}
}

// Optimize solves the input series month by month. On failure the stitched
// trajectory of the months committed so far is returned together with the
// error carrying the failing window index.
func (o *BlockOptimizer) Optimize(ctx context.Context, series model.TimeSeriesInput) (model.DispatchResult, error) {
	if err := series.Validate(); err != nil {
		return model.DispatchResult{}, &InvalidInputError{Field: "series", Reason: err.Error()}
	}
	o.engine.runID = uuid.NewString()

	var total model.DispatchResult
	for i, rng := range monthRanges(series.Timestamps) {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
		month := series.Slice(rng[0], rng[1])
		o.tariff.Observe(month.Timestamps[0], 0) // rolls the peak over at month boundaries

		w := Window{
			Index:       i,
			Series:      month,
			Battery:     o.battery,
			Tariff:      o.tariff.Snapshot(),
			TariffAware: o.engine.cfg.TariffAware && o.tariff.Table != nil,
		}
		res, err := o.engine.solveWindow(w)
		if err != nil {
			return total, err
		}
		if !w.TariffAware && o.tariff.Table != nil {
			// Peak was not optimized but the month is still billed.
			res.TariffCostNOK = o.tariff.Table.Cost(res.PeakKW)
		}

		o.battery.EnergyKWh = res.FinalEnergyKWh
		o.battery.DegradationPct += res.TotalDegradationPct()
		o.battery.AgeHours += float64(month.Len()) * series.StepHours
		o.tariff.PeakKW = res.PeakKW
		total.Append(res)
	}
	return total, nil
}

// monthRanges splits the timestamp grid into [from, to) index ranges, one
// per calendar month.
func monthRanges(ts []time.Time) [][2]int {
	var out [][2]int
	if len(ts) == 0 {
		return out
	}
	from := 0
	for i := 1; i < len(ts); i++ {
		if ts[i].Month() != ts[from].Month() || ts[i].Year() != ts[from].Year() {
			out = append(out, [2]int{from, i})
			from = i
		}
	}
	return append(out, [2]int{from, len(ts)})
}
