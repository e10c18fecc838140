package model

import (
	"fmt"
	"math"
	"time"
)

// TimeSeriesInput holds the aligned input series for an optimization run.
// All slices share one timestep grid with a fixed duration; the optimizer
// performs no resampling, alignment is the data provider's job.
type TimeSeriesInput struct {
	Timestamps    []time.Time
	ProductionKW  []float64 // PV production per timestep
	ConsumptionKW []float64 // load per timestep
	SpotPriceNOK  []float64 // spot price in NOK/kWh per timestep
	StepHours     float64   // timestep duration as a fraction of an hour
}

// Len returns the number of timesteps.
func (ts TimeSeriesInput) Len() int { return len(ts.Timestamps) }

// Slice returns a view over timesteps [from, to).
func (ts TimeSeriesInput) Slice(from, to int) TimeSeriesInput {
	return TimeSeriesInput{
		Timestamps:    ts.Timestamps[from:to],
		ProductionKW:  ts.ProductionKW[from:to],
		ConsumptionKW: ts.ConsumptionKW[from:to],
		SpotPriceNOK:  ts.SpotPriceNOK[from:to],
		StepHours:     ts.StepHours,
	}
}

// Validate checks alignment, monotonicity and gaplessness of the grid.
func (ts TimeSeriesInput) Validate() error {
	n := len(ts.Timestamps)
	if n == 0 {
		return fmt.Errorf("time series is empty")
	}
	if len(ts.ProductionKW) != n || len(ts.ConsumptionKW) != n || len(ts.SpotPriceNOK) != n {
		return fmt.Errorf("misaligned series: %d timestamps, %d production, %d consumption, %d price",
			n, len(ts.ProductionKW), len(ts.ConsumptionKW), len(ts.SpotPriceNOK))
	}
	if ts.StepHours <= 0 {
		return fmt.Errorf("step duration must be positive, got %g hours", ts.StepHours)
	}
	step := time.Duration(ts.StepHours * float64(time.Hour))
	for i := 1; i < n; i++ {
		gap := ts.Timestamps[i].Sub(ts.Timestamps[i-1])
		if gap <= 0 {
			return fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
		if math.Abs(float64(gap-step)) > float64(time.Second) {
			return fmt.Errorf("timestamp gap at index %d is %s, want %s", i, gap, step)
		}
	}
	for i := 0; i < n; i++ {
		if ts.ProductionKW[i] < 0 {
			return fmt.Errorf("negative production %g at index %d", ts.ProductionKW[i], i)
		}
		if ts.ConsumptionKW[i] < 0 {
			return fmt.Errorf("negative consumption %g at index %d", ts.ConsumptionKW[i], i)
		}
	}
	return nil
}
