// Package sweep evaluates independent what-if scenarios concurrently.
// Scenarios never share mutable state: each one owns an isolated battery and
// tariff state, so they are embarrassingly parallel. Windows inside a single
// scenario remain strictly sequential.
package sweep

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/logger"
	"github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/optimizer"
	"github.com/nordbess/bessopt/core/tariff"
)

// Scenario is one sensitivity-sweep case: a label plus the battery, tariff
// and optimizer settings to evaluate.
type Scenario struct {
	Name        string
	Battery     model.BatteryState
	Tariff      tariff.State
	Degradation degradation.Model
	Config      optimizer.Config
	Rolling     bool // rolling mode instead of monthly blocks
}

// Result is the outcome of one scenario.
type Result struct {
	ID       string
	Name     string
	Dispatch model.DispatchResult
	Outcome  optimizer.RunOutcome
	Err      error
}

// Runner executes scenarios on a bounded pool of workers.
type Runner struct {
	Workers int
	Log     logger.Logger
	Sink    metrics.MetricsSink
}

// Run evaluates all scenarios against the same input series and returns the
// results in scenario order. A failed scenario carries its error in the
// result; it does not stop the others.
func (r Runner) Run(ctx context.Context, series model.TimeSeriesInput, scenarios []Scenario) []Result {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	log := r.Log
	if log == nil {
		log = logger.NopLogger{}
	}

	results := make([]Result, len(scenarios))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.runOne(ctx, series, scenarios[idx], log)
			}
		}()
	}
	for idx := range scenarios {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

func (r Runner) runOne(ctx context.Context, series model.TimeSeriesInput, sc Scenario, log logger.Logger) Result {
	res := Result{ID: uuid.NewString(), Name: sc.Name}
	var opt optimizer.Optimizer
	var outcome func() optimizer.RunOutcome
	if sc.Rolling {
		o := optimizer.NewRecedingHorizonOptimizer(sc.Config, sc.Degradation, sc.Battery, sc.Tariff, log, r.Sink)
		opt, outcome = o, o.Outcome
	} else {
		o := optimizer.NewBlockOptimizer(sc.Config, sc.Degradation, sc.Battery, sc.Tariff, log, r.Sink)
		opt, outcome = o, o.Outcome
	}
	res.Dispatch, res.Err = opt.Optimize(ctx, series)
	res.Outcome = outcome()
	if res.Err != nil {
		log.Errorf("scenario %s (%s) failed: %v", sc.Name, res.ID, res.Err)
	} else {
		log.Infof("scenario %s (%s): total cost %.2f NOK", sc.Name, res.ID, res.Dispatch.TotalCostNOK())
	}
	return res
}
