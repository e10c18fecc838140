package optimizer

import (
	"time"

	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/logger"
	"github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
)

// phase tracks where the control loop is for one window: waiting, solving,
// or having applied the committed action.
type phase int

const (
	phaseIdle phase = iota
	phaseSolving
	phaseApplied
)

func (p phase) String() string {
	switch p {
	case phaseSolving:
		return "solving"
	case phaseApplied:
		return "applied"
	default:
		return "idle"
	}
}

// engine is the window-solving machinery shared by both optimizer modes.
type engine struct {
	cfg   Config
	deg   degradation.Model
	log   logger.Logger
	sink  metrics.MetricsSink
	mode  string
	runID string
}

// solveWindow validates, builds and solves one window, assembles the result
// and runs post-solve validation. Solve wall time is measured and recorded;
// violations within tolerance are logged, larger ones fail the window.
func (e *engine) solveWindow(w Window) (model.DispatchResult, error) {
	if err := w.validate(); err != nil {
		return model.DispatchResult{}, err
	}
	degCost := degCostPerPct(e.cfg, e.deg, w.Battery)
	p := build(w, e.deg, degCost, limits{importKW: e.cfg.GridImportLimitKW, exportKW: e.cfg.GridExportLimitKW})

	e.log.Debugw("window solve", map[string]any{
		"run": e.runID, "window": w.Index, "phase": phaseSolving.String(), "steps": w.Series.Len(),
	})
	start := time.Now()
	x, objective, err := solve(w, p)
	elapsed := time.Since(start)

	rec := metrics.SolveRecord{
		RunID:       e.runID,
		WindowIndex: w.Index,
		Mode:        e.mode,
		Steps:       w.Series.Len(),
		Solved:      err == nil,
		Duration:    elapsed,
		Start:       w.Series.Timestamps[0],
	}
	if err != nil {
		rec.Status = err.Error()
		if serr := e.sink.RecordSolve(rec); serr != nil {
			e.log.Errorf("metrics sink: %v", serr)
		}
		return model.DispatchResult{}, err
	}

	res := assemble(w, x, objective, e.deg, degCost)
	rec.Status = res.Status
	rec.Objective = res.Objective
	rec.PeakKW = res.PeakKW
	if serr := e.sink.RecordSolve(rec); serr != nil {
		e.log.Errorf("metrics sink: %v", serr)
	}
	e.log.Infof("window %d solved in %s, objective %.2f NOK", w.Index, elapsed, res.Objective)

	violations := checkSolution(w, res, e.cfg.Noise)
	for _, v := range violations {
		e.log.Warnf("window %d constraint violation: %s", w.Index, v)
	}
	if v, bad := worst(violations, e.cfg.ViolationTolerance); bad {
		return model.DispatchResult{}, &SolverError{
			WindowIndex: w.Index,
			Status:      "solution outside tolerance: " + v.String(),
		}
	}
	return res, nil
}
