package optimizer

import (
	"fmt"
	"math"

	"github.com/nordbess/bessopt/core/model"
)

// violation is a post-solve constraint check finding. Violations within the
// configured tolerance are logged as warnings; beyond it they escalate to a
// SolverError.
type violation struct {
	Step   int
	Kind   string
	Amount float64
}

func (v violation) String() string {
	return fmt.Sprintf("%s at step %d by %g", v.Kind, v.Step, v.Amount)
}

// checkSolution verifies the solved trajectory against the window's declared
// constraints: power balance, SoC bounds, SoC continuity and the empirical
// absence of simultaneous charge and discharge. The LP never forbids
// simultaneity with an integer constraint; the objective makes it
// unprofitable, which is verified here rather than assumed. Deviations at or
// below noise are ignored as solver slack.
func checkSolution(w Window, res model.DispatchResult, noise float64) []violation {
	var out []violation
	dt := w.Series.StepHours
	bat := w.Battery
	eff := effOrOne(bat.Efficiency)
	prev := bat.EnergyKWh

	for t := 0; t < res.Steps(); t++ {
		supply := w.Series.ProductionKW[t] - res.CurtailmentKW[t] + res.DischargeKW[t] + res.GridImportKW[t]
		demand := w.Series.ConsumptionKW[t] + res.ChargeKW[t] + res.GridExportKW[t]
		if d := math.Abs(supply - demand); d > noise {
			out = append(out, violation{Step: t, Kind: "power_balance", Amount: d})
		}

		e := res.StoredEnergyKWh[t]
		if d := bat.MinEnergyKWh() - e; d > noise {
			out = append(out, violation{Step: t, Kind: "soc_lower_bound", Amount: d})
		}
		if d := e - bat.MaxEnergyKWh(); d > noise {
			out = append(out, violation{Step: t, Kind: "soc_upper_bound", Amount: d})
		}

		want := prev + res.ChargeKW[t]*bat.Efficiency*dt - res.DischargeKW[t]*dt/eff
		if d := math.Abs(e - want); d > noise {
			out = append(out, violation{Step: t, Kind: "soc_continuity", Amount: d})
		}
		prev = e

		if res.ChargeKW[t] > noise && res.DischargeKW[t] > noise {
			amt := math.Min(res.ChargeKW[t], res.DischargeKW[t])
			out = append(out, violation{Step: t, Kind: "simultaneous_charge_discharge", Amount: amt})
		}
	}
	return out
}

// worst returns the largest violation that exceeds the escalation tolerance.
// Simultaneous charge/discharge never escalates: it is a modelling warning,
// not a bound violation.
func worst(violations []violation, tolerance float64) (violation, bool) {
	var w violation
	found := false
	for _, v := range violations {
		if v.Kind == "simultaneous_charge_discharge" || v.Amount <= tolerance {
			continue
		}
		if !found || v.Amount > w.Amount {
			w = v
			found = true
		}
	}
	return w, found
}
