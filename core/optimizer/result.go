package optimizer

import (
	"github.com/nordbess/bessopt/core/degradation"
	"github.com/nordbess/bessopt/core/model"
)

// assemble maps a raw solution vector into a DispatchResult and recomputes
// all reported costs. The tariff cost always comes from the exact
// step-function bracket table, never from the convex relaxation the LP
// minimized.
func assemble(w Window, x []float64, objective float64, deg degradation.Model, degCostNOKPerPct float64) model.DispatchResult {
	n := w.Series.Len()
	l := layout{n: n, tariffAware: w.TariffAware}
	dt := w.Series.StepHours
	eMin := w.Battery.MinEnergyKWh()

	res := model.DispatchResult{
		Timestamps:      make([]int64, n),
		ChargeKW:        make([]float64, n),
		DischargeKW:     make([]float64, n),
		GridImportKW:    make([]float64, n),
		GridExportKW:    make([]float64, n),
		CurtailmentKW:   make([]float64, n),
		StoredEnergyKWh: make([]float64, n),
		DegradationPct:  make([]float64, n),
		Objective:       objective,
		Solved:          true,
		Status:          "optimal",
	}

	peak := w.Tariff.PeakKW
	for t := 0; t < n; t++ {
		res.Timestamps[t] = w.Series.Timestamps[t].Unix()
		res.ChargeKW[t] = clampTiny(x[l.charge(t)])
		res.DischargeKW[t] = clampTiny(x[l.discharge(t)])
		res.GridImportKW[t] = clampTiny(x[l.imp(t)])
		res.GridExportKW[t] = clampTiny(x[l.exp(t)])
		res.CurtailmentKW[t] = clampTiny(x[l.curtail(t)])
		res.StoredEnergyKWh[t] = eMin + x[l.energy(t)]

		rate := w.Tariff.Energy.Rate(w.Series.Timestamps[t])
		res.EnergyCostNOK += (w.Series.SpotPriceNOK[t]+rate)*res.GridImportKW[t]*dt -
			w.Series.SpotPriceNOK[t]*res.GridExportKW[t]*dt

		cyclic := deg.CyclicIncrement(res.ChargeKW[t]*dt, res.DischargeKW[t]*dt, w.Battery.CapacityKWh)
		calendar := deg.CalendarIncrement(dt)
		res.DegradationPct[t] = cyclic + calendar
		res.DegradationNOK += degCostNOKPerPct * (cyclic + calendar)

		if res.GridImportKW[t] > peak {
			peak = res.GridImportKW[t]
		}
	}
	res.PeakKW = peak
	res.FinalEnergyKWh = res.StoredEnergyKWh[n-1]
	if w.TariffAware {
		res.TariffCostNOK = w.Tariff.Table.Cost(peak)
	}
	return res
}

// clampTiny removes solver noise on variables that are zero at the optimum.
func clampTiny(v float64) float64 {
	if v < 0 && v > -1e-9 {
		return 0
	}
	if v < 0 {
		return v // left visible for post-solve validation to flag
	}
	return v
}
