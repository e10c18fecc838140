package optimizer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nordbess/bessopt/core/degradation"
)

// layout fixes the variable indexing of a window's LP. The orchestrators
// slice the first timestep's action by these offsets, so the solver adapter
// must never reorder variables.
//
// Stored energy is encoded as an offset from the min-SoC bound so that every
// variable is naturally non-negative. Tariff-aware windows append a peak
// variable (offset from the already observed monthly peak) and an epigraph
// variable carrying the convex bracket cost.
type layout struct {
	n           int
	tariffAware bool
}

func (l layout) charge(t int) int    { return t }
func (l layout) discharge(t int) int { return l.n + t }
func (l layout) imp(t int) int       { return 2*l.n + t }
func (l layout) exp(t int) int       { return 3*l.n + t }
func (l layout) curtail(t int) int   { return 4*l.n + t }
func (l layout) energy(t int) int    { return 5*l.n + t }
func (l layout) peak() int           { return 6 * l.n }
func (l layout) bracketCost() int    { return 6*l.n + 1 }

func (l layout) numVars() int {
	if l.tariffAware {
		return 6*l.n + 2
	}
	return 6 * l.n
}

// problem is one window's LP in general form:
//
//	minimize cᵀx  s.t.  G x <= h,  A x = b
//
// as consumed by the solver adapter.
type problem struct {
	layout layout
	c      []float64
	g      *mat.Dense
	h      []float64
	a      *mat.Dense
	b      []float64
}

// limits caps grid exchange per timestep. Zero means unlimited.
type limits struct {
	importKW float64
	exportKW float64
}

// build assembles the LP for one window. Per timestep t it creates the
// decision variables charge, discharge, import, export, curtailment and
// stored energy, ties them with the power balance and SoC dynamics
// equalities, and prices import/export, discharge throughput and (when
// tariff-aware) the convex bracket cost of the monthly peak.
func build(w Window, deg degradation.Model, degCostNOKPerPct float64, lim limits) *problem {
	n := w.Series.Len()
	l := layout{n: n, tariffAware: w.TariffAware}
	nv := l.numVars()
	dt := w.Series.StepHours
	bat := w.Battery
	eMin := bat.MinEnergyKWh()
	eSpan := bat.MaxEnergyKWh() - eMin

	// Objective.
	c := make([]float64, nv)
	cyclicNOKPerKWh := degCostNOKPerPct * deg.CyclicCoefficientPerKWh(bat.CapacityKWh)
	for t := 0; t < n; t++ {
		rate := w.Tariff.Energy.Rate(w.Series.Timestamps[t])
		c[l.imp(t)] = (w.Series.SpotPriceNOK[t] + rate) * dt
		c[l.exp(t)] = -w.Series.SpotPriceNOK[t] * dt
		c[l.discharge(t)] = cyclicNOKPerKWh * dt
	}

	var segments []tariffSegment
	if w.TariffAware {
		c[l.bracketCost()] = 1
		for _, s := range w.Tariff.Table.ConvexSegments() {
			segments = append(segments, tariffSegment{slope: s.Slope, intercept: s.Intercept})
		}
	}

	// Equalities: power balance and SoC dynamics, two rows per timestep.
	a := mat.NewDense(2*n, nv, nil)
	b := make([]float64, 2*n)
	for t := 0; t < n; t++ {
		bal := 2 * t
		a.Set(bal, l.discharge(t), 1)
		a.Set(bal, l.imp(t), 1)
		a.Set(bal, l.curtail(t), -1)
		a.Set(bal, l.charge(t), -1)
		a.Set(bal, l.exp(t), -1)
		b[bal] = w.Series.ConsumptionKW[t] - w.Series.ProductionKW[t]

		soc := 2*t + 1
		a.Set(soc, l.energy(t), 1)
		a.Set(soc, l.charge(t), -bat.Efficiency*dt)
		a.Set(soc, l.discharge(t), dt/effOrOne(bat.Efficiency))
		if t == 0 {
			b[soc] = bat.EnergyKWh - eMin
		} else {
			a.Set(soc, l.energy(t-1), -1)
		}
	}

	// Inequalities: non-negativity for every variable, per-variable upper
	// bounds, curtailment capped by production, optional grid limits, peak
	// tracking and the bracket cost epigraph.
	rows := nv + 3*n + n
	if lim.importKW > 0 {
		rows += n
	}
	if lim.exportKW > 0 {
		rows += n
	}
	if w.TariffAware {
		rows += n + len(segments)
	}
	g := mat.NewDense(rows, nv, nil)
	h := make([]float64, rows)
	r := 0
	for j := 0; j < nv; j++ {
		g.Set(r, j, -1)
		h[r] = 0
		r++
	}
	for t := 0; t < n; t++ {
		g.Set(r, l.charge(t), 1)
		h[r] = bat.PowerLimitKW
		r++
		g.Set(r, l.discharge(t), 1)
		h[r] = bat.PowerLimitKW
		r++
		g.Set(r, l.energy(t), 1)
		h[r] = eSpan
		r++
		g.Set(r, l.curtail(t), 1)
		h[r] = w.Series.ProductionKW[t]
		r++
	}
	if lim.importKW > 0 {
		for t := 0; t < n; t++ {
			g.Set(r, l.imp(t), 1)
			h[r] = lim.importKW
			r++
		}
	}
	if lim.exportKW > 0 {
		for t := 0; t < n; t++ {
			g.Set(r, l.exp(t), 1)
			h[r] = lim.exportKW
			r++
		}
	}
	if w.TariffAware {
		// peak >= i_t with peak = observed + peakVar. Every step of the window
		// is covered: a rolling window straddling a month boundary constrains
		// next month's imports against this month's peak too, a conservative
		// over-approximation. Billing is unaffected because the orchestrators
		// recompute the exact bracket cost per realized monthly peak.
		for t := 0; t < n; t++ {
			g.Set(r, l.imp(t), 1)
			g.Set(r, l.peak(), -1)
			h[r] = w.Tariff.PeakKW
			r++
		}
		// z >= slope*peak + intercept for each envelope segment.
		for _, s := range segments {
			g.Set(r, l.peak(), s.slope)
			g.Set(r, l.bracketCost(), -1)
			h[r] = -s.intercept - s.slope*w.Tariff.PeakKW
			r++
		}
	}

	return &problem{layout: l, c: c, g: g, h: h, a: a, b: b}
}

type tariffSegment struct {
	slope     float64
	intercept float64
}

// effOrOne guards the disabled-battery case where efficiency is zero and the
// discharge variable is bounded to zero anyway.
func effOrOne(eff float64) float64 {
	if eff <= 0 {
		return 1
	}
	return eff
}
