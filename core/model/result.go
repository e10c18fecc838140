package model

// DispatchResult holds the solved trajectory of one optimization window and
// its cost breakdown. It is created once per solve and read-only afterwards.
type DispatchResult struct {
	// Per-timestep trajectories, aligned with the window's timestamp grid.
	Timestamps      []int64   // unix seconds per timestep
	ChargeKW        []float64 // battery charge power
	DischargeKW     []float64 // battery discharge power
	GridImportKW    []float64
	GridExportKW    []float64
	CurtailmentKW   []float64
	StoredEnergyKWh []float64 // energy at the end of each timestep
	DegradationPct  []float64 // degradation increment per timestep

	// Scalar summaries.
	Objective      float64 // LP objective value (convex tariff term included)
	EnergyCostNOK  float64 // spot + energy tariff, net of export revenue
	TariffCostNOK  float64 // exact step-function bracket cost
	DegradationNOK float64 // cyclic + calendar degradation cost
	PeakKW         float64 // peak grid import over the window
	FinalEnergyKWh float64
	Solved         bool
	Status         string
}

// Steps returns the number of timesteps covered by the result.
func (r DispatchResult) Steps() int { return len(r.ChargeKW) }

// TotalDegradationPct sums the per-timestep degradation increments.
func (r DispatchResult) TotalDegradationPct() float64 {
	var sum float64
	for _, d := range r.DegradationPct {
		sum += d
	}
	return sum
}

// TotalCostNOK is the reported cost of the window: energy plus exact bracket
// cost plus degradation. Never the raw LP objective, which carries the convex
// relaxation of the bracket cost instead of the step function.
func (r DispatchResult) TotalCostNOK() float64 {
	return r.EnergyCostNOK + r.TariffCostNOK + r.DegradationNOK
}

// Append concatenates another result's trajectories and accumulates its
// costs. Used by orchestrators to stitch committed windows together.
func (r *DispatchResult) Append(other DispatchResult) {
	r.Timestamps = append(r.Timestamps, other.Timestamps...)
	r.ChargeKW = append(r.ChargeKW, other.ChargeKW...)
	r.DischargeKW = append(r.DischargeKW, other.DischargeKW...)
	r.GridImportKW = append(r.GridImportKW, other.GridImportKW...)
	r.GridExportKW = append(r.GridExportKW, other.GridExportKW...)
	r.CurtailmentKW = append(r.CurtailmentKW, other.CurtailmentKW...)
	r.StoredEnergyKWh = append(r.StoredEnergyKWh, other.StoredEnergyKWh...)
	r.DegradationPct = append(r.DegradationPct, other.DegradationPct...)
	r.Objective += other.Objective
	r.EnergyCostNOK += other.EnergyCostNOK
	r.TariffCostNOK += other.TariffCostNOK
	r.DegradationNOK += other.DegradationNOK
	if other.PeakKW > r.PeakKW {
		r.PeakKW = other.PeakKW
	}
	r.FinalEnergyKWh = other.FinalEnergyKWh
	r.Solved = other.Solved
	r.Status = other.Status
}
