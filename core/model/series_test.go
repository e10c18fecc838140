package model

import (
	"testing"
	"time"
)

func hourlySeries(start time.Time, n int) TimeSeriesInput {
	ts := TimeSeriesInput{StepHours: 1}
	for i := 0; i < n; i++ {
		ts.Timestamps = append(ts.Timestamps, start.Add(time.Duration(i)*time.Hour))
		ts.ProductionKW = append(ts.ProductionKW, 1)
		ts.ConsumptionKW = append(ts.ConsumptionKW, 2)
		ts.SpotPriceNOK = append(ts.SpotPriceNOK, 0.5)
	}
	return ts
}

func TestSeriesValidate(t *testing.T) {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	if err := hourlySeries(start, 5).Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}

	cases := map[string]func(*TimeSeriesInput){
		"empty":           func(ts *TimeSeriesInput) { *ts = TimeSeriesInput{StepHours: 1} },
		"misaligned":      func(ts *TimeSeriesInput) { ts.SpotPriceNOK = ts.SpotPriceNOK[:3] },
		"zero step":       func(ts *TimeSeriesInput) { ts.StepHours = 0 },
		"duplicate stamp": func(ts *TimeSeriesInput) { ts.Timestamps[2] = ts.Timestamps[1] },
		"gap in grid":     func(ts *TimeSeriesInput) { ts.Timestamps[4] = ts.Timestamps[4].Add(time.Hour) },
		"negative prod":   func(ts *TimeSeriesInput) { ts.ProductionKW[0] = -1 },
		"negative cons":   func(ts *TimeSeriesInput) { ts.ConsumptionKW[3] = -0.1 },
	}
	for name, mutate := range cases {
		ts := hourlySeries(start, 5)
		mutate(&ts)
		if err := ts.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	// Negative spot prices are legitimate market data.
	ts := hourlySeries(start, 5)
	ts.SpotPriceNOK[1] = -0.2
	if err := ts.Validate(); err != nil {
		t.Fatalf("negative price rejected: %v", err)
	}
}

func TestSeriesSlice(t *testing.T) {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	ts := hourlySeries(start, 5)
	sub := ts.Slice(1, 4)
	if sub.Len() != 3 {
		t.Fatalf("slice length %d, want 3", sub.Len())
	}
	if !sub.Timestamps[0].Equal(ts.Timestamps[1]) {
		t.Fatalf("slice start %v, want %v", sub.Timestamps[0], ts.Timestamps[1])
	}
	if sub.StepHours != ts.StepHours {
		t.Fatalf("slice dropped the step duration")
	}
}

func TestBatteryValidate(t *testing.T) {
	good := BatteryState{CapacityKWh: 20, PowerLimitKW: 10, Efficiency: 0.9, MinSoC: 0.1, MaxSoC: 0.9, EnergyKWh: 10}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid battery rejected: %v", err)
	}
	if err := (BatteryState{}).Validate(); err != nil {
		t.Fatalf("disabled baseline battery rejected: %v", err)
	}
	bad := []BatteryState{
		{CapacityKWh: 20, PowerLimitKW: 10, Efficiency: 1.1, MinSoC: 0, MaxSoC: 1},
		{CapacityKWh: 20, PowerLimitKW: 10, Efficiency: 0.9, MinSoC: 0.8, MaxSoC: 0.2},
		{CapacityKWh: 20, PowerLimitKW: 10, Efficiency: 0.9, MinSoC: -0.1, MaxSoC: 1},
		{CapacityKWh: -5, PowerLimitKW: 10, Efficiency: 0.9, MinSoC: 0, MaxSoC: 1},
		{CapacityKWh: 20, Efficiency: 0.9, MinSoC: 0, MaxSoC: 1},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestDispatchResultAppend(t *testing.T) {
	a := DispatchResult{
		ChargeKW: []float64{1, 2}, DischargeKW: []float64{0, 0},
		GridImportKW: []float64{3, 3}, GridExportKW: []float64{0, 0},
		CurtailmentKW: []float64{0, 0}, StoredEnergyKWh: []float64{5, 6},
		DegradationPct: []float64{0.1, 0.1}, Timestamps: []int64{1, 2},
		EnergyCostNOK: 10, TariffCostNOK: 100, DegradationNOK: 1,
		PeakKW: 3, FinalEnergyKWh: 6, Objective: 11,
	}
	b := DispatchResult{
		ChargeKW: []float64{0}, DischargeKW: []float64{4},
		GridImportKW: []float64{7}, GridExportKW: []float64{0},
		CurtailmentKW: []float64{0}, StoredEnergyKWh: []float64{2},
		DegradationPct: []float64{0.2}, Timestamps: []int64{3},
		EnergyCostNOK: 5, TariffCostNOK: 50, DegradationNOK: 2,
		PeakKW: 7, FinalEnergyKWh: 2, Objective: 7, Solved: true,
	}
	var total DispatchResult
	total.Append(a)
	total.Append(b)

	if total.Steps() != 3 {
		t.Fatalf("stitched %d steps, want 3", total.Steps())
	}
	if total.EnergyCostNOK != 15 || total.TariffCostNOK != 150 || total.DegradationNOK != 3 {
		t.Fatalf("costs not accumulated: %+v", total)
	}
	if total.PeakKW != 7 {
		t.Fatalf("peak %g, want max 7", total.PeakKW)
	}
	if total.FinalEnergyKWh != 2 {
		t.Fatalf("final energy %g, want the last window's 2", total.FinalEnergyKWh)
	}
	if got := total.TotalDegradationPct(); got != 0.4 {
		t.Fatalf("total degradation %g, want 0.4", got)
	}
	if got := total.TotalCostNOK(); got != 168 {
		t.Fatalf("total cost %g, want 168", got)
	}
}
