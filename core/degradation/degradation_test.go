package degradation

import (
	"math"
	"testing"
)

var testModel = Model{CycleLife: 5000, CalendarYears: 15, EOLPercent: 20}

func TestCyclicIncrement(t *testing.T) {
	// One equivalent full cycle costs EOLPercent/CycleLife percent.
	got := testModel.CyclicIncrement(20, 20, 20)
	want := 20.0 / 5000
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("one EFC = %g, want %g", got, want)
	}
	// Charge throughput alone accrues nothing.
	if got := testModel.CyclicIncrement(10, 0, 20); got != 0 {
		t.Fatalf("charge-only increment = %g, want 0", got)
	}
	if got := testModel.CyclicIncrement(0, 0, 20); got != 0 {
		t.Fatalf("idle increment = %g, want 0", got)
	}
}

func TestCalendarIncrement(t *testing.T) {
	// A full calendar life accrues exactly the EOL percentage.
	got := testModel.CalendarIncrement(15 * 8766)
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("full calendar life = %g, want 20", got)
	}
	if got := testModel.CalendarIncrement(0); got != 0 {
		t.Fatalf("zero duration = %g, want 0", got)
	}
}

func TestCostCoefficientDividesByEOLThreshold(t *testing.T) {
	// 3500 NOK/kWh * 20 kWh battery, 20% EOL: one percent of loss costs
	// 3500*20/20 = 3500 NOK. Dividing by 100 instead would undervalue
	// degradation fivefold.
	got := testModel.CostCoefficient(3500, 20)
	if math.Abs(got-3500) > 1e-9 {
		t.Fatalf("cost coefficient = %g, want 3500", got)
	}
	// Full battery cost is consumed over the cycle life: cost of one EFC
	// equals investment/cycle_life.
	perEFC := got * testModel.CyclicIncrement(20, 20, 20)
	want := 3500.0 * 20 / 5000
	if math.Abs(perEFC-want) > 1e-9 {
		t.Fatalf("cost per EFC = %g, want %g", perEFC, want)
	}
}

func TestCyclicCoefficientPerKWh(t *testing.T) {
	// Per-kWh coefficient times discharged energy equals the increment.
	perKWh := testModel.CyclicCoefficientPerKWh(20)
	if math.Abs(perKWh*7.5-testModel.CyclicIncrement(0, 7.5, 20)) > 1e-12 {
		t.Fatalf("per-kWh coefficient inconsistent with increment")
	}
	if got := testModel.CyclicCoefficientPerKWh(0); got != 0 {
		t.Fatalf("zero capacity coefficient = %g, want 0", got)
	}
}

func TestLifetimeYears(t *testing.T) {
	if got := testModel.LifetimeYears(2); math.Abs(got-10) > 1e-9 {
		t.Fatalf("lifetime at 2%%/year = %g, want 10", got)
	}
	// Calendar life caps the estimate.
	if got := testModel.LifetimeYears(0.5); got != 15 {
		t.Fatalf("lifetime at 0.5%%/year = %g, want calendar cap 15", got)
	}
	if got := testModel.LifetimeYears(0); got != 15 {
		t.Fatalf("lifetime with no usage = %g, want 15", got)
	}
}

func TestValidate(t *testing.T) {
	if err := testModel.Validate(); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}
	bad := []Model{
		{CycleLife: 0, CalendarYears: 15, EOLPercent: 20},
		{CycleLife: 5000, CalendarYears: 0, EOLPercent: 20},
		{CycleLife: 5000, CalendarYears: 15, EOLPercent: 0},
		{CycleLife: 5000, CalendarYears: 15, EOLPercent: 150},
	}
	for i, m := range bad {
		if err := m.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
