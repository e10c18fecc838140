package tariff

import (
	"math"
	"testing"
	"time"
)

func testTable(t *testing.T) *BracketTable {
	t.Helper()
	table, err := NewBracketTable([]Bracket{
		{LowerKW: 0, UpperKW: 2, CostNOK: 135},
		{LowerKW: 2, UpperKW: 5, CostNOK: 219},
		{LowerKW: 5, UpperKW: 10, CostNOK: 365},
		{LowerKW: 10, UpperKW: 15, CostNOK: 512},
		{LowerKW: 15, UpperKW: math.Inf(1), CostNOK: 658},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return table
}

func TestTimeOfUseRate(t *testing.T) {
	tou := TimeOfUse{
		DayRateNOK: 0.30, NightRateNOK: 0.20,
		DayStartHour: 6, DayEndHour: 22,
		SummerTaxNOK: 0.16, WinterTaxNOK: 0.09,
	}
	// Wednesday in July, mid-day.
	day := time.Date(2023, time.July, 5, 12, 0, 0, 0, time.UTC)
	if got := tou.Rate(day); math.Abs(got-0.46) > 1e-9 {
		t.Fatalf("summer day rate = %g, want 0.46", got)
	}
	// Same day at night.
	night := time.Date(2023, time.July, 5, 2, 0, 0, 0, time.UTC)
	if got := tou.Rate(night); math.Abs(got-0.36) > 1e-9 {
		t.Fatalf("summer night rate = %g, want 0.36", got)
	}
	// Saturday mid-day uses the night rate.
	sat := time.Date(2023, time.July, 8, 12, 0, 0, 0, time.UTC)
	if got := tou.Rate(sat); math.Abs(got-0.36) > 1e-9 {
		t.Fatalf("weekend rate = %g, want 0.36", got)
	}
	// February mid-day gets the winter tax.
	winter := time.Date(2023, time.February, 1, 12, 0, 0, 0, time.UTC)
	if got := tou.Rate(winter); math.Abs(got-0.39) > 1e-9 {
		t.Fatalf("winter day rate = %g, want 0.39", got)
	}
}

func TestBracketCostStepFunction(t *testing.T) {
	table := testTable(t)
	cases := []struct {
		peak float64
		want float64
	}{
		{0, 135},
		{1.5, 135},
		{2, 135}, // upper bound belongs to the bracket
		{2.1, 219},
		{5.5, 365},
		{12, 512},
		{15.1, 658},
		{900, 658}, // flat above the top bracket
	}
	for _, c := range cases {
		if got := table.Cost(c.peak); got != c.want {
			t.Fatalf("Cost(%g) = %g, want %g", c.peak, got, c.want)
		}
	}
}

func TestBracketCostMonotone(t *testing.T) {
	table := testTable(t)
	prev := table.Cost(0)
	for p := 0.0; p <= 30; p += 0.25 {
		cur := table.Cost(p)
		if cur < prev {
			t.Fatalf("Cost not monotone at %g: %g < %g", p, cur, prev)
		}
		prev = cur
	}
}

func TestConvexCostIsLowerEnvelope(t *testing.T) {
	table := testTable(t)
	for p := 0.0; p <= 30; p += 0.1 {
		exact := table.Cost(p)
		relaxed := table.ConvexCost(p)
		if relaxed > exact+1e-9 {
			t.Fatalf("ConvexCost(%g) = %g exceeds exact cost %g", p, relaxed, exact)
		}
	}
	// Equality at every finite bracket breakpoint.
	for _, upper := range []float64{2, 5, 10, 15} {
		exact := table.Cost(upper)
		relaxed := table.ConvexCost(upper)
		if math.Abs(exact-relaxed) > 1e-9 {
			t.Fatalf("envelope misses breakpoint %g: %g vs %g", upper, relaxed, exact)
		}
	}
}

func TestConvexSegmentsConvex(t *testing.T) {
	table := testTable(t)
	segs := table.ConvexSegments()
	if len(segs) == 0 {
		t.Fatal("no segments")
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Slope < segs[i-1].Slope {
			t.Fatalf("segment slopes not non-decreasing: %g after %g", segs[i].Slope, segs[i-1].Slope)
		}
	}
}

func TestNewBracketTableRejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		rows []Bracket
	}{
		{"empty", nil},
		{"gap", []Bracket{
			{LowerKW: 0, UpperKW: 2, CostNOK: 100},
			{LowerKW: 3, UpperKW: math.Inf(1), CostNOK: 200},
		}},
		{"no start at zero", []Bracket{
			{LowerKW: 1, UpperKW: math.Inf(1), CostNOK: 100},
		}},
		{"finite top", []Bracket{
			{LowerKW: 0, UpperKW: 10, CostNOK: 100},
		}},
		{"decreasing cost", []Bracket{
			{LowerKW: 0, UpperKW: 2, CostNOK: 200},
			{LowerKW: 2, UpperKW: math.Inf(1), CostNOK: 100},
		}},
	}
	for _, c := range cases {
		if _, err := NewBracketTable(c.rows); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestStateObserveResetsAtMonthBoundary(t *testing.T) {
	table := testTable(t)
	st := NewState(table, TimeOfUse{}, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	st.Observe(time.Date(2023, time.January, 10, 8, 0, 0, 0, time.UTC), 7)
	st.Observe(time.Date(2023, time.January, 20, 8, 0, 0, 0, time.UTC), 4)
	if st.PeakKW != 7 {
		t.Fatalf("peak = %g, want 7", st.PeakKW)
	}
	st.Observe(time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), 3)
	if st.PeakKW != 3 {
		t.Fatalf("peak after month rollover = %g, want 3", st.PeakKW)
	}
	if st.Month != time.February {
		t.Fatalf("month = %v, want February", st.Month)
	}
}
