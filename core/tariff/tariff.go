// Package tariff models the grid cost structure applied to imported energy:
// a time-of-use energy component and a progressive monthly power tariff
// determined by the month's peak grid import.
package tariff

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TimeOfUse describes the NOK/kWh add-ons applied on top of the spot price.
// Rates depend only on calendar attributes, never on consumption history.
type TimeOfUse struct {
	DayRateNOK   float64 // grid energy fee between DayStart and DayEnd
	NightRateNOK float64 // grid energy fee outside day hours and on weekends
	DayStartHour int
	DayEndHour   int

	SummerTaxNOK float64 // consumption tax April through December
	WinterTaxNOK float64 // reduced consumption tax January through March
}

// Rate returns the energy tariff in NOK/kWh for the given instant.
func (t TimeOfUse) Rate(ts time.Time) float64 {
	rate := t.NightRateNOK
	wd := ts.Weekday()
	if wd != time.Saturday && wd != time.Sunday &&
		ts.Hour() >= t.DayStartHour && ts.Hour() < t.DayEndHour {
		rate = t.DayRateNOK
	}
	if ts.Month() >= time.April {
		rate += t.SummerTaxNOK
	} else {
		rate += t.WinterTaxNOK
	}
	return rate
}

// Bracket is one row of a progressive power tariff table: a fixed monthly
// cost for peaks in (LowerKW, UpperKW]. The top bracket has UpperKW = +Inf.
type Bracket struct {
	LowerKW float64
	UpperKW float64
	CostNOK float64
}

// Segment is one affine piece of the convex lower envelope of a bracket
// table, valid as a global under-estimator: cost >= Slope*peak + Intercept.
type Segment struct {
	Slope     float64
	Intercept float64
}

// BracketTable is an ordered progressive power tariff. Brackets must be
// contiguous, non-overlapping and cover [0, +Inf).
type BracketTable struct {
	brackets []Bracket
	segments []Segment
}

// NewBracketTable validates the rows and precomputes the convex lower
// envelope used inside the LP objective.
func NewBracketTable(rows []Bracket) (*BracketTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("bracket table is empty")
	}
	sorted := make([]Bracket, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LowerKW < sorted[j].LowerKW })
	if sorted[0].LowerKW != 0 {
		return nil, fmt.Errorf("first bracket must start at 0 kW, got %g", sorted[0].LowerKW)
	}
	for i, b := range sorted {
		if b.UpperKW <= b.LowerKW {
			return nil, fmt.Errorf("bracket %d has upper %g <= lower %g", i, b.UpperKW, b.LowerKW)
		}
		if b.CostNOK < 0 {
			return nil, fmt.Errorf("bracket %d has negative cost", i)
		}
		if i > 0 {
			if sorted[i-1].UpperKW != b.LowerKW {
				return nil, fmt.Errorf("gap between bracket %d upper %g and bracket %d lower %g",
					i-1, sorted[i-1].UpperKW, i, b.LowerKW)
			}
			if b.CostNOK < sorted[i-1].CostNOK {
				return nil, fmt.Errorf("bracket costs must be non-decreasing, bracket %d", i)
			}
		}
	}
	last := sorted[len(sorted)-1]
	if !math.IsInf(last.UpperKW, 1) {
		return nil, fmt.Errorf("last bracket must extend to +Inf, got upper %g", last.UpperKW)
	}
	t := &BracketTable{brackets: sorted}
	t.segments = lowerEnvelope(sorted)
	return t, nil
}

// Cost returns the exact step-function monthly cost for the given peak.
// This is the billed amount and the only cost ever reported or compared;
// the convex envelope exists solely for the LP objective.
func (t *BracketTable) Cost(peakKW float64) float64 {
	for _, b := range t.brackets {
		if peakKW <= b.UpperKW {
			return b.CostNOK
		}
	}
	return t.brackets[len(t.brackets)-1].CostNOK
}

// ConvexSegments returns the affine pieces of the convex lower envelope,
// ordered by increasing slope.
func (t *BracketTable) ConvexSegments() []Segment {
	segs := make([]Segment, len(t.segments))
	copy(segs, t.segments)
	return segs
}

// ConvexCost evaluates the relaxation: the maximum over all segments,
// capped at the top bracket cost so that ConvexCost(p) <= Cost(p) holds
// everywhere, with equality at the bracket breakpoints. The LP uses the
// uncapped segments (the cap would break convexity); beyond the last
// breakpoint they over-penalize the peak, which only pushes the optimizer
// further toward shaving, and the billed cost is recomputed exactly anyway.
func (t *BracketTable) ConvexCost(peakKW float64) float64 {
	v := math.Inf(-1)
	for _, s := range t.segments {
		if c := s.Slope*peakKW + s.Intercept; c > v {
			v = c
		}
	}
	if top := t.brackets[len(t.brackets)-1].CostNOK; v > top {
		return top
	}
	return v
}

// lowerEnvelope builds the greatest convex function lying under the step
// function through the breakpoints (upper_k, cost_k), starting flat at
// (0, cost_0). A monotone-chain lower hull drops breakpoints that would
// break convexity in non-progressive tables.
func lowerEnvelope(brackets []Bracket) []Segment {
	type point struct{ x, y float64 }
	pts := []point{{0, brackets[0].CostNOK}}
	for _, b := range brackets {
		if math.IsInf(b.UpperKW, 1) {
			break
		}
		pts = append(pts, point{b.UpperKW, b.CostNOK})
	}
	hull := make([]point, 0, len(pts))
	cross := func(o, a, b point) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	if len(hull) == 1 {
		// Single bracket: the envelope is the flat bracket cost.
		return []Segment{{Slope: 0, Intercept: hull[0].y}}
	}
	segs := make([]Segment, 0, len(hull)-1)
	for i := 1; i < len(hull); i++ {
		slope := (hull[i].y - hull[i-1].y) / (hull[i].x - hull[i-1].x)
		segs = append(segs, Segment{Slope: slope, Intercept: hull[i].y - slope*hull[i].x})
	}
	return segs
}
