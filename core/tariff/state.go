package tariff

import "time"

// State carries the tariff bookkeeping between optimization windows: the
// bracket table, the energy add-ons and the highest grid import observed so
// far in the current billing month. The orchestrator owns it; window builds
// consume a snapshot.
type State struct {
	Table  *BracketTable
	Energy TimeOfUse
	PeakKW float64 // highest grid import observed this billing month
	Month  time.Month
	Year   int
}

// NewState returns a State with no observed peak, anchored at the month of
// the given start time.
func NewState(table *BracketTable, energy TimeOfUse, start time.Time) *State {
	return &State{Table: table, Energy: energy, Month: start.Month(), Year: start.Year()}
}

// Observe records a grid import measurement, rolling the peak over at
// calendar-month boundaries.
func (s *State) Observe(ts time.Time, importKW float64) {
	if ts.Month() != s.Month || ts.Year() != s.Year {
		s.Month = ts.Month()
		s.Year = ts.Year()
		s.PeakKW = 0
	}
	if importKW > s.PeakKW {
		s.PeakKW = importKW
	}
}

// Snapshot returns a value copy safe to hand to a window build.
func (s *State) Snapshot() State { return *s }
