// Package degradation converts battery usage into capacity loss and a cost
// coefficient the optimizer can price throughput with. Loss accrues from two
// sources: cyclic aging driven by discharge throughput and calendar aging
// driven purely by elapsed time.
package degradation

import "fmt"

// Model holds the rated aging characteristics of a battery chemistry.
type Model struct {
	CycleLife     float64 // equivalent full cycles until end of life
	CalendarYears float64 // shelf years until end of life
	EOLPercent    float64 // capacity loss in percent defining end of life
}

const hoursPerYear = 8766 // 365.25 days

// Validate checks the rated constants.
func (m Model) Validate() error {
	if m.CycleLife <= 0 {
		return fmt.Errorf("cycle life must be positive, got %g", m.CycleLife)
	}
	if m.CalendarYears <= 0 {
		return fmt.Errorf("calendar life must be positive, got %g", m.CalendarYears)
	}
	if m.EOLPercent <= 0 || m.EOLPercent > 100 {
		return fmt.Errorf("end-of-life threshold must be in (0,100] percent, got %g", m.EOLPercent)
	}
	return nil
}

// CyclicIncrement returns the capacity loss in percent caused by the given
// throughput. Equivalent full cycles are counted on the discharge side only;
// the energy lost while charging is already paid for through the round-trip
// efficiency, counting both sides would double-bill the same cycle.
func (m Model) CyclicIncrement(chargeKWh, dischargeKWh, capacityKWh float64) float64 {
	_ = chargeKWh
	if capacityKWh <= 0 || dischargeKWh <= 0 {
		return 0
	}
	efc := dischargeKWh / capacityKWh
	return efc / m.CycleLife * m.EOLPercent
}

// CyclicCoefficientPerKWh is the percent loss per discharged kWh, the linear
// coefficient applied to discharge variables in the LP objective.
func (m Model) CyclicCoefficientPerKWh(capacityKWh float64) float64 {
	if capacityKWh <= 0 {
		return 0
	}
	return m.EOLPercent / (m.CycleLife * capacityKWh)
}

// CalendarIncrement returns the capacity loss in percent for elapsed time,
// independent of usage.
func (m Model) CalendarIncrement(hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return hours / (m.CalendarYears * hoursPerYear) * m.EOLPercent
}

// CostCoefficient converts percent of capacity loss into NOK. The divisor is
// the end-of-life threshold, not 100: the investment is consumed once the
// battery loses EOLPercent of its capacity. Dividing by 100 undervalues
// degradation by a factor of 100/EOLPercent and drives the optimizer to
// overcycle.
func (m Model) CostCoefficient(batteryCostNOKPerKWh, capacityKWh float64) float64 {
	if capacityKWh <= 0 {
		return 0
	}
	return batteryCostNOKPerKWh * capacityKWh / m.EOLPercent
}

// LifetimeYears estimates usable lifetime given an average annual
// degradation rate in percent per year.
func (m Model) LifetimeYears(annualPercent float64) float64 {
	if annualPercent <= 0 {
		return m.CalendarYears
	}
	years := m.EOLPercent / annualPercent
	if years > m.CalendarYears {
		return m.CalendarYears
	}
	return years
}
