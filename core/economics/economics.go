// Package economics evaluates the investment case for a battery from solved
// dispatch results: annual savings against a no-battery baseline and the
// break-even investment cost via discounted cash flow.
package economics

import (
	"math"

	"github.com/nordbess/bessopt/core/model"
)

// Savings is the cost difference between a baseline run (battery disabled)
// and a run with the battery, in NOK. Positive means the battery saved
// money.
func Savings(withBattery, baseline model.DispatchResult) float64 {
	return baseline.TotalCostNOK() - withBattery.TotalCostNOK()
}

// AnnuityFactor is the present value of one NOK received every year for
// lifetimeYears at the given discount rate.
func AnnuityFactor(lifetimeYears, discountRate float64) float64 {
	if lifetimeYears <= 0 {
		return 0
	}
	if discountRate == 0 {
		return lifetimeYears
	}
	return (1 - math.Pow(1+discountRate, -lifetimeYears)) / discountRate
}

// NPV is the net present value of a battery investment given constant annual
// savings over its lifetime.
func NPV(investmentNOK, annualSavingsNOK, lifetimeYears, discountRate float64) float64 {
	return -investmentNOK + annualSavingsNOK*AnnuityFactor(lifetimeYears, discountRate)
}

// BreakEvenCostPerKWh inverts the NPV: the battery investment cost per kWh
// at which discounted lifetime savings exactly offset the investment.
func BreakEvenCostPerKWh(annualSavingsNOK, capacityKWh, lifetimeYears, discountRate float64) float64 {
	if capacityKWh <= 0 {
		return 0
	}
	return annualSavingsNOK * AnnuityFactor(lifetimeYears, discountRate) / capacityKWh
}
