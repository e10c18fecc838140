package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nordbess/bessopt/app"
	"github.com/nordbess/bessopt/config"
	"github.com/nordbess/bessopt/core/economics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/infra/logger"
)

const hoursPerYear = 8766

var breakevenCmd = &cobra.Command{
	Use:   "breakeven",
	Short: "Compute the break-even battery investment cost",
	Long: "Runs the optimization twice, once with the configured battery and once " +
		"with the battery disabled, annualizes the cost difference and inverts the " +
		"discounted cash flow to the maximum investment cost per kWh with zero NPV.",
	RunE: breakeven,
}

func init() {
	rootCmd.AddCommand(breakevenCmd)
}

func breakeven(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("breakeven")

	in, err := svc.LoadSeries()
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	bat, ts, err := svc.States(in)
	if err != nil {
		return err
	}

	withBattery, err := svc.Optimizer(bat, ts).Optimize(ctx, in)
	if err != nil {
		return fmt.Errorf("battery run: %w", err)
	}
	baseline, err := svc.Optimizer(model.BatteryState{}, ts).Optimize(ctx, in)
	if err != nil {
		return fmt.Errorf("baseline run: %w", err)
	}

	seriesHours := float64(in.Len()) * in.StepHours
	savings := economics.Savings(withBattery, baseline)
	annualSavings := savings * hoursPerYear / seriesHours

	deg := cfg.Degradation.Model()
	annualDegPct := withBattery.TotalDegradationPct() * hoursPerYear / seriesHours
	lifetime := deg.LifetimeYears(annualDegPct)
	if cfg.Economics.LifetimeYears > 0 && cfg.Economics.LifetimeYears < lifetime {
		lifetime = cfg.Economics.LifetimeYears
	}

	breakEven := economics.BreakEvenCostPerKWh(annualSavings, bat.CapacityKWh, lifetime, cfg.Economics.DiscountRate)

	logg.Infof("cost with battery: %.2f NOK, baseline: %.2f NOK", withBattery.TotalCostNOK(), baseline.TotalCostNOK())
	logg.Infof("annualized savings: %.2f NOK/year", annualSavings)
	logg.Infof("annual degradation: %.3f %%/year, implied lifetime: %.1f years", annualDegPct, lifetime)
	logg.Infof("break-even investment cost: %.2f NOK/kWh at %.1f %% discount rate",
		breakEven, cfg.Economics.DiscountRate*100)
	return nil
}
