package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nordbess/bessopt/app"
	"github.com/nordbess/bessopt/config"
	"github.com/nordbess/bessopt/core/sweep"
	"github.com/nordbess/bessopt/infra/logger"
)

var sweepCapacities []float64

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate multiple battery sizes concurrently",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().Float64SliceVar(&sweepCapacities, "capacities", nil, "battery capacities in kWh to evaluate")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(sweepCapacities) == 0 {
		return fmt.Errorf("at least one capacity is required")
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("sweep")

	in, err := svc.LoadSeries()
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	baseBat, ts, err := svc.States(in)
	if err != nil {
		return err
	}

	scenarios := make([]sweep.Scenario, len(sweepCapacities))
	for i, capKWh := range sweepCapacities {
		bat := baseBat
		// Power scales with capacity, keeping the configured C-rate.
		if baseBat.CapacityKWh > 0 {
			bat.PowerLimitKW = baseBat.PowerLimitKW * capKWh / baseBat.CapacityKWh
		}
		bat.CapacityKWh = capKWh
		bat.EnergyKWh = cfg.Battery.InitialSoC * capKWh
		scenarios[i] = sweep.Scenario{
			Name:        fmt.Sprintf("%.0fkwh", capKWh),
			Battery:     bat,
			Tariff:      ts,
			Degradation: cfg.Degradation.Model(),
			Config:      cfg.Optimizer.Config,
			Rolling:     cfg.Optimizer.Mode == "rolling",
		}
	}

	runner := sweep.Runner{Workers: runtime.NumCPU(), Log: logg, Sink: svc.Sink()}
	results := runner.Run(ctx, in, scenarios)
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		logg.Infof("%s: total %.2f NOK (energy %.2f, tariff %.2f, degradation %.2f), peak %.2f kW",
			res.Name, res.Dispatch.TotalCostNOK(), res.Dispatch.EnergyCostNOK,
			res.Dispatch.TariffCostNOK, res.Dispatch.DegradationNOK, res.Dispatch.PeakKW)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}
