// Package app wires configuration, logging, metrics and the optimizer into
// a runnable service.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/nordbess/bessopt/config"
	coremetrics "github.com/nordbess/bessopt/core/metrics"
	"github.com/nordbess/bessopt/core/model"
	"github.com/nordbess/bessopt/core/optimizer"
	"github.com/nordbess/bessopt/core/tariff"
	"github.com/nordbess/bessopt/infra/logger"
	"github.com/nordbess/bessopt/infra/metrics"
	"github.com/nordbess/bessopt/infra/series"
	"github.com/nordbess/bessopt/pkg/export"
)

// Service runs dispatch optimizations from a loaded configuration.
type Service struct {
	cfg         *config.Config
	log         logger.Logger
	sink        coremetrics.MetricsSink
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	return &Service{
		cfg:         cfg,
		log:         logg,
		sink:        sink,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Sink exposes the configured metrics sink.
func (s *Service) Sink() coremetrics.MetricsSink { return s.sink }

// LoadSeries reads the configured input series.
func (s *Service) LoadSeries() (model.TimeSeriesInput, error) {
	if s.cfg.Input.SeriesPath == "" {
		return model.TimeSeriesInput{}, fmt.Errorf("input.series_path is not configured")
	}
	return series.LoadCSV(s.cfg.Input.SeriesPath)
}

// States builds the initial battery and tariff state for a run starting at
// the series' first timestamp.
func (s *Service) States(in model.TimeSeriesInput) (model.BatteryState, tariff.State, error) {
	table, err := s.cfg.Tariff.Table()
	if err != nil {
		return model.BatteryState{}, tariff.State{}, err
	}
	ts := tariff.NewState(table, s.cfg.Tariff.TimeOfUse(), in.Timestamps[0])
	return s.cfg.Battery.State(), *ts, nil
}

// Optimizer builds the configured optimizer mode around the given states.
func (s *Service) Optimizer(bat model.BatteryState, ts tariff.State) optimizer.Optimizer {
	deg := s.cfg.Degradation.Model()
	if s.cfg.Optimizer.Mode == "rolling" {
		return optimizer.NewRecedingHorizonOptimizer(s.cfg.Optimizer.Config, deg, bat, ts, s.log, s.sink)
	}
	return optimizer.NewBlockOptimizer(s.cfg.Optimizer.Config, deg, bat, ts, s.log, s.sink)
}

// Run executes one optimization over the configured input and writes the
// trajectory if an output path is set.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	in, err := s.LoadSeries()
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	bat, ts, err := s.States(in)
	if err != nil {
		return err
	}
	opt := s.Optimizer(bat, ts)
	res, err := opt.Optimize(ctx, in)
	if err != nil {
		// The partial trajectory computed so far is still reported.
		s.log.Errorf("optimization halted after %d committed steps: %v", res.Steps(), err)
		return err
	}

	s.log.Infof("optimization finished: %d steps, energy %.2f NOK, tariff %.2f NOK, degradation %.2f NOK, peak %.2f kW",
		res.Steps(), res.EnergyCostNOK, res.TariffCostNOK, res.DegradationNOK, res.PeakKW)

	if s.cfg.Input.OutputPath != "" {
		f, err := os.Create(s.cfg.Input.OutputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, res); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		s.log.Infof("trajectory written to %s", s.cfg.Input.OutputPath)
	}
	return nil
}
