package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/nordbess/bessopt/core/metrics"
)

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective *prometheus.GaugeVec
	peak      *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Already
// registered collectors are reused.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_solves_total",
		Help: "Total number of window solves",
	}, []string{"mode", "solved"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_solve_duration_seconds",
		Help:    "Wall time of one LP window solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	objective := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimizer_window_objective_nok",
		Help: "Objective value of the last solved window",
	}, []string{"mode"})
	peak := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimizer_window_peak_kw",
		Help: "Peak grid import of the last solved window",
	}, []string{"mode"})

	for _, c := range []struct {
		col  prometheus.Collector
		keep func(prometheus.Collector)
	}{
		{solves, func(c prometheus.Collector) { solves = c.(*prometheus.CounterVec) }},
		{duration, func(c prometheus.Collector) { duration = c.(*prometheus.HistogramVec) }},
		{objective, func(c prometheus.Collector) { objective = c.(*prometheus.GaugeVec) }},
		{peak, func(c prometheus.Collector) { peak = c.(*prometheus.GaugeVec) }},
	} {
		if err := reg.Register(c.col); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				c.keep(are.ExistingCollector)
			} else {
				return nil, err
			}
		}
	}

	return &PromSink{solves: solves, duration: duration, objective: objective, peak: peak}, nil
}

// RecordSolve updates the solve counter, duration histogram and last-window
// gauges.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(rec.Mode, strconv.FormatBool(rec.Solved)).Inc()
	s.duration.WithLabelValues(rec.Mode).Observe(rec.Duration.Seconds())
	if rec.Solved {
		s.objective.WithLabelValues(rec.Mode).Set(rec.Objective)
		s.peak.WithLabelValues(rec.Mode).Set(rec.PeakKW)
	}
	return nil
}
