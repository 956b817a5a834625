// Package metrics records configuration boot outcomes.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder observes one boot attempt. violations is the number of failed
// constraints when validation was the cause, and zero otherwise.
type Recorder interface {
	ObserveBoot(schema string, elapsed time.Duration, violations int, err error)
}

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveBoot(string, time.Duration, int, error) {}

// Prometheus exports boot outcomes as Prometheus metrics.
type Prometheus struct {
	boots      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	violations *prometheus.CounterVec
}

// NewPrometheus registers the boot metrics on reg. Registering twice on the
// same registry reuses the collectors already there.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		boots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_boot_total",
				Help: "Configuration boot attempts, labeled by schema and result.",
			},
			[]string{"schema", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "config_boot_duration_seconds",
				Help:    "Time spent loading, binding and validating configuration.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"schema"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_validation_violations_total",
				Help: "Constraint violations reported by failed boots.",
			},
			[]string{"schema"},
		),
	}

	var err error
	if p.boots, err = register(reg, p.boots); err != nil {
		return nil, err
	}
	if p.duration, err = register(reg, p.duration); err != nil {
		return nil, err
	}
	if p.violations, err = register(reg, p.violations); err != nil {
		return nil, err
	}
	return p, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (p *Prometheus) ObserveBoot(schema string, elapsed time.Duration, violations int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	p.boots.WithLabelValues(schema, result).Inc()
	p.duration.WithLabelValues(schema).Observe(elapsed.Seconds())
	if violations > 0 {
		p.violations.WithLabelValues(schema).Add(float64(violations))
	}
}
