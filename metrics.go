// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records race activity. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	races    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the race collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "attempt_outcomes_total",
			Help:      "Attempt outcomes received by the dispatcher, by operation and outcome category.",
		}, []string{"operation", "outcome"}),
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchestrator",
			Name:      "races_total",
			Help:      "Completed races by operation and result.",
		}, []string{"operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orchestrator",
			Name:      "race_duration_seconds",
			Help:      "Time from fan-out to the race being decided.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.races, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRace(kind Kind, stats RaceStats, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	op := kind.String()
	for cat, n := range stats.Categories {
		label := string(cat)
		if label == "" {
			label = "other"
		}
		m.attempts.WithLabelValues(op, label).Add(float64(n))
	}
	result := "success"
	if err != nil {
		m.races.WithLabelValues(op, "failure").Inc()
	} else {
		m.attempts.WithLabelValues(op, result).Inc()
		m.races.WithLabelValues(op, result).Inc()
	}
	m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}
