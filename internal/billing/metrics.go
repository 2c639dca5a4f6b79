package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts reconciliation and cancellation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	reconcile *prometheus.CounterVec
	cancel    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		reconcile: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepwise",
			Name:      "reconcile_total",
			Help:      "Subscription reconciliations by outcome.",
		}, []string{"outcome"}),
		cancel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepwise",
			Name:      "subscription_cancel_total",
			Help:      "Subscription cancel requests by reported status.",
		}, []string{"status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stepwise",
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of payment provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	var err error
	if m.reconcile, err = registerCounter(reg, m.reconcile); err != nil {
		return nil, err
	}
	if m.cancel, err = registerCounter(reg, m.cancel); err != nil {
		return nil, err
	}
	if err := reg.Register(m.latency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register billing metric: %w", err)
		}
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			m.latency = existing
		}
	}
	return m, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register billing metric: %w", err)
		}
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return c, nil
}

// Reconcile outcomes.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "provider_error"
)

func (m *Metrics) RecordReconcile(outcome string) {
	if m == nil {
		return
	}
	m.reconcile.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCancel(status CancelStatus) {
	if m == nil {
		return
	}
	m.cancel.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveProvider(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
