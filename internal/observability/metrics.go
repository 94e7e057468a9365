package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	LoginSucceeded   = "success"
	LoginRejected    = "invalid_credentials"
	LoginNotActive   = "not_activated"
	LoginFailedError = "error"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordLogin(ctx context.Context, outcome string)
	RecordAuthorization(ctx context.Context, granted bool)
	RecordTokenValidation(ctx context.Context, valid bool)
}

// PrometheusMetrics is the Prometheus-backed Metrics implementation.
type PrometheusMetrics struct {
	logins      *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewPrometheusMetrics registers the counters on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauth2",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauth2",
			Name:      "authorization_decisions_total",
			Help:      "Authority checks by decision",
		}, []string{"decision"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oauth2",
			Name:      "token_validations_total",
			Help:      "Access token validations by result",
		}, []string{"result"}),
	}
}

func (m *PrometheusMetrics) RecordLogin(_ context.Context, outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) RecordAuthorization(_ context.Context, granted bool) {
	decision := "granted"
	if !granted {
		decision = "denied"
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *PrometheusMetrics) RecordTokenValidation(_ context.Context, valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.validations.WithLabelValues(result).Inc()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordLogin(context.Context, string)         {}
func (NopMetrics) RecordAuthorization(context.Context, bool)   {}
func (NopMetrics) RecordTokenValidation(context.Context, bool) {}
