package otp

import (
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts OTP outcomes by purpose.
type Metrics struct {
	events *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esannidhi",
			Subsystem: "otp",
			Name:      "events_total",
			Help:      "OTP codes generated, verified, rejected, expired or locked after repeated misses",
		}, []string{"outcome", "purpose"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.events)
	return m
}

func (m *Metrics) observe(outcome string, purpose models.OTPPurpose) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(outcome, string(purpose)).Inc()
}
