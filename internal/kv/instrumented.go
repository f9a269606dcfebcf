package kv

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters/histograms for store operations.
type Metrics struct {
	opsTotal  *prometheus.CounterVec
	opLatency *prometheus.HistogramVec
	docBytes  *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esannidhi",
			Subsystem: "kv",
			Name:      "operations_total",
			Help:      "Total key-value store operations",
		}, []string{"op", "key", "status"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esannidhi",
			Subsystem: "kv",
			Name:      "operation_latency_seconds",
			Help:      "Latency of key-value store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		docBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "esannidhi",
			Subsystem: "kv",
			Name:      "document_bytes",
			Help:      "Size of the last document written per key",
		}, []string{"key"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.opsTotal, m.opLatency, m.docBytes)
	return m
}

func (m *Metrics) observe(op, key string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.opsTotal.WithLabelValues(op, key, status).Inc()
	m.opLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Instrument wraps a store so each call is counted and timed.
func Instrument(s Store, m *Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumentedStore{next: s, metrics: m}
}

type instrumentedStore struct {
	next    Store
	metrics *Metrics
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Get(ctx, key)
	s.metrics.observe("get", key, start, err)
	return data, err
}

func (s *instrumentedStore) Set(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, data)
	s.metrics.observe("set", key, start, err)
	if err == nil {
		s.metrics.docBytes.WithLabelValues(key).Set(float64(len(data)))
	}
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.metrics.observe("delete", key, start, err)
	if err == nil {
		s.metrics.docBytes.DeleteLabelValues(key)
	}
	return err
}

func (s *instrumentedStore) Keys(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := s.next.Keys(ctx)
	s.metrics.observe("keys", "*", start, err)
	return keys, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
