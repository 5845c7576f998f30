package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records mutation outcomes on the transaction ledger.
type LedgerMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	allocated *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_mutation_duration_seconds",
		Help:    "Duration of ledger mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutation_success",
		Help: "Successful ledger mutations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutation_failure",
		Help: "Failed ledger mutations.",
	}, []string{"operation", "code"})
	allocated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_units_allocated",
		Help: "Units linked to batches or order lines by the allocation engine.",
	}, []string{"target"})
	reg.MustRegister(duration, success, failure, allocated)
	return &LedgerMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		allocated: allocated,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *LedgerMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *LedgerMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (m *LedgerMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// AddAllocated counts units linked to the given target kind (batch or order_line).
func (m *LedgerMetrics) AddAllocated(target string, units int) {
	if m == nil || m.allocated == nil || units <= 0 {
		return
	}
	m.allocated.WithLabelValues(normalizeLabel(target)).Add(float64(units))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
