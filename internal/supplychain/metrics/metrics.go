// Package metrics exposes Prometheus instruments for the settlement engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics provides observability for the settlement engine. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	// Transactions by kind and outcome (ok or an error code)
	Transactions *prometheus.CounterVec

	TransactionLatency *prometheus.HistogramVec

	// Time spent waiting for contract and participant locks
	LockWait prometheus.Histogram

	Settlements    prometheus.Counter
	SettledAmount  prometheus.Counter
	LateDeliveries prometheus.Counter

	Readings prometheus.Counter

	// Lifecycle events by result: published, failed, dropped
	Events *prometheus.CounterVec
}

// New registers the engine metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coldchain_transactions_total",
			Help: "Submitted lifecycle transactions by kind and outcome",
		}, []string{"kind", "outcome"}),

		TransactionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coldchain_transaction_duration_seconds",
			Help:    "End-to-end duration of a lifecycle transaction including lock wait",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"kind"}),

		LockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coldchain_lock_wait_seconds",
			Help:    "Time spent acquiring contract and participant locks",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		Settlements: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_settlements_total",
			Help: "Contracts settled",
		}),

		SettledAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_settled_amount_total",
			Help: "Sum of settlement amounts",
		}),

		LateDeliveries: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_late_deliveries_total",
			Help: "Settlements whose delivery came after the contracted arrival time",
		}),

		Readings: f.NewCounter(prometheus.CounterOpts{
			Name: "coldchain_temperature_readings_total",
			Help: "Temperature readings accepted",
		}),

		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coldchain_events_total",
			Help: "Lifecycle events by delivery result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveTransaction(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(kind, outcome).Inc()
	m.TransactionLatency.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m != nil {
		m.LockWait.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementSettlement(amount decimal.Decimal, late bool) {
	if m == nil {
		return
	}
	m.Settlements.Inc()
	m.SettledAmount.Add(amount.InexactFloat64())
	if late {
		m.LateDeliveries.Inc()
	}
}

func (m *Metrics) IncrementReadings() {
	if m != nil {
		m.Readings.Inc()
	}
}

func (m *Metrics) IncrementEvents(result string) {
	if m != nil {
		m.Events.WithLabelValues(result).Inc()
	}
}
