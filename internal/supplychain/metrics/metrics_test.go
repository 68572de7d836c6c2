package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransaction("FundsApproval", "ok", time.Millisecond)
	m.ObserveTransaction("FundsApproval", "invalid_transition", time.Millisecond)
	m.IncrementSettlement(decimal.NewFromInt(700), false)
	m.IncrementSettlement(decimal.Zero, true)
	m.IncrementEvents("dropped")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("FundsApproval", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Settlements))
	assert.Equal(t, 700.0, testutil.ToFloat64(m.SettledAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LateDeliveries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("dropped")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransaction("PurchaseOrder", "ok", time.Second)
		m.ObserveLockWait(time.Second)
		m.IncrementSettlement(decimal.NewFromInt(1), true)
		m.IncrementReadings()
		m.IncrementEvents("published")
	})
}
