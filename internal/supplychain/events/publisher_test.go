package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldchain/internal/supplychain/metrics"
	id "coldchain/pkg/domain"
)

type failingSink struct{}

func (failingSink) Append(context.Context, Event) error { return errors.New("broker down") }

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	contractID := id.NewContractID()
	require.NoError(t, pub.Emit(context.Background(), Event{Kind: KindContractCreated, ContractID: contractID}))

	events, err := pub.List(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, KindContractCreated, events[0].Kind)
	assert.NotEqual(t, events[0].ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	contractID := id.NewContractID()
	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), Event{Kind: KindReadingRecorded, ContractID: contractID}))
	}
	pub.Close()

	events, err := store.ListByContract(context.Background(), contractID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()
	err := pub.Emit(context.Background(), Event{Kind: KindContractSettled})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFullDrops(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) error {
		<-block
		return nil
	})
	pub := NewPublisher(sink, WithAsyncBuffer(1), WithMetrics(m))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(pub.Emit(context.Background(), Event{Kind: KindReadingRecorded}), ErrBufferFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(block)
	pub.Close()

	assert.Positive(t, full)
	assert.Equal(t, float64(full), promtest.ToFloat64(m.Events.WithLabelValues("dropped")))
}

func TestPublisher_SetsTimestampOnlyWhenMissing(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	contractID := id.NewContractID()
	custom := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), Event{Kind: KindShipmentCreated, ContractID: contractID}))
	require.NoError(t, pub.Emit(context.Background(), Event{Kind: KindShipmentDispatched, ContractID: contractID, Timestamp: custom}))

	events, err := store.ListByContract(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.Equal(t, custom, events[1].Timestamp)
}

func TestPublisher_SinkFailureIsCounted(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	pub := NewPublisher(failingSink{}, WithMetrics(m))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{Kind: KindContractSettled})
	require.Error(t, err)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Events.WithLabelValues("failed")))

	_, err = pub.List(context.Background(), id.NewContractID())
	assert.Error(t, err, "failing sink is not queryable")
}

func TestFanoutContinuesPastFailure(t *testing.T) {
	store := NewInMemoryStore()
	contractID := id.NewContractID()
	err := Fanout{failingSink{}, store}.Append(context.Background(), Event{Kind: KindInvoiceGenerated, ContractID: contractID})
	require.Error(t, err)

	events, _ := store.ListByContract(context.Background(), contractID)
	assert.Len(t, events, 1)
}

type sinkFunc func(context.Context, Event) error

func (f sinkFunc) Append(ctx context.Context, e Event) error { return f(ctx, e) }

func TestPublisher_HistoryReadableBeforeDrain(t *testing.T) {
	history := NewInMemoryStore()
	block := make(chan struct{})
	slow := sinkFunc(func(context.Context, Event) error {
		<-block
		return nil
	})
	pub := NewPublisher(slow, WithAsyncBuffer(4), WithHistory(history))

	contractID := id.NewContractID()
	require.NoError(t, pub.Emit(context.Background(), Event{Kind: KindShipmentDelivered, ContractID: contractID}))

	events, err := pub.List(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, KindShipmentDelivered, events[0].Kind)

	close(block)
	pub.Close()
}
