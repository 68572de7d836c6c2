package events

import (
	"context"
	"errors"
	"log/slog"

	"coldchain/pkg/platform/circuit"
)

// ErrCircuitOpen is returned while the breaker guarding a sink is open.
var ErrCircuitOpen = errors.New("event sink circuit open")

// GuardedSink stops calling a failing sink until the breaker lets a probe
// through. Events rejected while open count as failed deliveries.
type GuardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSink{sink: sink, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Append(ctx context.Context, event Event) error {
	if !g.breaker.Allow() {
		return ErrCircuitOpen
	}
	if err := g.sink.Append(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "event sink circuit opened", "breaker", g.breaker.Name(), "error", err)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "event sink circuit closed", "breaker", g.breaker.Name())
	}
	return nil
}
