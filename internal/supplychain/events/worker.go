package events

import (
	"context"
	"time"
)

const deliveryTimeout = 10 * time.Second

// Worker drains an event channel into a sink until the channel is closed.
type Worker struct {
	sink      Sink
	inbox     <-chan Event
	delivered func(Event, error)
}

func NewWorker(sink Sink, inbox <-chan Event, delivered func(Event, error)) *Worker {
	return &Worker{sink: sink, inbox: inbox, delivered: delivered}
}

func (w *Worker) Run() {
	for event := range w.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		err := w.sink.Append(ctx, event)
		cancel()
		if w.delivered != nil {
			w.delivered(event, err)
		}
	}
}
