package audit

import (
	"context"
	"log/slog"
)

// Sink publishes audit events to an external system (Kafka in production).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker consumes audit events from the outbox channel and forwards them to
// the sink. Sink failures are logged, not fatal; the in-process store already
// holds the event.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "audit sink publish failed",
					"action", event.Action,
					"subject", event.Subject,
					"error", err,
				)
			}
		}
	}
}
