package audit

import (
	"context"

	"marksman/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and writes
// through the storage layer so tests can swap sinks easily. When an outbox is
// configured, events are also handed to the background worker for external
// publication; the outbox is best-effort and never blocks the caller.
type Publisher struct {
	store  Store
	outbox chan<- Event
}

// NewPublisher builds a publisher. A nil outbox disables external fan-out.
func NewPublisher(store Store, outbox chan<- Event) *Publisher {
	return &Publisher{store: store, outbox: outbox}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.outbox != nil {
		select {
		case p.outbox <- event:
		default:
			// Full outbox drops the external copy; the store keeps the
			// authoritative trail.
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, subject string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject)
}
