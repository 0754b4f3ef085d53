package eventmock

import (
	"context"
	"sync"

	"tokenestate-backend/internal/domain/event"
)

var _ event.Publisher = (*Publisher)(nil)

// Publisher records every published batch. PublishFn, when set, decides the
// returned error.
type Publisher struct {
	PublishFn func(ctx context.Context, events []event.Event) error

	mu      sync.Mutex
	batches [][]event.Event
}

func New() *Publisher { return &Publisher{} }

func (p *Publisher) Publish(ctx context.Context, events []event.Event) error {
	p.mu.Lock()
	p.batches = append(p.batches, append([]event.Event(nil), events...))
	p.mu.Unlock()
	if p.PublishFn != nil {
		return p.PublishFn(ctx, events)
	}
	return nil
}

// Topics flattens all published batches into their topics, in order.
func (p *Publisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, b := range p.batches {
		for _, e := range b {
			out = append(out, e.Topic)
		}
	}
	return out
}

func (p *Publisher) Batches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func (p *Publisher) Reset() {
	p.mu.Lock()
	p.batches = nil
	p.mu.Unlock()
}
