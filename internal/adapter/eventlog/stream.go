// Package eventlog forwards committed domain events to a Redis stream.
package eventlog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tokenestate-backend/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

const DefaultStream = "tokenestate:events"

// StreamPublisher appends each event as one XADD entry. The stream is capped
// approximately at MaxLen entries when MaxLen > 0.
type StreamPublisher struct {
	rdb     redis.Cmdable
	stream  string
	maxLen  int64
	timeout time.Duration
}

func NewStreamPublisher(rdb redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{rdb: rdb, stream: stream, maxLen: maxLen, timeout: 2 * time.Second}
}

func (p *StreamPublisher) Stream() string { return p.stream }

// Publish writes the batch in one pipeline, preserving order.
func (p *StreamPublisher) Publish(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	pipe := p.rdb.Pipeline()
	for _, e := range events {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: p.maxLen > 0,
			Values: map[string]any{
				"ref":        e.Ref,
				"topic":      e.Topic,
				"subject_id": strconv.FormatUint(e.SubjectID, 10),
				"payload":    string(e.Payload),
				"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
