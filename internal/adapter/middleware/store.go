package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// replayRecord is what the store keeps per (method, route, principal, request id).
type replayRecord struct {
	Pending   bool      `json:"pending"`
	Status    int       `json:"status,omitempty"`
	Response  []byte    `json:"response,omitempty"`
	BodyHash  string    `json:"body_hash"`
	RequestID string    `json:"request_id"`
	SentAtMS  int64     `json:"sent_at_ms"`
	StoredAt  time.Time `json:"stored_at"`
}

func (r replayRecord) complete() bool { return !r.Pending && r.Status != 0 && len(r.Response) > 0 }

type replayStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func replayKey(method, route, principal, requestID string) string {
	return strings.Join([]string{"idemp", "te", strings.ToLower(method), route, principal, requestID}, ":")
}

// claim stores a pending record unless one exists. It reports whether the
// caller now owns the key.
func (s replayStore) claim(ctx context.Context, key string, rec replayRecord) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, raw, pendingTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayRecord, error) {
	var rec replayRecord
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(raw, &rec)
	return rec, err
}

func (s replayStore) finish(ctx context.Context, key string, rec replayRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, s.ttl).Err()
}

// release drops a pending claim so a failed request can be retried.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
