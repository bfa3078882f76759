package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the degraded-session store. The
// TTL on the key doubles as the reconciliation window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "rampgate:degraded:",
	}
}

// RecordDegraded stores the degraded-session record with expiration.
func (s *RedisStore) RecordDegraded(ctx context.Context, sessionID string, record core.DegradedRecord, ttl time.Duration) error {
	key := s.prefix + sessionID

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode degraded record: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// GetDegraded looks up a degraded-session record by session id.
func (s *RedisStore) GetDegraded(ctx context.Context, sessionID string) (core.DegradedRecord, bool, error) {
	key := s.prefix + sessionID

	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.DegradedRecord{}, false, nil
		}
		return core.DegradedRecord{}, false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var record core.DegradedRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return core.DegradedRecord{}, false, fmt.Errorf("failed to decode degraded record: %w", err)
	}
	return record, true, nil
}
