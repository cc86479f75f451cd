package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	defaultStreamMaxLen  = 100000
)

// releaseScript deletes a reservation only while it still holds the caller's
// token, so an expired and re-reserved key is never released by the old holder.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

type RedisAdapter struct {
	client         *redis.Client
	idempotencyTTL time.Duration
	stream         string
}

func NewRedisAdapter(client *redis.Client, idempotencyTTL time.Duration, stream string) *RedisAdapter {
	return &RedisAdapter{
		client:         client,
		idempotencyTTL: idempotencyTTL,
		stream:         stream,
	}
}

func (r *RedisAdapter) Reserve(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, token, r.idempotencyTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("reserve %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisAdapter) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{idempotencyKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Publish appends a committed event to the market event stream.
func (r *RedisAdapter) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: defaultStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":    event.EventName(),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", event.EventName(), err)
	}
	return nil
}
