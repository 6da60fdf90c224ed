package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:"

// claimScript deletes the key only when the stored code matches, making
// compare-and-delete atomic across every process sharing the Redis instance.
var claimScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares live codes between instances and lets Redis enforce the
// TTL.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+email, code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *RedisStore) Claim(ctx context.Context, email, code string) (bool, error) {
	n, err := claimScript.Run(ctx, s.client, []string{redisKeyPrefix + email}, code).Int()
	if err != nil {
		return false, fmt.Errorf("claim otp: %w", err)
	}
	return n == 1, nil
}
