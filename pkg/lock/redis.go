package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "rentabook:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps leases as expiring Redis keys, shared by every service replica.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedis returns a Locker backed by Redis leases of the given ttl.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Polling {
	return NewPolling(NewRedisStore(client), ttl, DefaultPollInterval)
}

func (s *RedisStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, redisKeyPrefix+key, owner, ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key, owner string) error {
	return releaseScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, owner).Err()
}
