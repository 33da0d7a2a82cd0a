package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"exelix/internal/domain"
)

const (
	throttleKeyPrefix = "throttle:"
	throttleMarkTTL   = 24 * time.Hour
)

// claimScript is a compare-and-set on the stored unix-millis mark.
// ARGV: now millis, min delay millis, ttl millis.
var claimScript = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
local now = tonumber(ARGV[1])
if last then
	if now - tonumber(last) < tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

type redisThrottleRepository struct {
	redis redis.Cmdable
	ttl   time.Duration
}

// NewRedisThrottleRepository keeps marks for a day; anything older is outside every send delay.
func NewRedisThrottleRepository(client redis.Cmdable) ThrottleRepository {
	return &redisThrottleRepository{redis: client, ttl: throttleMarkTTL}
}

func (r *redisThrottleRepository) LastSentAt(ctx context.Context, key domain.ThrottleKey) (*time.Time, error) {
	raw, err := r.redis.Get(ctx, throttleKeyPrefix+key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	at := time.UnixMilli(millis)
	return &at, nil
}

func (r *redisThrottleRepository) Claim(ctx context.Context, key domain.ThrottleKey, at time.Time, minDelay time.Duration) (bool, error) {
	ttl := r.ttl
	if minDelay > ttl {
		ttl = minDelay
	}

	claimed, err := claimScript.Run(ctx, r.redis,
		[]string{throttleKeyPrefix + key.String()},
		at.UnixMilli(), minDelay.Milliseconds(), ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return claimed == 1, nil
}
