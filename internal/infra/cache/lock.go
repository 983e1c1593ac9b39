package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("lock is held by another instance")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLocker is a gocron.Locker backed by redis SET NX PX. Only one replica
// runs a given sweep at a time; the others skip that tick.
type SweepLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSweepLocker(rdb *redis.Client, prefix string, ttl time.Duration) *SweepLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SweepLocker{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *SweepLocker) Lock(ctx context.Context, key string) (gocron.Lock, error) {
	token := uuid.NewString()
	full := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, full, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &sweepLock{rdb: l.rdb, key: full, token: token}, nil
}

type sweepLock struct {
	rdb   *redis.Client
	key   string
	token string
}

func (l *sweepLock) Unlock(ctx context.Context) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}
