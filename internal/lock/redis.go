package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/akhdanfadh/momosync/internal/logger"
)

const (
	defaultKeyPrefix = "momosync:lock:"
	defaultTTL       = 30 * time.Second
	defaultRetryWait = 100 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a holder
// whose TTL expired cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every process using the same Redis instance.
//
// The lock is a key set with NX and a TTL. The TTL bounds how long a crashed
// holder can block others; a run that outlives it is no longer protected.
type Redis struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
	logger    logger.Logger
}

// RedisOption configures the Redis locker.
type RedisOption func(*Redis)

// WithTTL sets the lock expiry.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = d
	}
}

// WithRetryWait sets the polling interval while the lock is taken.
func WithRetryWait(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.retryWait = d
	}
}

// WithKeyPrefix sets the prefix of lock keys.
func WithKeyPrefix(p string) RedisOption {
	return func(r *Redis) {
		r.prefix = p
	}
}

// WithLogger sets the logger for lock contention messages.
func WithLogger(l logger.Logger) RedisOption {
	return func(r *Redis) {
		r.logger = l
	}
}

// NewRedis creates a Redis-backed Locker using client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client:    client,
		prefix:    defaultKeyPrefix,
		ttl:       defaultTTL,
		retryWait: defaultRetryWait,
		logger:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DialRedis parses redisURL, verifies the connection and returns a Locker.
func DialRedis(ctx context.Context, redisURL string, opts ...RedisOption) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedis(client, opts...), nil
}

// Close closes the underlying Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Lock polls until key is acquired or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	waiting := false
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %q: %w", key, err)
		}
		if ok {
			break
		}
		if !waiting {
			r.logger.Info("lock %q is held by another run, waiting...", key)
			waiting = true
		}

		timer := time.NewTimer(r.retryWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	unlock := func() {
		// release even if the caller's ctx is already cancelled
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.release(ctx, redisKey, token); err != nil {
			r.logger.Warn("releasing lock %q: %v", key, err)
		}
	}
	return unlock, nil
}

func (r *Redis) release(ctx context.Context, redisKey, token string) error {
	n, err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}
