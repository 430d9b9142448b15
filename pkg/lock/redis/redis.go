// Package redis implements lock.Locker on Redis with SET NX PX.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "launchflow:lock:"

type Locker struct {
	client goredis.UniversalClient
	prefix string
	owner  string
}

// NewLocker returns a locker whose keys are stored under prefix. An empty
// prefix selects "launchflow:lock:".
func NewLocker(client goredis.UniversalClient, prefix string) *Locker {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Locker{client: client, prefix: prefix, owner: uuid.NewString()}
}

// NewClient parses a redis:// URL.
func NewClient(redisURL string) (*goredis.Client, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return goredis.NewClient(options), nil
}

// TryLock sets the key only if it is absent; the key expires after ttl.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return ok, nil
}

// Owner identifies this locker's holds in Redis.
func (l *Locker) Owner() string {
	return l.owner
}
