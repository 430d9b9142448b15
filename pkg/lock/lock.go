// Package lock provides short-lived, expiring locks that let several
// scheduler replicas agree on which one fires a scheduled workflow.
package lock

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Locker acquires a key for ttl. Locks are never released explicitly: the
// holder keeps the key until it expires.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Local is an in-process Locker for single-replica deployments and tests.
type Local struct {
	clock clock.PassiveClock

	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocal(clk clock.PassiveClock) *Local {
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Local{clock: clk, held: make(map[string]time.Time)}
}

func (l *Local) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	for k, expiry := range l.held {
		if !now.Before(expiry) {
			delete(l.held, k)
		}
	}

	if _, ok := l.held[key]; ok {
		return false, nil
	}

	l.held[key] = now.Add(ttl)

	return true, nil
}
