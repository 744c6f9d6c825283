package checkout

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker claims a customer's cart for the duration of one checkout attempt
// so two concurrent checkouts cannot both commit the same cart contents.
// Acquire returns a release func on success and ErrCheckoutInProgress when
// the claim is already held.
type Locker interface {
	Acquire(ctx context.Context, customerID int) (release func(), err error)
}

// MutexLocker is the in-process claim used by a single-instance deployment
// and by tests.
type MutexLocker struct {
	mu   sync.Mutex
	held map[int]bool
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{held: make(map[int]bool)}
}

func (l *MutexLocker) Acquire(_ context.Context, customerID int) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[customerID] {
		return nil, ErrCheckoutInProgress
	}
	l.held[customerID] = true
	return func() {
		l.mu.Lock()
		delete(l.held, customerID)
		l.mu.Unlock()
	}, nil
}

// RedisLocker claims the cart with SETNX so the claim holds across
// instances. The TTL keeps a crashed checkout from wedging the customer
// forever.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, customerID int) (func(), error) {
	key := "checkout:lock:" + strconv.Itoa(customerID)
	ok, err := l.rdb.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCheckoutInProgress
	}
	return func() {
		_ = l.rdb.Del(context.Background(), key).Err()
	}, nil
}
