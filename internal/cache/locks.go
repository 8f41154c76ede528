package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sunbird/internal/apperrors"
)

// BookingLocker serializes payment side-effects per booking: only one writer
// may capture/void/refund at a time, the loser is rejected outright.
type BookingLocker struct {
	client  *redis.Client
	lockTTL time.Duration
}

type Config struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

func NewBookingLocker(cfg Config) (*BookingLocker, error) {
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &BookingLocker{client: rdb, lockTTL: cfg.LockTTL}, nil
}

// Acquire takes the per-booking lock. The returned release func deletes the
// lock only if this caller still owns it; the TTL protects against a crashed
// holder. If the lock is already held, ErrConcurrentAction is returned: the
// losing writer must not retry blindly, current state decides what is legal.
func (l *BookingLocker) Acquire(ctx context.Context, bookingID int64) (func(), error) {
	key := fmt.Sprintf("booking:lock:%d", bookingID)
	owner := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, owner, l.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrConcurrentAction
	}

	release := func() {
		// Compare-and-delete so an expired lock taken over by another
		// writer is never released from here.
		const script = `
			if redis.call("GET", KEYS[1]) == ARGV[1] then
				return redis.call("DEL", KEYS[1])
			end
			return 0`
		l.client.Eval(context.WithoutCancel(ctx), script, []string{key}, owner)
	}

	return release, nil
}

func (l *BookingLocker) Close() error {
	return l.client.Close()
}
