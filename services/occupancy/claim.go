package occupancy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClaimLocker serializes check-then-write sequences on a single spot.
type ClaimLocker interface {
	// Claim takes the spot's claim and returns the function releasing it.
	Claim(ctx context.Context, spotID string) (release func(), err error)
}

// releaseScript deletes the claim only if it still carries our token, so an
// expired claim re-taken by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript pushes the claim's expiry out while it still carries our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisClaimLocker implements ClaimLocker with SET NX PX keys. A held claim
// is refreshed every TTL/3 until released, so it only lapses when its holder
// stops running.
type RedisClaimLocker struct {
	Client *redis.Client
	TTL    time.Duration
	// Attempts before giving up with ErrClaimBusy, spaced by RetryDelay.
	Attempts   int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func NewRedisClaimLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisClaimLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisClaimLocker{
		Client:     client,
		TTL:        ttl,
		Attempts:   5,
		RetryDelay: 50 * time.Millisecond,
		Logger:     logger,
	}
}

func claimKey(spotID string) string {
	return "spotclaim:" + spotID
}

func (l *RedisClaimLocker) Claim(ctx context.Context, spotID string) (func(), error) {
	key := claimKey(spotID)
	token := uuid.New().String()

	attempts := l.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrClaimBusy, ctx.Err())
			}
			return nil, fmt.Errorf("%w: claim %s: %v", ErrStoreUnavailable, spotID, err)
		}
		if ok {
			return l.hold(key, token), nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrClaimBusy, ctx.Err())
		case <-time.After(l.RetryDelay):
		}
	}
	return nil, ErrClaimBusy
}

// hold starts refreshing a freshly taken claim and returns its release func.
func (l *RedisClaimLocker) hold(key, token string) func() {
	stop := make(chan struct{})
	go l.keepAlive(key, token, stop)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			l.release(key, token)
		})
	}
}

func (l *RedisClaimLocker) keepAlive(key, token string, stop <-chan struct{}) {
	interval := l.TTL / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := refreshScript.Run(ctx, l.Client, []string{key}, token, l.TTL.Milliseconds()).Int64()
			cancel()
			if err != nil {
				l.logger().Warn("Failed to refresh spot claim", zap.String("key", key), zap.Error(err))
				continue
			}
			if n == 0 {
				l.logger().Warn("Spot claim lapsed while held", zap.String("key", key))
				return
			}
		}
	}
}

func (l *RedisClaimLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		l.logger().Warn("Failed to release spot claim; it will lapse on its TTL",
			zap.String("key", key), zap.Error(err))
	}
}

func (l *RedisClaimLocker) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// LocalClaimLocker is a ClaimLocker for a single process. The zero value is
// ready to use.
type LocalClaimLocker struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func NewLocalClaimLocker() *LocalClaimLocker {
	return &LocalClaimLocker{}
}

func (l *LocalClaimLocker) Claim(_ context.Context, spotID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claims == nil {
		l.claims = map[string]struct{}{}
	}
	if _, held := l.claims[spotID]; held {
		return nil, ErrClaimBusy
	}
	l.claims[spotID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.claims, spotID)
			l.mu.Unlock()
		})
	}, nil
}
