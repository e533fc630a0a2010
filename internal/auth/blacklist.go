package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-inventory-api.git/internal/redisx"
)

// Blacklist invalidates tokens before their natural expiry. Add is idempotent:
// blacklisting an already-blacklisted token is a no-op, not an error.
type Blacklist interface {
	Add(ctx context.Context, token, userID string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type RedisBlacklist struct {
	RDB *redis.Client
}

func (b *RedisBlacklist) Add(ctx context.Context, token, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		// token sudah expired, tidak perlu disimpan
		return nil
	}
	key := fmt.Sprintf(redisx.KeyBlacklistToken, token)
	return b.RDB.Set(ctx, key, userID, ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return redisx.Exists(ctx, b.RDB, fmt.Sprintf(redisx.KeyBlacklistToken, token))
}

// MemoryBlacklist backs tests and single-node dev runs.
type MemoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{tokens: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Add(_ context.Context, token, _ string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(b.tokens, token)
		return false, nil
	}
	return true, nil
}
