package wishing

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// guardTTL keeps a claim past midnight in every time zone
const guardTTL = 48 * time.Hour

// Guard remembers which birthdays were already wished on a given day
type Guard interface {
	// Claim reports false when key was claimed before
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryGuard keeps claims in process memory
type MemoryGuard struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (g *MemoryGuard) Claim(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, at := range g.claims {
		if now.Sub(at) > guardTTL {
			delete(g.claims, k)
		}
	}

	if _, ok := g.claims[key]; ok {
		return false, nil
	}
	g.claims[key] = now
	return true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claims, key)
	return nil
}

// RedisGuard keeps claims in Redis so they survive restarts and are shared between replicas
type RedisGuard struct {
	client *redis.Client
	prefix string
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client, prefix: "remind-candles:wished:"}
}

func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, g.prefix+key, time.Now().Unix(), guardTTL).Result()
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.prefix+key).Err()
}
