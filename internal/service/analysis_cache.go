package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"cocreate-match/internal/domain"
)

// DefaultAnalysisTTL es la vigencia de un analisis cacheado.
const DefaultAnalysisTTL = 30 * 24 * time.Hour

// AnalysisCache guarda payloads de analisis por par y tipo. La clave se
// canonicaliza via PairKey, asi una escritura es visible bajo ambos ordenes
// del par. Una entrada expirada equivale a ausente, no a stale.
type AnalysisCache interface {
	Put(ctx context.Context, pair domain.PairKey, analysisType string, payload []byte) error
	Get(ctx context.Context, pair domain.PairKey, analysisType string) ([]byte, bool, error)
}

type memoryAnalysisCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryAnalysisEntry
}

type memoryAnalysisEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryAnalysisCache crea un cache en memoria para tests y desarrollo.
func NewMemoryAnalysisCache(ttl time.Duration) AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return &memoryAnalysisCache{
		ttl:   ttl,
		items: make(map[string]memoryAnalysisEntry),
	}
}

func cacheKey(pair domain.PairKey, analysisType string) string {
	return pair.String() + ":" + analysisType
}

func (c *memoryAnalysisCache) Put(_ context.Context, pair domain.PairKey, analysisType string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(pair, analysisType)] = memoryAnalysisEntry{
		payload:   payload,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
	return nil
}

func (c *memoryAnalysisCache) Get(_ context.Context, pair domain.PairKey, analysisType string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(pair, analysisType)
	entry, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return entry.payload, true, nil
}

type redisAnalysisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisAnalysisCache crea el cache respaldado en Redis con TTL nativo.
func NewRedisAnalysisCache(client *redis.Client, ttl time.Duration) AnalysisCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return &redisAnalysisCache{
		client: client,
		prefix: "analysis:",
		ttl:    ttl,
	}
}

func (c *redisAnalysisCache) Put(ctx context.Context, pair domain.PairKey, analysisType string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.client.Set(ctx, c.prefix+cacheKey(pair, analysisType), payload, c.ttl).Err()
}

func (c *redisAnalysisCache) Get(ctx context.Context, pair domain.PairKey, analysisType string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := c.client.Get(ctx, c.prefix+cacheKey(pair, analysisType)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
