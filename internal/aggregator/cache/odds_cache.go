package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

const (
	// Expiração lógica do snapshot; re-derivada a cada leitura
	TTL = 60 * time.Second
	// Folga sobre a expiração dura do Redis: a checagem por timestamp
	// sempre dispara antes do próprio Redis descartar a chave
	expiryBuffer = 5 * time.Second

	KeyLiveOdds = "live_odds"
)

// ErrUnavailable indica que o cache está em modo degradado
// Chamadores tratam o cache como otimização, nunca como dependência de correção
var ErrUnavailable = errors.New("odds cache unavailable")

// Cache é o cache de frescor dos snapshots de odds
// Se o Redis estiver fora do ar na inicialização, a instância fica
// permanentemente indisponível: Get reporta miss e Set/Invalidate falham
// sem derrubar o request
type Cache struct {
	rdb       *redis.Client
	log       *zap.Logger
	available bool
	now       func() time.Time
}

// New valida a conexão com um ping; falha deixa o cache em modo degradado
func New(rdb *redis.Client, log *zap.Logger) *Cache {
	c := &Cache{rdb: rdb, log: log, now: time.Now}

	if rdb == nil {
		log.Warn("redis client not configured, caching disabled")
		return c
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, caching disabled", zap.Error(err))
		return c
	}

	c.available = true
	return c
}

// Available reporta se o cache saiu do modo degradado na inicialização
func (c *Cache) Available() bool { return c.available }

// Get retorna o snapshot e se existe entrada ainda válida
// Entrada mais velha que o TTL é tratada como miss mesmo que o Redis
// ainda não tenha expirado a chave (tolera entradas de processo anterior)
func (c *Cache) Get(ctx context.Context, key string) ([]dto.SimplifiedOdds, bool) {
	if !c.available {
		return nil, false
	}

	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var entry dto.CacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		c.log.Warn("cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	if Stale(entry.CachedAt, c.now()) {
		return nil, false
	}

	return entry.Data, true
}

// Set grava o snapshot com timestamp de captura
// Refresh sempre substitui a entrada inteira; não há update parcial
func (c *Cache) Set(ctx context.Context, key string, data []dto.SimplifiedOdds) error {
	if !c.available {
		return ErrUnavailable
	}

	entry := dto.CacheEntry{Data: data, CachedAt: c.now().UTC()}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := c.rdb.Set(ctx, key, b, TTL+expiryBuffer).Err(); err != nil {
		return err
	}

	c.log.Debug("odds cached", zap.String("key", key), zap.Int("records", len(data)), zap.Time("cached_at", entry.CachedAt))
	return nil
}

// Invalidate remove a entrada do cache
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if !c.available {
		return ErrUnavailable
	}
	return c.rdb.Del(ctx, key).Err()
}

// Stale responde se um snapshot capturado em cachedAt já venceu em now
func Stale(cachedAt, now time.Time) bool {
	return now.Sub(cachedAt) >= TTL
}
