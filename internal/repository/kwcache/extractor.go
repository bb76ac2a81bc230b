package kwcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/db"
	"github.com/kailas-cloud/photodex/internal/domain"
)

// KeyPrefix namespaces cached slot extractions.
const KeyPrefix = "photodex:nlu_slots:"

// store is the consumer interface for the keyword cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor caches NLU slot values in a key-value store.
type CachedExtractor struct {
	inner      domain.SlotExtractor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.SlotExtractor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExtractor {
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// ExtractSlots returns cached slot values or calls the inner extractor.
// Only non-empty successful extractions are cached; store failures never fail the call.
func (c *CachedExtractor) ExtractSlots(ctx context.Context, text string) ([]string, error) {
	key := cacheKey(text)

	if slots, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return slots, nil
	}

	c.incCache("miss")

	slots, err := c.inner.ExtractSlots(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract slots: %w", err)
	}

	if len(slots) > 0 {
		c.putToCache(ctx, key, slots)
	}
	return slots, nil
}

// HealthCheck delegates to the inner extractor when it supports it.
func (c *CachedExtractor) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// Unwrap returns the decorated extractor.
func (c *CachedExtractor) Unwrap() domain.SlotExtractor { return c.inner }

func (c *CachedExtractor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return KeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedExtractor) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached slots", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil || len(slots) == 0 {
		c.logger.Warn("Failed to parse cached slots", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return slots, true
}

func (c *CachedExtractor) putToCache(ctx context.Context, key string, slots []string) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache slots", zap.String("key", key), zap.Error(err))
	}
}
