package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davidbz/ideaforge/internal/observability"
	"github.com/davidbz/ideaforge/internal/textsim"
)

// ErrCacheUnavailable is the only failure the cache reports. Callers treat it
// exactly like a miss.
var ErrCacheUnavailable = errors.New("cache unavailable")

const (
	defaultSimilarityThreshold = 0.85
	defaultTTL                 = 24 * time.Hour
	defaultMaxEntriesPerBucket = 1000
)

// Cache event types published through the EventPublisher.
const (
	EventCacheEvicted = "cache.evicted"
	EventCacheCleared = "cache.cleared"
	EventCacheSwept   = "cache.swept"
)

// CacheConfig holds construction-time cache settings. They are not reloaded.
type CacheConfig struct {
	SimilarityThreshold float64       `env:"CACHE_SIMILARITY_THRESHOLD"   envDefault:"0.85"`
	DefaultTTL          time.Duration `env:"CACHE_TTL"                    envDefault:"24h"`
	MaxEntriesPerBucket int           `env:"CACHE_MAX_ENTRIES_PER_BUCKET" envDefault:"1000"`
	CleanupInterval     time.Duration `env:"CACHE_CLEANUP_INTERVAL"       envDefault:"10m"`
}

// Hit is a successful cache lookup.
type Hit[R any] struct {
	Result     R
	Similarity float64
	Exact      bool
	Confidence ConfidenceLevel
	Key        CacheKey
}

// CacheOption customizes a ResponseCache.
type CacheOption func(*cacheSettings)

type cacheSettings struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for TTL and eviction tests.
func WithClock(now func() time.Time) CacheOption {
	return func(s *cacheSettings) {
		if now != nil {
			s.now = now
		}
	}
}

// ResponseCache sits in front of the analyzer. It answers from an exact layer
// keyed by normalized idea text and, failing that, from a semantic bucket of
// ideas sharing the same CacheKey.
type ResponseCache[R any] struct {
	cfg    CacheConfig
	exact  ExactStore[*CacheEntry[R]]
	events EventPublisher
	now    func() time.Time
	stats  *statsRecorder
	closed atomic.Bool

	mu      sync.RWMutex
	buckets map[CacheKey][]*CacheEntry[R]
}

// NewResponseCache creates a cache backed by the given exact store. A nil
// events publisher disables cache events.
func NewResponseCache[R any](
	cfg CacheConfig,
	exact ExactStore[*CacheEntry[R]],
	events EventPublisher,
	opts ...CacheOption,
) *ResponseCache[R] {
	settings := cacheSettings{now: time.Now}
	for _, opt := range opts {
		opt(&settings)
	}

	return &ResponseCache[R]{
		cfg:     normalizeCacheConfig(cfg),
		exact:   exact,
		events:  events,
		now:     settings.now,
		stats:   newStatsRecorder(),
		buckets: make(map[CacheKey][]*CacheEntry[R]),
	}
}

func normalizeCacheConfig(cfg CacheConfig) CacheConfig {
	switch {
	case cfg.SimilarityThreshold < 0:
		cfg.SimilarityThreshold = 0
	case cfg.SimilarityThreshold > 1:
		cfg.SimilarityThreshold = 1
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaultTTL
	}
	if cfg.MaxEntriesPerBucket <= 0 {
		cfg.MaxEntriesPerBucket = defaultMaxEntriesPerBucket
	}
	return cfg
}

// DefaultCacheConfig returns the documented defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		SimilarityThreshold: defaultSimilarityThreshold,
		DefaultTTL:          defaultTTL,
		MaxEntriesPerBucket: defaultMaxEntriesPerBucket,
	}
}

// Config returns the effective configuration after clamping and defaults.
func (c *ResponseCache[R]) Config() CacheConfig {
	return c.cfg
}

// Get looks idea up, first exactly, then semantically within its bucket.
// A miss is (zero, false, nil).
func (c *ResponseCache[R]) Get(
	ctx context.Context,
	idea string,
	provider ProviderType,
	promptVersion string,
) (Hit[R], bool, error) {
	var zero Hit[R]
	if err := c.ready(ctx); err != nil {
		return zero, false, err
	}

	logger := observability.FromContext(ctx)
	now := c.now()
	normalized := textsim.Normalize(idea)
	key := NewCacheKey(idea, provider, promptVersion)

	entry, found, err := c.exact.Get(ctx, normalized)
	if err != nil {
		return zero, false, fmt.Errorf("%w: exact lookup: %w", ErrCacheUnavailable, err)
	}

	switch {
	case found && !entry.IsExpired(now, c.cfg.DefaultTTL):
		entry.recordHit(1.0)
		c.stats.exactHit()
		logger.Debug("exact cache hit",
			observability.String("cache_key", key.String()),
			observability.Uint64("hit_count", entry.HitCount()))
		return Hit[R]{
			Result:     entry.Result,
			Similarity: 1.0,
			Exact:      true,
			Confidence: entry.Confidence,
			Key:        key,
		}, true, nil
	case found:
		if _, rmErr := c.exact.Remove(ctx, normalized); rmErr != nil {
			return zero, false, fmt.Errorf("%w: exact remove: %w", ErrCacheUnavailable, rmErr)
		}
		logger.Debug("exact cache entry expired",
			observability.Duration("age", now.Sub(entry.CachedAt)))
	default:
		c.stats.exactMiss()
	}

	best, similarity := c.searchBucket(key, textsim.NewProfile(normalized), now)
	if best == nil {
		c.stats.semanticMiss()
		logger.Debug("semantic cache miss",
			observability.String("cache_key", key.String()),
			observability.Float64("threshold", c.cfg.SimilarityThreshold))
		return zero, false, nil
	}

	best.recordHit(similarity)
	c.stats.semanticHit(similarity)
	logger.Debug("semantic cache hit",
		observability.String("cache_key", key.String()),
		observability.Float64("similarity", similarity))

	return Hit[R]{
		Result:     best.Result,
		Similarity: similarity,
		Confidence: best.Confidence,
		Key:        key,
	}, true, nil
}

// searchBucket purges expired entries of key's bucket and returns the entry
// with the strictly greatest similarity at or above the threshold. Live
// buckets are scanned under the read lock; only a purge takes the write lock.
func (c *ResponseCache[R]) searchBucket(
	key CacheKey,
	query textsim.Profile,
	now time.Time,
) (*CacheEntry[R], float64) {
	c.mu.RLock()
	bucket := c.buckets[key]
	if !c.hasExpired(bucket, now) {
		best, similarity := c.scan(bucket, query)
		c.mu.RUnlock()
		return best, similarity
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	bucket = c.purge(c.buckets[key], now)
	if len(bucket) == 0 {
		delete(c.buckets, key)
	} else {
		c.buckets[key] = bucket
	}

	return c.scan(bucket, query)
}

func (c *ResponseCache[R]) scan(bucket []*CacheEntry[R], query textsim.Profile) (*CacheEntry[R], float64) {
	var best *CacheEntry[R]
	bestSimilarity := -1.0

	for _, entry := range bucket {
		similarity := textsim.CombinedProfiles(query, entry.profile)
		if similarity >= c.cfg.SimilarityThreshold && similarity > bestSimilarity {
			best = entry
			bestSimilarity = similarity
		}
	}

	return best, bestSimilarity
}

func (c *ResponseCache[R]) hasExpired(bucket []*CacheEntry[R], now time.Time) bool {
	for _, entry := range bucket {
		if entry.IsExpired(now, c.cfg.DefaultTTL) {
			return true
		}
	}
	return false
}

// purge drops expired entries in place, keeping order. Caller holds c.mu.
func (c *ResponseCache[R]) purge(bucket []*CacheEntry[R], now time.Time) []*CacheEntry[R] {
	live := bucket[:0]
	for _, entry := range bucket {
		if !entry.IsExpired(now, c.cfg.DefaultTTL) {
			live = append(live, entry)
		}
	}
	clear(bucket[len(live):])
	return live
}

// Put caches result for idea in both layers, evicting the lowest-scoring
// entry of the bucket first when it is full.
func (c *ResponseCache[R]) Put(
	ctx context.Context,
	idea string,
	result R,
	provider ProviderType,
	promptVersion string,
	confidence ConfidenceLevel,
	qualityScore float64,
) error {
	if err := c.ready(ctx); err != nil {
		return err
	}

	now := c.now()
	normalized := textsim.Normalize(idea)
	key := NewCacheKey(idea, provider, promptVersion)
	entry := newCacheEntry(result, normalized, provider, now, confidence, qualityScore)

	if err := c.exact.Set(ctx, normalized, entry); err != nil {
		return fmt.Errorf("%w: exact store: %w", ErrCacheUnavailable, err)
	}

	c.mu.Lock()
	bucket := c.buckets[key]
	var evicted *CacheEntry[R]
	if len(bucket) >= c.cfg.MaxEntriesPerBucket {
		idx := lowestScore(bucket, now)
		evicted = bucket[idx]
		bucket = append(bucket[:idx], bucket[idx+1:]...)
	}
	c.buckets[key] = append(bucket, entry)
	size := len(c.buckets[key])
	c.mu.Unlock()

	c.stats.cached(key.IdeaType)

	if evicted != nil {
		c.stats.eviction()
		c.publish(ctx, EventCacheEvicted, map[string]interface{}{
			"cache_key":   key.String(),
			"hit_count":   evicted.HitCount(),
			"age_seconds": now.Sub(evicted.CachedAt).Seconds(),
		})
	}

	observability.FromContext(ctx).Debug("cached analysis",
		observability.String("cache_key", key.String()),
		observability.Int("bucket_size", size),
		observability.Bool("evicted", evicted != nil))

	return nil
}

// lowestScore returns the index of the least valuable entry; the first one
// wins ties.
func lowestScore[R any](bucket []*CacheEntry[R], now time.Time) int {
	idx := 0
	lowest := bucket[0].Score(now)
	for i := 1; i < len(bucket); i++ {
		if score := bucket[i].Score(now); score < lowest {
			idx, lowest = i, score
		}
	}
	return idx
}

// Clear empties both layers and resets all counters.
func (c *ResponseCache[R]) Clear(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}

	if err := c.exact.Clear(ctx); err != nil {
		return fmt.Errorf("%w: exact clear: %w", ErrCacheUnavailable, err)
	}

	c.mu.Lock()
	removed := 0
	for _, bucket := range c.buckets {
		removed += len(bucket)
	}
	c.buckets = make(map[CacheKey][]*CacheEntry[R])
	c.mu.Unlock()

	c.stats.reset()
	c.publish(ctx, EventCacheCleared, map[string]interface{}{
		"semantic_entries": removed,
	})

	return nil
}

// CleanupExpired sweeps the semantic buckets, dropping expired entries and
// empty buckets, and returns how many entries it removed. The exact layer is
// not swept; its expired entries go away on their next lookup.
func (c *ResponseCache[R]) CleanupExpired(ctx context.Context) (int, error) {
	if err := c.ready(ctx); err != nil {
		return 0, err
	}

	now := c.now()
	removed := 0

	c.mu.Lock()
	for key, bucket := range c.buckets {
		before := len(bucket)
		bucket = c.purge(bucket, now)
		removed += before - len(bucket)
		if len(bucket) == 0 {
			delete(c.buckets, key)
			continue
		}
		c.buckets[key] = bucket
	}
	c.mu.Unlock()

	if removed > 0 {
		c.publish(ctx, EventCacheSwept, map[string]interface{}{
			"removed": removed,
		})
	}

	return removed, nil
}

// Stats returns counters plus current layer sizes.
func (c *ResponseCache[R]) Stats(ctx context.Context) (CacheStats, error) {
	if err := c.ready(ctx); err != nil {
		return CacheStats{}, err
	}

	stats := c.stats.snapshot()

	exactLen, err := c.exact.Len(ctx)
	if err != nil {
		return CacheStats{}, fmt.Errorf("%w: exact len: %w", ErrCacheUnavailable, err)
	}
	stats.ExactEntries = exactLen

	c.mu.RLock()
	stats.Buckets = len(c.buckets)
	for _, bucket := range c.buckets {
		stats.SemanticEntries += len(bucket)
	}
	c.mu.RUnlock()

	return stats, nil
}

// EffectivenessMetrics returns the derived hit, similarity and eviction rates.
func (c *ResponseCache[R]) EffectivenessMetrics(ctx context.Context) (EffectivenessMetrics, error) {
	stats, err := c.Stats(ctx)
	if err != nil {
		return EffectivenessMetrics{}, err
	}
	return stats.Effectiveness(), nil
}

// BucketSize returns the number of entries currently held under key.
func (c *ResponseCache[R]) BucketSize(key CacheKey) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buckets[key])
}

// Close makes every further operation fail with ErrCacheUnavailable.
func (c *ResponseCache[R]) Close() {
	c.closed.Store(true)
}

func (c *ResponseCache[R]) ready(ctx context.Context) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: closed", ErrCacheUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}
	return nil
}

func (c *ResponseCache[R]) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.events == nil {
		return
	}
	c.events.Publish(ctx, eventType, data)
}
