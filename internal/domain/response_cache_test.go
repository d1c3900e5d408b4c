package domain_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ideaforge/internal/cache/memory"
	"github.com/davidbz/ideaforge/internal/domain"
)

const promptV1 = "v1.0"

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ map[string]interface{}) {
	p.mu.Lock()
	p.events = append(p.events, eventType)
	p.mu.Unlock()
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type testCache = domain.ResponseCache[*domain.AnalysisResult]

func newTestCache(t *testing.T, cfg domain.CacheConfig) (*testCache, *fakeClock, *recordingPublisher) {
	t.Helper()
	clock := newFakeClock()
	events := &recordingPublisher{}
	cache := domain.NewResponseCache[*domain.AnalysisResult](
		cfg,
		memory.NewStore[*domain.CacheEntry[*domain.AnalysisResult]](),
		events,
		domain.WithClock(clock.Now),
	)
	return cache, clock, events
}

func result(score float64) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		FinalScore:     score,
		Recommendation: domain.RecommendationExplore,
		Dimensions:     map[string]float64{"impact": score},
		Provider:       domain.ProviderHeuristic,
	}
}

func TestResponseCache_ExactHit(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())
	idea := "Create a mobile app for fitness tracking"
	want := result(7.5)

	require.NoError(t, cache.Put(ctx, idea, want, domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))

	t.Run("should return the cached result with similarity 1", func(t *testing.T) {
		hit, ok, err := cache.Get(ctx, idea, domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Same(t, want, hit.Result)
		require.Equal(t, 1.0, hit.Similarity)
		require.True(t, hit.Exact)
		require.Equal(t, domain.ConfidenceHigh, hit.Confidence)
	})

	t.Run("should match on normalized text", func(t *testing.T) {
		hit, ok, err := cache.Get(ctx, "  CREATE a mobile-app, for fitness tracking!! ", domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, hit.Exact)
	})

	t.Run("should count exact hits", func(t *testing.T) {
		stats, err := cache.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(2), stats.ExactHits)
		require.Zero(t, stats.ExactMisses)
		require.Zero(t, stats.SemanticHits+stats.SemanticMisses)
	})
}

func TestResponseCache_SemanticHit(t *testing.T) {
	ctx := context.Background()
	cfg := domain.DefaultCacheConfig()
	cfg.SimilarityThreshold = 0.7
	cache, _, _ := newTestCache(t, cfg)

	a := "Create a mobile app for fitness tracking"
	b := "Build an application for tracking exercise goals"
	want := result(8)

	require.NoError(t, cache.Put(ctx, a, want, domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))

	hit, ok, err := cache.Get(ctx, b, domain.ProviderHeuristic, promptV1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, want, hit.Result)
	require.False(t, hit.Exact)
	require.GreaterOrEqual(t, hit.Similarity, 0.7)
	require.Less(t, hit.Similarity, 1.0)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.ExactMisses)
	require.Equal(t, uint64(1), stats.SemanticHits)
	require.InDelta(t, hit.Similarity, stats.CumulativeSimilarity, 1e-12)

	metrics := stats.Effectiveness()
	require.InDelta(t, hit.Similarity, metrics.AverageSimilarity, 1e-12)
}

func TestResponseCache_SemanticMiss(t *testing.T) {
	ctx := context.Background()
	cfg := domain.DefaultCacheConfig()
	cfg.SimilarityThreshold = 0.7
	cache, _, _ := newTestCache(t, cfg)

	require.NoError(t, cache.Put(ctx, "Create a mobile app for fitness tracking", result(8),
		domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))

	hit, ok, err := cache.Get(ctx, "Write a blog about cooking recipes", domain.ProviderHeuristic, promptV1)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, hit.Result)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.SemanticMisses)
	require.Equal(t, uint64(1), stats.ExactMisses)
}

func TestResponseCache_ScopesByProviderAndPromptVersion(t *testing.T) {
	ctx := context.Background()
	cfg := domain.DefaultCacheConfig()
	cfg.SimilarityThreshold = 0.7
	cache, _, _ := newTestCache(t, cfg)

	require.NoError(t, cache.Put(ctx, "Create a mobile app for fitness tracking", result(8),
		domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))

	similar := "Build an application for tracking exercise goals"

	_, ok, err := cache.Get(ctx, similar, domain.ProviderOpenAI, promptV1)
	require.NoError(t, err)
	require.False(t, ok, "different provider must not share a bucket")

	_, ok, err = cache.Get(ctx, similar, domain.ProviderHeuristic, "v2.0")
	require.NoError(t, err)
	require.False(t, ok, "different prompt version must not share a bucket")
}

func TestResponseCache_TTL(t *testing.T) {
	ctx := context.Background()
	cache, clock, _ := newTestCache(t, domain.DefaultCacheConfig())

	technical := "Create a mobile app for fitness tracking"
	content := "Write a blog about cooking recipes"
	require.NoError(t, cache.Put(ctx, technical, result(8), domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))
	require.NoError(t, cache.Put(ctx, content, result(5), domain.ProviderHeuristic, promptV1, domain.ConfidenceMedium, 0.6))

	t.Run("should still hit right at the ttl boundary", func(t *testing.T) {
		clock.Advance(24 * time.Hour)
		_, ok, err := cache.Get(ctx, technical, domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("should miss once the ttl has elapsed", func(t *testing.T) {
		clock.Advance(time.Second)
		hit, ok, err := cache.Get(ctx, technical, domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, hit.Result)
	})

	t.Run("should sweep expired semantic entries but leave the exact layer", func(t *testing.T) {
		removed, err := cache.CleanupExpired(ctx)
		require.NoError(t, err)
		// The technical bucket was already purged by the lookup above.
		require.Equal(t, 1, removed)

		stats, err := cache.Stats(ctx)
		require.NoError(t, err)
		require.Zero(t, stats.SemanticEntries)
		require.Zero(t, stats.Buckets)
		// The content idea is expired but still held until its next lookup.
		require.Equal(t, 1, stats.ExactEntries)

		_, ok, err := cache.Get(ctx, content, domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.False(t, ok)

		stats, err = cache.Stats(ctx)
		require.NoError(t, err)
		require.Zero(t, stats.ExactEntries)
	})
}

func TestResponseCache_Eviction(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep buckets within capacity", func(t *testing.T) {
		cfg := domain.DefaultCacheConfig()
		cfg.MaxEntriesPerBucket = 3
		cache, clock, events := newTestCache(t, cfg)

		var lastEvictions uint64
		for i := 0; i < 6; i++ {
			clock.Advance(time.Minute)
			idea := fmt.Sprintf("garden app variant %c", 'a'+rune(i))
			require.NoError(t, cache.Put(ctx, idea, result(5), domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0.3))

			key := domain.NewCacheKey(idea, domain.ProviderHeuristic, promptV1)
			require.LessOrEqual(t, cache.BucketSize(key), 3)

			stats, err := cache.Stats(ctx)
			require.NoError(t, err)
			require.GreaterOrEqual(t, stats.Evictions, lastEvictions)
			lastEvictions = stats.Evictions
		}

		require.Equal(t, uint64(3), lastEvictions)
		require.Equal(t, 3, events.count(domain.EventCacheEvicted))
	})

	t.Run("should evict the lowest scoring entry", func(t *testing.T) {
		cfg := domain.DefaultCacheConfig()
		cfg.MaxEntriesPerBucket = 3
		cache, _, _ := newTestCache(t, cfg)

		ideas := []string{
			"garden app tracker alpha",
			"garden app tracker beta",
			"garden app tracker gamma",
		}
		for _, idea := range ideas {
			require.NoError(t, cache.Put(ctx, idea, result(5), domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0.3))
		}

		// alpha and gamma earn hits; beta stays at zero and scores lowest.
		for _, idea := range []string{ideas[0], ideas[2]} {
			_, ok, err := cache.Get(ctx, idea, domain.ProviderHeuristic, promptV1)
			require.NoError(t, err)
			require.True(t, ok)
		}

		require.NoError(t, cache.Put(ctx, "garden app tracker delta", result(6),
			domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0.3))

		// Reordered words defeat the exact layer and force a semantic scan.
		_, ok, err := cache.Get(ctx, "beta tracker app garden", domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.False(t, ok, "beta should have been evicted")

		hit, ok, err := cache.Get(ctx, "alpha tracker app garden", domain.ProviderHeuristic, promptV1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1.0, hit.Similarity)
		require.False(t, hit.Exact)
	})
}

func TestResponseCache_FirstSeenWinsTies(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())

	first := result(3)
	second := result(9)
	require.NoError(t, cache.Put(ctx, "alpha beta gamma app", first, domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0.1))
	require.NoError(t, cache.Put(ctx, "gamma beta alpha app", second, domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0.1))

	hit, ok, err := cache.Get(ctx, "app beta alpha gamma", domain.ProviderHeuristic, promptV1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, first, hit.Result)
}

func TestResponseCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache, _, events := newTestCache(t, domain.DefaultCacheConfig())
	idea := "Create a mobile app for fitness tracking"

	require.NoError(t, cache.Put(ctx, idea, result(8), domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))
	_, _, err := cache.Get(ctx, idea, domain.ProviderHeuristic, promptV1)
	require.NoError(t, err)

	require.NoError(t, cache.Clear(ctx))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.ExactHits)
	require.Zero(t, stats.ExactEntries)
	require.Zero(t, stats.SemanticEntries)
	require.Empty(t, stats.IdeasByType)
	require.Equal(t, 1, events.count(domain.EventCacheCleared))

	_, ok, err := cache.Get(ctx, idea, domain.ProviderHeuristic, promptV1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResponseCache_EffectivenessMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("should report zeros on an unused cache", func(t *testing.T) {
		cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())
		metrics, err := cache.EffectivenessMetrics(ctx)
		require.NoError(t, err)
		require.Zero(t, metrics.ExactHitRate)
		require.Zero(t, metrics.SemanticHitRate)
		require.Zero(t, metrics.OverallHitRate)
		require.Zero(t, metrics.AverageSimilarity)
		require.Zero(t, metrics.EvictionRate)
	})

	t.Run("should combine exact and semantic rates", func(t *testing.T) {
		cfg := domain.DefaultCacheConfig()
		cfg.SimilarityThreshold = 0.7
		cache, _, _ := newTestCache(t, cfg)

		a := "Create a mobile app for fitness tracking"
		require.NoError(t, cache.Put(ctx, a, result(8), domain.ProviderHeuristic, promptV1, domain.ConfidenceHigh, 0.9))

		lookups := []string{
			a, // exact hit
			"Build an application for tracking exercise goals", // semantic hit
			"Write a blog about cooking recipes",               // semantic miss
			"Learn to play the cello",                          // semantic miss
		}
		for _, idea := range lookups {
			_, _, err := cache.Get(ctx, idea, domain.ProviderHeuristic, promptV1)
			require.NoError(t, err)
		}

		metrics, err := cache.EffectivenessMetrics(ctx)
		require.NoError(t, err)
		require.InDelta(t, 0.25, metrics.ExactHitRate, 1e-12)
		require.InDelta(t, 1.0/3.0, metrics.SemanticHitRate, 1e-12)
		require.InDelta(t, metrics.ExactHitRate+metrics.SemanticHitRate*(1-metrics.ExactHitRate),
			metrics.OverallHitRate, 1e-12)
		require.GreaterOrEqual(t, metrics.OverallHitRate, 0.0)
		require.LessOrEqual(t, metrics.OverallHitRate, 1.0)
	})
}

func TestResponseCache_IdeasByType(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())

	ideas := []struct {
		text  string
		score float64
	}{
		{"Build a REST API for inventory management", 8.2},
		{"Start a subscription business selling coffee beans to local offices", 6.4},
		{"Write a blog about cooking recipes", 4.1},
	}
	for _, idea := range ideas {
		require.NoError(t, cache.Put(ctx, idea.text, result(idea.score),
			domain.ProviderHeuristic, promptV1, domain.ConfidenceMedium, 0.5))
	}

	metrics, err := cache.EffectivenessMetrics(ctx)
	require.NoError(t, err)
	require.Equal(t, map[domain.IdeaType]int{
		domain.IdeaTechnical: 1,
		domain.IdeaBusiness:  1,
		domain.IdeaContent:   1,
	}, metrics.IdeasByType)
}

func TestResponseCache_Unavailable(t *testing.T) {
	t.Run("should fail with ErrCacheUnavailable on a cancelled context", func(t *testing.T) {
		cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, ok, err := cache.Get(ctx, "anything", domain.ProviderHeuristic, promptV1)
		require.ErrorIs(t, err, domain.ErrCacheUnavailable)
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, ok)
	})

	t.Run("should fail with ErrCacheUnavailable once closed", func(t *testing.T) {
		cache, _, _ := newTestCache(t, domain.DefaultCacheConfig())
		cache.Close()

		err := cache.Put(context.Background(), "anything", result(1), domain.ProviderHeuristic, promptV1, domain.ConfidenceLow, 0)
		require.ErrorIs(t, err, domain.ErrCacheUnavailable)

		_, err = cache.CleanupExpired(context.Background())
		require.ErrorIs(t, err, domain.ErrCacheUnavailable)
	})
}

func TestResponseCache_ConfigDefaults(t *testing.T) {
	t.Run("should clamp the threshold into [0,1]", func(t *testing.T) {
		cache, _, _ := newTestCache(t, domain.CacheConfig{SimilarityThreshold: 1.7})
		require.Equal(t, 1.0, cache.Config().SimilarityThreshold)

		cache, _, _ = newTestCache(t, domain.CacheConfig{SimilarityThreshold: -0.2})
		require.Equal(t, 0.0, cache.Config().SimilarityThreshold)
	})

	t.Run("should fill in ttl and capacity", func(t *testing.T) {
		cache, _, _ := newTestCache(t, domain.CacheConfig{SimilarityThreshold: 0.85})
		require.Equal(t, 24*time.Hour, cache.Config().DefaultTTL)
		require.Equal(t, 1000, cache.Config().MaxEntriesPerBucket)
	})
}

func TestResponseCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cfg := domain.DefaultCacheConfig()
	cfg.MaxEntriesPerBucket = 8
	cache, _, _ := newTestCache(t, cfg)

	const workers, items = 8, 10

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// Normalize drops digits, so vary letters to keep keys distinct.
			version := fmt.Sprintf("v%c", 'a'+rune(w%4))
			for i := 0; i < 50; i++ {
				idea := fmt.Sprintf("garden app worker %c item %c", 'a'+rune(w), 'a'+rune(i%items))
				_ = cache.Put(ctx, idea, result(5), domain.ProviderHeuristic, version, domain.ConfidenceLow, 0.2)
				_, _, _ = cache.Get(ctx, idea, domain.ProviderHeuristic, version)
				_, _, _ = cache.Get(ctx, idea+" with notes", domain.ProviderHeuristic, version)
				if i%17 == 0 {
					_, _ = cache.CleanupExpired(ctx)
				}
			}
		}(w)
	}
	wg.Wait()

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, workers*items, stats.ExactEntries)
	require.GreaterOrEqual(t, stats.Buckets, 4)
	require.LessOrEqual(t, stats.SemanticEntries, cfg.MaxEntriesPerBucket*stats.Buckets)
	require.Equal(t, uint64(400), stats.ExactHits)
}
