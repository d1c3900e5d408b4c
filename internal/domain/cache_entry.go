package domain

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/davidbz/ideaforge/internal/textsim"
)

const (
	hitRateWeight      = 0.6
	recencyWeight      = 0.4
	recencyWindowHours = 24.0
)

// CacheEntry is one cached analysis. CachedAt never changes after creation
// and the hit count only grows; both layers share the same *CacheEntry.
type CacheEntry[R any] struct {
	Result         R
	NormalizedIdea string
	Provider       ProviderType
	CachedAt       time.Time
	Confidence     ConfidenceLevel
	QualityScore   float64

	profile        textsim.Profile
	hitCount       atomic.Uint64
	lastSimilarity atomic.Uint64 // math.Float64bits; noSimilarity until the first hit
}

const noSimilarity = math.MaxUint64

func newCacheEntry[R any](
	result R,
	normalizedIdea string,
	provider ProviderType,
	cachedAt time.Time,
	confidence ConfidenceLevel,
	quality float64,
) *CacheEntry[R] {
	entry := &CacheEntry[R]{
		Result:         result,
		NormalizedIdea: normalizedIdea,
		Provider:       provider,
		CachedAt:       cachedAt,
		Confidence:     confidence,
		QualityScore:   quality,
		profile:        textsim.NewProfile(normalizedIdea),
	}
	entry.lastSimilarity.Store(noSimilarity)
	return entry
}

// HitCount returns how many lookups this entry has served.
func (e *CacheEntry[R]) HitCount() uint64 {
	return e.hitCount.Load()
}

// LastSimilarity returns the similarity of the most recent hit, if any.
func (e *CacheEntry[R]) LastSimilarity() (float64, bool) {
	bits := e.lastSimilarity.Load()
	if bits == noSimilarity {
		return 0, false
	}
	return math.Float64frombits(bits), true
}

// IsExpired reports whether the entry is older than ttl at now.
func (e *CacheEntry[R]) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) > ttl
}

// Score ranks how valuable the entry is to keep; eviction removes the lowest.
func (e *CacheEntry[R]) Score(now time.Time) float64 {
	ageHours := now.Sub(e.CachedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	hits := float64(e.HitCount())
	hitRate := hits
	if ageHours > 0 {
		hitRate = hits / ageHours
	}

	recency := 1 / (1 + ageHours/recencyWindowHours)

	return hitRateWeight*hitRate + recencyWeight*recency
}

func (e *CacheEntry[R]) recordHit(similarity float64) {
	e.hitCount.Add(1)
	e.lastSimilarity.Store(math.Float64bits(similarity))
}
