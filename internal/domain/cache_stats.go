package domain

import "sync"

// CacheStats is a point-in-time snapshot of cache counters and sizes.
type CacheStats struct {
	ExactHits            uint64           `json:"exact_hits"`
	ExactMisses          uint64           `json:"exact_misses"`
	SemanticHits         uint64           `json:"semantic_hits"`
	SemanticMisses       uint64           `json:"semantic_misses"`
	Evictions            uint64           `json:"evictions"`
	CumulativeSimilarity float64          `json:"cumulative_similarity"`
	IdeasByType          map[IdeaType]int `json:"ideas_by_type"`
	ExactEntries         int              `json:"exact_entries"`
	SemanticEntries      int              `json:"semantic_entries"`
	Buckets              int              `json:"buckets"`
}

// EffectivenessMetrics are the rates derived from CacheStats. Every rate is
// 0 when its denominator is 0.
type EffectivenessMetrics struct {
	ExactHitRate      float64          `json:"exact_hit_rate"`
	SemanticHitRate   float64          `json:"semantic_hit_rate"`
	OverallHitRate    float64          `json:"overall_hit_rate"`
	AverageSimilarity float64          `json:"average_similarity"`
	EvictionRate      float64          `json:"eviction_rate"`
	IdeasByType       map[IdeaType]int `json:"ideas_by_type"`
}

// Effectiveness derives the rates from the snapshot.
func (s CacheStats) Effectiveness() EffectivenessMetrics {
	exact := ratio(float64(s.ExactHits), float64(s.ExactHits+s.ExactMisses))
	semantic := ratio(float64(s.SemanticHits), float64(s.SemanticHits+s.SemanticMisses))

	return EffectivenessMetrics{
		ExactHitRate:      exact,
		SemanticHitRate:   semantic,
		OverallHitRate:    exact + semantic*(1-exact),
		AverageSimilarity: ratio(s.CumulativeSimilarity, float64(s.SemanticHits)),
		EvictionRate:      ratio(float64(s.Evictions), float64(s.SemanticEntries)),
		IdeasByType:       copyDistribution(s.IdeasByType),
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// statsRecorder owns the mutable counters. It has its own lock because hits
// are recorded while the bucket map is only read-locked.
type statsRecorder struct {
	mu                   sync.Mutex
	exactHits            uint64
	exactMisses          uint64
	semanticHits         uint64
	semanticMisses       uint64
	evictions            uint64
	cumulativeSimilarity float64
	ideasByType          map[IdeaType]int
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{ideasByType: make(map[IdeaType]int)}
}

func (r *statsRecorder) exactHit() {
	r.mu.Lock()
	r.exactHits++
	r.mu.Unlock()
}

func (r *statsRecorder) exactMiss() {
	r.mu.Lock()
	r.exactMisses++
	r.mu.Unlock()
}

func (r *statsRecorder) semanticHit(similarity float64) {
	r.mu.Lock()
	r.semanticHits++
	r.cumulativeSimilarity += similarity
	r.mu.Unlock()
}

func (r *statsRecorder) semanticMiss() {
	r.mu.Lock()
	r.semanticMisses++
	r.mu.Unlock()
}

func (r *statsRecorder) eviction() {
	r.mu.Lock()
	r.evictions++
	r.mu.Unlock()
}

func (r *statsRecorder) cached(ideaType IdeaType) {
	r.mu.Lock()
	r.ideasByType[ideaType]++
	r.mu.Unlock()
}

func (r *statsRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exactHits, r.exactMisses = 0, 0
	r.semanticHits, r.semanticMisses = 0, 0
	r.evictions = 0
	r.cumulativeSimilarity = 0
	r.ideasByType = make(map[IdeaType]int)
}

func (r *statsRecorder) snapshot() CacheStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return CacheStats{
		ExactHits:            r.exactHits,
		ExactMisses:          r.exactMisses,
		SemanticHits:         r.semanticHits,
		SemanticMisses:       r.semanticMisses,
		Evictions:            r.evictions,
		CumulativeSimilarity: r.cumulativeSimilarity,
		IdeasByType:          copyDistribution(r.ideasByType),
	}
}

func copyDistribution(in map[IdeaType]int) map[IdeaType]int {
	out := make(map[IdeaType]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
