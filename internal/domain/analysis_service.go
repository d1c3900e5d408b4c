package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/davidbz/ideaforge/internal/observability"
)

var (
	// ErrEmptyIdea is returned when there is no idea text to analyze.
	ErrEmptyIdea = errors.New("idea cannot be empty")

	// ErrAnalyzerNotFound is returned when the requested analyzer is not registered.
	ErrAnalyzerNotFound = errors.New("analyzer not found")
)

const (
	highConfidenceSpread   = 3.0
	mediumConfidenceSpread = 6.0
	maxDimensionScore      = 10.0
	defaultHistoryLimit    = 50
)

// AnalysisCache is the response cache specialised to analysis results.
type AnalysisCache = ResponseCache[*AnalysisResult]

// AnalysisService checks the cache, falls back to an analyzer and records
// every answer in the idea history.
type AnalysisService struct {
	registry AnalyzerRegistry
	cache    *AnalysisCache
	ideas    IdeaRepository
	now      func() time.Time
}

// NewAnalysisService creates a new analysis service (DI constructor). Both
// cache and ideas may be nil.
func NewAnalysisService(registry AnalyzerRegistry, cache *AnalysisCache, ideas IdeaRepository) *AnalysisService {
	return &AnalysisService{
		registry: registry,
		cache:    cache,
		ideas:    ideas,
		now:      time.Now,
	}
}

// Analyze scores idea with the named analyzer; an empty name selects the
// registry default.
func (s *AnalysisService) Analyze(ctx context.Context, idea, analyzerName string) (*Analysis, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrEmptyIdea
	}

	analyzer, err := s.registry.Get(ctx, analyzerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyzerNotFound, err)
	}

	ideaType := ClassifyIdeaType(idea)
	ctx = observability.WithProvider(ctx, analyzer.Name())
	ctx = observability.WithIdeaType(ctx, string(ideaType))
	logger := observability.FromContext(ctx)

	if analysis := s.lookup(ctx, idea, ideaType, analyzer); analysis != nil {
		logger.Info("cache HIT - returning cached analysis",
			observability.Float64("similarity", analysis.Similarity))
		s.record(ctx, analysis, analyzer.Provider())
		return analysis, nil
	}

	logger.Info("cache MISS - calling analyzer")

	result, err := analyzer.Analyze(ctx, idea)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	confidence, quality := AssessResult(result)

	if s.cache != nil {
		if putErr := s.cache.Put(ctx, idea, result, analyzer.Provider(), analyzer.PromptVersion(),
			confidence, quality); putErr != nil {
			logger.Warn("failed to store in cache", observability.Error(putErr))
		}
	}

	analysis := &Analysis{
		ID:         observability.GenerateIdeaID(),
		Idea:       idea,
		IdeaType:   ideaType,
		Result:     result,
		Confidence: confidence,
		AnalyzedAt: s.now(),
	}
	s.record(ctx, analysis, analyzer.Provider())

	logger.Info("analysis completed",
		observability.Float64("final_score", result.FinalScore),
		observability.String("recommendation", string(result.Recommendation)),
		observability.String("confidence", string(confidence)))

	return analysis, nil
}

// lookup returns a cached analysis, or nil on a miss or cache failure.
func (s *AnalysisService) lookup(ctx context.Context, idea string, ideaType IdeaType, analyzer Analyzer) *Analysis {
	if s.cache == nil {
		return nil
	}

	hit, ok, err := s.cache.Get(ctx, idea, analyzer.Provider(), analyzer.PromptVersion())
	if err != nil {
		observability.FromContext(ctx).Warn("cache get failed, continuing without cache",
			observability.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	return &Analysis{
		ID:         observability.GenerateIdeaID(),
		Idea:       idea,
		IdeaType:   ideaType,
		Result:     hit.Result,
		Confidence: hit.Confidence,
		Cached:     true,
		Similarity: hit.Similarity,
		AnalyzedAt: s.now(),
	}
}

// record appends the analysis to the idea history; failures are only logged.
func (s *AnalysisService) record(ctx context.Context, analysis *Analysis, provider ProviderType) {
	if s.ideas == nil || analysis.Result == nil {
		return
	}

	err := s.ideas.Save(ctx, &IdeaRecord{
		ID:             analysis.ID,
		Text:           analysis.Idea,
		IdeaType:       analysis.IdeaType,
		Score:          analysis.Result.FinalScore,
		Recommendation: analysis.Result.Recommendation,
		Provider:       provider,
		Cached:         analysis.Cached,
		CreatedAt:      analysis.AnalyzedAt,
	})
	if err != nil {
		observability.FromContext(ctx).Warn("failed to save idea history", observability.Error(err))
	}
}

// History returns recently analyzed ideas, newest first.
func (s *AnalysisService) History(ctx context.Context, limit int) ([]*IdeaRecord, error) {
	if s.ideas == nil {
		return []*IdeaRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	records, err := s.ideas.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return records, nil
}

// Cache exposes the underlying cache for stats and maintenance endpoints.
func (s *AnalysisService) Cache() *AnalysisCache {
	return s.cache
}

// AssessResult derives a confidence label and a [0,1] quality score from how
// much the dimension scores agree with each other.
func AssessResult(result *AnalysisResult) (ConfidenceLevel, float64) {
	if result == nil || len(result.Dimensions) == 0 {
		return ConfidenceLow, 0
	}

	lowest, highest := math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range result.Dimensions {
		lowest = math.Min(lowest, v)
		highest = math.Max(highest, v)
		sum += v
	}
	mean := sum / float64(len(result.Dimensions))

	var variance float64
	for _, v := range result.Dimensions {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(result.Dimensions)))

	quality := math.Max(0, math.Min(1, 1-stddev/(maxDimensionScore/2)))
	if len(result.Explanations) == 0 {
		quality /= 2
	}

	switch spread := highest - lowest; {
	case spread <= highConfidenceSpread:
		return ConfidenceHigh, quality
	case spread <= mediumConfidenceSpread:
		return ConfidenceMedium, quality
	default:
		return ConfidenceLow, quality
	}
}
