// Package heuristic provides an offline analyzer that scores ideas with
// keyword rules. It implements the domain.Analyzer interface without making
// external calls, producing deterministic results for development and as a
// fallback when no model backend is configured.
package heuristic

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/observability"
)

const (
	analyzerName  = "heuristic"
	promptVersion = "heuristic-v1"

	baseScore = 5.0
	minScore  = 0.0
	maxScore  = 10.0

	pursueThreshold  = 7.5
	exploreThreshold = 6.0
	parkThreshold    = 4.0

	// Ideas shorter than this lose clarity points.
	vagueWordCount = 5
)

// Scored dimensions.
const (
	DimensionImpact      = "impact"
	DimensionFeasibility = "feasibility"
	DimensionAlignment   = "alignment"
	DimensionNovelty     = "novelty"
	DimensionClarity     = "clarity"
)

var dimensionWeights = map[string]float64{
	DimensionImpact:      0.30,
	DimensionFeasibility: 0.25,
	DimensionAlignment:   0.20,
	DimensionNovelty:     0.15,
	DimensionClarity:     0.10,
}

type rule struct {
	dimension string
	pattern   *regexp.Regexp
	delta     float64
	reason    string
}

func newRule(dimension, pattern string, delta float64, reason string) rule {
	return rule{
		dimension: dimension,
		pattern:   regexp.MustCompile(`(?i)\b(?:` + pattern + `)`),
		delta:     delta,
		reason:    reason,
	}
}

var defaultRules = []rule{
	newRule(DimensionImpact, `revenue|profit|monetiz|subscription|paid`, 2, "has a revenue angle"),
	newRule(DimensionImpact, `users?|customers?|clients?|audience|community`, 1.5, "serves a defined audience"),
	newRule(DimensionImpact, `automat|save[sd]? time|productiv|efficien`, 1.5, "saves time or effort"),
	newRule(DimensionImpact, `just for fun|toy|joke`, -2, "framed as a toy"),

	newRule(DimensionFeasibility, `script|cli|plugin|extension|template|website|landing page|newsletter|blog`, 2, "small first version is possible"),
	newRule(DimensionFeasibility, `api|dashboard|app|tool`, 1, "well-understood building blocks"),
	newRule(DimensionFeasibility, `blockchain|crypto|hardware|robot|quantum|satellite`, -3, "depends on hard infrastructure"),
	newRule(DimensionFeasibility, `machine learning|neural|train(?:ing)? a model|self-driving`, -2, "needs model training"),
	newRule(DimensionFeasibility, `platform|marketplace|social network|operating system`, -1.5, "large surface area"),

	newRule(DimensionAlignment, `developer|programming|code|open source|devops`, 2, "fits technical strengths"),
	newRule(DimensionAlignment, `learn|teach|course|tutorial|writing|content`, 1.5, "fits learning and writing goals"),
	newRule(DimensionAlignment, `personal|habit|health|fitness|finance`, 1, "personal relevance"),

	newRule(DimensionNovelty, `novel|unique|first|niche|underserved|new kind`, 2, "claims a fresh angle"),
	newRule(DimensionNovelty, `ai\b|llm|semantic|generative`, 1, "uses recent technology"),
	newRule(DimensionNovelty, `another|clone|copy of|like uber|like airbnb|todo list`, -2.5, "crowded space"),
}

// Analyzer implements the domain.Analyzer interface with keyword rules.
type Analyzer struct {
	name  string
	rules []rule
}

// NewAnalyzer creates a new heuristic analyzer.
// No configuration is required as this analyzer operates entirely in-memory.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		name:  analyzerName,
		rules: defaultRules,
	}
}

// Analyze scores the idea. Identical input always yields an identical result.
func (a *Analyzer) Analyze(ctx context.Context, idea string) (*domain.AnalysisResult, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, domain.ErrEmptyIdea
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	logger := observability.FromContext(ctx)
	logger.Debug("scoring idea with heuristic rules")

	dimensions := map[string]float64{
		DimensionImpact:      baseScore,
		DimensionFeasibility: baseScore,
		DimensionAlignment:   baseScore,
		DimensionNovelty:     baseScore,
		DimensionClarity:     clarity(idea),
	}

	var explanations []string
	for _, r := range a.rules {
		if !r.pattern.MatchString(idea) {
			continue
		}
		dimensions[r.dimension] += r.delta
		explanations = append(explanations, fmt.Sprintf("%s: %s", r.dimension, r.reason))
	}

	var final float64
	for dim, value := range dimensions {
		value = clamp(value)
		dimensions[dim] = value
		final += dimensionWeights[dim] * value
	}
	final = math.Round(final*100) / 100

	logger.Debug("heuristic scoring completed",
		observability.Float64("final_score", final),
		observability.Int("rules_matched", len(explanations)),
	)

	return &domain.AnalysisResult{
		FinalScore:     final,
		Recommendation: RecommendationFor(final),
		Dimensions:     dimensions,
		Explanations:   explanations,
		Provider:       domain.ProviderHeuristic,
		Model:          promptVersion,
	}, nil
}

// Name returns the analyzer identifier.
func (a *Analyzer) Name() string {
	return a.name
}

// Provider returns the heuristic backend type.
func (a *Analyzer) Provider() domain.ProviderType {
	return domain.ProviderHeuristic
}

// PromptVersion returns the rule set version.
func (a *Analyzer) PromptVersion() string {
	return promptVersion
}

// RecommendationFor maps a final score to a recommendation.
func RecommendationFor(score float64) domain.Recommendation {
	switch {
	case score >= pursueThreshold:
		return domain.RecommendationPursue
	case score >= exploreThreshold:
		return domain.RecommendationExplore
	case score >= parkThreshold:
		return domain.RecommendationPark
	default:
		return domain.RecommendationDrop
	}
}

// clarity rewards ideas that say enough to act on.
func clarity(idea string) float64 {
	words := len(strings.Fields(idea))
	if words < vagueWordCount {
		return baseScore - float64(vagueWordCount-words)
	}
	return baseScore + math.Min(float64(words-vagueWordCount)/2, 3)
}

func clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}
