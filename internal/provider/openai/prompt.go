package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/davidbz/ideaforge/internal/domain"
)

// PromptVersion identifies the system prompt and response schema below.
// Bump it whenever either changes so stale cache buckets are never reused.
const PromptVersion = "idea-analysis-v1"

const systemPrompt = `You evaluate short side-project ideas for a single builder.
Score each idea from 0 to 10 on these dimensions:
- impact: value to users or revenue potential
- feasibility: how quickly a useful first version can ship
- alignment: fit with software, writing and learning goals
- novelty: how differentiated the idea is
- clarity: how actionable the description is
Then give final_score (0-10), a recommendation of "pursue", "explore", "park" or "drop",
and one short explanation per notable strength or weakness.
Respond only with JSON matching the provided schema.`

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"final_score":    map[string]any{"type": "number"},
		"recommendation": map[string]any{"type": "string", "enum": []string{"pursue", "explore", "park", "drop"}},
		"dimensions": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"impact":      map[string]any{"type": "number"},
				"feasibility": map[string]any{"type": "number"},
				"alignment":   map[string]any{"type": "number"},
				"novelty":     map[string]any{"type": "number"},
				"clarity":     map[string]any{"type": "number"},
			},
			"required":             []string{"impact", "feasibility", "alignment", "novelty", "clarity"},
			"additionalProperties": false,
		},
		"explanations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required":             []string{"final_score", "recommendation", "dimensions", "explanations"},
	"additionalProperties": false,
}

type analysisPayload struct {
	FinalScore     float64            `json:"final_score"`
	Recommendation string             `json:"recommendation"`
	Dimensions     map[string]float64 `json:"dimensions"`
	Explanations   []string           `json:"explanations"`
}

func userPrompt(idea string) string {
	return "Idea: " + idea
}

// parseAnalysis decodes the model's JSON answer, clamping scores into [0,10].
func parseAnalysis(content, model string) (*domain.AnalysisResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty response content")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	recommendation := domain.Recommendation(strings.ToLower(strings.TrimSpace(payload.Recommendation)))
	switch recommendation {
	case domain.RecommendationPursue, domain.RecommendationExplore,
		domain.RecommendationPark, domain.RecommendationDrop:
	default:
		return nil, fmt.Errorf("unknown recommendation %q", payload.Recommendation)
	}

	dimensions := make(map[string]float64, len(payload.Dimensions))
	for name, score := range payload.Dimensions {
		dimensions[name] = clampScore(score)
	}

	return &domain.AnalysisResult{
		FinalScore:     clampScore(payload.FinalScore),
		Recommendation: recommendation,
		Dimensions:     dimensions,
		Explanations:   payload.Explanations,
		Provider:       domain.ProviderOpenAI,
		Model:          model,
	}, nil
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
