package domain

import "time"

// ProviderType identifies the inference backend that produced a result.
type ProviderType string

const (
	ProviderHeuristic ProviderType = "heuristic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderLocal     ProviderType = "local"
)

// Recommendation is the verdict an analyzer reaches for an idea.
type Recommendation string

const (
	RecommendationPursue  Recommendation = "pursue"
	RecommendationExplore Recommendation = "explore"
	RecommendationPark    Recommendation = "park"
	RecommendationDrop    Recommendation = "drop"
)

// ConfidenceLevel is a qualitative trust label for an analysis result.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// AnalysisResult is what an analyzer returns for one idea.
type AnalysisResult struct {
	FinalScore     float64            `json:"final_score"` // 0..10
	Recommendation Recommendation     `json:"recommendation"`
	Dimensions     map[string]float64 `json:"dimensions"` // each 0..10
	Explanations   []string           `json:"explanations,omitempty"`
	Provider       ProviderType       `json:"provider"`
	Model          string             `json:"model,omitempty"`
}

// Analysis is the service-level answer for an idea, cached or fresh.
type Analysis struct {
	ID         string          `json:"id"`
	Idea       string          `json:"idea"`
	IdeaType   IdeaType        `json:"idea_type"`
	Result     *AnalysisResult `json:"result"`
	Confidence ConfidenceLevel `json:"confidence"`
	Cached     bool            `json:"cached"`
	Similarity float64         `json:"similarity,omitempty"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

// IdeaRecord is one row of idea history.
type IdeaRecord struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	IdeaType       IdeaType       `json:"idea_type"`
	Score          float64        `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
	Provider       ProviderType   `json:"provider"`
	Cached         bool           `json:"cached"`
	CreatedAt      time.Time      `json:"created_at"`
}
