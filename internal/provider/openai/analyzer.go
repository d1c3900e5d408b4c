// Package openai provides an analyzer backed by the OpenAI chat completions
// API using the official SDK. It implements the domain.Analyzer interface and
// converts structured model output into domain analysis results.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/observability"
)

const analyzerName = "openai"

// Analyzer implements the domain.Analyzer interface for OpenAI.
type Analyzer struct {
	client openai.Client
	model  string
	name   string
}

// NewAnalyzer creates a new OpenAI analyzer.
func NewAnalyzer(config Config) (*Analyzer, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	if config.Model == "" {
		return nil, errors.New("OpenAI model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Analyzer{
		client: openai.NewClient(opts...),
		model:  config.Model,
		name:   analyzerName,
	}, nil
}

// Analyze asks the model to score the idea.
func (a *Analyzer) Analyze(ctx context.Context, idea string) (*domain.AnalysisResult, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, domain.ErrEmptyIdea
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", a.model))

	resp, err := a.client.Chat.Completions.New(ctx, a.toSDKParams(idea))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	if len(resp.Choices) == 0 {
		return nil, errors.New("OpenAI returned no choices")
	}

	model := string(resp.Model)
	if model == "" {
		model = a.model
	}

	result, err := parseAnalysis(resp.Choices[0].Message.Content, model)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAI analysis: %w", err)
	}
	return result, nil
}

// Name returns the analyzer identifier.
func (a *Analyzer) Name() string {
	return a.name
}

// Provider returns the OpenAI backend type.
func (a *Analyzer) Provider() domain.ProviderType {
	return domain.ProviderOpenAI
}

// PromptVersion returns the prompt template version.
func (a *Analyzer) PromptVersion() string {
	return PromptVersion
}

// toSDKParams builds the chat completion request for one idea.
func (a *Analyzer) toSDKParams(idea string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(idea)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "idea_analysis",
					Schema: any(analysisSchema),
					Strict: openai.Bool(true),
				},
			},
		},
	}
}
