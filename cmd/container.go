package main

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/ideaforge/internal/cache/memory"
	"github.com/davidbz/ideaforge/internal/cache/sweeper"
	"github.com/davidbz/ideaforge/internal/config"
	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/http"
	"github.com/davidbz/ideaforge/internal/http/middleware"
	"github.com/davidbz/ideaforge/internal/metrics"
	"github.com/davidbz/ideaforge/internal/observability"
	"github.com/davidbz/ideaforge/internal/provider/heuristic"
	"github.com/davidbz/ideaforge/internal/provider/openai"
	"github.com/davidbz/ideaforge/internal/provider/registry"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

// buildContainer wires every component. loadConfig is injectable so tests
// can supply their own settings.
func buildContainer(loadConfig func() *config.Config) (*dig.Container, error) {
	container := dig.New()

	providers := []struct {
		name        string
		constructor any
	}{
		// Configuration
		{"config", loadConfig},
		{"config dependencies", config.ParseDependenciesConfig},

		// Observability
		{"logger", observability.InitLogger},
		{"event bus", provideEventBus},

		// Analyzers
		{"analyzer registry", provideRegistry},

		// Storage
		{"response cache", provideAnalysisCache},
		{"idea store", func(cfg *sqlite.Config) (*sqlite.IdeaStore, error) { return sqlite.New(cfg.Path) }},
		{"idea repository", func(store *sqlite.IdeaStore) domain.IdeaRepository { return store }},
		{"cache sweeper", provideSweeper},

		// Domain Services
		{"analysis service", domain.NewAnalysisService},

		// Metrics
		{"metrics registry", func(cache *domain.AnalysisCache) *prometheus.Registry { return metrics.NewRegistry(cache) }},
		{"request duration", func(reg *prometheus.Registry) *prometheus.HistogramVec { return metrics.NewRequestDuration(reg) }},
		{"metrics handler", func(reg *prometheus.Registry) stdhttp.Handler { return metrics.Handler(reg) }},

		// HTTP Layer
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP handler", http.NewHandler},
		{"HTTP server", http.NewServer},
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", p.name, err)
		}
	}

	return container, nil
}

func provideEventBus(logger *zap.Logger) domain.EventPublisher {
	return observability.NewEventBus(logger)
}

func provideAnalysisCache(cfg *domain.CacheConfig, events domain.EventPublisher) *domain.AnalysisCache {
	return domain.NewResponseCache[*domain.AnalysisResult](
		*cfg,
		memory.NewStore[*domain.CacheEntry[*domain.AnalysisResult]](),
		events,
	)
}

func provideSweeper(cache *domain.AnalysisCache, cfg *domain.CacheConfig) *sweeper.Sweeper {
	return sweeper.New(cache, cfg.CleanupInterval)
}

// provideRegistry registers the heuristic analyzer always and the OpenAI
// analyzer when an API key is configured.
func provideRegistry(
	analyzerCfg *config.AnalyzerConfig,
	openaiCfg *openai.Config,
	logger *zap.Logger,
) (domain.AnalyzerRegistry, error) {
	ctx := context.Background()
	reg := registry.NewRegistry()

	if err := reg.Register(ctx, heuristic.NewAnalyzer()); err != nil {
		return nil, fmt.Errorf("failed to register heuristic analyzer: %w", err)
	}

	if openaiCfg.Enabled() {
		analyzer, err := openai.NewAnalyzer(*openaiCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI analyzer: %w", err)
		}
		if err := reg.Register(ctx, analyzer); err != nil {
			return nil, fmt.Errorf("failed to register OpenAI analyzer: %w", err)
		}
	} else {
		logger.Info("OpenAI analyzer not configured, skipping")
	}

	if analyzerCfg.Default != "" {
		if err := reg.SetDefault(analyzerCfg.Default); err != nil {
			return nil, fmt.Errorf("invalid ANALYZER_DEFAULT: %w", err)
		}
	}

	return reg, nil
}
