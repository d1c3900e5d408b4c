package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/ideaforge/internal/domain"
	"github.com/davidbz/ideaforge/internal/observability"
	"github.com/davidbz/ideaforge/internal/provider/openai"
	"github.com/davidbz/ideaforge/internal/store/sqlite"
)

// Config represents the service configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Analyzer AnalyzerConfig
	Cache    domain.CacheConfig
	OpenAI   openai.Config
	Store    sqlite.Config
	Log      observability.LogConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// AnalyzerConfig selects the analyzer used when a request names none.
// Empty means the first registered analyzer.
type AnalyzerConfig struct {
	Default string `env:"ANALYZER_DEFAULT"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*AnalyzerConfig
	*domain.CacheConfig
	OpenAI *openai.Config
	Store  *sqlite.Config
	*observability.LogConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return &cfg
}

// Validate rejects settings the cache would otherwise silently clamp.
func (c *Config) Validate() error {
	if c.Cache.SimilarityThreshold < 0 || c.Cache.SimilarityThreshold > 1 {
		return fmt.Errorf("CACHE_SIMILARITY_THRESHOLD must be within [0,1], got %v", c.Cache.SimilarityThreshold)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.DefaultTTL)
	}
	if c.Cache.MaxEntriesPerBucket <= 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES_PER_BUCKET must be positive, got %d", c.Cache.MaxEntriesPerBucket)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		ServerConfig:   &cfg.Server,
		CORSConfig:     &cfg.CORS,
		AnalyzerConfig: &cfg.Analyzer,
		CacheConfig:    &cfg.Cache,
		OpenAI:         &cfg.OpenAI,
		Store:          &cfg.Store,
		LogConfig:      &cfg.Log,
	}
}
