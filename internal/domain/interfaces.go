package domain

import "context"

// Analyzer scores an idea against the decision framework.
type Analyzer interface {
	// Analyze produces a fresh result for the idea.
	Analyze(ctx context.Context, idea string) (*AnalysisResult, error)

	// Name returns the analyzer identifier.
	Name() string

	// Provider returns the backend type, used to scope cache buckets.
	Provider() ProviderType

	// PromptVersion identifies the prompt format so incompatible results never share a bucket.
	PromptVersion() string
}

// AnalyzerRegistry manages available analyzers.
type AnalyzerRegistry interface {
	// Register adds an analyzer to the registry.
	Register(ctx context.Context, analyzer Analyzer) error

	// Get retrieves an analyzer by name; an empty name selects the default.
	Get(ctx context.Context, name string) (Analyzer, error)

	// List returns all registered analyzer names.
	List(ctx context.Context) ([]string, error)
}

// IdeaRepository keeps a history of analyzed ideas.
type IdeaRepository interface {
	// Save stores one analyzed idea.
	Save(ctx context.Context, record *IdeaRecord) error

	// List returns the most recent ideas first.
	List(ctx context.Context, limit int) ([]*IdeaRecord, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// ExactStore is a keyed store with shared reads and exclusive writes.
type ExactStore[V any] interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) (V, bool, error)

	// Set inserts or overwrites the value for key.
	Set(ctx context.Context, key string, value V) error

	// Remove deletes key and reports whether it was present.
	Remove(ctx context.Context, key string) (bool, error)

	// Clear removes everything.
	Clear(ctx context.Context) error

	// Len returns the number of stored values.
	Len(ctx context.Context) (int, error)
}
