package openai

// Config contains OpenAI analyzer configuration.
// All fields map to OpenAI SDK options:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Timeout: Maps to option.WithRequestTimeout() (in seconds)
//   - MaxRetries: Maps to option.WithMaxRetries()
//
// Model selects the chat model used for every analysis.
type Config struct {
	APIKey     string `env:"OPENAI_API_KEY"`
	BaseURL    string `env:"OPENAI_BASE_URL"    envDefault:"https://api.openai.com/v1"`
	Model      string `env:"OPENAI_MODEL"       envDefault:"gpt-4o-mini"`
	Timeout    int    `env:"OPENAI_TIMEOUT"     envDefault:"60"`
	MaxRetries int    `env:"OPENAI_MAX_RETRIES" envDefault:"3"`
}

// Enabled reports whether an API key is configured.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}
