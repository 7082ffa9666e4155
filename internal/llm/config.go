package llm

// Config selects the completion provider and model.
type Config struct {
	// Provider is "openai" or "local". Local providers speak the OpenAI
	// wire protocol at a custom endpoint.
	Provider string `json:"provider"`

	// APIKey authenticates against the provider. Local endpoints may run
	// without one.
	APIKey string `json:"api_key"`

	// Model names the model to use, e.g. "gpt-3.5-turbo".
	Model string `json:"model"`

	// Endpoint overrides the provider base URL. The local provider falls
	// back to localhost when empty; openai ignores an empty value.
	Endpoint string `json:"endpoint,omitempty"`

	// MaxTokens caps the completion length. Zero means the per-operation
	// default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-3.5-turbo",
		MaxTokens: 4000,
	}
}
