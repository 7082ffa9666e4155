package llm

import (
	"errors"
	"fmt"
)

const defaultLocalEndpoint = "http://localhost:8080/v1"

// NewClient builds a completion client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, errors.New("no API key provided, set OPENAI_API_KEY or config ai.api_key")
		}
		return NewOpenAIClient(cfg), nil
	case "local", "local_llm":
		if cfg.Endpoint == "" {
			cfg.Endpoint = defaultLocalEndpoint
		}
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
