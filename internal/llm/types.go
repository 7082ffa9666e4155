package llm

import "context"

// Request is one chat completion call. Temperature varies per operation:
// schema extraction runs cold for deterministic structure, case generation
// and recommendations run slightly warmer.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client is the completion backend. Implementations wrap one provider
// endpoint and return the raw assistant message text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Recommendation is one AI-suggested improvement derived from test results.
type Recommendation struct {
	Endpoint       string `json:"endpoint"`
	Severity       string `json:"severity"`
	Issue          string `json:"issue"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}
