package cmd

import (
	"fmt"
	"strings"

	"api-test-ai/internal/generator"
	"api-test-ai/internal/llm"
	"api-test-ai/internal/postman"
	"api-test-ai/internal/runner"
)

func aiConfig() llm.Config {
	return llm.Config{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		Endpoint:  cfg.AI.Endpoint,
		MaxTokens: cfg.AI.MaxTokens,
	}
}

func generatorOptions() generator.Options {
	return generator.Options{
		Seed:             cfg.Testing.Seed,
		RejectionSignal:  generator.RejectionSignal(cfg.Testing.RejectionSignal),
		RejectNegatives:  cfg.Testing.RejectNegatives,
		NonNegativeNames: cfg.Testing.NonNegativeNames,
		RepeatCount:      cfg.Testing.RepeatCount,
		MaxResponseMS:    cfg.Testing.MaxResponseMS,
	}
}

// requestSigner builds the body signer when signing is enabled and both
// keys are present.
func requestSigner() *runner.Signer {
	if !cfg.Testing.SignRequests {
		return nil
	}
	public := cfg.Environment["PublicKey"]
	private := cfg.Environment["PrivateKey"]
	if public == "" || private == "" {
		log.Warn().Msg("request signing enabled but PublicKey or PrivateKey is missing")
		return nil
	}
	return &runner.Signer{PublicKey: public, PrivateKey: private}
}

func postmanExporter() *postman.Exporter {
	return postman.NewExporter(log)
}

// parseEnvVars turns repeated K=V flags into a map.
func parseEnvVars(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid environment variable %q, expected KEY=VALUE", pair)
		}
		out[key] = value
	}
	return out, nil
}
