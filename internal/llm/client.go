package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"api-test-ai/internal/logger"
	"api-test-ai/internal/result"
	"api-test-ai/internal/schema"
	"api-test-ai/internal/testcase"
)

const defaultMaxTokens = 4000

// Analyzer runs the AI-assisted operations: schema extraction from free
// text, supplemental test case generation, and post-run recommendations.
type Analyzer struct {
	client    Client
	log       zerolog.Logger
	maxTokens int
}

// NewAnalyzer builds an analyzer for the configured provider.
func NewAnalyzer(cfg Config, log zerolog.Logger) (*Analyzer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &Analyzer{client: client, log: log, maxTokens: maxTokens}, nil
}

// NewAnalyzerWithClient wires an explicit completion backend.
func NewAnalyzerWithClient(client Client, log zerolog.Logger) *Analyzer {
	return &Analyzer{client: client, log: log, maxTokens: defaultMaxTokens}
}

// ExtractSchema pulls an API schema out of free-form documentation text.
// Extraction runs at low temperature so the structure stays deterministic.
// Callers should fall back to the rule-based parsers when this returns an
// error.
func (a *Analyzer) ExtractSchema(ctx context.Context, documentText string) (*schema.APISchema, error) {
	prompt := extractionPrompt(documentText)
	raw, err := a.client.Complete(ctx, Request{
		System:      "You are an API documentation expert. Extract the API schema from the provided documentation.",
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   a.maxTokens,
	})
	logger.LLMInteraction(a.log, "ExtractSchema", prompt, raw, err)
	if err != nil {
		return nil, fmt.Errorf("failed to extract API schema: %w", err)
	}

	var api schema.APISchema
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &api); err != nil {
		return nil, fmt.Errorf("failed to parse extracted schema: %w", err)
	}
	normalizeSchema(&api)
	a.log.Info().Int("endpoints", len(api.Endpoints)).Msg("extracted API schema")
	return &api, nil
}

// GenerateCases asks the model for supplemental test cases for one
// endpoint. A failed or unparseable completion degrades to a single basic
// case so a bad model answer never blocks the pipeline.
func (a *Analyzer) GenerateCases(ctx context.Context, ep schema.Endpoint) []*testcase.TestCase {
	prompt := caseGenPrompt(ep)
	raw, err := a.client.Complete(ctx, Request{
		System:      "You are an API testing expert. Generate test cases for the given API endpoint.",
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   a.maxTokens,
	})
	logger.LLMInteraction(a.log, "GenerateCases", prompt, raw, err)
	if err != nil {
		a.log.Warn().Err(err).Str("path", ep.Path).Msg("case generation failed, using fallback case")
		return fallbackCases(ep)
	}

	var cases []*testcase.TestCase
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &cases); err != nil {
		a.log.Warn().Err(err).Str("path", ep.Path).Msg("unparseable case generation output, using fallback case")
		return fallbackCases(ep)
	}
	for _, tc := range cases {
		if tc.Method == "" {
			tc.Method = ep.Method
		}
		if tc.Path == "" {
			tc.Path = ep.Path
		}
		if tc.Type == "" {
			tc.Type = testcase.AIGenerated
		}
		tc.Category = testcase.CategoryOf(tc.Type)
	}
	a.log.Info().Int("cases", len(cases)).Str("path", ep.Path).Msg("generated AI test cases")
	return cases
}

// Recommend analyzes a finished run and suggests API improvements. Model
// failures degrade to a single generic recommendation.
func (a *Analyzer) Recommend(ctx context.Context, res *result.SuiteResult) []Recommendation {
	prompt := recommendationPrompt(res)
	raw, err := a.client.Complete(ctx, Request{
		System:      "You are an API design and testing expert. Generate actionable recommendations based on the test results.",
		Prompt:      prompt,
		Temperature: 0.4,
		MaxTokens:   2000,
	})
	logger.LLMInteraction(a.log, "Recommend", prompt, raw, err)
	if err != nil {
		a.log.Warn().Err(err).Msg("recommendation generation failed")
		return fallbackRecommendations()
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &recs); err != nil {
		a.log.Warn().Err(err).Msg("unparseable recommendation output")
		return fallbackRecommendations()
	}
	a.log.Info().Int("recommendations", len(recs)).Msg("generated recommendations")
	return recs
}

// normalizeSchema funnels every raw type string from the model through the
// closed type set.
func normalizeSchema(api *schema.APISchema) {
	for i := range api.Endpoints {
		ep := &api.Endpoints[i]
		if ep.Body != nil {
			normalizeParams(ep.Body.Parameters)
		}
		normalizeParams(ep.QueryParams)
		normalizeParams(ep.PathParams)
		normalizeParams(ep.HeaderParams)
	}
}

func normalizeParams(params []schema.Parameter) {
	for i := range params {
		params[i].Type = schema.NormalizeType(string(params[i].Type))
	}
}

func fallbackCases(ep schema.Endpoint) []*testcase.TestCase {
	return []*testcase.TestCase{{
		Name:           fmt.Sprintf("Basic test for %s", ep.Path),
		Description:    "Auto-generated basic test case",
		Method:         ep.Method,
		Path:           ep.Path,
		Type:           testcase.AIGenerated,
		Category:       testcase.CategoryOf(testcase.AIGenerated),
		ExpectedStatus: 200,
		Validations: []testcase.Validation{
			{Type: testcase.ValStatusCode, Expected: 200},
		},
	}}
}

func fallbackRecommendations() []Recommendation {
	return []Recommendation{{
		Endpoint:       "general",
		Severity:       "low",
		Issue:          "AI recommendation generation failed",
		Description:    "The system couldn't generate AI-powered recommendations",
		Recommendation: "Check the logs for details and try again",
	}}
}
