package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"api-test-ai/internal/schema"
	"api-test-ai/internal/testcase"
)

type stubClient struct {
	response string
	err      error
	lastReq  Request
}

func (s *stubClient) Complete(_ context.Context, req Request) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain object",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "fenced block",
			in:   "Here is the schema:\n```json\n{\"a\": 1}\n```\nDone.",
			want: `{"a": 1}`,
		},
		{
			name: "fenced block without language",
			in:   "```\n[1, 2]\n```",
			want: `[1, 2]`,
		},
		{
			name: "object inside prose",
			in:   `The result is {"a": 1} as requested.`,
			want: `{"a": 1}`,
		},
		{
			name: "array inside prose",
			in:   `Cases: [{"name": "t"}] end.`,
			want: `[{"name": "t"}]`,
		},
		{
			name: "no JSON at all",
			in:   "nothing useful here",
			want: "nothing useful here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSchema(t *testing.T) {
	stub := &stubClient{response: `{
		"title": "User API",
		"endpoints": [
			{
				"path": "/CreateUser",
				"method": "POST",
				"request_body": {
					"parameters": [
						{"name": "Name", "required": true, "type": "string"},
						{"name": "Age", "required": false, "type": "int"}
					]
				}
			}
		]
	}`}

	analyzer := NewAnalyzerWithClient(stub, zerolog.Nop())
	api, err := analyzer.ExtractSchema(context.Background(), "doc text")
	if err != nil {
		t.Fatalf("ExtractSchema() error = %v", err)
	}

	if api.Title != "User API" {
		t.Errorf("Title = %q, want %q", api.Title, "User API")
	}
	if len(api.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(api.Endpoints))
	}
	params := api.Endpoints[0].Body.Parameters
	if params[1].Type != schema.TypeInteger {
		t.Errorf("raw type %q not normalized, got %q", "int", params[1].Type)
	}
	if stub.lastReq.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", stub.lastReq.Temperature)
	}
}

func TestExtractSchemaError(t *testing.T) {
	stub := &stubClient{err: errors.New("boom")}
	analyzer := NewAnalyzerWithClient(stub, zerolog.Nop())

	if _, err := analyzer.ExtractSchema(context.Background(), "doc"); err == nil {
		t.Fatal("ExtractSchema() expected error on failed completion")
	}
}

func TestGenerateCases(t *testing.T) {
	stub := &stubClient{response: `[
		{
			"name": "Create user happy path",
			"request_data": {"Name": "alice"},
			"expected_status": 200,
			"validations": [{"type": "status_code", "expected": 200}]
		}
	]`}

	analyzer := NewAnalyzerWithClient(stub, zerolog.Nop())
	ep := schema.Endpoint{Path: "/CreateUser", Method: "POST"}

	cases := analyzer.GenerateCases(context.Background(), ep)
	if len(cases) != 1 {
		t.Fatalf("got %d cases, want 1", len(cases))
	}
	tc := cases[0]
	if tc.Method != "POST" || tc.Path != "/CreateUser" {
		t.Errorf("endpoint fill-in failed: method=%q path=%q", tc.Method, tc.Path)
	}
	if tc.Type != testcase.AIGenerated {
		t.Errorf("Type = %q, want %q", tc.Type, testcase.AIGenerated)
	}
	if stub.lastReq.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", stub.lastReq.Temperature)
	}
}

func TestGenerateCasesFallback(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClient
	}{
		{name: "completion error", stub: &stubClient{err: errors.New("boom")}},
		{name: "unparseable output", stub: &stubClient{response: "not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzerWithClient(tt.stub, zerolog.Nop())
			ep := schema.Endpoint{Path: "/CreateUser", Method: "POST"}

			cases := analyzer.GenerateCases(context.Background(), ep)
			if len(cases) != 1 {
				t.Fatalf("got %d fallback cases, want 1", len(cases))
			}
			if cases[0].Name != "Basic test for /CreateUser" {
				t.Errorf("fallback name = %q", cases[0].Name)
			}
			if cases[0].ExpectedStatus != 200 {
				t.Errorf("fallback expected status = %d, want 200", cases[0].ExpectedStatus)
			}
		})
	}
}

func TestRecommendFallback(t *testing.T) {
	stub := &stubClient{err: errors.New("boom")}
	analyzer := NewAnalyzerWithClient(stub, zerolog.Nop())

	recs := analyzer.Recommend(context.Background(), nil)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Endpoint != "general" || recs[0].Severity != "low" {
		t.Errorf("unexpected fallback recommendation: %+v", recs[0])
	}
}

func TestNewClientProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "sk-test"}, wantErr: false},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: true},
		{name: "local without key", cfg: Config{Provider: "local"}, wantErr: false},
		{name: "unsupported", cfg: Config{Provider: "bedrock"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
