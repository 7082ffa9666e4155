package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"api-test-ai/internal/validator"
)

// Request is one fully resolved wire request: placeholders substituted,
// signature attached, URL assembled.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    map[string]interface{}
}

// Transport dispatches a request and reports the exchange. Implementations
// measure elapsed time at the call site so retries and repeats each get
// their own timing.
type Transport interface {
	Send(ctx context.Context, req *Request) (*validator.Exchange, error)
}

// HTTPTransport sends requests over a shared http.Client. The client
// timeout bounds every exchange.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport with the given per-request timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*validator.Exchange, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &validator.Exchange{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		ElapsedMS:  float64(elapsed) / float64(time.Millisecond),
		Body:       raw,
	}, nil
}
