package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"api-test-ai/internal/result"
	"api-test-ai/internal/testcase"
	"api-test-ai/internal/validator"
)

// Options configure a Runner.
type Options struct {
	// BaseURL is the default request target. A test case carrying its own
	// base URL overrides it.
	BaseURL string
	// Environment resolves {{Key}} placeholders at dispatch time.
	Environment map[string]string
	// Timeout bounds each exchange. Zero means 30 seconds.
	Timeout time.Duration
	// Signer, when set, signs every request body.
	Signer *Signer
	// Transport overrides the HTTP transport, for tests.
	Transport Transport
	// Logger defaults to a disabled logger.
	Logger zerolog.Logger
}

// Runner executes test cases sequentially, one exchange at a time. Cases
// are isolated: each builds its own request, and no state crosses case
// boundaries except the read-only environment and base URL.
type Runner struct {
	transport Transport
	baseURL   string
	env       map[string]string
	signer    *Signer
	log       zerolog.Logger
}

// New returns a Runner with defaults applied over opts.
func New(opts Options) *Runner {
	transport := opts.Transport
	if transport == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		transport = NewHTTPTransport(timeout)
	}
	return &Runner{
		transport: transport,
		baseURL:   opts.BaseURL,
		env:       opts.Environment,
		signer:    opts.Signer,
		log:       opts.Logger,
	}
}

// RunSuite executes every case of every collection, in sorted endpoint
// order, and returns the aggregated result.
func (r *Runner) RunSuite(ctx context.Context, name string, suite testcase.Suite) *result.SuiteResult {
	sr := &result.SuiteResult{
		Name:      name,
		StartTime: time.Now(),
	}
	for _, key := range suite.Keys() {
		collection := suite[key]
		r.log.Info().
			Str("endpoint", key).
			Int("cases", len(collection.Cases)).
			Msg("running endpoint battery")
		for _, tc := range collection.Cases {
			sr.Results = append(sr.Results, *r.RunCase(ctx, tc))
		}
	}
	sr.EndTime = time.Now()
	r.log.Info().
		Int("total", sr.TotalCount()).
		Int("success", sr.SuccessCount()).
		Int("failure", sr.FailureCount()).
		Int("error", sr.ErrorCount()).
		Msg("suite finished")
	return sr
}

var supportedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

// RunCase executes one test case, including its idempotency repeats, and
// returns the evaluated result. Transport failures become StatusError,
// never StatusFailure.
func (r *Runner) RunCase(ctx context.Context, tc *testcase.TestCase) *result.CaseResult {
	res := &result.CaseResult{
		TestName:     tc.Name,
		EndpointPath: tc.Path,
		HTTPMethod:   tc.Method,
		CaseType:     tc.Type,
		Category:     tc.Category,
		Timestamp:    time.Now(),
	}

	req, err := r.buildRequest(tc)
	if err != nil {
		res.Status = result.StatusError
		res.ErrorMessage = err.Error()
		r.log.Error().Str("test", tc.Name).Err(err).Msg("request build failed")
		return res
	}
	res.RequestData = req.Body

	r.log.Debug().
		Str("test", tc.Name).
		Str("method", req.Method).
		Str("url", req.URL).
		Msg("dispatching request")

	ex, err := r.transport.Send(ctx, req)
	if err != nil {
		res.Status = result.StatusError
		res.ErrorMessage = errorMessage(err)
		r.log.Error().Str("test", tc.Name).Err(err).Msg("request failed")
		return res
	}

	for i := 1; i < tc.RepeatCount; i++ {
		repeat, err := r.transport.Send(ctx, req)
		if err != nil {
			res.Status = result.StatusError
			res.ErrorMessage = fmt.Sprintf("repeat %d: %s", i+1, errorMessage(err))
			r.log.Error().Str("test", tc.Name).Int("repeat", i+1).Err(err).Msg("repeat failed")
			return res
		}
		ex.Repeats = append(ex.Repeats, *repeat)
	}

	res.StatusCode = ex.StatusCode
	res.ResponseTimeMS = ex.ElapsedMS
	res.ResponseData = parseResponseBody(ex.Body)
	res.Validations = validator.Evaluate(tc.Validations, ex)

	allValid := validator.AllValid(res.Validations)
	if allValid && ex.StatusCode == tc.ExpectedStatus {
		res.Status = result.StatusSuccess
	} else {
		res.Status = result.StatusFailure
		if ex.StatusCode != tc.ExpectedStatus {
			res.ErrorMessage = fmt.Sprintf("Expected status code %d, got %d", tc.ExpectedStatus, ex.StatusCode)
		} else {
			res.ErrorMessage = firstFailureMessage(res.Validations)
		}
	}

	r.log.Info().
		Str("test", tc.Name).
		Str("status", string(res.Status)).
		Int("status_code", res.StatusCode).
		Float64("elapsed_ms", res.ResponseTimeMS).
		Msg("test completed")
	return res
}

// buildRequest resolves placeholders, assembles the URL, and signs the
// body. Substitution happens here, at dispatch, so a stored suite never
// contains resolved credentials.
func (r *Runner) buildRequest(tc *testcase.TestCase) (*Request, error) {
	method := strings.ToUpper(tc.Method)
	if !supportedMethods[method] {
		return nil, fmt.Errorf("Unsupported HTTP method: %s", tc.Method)
	}

	base := tc.BaseURL
	if base == "" {
		base = r.baseURL
	}
	if base == "" {
		return nil, errors.New("No base URL specified")
	}

	resolve := r.resolver()

	path := substituteString(tc.Path, resolve)
	target := strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target += path

	if len(tc.QueryParams) > 0 {
		values := url.Values{}
		for key, value := range tc.QueryParams {
			values.Set(key, fmt.Sprint(substituteValue(value, resolve)))
		}
		target += "?" + values.Encode()
	}

	var body map[string]interface{}
	if tc.RequestData != nil {
		body = make(map[string]interface{}, len(tc.RequestData))
		for key, value := range tc.RequestData {
			body[key] = substituteValue(value, resolve)
		}
		if r.signer != nil {
			r.signer.Apply(body)
		}
	}

	headers := make(map[string]string, len(tc.Headers))
	for key, value := range tc.Headers {
		headers[key] = substituteString(value, resolve)
	}

	return &Request{
		Method:  method,
		URL:     target,
		Headers: headers,
		Body:    body,
	}, nil
}

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// resolver returns a per-case placeholder lookup. The $randomUUID token is
// generated once per case so every repeat carries the same value.
func (r *Runner) resolver() func(string) (string, bool) {
	caseUUID := ""
	return func(key string) (string, bool) {
		if key == "$randomUUID" {
			if caseUUID == "" {
				caseUUID = uuid.New().String()
			}
			return caseUUID, true
		}
		value, ok := r.env[key]
		return value, ok
	}
}

// substituteString replaces every {{Key}} token the lookup can resolve and
// leaves unknown tokens untouched.
func substituteString(s string, lookup func(string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		if value, ok := lookup(key); ok {
			return value
		}
		return match
	})
}

func substituteValue(v interface{}, lookup func(string) (string, bool)) interface{} {
	switch value := v.(type) {
	case string:
		return substituteString(value, lookup)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[k] = substituteValue(item, lookup)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = substituteValue(item, lookup)
		}
		return out
	default:
		return v
	}
}

func parseResponseBody(body []byte) interface{} {
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return map[string]interface{}{"raw_response": string(body)}
	}
	return parsed
}

func errorMessage(err error) string {
	if isTimeout(err) {
		return fmt.Sprintf("request timed out: %v", err)
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func firstFailureMessage(validations []result.ValidationResult) string {
	for _, v := range validations {
		if !v.IsValid {
			return v.Message
		}
	}
	return ""
}
