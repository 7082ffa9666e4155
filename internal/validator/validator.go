package validator

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"

	"api-test-ai/internal/result"
	"api-test-ai/internal/testcase"
)

// Exchange is the observable outcome of one dispatched request. Repeats
// holds the follow-up exchanges of an idempotency case, in dispatch order,
// excluding the primary exchange itself.
type Exchange struct {
	StatusCode int
	Headers    http.Header
	ElapsedMS  float64
	Body       []byte
	Repeats    []Exchange
}

// Evaluate runs every rule against the exchange and returns one
// ValidationResult per rule, in order. Unknown rule types produce an
// invalid result rather than being skipped.
func Evaluate(rules []testcase.Validation, ex *Exchange) []result.ValidationResult {
	out := make([]result.ValidationResult, 0, len(rules))
	for _, rule := range rules {
		out = append(out, evaluateRule(rule, ex))
	}
	return out
}

// AllValid reports whether every validation in the list passed.
func AllValid(results []result.ValidationResult) bool {
	for _, r := range results {
		if !r.IsValid {
			return false
		}
	}
	return true
}

func evaluateRule(rule testcase.Validation, ex *Exchange) result.ValidationResult {
	switch rule.Type {
	case testcase.ValStatusCode:
		expected := toInt(rule.Expected, 200)
		return result.ValidationResult{
			Field:    "status_code",
			IsValid:  ex.StatusCode == expected,
			Expected: fmt.Sprintf("%d", expected),
			Actual:   fmt.Sprintf("%d", ex.StatusCode),
			Message:  fmt.Sprintf("Expected status code %d, got %d", expected, ex.StatusCode),
		}

	case testcase.ValNotStatusCode:
		notExpected := toInt(rule.NotExpected, 500)
		return result.ValidationResult{
			Field:    "status_code",
			IsValid:  ex.StatusCode != notExpected,
			Expected: fmt.Sprintf("not %d", notExpected),
			Actual:   fmt.Sprintf("%d", ex.StatusCode),
			Message:  fmt.Sprintf("Expected status code not to be %d", notExpected),
		}

	case testcase.ValJSONField:
		return jsonFieldResult(rule, ex)

	case testcase.ValJSONFieldExists:
		exists := gjson.GetBytes(ex.Body, rule.Field).Exists()
		actual := "missing"
		if exists {
			actual = "exists"
		}
		return result.ValidationResult{
			Field:    rule.Field,
			IsValid:  exists,
			Expected: "field exists",
			Actual:   actual,
			Message:  orDefault(rule.Description, fmt.Sprintf("Field %s should exist in response", rule.Field)),
		}

	case testcase.ValErrorMsgContains:
		body := string(ex.Body)
		actual := body
		if len(actual) > 100 {
			actual = actual[:100] + "..."
		}
		return result.ValidationResult{
			Field:    "error_message",
			IsValid:  strings.Contains(body, rule.Contains),
			Expected: fmt.Sprintf("Contains '%s'", rule.Contains),
			Actual:   actual,
			Message:  fmt.Sprintf("Expected response to contain '%s'", rule.Contains),
		}

	case testcase.ValResponseTime:
		return result.ValidationResult{
			Field:    "response_time",
			IsValid:  ex.ElapsedMS <= rule.MaxMS,
			Expected: fmt.Sprintf("<= %.0f ms", rule.MaxMS),
			Actual:   fmt.Sprintf("%.2f ms", ex.ElapsedMS),
			Message:  fmt.Sprintf("Expected response time to be <= %.0f ms, got %.2f ms", rule.MaxMS, ex.ElapsedMS),
		}

	case testcase.ValIdempotency:
		return idempotencyResult(rule, ex)

	case testcase.ValBodyContains:
		return result.ValidationResult{
			Field:    "body",
			IsValid:  strings.Contains(string(ex.Body), rule.Contains),
			Expected: fmt.Sprintf("Contains '%s'", rule.Contains),
			Actual:   fmt.Sprintf("%d byte body", len(ex.Body)),
			Message:  fmt.Sprintf("Expected body to contain '%s'", rule.Contains),
		}

	case testcase.ValContentType:
		expected := fmt.Sprintf("%v", rule.Expected)
		actual := ex.Headers.Get("Content-Type")
		return result.ValidationResult{
			Field:    "content_type",
			IsValid:  strings.Contains(actual, expected),
			Expected: expected,
			Actual:   actual,
			Message:  fmt.Sprintf("Expected Content-Type to include %s", expected),
		}

	case testcase.ValHeaderExists:
		actual := ex.Headers.Get(rule.Field)
		return result.ValidationResult{
			Field:    rule.Field,
			IsValid:  actual != "",
			Expected: "header present",
			Actual:   actual,
			Message:  orDefault(rule.Description, fmt.Sprintf("Header %s should be present", rule.Field)),
		}

	default:
		return result.ValidationResult{
			Field:    "unknown",
			IsValid:  false,
			Expected: "",
			Actual:   "",
			Message:  fmt.Sprintf("Unknown validation type: %s", rule.Type),
		}
	}
}

func jsonFieldResult(rule testcase.Validation, ex *Exchange) result.ValidationResult {
	lookup := gjson.GetBytes(ex.Body, rule.Field)
	var actual interface{}
	if lookup.Exists() {
		actual = lookup.Value()
	}

	if inner, ok := testcase.NotEqualValue(rule.Expected); ok {
		valid := lookup.Exists() && !looseEqual(actual, inner)
		return result.ValidationResult{
			Field:    rule.Field,
			IsValid:  valid,
			Expected: fmt.Sprintf("!= %v", inner),
			Actual:   display(actual),
			Message: orDefault(rule.Description,
				fmt.Sprintf("Expected %s != %v, got %v", rule.Field, inner, display(actual))),
		}
	}

	return result.ValidationResult{
		Field:    rule.Field,
		IsValid:  looseEqual(actual, rule.Expected),
		Expected: display(rule.Expected),
		Actual:   display(actual),
		Message: orDefault(rule.Description,
			fmt.Sprintf("Expected %s=%v, got %v", rule.Field, display(rule.Expected), display(actual))),
	}
}

func idempotencyResult(rule testcase.Validation, ex *Exchange) result.ValidationResult {
	if len(ex.Repeats) == 0 {
		return result.ValidationResult{
			Field:    "idempotency",
			IsValid:  false,
			Expected: "identical repeated responses",
			Actual:   "no repeated exchanges recorded",
			Message:  "Idempotency check needs at least one repeat",
		}
	}
	for i, repeat := range ex.Repeats {
		if repeat.StatusCode != ex.StatusCode || !bytes.Equal(repeat.Body, ex.Body) {
			return result.ValidationResult{
				Field:    "idempotency",
				IsValid:  false,
				Expected: "identical repeated responses",
				Actual:   fmt.Sprintf("repeat %d diverged", i+2),
				Message: orDefault(rule.Description,
					fmt.Sprintf("Repeat %d returned a different status or body", i+2)),
			}
		}
	}
	return result.ValidationResult{
		Field:    "idempotency",
		IsValid:  true,
		Expected: "identical repeated responses",
		Actual:   fmt.Sprintf("%d identical repeats", len(ex.Repeats)),
		Message:  orDefault(rule.Description, "Repeated responses are identical"),
	}
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func display(v interface{}) string {
	if v == nil {
		return "null"
	}
	if inner, ok := testcase.NotEqualValue(v); ok {
		return fmt.Sprintf("!= %v", inner)
	}
	return fmt.Sprintf("%v", v)
}

// looseEqual compares two values, treating all numeric kinds as one type
// so an in-memory int matches the float64 a JSON body decodes to.
func looseEqual(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toInt(v interface{}, fallback int) int {
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return fallback
}
