package generator

import (
	"fmt"
	"strings"

	"api-test-ai/internal/schema"
)

// BoundaryProbe is one boundary value together with the expected verdict.
// Accept means the API should take the value, otherwise it must reject it
// through the configured rejection signal.
type BoundaryProbe struct {
	Label  string
	Value  interface{}
	Accept bool
}

// int32Max and friends are probed as exact wire literals. large sits one
// past the int64 range so it cannot round-trip through a 64-bit signed
// parse on the server.
const (
	int32Max       = int64(2147483647)
	int32MaxPlus   = int64(2147483648)
	int32Min       = int64(-2147483648)
	int32MinMinus  = int64(-2147483649)
	beyondInt64    = uint64(9223372036854775808)
	longStringSize = 1000
)

// NumericBoundaries is the probe grid for integer and number parameters.
// rejectNegative flips the -1 probe for parameters whose name implies a
// non-negative domain.
func NumericBoundaries(rejectNegative bool) []BoundaryProbe {
	return []BoundaryProbe{
		{Label: "max", Value: int32Max, Accept: true},
		{Label: "max_plus_one", Value: int32MaxPlus, Accept: false},
		{Label: "min", Value: int32Min, Accept: true},
		{Label: "min_minus_one", Value: int32MinMinus, Accept: false},
		{Label: "zero", Value: int64(0), Accept: true},
		{Label: "negative", Value: int64(-1), Accept: !rejectNegative},
		{Label: "large", Value: beyondInt64, Accept: false},
	}
}

const specialChars = `!@#$%^&*()_+-=[]{}|;':",./<>?\`

// StringBoundaries is the probe grid for string parameters. The empty
// string is only a rejection case when the parameter is required.
func StringBoundaries(required bool) []BoundaryProbe {
	return []BoundaryProbe{
		{Label: "empty", Value: "", Accept: !required},
		{Label: "long", Value: strings.Repeat("a", longStringSize), Accept: false},
		{Label: "special_chars", Value: specialChars, Accept: true},
		{Label: "spaces", Value: "  test value  ", Accept: true},
		{Label: "emoji", Value: "Hello 👋 World 🌍", Accept: true},
		{Label: "multilingual", Value: "测试テストtest한국어", Accept: true},
	}
}

// SecurityProbeString combines an SQL injection attempt and a script tag.
// The API is expected to neutralize it, not to crash.
const SecurityProbeString = `' OR 1=1; -- <script>alert('XSS')</script>`

var securityProbeArray = []interface{}{
	`' OR 1=1; --`,
	`<script>alert('XSS')</script>`,
}

// SecurityValue returns the injection payload for string and array
// parameters and a harmless baseline value for everything else, so the
// probe is not masked by an unrelated type rejection.
func (s *Synthesizer) SecurityValue(p schema.Parameter, operation string) interface{} {
	if p.Name == schema.ActionParam || schema.IsReservedEnv(p.Name) {
		return s.Minimal(p, operation)
	}
	switch p.Type {
	case schema.TypeString:
		return SecurityProbeString
	case schema.TypeArray:
		probe := make([]interface{}, len(securityProbeArray))
		copy(probe, securityProbeArray)
		return probe
	default:
		return s.Minimal(p, operation)
	}
}

// Format identifies a parameter whose name suggests a structured value.
type Format string

const (
	FormatEmail Format = "email"
	FormatURL   Format = "url"
	FormatDate  Format = "date"
	FormatJSON  Format = "json"
)

// DetectFormat reports the structured format implied by the parameter
// name, if any.
func DetectFormat(p schema.Parameter) (Format, bool) {
	lower := strings.ToLower(p.Name)
	switch {
	case strings.Contains(lower, "email") || strings.Contains(lower, "mail"):
		return FormatEmail, true
	case strings.Contains(lower, "url") || strings.Contains(lower, "uri") || strings.Contains(lower, "link"):
		return FormatURL, true
	case p.Type == schema.TypeDate || strings.Contains(lower, "date"):
		return FormatDate, true
	case strings.Contains(lower, "json"):
		return FormatJSON, true
	default:
		return "", false
	}
}

// FormatProbe returns a malformed instance of the given format.
func FormatProbe(f Format) interface{} {
	switch f {
	case FormatEmail:
		return "invalid-email-format"
	case FormatURL:
		return "not_a_valid_url"
	case FormatDate:
		return "2023-13-45T99:99:99"
	case FormatJSON:
		return "{invalid json}"
	default:
		return "invalid-format-value"
	}
}

// EnumViolation returns a value guaranteed to be outside p's enum.
func EnumViolation(p schema.Parameter) interface{} {
	candidate := "INVALID_ENUM_VALUE"
	for contains(p.Enum, candidate) {
		candidate += "_X"
	}
	return candidate
}

func contains(values []interface{}, v interface{}) bool {
	for _, item := range values {
		if fmt.Sprintf("%v", item) == fmt.Sprintf("%v", v) {
			return true
		}
	}
	return false
}
