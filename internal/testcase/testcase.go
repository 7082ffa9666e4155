package testcase

// CaseType identifies the scenario a generated test case exercises.
type CaseType string

const (
	HappyPath          CaseType = "happy_path"
	RequiredParamsOnly CaseType = "required_params_only"
	PartialOptional    CaseType = "partial_optional_params"
	AllParams          CaseType = "all_params"
	DataType           CaseType = "data_type"
	MissingParam       CaseType = "missing_param"
	InvalidType        CaseType = "invalid_type"
	Boundary           CaseType = "boundary"
	FormatError        CaseType = "format_error"
	Combination        CaseType = "combination"
	EnumViolation      CaseType = "enum_violation"
	Security           CaseType = "security"
	Idempotency        CaseType = "idempotency"
	Performance        CaseType = "performance"
	DocValidation      CaseType = "doc_validation"
	AIGenerated        CaseType = "ai_generated"
)

// Category is the coarse test classification used for report grouping.
type Category string

const (
	CategoryEquivalence Category = "equivalence"
	CategoryBoundary    Category = "boundary"
	CategoryNegative    Category = "negative"
	CategorySpecial     Category = "special"
)

// CategoryOf maps a case type onto its category.
func CategoryOf(t CaseType) Category {
	switch t {
	case HappyPath, RequiredParamsOnly, PartialOptional, AllParams, DataType:
		return CategoryEquivalence
	case Boundary:
		return CategoryBoundary
	case MissingParam, InvalidType, FormatError, Combination, EnumViolation:
		return CategoryNegative
	default:
		return CategorySpecial
	}
}

// ValidationType identifies a response assertion kind.
type ValidationType string

const (
	ValStatusCode       ValidationType = "status_code"
	ValNotStatusCode    ValidationType = "not_status_code"
	ValJSONField        ValidationType = "json_field"
	ValJSONFieldExists  ValidationType = "json_field_exists"
	ValResponseTime     ValidationType = "response_time"
	ValErrorMsgContains ValidationType = "error_message_contains"
	ValIdempotency      ValidationType = "idempotency"
	ValBodyContains     ValidationType = "body_contains"
	ValContentType      ValidationType = "content_type"
	ValHeaderExists     ValidationType = "header_exists"
)

// Validation is a declarative assertion attached to a test case and
// evaluated by the validation engine after execution. Which fields are
// meaningful depends on Type.
type Validation struct {
	Type        ValidationType `json:"type"`
	Field       string         `json:"field,omitempty"`
	Expected    interface{}    `json:"expected,omitempty"`
	NotExpected interface{}    `json:"not_expected,omitempty"`
	Contains    string         `json:"contains,omitempty"`
	MaxMS       float64        `json:"max_ms,omitempty"`
	Description string         `json:"description,omitempty"`
}

// NotEqual wraps a value in the not-equal marker understood by the
// json_field validation: the assertion passes when the field's actual value
// differs from v.
func NotEqual(v interface{}) map[string]interface{} {
	return map[string]interface{}{"$ne": v}
}

// NotEqualValue unwraps a not-equal marker. The second return is false when
// v is not a marker.
func NotEqualValue(v interface{}) (interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 1 {
		return nil, false
	}
	inner, ok := m["$ne"]
	return inner, ok
}

// TestCase is one executable API test. Cases are built once by the
// generator and treated as immutable afterwards; derived cases come from
// Clone plus the With* transforms, never from in-place mutation.
type TestCase struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Type        CaseType `json:"test_type"`
	Category    Category `json:"category,omitempty"`

	RequestData map[string]interface{} `json:"request_data,omitempty"`
	QueryParams map[string]interface{} `json:"query_params,omitempty"`
	PathParams  map[string]interface{} `json:"path_params,omitempty"`
	Headers     map[string]string      `json:"headers,omitempty"`

	ExpectedStatus int          `json:"expected_status"`
	Validations    []Validation `json:"validations,omitempty"`
	RepeatCount    int          `json:"repeat_count,omitempty"`

	BaseURL string   `json:"base_url,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Clone returns a deep copy. Map and slice values inside the request data
// are copied recursively so transforms on the copy never leak into the
// original.
func (tc *TestCase) Clone() *TestCase {
	out := *tc
	out.RequestData = cloneMap(tc.RequestData)
	out.QueryParams = cloneMap(tc.QueryParams)
	out.PathParams = cloneMap(tc.PathParams)
	if tc.Headers != nil {
		out.Headers = make(map[string]string, len(tc.Headers))
		for k, v := range tc.Headers {
			out.Headers[k] = v
		}
	}
	if tc.Validations != nil {
		out.Validations = make([]Validation, len(tc.Validations))
		for i, v := range tc.Validations {
			out.Validations[i] = v
			out.Validations[i].Expected = cloneValue(v.Expected)
			out.Validations[i].NotExpected = cloneValue(v.NotExpected)
		}
	}
	if tc.Tags != nil {
		out.Tags = append([]string(nil), tc.Tags...)
	}
	return &out
}

// Named returns a copy with a new name, scenario type, and description. The
// category is derived from the type.
func (tc *TestCase) Named(name string, t CaseType, description string) *TestCase {
	out := tc.Clone()
	out.Name = name
	out.Type = t
	out.Category = CategoryOf(t)
	out.Description = description
	return out
}

// WithBody returns a copy with one body value set.
func (tc *TestCase) WithBody(key string, value interface{}) *TestCase {
	out := tc.Clone()
	if out.RequestData == nil {
		out.RequestData = make(map[string]interface{})
	}
	out.RequestData[key] = value
	return out
}

// WithoutBody returns a copy with one body key removed.
func (tc *TestCase) WithoutBody(key string) *TestCase {
	out := tc.Clone()
	delete(out.RequestData, key)
	return out
}

// WithQuery returns a copy with one query value set.
func (tc *TestCase) WithQuery(key string, value interface{}) *TestCase {
	out := tc.Clone()
	if out.QueryParams == nil {
		out.QueryParams = make(map[string]interface{})
	}
	out.QueryParams[key] = value
	return out
}

// WithoutQuery returns a copy with one query key removed.
func (tc *TestCase) WithoutQuery(key string) *TestCase {
	out := tc.Clone()
	delete(out.QueryParams, key)
	return out
}

// WithExpect returns a copy with a new expected status and validation list.
func (tc *TestCase) WithExpect(status int, validations ...Validation) *TestCase {
	out := tc.Clone()
	out.ExpectedStatus = status
	out.Validations = validations
	return out
}

// AddValidation returns a copy with an extra validation appended.
func (tc *TestCase) AddValidation(v Validation) *TestCase {
	out := tc.Clone()
	out.Validations = append(out.Validations, v)
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
