package schema

import (
	"fmt"
	"strings"
)

// ParamType is the closed set of parameter types the generator understands.
// Raw type strings from any source must pass through NormalizeType before
// they are stored on a Parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
	TypeDate    ParamType = "date"
)

// Numeric reports whether the type takes integer or floating point values.
func (t ParamType) Numeric() bool {
	return t == TypeInteger || t == TypeNumber
}

// NormalizeType maps raw type names from parsed documents onto the closed
// ParamType set. Unknown names degrade to string rather than failing, since
// hand-written API docs are sloppy about types.
func NormalizeType(raw string) ParamType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "integer", "long", "int32", "int64":
		return TypeInteger
	case "number", "float", "double", "decimal":
		return TypeNumber
	case "bool", "boolean":
		return TypeBoolean
	case "array", "list":
		return TypeArray
	case "object", "dict", "map", "json":
		return TypeObject
	case "date", "datetime", "timestamp", "time":
		return TypeDate
	default:
		return TypeString
	}
}

// Parameter represents a single API parameter as extracted from documentation.
type Parameter struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Required    bool          `json:"required"`
	Type        ParamType     `json:"type"`
	Example     interface{}   `json:"example,omitempty"`
	Default     interface{}   `json:"default,omitempty"`
	Enum        []interface{} `json:"enum,omitempty"`
}

// RequestBody groups the body parameters of an endpoint.
type RequestBody struct {
	ContentType string                 `json:"content_type,omitempty"`
	Parameters  []Parameter            `json:"parameters,omitempty"`
	Example     map[string]interface{} `json:"example,omitempty"`
}

// Response describes a documented response of an endpoint.
type Response struct {
	StatusCode  int                    `json:"status_code"`
	Description string                 `json:"description,omitempty"`
	ContentType string                 `json:"content_type,omitempty"`
	Schema      map[string]interface{} `json:"schema,omitempty"`
	Example     map[string]interface{} `json:"example,omitempty"`
}

// Endpoint represents an API endpoint with its four parameter namespaces.
type Endpoint struct {
	Path         string           `json:"path"`
	Method       string           `json:"method"`
	Description  string           `json:"description,omitempty"`
	Body         *RequestBody     `json:"request_body,omitempty"`
	QueryParams  []Parameter      `json:"query_parameters,omitempty"`
	PathParams   []Parameter      `json:"path_parameters,omitempty"`
	HeaderParams []Parameter      `json:"header_parameters,omitempty"`
	Responses    map[int]Response `json:"responses,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
}

// APISchema is the root of a parsed API document.
type APISchema struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	BaseURL     string     `json:"base_url,omitempty"`
	Version     string     `json:"version,omitempty"`
	Endpoints   []Endpoint `json:"endpoints"`
}

// OperationName derives the action name of an endpoint from the last path
// segment, e.g. "/DescribeUDBInstance" -> "DescribeUDBInstance".
func (e *Endpoint) OperationName() string {
	trimmed := strings.Trim(e.Path, "/")
	if trimmed == "" {
		return ""
	}
	segs := strings.Split(trimmed, "/")
	return segs[len(segs)-1]
}

// BodyParameters returns the body parameter list, or nil when the endpoint
// has no request body.
func (e *Endpoint) BodyParameters() []Parameter {
	if e.Body == nil {
		return nil
	}
	return e.Body.Parameters
}

// ValidatePathParams checks that every declared path parameter has a
// matching {name} token in the path. A declared parameter without a token
// makes the endpoint untestable, so generation for it must stop.
func (e *Endpoint) ValidatePathParams() error {
	for _, p := range e.PathParams {
		token := "{" + p.Name + "}"
		if !strings.Contains(e.Path, token) {
			return fmt.Errorf("path parameter %q has no %s token in path %q", p.Name, token, e.Path)
		}
	}
	return nil
}
