package parser

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"api-test-ai/internal/schema"
)

// OpenAPIParser turns OpenAPI 3 documents into the internal schema model.
type OpenAPIParser struct {
	client *http.Client
	log    zerolog.Logger
}

// NewOpenAPIParser returns a parser. The logger may be a zerolog.Nop().
func NewOpenAPIParser(log zerolog.Logger) *OpenAPIParser {
	return &OpenAPIParser{
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// ParseFile loads an OpenAPI document from disk.
func (p *OpenAPIParser) ParseFile(path string) (*schema.APISchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI file %s: %w", path, err)
	}
	return p.ParseData(data)
}

// ParseData parses OpenAPI JSON or YAML bytes.
func (p *OpenAPIParser) ParseData(data []byte) (*schema.APISchema, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	return p.convert(doc), nil
}

// wellKnownDocPaths are the documentation locations probed by ParseURL,
// in order.
var wellKnownDocPaths = []string{
	"/swagger/v1/swagger.json",
	"/swagger.json",
	"/v1/swagger.json",
	"/api/swagger.json",
	"/api/v1/swagger.json",
	"/openapi.json",
	"/swagger",
}

// ParseURL discovers and parses the OpenAPI document served by an API. The
// discovered schema keeps baseURL as its request target.
func (p *OpenAPIParser) ParseURL(baseURL string) (*schema.APISchema, error) {
	base := strings.TrimRight(baseURL, "/")

	var lastErr error
	for _, docPath := range wellKnownDocPaths {
		url := base + docPath
		p.log.Debug().Str("url", url).Msg("probing for OpenAPI documentation")
		data, err := p.fetch(url)
		if err != nil {
			lastErr = err
			continue
		}
		api, err := p.ParseData(data)
		if err != nil {
			lastErr = err
			continue
		}
		p.log.Info().Str("url", url).Msg("fetched OpenAPI documentation")
		api.BaseURL = base
		return api, nil
	}
	return nil, fmt.Errorf("failed to fetch OpenAPI documentation from any known URL, last error: %v", lastErr)
}

func (p *OpenAPIParser) fetch(url string) ([]byte, error) {
	resp, err := p.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (p *OpenAPIParser) convert(doc *openapi3.T) *schema.APISchema {
	api := &schema.APISchema{}
	if doc.Info != nil {
		api.Title = doc.Info.Title
		api.Description = doc.Info.Description
		api.Version = doc.Info.Version
	}
	if len(doc.Servers) > 0 {
		api.BaseURL = strings.TrimRight(doc.Servers[0].URL, "/")
	}
	if doc.Paths == nil {
		return api
	}

	paths := doc.Paths.Map()
	pathKeys := make([]string, 0, len(paths))
	for path := range paths {
		pathKeys = append(pathKeys, path)
	}
	sort.Strings(pathKeys)

	for _, path := range pathKeys {
		operations := paths[path].Operations()
		methods := make([]string, 0, len(operations))
		for method := range operations {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			api.Endpoints = append(api.Endpoints, p.convertOperation(doc, path, method, operations[method]))
		}
	}
	return api
}

func (p *OpenAPIParser) convertOperation(doc *openapi3.T, path, method string, op *openapi3.Operation) schema.Endpoint {
	ep := schema.Endpoint{
		Path:      path,
		Method:    strings.ToUpper(method),
		Responses: make(map[int]schema.Response),
		Tags:      op.Tags,
	}
	if op.Summary != "" {
		ep.Description = op.Summary
	} else {
		ep.Description = op.Description
	}

	for _, paramRef := range op.Parameters {
		if paramRef.Value == nil {
			continue
		}
		param := convertParameter(paramRef.Value)
		switch paramRef.Value.In {
		case openapi3.ParameterInQuery:
			ep.QueryParams = append(ep.QueryParams, param)
		case openapi3.ParameterInPath:
			ep.PathParams = append(ep.PathParams, param)
		case openapi3.ParameterInHeader:
			ep.HeaderParams = append(ep.HeaderParams, param)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		ep.Body = convertRequestBody(doc, op.RequestBody.Value)
	}

	if op.Responses == nil {
		return ep
	}
	for statusCode, responseRef := range op.Responses.Map() {
		code := 0
		fmt.Sscanf(statusCode, "%d", &code)
		if code == 0 || responseRef.Value == nil {
			continue
		}
		ep.Responses[code] = convertResponse(code, responseRef.Value)
	}

	return ep
}

func convertParameter(src *openapi3.Parameter) schema.Parameter {
	param := schema.Parameter{
		Name:        src.Name,
		Description: src.Description,
		Required:    src.Required,
		Type:        schema.NormalizeType(schemaType(src.Schema)),
		Example:     src.Example,
	}
	if src.Schema != nil && src.Schema.Value != nil {
		if param.Example == nil {
			param.Example = src.Schema.Value.Example
		}
		param.Default = src.Schema.Value.Default
		param.Enum = src.Schema.Value.Enum
	}
	return param
}

func convertRequestBody(doc *openapi3.T, body *openapi3.RequestBody) *schema.RequestBody {
	for _, contentType := range []string{"application/json"} {
		content, ok := body.Content[contentType]
		if ok && content != nil {
			return flattenBodySchema(doc, contentType, content.Schema)
		}
	}
	for contentType, content := range body.Content {
		if content != nil && content.Schema != nil {
			return flattenBodySchema(doc, contentType, content.Schema)
		}
	}
	return nil
}

// flattenBodySchema turns the body object schema into a flat parameter
// list. Nested objects stay as single object-typed parameters.
func flattenBodySchema(doc *openapi3.T, contentType string, ref *openapi3.SchemaRef) *schema.RequestBody {
	if ref == nil {
		return nil
	}
	value := ref.Value
	if value == nil && ref.Ref != "" {
		name := strings.TrimPrefix(ref.Ref, "#/components/schemas/")
		if resolved, ok := doc.Components.Schemas[name]; ok && resolved != nil {
			value = resolved.Value
		}
	}
	if value == nil {
		return nil
	}

	out := &schema.RequestBody{ContentType: contentType}
	if example, ok := value.Example.(map[string]interface{}); ok {
		out.Example = example
	}

	names := make([]string, 0, len(value.Properties))
	for name := range value.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := value.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		out.Parameters = append(out.Parameters, schema.Parameter{
			Name:        name,
			Description: prop.Value.Description,
			Required:    containsString(value.Required, name),
			Type:        schema.NormalizeType(schemaType(prop)),
			Example:     prop.Value.Example,
			Default:     prop.Value.Default,
			Enum:        prop.Value.Enum,
		})
	}
	return out
}

func convertResponse(code int, src *openapi3.Response) schema.Response {
	out := schema.Response{StatusCode: code}
	if src.Description != nil {
		out.Description = *src.Description
	}

	content, ok := src.Content["application/json"]
	if !ok || content == nil || content.Schema == nil || content.Schema.Value == nil {
		return out
	}
	out.ContentType = "application/json"
	if example, ok := content.Example.(map[string]interface{}); ok {
		out.Example = example
	}

	if len(content.Schema.Value.Properties) > 0 {
		out.Schema = make(map[string]interface{}, len(content.Schema.Value.Properties))
		for name, prop := range content.Schema.Value.Properties {
			out.Schema[name] = schemaType(prop)
		}
	}
	return out
}

func schemaType(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return ""
	}
	types := ref.Value.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
