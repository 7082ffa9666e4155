package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"api-test-ai/internal/schema"
)

// DocumentParser extracts an endpoint schema from plaintext or markdown API
// documentation with rule-based heuristics. It targets action-style API
// reference pages: an operation name, a request parameter table, and a
// response element table. Structured documents go through OpenAPIParser.
type DocumentParser struct {
	log zerolog.Logger
}

// NewDocumentParser returns a rule-based document parser.
func NewDocumentParser(log zerolog.Logger) *DocumentParser {
	return &DocumentParser{log: log}
}

// actionAPIBase is assumed when the document names no base URL.
const actionAPIBase = "https://api.ucloud.cn"

var (
	actionNamePattern = regexp.MustCompile(`\b(?:Describe|Create|Delete|Update|Modify|Get|List|Allocate|Release|Attach|Detach|Start|Stop|Reboot|Resize)[A-Z][A-Za-z]+\b`)
	pathPattern       = regexp.MustCompile(`(?i)(?:Path|URL|路径|地址)[：:]\s*(/[^\s]*)`)
	methodPattern     = regexp.MustCompile(`(?i)(?:Method|请求方式)[：:]\s*(GET|POST|PUT|DELETE|PATCH)`)
	baseURLPattern    = regexp.MustCompile(`https?://[a-zA-Z0-9.\-]+(?::\d+)?`)
	plainRowPattern   = regexp.MustCompile(`(?m)^(\w+)\s+(\w+)\s+(.+?)\s+(Yes|No|是|否)\s*$`)
	typeHintPattern   = regexp.MustCompile(`(?i)(?:类型|type)[：:]\s*(\w+)`)
)

// ParseFile reads and parses a documentation file.
func (p *DocumentParser) ParseFile(path string) (*schema.APISchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return p.Parse(string(data))
}

// Parse extracts one endpoint from the documentation text. Documents that
// yield no parameters produce an error rather than an empty schema.
func (p *DocumentParser) Parse(text string) (*schema.APISchema, error) {
	text = strings.ReplaceAll(text, "\r", "")

	action := p.findActionName(text)
	path := "/" + action
	if m := pathPattern.FindStringSubmatch(text); m != nil {
		path = m[1]
	}
	method := "POST"
	if m := methodPattern.FindStringSubmatch(text); m != nil {
		method = strings.ToUpper(m[1])
	}
	baseURL := actionAPIBase
	if m := baseURLPattern.FindString(text); m != "" {
		baseURL = m
	}

	params := p.parseParameters(sectionBetween(text,
		[]string{"Request Parameters", "请求参数"},
		[]string{"Response Elements", "Response Example", "Request Example", "返回值"}))
	if len(params) == 0 {
		return nil, fmt.Errorf("no request parameters found in document")
	}
	params = ensureActionParam(params, action)

	ep := schema.Endpoint{
		Path:        path,
		Method:      method,
		Description: p.findDescription(text),
		Responses:   map[int]schema.Response{},
	}
	if method == "GET" || method == "DELETE" {
		ep.QueryParams = params
	} else {
		ep.Body = &schema.RequestBody{
			ContentType: "application/json",
			Parameters:  params,
		}
	}

	responseFields := p.parseParameters(sectionBetween(text,
		[]string{"Response Elements", "返回值"},
		[]string{"Response Example", "Request Example", "示例"}))
	resp := schema.Response{
		StatusCode:  200,
		Description: "Success",
		ContentType: "application/json",
	}
	if len(responseFields) > 0 {
		resp.Schema = make(map[string]interface{}, len(responseFields))
		for _, field := range responseFields {
			resp.Schema[field.Name] = string(field.Type)
		}
	}
	ep.Responses[200] = resp

	p.log.Info().
		Str("action", action).
		Int("parameters", len(params)).
		Int("response_fields", len(responseFields)).
		Msg("extracted endpoint from document")

	return &schema.APISchema{
		Title:     action,
		BaseURL:   baseURL,
		Endpoints: []schema.Endpoint{ep},
	}, nil
}

func (p *DocumentParser) findActionName(text string) string {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimLeft(line, "# "))
		if trimmed == "" {
			continue
		}
		if m := actionNamePattern.FindString(trimmed); m != "" {
			return m
		}
		break
	}
	if m := actionNamePattern.FindString(text); m != "" {
		return m
	}
	return "UnknownAction"
}

func (p *DocumentParser) findDescription(text string) string {
	lines := strings.Split(text, "\n")
	seenTitle := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(strings.TrimLeft(line, "# "))
		if trimmed == "" {
			continue
		}
		if !seenTitle {
			seenTitle = true
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "request parameters") || strings.Contains(lower, "parameter name") {
			break
		}
		return trimmed
	}
	return ""
}

// parseParameters reads both markdown table rows and the space-separated
// rows that PDF text extraction produces.
func (p *DocumentParser) parseParameters(section string) []schema.Parameter {
	if section == "" {
		return nil
	}

	var params []schema.Parameter
	seen := make(map[string]bool)
	add := func(param schema.Parameter) {
		if param.Name == "" || seen[param.Name] || isHeaderCell(param.Name) {
			return
		}
		seen[param.Name] = true
		params = append(params, param)
	}

	for _, line := range strings.Split(section, "\n") {
		cells := tableCells(line)
		if cells == nil {
			continue
		}
		switch {
		case len(cells) >= 4:
			add(schema.Parameter{
				Name:        cells[0],
				Type:        normalizeOrInfer(cells[1], cells[0], cells[2]),
				Description: cells[2],
				Required:    isAffirmative(cells[3]),
			})
		case len(cells) == 3:
			add(schema.Parameter{
				Name:        cells[0],
				Type:        normalizeOrInfer(cells[1], cells[0], cells[2]),
				Description: cells[2],
			})
		case len(cells) == 2:
			add(schema.Parameter{
				Name:        cells[0],
				Type:        inferParamType(cells[0], cells[1]),
				Description: cells[1],
			})
		}
	}

	if len(params) > 0 {
		return params
	}

	for _, m := range plainRowPattern.FindAllStringSubmatch(section, -1) {
		add(schema.Parameter{
			Name:        m[1],
			Type:        normalizeOrInfer(m[2], m[1], m[3]),
			Description: strings.TrimSpace(m[3]),
			Required:    isAffirmative(m[4]),
		})
	}
	return params
}

// sectionBetween returns the text after the first start marker up to the
// nearest end marker, or "" when no start marker occurs.
func sectionBetween(text string, starts, ends []string) string {
	start := -1
	for _, marker := range starts {
		if pos := strings.Index(text, marker); pos != -1 {
			start = pos + len(marker)
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(text)
	for _, marker := range ends {
		if pos := strings.Index(text[start:], marker); pos != -1 && start+pos < end {
			end = start + pos
		}
	}
	return text[start:end]
}

func tableCells(line string) []string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return nil
	}
	trimmed = strings.Trim(trimmed, "|")

	raw := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(raw))
	separator := true
	for _, cell := range raw {
		cell = strings.TrimSpace(cell)
		if strings.Trim(cell, "-: ") != "" {
			separator = false
		}
		cells = append(cells, cell)
	}
	if separator {
		return nil
	}
	return cells
}

func isHeaderCell(name string) bool {
	switch strings.ToLower(name) {
	case "parameter", "parameter name", "name", "field", "参数名", "字段":
		return true
	default:
		return false
	}
}

func isAffirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "required", "是", "必填":
		return true
	default:
		return false
	}
}

func normalizeOrInfer(rawType, name, description string) schema.ParamType {
	raw := strings.TrimSpace(rawType)
	if raw == "" {
		return inferParamType(name, description)
	}
	return schema.NormalizeType(raw)
}

// inferParamType guesses a type from the parameter name and description
// when the document declares none.
func inferParamType(name, description string) schema.ParamType {
	if m := typeHintPattern.FindStringSubmatch(description); m != nil {
		return schema.NormalizeType(m[1])
	}

	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "id", "count", "age", "number", "time", "timestamp"):
		return schema.TypeInteger
	case containsAny(lower, "is_", "has_", "enable", "disable", "flag"):
		return schema.TypeBoolean
	case containsAny(lower, "list", "array", "ids"):
		return schema.TypeArray
	case containsAny(lower, "json", "dict", "map", "object"):
		return schema.TypeObject
	case containsAny(lower, "price", "amount", "rate", "ratio"):
		return schema.TypeNumber
	default:
		return schema.TypeString
	}
}

func containsAny(s string, fragments ...string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

// ensureActionParam guarantees the Action parameter is declared on
// action-style APIs, carrying the operation name as its example.
func ensureActionParam(params []schema.Parameter, action string) []schema.Parameter {
	for _, p := range params {
		if p.Name == schema.ActionParam {
			return params
		}
	}
	withAction := make([]schema.Parameter, 0, len(params)+1)
	withAction = append(withAction, schema.Parameter{
		Name:        schema.ActionParam,
		Description: "Operation name",
		Required:    true,
		Type:        schema.TypeString,
		Example:     action,
	})
	return append(withAction, params...)
}
