package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"api-test-ai/internal/schema"
	"api-test-ai/internal/testcase"
)

// RejectionSignal selects how generated negative cases expect the API to
// report a rejected request.
type RejectionSignal string

const (
	// RejectHTTP400 expects HTTP 400 plus a non-zero RetCode.
	RejectHTTP400 RejectionSignal = "http_400"
	// RejectBusinessCode expects HTTP 200 with a non-zero RetCode, for
	// gateways that never surface errors through the status line.
	RejectBusinessCode RejectionSignal = "business_code"
)

// successField is the application-level result code field checked by
// generated validations.
const successField = "RetCode"

const (
	clientTokenParam = "ClientToken"
	decoyParamName   = "InvalidActionParam"
	decoyParamValue  = "InvalidActionValue"
)

// Options tune the generated battery. Zero values select the defaults.
type Options struct {
	// Seed makes the battery reproducible. 0 seeds from the clock.
	Seed int64
	// RejectionSignal defaults to RejectHTTP400.
	RejectionSignal RejectionSignal
	// RejectNegatives expects -1 to be rejected on parameters whose name
	// implies a non-negative domain. The default accepts -1 everywhere.
	RejectNegatives bool
	// NonNegativeNames are the name fragments RejectNegatives matches on.
	NonNegativeNames []string
	// RepeatCount is the idempotency dispatch count, default 3.
	RepeatCount int
	// MaxResponseMS is the performance budget, default 2000.
	MaxResponseMS float64
}

var defaultNonNegativeNames = []string{"limit", "offset", "count", "size", "quantity", "page"}

// Generator builds the per-endpoint test case battery.
type Generator struct {
	syn  *Synthesizer
	opts Options
}

// New returns a Generator with defaults applied over opts.
func New(opts Options) *Generator {
	if opts.RejectionSignal == "" {
		opts.RejectionSignal = RejectHTTP400
	}
	if opts.RepeatCount <= 0 {
		opts.RepeatCount = 3
	}
	if opts.MaxResponseMS <= 0 {
		opts.MaxResponseMS = 2000
	}
	if opts.NonNegativeNames == nil {
		opts.NonNegativeNames = defaultNonNegativeNames
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		syn:  NewSynthesizer(rand.New(rand.NewSource(seed))),
		opts: opts,
	}
}

// GenerationError marks an endpoint whose battery could not be built. Other
// endpoints in the same schema are unaffected.
type GenerationError struct {
	Method string
	Path   string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("test generation for %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerateSuite builds a battery for every endpoint in the schema. Endpoints
// that fail generation are reported in the returned error list and skipped.
func (g *Generator) GenerateSuite(api *schema.APISchema) (testcase.Suite, []error) {
	suite := make(testcase.Suite)
	var errs []error
	for i := range api.Endpoints {
		ep := &api.Endpoints[i]
		cases, err := g.Endpoint(ep)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		suite.Add(&testcase.Collection{
			Endpoint: testcase.EndpointInfo{
				Path:        ep.Path,
				Method:      ep.Method,
				Description: ep.Description,
			},
			Cases: cases,
		})
	}
	return suite, errs
}

// namespace identifies where a parameter travels in the request.
type namespace int

const (
	nsBody namespace = iota
	nsQuery
	nsPath
	nsHeader
)

type boundParam struct {
	schema.Parameter
	ns namespace
}

func endpointParams(ep *schema.Endpoint) []boundParam {
	var out []boundParam
	for _, p := range ep.BodyParameters() {
		out = append(out, boundParam{p, nsBody})
	}
	for _, p := range ep.QueryParams {
		out = append(out, boundParam{p, nsQuery})
	}
	for _, p := range ep.PathParams {
		out = append(out, boundParam{p, nsPath})
	}
	for _, p := range ep.HeaderParams {
		out = append(out, boundParam{p, nsHeader})
	}
	return out
}

// fillFn decides per parameter whether it appears in a generated request
// and with which value.
type fillFn func(p boundParam) (interface{}, bool)

func (g *Generator) fillValid(op string) fillFn {
	return func(p boundParam) (interface{}, bool) {
		return g.syn.Valid(p.Parameter, op), true
	}
}

func (g *Generator) fillMinimal(op string) fillFn {
	return func(p boundParam) (interface{}, bool) {
		if !p.Required && p.ns != nsPath {
			return nil, false
		}
		return g.syn.Minimal(p.Parameter, op), true
	}
}

func sameParam(a, b boundParam) bool {
	return a.ns == b.ns && a.Name == b.Name
}

func withTarget(base fillFn, target boundParam, value interface{}) fillFn {
	return func(p boundParam) (interface{}, bool) {
		if sameParam(p, target) {
			return value, true
		}
		return base(p)
	}
}

func withoutParam(base fillFn, target boundParam) fillFn {
	return func(p boundParam) (interface{}, bool) {
		if sameParam(p, target) {
			return nil, false
		}
		return base(p)
	}
}

func (g *Generator) buildCase(ep *schema.Endpoint, fill fillFn) *testcase.TestCase {
	tc := &testcase.TestCase{
		Method: ep.Method,
		Path:   ep.Path,
	}
	for _, p := range endpointParams(ep) {
		v, ok := fill(p)
		if !ok {
			continue
		}
		switch p.ns {
		case nsBody:
			if tc.RequestData == nil {
				tc.RequestData = make(map[string]interface{})
			}
			tc.RequestData[p.Name] = v
		case nsQuery:
			if tc.QueryParams == nil {
				tc.QueryParams = make(map[string]interface{})
			}
			tc.QueryParams[p.Name] = v
		case nsPath:
			if tc.PathParams == nil {
				tc.PathParams = make(map[string]interface{})
			}
			tc.PathParams[p.Name] = v
		case nsHeader:
			if tc.Headers == nil {
				tc.Headers = make(map[string]string)
			}
			tc.Headers[p.Name] = fmt.Sprintf("%v", v)
		}
	}
	for name, v := range tc.PathParams {
		tc.Path = strings.ReplaceAll(tc.Path, "{"+name+"}", fmt.Sprintf("%v", v))
	}
	return tc
}

// nameset hands out names that are unique within one battery.
type nameset map[string]int

func (n nameset) unique(name string) string {
	n[name]++
	if n[name] == 1 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n[name])
}

func statusIs(code int) testcase.Validation {
	return testcase.Validation{
		Type:        testcase.ValStatusCode,
		Expected:    code,
		Description: fmt.Sprintf("Response status is %d", code),
	}
}

func happyValidations() []testcase.Validation {
	return []testcase.Validation{
		statusIs(200),
		{
			Type:        testcase.ValJSONField,
			Field:       successField,
			Expected:    0,
			Description: successField + " is 0",
		},
	}
}

// rejectExpectation returns the expected status and validations for a
// request the API must refuse, per the configured rejection signal.
func (g *Generator) rejectExpectation(reason string) (int, []testcase.Validation) {
	code := 400
	if g.opts.RejectionSignal == RejectBusinessCode {
		code = 200
	}
	return code, []testcase.Validation{
		statusIs(code),
		{
			Type:        testcase.ValJSONField,
			Field:       successField,
			Expected:    testcase.NotEqual(0),
			Description: reason,
		},
	}
}

func (g *Generator) rejectNegativeFor(name string) bool {
	if !g.opts.RejectNegatives {
		return false
	}
	lower := strings.ToLower(name)
	for _, fragment := range g.opts.NonNegativeNames {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Endpoint builds the full battery for one endpoint: equivalence, boundary,
// negative, and special categories, in a fixed scenario order.
func (g *Generator) Endpoint(ep *schema.Endpoint) ([]*testcase.TestCase, error) {
	if err := ep.ValidatePathParams(); err != nil {
		return nil, &GenerationError{Method: ep.Method, Path: ep.Path, Err: err}
	}

	op := ep.OperationName()
	params := endpointParams(ep)
	names := make(nameset)
	var cases []*testcase.TestCase
	add := func(tc *testcase.TestCase) {
		cases = append(cases, tc)
	}

	cases = append(cases, g.equivalenceCases(ep, op, params, names)...)
	cases = append(cases, g.boundaryCases(ep, op, params, names)...)
	cases = append(cases, g.negativeCases(ep, op, params, names)...)

	// Special category.
	security := g.buildCase(ep, g.securityFill(op)).
		Named(names.unique(op+"_security"), testcase.Security,
			"Injection payloads in string parameters must be neutralized")
	security.ExpectedStatus = 200
	security.Validations = []testcase.Validation{
		statusIs(200),
		{
			Type:        testcase.ValJSONField,
			Field:       successField,
			Expected:    testcase.NotEqual(0),
			Description: "Injection payload is rejected by the application",
		},
	}
	add(security)

	idem := g.buildCase(ep, g.fillMinimal(op))
	if hasBody(ep.Method) {
		idem = idem.WithBody(clientTokenParam, schema.RandomUUIDPlaceholder)
	} else {
		idem = idem.WithQuery(clientTokenParam, schema.RandomUUIDPlaceholder)
	}
	idem = idem.Named(names.unique(op+"_idempotency"), testcase.Idempotency,
		"Repeating the request with one client token returns identical responses")
	idem.ExpectedStatus = 200
	idem.RepeatCount = g.opts.RepeatCount
	idem.Validations = []testcase.Validation{
		statusIs(200),
		{
			Type:        testcase.ValIdempotency,
			Description: "Status and body are identical across repeats",
		},
	}
	add(idem)

	perf := g.buildCase(ep, g.fillMinimal(op)).
		Named(names.unique(op+"_performance"), testcase.Performance,
			fmt.Sprintf("Response arrives within %.0fms", g.opts.MaxResponseMS))
	perf.ExpectedStatus = 200
	perf.Validations = []testcase.Validation{
		statusIs(200),
		{
			Type:        testcase.ValResponseTime,
			MaxMS:       g.opts.MaxResponseMS,
			Description: fmt.Sprintf("Response time under %.0fms", g.opts.MaxResponseMS),
		},
	}
	add(perf)

	if doc := g.docValidationCase(ep, op, names); doc != nil {
		add(doc)
	}

	return cases, nil
}

func (g *Generator) equivalenceCases(ep *schema.Endpoint, op string, params []boundParam, names nameset) []*testcase.TestCase {
	var cases []*testcase.TestCase

	happy := g.buildCase(ep, func(p boundParam) (interface{}, bool) {
		if !p.Required && p.ns != nsPath && g.syn.rand.Intn(2) == 1 {
			return nil, false
		}
		return g.syn.Valid(p.Parameter, op), true
	}).Named(names.unique(op+"_happy_path"), testcase.HappyPath,
		"Required parameters plus a sample of optional ones")
	happy.ExpectedStatus = 200
	happy.Validations = happyValidations()
	cases = append(cases, happy)

	required := g.buildCase(ep, g.fillMinimal(op)).
		Named(names.unique(op+"_required_params_only"), testcase.RequiredParamsOnly,
			"Only the required parameters")
	required.ExpectedStatus = 200
	required.Validations = happyValidations()
	cases = append(cases, required)

	partial := g.buildCase(ep, g.partialFill(op, params)).
		Named(names.unique(op+"_partial_optional_params"), testcase.PartialOptional,
			"Required parameters plus roughly half of the optional ones")
	partial.ExpectedStatus = 200
	partial.Validations = happyValidations()
	cases = append(cases, partial)

	all := g.buildCase(ep, g.fillValid(op)).
		Named(names.unique(op+"_all_params"), testcase.AllParams,
			"Every documented parameter")
	all.ExpectedStatus = 200
	all.Validations = happyValidations()
	cases = append(cases, all)

	for _, target := range typeRepresentatives(params) {
		tc := g.buildCase(ep, withTarget(g.fillMinimal(op), target, g.syn.Valid(target.Parameter, op))).
			Named(names.unique(fmt.Sprintf("%s_data_type_%s", op, target.Type)), testcase.DataType,
				fmt.Sprintf("Valid %s value for %s", target.Type, target.Name))
		tc.ExpectedStatus = 200
		tc.Validations = happyValidations()
		cases = append(cases, tc)
	}

	return cases
}

// partialFill keeps the required parameters and a random half of the
// optional ones, sampled without replacement.
func (g *Generator) partialFill(op string, params []boundParam) fillFn {
	var optionals []boundParam
	for _, p := range params {
		if !p.Required && p.ns != nsPath {
			optionals = append(optionals, p)
		}
	}
	g.syn.rand.Shuffle(len(optionals), func(i, j int) {
		optionals[i], optionals[j] = optionals[j], optionals[i]
	})
	keep := make(map[string]bool)
	for _, p := range optionals[:(len(optionals)+1)/2] {
		keep[paramKey(p)] = true
	}
	return func(p boundParam) (interface{}, bool) {
		if !p.Required && p.ns != nsPath && !keep[paramKey(p)] {
			return nil, false
		}
		return g.syn.Valid(p.Parameter, op), true
	}
}

func paramKey(p boundParam) string {
	return fmt.Sprintf("%d:%s", p.ns, p.Name)
}

// typeRepresentatives picks one parameter per parameter type present on the
// endpoint, preferring ones that are neither Action nor reserved so the
// typed value is actually synthesized.
func typeRepresentatives(params []boundParam) []boundParam {
	byType := make(map[schema.ParamType]boundParam)
	var order []schema.ParamType
	for _, p := range params {
		fixed := p.Name == schema.ActionParam || schema.IsReservedEnv(p.Name)
		current, seen := byType[p.Type]
		switch {
		case !seen:
			byType[p.Type] = p
			order = append(order, p.Type)
		case !fixed && (current.Name == schema.ActionParam || schema.IsReservedEnv(current.Name)):
			byType[p.Type] = p
		}
	}
	out := make([]boundParam, 0, len(order))
	for _, t := range order {
		out = append(out, byType[t])
	}
	return out
}

func (g *Generator) boundaryCases(ep *schema.Endpoint, op string, params []boundParam, names nameset) []*testcase.TestCase {
	var cases []*testcase.TestCase
	for _, p := range params {
		switch {
		case p.Type.Numeric():
			for _, probe := range NumericBoundaries(g.rejectNegativeFor(p.Name)) {
				cases = append(cases, g.boundaryCase(ep, op, names, p, probe))
			}
		case p.Type == schema.TypeString && p.Name != schema.ActionParam:
			for _, probe := range StringBoundaries(p.Required) {
				cases = append(cases, g.boundaryCase(ep, op, names, p, probe))
			}
		}
	}
	return cases
}

func (g *Generator) boundaryCase(ep *schema.Endpoint, op string, names nameset, target boundParam, probe BoundaryProbe) *testcase.TestCase {
	tc := g.buildCase(ep, withTarget(g.fillMinimal(op), target, probe.Value)).
		Named(names.unique(fmt.Sprintf("%s_boundary_%s_%s", op, target.Name, probe.Label)), testcase.Boundary,
			fmt.Sprintf("Boundary value %s for %s", probe.Label, target.Name))
	if probe.Accept {
		tc.ExpectedStatus = 200
		tc.Validations = happyValidations()
	} else {
		tc.ExpectedStatus, tc.Validations = g.rejectExpectation(
			fmt.Sprintf("Out-of-range %s for %s is rejected", probe.Label, target.Name))
	}
	return tc
}

func (g *Generator) negativeCases(ep *schema.Endpoint, op string, params []boundParam, names nameset) []*testcase.TestCase {
	var cases []*testcase.TestCase

	for _, p := range params {
		if !p.Required {
			continue
		}
		tc := g.buildCase(ep, withoutParam(g.fillMinimal(op), p)).
			Named(names.unique(fmt.Sprintf("%s_missing_param_%s", op, p.Name)), testcase.MissingParam,
				fmt.Sprintf("Required parameter %s omitted", p.Name))
		status, validations := g.rejectExpectation(
			fmt.Sprintf("Missing %s produces an error code", p.Name))
		tc.ExpectedStatus = status
		tc.Validations = append(validations, testcase.Validation{
			Type:        testcase.ValErrorMsgContains,
			Contains:    p.Name,
			Description: fmt.Sprintf("Error message names %s", p.Name),
		})
		cases = append(cases, tc)
	}

	for _, p := range params {
		if !p.Required {
			continue
		}
		var tc *testcase.TestCase
		if p.Name == schema.ActionParam {
			base := g.buildCase(ep, g.fillMinimal(op))
			if p.ns == nsQuery {
				base = base.WithQuery(decoyParamName, decoyParamValue)
			} else {
				base = base.WithBody(decoyParamName, decoyParamValue)
			}
			tc = base.Named(names.unique(fmt.Sprintf("%s_invalid_type_%s", op, p.Name)), testcase.InvalidType,
				fmt.Sprintf("Unknown sibling of %s injected, %s itself untouched", p.Name, p.Name))
		} else {
			tc = g.buildCase(ep, withTarget(g.fillMinimal(op), p, g.syn.Invalid(p.Parameter))).
				Named(names.unique(fmt.Sprintf("%s_invalid_type_%s", op, p.Name)), testcase.InvalidType,
					fmt.Sprintf("Wrong JSON type for %s", p.Name))
		}
		tc.ExpectedStatus, tc.Validations = g.rejectExpectation(
			fmt.Sprintf("Type mismatch on %s produces an error code", p.Name))
		cases = append(cases, tc)
	}

	cases = append(cases, g.combinationCase(ep, op, params, names))

	seenFormats := make(map[Format]bool)
	for _, p := range params {
		if p.Name == schema.ActionParam || schema.IsReservedEnv(p.Name) {
			continue
		}
		format, ok := DetectFormat(p.Parameter)
		if !ok || seenFormats[format] {
			continue
		}
		seenFormats[format] = true
		tc := g.buildCase(ep, withTarget(g.fillMinimal(op), p, FormatProbe(format))).
			Named(names.unique(fmt.Sprintf("%s_format_error_%s", op, p.Name)), testcase.FormatError,
				fmt.Sprintf("Malformed %s value for %s", format, p.Name))
		tc.ExpectedStatus, tc.Validations = g.rejectExpectation(
			fmt.Sprintf("Malformed %s for %s is rejected", format, p.Name))
		cases = append(cases, tc)
	}

	for _, p := range params {
		if len(p.Enum) == 0 || p.Name == schema.ActionParam {
			continue
		}
		tc := g.buildCase(ep, withTarget(g.fillMinimal(op), p, EnumViolation(p.Parameter))).
			Named(names.unique(fmt.Sprintf("%s_enum_violation_%s", op, p.Name)), testcase.EnumViolation,
				fmt.Sprintf("Value outside the declared set for %s", p.Name))
		tc.ExpectedStatus, tc.Validations = g.rejectExpectation(
			fmt.Sprintf("Undeclared enum value for %s is rejected", p.Name))
		cases = append(cases, tc)
	}

	return cases
}

// combinationCase sends one valid and one invalid parameter together,
// preferring a body/query pair. With fewer than two eligible parameters it
// degrades to a plain request asserting the service does not crash.
func (g *Generator) combinationCase(ep *schema.Endpoint, op string, params []boundParam, names nameset) *testcase.TestCase {
	corruptible := func(p boundParam) bool {
		return p.Name != schema.ActionParam && !schema.IsReservedEnv(p.Name)
	}

	var valid, invalid *boundParam
	for i := range params {
		p := params[i]
		if p.ns == nsBody && valid == nil {
			valid = &p
		}
		if p.ns == nsQuery && invalid == nil && corruptible(p) {
			invalid = &p
		}
	}
	if valid == nil || invalid == nil {
		valid, invalid = nil, nil
		for i := range params {
			p := params[i]
			if valid == nil {
				valid = &p
				continue
			}
			if corruptible(p) && !sameParam(p, *valid) {
				invalid = &p
				break
			}
		}
	}

	if valid == nil || invalid == nil {
		tc := g.buildCase(ep, g.fillMinimal(op)).
			Named(names.unique(op+"_combination"), testcase.Combination,
				"Too few parameters to combine, request must still not crash the service")
		tc.ExpectedStatus = 200
		tc.Validations = []testcase.Validation{
			{
				Type:        testcase.ValNotStatusCode,
				NotExpected: 500,
				Description: "Service does not crash",
			},
		}
		return tc
	}

	fill := withTarget(g.fillMinimal(op), *valid, g.syn.Valid(valid.Parameter, op))
	fill = withTarget(fill, *invalid, g.syn.Invalid(invalid.Parameter))
	tc := g.buildCase(ep, fill).
		Named(names.unique(op+"_combination"), testcase.Combination,
			fmt.Sprintf("Valid %s combined with invalid %s", valid.Name, invalid.Name))
	tc.ExpectedStatus, tc.Validations = g.rejectExpectation(
		fmt.Sprintf("Invalid %s is rejected even next to a valid %s", invalid.Name, valid.Name))
	return tc
}

func (g *Generator) securityFill(op string) fillFn {
	return func(p boundParam) (interface{}, bool) {
		if !p.Required && p.ns != nsPath {
			return nil, false
		}
		return g.syn.SecurityValue(p.Parameter, op), true
	}
}

// docValidationCase asserts the documented response fields are present. It
// returns nil when the endpoint documents no response schema.
func (g *Generator) docValidationCase(ep *schema.Endpoint, op string, names nameset) *testcase.TestCase {
	resp, ok := ep.Responses[200]
	if !ok || len(resp.Schema) == 0 {
		var codes []int
		for code := range ep.Responses {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			if code >= 200 && code < 300 && len(ep.Responses[code].Schema) > 0 {
				resp, ok = ep.Responses[code], true
				break
			}
		}
	}
	if !ok || len(resp.Schema) == 0 {
		return nil
	}

	fields := make([]string, 0, len(resp.Schema))
	for name := range resp.Schema {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	tc := g.buildCase(ep, g.fillMinimal(op)).
		Named(names.unique(op+"_doc_validation"), testcase.DocValidation,
			"Response carries every documented field")
	tc.ExpectedStatus = 200
	tc.Validations = []testcase.Validation{
		statusIs(200),
		{
			Type:        testcase.ValContentType,
			Expected:    "application/json",
			Description: "Response is JSON",
		},
	}
	for _, name := range fields {
		tc.Validations = append(tc.Validations, testcase.Validation{
			Type:        testcase.ValJSONFieldExists,
			Field:       name,
			Description: fmt.Sprintf("Documented field %s is present", name),
		})
	}
	return tc
}

func hasBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}
