package generator

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-test-ai/internal/schema"
	"api-test-ai/internal/testcase"
)

// describeEndpoint is an action-style POST endpoint with one parameter of
// each interesting kind: the action, a reserved environment parameter, a
// required string, an optional integer, and an optional string.
func describeEndpoint() *schema.Endpoint {
	return &schema.Endpoint{
		Path:        "/DescribeUDBInstance",
		Method:      "POST",
		Description: "List database instances",
		Body: &schema.RequestBody{
			ContentType: "application/json",
			Parameters: []schema.Parameter{
				{Name: "Action", Required: true, Type: schema.TypeString},
				{Name: "Region", Required: true, Type: schema.TypeString},
				{Name: "DBName", Required: true, Type: schema.TypeString},
				{Name: "Limit", Required: false, Type: schema.TypeInteger},
				{Name: "InstanceName", Required: false, Type: schema.TypeString},
			},
		},
		Responses: map[int]schema.Response{
			200: {StatusCode: 200, Schema: map[string]interface{}{
				"RetCode": "integer",
				"Action":  "string",
				"DataSet": "array",
			}},
		},
	}
}

func caseByName(t *testing.T, cases []*testcase.TestCase, name string) *testcase.TestCase {
	t.Helper()
	for _, tc := range cases {
		if tc.Name == name {
			return tc
		}
	}
	t.Fatalf("case %q not found", name)
	return nil
}

func countByType(cases []*testcase.TestCase) map[testcase.CaseType]int {
	counts := make(map[testcase.CaseType]int)
	for _, tc := range cases {
		counts[tc.Type]++
	}
	return counts
}

func TestEndpointBatteryComposition(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	counts := countByType(cases)
	assert.Equal(t, 1, counts[testcase.HappyPath])
	assert.Equal(t, 1, counts[testcase.RequiredParamsOnly])
	assert.Equal(t, 1, counts[testcase.PartialOptional])
	assert.Equal(t, 1, counts[testcase.AllParams])
	assert.Equal(t, 2, counts[testcase.DataType], "one representative per parameter type")
	// Limit gets the 7 numeric probes; Region, DBName, and InstanceName
	// get 6 string probes each. Action is never corrupted.
	assert.Equal(t, 25, counts[testcase.Boundary])
	assert.Equal(t, 3, counts[testcase.MissingParam])
	assert.Equal(t, 3, counts[testcase.InvalidType])
	assert.Equal(t, 1, counts[testcase.Combination])
	assert.Equal(t, 1, counts[testcase.Security])
	assert.Equal(t, 1, counts[testcase.Idempotency])
	assert.Equal(t, 1, counts[testcase.Performance])
	assert.Equal(t, 1, counts[testcase.DocValidation])
	assert.Len(t, cases, 42)

	categories := make(map[testcase.Category]bool)
	for _, tc := range cases {
		categories[tc.Category] = true
	}
	for _, want := range []testcase.Category{
		testcase.CategoryEquivalence,
		testcase.CategoryBoundary,
		testcase.CategoryNegative,
		testcase.CategorySpecial,
	} {
		assert.True(t, categories[want], "category %s missing", want)
	}
}

func TestBatteryNamesUnique(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, tc := range cases {
		require.NotEmpty(t, tc.Name)
		require.False(t, seen[tc.Name], "duplicate case name %s", tc.Name)
		seen[tc.Name] = true
	}
}

func TestBatteryDeterministic(t *testing.T) {
	build := func() []*testcase.TestCase {
		cases, err := New(Options{Seed: 7}).Endpoint(describeEndpoint())
		require.NoError(t, err)
		return cases
	}

	first, second := build(), build()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		if diff := cmp.Diff(first[i].RequestData, second[i].RequestData); diff != "" {
			t.Errorf("case %s request data differs between runs:\n%s", first[i].Name, diff)
		}
	}
}

func TestRequiredParamsOnlyCase(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_required_params_only")
	want := map[string]interface{}{
		"Action": "DescribeUDBInstance",
		"Region": "{{Region}}",
		"DBName": "test_dbname",
	}
	assert.Equal(t, want, tc.RequestData)
	assert.Empty(t, tc.QueryParams)
	assert.Equal(t, 200, tc.ExpectedStatus)

	require.Len(t, tc.Validations, 2)
	assert.Equal(t, testcase.ValStatusCode, tc.Validations[0].Type)
	assert.Equal(t, testcase.ValJSONField, tc.Validations[1].Type)
	assert.Equal(t, "RetCode", tc.Validations[1].Field)
	assert.Equal(t, 0, tc.Validations[1].Expected)
}

func TestHappyPathReservedPlaceholders(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_happy_path")
	assert.Equal(t, "DescribeUDBInstance", tc.RequestData["Action"])
	assert.Equal(t, "{{Region}}", tc.RequestData["Region"])
	assert.Contains(t, tc.RequestData, "DBName")
}

func TestMissingParamCase(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_missing_param_Region")
	assert.NotContains(t, tc.RequestData, "Region")
	assert.Contains(t, tc.RequestData, "Action", "other required parameters stay")
	assert.Equal(t, 400, tc.ExpectedStatus)

	var sawRetCode, sawErrorMsg bool
	for _, v := range tc.Validations {
		switch v.Type {
		case testcase.ValJSONField:
			sawRetCode = true
			assert.Equal(t, "RetCode", v.Field)
			ne, ok := testcase.NotEqualValue(v.Expected)
			require.True(t, ok, "rejection must use the not-equal marker")
			assert.Equal(t, 0, ne)
		case testcase.ValErrorMsgContains:
			sawErrorMsg = true
			assert.Equal(t, "Region", v.Contains)
		}
	}
	assert.True(t, sawRetCode)
	assert.True(t, sawErrorMsg)
}

func TestBusinessCodeRejectionSignal(t *testing.T) {
	g := New(Options{Seed: 42, RejectionSignal: RejectBusinessCode})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_missing_param_Region")
	assert.Equal(t, 200, tc.ExpectedStatus, "business code APIs reject with HTTP 200")

	require.NotEmpty(t, tc.Validations)
	assert.Equal(t, 200, tc.Validations[0].Expected)
	ne, ok := testcase.NotEqualValue(tc.Validations[1].Expected)
	require.True(t, ok)
	assert.Equal(t, 0, ne)
}

func TestActionNeverCorrupted(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	for _, tc := range cases {
		if action, ok := tc.RequestData["Action"]; ok {
			assert.Equal(t, "DescribeUDBInstance", action,
				"case %s must not corrupt the Action parameter", tc.Name)
		}
	}

	decoy := caseByName(t, cases, "DescribeUDBInstance_invalid_type_Action")
	assert.Equal(t, "DescribeUDBInstance", decoy.RequestData["Action"])
	assert.Equal(t, "InvalidActionValue", decoy.RequestData["InvalidActionParam"])
}

func TestNumericBoundaryGrid(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tests := []struct {
		label  string
		value  interface{}
		accept bool
	}{
		{label: "max", value: int64(2147483647), accept: true},
		{label: "max_plus_one", value: int64(2147483648), accept: false},
		{label: "min", value: int64(-2147483648), accept: true},
		{label: "min_minus_one", value: int64(-2147483649), accept: false},
		{label: "zero", value: int64(0), accept: true},
		{label: "negative", value: int64(-1), accept: true},
		{label: "large", value: uint64(9223372036854775808), accept: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			tc := caseByName(t, cases, fmt.Sprintf("DescribeUDBInstance_boundary_Limit_%s", tt.label))
			assert.Equal(t, tt.value, tc.RequestData["Limit"])
			if tt.accept {
				assert.Equal(t, 200, tc.ExpectedStatus)
			} else {
				assert.Equal(t, 400, tc.ExpectedStatus)
			}
		})
	}
}

func TestNegativeBoundaryRejectedWhenConfigured(t *testing.T) {
	g := New(Options{Seed: 42, RejectNegatives: true})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_boundary_Limit_negative")
	assert.Equal(t, 400, tc.ExpectedStatus, "Limit matches the non-negative name list")
}

func TestStringBoundaryGrid(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	// Empty string on a required parameter is a rejection, on an optional
	// one it is accepted.
	requiredEmpty := caseByName(t, cases, "DescribeUDBInstance_boundary_DBName_empty")
	assert.Equal(t, 400, requiredEmpty.ExpectedStatus)
	assert.Equal(t, "", requiredEmpty.RequestData["DBName"])

	optionalEmpty := caseByName(t, cases, "DescribeUDBInstance_boundary_InstanceName_empty")
	assert.Equal(t, 200, optionalEmpty.ExpectedStatus)

	long := caseByName(t, cases, "DescribeUDBInstance_boundary_DBName_long")
	assert.Len(t, long.RequestData["DBName"], 1000)
	assert.Equal(t, 400, long.ExpectedStatus)

	for _, label := range []string{"special_chars", "spaces", "emoji", "multilingual"} {
		tc := caseByName(t, cases, "DescribeUDBInstance_boundary_DBName_"+label)
		assert.Equal(t, 200, tc.ExpectedStatus, "%s is accepted", label)
	}

	// Reserved parameters are probed too, Action is not.
	caseByName(t, cases, "DescribeUDBInstance_boundary_Region_empty")
	for _, tc := range cases {
		assert.NotContains(t, tc.Name, "boundary_Action")
	}
}

func TestSecurityCase(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_security")
	assert.Equal(t, 200, tc.ExpectedStatus, "injection probes always expect a handled response")
	assert.Equal(t, SecurityProbeString, tc.RequestData["DBName"])
	assert.Equal(t, "DescribeUDBInstance", tc.RequestData["Action"])
	assert.Equal(t, "{{Region}}", tc.RequestData["Region"])

	ne, ok := testcase.NotEqualValue(tc.Validations[1].Expected)
	require.True(t, ok, "security case asserts a non-zero RetCode")
	assert.Equal(t, 0, ne)
}

func TestIdempotencyCase(t *testing.T) {
	g := New(Options{Seed: 42, RepeatCount: 5})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_idempotency")
	assert.Equal(t, "{{$randomUUID}}", tc.RequestData["ClientToken"])
	assert.Equal(t, 5, tc.RepeatCount)

	var sawIdempotency bool
	for _, v := range tc.Validations {
		if v.Type == testcase.ValIdempotency {
			sawIdempotency = true
		}
	}
	assert.True(t, sawIdempotency)
}

func TestPerformanceCase(t *testing.T) {
	g := New(Options{Seed: 42, MaxResponseMS: 1500})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_performance")
	require.Len(t, tc.Validations, 2)
	assert.Equal(t, testcase.ValResponseTime, tc.Validations[1].Type)
	assert.Equal(t, 1500.0, tc.Validations[1].MaxMS)
}

func TestDocValidationCase(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_doc_validation")
	require.Len(t, tc.Validations, 5, "status, content type, and one per documented field")
	assert.Equal(t, testcase.ValContentType, tc.Validations[1].Type)
	assert.Equal(t, "application/json", tc.Validations[1].Expected)

	// Field checks come in sorted order.
	var fields []string
	for _, v := range tc.Validations[2:] {
		assert.Equal(t, testcase.ValJSONFieldExists, v.Type)
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"Action", "DataSet", "RetCode"}, fields)
}

func TestDocValidationSkippedWithoutSchema(t *testing.T) {
	ep := describeEndpoint()
	ep.Responses = nil

	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(ep)
	require.NoError(t, err)

	assert.Zero(t, countByType(cases)[testcase.DocValidation])
}

func TestEnumViolationCase(t *testing.T) {
	ep := describeEndpoint()
	ep.Body.Parameters = append(ep.Body.Parameters, schema.Parameter{
		Name:     "DBType",
		Required: false,
		Type:     schema.TypeString,
		Enum:     []interface{}{"mysql", "postgresql"},
	})

	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(ep)
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_enum_violation_DBType")
	assert.Equal(t, "INVALID_ENUM_VALUE", tc.RequestData["DBType"])
	assert.Equal(t, 400, tc.ExpectedStatus)
}

func TestFormatErrorCase(t *testing.T) {
	ep := describeEndpoint()
	ep.Body.Parameters = append(ep.Body.Parameters, schema.Parameter{
		Name:     "NotifyEmail",
		Required: false,
		Type:     schema.TypeString,
	})

	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(ep)
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_format_error_NotifyEmail")
	assert.Equal(t, "invalid-email-format", tc.RequestData["NotifyEmail"])
	assert.Equal(t, 400, tc.ExpectedStatus)
}

func TestCombinationCase(t *testing.T) {
	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(describeEndpoint())
	require.NoError(t, err)

	tc := caseByName(t, cases, "DescribeUDBInstance_combination")
	// One parameter carries a wrong-typed value while the rest stay valid.
	// Action and the reserved Region are never the corrupted one.
	assert.Equal(t, 12345, tc.RequestData["DBName"])
	assert.Equal(t, "DescribeUDBInstance", tc.RequestData["Action"])
	assert.Equal(t, 400, tc.ExpectedStatus)
}

func TestGenerateSuiteSkipsBrokenEndpoints(t *testing.T) {
	api := &schema.APISchema{
		Title: "Mixed",
		Endpoints: []schema.Endpoint{
			*describeEndpoint(),
			{
				Path:   "/users",
				Method: "GET",
				PathParams: []schema.Parameter{
					{Name: "id", Required: true, Type: schema.TypeInteger},
				},
			},
		},
	}

	g := New(Options{Seed: 42})
	suite, errs := g.GenerateSuite(api)

	require.Len(t, errs, 1)
	var genErr *GenerationError
	require.ErrorAs(t, errs[0], &genErr)
	assert.Equal(t, "/users", genErr.Path)

	assert.Len(t, suite, 1)
	assert.Contains(t, suite, "POST /DescribeUDBInstance")
}

func TestPathParamSubstitution(t *testing.T) {
	ep := &schema.Endpoint{
		Path:   "/databases/{dbId}/tables",
		Method: "GET",
		PathParams: []schema.Parameter{
			{Name: "dbId", Required: true, Type: schema.TypeInteger},
		},
		QueryParams: []schema.Parameter{
			{Name: "Limit", Required: false, Type: schema.TypeInteger},
		},
	}

	g := New(Options{Seed: 42})
	cases, err := g.Endpoint(ep)
	require.NoError(t, err)

	tc := caseByName(t, cases, "tables_required_params_only")
	assert.Equal(t, "/databases/1/tables", tc.Path)
	assert.Equal(t, 1, tc.PathParams["dbId"])
}
