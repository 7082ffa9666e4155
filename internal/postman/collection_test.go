package postman

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-test-ai/internal/testcase"
)

func exportSuite() testcase.Suite {
	s := testcase.Suite{}
	s.Add(&testcase.Collection{
		Endpoint: testcase.EndpointInfo{
			Path:        "/DescribeUDBInstance",
			Method:      "POST",
			Description: "List database instances",
		},
		Cases: []*testcase.TestCase{
			{
				Name:   "DescribeUDBInstance_happy_path",
				Method: "POST",
				Path:   "/DescribeUDBInstance",
				Type:   testcase.HappyPath,
				RequestData: map[string]interface{}{
					"Action": "DescribeUDBInstance",
					"Region": "{{Region}}",
				},
				QueryParams:    map[string]interface{}{"Limit": 20},
				ExpectedStatus: 200,
				Validations: []testcase.Validation{
					{Type: testcase.ValStatusCode, Expected: 200},
					{Type: testcase.ValJSONField, Field: "RetCode", Expected: 0},
				},
			},
			{
				Name:           "DescribeUDBInstance_missing_param_Region",
				Method:         "POST",
				Path:           "/DescribeUDBInstance",
				Type:           testcase.MissingParam,
				RequestData:    map[string]interface{}{"Action": "DescribeUDBInstance"},
				ExpectedStatus: 400,
				Validations: []testcase.Validation{
					{Type: testcase.ValStatusCode, Expected: 400},
					{Type: testcase.ValJSONField, Field: "RetCode", Expected: testcase.NotEqual(0)},
					{Type: testcase.ValErrorMsgContains, Contains: "Region"},
				},
			},
		},
	})
	return s
}

func TestCollectionStructure(t *testing.T) {
	e := NewExporter(zerolog.Nop())
	collection := e.Collection("UDB Tests", exportSuite())

	assert.Equal(t, "UDB Tests", collection.Info.Name)
	assert.Equal(t, collectionSchema, collection.Info.Schema)
	assert.NotEmpty(t, collection.Info.PostmanID)

	require.Len(t, collection.Item, 1)
	folder := collection.Item[0]
	assert.Equal(t, "/DescribeUDBInstance - List database instances", folder.Name)
	require.Len(t, folder.Item, 2)
}

func TestRequestItemShape(t *testing.T) {
	e := NewExporter(zerolog.Nop())
	collection := e.Collection("UDB Tests", exportSuite())
	item := collection.Item[0].Item[0]

	assert.Equal(t, "DescribeUDBInstance_happy_path", item.Name)
	assert.Equal(t, "POST", item.Request.Method, "collections fire action requests as POST")

	// Query parameters fold into the JSON body.
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(item.Request.Body.Raw), &body))
	assert.Equal(t, "DescribeUDBInstance", body["Action"])
	assert.Equal(t, "{{Region}}", body["Region"], "placeholders survive for Postman to resolve")
	assert.EqualValues(t, 20, body["Limit"])

	assert.Equal(t, "raw", item.Request.Body.Mode)
	assert.Equal(t, "json", item.Request.Body.Options.Raw.Language)

	url := item.Request.URL
	assert.Equal(t, "{{base_url}}/DescribeUDBInstance", url.Raw)
	assert.Equal(t, []string{"{{base_url}}"}, url.Host)
	assert.Equal(t, []string{"DescribeUDBInstance"}, url.Path)

	require.Len(t, item.Request.Header, 1)
	assert.Equal(t, Header{Key: "Content-Type", Value: "application/json", Type: "text"}, item.Request.Header[0])

	require.Len(t, item.Event, 2)
	assert.Equal(t, "test", item.Event[0].Listen)
	assert.Equal(t, "prerequest", item.Event[1].Listen)
	assert.Equal(t, "text/javascript", item.Event[0].Script.Type)

	assert.NotNil(t, item.Response)
	assert.Empty(t, item.Response)
}

func TestContentTypeHeaderForced(t *testing.T) {
	tc := &testcase.TestCase{
		Name:    "headers",
		Method:  "POST",
		Path:    "/CreateUDBInstance",
		Headers: map[string]string{"content-type": "text/plain", "X-Custom": "1"},
	}

	e := NewExporter(zerolog.Nop())
	item := e.requestItem(tc)

	var contentType, custom string
	for _, h := range item.Request.Header {
		switch h.Key {
		case "content-type":
			contentType = h.Value
		case "X-Custom":
			custom = h.Value
		}
	}
	assert.Equal(t, "application/json", contentType, "raw JSON bodies need a JSON content type")
	assert.Equal(t, "1", custom)
}

func TestActionInjectedFromPath(t *testing.T) {
	tc := &testcase.TestCase{
		Name:        "no_action",
		Method:      "POST",
		Path:        "/CreateUDBInstance",
		RequestData: map[string]interface{}{"Name": "db-1"},
	}

	e := NewExporter(zerolog.Nop())
	item := e.requestItem(tc)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(item.Request.Body.Raw), &body))
	assert.Equal(t, "CreateUDBInstance", body["Action"], "Action derived from the path when absent")
}

func TestTestScriptAssertions(t *testing.T) {
	e := NewExporter(zerolog.Nop())
	collection := e.Collection("UDB Tests", exportSuite())

	happy := strings.Join(collection.Item[0].Item[0].Event[0].Script.Exec, "\n")
	assert.Contains(t, happy, "pm.expect(pm.response.code).to.eql(200);")
	assert.Contains(t, happy, "pm.expect(pm.response.responseTime).to.be.below(5000);")
	assert.Contains(t, happy, "var jsonData = pm.response.json();")
	assert.Contains(t, happy, "pm.expect(jsonData.RetCode).to.eql(0);")

	missing := strings.Join(collection.Item[0].Item[1].Event[0].Script.Exec, "\n")
	assert.Contains(t, missing, "pm.expect(pm.response.code).to.eql(400);")
	assert.Contains(t, missing, "pm.expect(jsonData.RetCode).to.not.eql(0);",
		"the not-equal marker renders as a negated assertion")
	assert.Contains(t, missing, `pm.expect(pm.response.text()).to.include("Region");`)
}

func TestSignatureScriptAttached(t *testing.T) {
	e := NewExporter(zerolog.Nop())
	collection := e.Collection("UDB Tests", exportSuite())

	prerequest := strings.Join(collection.Item[0].Item[0].Event[1].Script.Exec, "\n")
	assert.Contains(t, prerequest, "CryptoJS.SHA1(tmp).toString(CryptoJS.enc.Hex)")
	assert.Contains(t, prerequest, "Object.keys(obj).sort()")
	assert.Contains(t, prerequest, "pm.variables.get('PrivateKey')")
	assert.Contains(t, prerequest, "pm.request.body.raw = JSON.stringify(obj);")
}

func TestIdempotencyRuleSkippedInScripts(t *testing.T) {
	tc := &testcase.TestCase{
		Name:           "idem",
		Method:         "POST",
		Path:           "/CreateUDBInstance",
		ExpectedStatus: 200,
		Validations: []testcase.Validation{
			{Type: testcase.ValStatusCode, Expected: 200},
			{Type: testcase.ValIdempotency},
		},
	}

	script := strings.Join(testScript(tc), "\n")
	assert.NotContains(t, script, "idempotency",
		"repeat semantics cannot run inside a collection, so no assertion is emitted")
	assert.Contains(t, script, "pm.expect(pm.response.code).to.eql(200);")
}

func TestCollectionWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "postman_collection.json")

	e := NewExporter(zerolog.Nop())
	collection := e.Collection("UDB Tests", exportSuite())
	require.NoError(t, e.Write(path, collection))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Collection
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "UDB Tests", loaded.Info.Name)
	require.Len(t, loaded.Item, 1)
	assert.Len(t, loaded.Item[0].Item, 2)
}

func TestActionFromPath(t *testing.T) {
	assert.Equal(t, "DescribeUDBInstance", actionFromPath("/DescribeUDBInstance"))
	assert.Equal(t, "tables", actionFromPath("/databases/1/tables"))
	assert.Equal(t, "", actionFromPath("/"))
}
