package postman

import (
	"encoding/json"
	"fmt"

	"api-test-ai/internal/testcase"
)

// testScript renders the case's validations as Postman test assertions.
// The status and response time checks always come first so a collection
// run reports something useful even for cases with no extra rules.
func testScript(tc *testcase.TestCase) []string {
	lines := []string{
		`pm.test("Status code test", function () {`,
		fmt.Sprintf(`    pm.expect(pm.response.code).to.eql(%d);`, tc.ExpectedStatus),
		`});`,
		``,
		`pm.test("Response time is less than 5000ms", function () {`,
		`    pm.expect(pm.response.responseTime).to.be.below(5000);`,
		`});`,
	}

	needsJSON := false
	for _, rule := range tc.Validations {
		switch rule.Type {
		case testcase.ValJSONField, testcase.ValJSONFieldExists:
			needsJSON = true
		}
	}
	if needsJSON {
		lines = append(lines, ``, `var jsonData = pm.response.json();`)
	}

	for _, rule := range tc.Validations {
		block := assertionBlock(rule)
		if len(block) == 0 {
			continue
		}
		lines = append(lines, ``)
		lines = append(lines, block...)
	}
	return lines
}

func assertionBlock(rule testcase.Validation) []string {
	switch rule.Type {
	case testcase.ValJSONField:
		if ne, ok := testcase.NotEqualValue(rule.Expected); ok {
			return testBlock(
				fmt.Sprintf("Field %s differs from %s", rule.Field, jsValue(ne)),
				fmt.Sprintf(`pm.expect(jsonData.%s).to.not.eql(%s);`, rule.Field, jsValue(ne)),
			)
		}
		return testBlock(
			fmt.Sprintf("Field %s equals %s", rule.Field, jsValue(rule.Expected)),
			fmt.Sprintf(`pm.expect(jsonData.%s).to.eql(%s);`, rule.Field, jsValue(rule.Expected)),
		)
	case testcase.ValJSONFieldExists:
		return testBlock(
			fmt.Sprintf("Field %s exists", rule.Field),
			fmt.Sprintf(`pm.expect(jsonData).to.have.property(%s);`, jsValue(rule.Field)),
		)
	case testcase.ValResponseTime:
		return testBlock(
			fmt.Sprintf("Response time is below %.0fms", rule.MaxMS),
			fmt.Sprintf(`pm.expect(pm.response.responseTime).to.be.below(%.0f);`, rule.MaxMS),
		)
	case testcase.ValContentType:
		return testBlock(
			"Content type check",
			fmt.Sprintf(`pm.expect(pm.response.headers.get('Content-Type')).to.include(%s);`, jsValue(rule.Expected)),
		)
	case testcase.ValBodyContains:
		return testBlock(
			"Body contains expected text",
			fmt.Sprintf(`pm.expect(pm.response.text()).to.include(%s);`, jsValue(rule.Contains)),
		)
	case testcase.ValErrorMsgContains:
		return testBlock(
			"Error message check",
			fmt.Sprintf(`pm.expect(pm.response.text()).to.include(%s);`, jsValue(rule.Contains)),
		)
	case testcase.ValNotStatusCode:
		return testBlock(
			fmt.Sprintf("Status code is not %d", rule.NotExpected),
			fmt.Sprintf(`pm.expect(pm.response.code).to.not.eql(%d);`, rule.NotExpected),
		)
	case testcase.ValHeaderExists:
		return testBlock(
			fmt.Sprintf("Header %s is present", rule.Field),
			fmt.Sprintf(`pm.expect(pm.response.headers.has(%s)).to.be.true;`, jsValue(rule.Field)),
		)
	default:
		// status_code is covered by the leading block; idempotency needs
		// repeated sends, which a collection run cannot express.
		return nil
	}
}

func testBlock(name string, assertions ...string) []string {
	lines := []string{fmt.Sprintf(`pm.test(%s, function () {`, jsValue(name))}
	for _, assertion := range assertions {
		lines = append(lines, "    "+assertion)
	}
	return append(lines, `});`)
}

// jsValue renders a Go value as a JavaScript literal.
func jsValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// signatureScript recomputes the request signature before dispatch so
// the exported collection works against signed action APIs. The body is
// re-serialized with PublicKey and Signature filled in from environment
// variables.
func signatureScript() []string {
	return []string{
		`const rawBody = pm.variables.replaceIn(pm.request.body.raw);`,
		`let obj;`,
		`try {`,
		`    obj = JSON.parse(rawBody);`,
		`} catch (e) {`,
		`    throw new Error('request body is not valid JSON: ' + e.message);`,
		`}`,
		``,
		`obj.PublicKey = pm.variables.get('PublicKey');`,
		`const privateKey = pm.variables.get('PrivateKey');`,
		``,
		`const keys = Object.keys(obj).sort();`,
		"let tmp = keys.map(key => `${key}${obj[key]}`).join('');",
		`tmp += privateKey;`,
		``,
		`obj.Signature = CryptoJS.SHA1(tmp).toString(CryptoJS.enc.Hex);`,
		`pm.request.body.raw = JSON.stringify(obj);`,
	}
}
