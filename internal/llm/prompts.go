package llm

import (
	"encoding/json"
	"fmt"

	"api-test-ai/internal/result"
	"api-test-ai/internal/schema"
)

func extractionPrompt(documentText string) string {
	return fmt.Sprintf(`Please extract the API schema from the following documentation text.
The output should be a valid JSON object with the following structure:
{
    "title": "API name",
    "description": "Description of the API",
    "endpoints": [
        {
            "path": "/api/v1/resource",
            "method": "GET|POST|PUT|DELETE",
            "description": "Description of what this endpoint does",
            "query_parameters": [
                {
                    "name": "param1",
                    "description": "Description of the parameter",
                    "required": true,
                    "type": "string|integer|number|boolean|array|object|date"
                }
            ],
            "request_body": {
                "content_type": "application/json",
                "parameters": [
                    {
                        "name": "body_param1",
                        "description": "Description of the body parameter",
                        "required": true,
                        "type": "string|integer|number|boolean|array|object|date"
                    }
                ]
            },
            "responses": {
                "200": {
                    "status_code": 200,
                    "description": "Success response description",
                    "content_type": "application/json",
                    "schema": {
                        "property1": "string"
                    }
                }
            }
        }
    ]
}

Documentation Text:
%s

Return only the JSON object, with no additional explanation.`, documentText)
}

func caseGenPrompt(ep schema.Endpoint) string {
	endpointJSON, err := json.MarshalIndent(ep, "", "  ")
	if err != nil {
		endpointJSON = []byte("{}")
	}

	return fmt.Sprintf(`Please generate comprehensive test cases for the following API endpoint:

%s

The output should be a valid JSON array of test cases with the following structure:
[
    {
        "name": "Test case name",
        "description": "Description of the test case",
        "method": "%s",
        "path": "%s",
        "headers": {
            "header1": "value1"
        },
        "query_params": {
            "param1": "value1"
        },
        "request_data": {
            "field1": "value1"
        },
        "expected_status": 200,
        "validations": [
            {
                "type": "status_code",
                "expected": 200
            },
            {
                "type": "json_field",
                "field": "field1",
                "expected": "value1"
            },
            {
                "type": "response_time",
                "max_ms": 1000
            }
        ]
    }
]

Generate at least 3 test cases:
1. A positive test case (happy path)
2. A test case with invalid/missing parameters
3. A test case with an edge case

Return only the JSON array, with no additional explanation.`, string(endpointJSON), ep.Method, ep.Path)
}

func recommendationPrompt(res *result.SuiteResult) string {
	resultsJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		resultsJSON = []byte("{}")
	}

	return fmt.Sprintf(`Please analyze the following API test results and generate recommendations for improving the API:

%s

The output should be a valid JSON array of recommendations with the following structure:
[
    {
        "endpoint": "The endpoint path or 'general' for overall recommendations",
        "severity": "high|medium|low",
        "issue": "Brief issue description",
        "description": "Detailed description of the issue",
        "recommendation": "Actionable recommendation to address the issue"
    }
]

Focus on:
1. Failed tests and their causes
2. Performance issues
3. Security concerns
4. Usability improvements
5. Documentation gaps

Return only the JSON array, with no additional explanation.`, string(resultsJSON))
}
