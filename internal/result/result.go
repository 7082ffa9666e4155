package result

import (
	"time"

	"api-test-ai/internal/testcase"
)

// Status is the terminal state of one executed test case. ERROR and FAILURE
// are distinct on purpose: FAILURE means the response arrived and an
// assertion did not hold, ERROR means the exchange itself broke (transport
// failure, timeout, unparsable body).
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// ValidationResult records one evaluated assertion. Expected and Actual are
// stringified for display.
type ValidationResult struct {
	Field    string `json:"field"`
	IsValid  bool   `json:"is_valid"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Message  string `json:"message"`
}

// CaseResult is the outcome of one test case execution.
type CaseResult struct {
	TestName       string                 `json:"test_name"`
	EndpointPath   string                 `json:"endpoint_path"`
	HTTPMethod     string                 `json:"http_method"`
	CaseType       testcase.CaseType      `json:"test_type,omitempty"`
	Category       testcase.Category      `json:"category,omitempty"`
	Status         Status                 `json:"status"`
	StatusCode     int                    `json:"status_code"`
	ResponseTimeMS float64                `json:"response_time_ms"`
	RequestData    map[string]interface{} `json:"request_data,omitempty"`
	ResponseData   interface{}            `json:"response_data,omitempty"`
	Validations    []ValidationResult     `json:"validations,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// SuiteResult aggregates the case results of one run. Counts are derived,
// never stored.
type SuiteResult struct {
	Name      string       `json:"name"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time,omitempty"`
	Results   []CaseResult `json:"test_results"`
}

func (s *SuiteResult) countBy(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// TotalCount is the number of executed cases.
func (s *SuiteResult) TotalCount() int { return len(s.Results) }

func (s *SuiteResult) SuccessCount() int { return s.countBy(StatusSuccess) }
func (s *SuiteResult) FailureCount() int { return s.countBy(StatusFailure) }
func (s *SuiteResult) ErrorCount() int   { return s.countBy(StatusError) }
func (s *SuiteResult) SkippedCount() int { return s.countBy(StatusSkipped) }

// SuccessRate is success/total, 0 for an empty suite.
func (s *SuiteResult) SuccessRate() float64 {
	if len(s.Results) == 0 {
		return 0
	}
	return float64(s.SuccessCount()) / float64(len(s.Results))
}
