package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"api-test-ai/internal/result"
)

// Options control where reports land and in which formats.
type Options struct {
	OutputDir string
	Format    []string
	Logger    zerolog.Logger
}

// Reporter renders suite results into report files.
type Reporter struct {
	opts Options
}

// NewReporter returns a Reporter writing into opts.OutputDir.
func NewReporter(opts Options) *Reporter {
	if opts.OutputDir == "" {
		opts.OutputDir = "reports"
	}
	if len(opts.Format) == 0 {
		opts.Format = []string{"json"}
	}
	return &Reporter{opts: opts}
}

// Summary is the aggregate block at the top of every report.
type Summary struct {
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMS  float64   `json:"duration_ms"`
	Total       int       `json:"total"`
	Success     int       `json:"success"`
	Failure     int       `json:"failure"`
	Error       int       `json:"error"`
	Skipped     int       `json:"skipped"`
	SuccessRate float64   `json:"success_rate"`
}

// EndpointReport groups case results under their endpoint.
type EndpointReport struct {
	Endpoint string              `json:"endpoint"`
	Total    int                 `json:"total"`
	Success  int                 `json:"success"`
	Failure  int                 `json:"failure"`
	Error    int                 `json:"error"`
	Skipped  int                 `json:"skipped"`
	Results  []result.CaseResult `json:"results"`
}

// Insight is one model-generated improvement suggestion attached to the
// report.
type Insight struct {
	Endpoint       string `json:"endpoint"`
	Severity       string `json:"severity"`
	Issue          string `json:"issue"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Document is the full report payload, shared by the JSON and HTML
// renderings.
type Document struct {
	Summary   Summary          `json:"summary"`
	Endpoints []EndpointReport `json:"endpoints"`
	Insights  []Insight        `json:"insights,omitempty"`
}

// Build aggregates a suite result into a report document. Counts are
// recomputed here so a hand-edited result file cannot carry stale numbers.
func Build(suite *result.SuiteResult, insights []Insight) *Document {
	doc := &Document{
		Summary: Summary{
			Name:        suite.Name,
			StartTime:   suite.StartTime,
			EndTime:     suite.EndTime,
			Total:       suite.TotalCount(),
			Success:     suite.SuccessCount(),
			Failure:     suite.FailureCount(),
			Error:       suite.ErrorCount(),
			Skipped:     suite.SkippedCount(),
			SuccessRate: suite.SuccessRate(),
		},
		Insights: insights,
	}
	if !suite.EndTime.IsZero() {
		doc.Summary.DurationMS = float64(suite.EndTime.Sub(suite.StartTime)) / float64(time.Millisecond)
	}

	groups := make(map[string]*EndpointReport)
	var keys []string
	for _, r := range suite.Results {
		key := r.HTTPMethod + " " + r.EndpointPath
		group, ok := groups[key]
		if !ok {
			group = &EndpointReport{Endpoint: key}
			groups[key] = group
			keys = append(keys, key)
		}
		group.Total++
		switch r.Status {
		case result.StatusSuccess:
			group.Success++
		case result.StatusFailure:
			group.Failure++
		case result.StatusError:
			group.Error++
		case result.StatusSkipped:
			group.Skipped++
		}
		group.Results = append(group.Results, r)
	}

	sort.Strings(keys)
	for _, key := range keys {
		doc.Endpoints = append(doc.Endpoints, *groups[key])
	}
	return doc
}

// Generate writes the configured report formats and returns the paths of
// the files it wrote.
func (r *Reporter) Generate(suite *result.SuiteResult, insights []Insight) ([]string, error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	doc := Build(suite, insights)
	stamp := time.Now().Format("20060102_150405")

	var written []string
	for _, format := range r.opts.Format {
		switch format {
		case "json":
			path := filepath.Join(r.opts.OutputDir, fmt.Sprintf("api_test_report_%s.json", stamp))
			if err := writeJSON(path, doc); err != nil {
				return written, fmt.Errorf("failed to generate JSON report: %w", err)
			}
			written = append(written, path)
		case "html":
			path := filepath.Join(r.opts.OutputDir, fmt.Sprintf("api_test_report_%s.html", stamp))
			if err := writeHTML(path, doc); err != nil {
				return written, fmt.Errorf("failed to generate HTML report: %w", err)
			}
			written = append(written, path)
		default:
			r.opts.Logger.Warn().Str("format", format).Msg("unknown report format skipped")
		}
	}

	for _, path := range written {
		r.opts.Logger.Info().Str("path", path).Msg("report written")
	}
	return written, nil
}

func writeJSON(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
