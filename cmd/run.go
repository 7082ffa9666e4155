package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"api-test-ai/internal/llm"
	"api-test-ai/internal/postman"
	"api-test-ai/internal/report"
	"api-test-ai/internal/result"
	"api-test-ai/internal/runner"
	"api-test-ai/internal/testcase"
)

var (
	runIn        string
	runOut       string
	runBaseURL   string
	runEnvFile   string
	runEnvVars   []string
	runReport    bool
	runRecommend bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a generated test case suite against a live API",
	Long: `Executes every case in a test case file sequentially, validates
the responses, and writes the aggregated results. {{Name}} placeholders
resolve from the configured environment, an optional --env-file, and any
--env-var overrides, in that order.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	suite, err := testcase.LoadSuite(runIn)
	if err != nil {
		return err
	}

	overrides, err := parseEnvVars(runEnvVars)
	if err != nil {
		return err
	}
	env := make(map[string]string, len(cfg.Environment)+len(overrides))
	for k, v := range cfg.Environment {
		env[k] = v
	}
	if runEnvFile != "" {
		penv, err := postman.LoadEnvironment(runEnvFile)
		if err != nil {
			return err
		}
		for k, v := range penv.Vars() {
			env[k] = v
		}
	}
	for k, v := range overrides {
		env[k] = v
	}

	baseURL := runBaseURL
	if baseURL == "" {
		baseURL = cfg.Testing.BaseURL
	}

	r := runner.New(runner.Options{
		BaseURL:     baseURL,
		Environment: env,
		Timeout:     time.Duration(cfg.Testing.TimeoutSeconds) * time.Second,
		Signer:      requestSigner(),
		Logger:      log,
	})

	results := r.RunSuite(cmd.Context(), cfg.Testing.SuiteName, suite)
	if err := results.Save(runOut); err != nil {
		return err
	}
	log.Info().Str("path", runOut).Msg("results written")

	fmt.Printf("Ran %d test(s): %d success, %d failure, %d error (success rate %.1f%%)\n",
		results.TotalCount(), results.SuccessCount(), results.FailureCount(),
		results.ErrorCount(), results.SuccessRate()*100)

	if !runReport {
		return nil
	}

	var insights []report.Insight
	if runRecommend {
		insights = recommendInsights(cmd, results)
	}

	reporter := report.NewReporter(report.Options{
		OutputDir: cfg.Report.OutputDir,
		Format:    reportFormats(),
		Logger:    log,
	})
	paths, err := reporter.Generate(results, insights)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Printf("Report written to %s\n", path)
	}
	return nil
}

func recommendInsights(cmd *cobra.Command, results *result.SuiteResult) []report.Insight {
	analyzer, err := llm.NewAnalyzer(aiConfig(), log)
	if err != nil {
		log.Warn().Err(err).Msg("AI recommendations unavailable")
		return nil
	}
	return insightsFromRecommendations(analyzer.Recommend(cmd.Context(), results))
}

func reportFormats() []string {
	formats := cfg.Report.Format
	if cfg.Report.GenerateHTML && !containsFormat(formats, "html") {
		formats = append(append([]string(nil), formats...), "html")
	}
	return formats
}

func containsFormat(formats []string, want string) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}

func insightsFromRecommendations(recs []llm.Recommendation) []report.Insight {
	out := make([]report.Insight, len(recs))
	for i, rec := range recs {
		out[i] = report.Insight{
			Endpoint:       rec.Endpoint,
			Severity:       rec.Severity,
			Issue:          rec.Issue,
			Description:    rec.Description,
			Recommendation: rec.Recommendation,
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runIn, "input", "i", "output/test_cases.json", "test case file to run")
	runCmd.Flags().StringVarP(&runOut, "output", "o", "output/test_results.json", "results output path")
	runCmd.Flags().StringVarP(&runBaseURL, "url", "u", "", "base URL override")
	runCmd.Flags().StringVar(&runEnvFile, "env-file", "", "Postman environment file layered over the configured environment")
	runCmd.Flags().StringArrayVar(&runEnvVars, "env-var", nil, "environment override as KEY=VALUE, repeatable")
	runCmd.Flags().BoolVar(&runReport, "report", false, "also generate reports after the run")
	runCmd.Flags().BoolVar(&runRecommend, "recommend", false, "include AI recommendations in the report")
}
