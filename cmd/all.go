package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"api-test-ai/internal/generator"
	"api-test-ai/internal/llm"
	"api-test-ai/internal/report"
	"api-test-ai/internal/runner"
)

var (
	allOutDir    string
	allAI        bool
	allSeed      bool
	allBaseURL   string
	allEnvVars   []string
	allPostman   bool
	allRecommend bool
)

var allCmd = &cobra.Command{
	Use:   "all <file|url>",
	Short: "Run the full pipeline: extract, generate, run, report",
	Long: `Chains every stage against one source: extracts the schema,
generates the battery, runs it against the target API, and renders the
reports. Intermediate artifacts land in the output directory so any stage
can be re-run on its own afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runAll,
}

func runAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Stage 1: extract.
	api, err := extractSchema(ctx, args[0])
	if err != nil {
		return err
	}
	if len(api.Endpoints) == 0 {
		return errors.New("no endpoints found in source")
	}
	schemaPath := filepath.Join(allOutDir, "api_schema.json")
	if err := api.Save(schemaPath); err != nil {
		return err
	}
	fmt.Printf("[1/4] Extracted %d endpoint(s) to %s\n", len(api.Endpoints), schemaPath)

	// Stage 2: generate.
	if allSeed {
		if err := harvestExamples(api); err != nil {
			log.Warn().Err(err).Msg("example harvest failed, continuing with synthetic values")
		}
	}
	gen := generator.New(generatorOptions())
	suite, errs := gen.GenerateSuite(api)
	for _, genErr := range errs {
		log.Warn().Err(genErr).Msg("endpoint skipped")
	}
	if len(suite) == 0 {
		return errors.New("no test cases generated")
	}
	if allAI {
		analyzer, err := llm.NewAnalyzer(aiConfig(), log)
		if err != nil {
			return err
		}
		for i := range api.Endpoints {
			ep := api.Endpoints[i]
			cases := analyzer.GenerateCases(ctx, ep)
			if collection, ok := suite[ep.Method+" "+ep.Path]; ok {
				collection.Cases = append(collection.Cases, cases...)
			}
		}
	}
	casesPath := filepath.Join(allOutDir, "test_cases.json")
	if err := suite.Save(casesPath); err != nil {
		return err
	}
	fmt.Printf("[2/4] Generated %d test case(s) to %s\n", suite.Total(), casesPath)

	// Stage 3: run.
	overrides, err := parseEnvVars(allEnvVars)
	if err != nil {
		return err
	}
	env := make(map[string]string, len(cfg.Environment)+len(overrides))
	for k, v := range cfg.Environment {
		env[k] = v
	}
	for k, v := range overrides {
		env[k] = v
	}
	baseURL := allBaseURL
	if baseURL == "" {
		baseURL = cfg.Testing.BaseURL
	}
	if baseURL == "" {
		baseURL = api.BaseURL
	}

	r := runner.New(runner.Options{
		BaseURL:     baseURL,
		Environment: env,
		Timeout:     time.Duration(cfg.Testing.TimeoutSeconds) * time.Second,
		Signer:      requestSigner(),
		Logger:      log,
	})
	results := r.RunSuite(ctx, cfg.Testing.SuiteName, suite)
	resultsPath := filepath.Join(allOutDir, "test_results.json")
	if err := results.Save(resultsPath); err != nil {
		return err
	}
	fmt.Printf("[3/4] Ran %d test(s): %d success, %d failure, %d error\n",
		results.TotalCount(), results.SuccessCount(), results.FailureCount(), results.ErrorCount())

	// Stage 4: report.
	var insights []report.Insight
	if allRecommend {
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
		fmt.Printf("[4/4] Report written to %s\n", path)
	}

	if allPostman {
		exporter := postmanExporter()
		collection := exporter.Collection("API Test AI Generated Collection", suite)
		collectionPath := filepath.Join(allOutDir, "postman_collection.json")
		if err := exporter.Write(collectionPath, collection); err != nil {
			return err
		}
		fmt.Printf("Postman collection written to %s\n", collectionPath)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(allCmd)

	allCmd.Flags().StringVar(&allOutDir, "output-dir", "output", "directory for intermediate artifacts")
	allCmd.Flags().BoolVar(&allAI, "ai", false, "add AI-generated cases per endpoint")
	allCmd.Flags().BoolVar(&allSeed, "seed-db", false, "harvest parameter examples from the configured database")
	allCmd.Flags().StringVarP(&allBaseURL, "url", "u", "", "base URL override")
	allCmd.Flags().StringArrayVar(&allEnvVars, "env-var", nil, "environment override as KEY=VALUE, repeatable")
	allCmd.Flags().BoolVar(&allPostman, "postman", false, "also export a Postman collection")
	allCmd.Flags().BoolVar(&allRecommend, "recommend", false, "include AI recommendations in the report")
}
