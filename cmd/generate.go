package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"api-test-ai/internal/generator"
	"api-test-ai/internal/llm"
	"api-test-ai/internal/schema"
	"api-test-ai/internal/seed"
)

var (
	generateIn   string
	generateOut  string
	generateAI   bool
	generateSeed bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a test case battery from an extracted schema",
	Long: `Builds the full scenario battery for every endpoint of a schema
file: equivalence, boundary, negative, and special cases. With --ai the
model contributes supplemental cases per endpoint; with --seed-db missing
parameter examples are harvested from the configured database first.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	api, err := schema.Load(generateIn)
	if err != nil {
		return err
	}

	if generateSeed {
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

	if generateAI {
		analyzer, err := llm.NewAnalyzer(aiConfig(), log)
		if err != nil {
			return err
		}
		for i := range api.Endpoints {
			ep := api.Endpoints[i]
			cases := analyzer.GenerateCases(cmd.Context(), ep)
			key := ep.Method + " " + ep.Path
			if collection, ok := suite[key]; ok {
				collection.Cases = append(collection.Cases, cases...)
			}
		}
	}

	if err := suite.Save(generateOut); err != nil {
		return err
	}
	log.Info().Str("path", generateOut).Int("cases", suite.Total()).Msg("test cases written")
	fmt.Printf("Generated %d test case(s) across %d endpoint(s) to %s\n",
		suite.Total(), len(suite), generateOut)
	return nil
}

func harvestExamples(api *schema.APISchema) error {
	if cfg.Database.Driver == "" {
		return errors.New("no database driver configured")
	}
	store, err := seed.Open(seed.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	}, log)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Harvest(api)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateIn, "input", "i", "output/api_schema.json", "schema file to generate from")
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "output/test_cases.json", "test case output path")
	generateCmd.Flags().BoolVar(&generateAI, "ai", false, "add AI-generated cases per endpoint")
	generateCmd.Flags().BoolVar(&generateSeed, "seed-db", false, "harvest parameter examples from the configured database")
}
