package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"api-test-ai/internal/postman"
	"api-test-ai/internal/testcase"
)

var (
	postmanIn   string
	postmanOut  string
	postmanName string
)

var postmanCmd = &cobra.Command{
	Use:   "postman",
	Short: "Export a test case suite as a Postman collection",
	Long: `Converts a generated test case file into a Postman collection
v2.1. Each endpoint becomes a folder, each case a POST request with its
validations rendered as test script assertions and the signature
pre-request script attached. Pair it with 'api-test-ai env' for a ready
to import environment.`,
	Args: cobra.NoArgs,
	RunE: runPostman,
}

func runPostman(cmd *cobra.Command, args []string) error {
	suite, err := testcase.LoadSuite(postmanIn)
	if err != nil {
		return err
	}

	exporter := postman.NewExporter(log)
	collection := exporter.Collection(postmanName, suite)
	if err := exporter.Write(postmanOut, collection); err != nil {
		return err
	}
	fmt.Printf("Postman collection with %d folder(s) written to %s\n", len(collection.Item), postmanOut)
	return nil
}

var (
	envOut  string
	envName string
	envVars []string
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Export the configured environment as a Postman environment file",
	Args:  cobra.NoArgs,
	RunE:  runEnv,
}

func runEnv(cmd *cobra.Command, args []string) error {
	overrides, err := parseEnvVars(envVars)
	if err != nil {
		return err
	}

	vars := make(map[string]string, len(cfg.Environment)+len(overrides)+1)
	for k, v := range cfg.Environment {
		vars[k] = v
	}
	if cfg.Testing.BaseURL != "" {
		vars["base_url"] = cfg.Testing.BaseURL
	}
	for k, v := range overrides {
		vars[k] = v
	}

	env := postman.NewEnvironment(envName, vars)
	if err := env.Save(envOut); err != nil {
		return err
	}
	fmt.Printf("Postman environment with %d variable(s) written to %s\n", len(env.Values), envOut)
	return nil
}

func init() {
	rootCmd.AddCommand(postmanCmd)
	rootCmd.AddCommand(envCmd)

	postmanCmd.Flags().StringVarP(&postmanIn, "input", "i", "output/test_cases.json", "test case file to convert")
	postmanCmd.Flags().StringVarP(&postmanOut, "output", "o", "output/postman_collection.json", "collection output path")
	postmanCmd.Flags().StringVar(&postmanName, "name", "API Test AI Generated Collection", "collection name")

	envCmd.Flags().StringVarP(&envOut, "output", "o", "output/postman_environment.json", "environment output path")
	envCmd.Flags().StringVar(&envName, "name", "API Test AI Environment", "environment name")
	envCmd.Flags().StringArrayVar(&envVars, "env-var", nil, "environment override as KEY=VALUE, repeatable")
}
