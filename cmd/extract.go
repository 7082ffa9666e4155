package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"api-test-ai/internal/llm"
	"api-test-ai/internal/parser"
	"api-test-ai/internal/schema"
)

var (
	extractFormat string
	extractAI     bool
	extractOut    string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|url>",
	Short: "Extract an API schema from an OpenAPI document or API documentation",
	Long: `Extracts a normalized API schema from the given source. OpenAPI
documents are parsed directly; free-form documentation goes through the
rule-based document parser, or through the AI extractor with --ai.

URLs are probed for a swagger/OpenAPI document at the well-known paths.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]

	api, err := extractSchema(cmd.Context(), source)
	if err != nil {
		return err
	}
	if len(api.Endpoints) == 0 {
		return errors.New("no endpoints found in source")
	}

	if err := api.Save(extractOut); err != nil {
		return err
	}
	log.Info().Str("path", extractOut).Int("endpoints", len(api.Endpoints)).Msg("schema written")
	fmt.Printf("Extracted %d endpoint(s) to %s\n", len(api.Endpoints), extractOut)
	return nil
}

func extractSchema(ctx context.Context, source string) (*schema.APISchema, error) {
	format := extractFormat
	if format == "auto" {
		format = detectFormat(source)
	}

	switch format {
	case "openapi":
		p := parser.NewOpenAPIParser(log)
		if isURL(source) {
			return p.ParseURL(source)
		}
		return p.ParseFile(source)
	case "doc":
		if extractAI {
			text, err := os.ReadFile(source)
			if err != nil {
				return nil, fmt.Errorf("failed to read document: %w", err)
			}
			analyzer, err := llm.NewAnalyzer(aiConfig(), log)
			if err != nil {
				return nil, err
			}
			api, err := analyzer.ExtractSchema(ctx, string(text))
			if err == nil {
				return api, nil
			}
			log.Warn().Err(err).Msg("AI extraction failed, falling back to rule-based parser")
		}
		return parser.NewDocumentParser(log).ParseFile(source)
	default:
		return nil, fmt.Errorf("unknown extract format: %s", format)
	}
}

func detectFormat(source string) string {
	if isURL(source) {
		return "openapi"
	}
	switch {
	case strings.HasSuffix(source, ".json"),
		strings.HasSuffix(source, ".yaml"),
		strings.HasSuffix(source, ".yml"):
		return "openapi"
	default:
		return "doc"
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFormat, "format", "auto", "source format: auto, openapi, or doc")
	extractCmd.Flags().BoolVar(&extractAI, "ai", false, "extract documentation text with the AI analyzer")
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "output/api_schema.json", "schema output path")
}
