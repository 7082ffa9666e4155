package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"api-test-ai/internal/report"
	"api-test-ai/internal/result"
)

var (
	reportIn        string
	reportFmt       []string
	reportRecommend bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render reports from a saved results file",
	Args:  cobra.NoArgs,
	RunE:  runReportCmd,
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	results, err := result.LoadSuiteResult(reportIn)
	if err != nil {
		return err
	}

	var insights []report.Insight
	if reportRecommend {
		insights = recommendInsights(cmd, results)
	}

	formats := reportFmt
	if len(formats) == 0 {
		formats = reportFormats()
	}

	reporter := report.NewReporter(report.Options{
		OutputDir: cfg.Report.OutputDir,
		Format:    formats,
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

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportIn, "input", "i", "output/test_results.json", "results file to report on")
	reportCmd.Flags().StringSliceVar(&reportFmt, "format", nil, "report formats: json, html (default from config)")
	reportCmd.Flags().BoolVar(&reportRecommend, "recommend", false, "include AI recommendations in the report")
}
