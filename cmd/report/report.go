package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/internal/logger"
	"github.com/bulk-reviewer/brv/internal/report"
	"github.com/bulk-reviewer/brv/internal/session"
	"github.com/bulk-reviewer/brv/pkg/shared"
	"github.com/bulk-reviewer/brv/pkg/shared/errors"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// Supported report formats.
const (
	FormatSARIF = "sarif"
	FormatCSV   = "csv"
)

// RunOptionsReport holds the arguments for the report command.
type RunOptionsReport struct {
	Document         string
	Format           string
	OutputPath       string
	IncludeDismissed bool
}

// Global variables for configuration and command arguments
var (
	AppConfig          *config.Config
	reportOptions      RunOptionsReport
	exampleReportUsage = `  # Print the open features of a session as SARIF
  brv report /path/to/accession-1.json

  # Write every feature, dismissed ones included, to a CSV file
  brv report --format csv --include-dismissed --output /path/to/features.csv /path/to/accession-1.json`
)

// ReportCmd represents the report command.
var ReportCmd = &cobra.Command{
	Use:                   "report [--format/-f sarif|csv] [--output/-o PATH] [--include-dismissed] SESSION_JSON",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReportUsage,
	Short:                 "Render the features of a session as SARIF or CSV",
	RunE:                  runReportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReportCommand executes the report command.
func runReportCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "report")

	if err := validateReportArgs(&reportOptions, args); err != nil {
		logger.Error("invalid report arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid report arguments: %w", err), 1)
	}

	doc, err := session.Read(reportOptions.Document)
	if err != nil {
		logger.Error("failed to read session document", "error", err)
		return errors.NewCommandError(err, 1)
	}

	if err := writeReport(cmd.OutOrStdout(), doc, &reportOptions); err != nil {
		logger.Error("report command failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to write report: %w", err), 1)
	}

	logger.Info("report command completed successfully", "format", reportOptions.Format,
		"output", reportOptions.OutputPath, "features", len(doc.Features))
	return nil
}

// writeReport renders doc to the output file, or to stdout when none is set.
func writeReport(stdout io.Writer, doc *session.Document, opts *RunOptionsReport) (err error) {
	w := stdout
	if opts.OutputPath != "" {
		if err := files.CreateFolderIfNotExists(filepath.Dir(opts.OutputPath)); err != nil {
			return err
		}
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	ropts := report.Options{IncludeDismissed: opts.IncludeDismissed}
	switch opts.Format {
	case FormatCSV:
		return report.WriteCSV(w, doc, ropts)
	default:
		return report.WriteSARIF(w, doc, ropts)
	}
}

// Initialize flags for the report command.
func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.Format, "format", "f", FormatSARIF, "Report format: sarif or csv.")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputPath, "output", "o", "", "Path to the report file. Defaults to stdout.")
	ReportCmd.Flags().BoolVar(&reportOptions.IncludeDismissed, "include-dismissed", false, "Include dismissed features.")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for the report command.")
}
