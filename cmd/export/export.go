package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/internal/exporter"
	"github.com/bulk-reviewer/brv/internal/logger"
	"github.com/bulk-reviewer/brv/internal/session"
	"github.com/bulk-reviewer/brv/internal/tools"
	"github.com/bulk-reviewer/brv/pkg/shared"
	"github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// RunOptionsExport holds the arguments for the export command.
type RunOptionsExport struct {
	Document           string
	Destination        string
	Private            bool
	Flat               bool
	RestoreDates       bool
	IncludeUnallocated bool
	TarExclude         bool
	KeepJSON           bool
}

// Global variables for configuration and command arguments
var (
	AppConfig          *config.Config
	exportOptions      RunOptionsExport
	exampleExportUsage = `  # Export the files without PII of a reviewed session
  brv export /path/to/accession-1.json /path/to/cleared

  # Export the files with PII into a single directory for redaction
  brv export --pii --flat /path/to/accession-1.json /path/to/private

  # Carve files without PII from a disk image, restoring their modified dates
  brv export --restore-dates /path/to/accession-2.json /path/to/cleared

  # Write a tar exclude list of the files with PII instead of copying
  brv export --tar /path/to/accession-1.json /path/to/exclude.txt`
)

// ExportCmd represents the export command.
var ExportCmd = &cobra.Command{
	Use:                   "export [--pii] [--flat] [--restore-dates] [--unallocated] [--tar] [--keep-json] SESSION_JSON DESTINATION",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleExportUsage,
	Short:                 "Export the cleared or private files of a reviewed session",
	Long: `Export the cleared or private files of a reviewed session.

Files with at least one feature that was not dismissed are private; all
others are cleared. Directory sources are copied, disk image sources are
carved with icat. The session JSON is deleted after it is read unless
--keep-json is given.`,
	RunE: runExportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runExportCommand executes the export command.
func runExportCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "export")

	if err := validateExportArgs(&exportOptions, args); err != nil {
		logger.Error("invalid export arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid export arguments: %w", err), 1)
	}

	logger.Info("running in file export mode", "document", exportOptions.Document, "destination", exportOptions.Destination)
	doc, err := session.Read(exportOptions.Document)
	if err != nil {
		logger.Error("failed to read session document", "error", err)
		return errors.NewCommandError(err, 1)
	}
	removeDocument(logger, &exportOptions)

	opts := exporterOptions(&exportOptions, doc)
	if exportOptions.TarExclude && !opts.TarExcludeOnly {
		logger.Warn("tar exclude lists are only written for directory sources, exporting files instead")
	}

	icat := tools.Icat{Command: tools.Command{
		Path:    config.GetToolPath(AppConfig.Tools.Icat, "icat"),
		Timeout: config.GetToolTimeout(AppConfig),
		Logger:  logger,
	}}
	report, err := exporter.New(opts, icat, logger).Run(cmd.Context(), doc)
	if err != nil {
		logger.Error("export command failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("export failed: %w", err), exitCode(err))
	}

	if opts.TarExcludeOnly {
		fmt.Fprintf(cmd.OutOrStdout(), "Tar exclude file written to %s\n", opts.Destination)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	return nil
}

// Initialize flags for the export command.
func init() {
	ExportCmd.Flags().BoolVar(&exportOptions.Private, "pii", false, "Export the files with PII instead of the cleared files.")
	ExportCmd.Flags().BoolVar(&exportOptions.Flat, "flat", false, "Export into a single directory, prefixing each file name with its id.")
	ExportCmd.Flags().BoolVar(&exportOptions.RestoreDates, "restore-dates", false, "Restore modified dates of files carved from disk images.")
	ExportCmd.Flags().BoolVar(&exportOptions.IncludeUnallocated, "unallocated", false, "Export unallocated files of disk images.")
	ExportCmd.Flags().BoolVar(&exportOptions.TarExclude, "tar", false, "Write a tar exclude file listing the files with PII instead of exporting.")
	ExportCmd.Flags().BoolVar(&exportOptions.KeepJSON, "keep-json", false, "Keep the session JSON after it is read.")
	ExportCmd.Flags().BoolP("help", "h", false, "Show help for the export command.")
}
