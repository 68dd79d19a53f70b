package process

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/internal/logger"
	"github.com/bulk-reviewer/brv/internal/processor"
	"github.com/bulk-reviewer/brv/internal/tools"
	"github.com/bulk-reviewer/brv/pkg/shared"
	"github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// RunOptionsProcess holds the arguments for the process command.
type RunOptionsProcess struct {
	Source         string
	Destination    string
	Name           string
	DiskImage      bool
	SSNMode        int
	IncludeEXIF    bool
	IncludeNetwork bool
	ScannerReports string
	RegexFile      string
	Stoplists      string
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	processOptions      RunOptionsProcess
	exampleProcessUsage = `  # Process a directory
  brv process /path/to/accession /path/to/output accession-1

  # Process a disk image
  brv process --disk-image /path/to/disk.E01 /path/to/output accession-2

  # Process a directory with a stricter SSN mode, a regex file and stoplists
  brv process --ssn 2 --regex /path/to/regex.txt --stoplists /path/to/stoplists /path/to/accession /path/to/output accession-3

  # Reuse the reports of an earlier scanner run
  brv process --be-reports /path/to/bulk_extractor_reports /path/to/accession /path/to/output accession-4`
)

// ProcessCmd represents the process command.
var ProcessCmd = &cobra.Command{
	Use:                   "process [--disk-image/-d] [--ssn MODE] [--include-exif] [--include-network] [--be-reports PATH] [--regex PATH] [--stoplists PATH] SOURCE DESTINATION NAME",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleProcessUsage,
	Short:                 "Scan a directory or disk image for PII and write a review session",
	Long: `Scan a directory or disk image for PII and write a review session.

The source is scanned with bulk_extractor; features found in disk images are
attributed to files with the byte runs reported by fiwalk. The session is
written to DESTINATION/NAME.json and its path is printed on success.`,
	RunE: runProcessCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runProcessCommand executes the process command.
func runProcessCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "process")
	applyConfigDefaults(AppConfig, &processOptions, cmd.Flags())

	if err := validateProcessArgs(&processOptions, args); err != nil {
		logger.Error("invalid process arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid process arguments: %w", err), 1)
	}

	logger.Info("running in processing mode", "name", processOptions.Name, "source", processOptions.Source,
		"disk_image", processOptions.DiskImage, "ssn_mode", processOptions.SSNMode)

	timeout := config.GetToolTimeout(AppConfig)
	walker := tools.Fiwalk{Command: tools.Command{
		Path:    config.GetToolPath(AppConfig.Tools.Fiwalk, "fiwalk"),
		Timeout: timeout,
		Logger:  logger,
	}}
	scanner := tools.BulkExtractor{Command: tools.Command{
		Path:    config.GetToolPath(AppConfig.Tools.BulkExtractor, "bulk_extractor"),
		Timeout: timeout,
		Logger:  logger,
	}}

	p := processor.New(processor.Options{
		Name:           processOptions.Name,
		Source:         processOptions.Source,
		Destination:    processOptions.Destination,
		TempDir:        config.GetTempHome(AppConfig),
		DiskImage:      processOptions.DiskImage,
		SSNMode:        processOptions.SSNMode,
		RegexFile:      processOptions.RegexFile,
		Stoplists:      processOptions.Stoplists,
		ScannerReports: processOptions.ScannerReports,
		IncludeNetwork: processOptions.IncludeNetwork,
		IncludeEXIF:    processOptions.IncludeEXIF,
	}, walker, scanner, logger)

	res, err := p.Run(cmd.Context())
	if err != nil {
		logger.Error("process command failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("processing failed: %w", err), exitCode(err))
	}

	logger.Info("process command completed successfully", "document", res.Document,
		"files", res.Files, "features", res.Features.Stored, "skipped_lines", res.Features.Skipped)
	fmt.Fprint(cmd.OutOrStdout(), res.Document)
	return nil
}

// Initialize flags for the process command.
func init() {
	ProcessCmd.Flags().BoolVarP(&processOptions.DiskImage, "disk-image", "d", false, "Treat the source as a disk image.")
	ProcessCmd.Flags().IntVar(&processOptions.SSNMode, "ssn", 1, "bulk_extractor ssn_mode (0, 1 or 2). Other values fall back to 1.")
	ProcessCmd.Flags().BoolVar(&processOptions.IncludeEXIF, "include-exif", false, "Include EXIF metadata in the results.")
	ProcessCmd.Flags().BoolVar(&processOptions.IncludeNetwork, "include-network", false, "Include domains, URLs, RFC822 headers and HTTP logs in the results.")
	ProcessCmd.Flags().StringVar(&processOptions.ScannerReports, "be-reports", "", "Path to an existing bulk_extractor reports directory. The scanner is not run.")
	ProcessCmd.Flags().StringVar(&processOptions.RegexFile, "regex", "", "Path to a regular expression file for the scanner.")
	ProcessCmd.Flags().StringVar(&processOptions.Stoplists, "stoplists", "", "Directory of bulk_extractor stoplists (.txt files).")
	ProcessCmd.Flags().BoolP("help", "h", false, "Show help for the process command.")
}
