package annotate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bulk-reviewer/brv/internal/annotate"
	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/internal/logger"
	"github.com/bulk-reviewer/brv/internal/metadata"
	"github.com/bulk-reviewer/brv/pkg/shared"
	"github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// RunOptionsAnnotate holds the arguments for the annotate command.
type RunOptionsAnnotate struct {
	DFXML      string
	ReportsDir string
	OutputDir  string
}

// Global variables for configuration and command arguments
var (
	AppConfig            *config.Config
	annotateOptions      RunOptionsAnnotate
	exampleAnnotateUsage = `  # Attribute the features of a scanner run to the files of a disk image
  brv annotate /path/to/dfxml.xml /path/to/bulk_extractor /path/to/bulk_extractor_annotated`
)

// AnnotateCmd represents the annotate command.
var AnnotateCmd = &cobra.Command{
	Use:                   "annotate DFXML REPORTS_DIR OUTPUT_DIR",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnnotateUsage,
	Short:                 "Attribute scanner features of a disk image to files",
	Long: `Attribute scanner features of a disk image to files.

Every feature file of REPORTS_DIR is rewritten into OUTPUT_DIR with the name
and MD5 of the file that owns each feature offset, according to the byte runs
of DFXML. Existing annotated files are never overwritten.`,
	RunE: runAnnotateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runAnnotateCommand executes the annotate command.
func runAnnotateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "annotate")

	if err := validateAnnotateArgs(&annotateOptions, args); err != nil {
		logger.Error("invalid annotate arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid annotate arguments: %w", err), 1)
	}

	f, err := os.Open(annotateOptions.DFXML)
	if err != nil {
		logger.Error("failed to open DFXML", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to open DFXML: %w", err), 1)
	}
	defer f.Close()

	pair, err := metadata.ReadPair(f)
	if err != nil {
		logger.Error("error parsing DFXML", "path", annotateOptions.DFXML, "error", err)
		return errors.NewCommandError(fmt.Errorf("error parsing DFXML file: %w", err), 1)
	}

	st, err := annotate.New(pair, logger).AnnotateDir(cmd.Context(), annotateOptions.ReportsDir, annotateOptions.OutputDir)
	if err != nil {
		logger.Error("annotate command failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("annotation failed: %w", err), 1)
	}

	logger.Info("annotate command completed successfully", "output", annotateOptions.OutputDir,
		"total", st.Total, "located", st.Located, "unallocated", st.Unallocated, "errors", len(st.Errors))
	fmt.Fprintf(cmd.OutOrStdout(), "Annotated %d features (%d located to files, %d in unallocated space) into %s\n",
		st.Total, st.Located, st.Unallocated, annotateOptions.OutputDir)
	return nil
}

// Initialize flags for the annotate command.
func init() {
	AnnotateCmd.Flags().BoolP("help", "h", false, "Show help for the annotate command.")
}
