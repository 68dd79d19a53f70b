package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// validateReportArgs validates the arguments provided to the report command.
func validateReportArgs(opts *RunOptionsReport, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected a single SESSION_JSON argument, got %d", len(args))
	}
	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("invalid session document: %w", err)
	}
	opts.Document = args[0]

	opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
	if opts.Format == "" {
		opts.Format = FormatSARIF
	}
	if opts.Format != FormatSARIF && opts.Format != FormatCSV {
		return fmt.Errorf("unsupported report format %q", opts.Format)
	}
	if opts.OutputPath != "" && filepath.Clean(opts.OutputPath) == filepath.Clean(opts.Document) {
		return fmt.Errorf("the report must not overwrite the session document")
	}
	return nil
}
