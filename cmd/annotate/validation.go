package annotate

import (
	"fmt"

	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// validateAnnotateArgs validates the arguments provided to the annotate command.
func validateAnnotateArgs(opts *RunOptionsAnnotate, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected DFXML, REPORTS_DIR and OUTPUT_DIR arguments, got %d", len(args))
	}
	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("invalid DFXML file: %w", err)
	}
	if err := files.ValidateDir(args[1]); err != nil {
		return fmt.Errorf("invalid reports directory: %w", err)
	}
	if args[1] == args[2] {
		return fmt.Errorf("the output directory must differ from the reports directory")
	}

	opts.DFXML = args[0]
	opts.ReportsDir = args[1]
	opts.OutputDir = args[2]
	return nil
}
