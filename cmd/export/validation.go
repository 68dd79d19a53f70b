package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// validateExportArgs validates the arguments provided to the export command
// and resolves the paths to absolute ones.
func validateExportArgs(opts *RunOptionsExport, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected SESSION_JSON and DESTINATION arguments, got %d", len(args))
	}

	doc, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", args[0], err)
	}
	if err := files.ValidatePath(doc); err != nil {
		return fmt.Errorf("invalid session document: %w", err)
	}
	opts.Document = doc

	dest, err := files.ExpandPath(args[1])
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", args[1], err)
	}
	if opts.Destination, err = filepath.Abs(dest); err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", args[1], err)
	}

	info, err := os.Stat(opts.Destination)
	switch {
	case err == nil && opts.TarExclude && info.IsDir():
		return fmt.Errorf("the tar exclude file %q is a directory", opts.Destination)
	case err == nil && !opts.TarExclude && !info.IsDir():
		return fmt.Errorf("the destination %q is not a directory", opts.Destination)
	}
	if opts.TarExclude && opts.Flat {
		return fmt.Errorf("the 'tar' and 'flat' flags cannot be used together")
	}
	return nil
}
