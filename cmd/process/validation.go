package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bulk-reviewer/brv/internal/config"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// validateProcessArgs validates the arguments provided to the process command
// and resolves the paths to absolute ones.
func validateProcessArgs(opts *RunOptionsProcess, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected SOURCE, DESTINATION and NAME arguments, got %d", len(args))
	}

	if err := validateName(args[2]); err != nil {
		return err
	}
	opts.Name = args[2]

	source, err := absPath(args[0])
	if err != nil {
		return err
	}
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("the source does not exist: %w", err)
	}
	if opts.DiskImage && info.IsDir() {
		return fmt.Errorf("the source %q is a directory; drop the 'disk-image' flag to process it", source)
	}
	if !opts.DiskImage && !info.IsDir() {
		return fmt.Errorf("the source %q is not a directory; use the 'disk-image' flag for disk images", source)
	}
	opts.Source = source

	if opts.Destination, err = absPath(args[1]); err != nil {
		return err
	}
	if info, err := os.Stat(opts.Destination); err == nil && !info.IsDir() {
		return fmt.Errorf("the destination %q is not a directory", opts.Destination)
	}

	if opts.RegexFile != "" {
		if opts.RegexFile, err = absPath(opts.RegexFile); err != nil {
			return err
		}
		if err := files.ValidatePath(opts.RegexFile); err != nil {
			return fmt.Errorf("invalid 'regex' file: %w", err)
		}
	}
	if opts.Stoplists != "" {
		if opts.Stoplists, err = absPath(opts.Stoplists); err != nil {
			return err
		}
		if err := files.ValidateDir(opts.Stoplists); err != nil {
			return fmt.Errorf("invalid 'stoplists' directory: %w", err)
		}
	}
	if opts.ScannerReports != "" {
		if opts.ScannerReports, err = absPath(opts.ScannerReports); err != nil {
			return err
		}
	}

	opts.SSNMode = config.NormalizeSSNMode(opts.SSNMode)
	return nil
}

// validateName checks that the session name can be used as a file name.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("the session name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("the session name %q must be a plain file name", name)
	}
	return nil
}

func absPath(p string) (string, error) {
	expanded, err := files.ExpandPath(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", p, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", p, err)
	}
	return abs, nil
}
