package process

import (
	"context"
	"errors"

	"github.com/spf13/pflag"

	"github.com/bulk-reviewer/brv/internal/config"
)

// applyConfigDefaults fills options that were not given on the command line
// from the scan section of the configuration.
func applyConfigDefaults(cfg *config.Config, opts *RunOptionsProcess, flags *pflag.FlagSet) {
	if cfg == nil {
		return
	}
	if !flags.Changed("ssn") {
		opts.SSNMode = config.GetSSNMode(cfg)
	}
	if !flags.Changed("stoplists") && opts.Stoplists == "" {
		opts.Stoplists = cfg.Scan.Stoplists
	}
	if !flags.Changed("include-network") {
		opts.IncludeNetwork = cfg.Scan.IncludeNetwork
	}
	if !flags.Changed("include-exif") {
		opts.IncludeEXIF = cfg.Scan.IncludeEXIF
	}
}

// exitCode maps a processing failure to the process exit code.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
