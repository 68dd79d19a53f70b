package export

import (
	"context"
	"errors"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/exporter"
	"github.com/bulk-reviewer/brv/internal/session"
)

// exporterOptions combines the command options with the source type of the
// session. Tar exclude lists are only produced for directory sources.
func exporterOptions(opts *RunOptionsExport, doc *session.Document) exporter.Options {
	return exporter.Options{
		Destination:        opts.Destination,
		SourceIsImage:      doc.DiskImage,
		Private:            opts.Private,
		Flat:               opts.Flat,
		RestoreDates:       opts.RestoreDates,
		IncludeUnallocated: opts.IncludeUnallocated,
		TarExcludeOnly:     opts.TarExclude && !doc.DiskImage,
	}
}

// removeDocument deletes the session JSON once it has been read.
func removeDocument(logger hclog.Logger, opts *RunOptionsExport) {
	if opts.KeepJSON {
		return
	}
	if err := os.Remove(opts.Document); err != nil {
		logger.Warn("unable to delete JSON file", "path", opts.Document, "error", err)
	}
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
