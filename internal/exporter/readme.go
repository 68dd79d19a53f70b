package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// ReadmeName is the manifest written into every export directory.
const ReadmeName = "_BulkReviewer_README.txt"

const flatNote = `Files in this export have been flattened into a single directory to support
redaction workflows. In order to prevent name collisions, each file's unique
ID (as assigned by Bulk Reviewer) is added to the beginning of the filename on
export. These IDs can be matched to original filepaths and corresponding
features using the Bulk Reviewer CSV report.`

func (e *Exporter) exportType() string {
	if e.opts.Private {
		return "Private files"
	}
	return "Cleared files"
}

func (e *Exporter) readme() string {
	var b strings.Builder
	sourceType := "Directory"
	if e.opts.SourceIsImage {
		sourceType = "Disk image"
	}

	b.WriteString("Files exported from Bulk Reviewer\n")
	b.WriteString("================================\n")
	fmt.Fprintf(&b, "Type: %s\n", e.exportType())
	fmt.Fprintf(&b, "Date: %s\n", e.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Export ID: %s\n", e.report.RunID)
	fmt.Fprintf(&b, "Session: %s\n", e.doc.Name)
	fmt.Fprintf(&b, "Source: %s\n", e.doc.SourcePath)
	fmt.Fprintf(&b, "Source type: %s\n", sourceType)
	if e.opts.SourceIsImage {
		fmt.Fprintf(&b, "Modified dates restored: %s\n", strconv.FormatBool(e.opts.RestoreDates))
		fmt.Fprintf(&b, "Unallocated files included: %s\n", strconv.FormatBool(e.opts.IncludeUnallocated))
	}

	if !e.opts.Private {
		b.WriteString("\nFiles excluded from export for containing PII:\n")
		for _, p := range e.partition.Flagged {
			b.WriteString(p + "\n")
		}
	}
	if e.opts.Flat {
		b.WriteString("\n" + flatNote + "\n")
	}
	return b.String()
}

func (e *Exporter) writeReadme() error {
	return os.WriteFile(filepath.Join(e.opts.Destination, ReadmeName), []byte(e.readme()), 0o644)
}

// WriteTarExclude writes the absolute source path of every flagged file to
// the destination file, one per line. Nothing is copied.
func (e *Exporter) WriteTarExclude() (Report, error) {
	if err := e.expect("write tar exclude list for", StateLoaded); err != nil {
		return e.report, err
	}
	e.state = StateTarExclude

	lines := make([]string, 0, len(e.partition.Flagged))
	for _, p := range e.partition.Flagged {
		lines = append(lines, filepath.Join(e.doc.SourcePath, filepath.FromSlash(p)))
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(e.opts.Destination)); err != nil {
		e.state = StateDone
		return e.report, err
	}
	if err := files.WriteLines(e.opts.Destination, lines); err != nil {
		e.state = StateDone
		return e.report, fmt.Errorf("unable to create tar exclude file %q: %w", e.opts.Destination, err)
	}

	e.state = StateDone
	e.logger.Info("created tar exclude file", "path", e.opts.Destination, "entries", len(lines))
	return e.report, nil
}

// Summary describes the outcome for the operator.
func (r Report) Summary() string {
	kind := "Cleared"
	if r.Private {
		kind = "Private"
	}
	if len(r.NotCopied) == 0 {
		return fmt.Sprintf("%s files successfully exported to directory %s", kind, r.Destination)
	}
	return fmt.Sprintf("%s files exported to directory %s. The following files encountered errors: %s. See the Bulk Reviewer log for details.",
		kind, r.Destination, strings.Join(r.NotCopied, ", "))
}
