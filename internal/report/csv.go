package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/bulk-reviewer/brv/internal/session"
)

var csvHeader = []string{"id", "filepath", "feature_type", "feature", "context", "dismissed", "note"}

// WriteCSV writes one row per feature of doc.
func WriteCSV(w io.Writer, doc *session.Document, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range doc.Features {
		if f.Dismissed && !opts.IncludeDismissed {
			continue
		}
		row := []string{
			strconv.FormatInt(f.ID, 10),
			f.Filepath,
			f.FeatureType,
			f.Feature,
			f.Context,
			strconv.FormatBool(f.Dismissed),
			f.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for feature %d: %w", f.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
