package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bulk-reviewer/brv/internal/metadata"
	"github.com/bulk-reviewer/brv/internal/store"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// Execute performs the planned actions and writes the README. A failing file
// is recorded in Report.NotCopied and never stops the export. Cancellation
// is honoured between files; a file interrupted mid-write is removed.
func (e *Exporter) Execute(ctx context.Context) (Report, error) {
	if err := e.expect("execute", StatePlanned); err != nil {
		return e.report, err
	}
	e.state = StateExecuting

	if err := files.CreateFolderIfNotExists(e.opts.Destination); err != nil {
		e.state = StateDone
		return e.report, err
	}

	for _, a := range e.plan {
		if err := ctx.Err(); err != nil {
			e.state = StateDone
			e.logger.Warn("export interrupted", "exported", len(e.report.Exported), "error", err)
			return e.report, fmt.Errorf("export interrupted: %w", err)
		}
		e.perform(ctx, a)
	}

	if err := e.writeReadme(); err != nil {
		e.logger.Warn("unable to create export README", "destination", e.opts.Destination, "error", err)
	}
	e.state = StateDone
	e.logger.Info("export complete",
		"destination", e.opts.Destination, "exported", len(e.report.Exported),
		"skipped", len(e.report.Skipped), "failed", len(e.report.NotCopied))
	return e.report, nil
}

func (e *Exporter) perform(ctx context.Context, a Action) {
	switch a.Kind {
	case ActionSkip:
		if a.Err != nil {
			e.fail(&brerrors.CopyError{Path: a.File.Filepath, Op: "export", Err: a.Err}, a.File.Filepath)
			return
		}
		e.logger.Debug("file skipped", "path", a.File.Filepath, "reason", a.Reason)
		e.report.Skipped = append(e.report.Skipped, a.File.Filepath)

	case ActionCopy:
		if err := files.CopyFile(a.Source, a.Destination); err != nil {
			e.fail(&brerrors.CopyError{Path: a.Source, Op: "copy", Err: err}, a.Source)
			return
		}
		e.logger.Debug("file copied", "source", a.Source, "destination", a.Destination)
		e.report.Exported = append(e.report.Exported, a.Destination)

	case ActionCarve:
		if err := e.carve(ctx, a); err != nil {
			e.fail(&brerrors.CopyError{Path: a.Destination, Op: "carve", Err: err}, a.Destination)
			return
		}
		e.logger.Debug("file carved", "path", a.File.Filepath, "destination", a.Destination)
		e.report.Exported = append(e.report.Exported, a.Destination)
		if e.opts.RestoreDates {
			e.restoreDates(a.Destination, a.File)
		}
	}
}

func (e *Exporter) fail(err *brerrors.CopyError, name string) {
	e.logger.Error("file not exported", "error", err)
	e.report.NotCopied = append(e.report.NotCopied, name)
}

func (e *Exporter) carve(ctx context.Context, a Action) (err error) {
	if e.carver == nil {
		return errors.New("no carver configured for disk image export")
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(a.Destination)); err != nil {
		return err
	}
	out, err := os.Create(a.Destination)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(a.Destination)
		}
	}()
	return e.carver.Carve(ctx, a.Source, a.File.FSOffset, a.File.Inode, out)
}

// restoreDates sets the modification time of a carved file to the recorded
// modification time, falling back to the creation time.
func (e *Exporter) restoreDates(dest string, f store.File) {
	recorded := f.DateModified
	if recorded == "" {
		recorded = f.DateCreated
	}
	if recorded == "" {
		e.logger.Warn("no recorded date to restore", "path", dest)
		return
	}
	ts, err := metadata.ParseTimestamp(recorded)
	if err != nil {
		e.logger.Warn("unable to parse recorded date", "path", dest, "date", recorded, "error", err)
		return
	}
	if err := os.Chtimes(dest, ts, ts); err != nil {
		e.logger.Warn("error modifying modified date", "path", dest, "error", err)
	}
}
