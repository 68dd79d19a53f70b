// Package exporter copies or carves the clear or flagged files of a reviewed
// session into a destination directory.
package exporter

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/session"
	"github.com/bulk-reviewer/brv/internal/store"
	"github.com/bulk-reviewer/brv/internal/triage"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// Options select what is exported and how.
type Options struct {
	// Destination is the export directory, or the exclude list file when
	// TarExcludeOnly is set.
	Destination string

	SourceIsImage      bool
	Private            bool // export flagged files instead of clear ones
	Flat               bool
	RestoreDates       bool
	IncludeUnallocated bool
	TarExcludeOnly     bool
}

// State is the progress of an export run.
type State int

const (
	StateInit State = iota
	StateLoaded
	StateTarExclude
	StatePlanned
	StateExecuting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoaded:
		return "loaded"
	case StateTarExclude:
		return "tar-exclude"
	case StatePlanned:
		return "planned"
	case StateExecuting:
		return "executing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ActionKind is what happens to one selected file.
type ActionKind int

const (
	ActionCopy ActionKind = iota
	ActionCarve
	ActionSkip
)

func (k ActionKind) String() string {
	switch k {
	case ActionCopy:
		return "copy"
	case ActionCarve:
		return "carve"
	case ActionSkip:
		return "skip"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is the planned handling of one file.
type Action struct {
	File        store.File
	Kind        ActionKind
	Source      string
	Destination string
	Reason      string
	// Err is set for files that cannot be exported at all.
	Err error
}

// Carver writes the content of an inode of a disk image to w.
type Carver interface {
	Carve(ctx context.Context, image, fsOffset, inode string, w io.Writer) error
}

// Report is the outcome of an export run.
type Report struct {
	RunID       string
	Private     bool
	Destination string
	Exported    []string
	Skipped     []string
	NotCopied   []string
}

// Exporter runs one export. It is not safe for concurrent use.
type Exporter struct {
	opts   Options
	carver Carver
	logger hclog.Logger
	now    func() time.Time

	state     State
	doc       *session.Document
	partition triage.Partition
	plan      []Action
	report    Report
}

// New creates an Exporter. carver is only used for disk image sources.
func New(opts Options, carver Carver, logger hclog.Logger) *Exporter {
	return &Exporter{
		opts:   opts,
		carver: carver,
		logger: logger,
		now:    time.Now,
		state:  StateInit,
		report: Report{
			RunID:       uuid.NewString(),
			Private:     opts.Private,
			Destination: opts.Destination,
		},
	}
}

// State returns the current state.
func (e *Exporter) State() State {
	return e.state
}

// Partition returns the triage result of the loaded session.
func (e *Exporter) Partition() triage.Partition {
	return e.partition
}

func (e *Exporter) expect(op string, want State) error {
	if e.state != want {
		return fmt.Errorf("cannot %s export in state %s", op, e.state)
	}
	return nil
}

// Load triages the session document.
func (e *Exporter) Load(doc *session.Document) error {
	if err := e.expect("load", StateInit); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("session document is nil")
	}
	if doc.SourcePath == "" {
		return fmt.Errorf("session document has no source path")
	}
	e.doc = doc
	e.partition = triage.Classify(doc.StoreFiles(), doc.StoreFeatures())
	e.state = StateLoaded
	e.logger.Info("session loaded for export",
		"session", doc.Name, "files", len(doc.Files), "flagged", len(e.partition.Flagged), "clear", len(e.partition.Clear))
	return nil
}

// Plan decides how each selected file is exported.
func (e *Exporter) Plan() ([]Action, error) {
	if err := e.expect("plan", StateLoaded); err != nil {
		return nil, err
	}
	if e.opts.TarExcludeOnly {
		return nil, fmt.Errorf("tar exclude exports are not planned")
	}

	seen := make(map[string]bool)
	var plan []Action
	for _, f := range e.doc.StoreFiles() {
		if seen[f.Filepath] || e.partition.IsFlagged(f.Filepath) != e.opts.Private {
			continue
		}
		seen[f.Filepath] = true
		plan = append(plan, e.planFile(f))
	}
	e.plan = plan
	e.state = StatePlanned
	return plan, nil
}

func (e *Exporter) planFile(f store.File) Action {
	a := Action{File: f}

	if f.Filepath == store.UnallocatedPath {
		a.Kind = ActionSkip
		a.Reason = "unallocated space placeholder"
		return a
	}
	if e.opts.SourceIsImage && !f.Allocated && !e.opts.IncludeUnallocated {
		a.Kind = ActionSkip
		a.Reason = "unallocated file"
		return a
	}

	dest, err := e.destination(f)
	if err != nil {
		a.Kind = ActionSkip
		a.Reason = "unsafe destination"
		a.Err = err
		return a
	}
	a.Destination = dest

	if e.opts.SourceIsImage {
		a.Kind = ActionCarve
		a.Source = e.doc.SourcePath
	} else {
		a.Kind = ActionCopy
		a.Source = filepath.Join(e.doc.SourcePath, filepath.FromSlash(f.Filepath))
	}
	return a
}

// destination returns the export path of f. Flat exports prefix the base
// name with the file id so that equal base names never collide.
func (e *Exporter) destination(f store.File) (string, error) {
	if e.opts.Flat {
		return filepath.Join(e.opts.Destination, fmt.Sprintf("%d_%s", f.ID, path.Base(f.Filepath))), nil
	}
	dest := filepath.Join(e.opts.Destination, filepath.FromSlash(f.Filepath))
	if _, err := files.EnsureWithinRoot(e.opts.Destination, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Run loads doc and performs the whole export.
func (e *Exporter) Run(ctx context.Context, doc *session.Document) (Report, error) {
	if err := e.Load(doc); err != nil {
		return e.report, err
	}
	if e.opts.TarExcludeOnly {
		return e.WriteTarExclude()
	}
	if _, err := e.Plan(); err != nil {
		return e.report, err
	}
	return e.Execute(ctx)
}
