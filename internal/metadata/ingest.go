// Package metadata reads file-system metadata from a DFXML document or a
// directory walk and records it in the session store.
package metadata

import (
	"context"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/store"
)

// Record is a file discovered in a source, whichever way it was found.
type Record interface {
	byterun.MetadataRecord
	IsRegular() bool
	StoreFile() store.File
}

// Ingester stores records for one session and, when a pair is set, indexes
// their byte runs.
type Ingester struct {
	repo      store.Repository
	sessionID int64
	pair      *byterun.Pair
	logger    hclog.Logger

	stored  int
	skipped int
}

// NewIngester creates an Ingester. pair may be nil for directory sources.
func NewIngester(repo store.Repository, sessionID int64, pair *byterun.Pair, logger hclog.Logger) *Ingester {
	return &Ingester{
		repo:      repo,
		sessionID: sessionID,
		pair:      pair,
		logger:    logger,
	}
}

// Add indexes the byte runs of rec and stores it when it is a regular file.
// Directories and other objects still own their runs in the pair. A failed
// insert is logged and does not stop ingestion.
func (i *Ingester) Add(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		i.skipped++
		return nil
	}
	if i.pair != nil {
		i.pair.Process(rec)
	}
	if !rec.IsRegular() {
		i.skipped++
		return nil
	}

	f := rec.StoreFile()
	f.SessionID = i.sessionID
	if _, err := i.repo.InsertFile(ctx, f); err != nil {
		i.logger.Warn("failed to store file", "path", f.Filepath, "error", err)
		i.skipped++
		return nil
	}
	i.stored++
	return nil
}

// Stored returns the number of files written to the store.
func (i *Ingester) Stored() int {
	return i.stored
}

// Skipped returns the number of records not stored.
func (i *Ingester) Skipped() int {
	return i.skipped
}

// IngestDFXML reads a DFXML document and adds each file object.
func (i *Ingester) IngestDFXML(ctx context.Context, r io.Reader) error {
	return ReadDFXML(r, func(f *DFXMLFile) error {
		return i.Add(ctx, f)
	})
}

// IngestDirectory walks root and adds each regular file. Entries that
// cannot be read are logged and counted as skipped.
func (i *Ingester) IngestDirectory(ctx context.Context, root string) error {
	return WalkDirectory(root, func(w *WalkedFile) error {
		return i.Add(ctx, w)
	}, func(p string, err error) {
		i.logger.Warn("skipping unreadable entry", "path", p, "error", err)
		i.skipped++
	})
}

// ReadPair builds the byte run index of every object of a DFXML document
// without storing anything.
func ReadPair(r io.Reader) (*byterun.Pair, error) {
	pair := byterun.NewPair()
	err := ReadDFXML(r, func(f *DFXMLFile) error {
		pair.Process(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}
