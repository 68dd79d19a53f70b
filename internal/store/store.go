// Package store persists review sessions, the files discovered in a source
// and the features attributed to them.
//
// Callers depend on the Repository interface; SQLite is the only engine and
// an in-memory SQLite database serves tests.
package store

import (
	"context"
)

// UnallocatedPath is the filepath of the placeholder file that collects
// features which cannot be attributed to any real file.
const UnallocatedPath = "<unallocated space>"

// Session is one processing run over a source directory or disk image.
type Session struct {
	ID                    int64
	UUID                  string
	Name                  string
	SourcePath            string
	DiskImage             bool
	NamedEntityExtraction bool
	RegexFile             string
	SSNMode               int
	Stoplists             string
}

// File is a logical file discovered in the source. Filepath is relative to the
// source root and is the join key for features.
type File struct {
	ID           int64
	SessionID    int64
	Filename     string
	Filepath     string
	DateModified string
	DateCreated  string
	Note         string
	Allocated    bool
	Verified     bool
	Inode        string
	FSOffset     string
}

// Feature is one scanner match attributed to a file.
type Feature struct {
	ID           int64
	FileID       int64
	FeatureType  string
	ForensicPath string
	Offset       string
	Feature      string
	Context      string
	Note         string
	Dismissed    bool
}

// Repository is the storage used by the processing pipeline.
// Every insert is committed on its own.
type Repository interface {
	// CreateSession stores s and returns its id. It fails with
	// errors.ErrDuplicateSession when a session with the same name exists.
	CreateSession(ctx context.Context, s Session) (int64, error)
	Session(ctx context.Context, id int64) (Session, error)

	InsertFile(ctx context.Context, f File) (int64, error)
	FileByPath(ctx context.Context, sessionID int64, filepath string) (File, bool, error)
	// EnsureUnallocatedPlaceholder returns the id of the session's
	// "<unallocated space>" file, creating it on first use.
	EnsureUnallocatedPlaceholder(ctx context.Context, sessionID int64) (int64, error)
	Files(ctx context.Context, sessionID int64) ([]File, error)
	CountFiles(ctx context.Context, sessionID int64) (int, error)

	InsertFeature(ctx context.Context, f Feature) (int64, error)
	Features(ctx context.Context, sessionID int64) ([]Feature, error)

	Close() error
}
