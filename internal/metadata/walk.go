package metadata

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/store"
)

// WalkedFile is a regular file found by walking a source directory.
// It has no position inside an image, so it contributes no extents.
type WalkedFile struct {
	RelPath string
	Info    fs.FileInfo
}

var _ Record = (*WalkedFile)(nil)

// Name returns the path relative to the walk root.
func (w *WalkedFile) Name() string {
	return w.RelPath
}

// ContentHash is not computed for walked files.
func (w *WalkedFile) ContentHash() string {
	return ""
}

func (w *WalkedFile) Extents() []byterun.Extent {
	return nil
}

func (w *WalkedFile) IsAllocated() bool {
	return true
}

func (w *WalkedFile) IsRegular() bool {
	return w.Info.Mode().IsRegular()
}

// StoreFile converts the walked file to a file row.
func (w *WalkedFile) StoreFile() store.File {
	modified := ""
	if mt := w.Info.ModTime(); !mt.IsZero() {
		modified = mt.UTC().Format(isoSeconds)
	}
	return store.File{
		Filename:     filepath.Base(w.RelPath),
		Filepath:     w.RelPath,
		DateModified: modified,
		Allocated:    true,
	}
}

const isoSeconds = "2006-01-02T15:04:05"

// walkDir is replaced in tests to inject access errors.
var walkDir = filepath.WalkDir

// WalkDirectory calls fn for every regular file below root in lexical order.
// Paths are slash separated and relative to root. An entry that cannot be
// read is reported to skip, when set, and left out; an unreadable directory
// is not descended into. Only a failure on root itself is returned.
func WalkDirectory(root string, fn func(*WalkedFile) error, skip func(path string, err error)) error {
	report := func(p string, err error) {
		if skip != nil {
			skip(p, err)
		}
	}
	return walkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil || filepath.Clean(p) == filepath.Clean(root) {
				return fmt.Errorf("failed to access %q: %w", p, err)
			}
			report(p, err)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			report(p, err)
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			report(p, err)
			return nil
		}
		return fn(&WalkedFile{RelPath: filepath.ToSlash(rel), Info: info})
	})
}

// ParseTimestamp parses a recorded DFXML or walk timestamp. RFC 3339 values
// keep their zone; anything else is read as UTC from its first 19 characters.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	if len(s) > len(isoSeconds) {
		s = s[:len(isoSeconds)]
	}
	return time.ParseInLocation(isoSeconds, s, time.UTC)
}
