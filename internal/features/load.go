package features

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/store"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// PathDelimiter separates the file path from the in-file offset in forensic
// paths written by a recursive directory scan.
const PathDelimiter = "\U0010001c"

// Mode selects the feature file layout.
type Mode int

const (
	// ModeDirectory reads raw scanner output produced for a directory source:
	// path<TAB>feature<TAB>context.
	ModeDirectory Mode = iota
	// ModeAnnotated reads annotated scanner output produced for a disk image:
	// offset<TAB>feature<TAB>context[<TAB>filename<TAB>hash].
	ModeAnnotated
)

// LoadStats counts what happened to the lines of one or more feature files.
type LoadStats struct {
	Lines   int
	Stored  int
	Skipped int
}

func (s *LoadStats) add(o LoadStats) {
	s.Lines += o.Lines
	s.Stored += o.Stored
	s.Skipped += o.Skipped
}

// Loader writes features into the store for one session.
type Loader struct {
	repo       store.Repository
	sessionID  int64
	sourceRoot string
	logger     hclog.Logger

	placeholder int64
}

// NewLoader creates a Loader. sourceRoot is the scanned directory and is only
// used in ModeDirectory.
func NewLoader(repo store.Repository, sessionID int64, sourceRoot string, logger hclog.Logger) *Loader {
	return &Loader{
		repo:       repo,
		sessionID:  sessionID,
		sourceRoot: sourceRoot,
		logger:     logger,
	}
}

// LoadDir loads every selected feature file of dir.
func (l *Loader) LoadDir(ctx context.Context, dir string, mode Mode, opts SelectOptions) (LoadStats, error) {
	var total LoadStats
	paths, err := Select(dir, opts)
	if err != nil {
		return total, err
	}
	for _, p := range paths {
		st, err := l.LoadFile(ctx, p, mode)
		total.add(st)
		if err != nil {
			return total, err
		}
		l.logger.Debug("feature file loaded", "file", filepath.Base(p), "stored", st.Stored, "skipped", st.Skipped)
	}
	return total, nil
}

// LoadFile loads one feature file. Lines that cannot be used are logged and
// skipped; only storage failures and cancellation are returned.
func (l *Loader) LoadFile(ctx context.Context, path string, mode Mode) (LoadStats, error) {
	var st LoadStats

	f, err := os.Open(path)
	if err != nil {
		return st, fmt.Errorf("failed to open feature file %q: %w", path, err)
	}
	defer f.Close()

	label := Label(path)
	r := bufio.NewReader(NewReader(f))
	number := 0
	for {
		raw, readErr := r.ReadBytes('\n')
		if len(raw) > 0 {
			number++
			if err := ctx.Err(); err != nil {
				return st, err
			}
			line := bytes.TrimRight(raw, "\r\n")
			if len(bytes.TrimSpace(line)) > 0 && line[0] != '#' {
				st.Lines++
				var lerr error
				switch mode {
				case ModeAnnotated:
					lerr = l.loadAnnotated(ctx, line, label)
				default:
					lerr = l.loadDirectory(ctx, line, label)
				}
				switch {
				case lerr == nil:
					st.Stored++
				case isLineLevel(lerr):
					st.Skipped++
					var le *brerrors.LineError
					if errors.As(lerr, &le) {
						le.File = path
						le.Number = number
					}
					l.logger.Warn("skipping feature line", "file", path, "line", number, "error", lerr)
				default:
					return st, lerr
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			return st, nil
		}
		if readErr != nil {
			return st, fmt.Errorf("failed to read feature file %q: %w", path, readErr)
		}
	}
}

// errUnresolvedPath marks a directory-mode line whose path matches no stored file.
var errUnresolvedPath = errors.New("feature path does not match any file of the session")

func isLineLevel(err error) bool {
	return errors.Is(err, brerrors.ErrUnparsableLine) || errors.Is(err, errUnresolvedPath)
}

func (l *Loader) loadDirectory(ctx context.Context, line []byte, label string) error {
	fields := bytes.Split(line, []byte{'\t'})
	if len(fields) != 3 {
		return &brerrors.LineError{Line: string(line), Err: brerrors.ErrUnparsableLine}
	}
	forensicPath := DecodeField(fields[0])

	rel, ok := l.relativePath(forensicPath)
	if !ok {
		return fmt.Errorf("%w: %q", errUnresolvedPath, forensicPath)
	}
	file, found, err := l.repo.FileByPath(ctx, l.sessionID, rel)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q", errUnresolvedPath, rel)
	}

	_, err = l.repo.InsertFeature(ctx, store.Feature{
		FileID:       file.ID,
		FeatureType:  label,
		ForensicPath: forensicPath,
		Feature:      DecodeField(fields[1]),
		Context:      strings.TrimRightFunc(DecodeField(fields[2]), unicode.IsSpace),
	})
	return err
}

// relativePath turns the file part of a forensic path into a path relative
// to the source root.
func (l *Loader) relativePath(forensicPath string) (string, bool) {
	p := forensicPath
	if i := strings.Index(p, PathDelimiter); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "", false
	}
	p = filepath.Clean(filepath.FromSlash(p))

	roots := []string{filepath.Clean(l.sourceRoot)}
	if abs, err := filepath.Abs(l.sourceRoot); err == nil && abs != roots[0] {
		roots = append(roots, abs)
	}
	for _, root := range roots {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (l *Loader) loadAnnotated(ctx context.Context, line []byte, label string) error {
	fields := bytes.Split(line, []byte{'\t'})
	if len(fields) != 3 && len(fields) != 5 {
		return &brerrors.LineError{Line: string(line), Err: brerrors.ErrUnparsableLine}
	}

	owner := ""
	if len(fields) == 5 {
		owner = DecodeField(fields[3])
	}
	fileID, err := l.annotatedFileID(ctx, owner)
	if err != nil {
		return err
	}

	_, err = l.repo.InsertFeature(ctx, store.Feature{
		FileID:      fileID,
		FeatureType: label,
		Offset:      string(fields[0]),
		Feature:     DecodeField(fields[1]),
		Context:     strings.TrimRightFunc(DecodeField(fields[2]), unicode.IsSpace),
	})
	return err
}

// annotatedFileID finds the stored file named by an annotated line. Owners
// of unallocated runs carry the unallocated prefix. Lines without a known
// owner go to the unallocated space placeholder.
func (l *Loader) annotatedFileID(ctx context.Context, owner string) (int64, error) {
	candidates := []string{owner}
	if trimmed := strings.TrimPrefix(owner, byterun.UnallocatedPrefix); trimmed != owner {
		candidates = append(candidates, trimmed)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		f, ok, err := l.repo.FileByPath(ctx, l.sessionID, c)
		if err != nil {
			return 0, err
		}
		if ok {
			return f.ID, nil
		}
	}

	if l.placeholder == 0 {
		id, err := l.repo.EnsureUnallocatedPlaceholder(ctx, l.sessionID)
		if err != nil {
			return 0, err
		}
		l.placeholder = id
	}
	return l.placeholder, nil
}
