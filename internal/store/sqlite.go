package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// SQLite implements Repository on a SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Repository = (*SQLite)(nil)

// OpenSQLite opens or creates a session database at path.
// Creates parent directories if they don't exist.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return open(path)
}

// OpenInMemory creates an in-memory database (useful for testing).
func OpenInMemory() (*SQLite, error) {
	return open(":memory:")
}

func open(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection keeps :memory: databases and pragmas consistent
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	schema := `
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL,
			name TEXT NOT NULL UNIQUE,
			source_path TEXT NOT NULL,
			disk_image INTEGER NOT NULL DEFAULT 0,
			named_entity_extraction INTEGER NOT NULL DEFAULT 0,
			regex_file TEXT NOT NULL DEFAULT '',
			ssn_mode INTEGER NOT NULL DEFAULT 1,
			stoplists TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS file (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session INTEGER NOT NULL REFERENCES session(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			date_modified TEXT NOT NULL DEFAULT '',
			date_created TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			allocated INTEGER NOT NULL DEFAULT 1,
			verified INTEGER NOT NULL DEFAULT 0,
			inode TEXT NOT NULL DEFAULT '',
			fs_offset TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_file_session_path ON file(session, filepath);

		CREATE TABLE IF NOT EXISTS feature (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file INTEGER NOT NULL REFERENCES file(id) ON DELETE CASCADE,
			feature_type TEXT NOT NULL,
			forensic_path TEXT NOT NULL DEFAULT '',
			"offset" TEXT NOT NULL DEFAULT '',
			feature TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			dismissed INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_feature_file ON feature(file);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateSession stores a new session.
func (s *SQLite) CreateSession(ctx context.Context, sess Session) (int64, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session WHERE name = ?", sess.Name).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to look up session %q: %w", sess.Name, err)
	}
	if exists > 0 {
		return 0, fmt.Errorf("%w: %q", brerrors.ErrDuplicateSession, sess.Name)
	}

	if sess.UUID == "" {
		sess.UUID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session (uuid, name, source_path, disk_image, named_entity_extraction, regex_file, ssn_mode, stoplists)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.UUID, sess.Name, sess.SourcePath, sess.DiskImage, sess.NamedEntityExtraction, sess.RegexFile, sess.SSNMode, sess.Stoplists)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session %q: %w", sess.Name, err)
	}
	return res.LastInsertId()
}

// Session loads a session by id.
func (s *SQLite) Session(ctx context.Context, id int64) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uuid, name, source_path, disk_image, named_entity_extraction, regex_file, ssn_mode, stoplists
		 FROM session WHERE id = ?`, id).
		Scan(&sess.ID, &sess.UUID, &sess.Name, &sess.SourcePath, &sess.DiskImage, &sess.NamedEntityExtraction,
			&sess.RegexFile, &sess.SSNMode, &sess.Stoplists)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session %d: %w", id, err)
	}
	return sess, nil
}

// InsertFile stores a discovered file.
func (s *SQLite) InsertFile(ctx context.Context, f File) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO file (session, filename, filepath, date_modified, date_created, note, allocated, verified, inode, fs_offset)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.SessionID, f.Filename, f.Filepath, f.DateModified, f.DateCreated, f.Note, f.Allocated, f.Verified, f.Inode, f.FSOffset)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file %q: %w", f.Filepath, err)
	}
	return res.LastInsertId()
}

const fileColumns = `id, session, filename, filepath, date_modified, date_created, note, allocated, verified, inode, fs_offset`

func scanFile(row interface{ Scan(...any) error }) (File, error) {
	var f File
	err := row.Scan(&f.ID, &f.SessionID, &f.Filename, &f.Filepath, &f.DateModified, &f.DateCreated,
		&f.Note, &f.Allocated, &f.Verified, &f.Inode, &f.FSOffset)
	return f, err
}

// FileByPath returns the first file of the session with the given relative path.
func (s *SQLite) FileByPath(ctx context.Context, sessionID int64, path string) (File, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM file WHERE session = ? AND filepath = ? ORDER BY id LIMIT 1",
		sessionID, path)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, fmt.Errorf("failed to look up file %q: %w", path, err)
	}
	return f, true, nil
}

// EnsureUnallocatedPlaceholder returns the placeholder file id, creating it at most once.
func (s *SQLite) EnsureUnallocatedPlaceholder(ctx context.Context, sessionID int64) (int64, error) {
	f, ok, err := s.FileByPath(ctx, sessionID, UnallocatedPath)
	if err != nil {
		return 0, err
	}
	if ok {
		return f.ID, nil
	}
	return s.InsertFile(ctx, File{
		SessionID: sessionID,
		Filename:  UnallocatedPath,
		Filepath:  UnallocatedPath,
		Allocated: false,
	})
}

// Files returns all files of a session in insertion order.
func (s *SQLite) Files(ctx context.Context, sessionID int64) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+fileColumns+" FROM file WHERE session = ? ORDER BY id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountFiles returns the number of files recorded for a session.
func (s *SQLite) CountFiles(ctx context.Context, sessionID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM file WHERE session = ?", sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

// InsertFeature stores a feature attributed to a file.
func (s *SQLite) InsertFeature(ctx context.Context, f Feature) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feature (file, feature_type, forensic_path, "offset", feature, context, note, dismissed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FileID, f.FeatureType, f.ForensicPath, f.Offset, f.Feature, f.Context, f.Note, f.Dismissed)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feature: %w", err)
	}
	return res.LastInsertId()
}

// Features returns all features of a session in insertion order.
func (s *SQLite) Features(ctx context.Context, sessionID int64) ([]Feature, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.file, f.feature_type, f.forensic_path, f."offset", f.feature, f.context, f.note, f.dismissed
		 FROM feature f JOIN file fl ON f.file = fl.id
		 WHERE fl.session = ? ORDER BY f.id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	var out []Feature
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.FileID, &f.FeatureType, &f.ForensicPath, &f.Offset, &f.Feature,
			&f.Context, &f.Note, &f.Dismissed); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
