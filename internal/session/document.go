// Package session converts a stored session into the JSON document consumed
// by the review interface and by exports.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bulk-reviewer/brv/internal/store"
	"github.com/bulk-reviewer/brv/pkg/shared/files"
)

// Document is the JSON form of a session.
type Document struct {
	ID                    int64          `json:"id"`
	UUID                  string         `json:"uuid"`
	Name                  string         `json:"name"`
	SourcePath            string         `json:"source_path"`
	DiskImage             bool           `json:"disk_image"`
	NamedEntityExtraction bool           `json:"named_entity_extraction"`
	RegexFile             string         `json:"regex_file"`
	SSNMode               int            `json:"ssn_mode"`
	Stoplists             string         `json:"stoplists"`
	Files                 []FileEntry    `json:"files"`
	Features              []FeatureEntry `json:"features"`
}

// FileEntry is a file with the number of features attributed to it.
type FileEntry struct {
	ID           int64  `json:"id"`
	Filename     string `json:"filename"`
	Filepath     string `json:"filepath"`
	DateModified string `json:"date_modified"`
	DateCreated  string `json:"date_created"`
	Note         string `json:"note"`
	Allocated    bool   `json:"allocated"`
	Verified     bool   `json:"verified"`
	Inode        string `json:"inode"`
	FSOffset     string `json:"fs_offset"`
	Session      int64  `json:"session"`
	FeatureCount int    `json:"feature_count"`
}

// FeatureEntry is a feature with the path of the file that owns it.
type FeatureEntry struct {
	ID           int64  `json:"id"`
	FeatureType  string `json:"feature_type"`
	ForensicPath string `json:"forensic_path"`
	Offset       string `json:"offset"`
	Feature      string `json:"feature"`
	Context      string `json:"context"`
	Note         string `json:"note"`
	Dismissed    bool   `json:"dismissed"`
	File         int64  `json:"file"`
	Filepath     string `json:"filepath"`
}

// Build assembles the document of a stored session.
func Build(ctx context.Context, repo store.Repository, sessionID int64) (*Document, error) {
	sess, err := repo.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	storedFiles, err := repo.Files(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	storedFeatures, err := repo.Features(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(storedFiles))
	for _, f := range storedFeatures {
		counts[f.FileID]++
	}

	doc := &Document{
		ID:                    sess.ID,
		UUID:                  sess.UUID,
		Name:                  sess.Name,
		SourcePath:            sess.SourcePath,
		DiskImage:             sess.DiskImage,
		NamedEntityExtraction: sess.NamedEntityExtraction,
		RegexFile:             sess.RegexFile,
		SSNMode:               sess.SSNMode,
		Stoplists:             sess.Stoplists,
		Files:                 make([]FileEntry, 0, len(storedFiles)),
		Features:              make([]FeatureEntry, 0, len(storedFeatures)),
	}

	paths := make(map[int64]string, len(storedFiles))
	for _, f := range storedFiles {
		paths[f.ID] = f.Filepath
		doc.Files = append(doc.Files, FileEntry{
			ID:           f.ID,
			Filename:     f.Filename,
			Filepath:     f.Filepath,
			DateModified: f.DateModified,
			DateCreated:  f.DateCreated,
			Note:         f.Note,
			Allocated:    f.Allocated,
			Verified:     f.Verified,
			Inode:        f.Inode,
			FSOffset:     f.FSOffset,
			Session:      f.SessionID,
			FeatureCount: counts[f.ID],
		})
	}
	for _, f := range storedFeatures {
		doc.Features = append(doc.Features, FeatureEntry{
			ID:           f.ID,
			FeatureType:  f.FeatureType,
			ForensicPath: f.ForensicPath,
			Offset:       f.Offset,
			Feature:      f.Feature,
			Context:      f.Context,
			Note:         f.Note,
			Dismissed:    f.Dismissed,
			File:         f.FileID,
			Filepath:     paths[f.FileID],
		})
	}
	return doc, nil
}

// StoreFiles returns the document's files as store rows.
func (d *Document) StoreFiles() []store.File {
	out := make([]store.File, 0, len(d.Files))
	for _, f := range d.Files {
		out = append(out, store.File{
			ID:           f.ID,
			SessionID:    f.Session,
			Filename:     f.Filename,
			Filepath:     f.Filepath,
			DateModified: f.DateModified,
			DateCreated:  f.DateCreated,
			Note:         f.Note,
			Allocated:    f.Allocated,
			Verified:     f.Verified,
			Inode:        f.Inode,
			FSOffset:     f.FSOffset,
		})
	}
	return out
}

// StoreFeatures returns the document's features as store rows.
func (d *Document) StoreFeatures() []store.Feature {
	out := make([]store.Feature, 0, len(d.Features))
	for _, f := range d.Features {
		out = append(out, store.Feature{
			ID:           f.ID,
			FileID:       f.File,
			FeatureType:  f.FeatureType,
			ForensicPath: f.ForensicPath,
			Offset:       f.Offset,
			Feature:      f.Feature,
			Context:      f.Context,
			Note:         f.Note,
			Dismissed:    f.Dismissed,
		})
	}
	return out
}

// Write stores doc as indented UTF-8 JSON at path. Non-ASCII text and HTML
// characters are written as is.
func Write(path string, doc *Document) error {
	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session document: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode session document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write session document: %w", err)
	}
	return nil
}

// Read loads a session document.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session document %q: %w", path, err)
	}
	return &doc, nil
}
