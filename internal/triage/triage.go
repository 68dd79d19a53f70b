// Package triage splits the files of a session into those that still hold
// sensitive features and those that are clear to release.
package triage

import (
	"sort"

	"github.com/bulk-reviewer/brv/internal/store"
)

// Partition is a total, disjoint split of a session's file paths.
type Partition struct {
	Flagged []string
	Clear   []string

	flagged map[string]bool
}

// IsFlagged reports whether path holds at least one undismissed feature.
func (p Partition) IsFlagged(path string) bool {
	return p.flagged[path]
}

// Classify partitions files. A file is flagged when any feature attributed to
// it is not dismissed; every other file, including files without features,
// is clear.
func Classify(files []store.File, features []store.Feature) Partition {
	sensitive := make(map[int64]bool)
	for _, f := range features {
		if !f.Dismissed {
			sensitive[f.FileID] = true
		}
	}

	p := Partition{flagged: make(map[string]bool)}
	for _, f := range files {
		if sensitive[f.ID] {
			p.flagged[f.Filepath] = true
		}
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Filepath] {
			continue
		}
		seen[f.Filepath] = true
		if p.flagged[f.Filepath] {
			p.Flagged = append(p.Flagged, f.Filepath)
		} else {
			p.Clear = append(p.Clear, f.Filepath)
		}
	}
	sort.Strings(p.Flagged)
	sort.Strings(p.Clear)
	return p
}
