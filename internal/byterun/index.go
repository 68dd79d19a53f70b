// Package byterun maps byte offsets in a source image back to the files that
// own them.
//
// An Index holds half-open byte runs sorted by start offset and answers point
// lookups with a binary search. A Pair keeps one Index for allocated files and
// one for unallocated (deleted or orphaned) files and gives allocated owners
// precedence.
package byterun

import (
	"sort"
)

// Owner identifies the file a byte run belongs to.
type Owner struct {
	Name string
	Hash string
}

// Run is the half-open byte interval [Start, End) owned by Owner.
type Run struct {
	Start uint64
	End   uint64
	Owner Owner
}

// Contains reports whether pos falls inside the run.
func (r Run) Contains(pos uint64) bool {
	return r.Start <= pos && pos < r.End
}

// Index is a sort-on-demand collection of byte runs.
// It is not safe for concurrent mutation; once populated it may be read freely
// after the first Find has sorted it.
type Index struct {
	runs   []Run
	sorted bool
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{sorted: true}
}

// Add appends the run [start, start+length) for owner.
// Negative offsets and non-positive or overflowing lengths are ignored.
func (x *Index) Add(start, length int64, owner Owner) {
	if start < 0 || length <= 0 {
		return
	}
	end := uint64(start) + uint64(length)
	if end <= uint64(start) {
		return
	}
	x.runs = append(x.runs, Run{Start: uint64(start), End: end, Owner: owner})
	x.sorted = false
}

// Len returns the number of runs in the index.
func (x *Index) Len() int {
	return len(x.runs)
}

// Find returns the run that owns pos.
// A run starting exactly at pos wins; otherwise the nearest run starting
// before pos is returned if it still covers pos.
func (x *Index) Find(pos uint64) (Run, bool) {
	if !x.sorted {
		// stable: equal starts keep insertion order
		sort.SliceStable(x.runs, func(i, j int) bool {
			return x.runs[i].Start < x.runs[j].Start
		})
		x.sorted = true
	}

	p := sort.Search(len(x.runs), func(i int) bool {
		return x.runs[i].Start >= pos
	})
	if p < len(x.runs) && x.runs[p].Start == pos {
		return x.runs[p], true
	}
	if p == 0 {
		return Run{}, false
	}
	if prev := x.runs[p-1]; prev.Contains(pos) {
		return prev, true
	}
	return Run{}, false
}

// Runs returns a copy of the runs in their current order.
func (x *Index) Runs() []Run {
	out := make([]Run, len(x.runs))
	copy(out, x.runs)
	return out
}
