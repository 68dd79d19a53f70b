package byterun

import (
	"github.com/bulk-reviewer/brv/internal/forensicpath"
)

// UnallocatedPrefix marks names of files that are not allocated in the file system.
const UnallocatedPrefix = "*"

// Extent is one contiguous byte range of a file inside the source image.
type Extent struct {
	Offset int64
	Length int64
}

// MetadataRecord is a file described by file system metadata.
type MetadataRecord interface {
	Name() string
	ContentHash() string
	Extents() []Extent
	IsAllocated() bool
}

// Pair holds the allocated and unallocated byte run indices of one session.
// It is populated once and treated as read-only afterwards.
type Pair struct {
	Allocated   *Index
	Unallocated *Index
	files       int
}

// NewPair returns an empty index pair.
func NewPair() *Pair {
	return &Pair{
		Allocated:   NewIndex(),
		Unallocated: NewIndex(),
	}
}

// Process adds every extent of rec to the matching index.
func (p *Pair) Process(rec MetadataRecord) {
	if rec == nil {
		return
	}
	p.files++

	owner := Owner{Name: rec.Name(), Hash: rec.ContentHash()}
	target := p.Allocated
	if !rec.IsAllocated() {
		owner.Name = UnallocatedPrefix + owner.Name
		target = p.Unallocated
	}
	for _, ext := range rec.Extents() {
		target.Add(ext.Offset, ext.Length, owner)
	}
}

// Len returns the total number of runs in both indices.
func (p *Pair) Len() int {
	return p.Allocated.Len() + p.Unallocated.Len()
}

// Files returns the number of metadata records processed.
func (p *Pair) Files() int {
	return p.files
}

// Resolve returns the owner of offset, preferring allocated files.
func (p *Pair) Resolve(offset uint64) (Owner, bool) {
	if r, ok := p.Allocated.Find(offset); ok {
		return r.Owner, true
	}
	if r, ok := p.Unallocated.Find(offset); ok {
		return r.Owner, true
	}
	return Owner{}, false
}

// ResolvePath decodes a forensic path token and resolves the resulting offset.
func (p *Pair) ResolvePath(token []byte) (Owner, bool, error) {
	offset, err := forensicpath.Decode(token)
	if err != nil {
		return Owner{}, false, err
	}
	owner, ok := p.Resolve(offset)
	return owner, ok, nil
}
