package metadata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/store"
)

// DFXMLFile is one <fileobject> of a DFXML document.
type DFXMLFile struct {
	Filename string        `xml:"filename"`
	NameType string        `xml:"name_type"`
	FileSize int64         `xml:"filesize"`
	Alloc    string        `xml:"alloc"`
	Unalloc  string        `xml:"unalloc"`
	Inode    string        `xml:"inode"`
	MTime    string        `xml:"mtime"`
	CTime    string        `xml:"ctime"`
	CrTime   string        `xml:"crtime"`
	Hashes   []dfxmlHash   `xml:"hashdigest"`
	ByteRuns []dfxmlRun    `xml:"byte_runs>byte_run"`
	Volume   dfxmlVolumeID `xml:"-"`
}

type dfxmlHash struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type dfxmlRun struct {
	ImgOffset string `xml:"img_offset,attr"`
	Len       string `xml:"len,attr"`
}

type dfxmlVolumeID struct {
	PartitionOffset string
}

var _ Record = (*DFXMLFile)(nil)

// Name returns the file name recorded by the walker.
func (f *DFXMLFile) Name() string {
	return f.Filename
}

// ContentHash returns the MD5 digest, or any digest when no MD5 was recorded.
func (f *DFXMLFile) ContentHash() string {
	for _, h := range f.Hashes {
		if strings.EqualFold(h.Type, "md5") {
			return strings.TrimSpace(h.Value)
		}
	}
	if len(f.Hashes) > 0 {
		return strings.TrimSpace(f.Hashes[0].Value)
	}
	return ""
}

// Extents returns the byte runs that have an image offset.
// Runs without one (resident or sparse data) are skipped.
func (f *DFXMLFile) Extents() []byterun.Extent {
	var out []byterun.Extent
	for _, r := range f.ByteRuns {
		off, err := strconv.ParseInt(strings.TrimSpace(r.ImgOffset), 10, 64)
		if err != nil {
			continue
		}
		length, err := strconv.ParseInt(strings.TrimSpace(r.Len), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, byterun.Extent{Offset: off, Length: length})
	}
	return out
}

// IsAllocated reports false only for files the walker marked unallocated.
func (f *DFXMLFile) IsAllocated() bool {
	return strings.TrimSpace(f.Unalloc) != "1"
}

// IsRegular reports whether the object is a regular file.
// Objects without a name_type are treated as regular.
func (f *DFXMLFile) IsRegular() bool {
	nt := strings.TrimSpace(f.NameType)
	return nt == "" || nt == "r"
}

// StoreFile converts the object to a file row.
// The change time takes precedence over the creation time.
func (f *DFXMLFile) StoreFile() store.File {
	created := strings.TrimSpace(f.CrTime)
	if ct := strings.TrimSpace(f.CTime); ct != "" {
		created = ct
	}
	return store.File{
		Filename:     path.Base(f.Filename),
		Filepath:     f.Filename,
		DateModified: strings.TrimSpace(f.MTime),
		DateCreated:  created,
		Allocated:    f.IsAllocated(),
		Inode:        strings.TrimSpace(f.Inode),
		FSOffset:     f.Volume.PartitionOffset,
	}
}

// ReadDFXML streams the file objects of a DFXML document to fn.
// Each file object carries the partition offset of its enclosing volume.
func ReadDFXML(r io.Reader, fn func(*DFXMLFile) error) error {
	dec := xml.NewDecoder(r)
	var volume dfxmlVolumeID
	depth := 0
	volumeDepth := -1

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read DFXML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "volume":
				volume = dfxmlVolumeID{}
				volumeDepth = depth
				for _, a := range t.Attr {
					if a.Name.Local == "offset" {
						volume.PartitionOffset = strings.TrimSpace(a.Value)
					}
				}
			case "partition_offset":
				if volumeDepth >= 0 && depth == volumeDepth+1 {
					var v string
					if err := dec.DecodeElement(&v, &t); err != nil {
						return fmt.Errorf("failed to decode partition_offset: %w", err)
					}
					depth--
					volume.PartitionOffset = strings.TrimSpace(v)
				}
			case "fileobject":
				var fo DFXMLFile
				if err := dec.DecodeElement(&fo, &t); err != nil {
					return fmt.Errorf("failed to decode fileobject: %w", err)
				}
				depth--
				fo.Volume = volume
				if err := fn(&fo); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "volume" && depth == volumeDepth {
				volume = dfxmlVolumeID{}
				volumeDepth = -1
			}
			depth--
		}
	}
}
