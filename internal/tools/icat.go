package tools

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultSectorSize is used when Icat.SectorSize is not set.
const DefaultSectorSize = 512

// Icat carves file content out of a disk image by inode.
type Icat struct {
	Command
	SectorSize int64
}

// Args returns the argument list for carving inode from the file system
// that starts fsOffset bytes into image.
func (c Icat) Args(image, fsOffset, inode string) ([]string, error) {
	sectors, err := c.sectors(fsOffset)
	if err != nil {
		return nil, err
	}
	inode = strings.TrimSpace(inode)
	if _, err := strconv.ParseUint(inode, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid inode %q: %w", inode, err)
	}
	return []string{"-o", strconv.FormatInt(sectors, 10), image, inode}, nil
}

// Carve streams the content of inode to w.
func (c Icat) Carve(ctx context.Context, image, fsOffset, inode string, w io.Writer) error {
	args, err := c.Args(image, fsOffset, inode)
	if err != nil {
		return err
	}
	return c.run(ctx, args, w)
}

func (c Icat) sectors(fsOffset string) (int64, error) {
	fsOffset = strings.TrimSpace(fsOffset)
	if fsOffset == "" {
		return 0, nil
	}
	bytesOffset, err := strconv.ParseInt(fsOffset, 10, 64)
	if err != nil || bytesOffset < 0 {
		return 0, fmt.Errorf("invalid file system offset %q", fsOffset)
	}
	size := c.SectorSize
	if size <= 0 {
		size = DefaultSectorSize
	}
	if bytesOffset%size != 0 {
		return 0, fmt.Errorf("file system offset %d is not a multiple of the %d byte sector size", bytesOffset, size)
	}
	return bytesOffset / size, nil
}
