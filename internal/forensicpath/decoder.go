// Package forensicpath decodes the forensic path tokens written by the feature
// scanner into image-absolute byte offsets.
//
// A token is either a plain offset ("4096"), an offset followed by one or more
// transform segments ("4096-GZIP-120"), or an XOR region marker
// ("4096-XOR-120"). Offsets inside transformed regions are always resolved to
// the outermost position so a byte run index built from top-level extents can
// attribute them.
package forensicpath

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"

	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// SegmentSeparator introduces a transform segment in a forensic path.
const SegmentSeparator = '-'

var xorRe = regexp.MustCompile(`(\d+)-XOR-(\d+)`)

// Decode returns the image-absolute offset encoded in token.
func Decode(token []byte) (uint64, error) {
	token = bytes.TrimSpace(token)

	if m := xorRe.FindSubmatch(token); m != nil {
		base, err := parseOffset(m[1])
		if err != nil {
			return 0, malformed(token, err)
		}
		inner, err := parseOffset(m[2])
		if err != nil {
			return 0, malformed(token, err)
		}
		if base > math.MaxUint64-inner {
			return 0, malformed(token, fmt.Errorf("offset overflows"))
		}
		return base + inner, nil
	}

	head := token
	if i := bytes.IndexByte(token, SegmentSeparator); i >= 0 {
		head = token[:i]
	}
	offset, err := parseOffset(head)
	if err != nil {
		return 0, malformed(token, err)
	}
	return offset, nil
}

// IsEncoded reports whether token points inside a decoded or decompressed region.
func IsEncoded(token []byte) bool {
	return bytes.IndexByte(token, SegmentSeparator) >= 0
}

func parseOffset(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("empty offset")
	}
	return strconv.ParseUint(string(b), 10, 64)
}

func malformed(token []byte, err error) error {
	return fmt.Errorf("%w %q: %v", brerrors.ErrMalformedOffset, token, err)
}
