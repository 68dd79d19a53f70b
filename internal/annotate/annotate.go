// Package annotate attributes scanner features found in a disk image to the
// files that own the bytes they were found in.
package annotate

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bulk-reviewer/brv/internal/byterun"
	"github.com/bulk-reviewer/brv/internal/forensicpath"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// Header is the first line of every annotated feature file.
const Header = "# Position\tFeature\tContext\tFilename\tMD5"

// Line is one parsed scanner output line.
type Line struct {
	Path    []byte
	Feature []byte
	Context []byte
}

// Stats summarises one annotation run.
type Stats struct {
	Total       int
	Located     int
	Unallocated int
	Encoded     int
	Elapsed     time.Duration
	Errors      []error
}

func (s *Stats) add(o Stats) {
	s.Total += o.Total
	s.Located += o.Located
	s.Unallocated += o.Unallocated
	s.Encoded += o.Encoded
	s.Elapsed += o.Elapsed
	s.Errors = append(s.Errors, o.Errors...)
}

// Annotator resolves feature offsets against a byte run index pair.
type Annotator struct {
	pair   *byterun.Pair
	logger hclog.Logger
	now    func() time.Time
}

// New returns an Annotator reading from pair. The pair must not be modified
// while annotating.
func New(pair *byterun.Pair, logger hclog.Logger) *Annotator {
	return &Annotator{
		pair:   pair,
		logger: logger,
		now:    time.Now,
	}
}

// ParseLine splits a scanner output line into its three fields.
func ParseLine(line []byte) (Line, error) {
	fields := bytes.Split(line, []byte{'\t'})
	if len(fields) != 3 {
		return Line{}, &brerrors.LineError{Line: string(line), Err: brerrors.ErrUnparsableLine}
	}
	return Line{Path: fields[0], Feature: fields[1], Context: fields[2]}, nil
}

// Annotate reads scanner output from r and writes the annotated form to w.
// Unusable lines are logged, collected in Stats.Errors and skipped.
func (a *Annotator) Annotate(r io.Reader, w io.Writer) (Stats, error) {
	var st Stats
	if a.pair == nil || a.pair.Len() == 0 {
		return st, brerrors.ErrEmptyIndex
	}

	start := a.now()
	out := bufio.NewWriter(w)
	if _, err := out.WriteString(Header + "\n"); err != nil {
		return st, fmt.Errorf("failed to write header: %w", err)
	}

	in := bufio.NewReader(r)
	number := 0
	for {
		raw, readErr := in.ReadBytes('\n')
		if len(raw) > 0 {
			number++
			if err := a.annotateLine(out, raw, number, &st); err != nil {
				return st, err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return st, fmt.Errorf("failed to read feature line %d: %w", number+1, readErr)
		}
	}

	st.Elapsed = a.now().Sub(start)
	trailer := []string{
		fmt.Sprintf("# Total features input: %d", st.Total),
		fmt.Sprintf("# Total features located to files: %d", st.Located),
		fmt.Sprintf("# Total features in unallocated space: %d", st.Unallocated),
		fmt.Sprintf("# Total features in encoded regions: %d", st.Encoded),
		fmt.Sprintf("# Total processing time: %.2f seconds", st.Elapsed.Seconds()),
	}
	for _, l := range trailer {
		if _, err := out.WriteString(l + "\n"); err != nil {
			return st, fmt.Errorf("failed to write trailer: %w", err)
		}
	}
	if err := out.Flush(); err != nil {
		return st, fmt.Errorf("failed to flush annotated output: %w", err)
	}
	return st, nil
}

func (a *Annotator) annotateLine(out *bufio.Writer, raw []byte, number int, st *Stats) error {
	line := bytes.TrimRight(raw, "\r\n")
	if len(line) > 0 && line[0] == '#' {
		_, err := out.Write(append(line, '\n'))
		return err
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}

	parsed, err := ParseLine(line)
	if err == nil {
		var owner byterun.Owner
		var found bool
		owner, found, err = a.pair.ResolvePath(parsed.Path)
		if err == nil {
			return a.writeRecord(out, parsed, owner, found, st)
		}
		err = &brerrors.LineError{Line: string(line), Err: err}
	}

	var le *brerrors.LineError
	if errors.As(err, &le) {
		le.Number = number
	}
	a.logger.Warn("skipping feature line", "line", number, "error", err)
	st.Errors = append(st.Errors, err)
	return nil
}

func (a *Annotator) writeRecord(out *bufio.Writer, l Line, owner byterun.Owner, found bool, st *Stats) error {
	st.Total++
	if forensicpath.IsEncoded(l.Path) {
		st.Encoded++
	}
	if found {
		st.Located++
	} else {
		st.Unallocated++
	}

	rec := bytes.Join([][]byte{l.Path, l.Feature, l.Context, []byte(owner.Name), []byte(owner.Hash)}, []byte{'\t'})
	rec = append(rec, '\n')
	if _, err := out.Write(rec); err != nil {
		return fmt.Errorf("failed to write annotated line: %w", err)
	}
	return nil
}
