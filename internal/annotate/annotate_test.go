package annotate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulk-reviewer/brv/internal/byterun"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

type record struct {
	name      string
	hash      string
	extents   []byterun.Extent
	allocated bool
}

func (r record) Name() string { return r.name }
func (r record) ContentHash() string { return r.hash }
func (r record) Extents() []byterun.Extent { return r.extents }
func (r record) IsAllocated() bool { return r.allocated }

func scenarioPair() *byterun.Pair {
	p := byterun.NewPair()
	p.Process(record{name: "doc.txt", hash: "h1", extents: []byterun.Extent{{Offset: 0, Length: 100}}, allocated: true})
	p.Process(record{name: "img.jpg", hash: "h2", extents: []byterun.Extent{{Offset: 100, Length: 400}}, allocated: true})
	p.Process(record{name: "gone.doc", hash: "h3", extents: []byterun.Extent{{Offset: 600, Length: 50}}, allocated: false})
	return p
}

func newAnnotator(p *byterun.Pair) *Annotator {
	a := New(p, hclog.NewNullLogger())
	clock := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(1500 * time.Millisecond)
		return clock
	}
	return a
}

func TestAnnotate(t *testing.T) {
	in := "# BANNER\n" +
		"250\tjohn@example.com\tctx a\n" +
		"1000\tJOHN@EXAMPLE.COM\tcontext text\n" +
		"80-XOR-30\tencoded@example.com\tctx b\n" +
		"610-GZIP-4\tdeleted@example.com\tctx c\n" +
		"\n" +
		"not-a-number-XYZ\tx\ty\n" +
		"two\tfields\n"

	var out bytes.Buffer
	st, err := newAnnotator(scenarioPair()).Annotate(strings.NewReader(in), &out)
	require.NoError(t, err)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 3, st.Located)
	assert.Equal(t, 1, st.Unallocated)
	assert.Equal(t, 2, st.Encoded)
	assert.Equal(t, 1500*time.Millisecond, st.Elapsed)
	require.Len(t, st.Errors, 2)
	assert.True(t, errors.Is(st.Errors[0], brerrors.ErrMalformedOffset))
	assert.True(t, errors.Is(st.Errors[1], brerrors.ErrUnparsableLine))

	var le *brerrors.LineError
	require.True(t, errors.As(st.Errors[1], &le))
	assert.Equal(t, 8, le.Number)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		Header,
		"# BANNER",
		"250\tjohn@example.com\tctx a\timg.jpg\th2",
		"1000\tJOHN@EXAMPLE.COM\tcontext text\t\t",
		"80-XOR-30\tencoded@example.com\tctx b\timg.jpg\th2",
		"610-GZIP-4\tdeleted@example.com\tctx c\t*gone.doc\th3",
		"# Total features input: 4",
		"# Total features located to files: 3",
		"# Total features in unallocated space: 1",
		"# Total features in encoded regions: 2",
		"# Total processing time: 1.50 seconds",
	}, lines)
}

func TestAnnotateEmptyIndex(t *testing.T) {
	var out bytes.Buffer
	_, err := New(byterun.NewPair(), hclog.NewNullLogger()).Annotate(strings.NewReader("1\ta\tb\n"), &out)
	assert.ErrorIs(t, err, brerrors.ErrEmptyIndex)
	assert.Zero(t, out.Len(), "nothing is written for an empty index")
}

func TestParseLine(t *testing.T) {
	l, err := ParseLine([]byte("5000-XOR-20\tfeat\tctx"))
	require.NoError(t, err)
	assert.Equal(t, "5000-XOR-20", string(l.Path))
	assert.Equal(t, "feat", string(l.Feature))
	assert.Equal(t, "ctx", string(l.Context))

	_, err = ParseLine([]byte("a\tb\tc\td"))
	assert.ErrorIs(t, err, brerrors.ErrUnparsableLine)
}

func TestAnnotateDir(t *testing.T) {
	featureDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "annotated")
	files := map[string]string{
		"email.txt":           "250\ta@b.c\tctx\n",
		"pii.txt":             "50\t123-45-6789\tctx\n",
		"tcp.txt":             "1\tflow\tctx\n",
		"email_histogram.txt": "n=1\ta@b.c\n",
		"report.xml":          "<report/>",
	}
	for name, c := range files {
		require.NoError(t, os.WriteFile(filepath.Join(featureDir, name), []byte(c), 0o644))
	}

	names, err := FeatureFiles(featureDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"email.txt", "pii.txt"}, names)

	a := newAnnotator(scenarioPair())
	st, err := a.AnnotateDir(context.Background(), featureDir, outDir)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 2, st.Located)

	assert.FileExists(t, filepath.Join(outDir, "annotated_email.txt"))
	assert.FileExists(t, filepath.Join(outDir, "annotated_pii.txt"))
	assert.NoFileExists(t, filepath.Join(outDir, "annotated_tcp.txt"))

	_, err = a.AnnotateDir(context.Background(), featureDir, outDir)
	assert.ErrorIs(t, err, brerrors.ErrOutputExists)
}

func TestAnnotateDirCancelled(t *testing.T) {
	featureDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "email.txt"), []byte("250\ta\tb\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newAnnotator(scenarioPair()).AnnotateDir(ctx, featureDir, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
