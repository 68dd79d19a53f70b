package features

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulk-reviewer/brv/internal/store"
)

func newSession(t *testing.T, src string, image bool) (*store.SQLite, int64) {
	t.Helper()
	repo, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	sid, err := repo.CreateSession(context.Background(), store.Session{Name: "s", SourcePath: src, DiskImage: image})
	require.NoError(t, err)
	return repo, sid
}

func TestLoadDirectoryMode(t *testing.T) {
	ctx := context.Background()
	src := "/cases/accession/src"
	repo, sid := newSession(t, src, false)

	fid, err := repo.InsertFile(ctx, store.File{SessionID: sid, Filename: "ssn.txt", Filepath: "docs/ssn.txt", Allocated: true})
	require.NoError(t, err)
	// a directory named like the source root deeper in the tree
	nested, err := repo.InsertFile(ctx, store.File{SessionID: sid, Filename: "a.txt", Filepath: "src/a.txt", Allocated: true})
	require.NoError(t, err)

	content := "\xef\xbb\xbf# BANNER FILE NOT PROVIDED (-b option)\n" +
		"# Feature-File-Version: 1.1\n" +
		"/cases/accession/src//docs/ssn.txt" + PathDelimiter + "120\t123-45-6789\tSSN: 123-45-6789 \n" +
		"/cases/accession/src/src/a.txt" + PathDelimiter + "7\t987-65-4321\tctx\n" +
		"\n" +
		"/elsewhere/other.txt" + PathDelimiter + "0\t111-11-1111\tctx\n" +
		"/cases/accession/src/missing.txt" + PathDelimiter + "0\t111-11-1111\tctx\n" +
		"only\ttwo\n"
	path := filepath.Join(t.TempDir(), "pii.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := NewLoader(repo, sid, src, hclog.NewNullLogger())
	st, err := l.LoadFile(ctx, path, ModeDirectory)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Lines: 5, Stored: 2, Skipped: 3}, st)

	feats, err := repo.Features(ctx, sid)
	require.NoError(t, err)
	require.Len(t, feats, 2)
	assert.Equal(t, fid, feats[0].FileID)
	assert.Equal(t, "Social Security Number (USA)", feats[0].FeatureType)
	assert.Equal(t, "123-45-6789", feats[0].Feature)
	assert.Equal(t, "SSN: 123-45-6789", feats[0].Context)
	assert.Contains(t, feats[0].ForensicPath, "docs/ssn.txt")
	assert.Equal(t, nested, feats[1].FileID)
}

func TestLoadAnnotatedMode(t *testing.T) {
	ctx := context.Background()
	repo, sid := newSession(t, "/images/disk.dd", true)

	letter, err := repo.InsertFile(ctx, store.File{SessionID: sid, Filename: "letter.txt", Filepath: "docs/letter.txt", Allocated: true})
	require.NoError(t, err)
	deleted, err := repo.InsertFile(ctx, store.File{SessionID: sid, Filename: "old.doc", Filepath: "old.doc", Allocated: false})
	require.NoError(t, err)

	content := "# Position\tFeature\tContext\tFilename\tMD5\n" +
		"33300\tjohn@example.com\tmail john@example.com\tdocs/letter.txt\tabc\n" +
		"40005\tjane@example.com\tctx\t*old.doc\t\n" +
		"1000\tJOHN@EXAMPLE.COM\tcontext text\n" +
		"2000\tx@example.com\tctx\t\t\n" +
		"bad line without tabs\n" +
		"# Total features input: 5\n"
	path := filepath.Join(t.TempDir(), "annotated_email.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := NewLoader(repo, sid, "", hclog.NewNullLogger())
	st, err := l.LoadFile(ctx, path, ModeAnnotated)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Lines: 5, Stored: 4, Skipped: 1}, st)

	feats, err := repo.Features(ctx, sid)
	require.NoError(t, err)
	require.Len(t, feats, 4)
	assert.Equal(t, "Email address", feats[0].FeatureType)
	assert.Equal(t, letter, feats[0].FileID)
	assert.Equal(t, "33300", feats[0].Offset)
	assert.Equal(t, deleted, feats[1].FileID)

	placeholder, ok, err := repo.FileByPath(ctx, sid, store.UnallocatedPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, placeholder.ID, feats[2].FileID)
	assert.Equal(t, placeholder.ID, feats[3].FileID)
	assert.Equal(t, "context text", feats[2].Context)

	n, err := repo.CountFiles(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "placeholder is created once")
}

func TestLoadDir(t *testing.T) {
	ctx := context.Background()
	repo, sid := newSession(t, "/img.dd", true)

	dir := writeFeatureDir(t, map[string]string{
		"annotated_pii.txt":   "10\t123-45-6789\tctx\n",
		"annotated_email.txt": "20\ta@b.c\tctx\n",
		"annotated_url.txt":   "30\thttp://x\tctx\n",
	})

	l := NewLoader(repo, sid, "", hclog.NewNullLogger())
	st, err := l.LoadDir(ctx, dir, ModeAnnotated, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Stored)

	_, err = l.LoadDir(ctx, filepath.Join(dir, "missing"), ModeAnnotated, SelectOptions{})
	assert.Error(t, err)
}

func TestLoadFileCancelled(t *testing.T) {
	repo, sid := newSession(t, "/img.dd", true)
	dir := writeFeatureDir(t, map[string]string{"annotated_pii.txt": "10\t123-45-6789\tctx\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(repo, sid, "", hclog.NewNullLogger())
	_, err := l.LoadFile(ctx, filepath.Join(dir, "annotated_pii.txt"), ModeAnnotated)
	assert.ErrorIs(t, err, context.Canceled)
}
