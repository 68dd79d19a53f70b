package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulk-reviewer/brv/internal/session"
)

func TestExporterOptions(t *testing.T) {
	opts := &RunOptionsExport{Destination: "/out", Private: true, TarExclude: true, RestoreDates: true}

	dir := exporterOptions(opts, &session.Document{DiskImage: false})
	assert.True(t, dir.TarExcludeOnly)
	assert.False(t, dir.SourceIsImage)
	assert.True(t, dir.Private)
	assert.Equal(t, "/out", dir.Destination)

	img := exporterOptions(opts, &session.Document{DiskImage: true})
	assert.False(t, img.TarExcludeOnly)
	assert.True(t, img.SourceIsImage)
	assert.True(t, img.RestoreDates)
}

func TestRemoveDocument(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(doc, []byte("{}"), 0o644))

	removeDocument(hclog.NewNullLogger(), &RunOptionsExport{Document: doc, KeepJSON: true})
	_, err := os.Stat(doc)
	require.NoError(t, err)

	removeDocument(hclog.NewNullLogger(), &RunOptionsExport{Document: doc})
	_, err = os.Stat(doc)
	assert.True(t, os.IsNotExist(err))

	// a second removal only warns
	removeDocument(hclog.NewNullLogger(), &RunOptionsExport{Document: doc})
}
