package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExportArgs(t *testing.T) {
	tmpDir := t.TempDir()
	doc := filepath.Join(tmpDir, "accession-1.json")
	require.NoError(t, os.WriteFile(doc, []byte("{}"), 0o644))
	existingDir := filepath.Join(tmpDir, "existing")
	require.NoError(t, os.Mkdir(existingDir, 0o755))

	tests := []struct {
		name    string
		options RunOptionsExport
		args    []string
		wantErr string
	}{
		{
			name: "Valid export to a new directory",
			args: []string{doc, filepath.Join(tmpDir, "cleared")},
		},
		{
			name:    "Valid private flat export to an existing directory",
			options: RunOptionsExport{Private: true, Flat: true},
			args:    []string{doc, existingDir},
		},
		{
			name:    "Valid tar exclude file",
			options: RunOptionsExport{TarExclude: true},
			args:    []string{doc, filepath.Join(tmpDir, "exclude.txt")},
		},
		{
			name:    "Wrong number of arguments",
			args:    []string{doc},
			wantErr: "expected SESSION_JSON and DESTINATION arguments, got 1",
		},
		{
			name:    "Missing session document",
			args:    []string{filepath.Join(tmpDir, "missing.json"), existingDir},
			wantErr: "invalid session document",
		},
		{
			name:    "Destination is a file",
			args:    []string{doc, doc},
			wantErr: "is not a directory",
		},
		{
			name:    "Tar exclude file is a directory",
			options: RunOptionsExport{TarExclude: true},
			args:    []string{doc, existingDir},
			wantErr: "is a directory",
		},
		{
			name:    "Tar with flat",
			options: RunOptionsExport{TarExclude: true, Flat: true},
			args:    []string{doc, filepath.Join(tmpDir, "exclude.txt")},
			wantErr: "cannot be used together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.options
			err := validateExportArgs(&opts, tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, doc, opts.Document)
			assert.True(t, filepath.IsAbs(opts.Destination))
		})
	}
}
