package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReportArgs(t *testing.T) {
	tmpDir := t.TempDir()
	doc := filepath.Join(tmpDir, "accession-1.json")
	require.NoError(t, os.WriteFile(doc, []byte("{}"), 0o644))

	tests := []struct {
		name       string
		options    RunOptionsReport
		args       []string
		wantFormat string
		wantErr    string
	}{
		{name: "Default format", args: []string{doc}, wantFormat: FormatSARIF},
		{name: "CSV in upper case", options: RunOptionsReport{Format: "CSV"}, args: []string{doc}, wantFormat: FormatCSV},
		{name: "No document", args: nil, wantErr: "got 0"},
		{name: "Missing document", args: []string{filepath.Join(tmpDir, "nope.json")}, wantErr: "invalid session document"},
		{name: "Unknown format", options: RunOptionsReport{Format: "html"}, args: []string{doc}, wantErr: `unsupported report format "html"`},
		{name: "Output overwrites document", options: RunOptionsReport{OutputPath: doc}, args: []string{doc}, wantErr: "must not overwrite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.options
			err := validateReportArgs(&opts, tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, opts.Format)
			assert.Equal(t, doc, opts.Document)
		})
	}
}
