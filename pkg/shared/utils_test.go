package shared

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFlags(t *testing.T) {
	newSet := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Bool("flat", false, "")
		fs.String("format", "sarif", "")
		return fs
	}

	fs := newSet()
	require.NoError(t, fs.Parse([]string{"a", "b"}))
	assert.False(t, HasFlags(fs))

	fs = newSet()
	require.NoError(t, fs.Parse([]string{"--flat", "a"}))
	assert.True(t, HasFlags(fs))
}

func TestPrintResultAsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintResultAsJSON(&buf, Versions{Version: "1.0.0", GolangVersion: "go1.24", BuildTime: "<now>"}))
	assert.Equal(t, "{\n  \"version\": \"1.0.0\",\n  \"golang_version\": \"go1.24\",\n  \"build_time\": \"<now>\"\n}\n", buf.String())
}
