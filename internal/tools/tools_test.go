package tools

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkExtractorArgs(t *testing.T) {
	be := BulkExtractor{Command{Path: "bulk_extractor"}}

	tests := []struct {
		name string
		req  ScanRequest
		want []string
	}{
		{
			name: "directory",
			req:  ScanRequest{Source: "/src", OutputDir: "/out/be", SSNMode: 1},
			want: []string{"-o", "/out/be",
				"-x", "windirs", "-x", "winpe", "-x", "winlnk", "-x", "winprefetch",
				"-S", "ssn_mode=1", "-S", "jpeg_carve_mode=0", "-R", "/src"},
		},
		{
			name: "disk image with regex and stoplists",
			req: ScanRequest{Source: "/img.dd", OutputDir: "/out/be", DiskImage: true, SSNMode: 2,
				RegexFile: "/rx.txt", Stoplists: []string{"/stop/a.txt", "/stop/b.txt"}},
			want: []string{"-F", "/rx.txt", "-o", "/out/be", "-w", "/stop/a.txt", "-w", "/stop/b.txt",
				"-x", "windirs", "-x", "winpe", "-x", "winlnk", "-x", "winprefetch",
				"-S", "ssn_mode=2", "-S", "jpeg_carve_mode=0", "/img.dd"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, be.Args(tt.req))
		})
	}
}

func TestFiwalkArgs(t *testing.T) {
	assert.Equal(t, []string{"-X", "/out/dfxml.xml", "/img.dd"}, Fiwalk{}.Args("/img.dd", "/out/dfxml.xml"))
}

func TestStoplistFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	got, err := StoplistFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, got)

	got, err = StoplistFiles("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = StoplistFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestIcatArgs(t *testing.T) {
	tests := []struct {
		name     string
		sector   int64
		offset   string
		inode    string
		want     []string
		wantErrs bool
	}{
		{name: "partition offset in bytes", offset: "32256", inode: "12", want: []string{"-o", "63", "/img.dd", "12"}},
		{name: "no offset", offset: "", inode: "5", want: []string{"-o", "0", "/img.dd", "5"}},
		{name: "custom sector size", sector: 4096, offset: "1048576", inode: "7", want: []string{"-o", "256", "/img.dd", "7"}},
		{name: "unaligned offset", offset: "100", inode: "5", wantErrs: true},
		{name: "bad offset", offset: "abc", inode: "5", wantErrs: true},
		{name: "bad inode", offset: "0", inode: "12-128-1", wantErrs: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Icat{SectorSize: tt.sector}.Args("/img.dd", tt.offset, tt.inode)
			if tt.wantErrs {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIcatCarveStreamsStdout(t *testing.T) {
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}
	var out bytes.Buffer
	err = Icat{Command: Command{Path: echo}}.Carve(context.Background(), "/img.dd", "512", "9", &out)
	require.NoError(t, err)
	assert.Equal(t, "-o 1 /img.dd 9\n", out.String())
}

func TestCommandFailureIncludesStderr(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	c := Command{Path: sh}
	err = c.run(context.Background(), []string{"-c", "echo boom >&2; exit 3"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCommandTimeout(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	c := Command{Path: sleep, Timeout: 50 * time.Millisecond}
	err = c.run(context.Background(), []string{"5"}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "interrupted"), "got %v", err)
}

func TestTailBuffer(t *testing.T) {
	tb := &tailBuffer{limit: 4}
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defg"))
	assert.Equal(t, "defg", tb.String())
}

func TestCommandVersion(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"tool 1.2.3\"\necho second line\n"), 0o755))

	assert.Equal(t, "tool 1.2.3", Command{Path: script}.Version(context.Background()))
	assert.Equal(t, "unknown", Command{Path: filepath.Join(t.TempDir(), "missing")}.Version(context.Background()))
}
