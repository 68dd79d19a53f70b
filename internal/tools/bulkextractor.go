package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// scannersDisabled are bulk_extractor scanners that only add noise to PII reviews.
var scannersDisabled = []string{"windirs", "winpe", "winlnk", "winprefetch"}

// ScanRequest describes one bulk_extractor run.
type ScanRequest struct {
	Source    string
	OutputDir string
	DiskImage bool
	SSNMode   int
	RegexFile string
	Stoplists []string
}

// BulkExtractor runs the bulk_extractor feature scanner.
type BulkExtractor struct {
	Command
}

// Args returns the argument list for req.
func (b BulkExtractor) Args(req ScanRequest) []string {
	var args []string
	if req.RegexFile != "" {
		args = append(args, "-F", req.RegexFile)
	}
	args = append(args, "-o", req.OutputDir)
	for _, s := range req.Stoplists {
		args = append(args, "-w", s)
	}
	for _, s := range scannersDisabled {
		args = append(args, "-x", s)
	}
	args = append(args,
		"-S", "ssn_mode="+strconv.Itoa(req.SSNMode),
		"-S", "jpeg_carve_mode=0",
	)
	if !req.DiskImage {
		args = append(args, "-R")
	}
	return append(args, req.Source)
}

// Run scans req.Source. Scanner output is discarded; failures carry stderr.
func (b BulkExtractor) Run(ctx context.Context, req ScanRequest) error {
	return b.run(ctx, b.Args(req), io.Discard)
}

// StoplistFiles returns the .txt files of dir, sorted.
func StoplistFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list stoplists %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".txt") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
