package annotate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bulk-reviewer/brv/internal/features"
	brerrors "github.com/bulk-reviewer/brv/pkg/shared/errors"
)

// skippedFeatureFiles are scanner outputs that are never annotated.
var skippedFeatureFiles = map[string]bool{
	"tcp.txt": true,
}

// FeatureFiles returns the names of the feature files in a scanner report
// directory, sorted.
func FeatureFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scanner reports %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || filepath.Ext(name) != ".txt" {
			continue
		}
		if strings.Contains(name, "histogram") || skippedFeatureFiles[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// AnnotateDir annotates every feature file of featureDir into outDir, naming
// each output after its input with the annotated_ prefix. Existing outputs
// are never overwritten.
func (a *Annotator) AnnotateDir(ctx context.Context, featureDir, outDir string) (Stats, error) {
	var total Stats
	if a.pair == nil || a.pair.Len() == 0 {
		return total, brerrors.ErrEmptyIndex
	}

	names, err := FeatureFiles(featureDir)
	if err != nil {
		return total, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return total, fmt.Errorf("failed to create annotated feature directory: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		st, err := a.annotateFile(filepath.Join(featureDir, name), filepath.Join(outDir, features.AnnotatedPrefix+name))
		total.add(st)
		if err != nil {
			return total, err
		}
		a.logger.Debug("feature file annotated", "file", name, "total", st.Total, "located", st.Located)
	}
	return total, nil
}

func (a *Annotator) annotateFile(in, out string) (Stats, error) {
	src, err := os.Open(in)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open feature file: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return Stats{}, fmt.Errorf("%w: %s", brerrors.ErrOutputExists, out)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create annotated feature file: %w", err)
	}

	st, err := a.Annotate(src, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close annotated feature file: %w", cerr)
	}
	if err != nil {
		return st, fmt.Errorf("failed to annotate %s: %w", filepath.Base(in), err)
	}
	return st, nil
}
