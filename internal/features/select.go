package features

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SelectOptions control which optional feature categories are loaded.
type SelectOptions struct {
	IncludeNetwork bool
	IncludeEXIF    bool
}

var alwaysSkipped = []string{"report.xml", "histogram", "url_", "zip", "json", "hex", "_stopped"}

var networkCategories = []string{"url", "domain", "rfc822", "httplogs"}

// Select returns the paths of the feature files in dir that should be loaded,
// sorted by name.
func Select(dir string, opts SelectOptions) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature directory %q: %w", dir, err)
	}

	lightgrep := false
	for _, e := range entries {
		if strings.Contains(e.Name(), "lightgrep") {
			lightgrep = true
			break
		}
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		if !wanted(e.Name(), lightgrep, opts) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func wanted(name string, lightgrep bool, opts SelectOptions) bool {
	if containsAny(name, alwaysSkipped) {
		return false
	}
	if lightgrep && strings.Contains(name, "find") {
		return false
	}
	if !opts.IncludeNetwork && containsAny(name, networkCategories) {
		return false
	}
	if !opts.IncludeEXIF && strings.Contains(name, "exif") {
		return false
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
