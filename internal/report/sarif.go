// Package report renders a reviewed session as SARIF or CSV for review tools.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/bulk-reviewer/brv/internal/session"
)

const (
	toolName = "brv"
	toolURI  = "https://github.com/bulk-reviewer/brv"
)

// Options control which features are reported.
type Options struct {
	IncludeDismissed bool
}

// RuleID turns a feature type label into a SARIF rule id.
func RuleID(featureType string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(featureType) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		return "feature"
	}
	return id
}

// WriteSARIF writes one result per feature of doc. Every feature type is a
// rule; dismissed features are reported as notes when included.
func WriteSARIF(w io.Writer, doc *session.Document, opts Options) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	rules := make(map[string]bool)
	for _, f := range doc.Features {
		if f.Dismissed && !opts.IncludeDismissed {
			continue
		}
		id := RuleID(f.FeatureType)
		if !rules[id] {
			run.AddRule(id).
				WithDescription(f.FeatureType).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
			rules[id] = true
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Filepath)),
		)
		result := sarif.NewRuleResult(id).
			WithMessage(sarif.NewTextMessage(message(f))).
			WithLevel(level(f)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	return report.PrettyWrite(w)
}

func message(f session.FeatureEntry) string {
	msg := fmt.Sprintf("%s found at %s: %s", f.FeatureType, f.ForensicPath, f.Feature)
	if f.Note != "" {
		msg += " (" + f.Note + ")"
	}
	return msg
}

func level(f session.FeatureEntry) string {
	if f.Dismissed {
		return "note"
	}
	return "warning"
}
