// Package features reads scanner feature files into the session store.
package features

import (
	"path/filepath"
	"strings"
)

// AnnotatedPrefix is prepended to the names of annotated feature files.
const AnnotatedPrefix = "annotated_"

var labels = map[string]string{
	"pii.txt":       "Social Security Number (USA)",
	"sin.txt":       "Social Insurance Number (Canada)",
	"ccn.txt":       "Credit card number",
	"telephone.txt": "Phone number",
	"email.txt":     "Email address",
	"find.txt":      "Regular expression",
	"lightgrep.txt": "Regular expression",
	"url.txt":       "URL",
	"domain.txt":    "Domain",
	"rfc822.txt":    "Email/HTTP header (RFC822)",
	"httplogs.txt":  "HTTP log",
	"gps.txt":       "GPS data",
	"exif.txt":      "EXIF metadata",
	"vcard.txt":     "vCard (Virtual Contact File)",
}

// Label returns the human readable feature type for a feature file.
// Unknown files are labelled with their base name.
func Label(featureFile string) string {
	name := strings.TrimPrefix(filepath.Base(featureFile), AnnotatedPrefix)
	if l, ok := labels[name]; ok {
		return l
	}
	return name
}
