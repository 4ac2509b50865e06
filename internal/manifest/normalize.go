package manifest

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// nameRE is the accepted project name grammar: starts and ends with an
// alphanumeric, with '.', '-', '_' allowed in between.
var nameRE = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// separatorRuns collapses runs of '-', '_', '.' during normalization.
var separatorRuns = regexp.MustCompile(`[-_.]+`)

// ValidName reports whether name conforms to the project name grammar.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// NormalizeName returns the canonical comparison form of a package name:
// NFC-normalized, lowercased, with every run of '-', '_', '.' collapsed to
// a single '-'. "PyMySQL" and "py_mysql" normalize identically.
//
// Normalization is used for equality checks (duplicate detection, diffing,
// policy matching). Rendering always keeps the author's spelling.
func NormalizeName(name string) string {
	s := norm.NFC.String(name)
	s = strings.ToLower(s)
	return separatorRuns.ReplaceAllString(s, "-")
}
