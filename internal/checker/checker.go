// Package checker validates parsed manifests structurally: names, version
// constraints, environment markers, duplicates, and unsatisfiable
// constraint sets. The checker never rewrites or reorders anything - the
// manifest's line order carries installation semantics downstream, so all
// findings are reported in place.
package checker

import (
	"fmt"

	"github.com/pinset-io/pinset/internal/manifest"
	"github.com/pinset-io/pinset/internal/marker"
	"github.com/pinset-io/pinset/internal/version"
)

// Validation error codes (M100-M199)
const (
	ErrParse          = "M100" // line did not parse at all
	ErrEmptyName      = "M101" // package name is empty
	ErrInvalidName    = "M102" // package name violates the name grammar
	ErrBadConstraint  = "M103" // version constraint does not parse
	ErrBadMarker      = "M104" // environment marker does not parse
	ErrDuplicateName  = "M105" // duplicate declaration after normalization
	ErrUnsatisfiable  = "M106" // constraints admit no version
	WarnUnknownMarker = "M110" // marker references an unknown variable
)

// ValidationError represents a manifest validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
	Warning bool   `json:"warning,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Check validates a parsed manifest. Returns all findings (does not
// fail-fast); warnings carry Warning=true and never make a manifest
// invalid on their own.
func Check(m *manifest.Manifest) []ValidationError {
	var errs []ValidationError

	// normalized name -> line of first occurrence, for duplicate detection
	seen := map[string]int{}

	for _, line := range m.DeclarationLines() {
		d := line.Decl
		errs = append(errs, checkDeclaration(d, line.Number)...)

		if d.Name == "" || !manifest.ValidName(d.Name) {
			continue
		}
		norm := manifest.NormalizeName(d.Name)
		if first, dup := seen[norm]; dup {
			errs = append(errs, ValidationError{
				Field:   d.Name,
				Message: fmt.Sprintf("duplicate declaration (first seen on line %d)", first),
				Code:    ErrDuplicateName,
				Line:    line.Number,
			})
			continue
		}
		seen[norm] = line.Number
	}
	return errs
}

func checkDeclaration(d *manifest.Declaration, lineNum int) []ValidationError {
	var errs []ValidationError

	switch {
	case d.Name == "":
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "package name is empty",
			Code:    ErrEmptyName,
			Line:    lineNum,
		})
	case !manifest.ValidName(d.Name):
		errs = append(errs, ValidationError{
			Field:   d.Name,
			Message: "package name must start and end with a letter or digit",
			Code:    ErrInvalidName,
			Line:    lineNum,
		})
	}

	for _, c := range d.Constraints {
		if err := checkConstraint(c); err != nil {
			errs = append(errs, ValidationError{
				Field:   d.Name,
				Message: fmt.Sprintf("constraint %s: %v", c, err),
				Code:    ErrBadConstraint,
				Line:    lineNum,
			})
		}
	}

	if bad, reason := version.Unsatisfiable(d.Constraints); bad {
		errs = append(errs, ValidationError{
			Field:   d.Name,
			Message: reason,
			Code:    ErrUnsatisfiable,
			Line:    lineNum,
		})
	}

	if d.Marker != "" {
		expr, err := marker.Parse(d.Marker)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   d.Name,
				Message: err.Error(),
				Code:    ErrBadMarker,
				Line:    lineNum,
			})
		} else {
			for _, w := range marker.Validate(expr).Warnings {
				errs = append(errs, ValidationError{
					Field:   d.Name,
					Message: w,
					Code:    WarnUnknownMarker,
					Line:    lineNum,
					Warning: true,
				})
			}
		}
	}
	return errs
}

// checkConstraint verifies that a constraint's version literal parses
// under the operator's grammar.
func checkConstraint(c manifest.Constraint) error {
	if !c.Op.Valid() {
		return fmt.Errorf("unknown operator %q", c.Op)
	}
	// "===" compares literal strings; any non-empty literal is fine.
	if c.Op == manifest.OpArbitraryEqual {
		return nil
	}
	lit := c.Version
	if prefix, ok := cutWildcard(lit); ok {
		if c.Op != manifest.OpEqual && c.Op != manifest.OpNotEqual {
			return fmt.Errorf("wildcard is only valid with == or !=")
		}
		lit = prefix
	}
	_, err := version.Parse(lit)
	return err
}

func cutWildcard(lit string) (string, bool) {
	if len(lit) > 2 && lit[len(lit)-2:] == ".*" {
		return lit[:len(lit)-2], true
	}
	return "", false
}

// Errors reports whether any finding is error-severity.
func Errors(findings []ValidationError) bool {
	for _, f := range findings {
		if !f.Warning {
			return true
		}
	}
	return false
}
