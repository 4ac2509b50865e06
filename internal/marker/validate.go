package marker

import "fmt"

// ValidationResult contains portability analysis of a marker expression.
type ValidationResult struct {
	// IsPortable indicates the expression only uses known variables and
	// will evaluate meaningfully in any environment this package models.
	IsPortable bool

	// Warnings lists unknown variables or degenerate constructs. Empty
	// when IsPortable is true.
	Warnings []string
}

// Validate checks an expression for unknown variables.
//
// Unknown variables are warnings, not errors: the manifest's consumer may
// understand variables this package does not, and rejecting the file would
// be worse than evaluating the comparison as false.
//
// Validate is a pure function with no side effects.
func Validate(e Expr) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(e)
	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(e Expr) {
	switch n := e.(type) {
	case Comparison:
		if !knownVar(n.Var) {
			v.addWarning("unknown marker variable %q", n.Var)
		}
	case And:
		v.validate(n.Left)
		v.validate(n.Right)
	case Or:
		v.validate(n.Left)
		v.validate(n.Right)
	case nil:
		v.addWarning("nil marker expression")
	default:
		v.addWarning("unsupported marker expression type %T", e)
	}
}

func knownVar(name string) bool {
	for _, k := range KnownVars {
		if name == k {
			return true
		}
	}
	return false
}
