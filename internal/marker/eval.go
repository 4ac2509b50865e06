package marker

import (
	"fmt"
	"strings"

	"github.com/pinset-io/pinset/internal/version"
)

// Eval resolves an expression against an environment.
//
// Semantics:
//   - A comparison against an unset variable is false. "not in" against an
//     unset variable is also false: an unknown environment satisfies no
//     predicate, so conditional declarations drop out rather than apply.
//   - Variables in versionVars compare under the version grammar when both
//     operands parse as versions, falling back to lexical comparison.
//   - "in"/"not in" are substring tests.
func Eval(e Expr, env Env) (bool, error) {
	switch n := e.(type) {
	case Comparison:
		return evalComparison(n, env)
	case And:
		l, err := Eval(n.Left, env)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return Eval(n.Right, env)
	case Or:
		l, err := Eval(n.Left, env)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return Eval(n.Right, env)
	case nil:
		return false, fmt.Errorf("nil marker expression")
	default:
		return false, fmt.Errorf("unsupported marker expression type %T", e)
	}
}

func evalComparison(c Comparison, env Env) (bool, error) {
	got, ok := env[c.Var]
	if !ok {
		return false, nil
	}

	switch c.Op {
	case CmpIn:
		if c.Reversed {
			// 'lit' in var
			return strings.Contains(got, c.Value), nil
		}
		return strings.Contains(c.Value, got), nil
	case CmpNotIn:
		if c.Reversed {
			return !strings.Contains(got, c.Value), nil
		}
		return !strings.Contains(c.Value, got), nil
	}

	cmp := compare(c.Var, got, c.Value)
	if c.Reversed {
		cmp = -cmp
	}
	switch c.Op {
	case CmpEqual:
		return cmp == 0, nil
	case CmpNotEqual:
		return cmp != 0, nil
	case CmpLess:
		return cmp < 0, nil
	case CmpLessEqual:
		return cmp <= 0, nil
	case CmpGreater:
		return cmp > 0, nil
	case CmpGreaterEqual:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unknown comparison operator %q", c.Op)
	}
}

// compare orders the variable's value against the literal, using version
// ordering for version-valued variables when both sides parse.
func compare(varName, got, want string) int {
	if versionVars[varName] {
		gv, gerr := version.Parse(got)
		wv, werr := version.Parse(want)
		if gerr == nil && werr == nil {
			return gv.Compare(wv)
		}
	}
	return strings.Compare(got, want)
}
