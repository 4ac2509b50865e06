package version

import (
	"fmt"
	"strings"

	"github.com/pinset-io/pinset/internal/manifest"
)

// Match reports whether v satisfies a single constraint.
//
// Operator semantics:
//   - "=="  version equality; a trailing ".*" matches any version whose
//     release starts with the given prefix (1.2.* matches 1.2.9)
//   - "===" literal string equality, no version semantics
//   - "!="  negation of "==", including the ".*" prefix form
//   - "~="  compatible release: >= V and == V' where V' drops the last
//     release segment (~=1.4.2 means >=1.4.2, ==1.4.*)
//   - "<", "<=", ">", ">=" ordering per Compare
func Match(v Version, c manifest.Constraint) (bool, error) {
	switch c.Op {
	case manifest.OpArbitraryEqual:
		return v.String() == c.Version, nil
	case manifest.OpEqual:
		return matchEqual(v, c.Version)
	case manifest.OpNotEqual:
		ok, err := matchEqual(v, c.Version)
		return !ok, err
	case manifest.OpCompatible:
		return matchCompatible(v, c.Version)
	case manifest.OpLess, manifest.OpLessEqual, manifest.OpGreater, manifest.OpGreaterEqual:
		w, err := Parse(c.Version)
		if err != nil {
			return false, err
		}
		cmp := v.Compare(w)
		switch c.Op {
		case manifest.OpLess:
			return cmp < 0, nil
		case manifest.OpLessEqual:
			return cmp <= 0, nil
		case manifest.OpGreater:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return false, fmt.Errorf("unknown operator %q", c.Op)
	}
}

// Satisfies reports whether v satisfies every constraint in cs.
func Satisfies(v Version, cs []manifest.Constraint) (bool, error) {
	for _, c := range cs {
		ok, err := Match(v, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchEqual(v Version, spec string) (bool, error) {
	if prefix, ok := strings.CutSuffix(spec, ".*"); ok {
		w, err := Parse(prefix)
		if err != nil {
			return false, err
		}
		return hasReleasePrefix(v, w), nil
	}
	w, err := Parse(spec)
	if err != nil {
		return false, err
	}
	return v.Compare(w) == 0, nil
}

func matchCompatible(v Version, spec string) (bool, error) {
	w, err := Parse(spec)
	if err != nil {
		return false, err
	}
	if len(w.Release) < 2 {
		return false, fmt.Errorf("~=%s: compatible release needs at least two release segments", spec)
	}
	if v.Compare(w) < 0 {
		return false, nil
	}
	prefix := w
	prefix.Release = w.Release[:len(w.Release)-1]
	return hasReleasePrefix(v, prefix), nil
}

// hasReleasePrefix reports whether v's epoch and leading release segments
// equal w's (zero-padding v as needed).
func hasReleasePrefix(v, w Version) bool {
	if v.Epoch != w.Epoch {
		return false
	}
	for i, seg := range w.Release {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != seg {
			return false
		}
	}
	return true
}

// Unsatisfiable reports whether no version can satisfy cs, with a short
// reason. The check is conservative: it only reports conflicts it can
// prove (an exact pin failing a sibling constraint, or a lower bound above
// an upper bound) and never flags a satisfiable set.
func Unsatisfiable(cs []manifest.Constraint) (bool, string) {
	// An exact pin must satisfy every sibling constraint.
	for _, pin := range cs {
		if pin.Op != manifest.OpEqual || strings.HasSuffix(pin.Version, ".*") {
			continue
		}
		v, err := Parse(pin.Version)
		if err != nil {
			continue
		}
		for _, c := range cs {
			if c == pin {
				continue
			}
			ok, err := Match(v, c)
			if err == nil && !ok {
				return true, fmt.Sprintf("pin ==%s conflicts with %s", pin.Version, c)
			}
		}
	}

	// Every lower bound must sit below every upper bound.
	for _, lo := range cs {
		if lo.Op != manifest.OpGreater && lo.Op != manifest.OpGreaterEqual {
			continue
		}
		lv, err := Parse(lo.Version)
		if err != nil {
			continue
		}
		for _, hi := range cs {
			if hi.Op != manifest.OpLess && hi.Op != manifest.OpLessEqual {
				continue
			}
			hv, err := Parse(hi.Version)
			if err != nil {
				continue
			}
			cmp := lv.Compare(hv)
			strict := lo.Op == manifest.OpGreater || hi.Op == manifest.OpLess
			if cmp > 0 || (cmp == 0 && strict) {
				return true, fmt.Sprintf("lower bound %s conflicts with upper bound %s", lo, hi)
			}
		}
	}
	return false, ""
}
