// Package version parses and compares package version literals under a
// subset of the ecosystem's version grammar: optional epoch ("N!"),
// dotted numeric release segments, and an optional pre-release tag
// ("a", "b", "c"/"rc" plus a number, e.g. "1.3b1").
//
// Ordering rules:
//   - Epochs dominate: 1!1.0 > 2.0
//   - Release segments compare numerically, padded with zeros, so
//     1.0 == 1.0.0 and 1.10 > 1.9
//   - A pre-release sorts before its final: 1.3b1 < 1.3
//   - Pre-release phases order a < b < rc, then by number
//
// Post-release and local version segments are out of scope; literals
// using them are parse errors.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed version literal.
type Version struct {
	Epoch   int    `json:"epoch"`
	Release []int  `json:"release"`
	Pre     *Pre   `json:"pre,omitempty"`
	literal string // original text, preserved for String
}

// Pre is a pre-release tag. Phase is normalized: "c" parses as "rc".
type Pre struct {
	Phase  string `json:"phase"` // "a", "b", or "rc"
	Number int    `json:"number"`
}

// phaseRank orders pre-release phases.
var phaseRank = map[string]int{"a": 0, "b": 1, "rc": 2}

// Parse parses a version literal. Results are cached; see cache.go.
func Parse(literal string) (Version, error) {
	if v, ok := cacheGet(literal); ok {
		return v, nil
	}
	v, err := parse(literal)
	if err != nil {
		return Version{}, err
	}
	cachePut(literal, v)
	return v, nil
}

// MustParse parses a literal and panics on error. Test helper.
func MustParse(literal string) Version {
	v, err := Parse(literal)
	if err != nil {
		panic(err)
	}
	return v
}

func parse(literal string) (Version, error) {
	s := strings.TrimSpace(literal)
	if s == "" {
		return Version{}, fmt.Errorf("empty version literal")
	}
	v := Version{literal: literal}

	// Optional epoch prefix "N!".
	if i := strings.IndexByte(s, '!'); i >= 0 {
		epoch, err := strconv.Atoi(s[:i])
		if err != nil || epoch < 0 {
			return Version{}, fmt.Errorf("invalid epoch in %q", literal)
		}
		v.Epoch = epoch
		s = s[i+1:]
	}

	// Split off the pre-release tag, if any. The tag may be attached to
	// the last release segment ("1.3b1") or separated by '.' or '-'
	// ("1.3.0-rc2").
	release, pre, err := splitPre(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", literal, err)
	}
	v.Pre = pre

	for _, seg := range strings.Split(release, ".") {
		if seg == "" {
			return Version{}, fmt.Errorf("invalid version %q: empty release segment", literal)
		}
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: release segment %q", literal, seg)
		}
		v.Release = append(v.Release, n)
	}
	return v, nil
}

// splitPre separates "1.3b1" into ("1.3", {b,1}). Returns the full input
// and a nil Pre for final releases.
func splitPre(s string) (string, *Pre, error) {
	i := strings.IndexFunc(s, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	})
	if i < 0 {
		return s, nil, nil
	}

	release := strings.TrimRight(s[:i], ".-")
	tag := strings.TrimLeft(s[i:], ".-")
	if release == "" {
		return "", nil, fmt.Errorf("missing release segments")
	}

	phase := strings.ToLower(tag)
	num := ""
	if j := strings.IndexFunc(phase, func(r rune) bool { return r >= '0' && r <= '9' }); j >= 0 {
		num = phase[j:]
		phase = phase[:j]
	}
	switch phase {
	case "a", "alpha":
		phase = "a"
	case "b", "beta":
		phase = "b"
	case "c", "rc":
		phase = "rc"
	default:
		return "", nil, fmt.Errorf("unsupported tag %q", tag)
	}

	n := 0
	if num != "" {
		var err error
		n, err = strconv.Atoi(num)
		if err != nil {
			return "", nil, fmt.Errorf("invalid tag number in %q", tag)
		}
	}
	return release, &Pre{Phase: phase, Number: n}, nil
}

// String returns the original literal.
func (v Version) String() string {
	return v.literal
}

// Compare returns -1, 0, or 1 ordering v against o.
func (v Version) Compare(o Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}
	n := len(v.Release)
	if len(o.Release) > n {
		n = len(o.Release)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.Release) {
			a = v.Release[i]
		}
		if i < len(o.Release) {
			b = o.Release[i]
		}
		if a != b {
			return cmpInt(a, b)
		}
	}

	// Equal releases: a final release outranks any pre-release.
	switch {
	case v.Pre == nil && o.Pre == nil:
		return 0
	case v.Pre == nil:
		return 1
	case o.Pre == nil:
		return -1
	}
	if phaseRank[v.Pre.Phase] != phaseRank[o.Pre.Phase] {
		return cmpInt(phaseRank[v.Pre.Phase], phaseRank[o.Pre.Phase])
	}
	return cmpInt(v.Pre.Number, o.Pre.Number)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
