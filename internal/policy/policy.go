// Package policy applies CUE policy documents to parsed manifests.
//
// A policy directory holds CUE files defining a "policy" struct:
//
//	policy: {
//		ban: ["hacking", "mox*"]
//		floor: {coverage: "3.6", testtools: "1.4.0"}
//		requireMarker: ["qpid-python"]
//		requireAnnotation: ["pymysql", "psycopg2"]
//	}
//
// Package names in policies match against normalized names; ban entries
// may use '*' glob patterns.
package policy

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/pinset-io/pinset/internal/manifest"
	"github.com/pinset-io/pinset/internal/version"
)

// Policy violation codes (P200-P299)
const (
	ErrBanned            = "P201" // package is banned
	ErrBelowFloor        = "P202" // lower bound below the required floor
	ErrNoFloorBound      = "P203" // floor required but declaration has no lower bound
	ErrMissingMarker     = "P204" // declaration must carry an environment marker
	ErrMissingAnnotation = "P205" // declaration must carry an annotation
)

// Policy is a set of rules applied to every declaration in a manifest.
type Policy struct {
	// Ban lists name patterns (path.Match globs against normalized names)
	// that must not appear in the manifest.
	Ban []string `json:"ban"`

	// Floor maps names to the minimum version their declaration must
	// guarantee via a lower bound (>=, ==, or ~=).
	Floor map[string]string `json:"floor"`

	// RequireMarker lists names whose declarations must be conditional.
	RequireMarker []string `json:"requireMarker"`

	// RequireAnnotation lists names whose declarations must carry an
	// inline comment (license note or rationale).
	RequireAnnotation []string `json:"requireAnnotation"`
}

// Violation is one policy finding against a declaration.
type Violation struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("[%s] line %d: %s: %s", v.Code, v.Line, v.Name, v.Message)
}

// Load builds the policy from all CUE files in dir.
func Load(dir string) (*Policy, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("policy directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("policy directory: not a directory: %s", dir)
	}

	cueFiles, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scanning policy directory: %w", err)
	}
	if len(cueFiles) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading policy files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building policy value: %w", err)
	}

	policyVal := value.LookupPath(cue.ParsePath("policy"))
	if !policyVal.Exists() {
		return nil, fmt.Errorf("policy files define no \"policy\" struct")
	}

	var p Policy
	if err := policyVal.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding policy: %w", err)
	}
	return &p, nil
}

// Apply checks every declaration in m against p.
func Apply(p *Policy, m *manifest.Manifest) []Violation {
	var violations []Violation
	for _, line := range m.DeclarationLines() {
		violations = append(violations, applyDeclaration(p, line.Decl, line.Number)...)
	}
	return violations
}

func applyDeclaration(p *Policy, d *manifest.Declaration, lineNum int) []Violation {
	var violations []Violation
	norm := manifest.NormalizeName(d.Name)

	for _, pattern := range p.Ban {
		if matchName(pattern, norm) {
			violations = append(violations, Violation{
				Code:    ErrBanned,
				Name:    d.Name,
				Message: fmt.Sprintf("banned by policy pattern %q", pattern),
				Line:    lineNum,
			})
			break
		}
	}

	for name, floor := range p.Floor {
		if manifest.NormalizeName(name) != norm {
			continue
		}
		if v := checkFloor(d, floor, lineNum); v != nil {
			violations = append(violations, *v)
		}
	}

	for _, name := range p.RequireMarker {
		if manifest.NormalizeName(name) == norm && d.Marker == "" {
			violations = append(violations, Violation{
				Code:    ErrMissingMarker,
				Name:    d.Name,
				Message: "policy requires an environment marker",
				Line:    lineNum,
			})
		}
	}

	for _, name := range p.RequireAnnotation {
		if manifest.NormalizeName(name) == norm && d.Comment == "" {
			violations = append(violations, Violation{
				Code:    ErrMissingAnnotation,
				Name:    d.Name,
				Message: "policy requires an inline annotation",
				Line:    lineNum,
			})
		}
	}
	return violations
}

// checkFloor verifies the declaration's strongest lower bound meets the
// required floor version.
func checkFloor(d *manifest.Declaration, floor string, lineNum int) *Violation {
	want, err := version.Parse(floor)
	if err != nil {
		return &Violation{
			Code:    ErrBelowFloor,
			Name:    d.Name,
			Message: fmt.Sprintf("policy floor %q does not parse: %v", floor, err),
			Line:    lineNum,
		}
	}

	bound, ok := lowerBound(d.Constraints)
	if !ok {
		return &Violation{
			Code:    ErrNoFloorBound,
			Name:    d.Name,
			Message: fmt.Sprintf("policy requires a lower bound of at least %s", floor),
			Line:    lineNum,
		}
	}
	if bound.Compare(want) < 0 {
		return &Violation{
			Code:    ErrBelowFloor,
			Name:    d.Name,
			Message: fmt.Sprintf("lower bound %s is below policy floor %s", bound, floor),
			Line:    lineNum,
		}
	}
	return nil
}

// lowerBound returns the strongest lower bound guaranteed by cs.
func lowerBound(cs []manifest.Constraint) (version.Version, bool) {
	var best version.Version
	found := false
	for _, c := range cs {
		switch c.Op {
		case manifest.OpGreaterEqual, manifest.OpGreater, manifest.OpCompatible, manifest.OpEqual:
		default:
			continue
		}
		lit := strings.TrimSuffix(c.Version, ".*")
		v, err := version.Parse(lit)
		if err != nil {
			continue
		}
		if !found || v.Compare(best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// matchName matches a policy pattern against a normalized name. Patterns
// are normalized too, so "PyMySQL" in a policy matches "pymysql".
func matchName(pattern, norm string) bool {
	if !strings.ContainsAny(pattern, "*?[") {
		return manifest.NormalizeName(pattern) == norm
	}
	ok, err := path.Match(strings.ToLower(pattern), norm)
	return err == nil && ok
}
