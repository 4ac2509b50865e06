package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinset-io/pinset/internal/manifest"
)

func c(op manifest.ConstraintOp, v string) manifest.Constraint {
	return manifest.Constraint{Op: op, Version: v}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint manifest.Constraint
		want       bool
	}{
		{"ge satisfied", "0.10.0", c(manifest.OpGreaterEqual, "0.10.0"), true},
		{"ge boundary below", "0.9.9", c(manifest.OpGreaterEqual, "0.10.0"), false},
		{"lt satisfied", "0.10.5", c(manifest.OpLess, "0.11"), true},
		{"lt excluded at bound", "0.11", c(manifest.OpLess, "0.11"), false},
		{"le at bound", "0.11", c(manifest.OpLessEqual, "0.11"), true},
		{"gt at bound", "0.11", c(manifest.OpGreater, "0.11"), false},
		{"ne excludes exact", "1.2.0", c(manifest.OpNotEqual, "1.2.0"), false},
		{"ne allows others", "1.2.1", c(manifest.OpNotEqual, "1.2.0"), true},
		{"ne excludes prerelease literal", "1.3b1", c(manifest.OpNotEqual, "1.3b1"), false},
		{"eq zero pad", "1.0", c(manifest.OpEqual, "1.0.0"), true},
		{"eq wildcard match", "1.2.9", c(manifest.OpEqual, "1.2.*"), true},
		{"eq wildcard miss", "1.3.0", c(manifest.OpEqual, "1.2.*"), false},
		{"ne wildcard", "1.2.9", c(manifest.OpNotEqual, "1.2.*"), false},
		{"arbitrary eq literal", "1.0", c(manifest.OpArbitraryEqual, "1.0"), true},
		{"arbitrary eq mismatch", "1.0", c(manifest.OpArbitraryEqual, "1.0.0"), false},
		{"compatible within series", "1.4.7", c(manifest.OpCompatible, "1.4.2"), true},
		{"compatible below", "1.4.1", c(manifest.OpCompatible, "1.4.2"), false},
		{"compatible next series", "1.5.0", c(manifest.OpCompatible, "1.4.2"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(MustParse(tt.version), tt.constraint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchErrors(t *testing.T) {
	_, err := Match(MustParse("1.0"), c(manifest.OpGreaterEqual, "nope"))
	assert.Error(t, err)

	_, err = Match(MustParse("1.0"), c(manifest.OpCompatible, "2"))
	assert.Error(t, err, "~= needs at least two release segments")

	_, err = Match(MustParse("1.0"), manifest.Constraint{Op: "<>", Version: "1.0"})
	assert.Error(t, err)
}

// A four-constraint exclusion set: versions must land
// inside the admitted window.
func TestSatisfiesSphinxWindow(t *testing.T) {
	cs := []manifest.Constraint{
		c(manifest.OpNotEqual, "1.2.0"),
		c(manifest.OpNotEqual, "1.3b1"),
		c(manifest.OpLess, "1.3"),
		c(manifest.OpGreaterEqual, "1.1.2"),
	}

	tests := []struct {
		version string
		want    bool
	}{
		{"1.1.2", true},
		{"1.2.1", true},
		{"1.2.0", false}, // excluded exactly
		{"1.3b1", false}, // excluded exactly
		{"1.3", false},   // upper bound
		{"1.1.1", false}, // below lower bound
		{"1.2.9", true},
	}
	for _, tt := range tests {
		got, err := Satisfies(MustParse(tt.version), cs)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "version %s", tt.version)
	}
}

func TestUnsatisfiable(t *testing.T) {
	tests := []struct {
		name string
		cs   []manifest.Constraint
		want bool
	}{
		{
			"hacking window is fine",
			[]manifest.Constraint{c(manifest.OpLess, "0.11"), c(manifest.OpGreaterEqual, "0.10.0")},
			false,
		},
		{
			"lower above upper",
			[]manifest.Constraint{c(manifest.OpGreaterEqual, "2.0"), c(manifest.OpLess, "1.0")},
			true,
		},
		{
			"equal bounds both strict",
			[]manifest.Constraint{c(manifest.OpGreater, "1.0"), c(manifest.OpLess, "1.0")},
			true,
		},
		{
			"equal bounds inclusive",
			[]manifest.Constraint{c(manifest.OpGreaterEqual, "1.0"), c(manifest.OpLessEqual, "1.0")},
			false,
		},
		{
			"pin outside window",
			[]manifest.Constraint{c(manifest.OpEqual, "1.0"), c(manifest.OpGreater, "2.0")},
			true,
		},
		{
			"pin inside window",
			[]manifest.Constraint{c(manifest.OpEqual, "1.5"), c(manifest.OpGreater, "1.0"), c(manifest.OpLess, "2.0")},
			false,
		},
		{
			"pin against exclusion",
			[]manifest.Constraint{c(manifest.OpEqual, "1.2.0"), c(manifest.OpNotEqual, "1.2.0")},
			true,
		},
		{
			"empty set",
			nil,
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Unsatisfiable(tt.cs)
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
