package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		epoch   int
		release []int
		pre     *Pre
	}{
		{"1.1.2", 0, []int{1, 1, 2}, nil},
		{"0.0.18", 0, []int{0, 0, 18}, nil},
		{"2.7", 0, []int{2, 7}, nil},
		{"1.3b1", 0, []int{1, 3}, &Pre{"b", 1}},
		{"1.3.0rc2", 0, []int{1, 3, 0}, &Pre{"rc", 2}},
		{"1.3.0-rc2", 0, []int{1, 3, 0}, &Pre{"rc", 2}},
		{"1.0a1", 0, []int{1, 0}, &Pre{"a", 1}},
		{"2.0c1", 0, []int{2, 0}, &Pre{"rc", 1}}, // "c" normalizes to "rc"
		{"1!2.0", 1, []int{2, 0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.epoch, v.Epoch)
			assert.Equal(t, tt.release, v.Release)
			assert.Equal(t, tt.pre, v.Pre)
			assert.Equal(t, tt.in, v.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{"", "abc", "1..2", "1.x", "-1.0", "1.0.dev1", "!1.0", "x!1.0"}
	for _, in := range bad {
		_, err := Parse(in)
		assert.Error(t, err, "expected %q to fail", in)
	}
}

func TestParseCached(t *testing.T) {
	a := MustParse("9.8.7")
	b := MustParse("9.8.7")
	assert.Equal(t, a, b)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},  // zero padding
		{"1.2", "1.10", -1},  // numeric, not lexical
		{"1.3b1", "1.3", -1}, // pre-release before final
		{"1.3a1", "1.3b1", -1},
		{"1.3b1", "1.3rc1", -1},
		{"1.3rc1", "1.3rc2", -1},
		{"1.2.0", "1.2.0", 0},
		{"2.0", "1!0.1", -1}, // epoch dominates
		{"0.10.0", "0.11", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Compare(MustParse(tt.b)))
			assert.Equal(t, -tt.want, MustParse(tt.b).Compare(MustParse(tt.a)))
		})
	}
}
