package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinset-io/pinset/internal/manifest"
)

const testManifest = "testdata/test-requirements.txt"

func TestParseLineBlankAndComment(t *testing.T) {
	line, err := ParseLine("", 1)
	require.NoError(t, err)
	assert.Equal(t, manifest.LineBlank, line.Kind)

	line, err = ParseLine("   \t", 2)
	require.NoError(t, err)
	assert.Equal(t, manifest.LineBlank, line.Kind)

	line, err = ParseLine("# The order of packages is significant", 3)
	require.NoError(t, err)
	assert.Equal(t, manifest.LineComment, line.Kind)
	assert.Equal(t, "# The order of packages is significant", line.Raw)
}

// A name plus exactly four constraints, kept in written order.
func TestParseLineSphinx(t *testing.T) {
	line, err := ParseLine("sphinx!=1.2.0,!=1.3b1,<1.3,>=1.1.2", 1)
	require.NoError(t, err)
	require.Equal(t, manifest.LineDeclaration, line.Kind)
	require.NotNil(t, line.Decl)

	d := line.Decl
	assert.Equal(t, "sphinx", d.Name)
	require.Len(t, d.Constraints, 4)
	assert.Equal(t, manifest.Constraint{Op: manifest.OpNotEqual, Version: "1.2.0"}, d.Constraints[0])
	assert.Equal(t, manifest.Constraint{Op: manifest.OpNotEqual, Version: "1.3b1"}, d.Constraints[1])
	assert.Equal(t, manifest.Constraint{Op: manifest.OpLess, Version: "1.3"}, d.Constraints[2])
	assert.Equal(t, manifest.Constraint{Op: manifest.OpGreaterEqual, Version: "1.1.2"}, d.Constraints[3])
}

// A bare name with an environment marker and no constraints.
func TestParseLineMarker(t *testing.T) {
	line, err := ParseLine("qpid-python;python_version=='2.7'", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)

	d := line.Decl
	assert.Equal(t, "qpid-python", d.Name)
	assert.Empty(t, d.Constraints)
	assert.Equal(t, "python_version=='2.7'", d.Marker)
}

func TestParseLineAnnotation(t *testing.T) {
	line, err := ParseLine("PyMySQL>=0.6.2  # MIT License", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)

	d := line.Decl
	assert.Equal(t, "PyMySQL", d.Name)
	require.Len(t, d.Constraints, 1)
	assert.Equal(t, manifest.Constraint{Op: manifest.OpGreaterEqual, Version: "0.6.2"}, d.Constraints[0])
	assert.Equal(t, "MIT License", d.Comment)
}

func TestParseLineMarkerAndAnnotation(t *testing.T) {
	line, err := ParseLine("qpid-python;python_version=='2.7'  # Apache-2.0", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)
	assert.Equal(t, "python_version=='2.7'", line.Decl.Marker)
	assert.Equal(t, "Apache-2.0", line.Decl.Comment)
}

func TestParseLineHashInsideMarkerString(t *testing.T) {
	// '#' inside a quoted marker string is not an annotation.
	line, err := ParseLine("pkg;sys_platform=='a#b'", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)
	assert.Equal(t, "sys_platform=='a#b'", line.Decl.Marker)
	assert.Empty(t, line.Decl.Comment)
}

func TestParseLineExtras(t *testing.T) {
	line, err := ParseLine("oslotest[fixtures, mock]>=1.10.0", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)
	assert.Equal(t, []string{"fixtures", "mock"}, line.Decl.Extras)
	require.Len(t, line.Decl.Constraints, 1)
}

func TestParseLineWhitespaceInConstraints(t *testing.T) {
	line, err := ParseLine("coverage >= 3.6, < 4.0", 1)
	require.NoError(t, err)
	require.NotNil(t, line.Decl)
	require.Len(t, line.Decl.Constraints, 2)
	assert.Equal(t, manifest.Constraint{Op: manifest.OpGreaterEqual, Version: "3.6"}, line.Decl.Constraints[0])
	assert.Equal(t, manifest.Constraint{Op: manifest.OpLess, Version: "4.0"}, line.Decl.Constraints[1])
}

func TestParseLineOperatorPrecedence(t *testing.T) {
	// "===" must not parse as "==" followed by "=1.0".
	line, err := ParseLine("pkg===1.0", 1)
	require.NoError(t, err)
	require.Len(t, line.Decl.Constraints, 1)
	assert.Equal(t, manifest.OpArbitraryEqual, line.Decl.Constraints[0].Op)
	assert.Equal(t, "1.0", line.Decl.Constraints[0].Version)

	line, err = ParseLine("pkg<=2.0", 1)
	require.NoError(t, err)
	assert.Equal(t, manifest.OpLessEqual, line.Decl.Constraints[0].Op)
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"missing operator", "sphinx 1.2.0", "missing comparison operator"},
		{"missing version", "sphinx>=", "missing version"},
		{"empty constraint", "sphinx>=1.0,,<2.0", "empty version constraint"},
		{"unterminated extras", "pkg[extra", "unterminated extras"},
		{"empty extra", "pkg[a,,b]>=1.0", "empty extra name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.raw, 7)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 7, pe.Line)
			assert.Contains(t, pe.Msg, tt.msg)
		})
	}
}

func TestParseFileOrderPreserved(t *testing.T) {
	m, errs := ParseFile(testManifest, FailFast)
	require.Empty(t, errs)
	require.NotNil(t, m)

	var names []string
	for _, d := range m.Declarations() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"hacking", "bandit", "coverage", "mock", "mox3", "PyMySQL",
		"oslosphinx", "oslotest", "paramiko", "qpid-python", "psycopg2",
		"sphinx", "testrepository", "testscenarios", "testtools", "testresources",
	}, names, "declaration order must match the file exactly")
}

func TestParseFileRoundTrip(t *testing.T) {
	data, err := os.ReadFile(testManifest)
	require.NoError(t, err)

	m, errs := ParseFile(testManifest, FailFast)
	require.Empty(t, errs)
	assert.Equal(t, data, m.Serialize(), "parse then serialize must be byte-equivalent")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "roundtrip", m.Serialize())
}

func TestParseFileCanonicalIsIdempotent(t *testing.T) {
	m, errs := ParseFile(testManifest, FailFast)
	require.Empty(t, errs)

	once := m.Canonical()
	m2, errs := Parse(strings.NewReader(string(once)), testManifest, FailFast)
	require.Empty(t, errs)
	assert.Equal(t, once, m2.Canonical())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "canonical", once)
}

func TestParseContinuationLines(t *testing.T) {
	input := "sphinx!=1.2.0,!=1.3b1,\\\n<1.3,>=1.1.2\n"
	m, errs := Parse(strings.NewReader(input), "inline", FailFast)
	require.Empty(t, errs)

	require.Len(t, m.Lines, 1, "continuation joins into one logical line")
	require.NotNil(t, m.Lines[0].Decl)
	assert.Len(t, m.Lines[0].Decl.Constraints, 4)
	assert.Equal(t, []byte(input), m.Serialize(), "continuations survive round trips")
}

func TestParseCollectAllKeepsGoing(t *testing.T) {
	input := "good>=1.0\nbad>=\nalso-good>=2.0\n"
	m, errs := Parse(strings.NewReader(input), "inline", CollectAll)
	require.Len(t, errs, 1)
	require.Len(t, m.Lines, 3)

	var pe *ParseError
	require.True(t, errors.As(errs[0], &pe))
	assert.Equal(t, 2, pe.Line)

	// The bad line keeps its raw text for serialization.
	assert.Equal(t, "bad>=", m.Lines[1].Raw)
	assert.Nil(t, m.Lines[1].Decl)
	assert.Equal(t, []byte(input), m.Serialize())

	// FailFast stops at the bad line.
	m, errs = Parse(strings.NewReader(input), "inline", FailFast)
	require.Len(t, errs, 1)
	assert.Len(t, m.Lines, 2)
}

func TestParseFileMissing(t *testing.T) {
	_, errs := ParseFile(filepath.Join(t.TempDir(), "nope.txt"), FailFast)
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
}

func TestParseEmptyInput(t *testing.T) {
	m, errs := Parse(strings.NewReader(""), "empty", FailFast)
	require.Empty(t, errs)
	assert.Empty(t, m.Lines)
	assert.Empty(t, m.Serialize())
}
