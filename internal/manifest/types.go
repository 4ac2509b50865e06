package manifest

// LineKind distinguishes the three physical line forms in a manifest.
type LineKind string

const (
	// LineBlank is an empty line (or whitespace only).
	LineBlank LineKind = "blank"

	// LineComment is a full-line comment starting with '#'.
	LineComment LineKind = "comment"

	// LineDeclaration is a dependency declaration, optionally followed by
	// an inline '#' annotation.
	LineDeclaration LineKind = "declaration"
)

// ConstraintOp is a version comparison operator.
type ConstraintOp string

const (
	OpEqual          ConstraintOp = "=="  // version match, supports trailing ".*" prefix form
	OpArbitraryEqual ConstraintOp = "===" // literal string equality
	OpNotEqual       ConstraintOp = "!="  // version exclusion
	OpLess           ConstraintOp = "<"
	OpLessEqual      ConstraintOp = "<="
	OpGreater        ConstraintOp = ">"
	OpGreaterEqual   ConstraintOp = ">="
	OpCompatible     ConstraintOp = "~="  // compatible release
)

// Ops lists all valid operators, longest first so that prefix matching
// during parsing never mistakes "===" for "==" or "<=" for "<".
var Ops = []ConstraintOp{
	OpArbitraryEqual,
	OpEqual,
	OpNotEqual,
	OpLessEqual,
	OpGreaterEqual,
	OpCompatible,
	OpLess,
	OpGreater,
}

// Valid reports whether op is a recognized operator.
func (op ConstraintOp) Valid() bool {
	for _, o := range Ops {
		if op == o {
			return true
		}
	}
	return false
}

// Constraint restricts which versions satisfy a declaration.
type Constraint struct {
	Op      ConstraintOp `json:"op"`
	Version string       `json:"version"`
}

// Declaration is one dependency declaration: a package name plus optional
// extras, version constraints, environment marker, and inline annotation.
type Declaration struct {
	Name        string       `json:"name"`
	Extras      []string     `json:"extras,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`

	// Marker is the raw environment marker expression after ';', without
	// surrounding whitespace. Empty when the declaration is unconditional.
	// Parsing and evaluation live in the marker package.
	Marker string `json:"marker,omitempty"`

	// Comment is the inline annotation after '#', trimmed, without the
	// leading '#'. Conventionally notes license or rationale.
	Comment string `json:"comment,omitempty"`
}

// Line is one physical line of a manifest.
type Line struct {
	Kind LineKind `json:"kind"`

	// Raw is the original text of the line, without the trailing newline.
	// Logical lines joined by a backslash continuation keep the embedded
	// "\\\n" sequences so serialization reproduces the source exactly.
	Raw string `json:"raw"`

	// Number is the 1-based physical line number where this line starts.
	Number int `json:"number"`

	// Decl is set only when Kind == LineDeclaration.
	Decl *Declaration `json:"decl,omitempty"`
}

// Manifest is an ordered dependency manifest.
type Manifest struct {
	// Path is the source file path, or a synthetic name for readers.
	Path string `json:"path"`

	Lines []Line `json:"lines"`

	// TrailingNewline records whether the source ended with '\n', so a
	// round trip is byte-equivalent.
	TrailingNewline bool `json:"trailing_newline"`
}

// Declarations returns the declaration lines in file order.
// The returned pointers alias the manifest's lines.
func (m *Manifest) Declarations() []*Declaration {
	var decls []*Declaration
	for i := range m.Lines {
		if m.Lines[i].Kind == LineDeclaration && m.Lines[i].Decl != nil {
			decls = append(decls, m.Lines[i].Decl)
		}
	}
	return decls
}

// DeclarationLines returns the lines holding declarations, in file order.
func (m *Manifest) DeclarationLines() []*Line {
	var lines []*Line
	for i := range m.Lines {
		if m.Lines[i].Kind == LineDeclaration && m.Lines[i].Decl != nil {
			lines = append(lines, &m.Lines[i])
		}
	}
	return lines
}
