package manifest

import (
	"bytes"
	"strings"
)

// String renders a constraint in canonical form: operator immediately
// followed by the version, no interior whitespace.
func (c Constraint) String() string {
	return string(c.Op) + c.Version
}

// String renders a declaration in canonical form:
//
//	name[extra1,extra2]op1v1,op2v2;marker  # comment
//
// Constraint order is preserved as written. The author's name spelling is
// kept; use NormalizeName for comparisons.
func (d *Declaration) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if len(d.Extras) > 0 {
		b.WriteByte('[')
		b.WriteString(strings.Join(d.Extras, ","))
		b.WriteByte(']')
	}
	for i, c := range d.Constraints {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c.String())
	}
	if d.Marker != "" {
		b.WriteByte(';')
		b.WriteString(d.Marker)
	}
	if d.Comment != "" {
		b.WriteString("  # ")
		b.WriteString(d.Comment)
	}
	return b.String()
}

// Serialize reproduces the manifest from the raw text of its lines.
// A manifest that was parsed and not edited serializes byte-for-byte.
func (m *Manifest) Serialize() []byte {
	var buf bytes.Buffer
	for i := range m.Lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(m.Lines[i].Raw)
	}
	if m.TrailingNewline && len(m.Lines) > 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Canonical renders the manifest with every declaration in canonical form.
// Comment and blank lines keep their raw text. Line order is untouched:
// formatting never reorders declarations.
func (m *Manifest) Canonical() []byte {
	var buf bytes.Buffer
	for i := range m.Lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line := &m.Lines[i]
		if line.Kind == LineDeclaration && line.Decl != nil {
			buf.WriteString(line.Decl.String())
		} else {
			buf.WriteString(line.Raw)
		}
	}
	if len(m.Lines) > 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
