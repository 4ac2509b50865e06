// Package parser reads pip-style requirements manifests into the manifest
// model. The grammar, per line:
//
//	name[extras]constraints;marker  # annotation
//
// Blank lines and full-line '#' comments are preserved as-is. A trailing
// backslash joins the next physical line into the same logical line.
// Every line keeps its raw text so an untouched manifest round-trips
// byte-for-byte.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pinset-io/pinset/internal/manifest"
)

// Mode controls how errors are handled during parsing.
type Mode int

const (
	// FailFast stops on the first error encountered.
	FailFast Mode = iota
	// CollectAll collects all errors before returning. Lines that fail to
	// parse are kept with their raw text so serialization still works.
	CollectAll
)

// ParseError reports a syntax error with its source position.
type ParseError struct {
	File string
	Line int // 1-based physical line number
	Col  int // 1-based column, 0 if unknown
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// ParseFile parses the manifest at path.
func ParseFile(path string, mode Mode) (*manifest.Manifest, []error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []error{fmt.Errorf("open manifest: %w", err)}
	}
	defer f.Close()
	return Parse(f, path, mode)
}

// Parse parses a manifest from r. name is used in error positions.
func Parse(r io.Reader, name string, mode Mode) (*manifest.Manifest, []error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, []error{fmt.Errorf("read manifest: %w", err)}
	}

	m := &manifest.Manifest{
		Path:            name,
		TrailingNewline: bytes.HasSuffix(data, []byte("\n")),
	}

	physical := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(data) == 0 {
		physical = nil
	}

	var errs []error
	for i := 0; i < len(physical); i++ {
		start := i + 1 // 1-based
		raw := physical[i]

		// Join backslash continuations into one logical line.
		for strings.HasSuffix(raw, `\`) && i+1 < len(physical) {
			i++
			raw = raw + "\n" + physical[i]
		}

		line, err := parseLine(raw, start, name)
		m.Lines = append(m.Lines, line)
		if err != nil {
			errs = append(errs, err)
			if mode == FailFast {
				return m, errs
			}
		}
	}
	return m, errs
}

// ParseLine parses a single logical line. Exposed for scenario-style tests
// and for callers validating one declaration at a time.
func ParseLine(raw string, number int) (manifest.Line, error) {
	return parseLine(raw, number, "<line>")
}

func parseLine(raw string, number int, file string) (manifest.Line, error) {
	logical := strings.ReplaceAll(raw, "\\\n", " ")
	trimmed := strings.TrimSpace(logical)

	switch {
	case trimmed == "":
		return manifest.Line{Kind: manifest.LineBlank, Raw: raw, Number: number}, nil
	case strings.HasPrefix(trimmed, "#"):
		return manifest.Line{Kind: manifest.LineComment, Raw: raw, Number: number}, nil
	}

	line := manifest.Line{Kind: manifest.LineDeclaration, Raw: raw, Number: number}
	decl, err := parseDeclaration(trimmed, number, file)
	if err != nil {
		return line, err
	}
	line.Decl = decl
	return line, nil
}

func parseDeclaration(text string, number int, file string) (*manifest.Declaration, error) {
	decl := &manifest.Declaration{}

	// Inline annotation. '#' inside quoted marker strings does not count.
	req, comment := splitUnquoted(text, '#')
	decl.Comment = strings.TrimSpace(comment)

	// Environment marker suffix.
	req, markerText := splitUnquoted(req, ';')
	decl.Marker = strings.TrimSpace(markerText)
	req = strings.TrimSpace(req)

	// Package name: leading run of name characters.
	nameEnd := 0
	for nameEnd < len(req) && isNameByte(req[nameEnd]) {
		nameEnd++
	}
	decl.Name = req[:nameEnd]
	if decl.Name == "" {
		return nil, &ParseError{File: file, Line: number, Col: 1, Msg: "empty package name"}
	}
	rest := strings.TrimSpace(req[nameEnd:])

	// Optional extras.
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, &ParseError{File: file, Line: number, Col: nameEnd + 1, Msg: "unterminated extras list"}
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				return nil, &ParseError{File: file, Line: number, Col: nameEnd + 1, Msg: "empty extra name"}
			}
			decl.Extras = append(decl.Extras, extra)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	// Version constraints: comma-separated, whitespace insignificant.
	if rest != "" {
		constraints, err := parseConstraints(rest, number, file)
		if err != nil {
			return nil, err
		}
		decl.Constraints = constraints
	}
	return decl, nil
}

func parseConstraints(text string, number int, file string) ([]manifest.Constraint, error) {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, text)

	var cs []manifest.Constraint
	for _, part := range strings.Split(compact, ",") {
		if part == "" {
			return nil, &ParseError{File: file, Line: number, Msg: "empty version constraint"}
		}
		op, ok := cutOp(part)
		if !ok {
			return nil, &ParseError{File: file, Line: number,
				Msg: fmt.Sprintf("constraint %q: missing comparison operator", part)}
		}
		ver := part[len(op):]
		if ver == "" {
			return nil, &ParseError{File: file, Line: number,
				Msg: fmt.Sprintf("constraint %q: missing version", part)}
		}
		cs = append(cs, manifest.Constraint{Op: op, Version: ver})
	}
	return cs, nil
}

// cutOp matches the longest operator prefix of part. manifest.Ops is
// ordered longest-first so "===" wins over "==" and "<=" over "<".
func cutOp(part string) (manifest.ConstraintOp, bool) {
	for _, op := range manifest.Ops {
		if strings.HasPrefix(part, string(op)) {
			return op, true
		}
	}
	return "", false
}

// splitUnquoted splits s at the first occurrence of sep outside single or
// double quotes. The separator itself is dropped.
func splitUnquoted(s string, sep byte) (before, after string) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func isNameByte(c byte) bool {
	return c == '.' || c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
