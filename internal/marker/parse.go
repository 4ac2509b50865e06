package marker

import (
	"fmt"
	"strings"
)

// ParseError reports a syntax error in a marker expression.
type ParseError struct {
	Expr string // the full expression text
	Pos  int    // 0-based byte offset
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("marker %q: offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Parse parses a marker expression into an Expr tree.
func Parse(expr string) (Expr, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{expr: expr, toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf(p.peek().pos, "unexpected %q", p.peek().text)
	}
	return e, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokOp     // == != <= >= < >
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '\'' || c == '"':
			j := strings.IndexByte(expr[i+1:], c)
			if j < 0 {
				return nil, &ParseError{Expr: expr, Pos: i, Msg: "unterminated string literal"}
			}
			toks = append(toks, token{tokString, expr[i+1 : i+1+j], i})
			i += j + 2
		case strings.HasPrefix(expr[i:], "==") || strings.HasPrefix(expr[i:], "!=") ||
			strings.HasPrefix(expr[i:], "<=") || strings.HasPrefix(expr[i:], ">="):
			toks = append(toks, token{tokOp, expr[i : i+2], i})
			i += 2
		case c == '<' || c == '>':
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case isIdentByte(c):
			j := i
			for j < len(expr) && isIdentByte(expr[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, expr[i:j], i})
			i = j
		default:
			return nil, &ParseError{Expr: expr, Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(expr)})
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type parser struct {
	expr string
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &ParseError{Expr: p.expr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// parseOr handles "a or b"; "and" binds tighter.
func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == "or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokIdent && p.peek().text == "and" {
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

// parseAtom handles parenthesized expressions and comparisons. Either
// operand of a comparison may be the variable; the other must be a quoted
// literal.
func (p *parser) parseAtom() (Expr, error) {
	if p.peek().kind == tokLParen {
		open := p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf(open.pos, "missing closing parenthesis")
		}
		p.next()
		return e, nil
	}

	left := p.next()
	if left.kind != tokIdent && left.kind != tokString {
		return nil, p.errorf(left.pos, "expected variable or string literal, got %q", left.text)
	}
	if left.kind == tokIdent && (left.text == "and" || left.text == "or" || left.text == "in" || left.text == "not") {
		return nil, p.errorf(left.pos, "expected variable or string literal, got keyword %q", left.text)
	}

	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}

	right := p.next()
	if right.kind != tokIdent && right.kind != tokString {
		return nil, p.errorf(right.pos, "expected variable or string literal after operator")
	}

	switch {
	case left.kind == tokIdent && right.kind == tokString:
		return Comparison{Var: left.text, Op: op, Value: right.text}, nil
	case left.kind == tokString && right.kind == tokIdent:
		return Comparison{Var: right.text, Op: op, Value: left.text, Reversed: true}, nil
	case left.kind == tokString && right.kind == tokString:
		return nil, p.errorf(left.pos, "comparison needs a variable operand")
	default:
		return nil, p.errorf(left.pos, "comparison between two variables is not supported")
	}
}

func (p *parser) parseCompareOp() (CompareOp, error) {
	t := p.next()
	switch t.kind {
	case tokOp:
		return CompareOp(t.text), nil
	case tokIdent:
		switch t.text {
		case "in":
			return CmpIn, nil
		case "not":
			nt := p.next()
			if nt.kind != tokIdent || nt.text != "in" {
				return "", p.errorf(nt.pos, "expected 'in' after 'not'")
			}
			return CmpNotIn, nil
		}
	}
	return "", p.errorf(t.pos, "expected comparison operator, got %q", t.text)
}
