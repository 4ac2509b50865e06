package marker

// Expr represents a parsed marker expression.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the evaluator and validator.
//
// Expression types:
//   - Comparison: variable <op> literal (either side may be the variable)
//   - And: both operands must be true
//   - Or: at least one operand must be true
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// CompareOp is a marker comparison operator.
type CompareOp string

const (
	CmpEqual        CompareOp = "=="
	CmpNotEqual     CompareOp = "!="
	CmpLess         CompareOp = "<"
	CmpLessEqual    CompareOp = "<="
	CmpGreater      CompareOp = ">"
	CmpGreaterEqual CompareOp = ">="
	CmpIn           CompareOp = "in"     // substring test
	CmpNotIn        CompareOp = "not in" // negated substring test
)

// Comparison is a single variable-vs-literal test.
//
// Reversed records literal-first forms like '2.7'==python_version, which
// the grammar allows. Ordering operators flip accordingly during Eval.
type Comparison struct {
	Var      string    // environment variable name
	Op       CompareOp
	Value    string // literal operand, quotes stripped
	Reversed bool   // literal appeared on the left
}

func (Comparison) exprNode() {}

// And requires both operands to hold.
type And struct {
	Left, Right Expr
}

func (And) exprNode() {}

// Or requires at least one operand to hold.
type Or struct {
	Left, Right Expr
}

func (Or) exprNode() {}
