// Package marker parses and evaluates environment marker expressions, the
// ";condition" suffix that restricts a declaration to matching runtime
// environments, e.g.:
//
//	qpid-python;python_version=='2.7'
//	paramiko;sys_platform!='win32' and python_version>='3.5'
//
// The grammar is a small subset of the ecosystem's marker language:
// comparisons between environment variables and quoted string literals,
// "in"/"not in" substring tests, "and"/"or" conjunctions (with "and"
// binding tighter), and parentheses.
//
// Expressions compile to a sealed-interface tree (see types.go) that is
// validated and evaluated separately: Validate flags unknown variables as
// warnings without rejecting the expression, and Eval resolves it against
// an Env. Variables carrying version values compare under the version
// grammar; everything else compares lexically.
package marker
