package trial

import (
	"fmt"

	"github.com/dop251/goja"
)

// Expr is a compiled completion expression. The expression sees two
// variables: "count" (needle occurrences in the output artifact) and
// "lines" (total lines scanned), and its result is taken as a boolean.
//
// Example: "count > 0 && lines >= 100".
type Expr struct {
	src  string
	prog *goja.Program
}

// CompileExpr compiles a completion expression.
func CompileExpr(src string) (*Expr, error) {
	prog, err := goja.Compile("completion_expr", src, true)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &Expr{src: src, prog: prog}, nil
}

// Finished evaluates the expression for one trial. A fresh VM per call
// keeps evaluations independent of each other.
func (e *Expr) Finished(count, lines int) (bool, error) {
	vm := goja.New()
	if err := vm.Set("count", count); err != nil {
		return false, fmt.Errorf("set count: %w", err)
	}
	if err := vm.Set("lines", lines); err != nil {
		return false, fmt.Errorf("set lines: %w", err)
	}

	v, err := vm.RunProgram(e.prog)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", e.src, err)
	}
	return v.ToBoolean(), nil
}

// String returns the expression source.
func (e *Expr) String() string {
	return e.src
}
