package engine

import "github.com/delbin-lang/delbin/internal/delbin/ast"

// pendingInit is a field whose initializer could only be evaluated
// once the surrounding buffer (with its own slot zeroed) was fully
// written. Drained strictly in declaration order after emission
// (spec.md §4.3 Pass 3); a pending field may only read bytes written
// earlier, never bytes belonging to a later pending field.
type pendingInit struct {
	Name   string
	Offset int
	Size   int
	Init   ast.Expr
	Type   ast.Type
}

// isSelfReferential reports whether init is a @crc32/@sha256 call with
// at least one @self[..fieldName] argument — the exact condition
// spec.md §4.3 defines for deferring a field to the back-patch pass.
func isSelfReferential(init ast.Expr, fieldName string) bool {
	call, ok := init.(*ast.BuiltinCall)
	if !ok {
		return false
	}
	if call.Name != "crc32" && call.Name != "sha256" {
		return false
	}
	for _, arg := range call.Args {
		r, ok := arg.(*ast.RangeExpr)
		if ok && r.End == fieldName {
			return true
		}
	}
	return false
}
