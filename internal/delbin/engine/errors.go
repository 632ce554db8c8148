package engine

import (
	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
	"github.com/delbin-lang/delbin/internal/delbin/position"
)

func diagnosticE04004(msg string, args []ast.Expr) error {
	var pos position.Position
	if len(args) > 0 {
		pos = args[0].Position()
	}
	return diagnostic.New(diagnostic.E04004ArgumentCount, "%s", msg).At(pos)
}

func undefinedFieldErr(name string, pos position.Position) error {
	return diagnostic.New(diagnostic.E02002UndefinedField, "undefined field %q", name).At(pos)
}

func undefinedSectionErr(name string, pos position.Position) error {
	return diagnostic.New(diagnostic.E02003UndefinedSection, "undefined section %q", name).At(pos)
}

func invalidRangeErr(start, end int, pos position.Position) error {
	return diagnostic.New(diagnostic.E04002InvalidRange, "invalid range %d..%d", start, end).At(pos)
}

func invalidArgumentErr(arg ast.Expr) error {
	return diagnostic.New(diagnostic.E04003InvalidArgument, "argument must be @self, a range, or a section name").At(arg.Position())
}

func computationFailed(arg ast.Expr) error {
	return diagnostic.New(diagnostic.E04005ComputationFailed, "reads bytes of a field not yet resolved").At(arg.Position())
}
