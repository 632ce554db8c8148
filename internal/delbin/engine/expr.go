package engine

import (
	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/builtin"
	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
)

// evalNumber evaluates expr in the 64-bit-unsigned arithmetic domain
// (spec.md §4.2): every operator wraps rather than traps, except a
// shift amount of 64 or more, which is rejected outright (E04006)
// rather than silently masked the way Go's native shift operators
// would mask it.
func (e *evaluator) evalNumber(expr ast.Expr) (uint64, error) {
	switch v := expr.(type) {
	case *ast.NumberLit:
		return v.Value, nil

	case *ast.EnvRef:
		val, ok := e.env[v.Name]
		if !ok {
			return 0, diagnostic.New(diagnostic.E02001UndefinedVariable, "undefined variable %q", v.Name).At(v.Pos)
		}
		if val.IsString {
			return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "variable %q is a string, expected a number", v.Name).At(v.Pos)
		}
		return val.Number, nil

	case *ast.SectionRef:
		data, ok := e.sections[v.Name]
		if !ok {
			return 0, undefinedSectionErr(v.Name, v.Pos)
		}
		return uint64(len(data)), nil

	case *ast.UnaryExpr:
		operand, err := e.evalNumber(v.Operand)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ast.Not:
			return ^operand, nil
		case ast.Neg:
			return ^operand + 1, nil
		default:
			return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "unknown unary operator").At(v.Pos)
		}

	case *ast.BinaryExpr:
		left, err := e.evalNumber(v.Left)
		if err != nil {
			return 0, err
		}
		right, err := e.evalNumber(v.Right)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case ast.Or:
			return left | right, nil
		case ast.And:
			return left & right, nil
		case ast.Shl:
			if right >= 64 {
				return 0, diagnostic.New(diagnostic.E04006ShiftOverflow, "shift amount %d is not less than 64", right).At(v.Pos)
			}
			return left << right, nil
		case ast.Shr:
			if right >= 64 {
				return 0, diagnostic.New(diagnostic.E04006ShiftOverflow, "shift amount %d is not less than 64", right).At(v.Pos)
			}
			return left >> right, nil
		case ast.Add:
			return left + right, nil
		case ast.Sub:
			return left - right, nil
		default:
			return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "unknown binary operator").At(v.Pos)
		}

	case *ast.BuiltinCall:
		return e.evalBuiltinNumber(v)

	default:
		return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "expression does not evaluate to a number").At(expr.Position())
	}
}

// evalString evaluates expr as a string (only string literals and
// string-valued environment references qualify).
func (e *evaluator) evalString(expr ast.Expr) (string, error) {
	switch v := expr.(type) {
	case *ast.StringLit:
		return v.Value, nil
	case *ast.EnvRef:
		val, ok := e.env[v.Name]
		if !ok {
			return "", diagnostic.New(diagnostic.E02001UndefinedVariable, "undefined variable %q", v.Name).At(v.Pos)
		}
		if !val.IsString {
			return "", diagnostic.New(diagnostic.E03001TypeMismatch, "variable %q is a number, expected a string", v.Name).At(v.Pos)
		}
		return val.String, nil
	default:
		return "", diagnostic.New(diagnostic.E03001TypeMismatch, "expression does not evaluate to a string").At(expr.Position())
	}
}

// evalBuiltinNumber evaluates @sizeof, @offsetof, and @crc32 — the
// built-ins that yield a number rather than a byte array.
func (e *evaluator) evalBuiltinNumber(call *ast.BuiltinCall) (uint64, error) {
	switch call.Name {
	case "sizeof":
		if len(call.Args) != 1 {
			return 0, diagnostic.New(diagnostic.E04004ArgumentCount, "@sizeof() requires exactly 1 argument").At(call.Pos)
		}
		return e.evalSizeof(call.Args[0])

	case "offsetof":
		if len(call.Args) != 1 {
			return 0, diagnostic.New(diagnostic.E04004ArgumentCount, "@offsetof() requires exactly 1 argument").At(call.Pos)
		}
		return e.evalOffsetof(call.Args[0])

	case "crc32":
		data, err := e.collectRangeData(call.Args, nil)
		if err != nil {
			return 0, err
		}
		return uint64(builtin.CRC32(data)), nil

	case "bytes", "sha256":
		return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "@%s() produces a byte array, not a number", call.Name).At(call.Pos)

	default:
		return 0, diagnostic.New(diagnostic.E02004UndefinedFunction, "unknown built-in %q", call.Name).At(call.Pos)
	}
}

func (e *evaluator) evalSizeof(arg ast.Expr) (uint64, error) {
	switch v := arg.(type) {
	case *ast.SelfRef:
		if e.haveSize {
			return uint64(e.structSize), nil
		}
		return 0, nil
	case *ast.SectionRef:
		if size, ok := e.fieldSizes[v.Name]; ok {
			return uint64(size), nil
		}
		if data, ok := e.sections[v.Name]; ok {
			return uint64(len(data)), nil
		}
		return 0, diagnostic.New(diagnostic.E02003UndefinedSection, "undefined field or section %q", v.Name).At(v.Pos)
	default:
		// Any other form is a length-yielding expression (spec.md
		// §4.3's built-ins table: "@self, a section name, or a
		// length-yielding expression"); fall back to plain numeric
		// evaluation rather than rejecting it outright.
		return e.evalNumber(arg)
	}
}

func (e *evaluator) evalOffsetof(arg ast.Expr) (uint64, error) {
	ref, ok := arg.(*ast.SectionRef)
	if !ok {
		return 0, diagnostic.New(diagnostic.E04003InvalidArgument, "@offsetof() argument must be a field name").At(arg.Position())
	}
	off, ok := e.fieldOffsets[ref.Name]
	if !ok {
		return 0, diagnostic.New(diagnostic.E02002UndefinedField, "undefined field %q", ref.Name).At(ref.Pos)
	}
	return uint64(off), nil
}
