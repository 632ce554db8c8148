package engine

import "github.com/delbin-lang/delbin/internal/delbin/ast"

// byteSpan is a half-open [Start, End) byte range within the output
// buffer, used to detect a pending field reading bytes that belong to
// another, still-unresolved pending field (spec.md §4.3: a pending
// field may only depend on bytes already finalized).
type byteSpan struct {
	Start, End int
}

func (s byteSpan) overlaps(other byteSpan) bool {
	return s.Start < other.End && other.Start < s.End
}

// collectRangeData evaluates the argument list of a @crc32/@sha256
// call and concatenates the bytes each argument denotes, in argument
// order. forbidden lists byte spans (other still-pending fields) that
// must not be touched; pass nil outside pass 3 back-patching. A range
// whose end field is one of those pending fields is rejected too, even
// though the half-open range itself stops short of that field's bytes.
func (e *evaluator) collectRangeData(args []ast.Expr, forbidden []byteSpan) ([]byte, error) {
	if len(args) == 0 {
		return nil, diagnosticE04004("@crc32()/@sha256() require at least 1 argument", args)
	}

	var out []byte
	for _, arg := range args {
		chunk, span, err := e.evalByteArg(arg)
		if err != nil {
			return nil, err
		}
		_, isRange := arg.(*ast.RangeExpr)
		for _, f := range forbidden {
			if span.overlaps(f) || (isRange && span.End == f.Start) {
				return nil, computationFailed(arg)
			}
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// evalByteArg evaluates a single byte-producing argument, returning
// both the bytes and the output-buffer span they were read from (zero
// span for data that isn't part of the output buffer, e.g. a section).
func (e *evaluator) evalByteArg(arg ast.Expr) ([]byte, byteSpan, error) {
	switch v := arg.(type) {
	case *ast.SelfRef:
		return append([]byte(nil), e.output...), byteSpan{0, len(e.output)}, nil

	case *ast.RangeExpr:
		start := 0
		if v.Start != nil {
			n, err := e.evalNumber(v.Start)
			if err != nil {
				return nil, byteSpan{}, err
			}
			start = int(n)
		}
		end, ok := e.fieldOffsets[v.End]
		if !ok {
			return nil, byteSpan{}, undefinedFieldErr(v.End, v.Pos)
		}
		if start < 0 || end < start || end > len(e.output) {
			return nil, byteSpan{}, invalidRangeErr(start, end, v.Pos)
		}
		return append([]byte(nil), e.output[start:end]...), byteSpan{start, end}, nil

	case *ast.SectionRef:
		data, ok := e.sections[v.Name]
		if !ok {
			return nil, byteSpan{}, undefinedSectionErr(v.Name, v.Pos)
		}
		return append([]byte(nil), data...), byteSpan{}, nil

	default:
		return nil, byteSpan{}, invalidArgumentErr(arg)
	}
}
