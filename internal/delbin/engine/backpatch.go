package engine

import (
	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/builtin"
	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
	"github.com/delbin-lang/delbin/internal/delbin/types"
)

// backpatch is pass 3: resolve every pending field in declaration
// order against the now-complete (but still zeroed-at-those-slots)
// output buffer, writing each result in place.
func (e *evaluator) backpatch() error {
	for i, p := range e.pending {
		forbidden := make([]byteSpan, 0, len(e.pending)-i-1)
		for _, other := range e.pending[i+1:] {
			forbidden = append(forbidden, byteSpan{other.Offset, other.Offset + other.Size})
		}

		if err := e.resolvePending(p, forbidden); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) resolvePending(p pendingInit, forbidden []byteSpan) error {
	call := p.Init.(*ast.BuiltinCall)

	data, err := e.collectRangeData(call.Args, forbidden)
	if err != nil {
		return err
	}

	switch call.Name {
	case "crc32":
		sum := builtin.CRC32(data)
		scalar, ok := p.Type.(ast.Scalar)
		if !ok {
			return diagnostic.New(diagnostic.E03001TypeMismatch, "field %q: @crc32() requires a scalar field type", p.Name).At(call.Pos)
		}
		if types.Narrows(scalar.Tag, uint64(sum)) {
			e.diags.Add(diagnostic.W03002ValueTruncated, "crc32 value 0x%X narrowed to %s", sum, scalar.Tag)
		}
		bytes, err := types.EncodeScalar(scalar.Tag, uint64(sum), e.endian)
		if err != nil {
			return err
		}
		copy(e.output[p.Offset:p.Offset+p.Size], bytes)

	case "sha256":
		sum := builtin.SHA256(data)
		if p.Size != len(sum) {
			return diagnostic.New(diagnostic.E03002ArraySizeMismatch,
				"field %q: @sha256() requires a 32-byte array, got %d", p.Name, p.Size).At(call.Pos)
		}
		copy(e.output[p.Offset:p.Offset+p.Size], sum[:])

	default:
		return diagnostic.New(diagnostic.E02004UndefinedFunction, "unknown self-referential built-in %q", call.Name).At(call.Pos)
	}

	return nil
}
