// Package engine implements delbin's two-phase-plus-back-patch
// evaluator: pass 1 pre-scans the offset map and total size, pass 2
// emits bytes with pending placeholders for self-referential
// checksums, pass 3 back-patches those placeholders against the
// finished buffer (spec.md §4.3).
package engine

import (
	"fmt"

	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/builtin"
	"github.com/delbin-lang/delbin/internal/delbin/diagnostic"
	"github.com/delbin-lang/delbin/internal/delbin/layout"
	"github.com/delbin-lang/delbin/internal/delbin/types"
)

// Result is the outcome of a successful Run.
type Result struct {
	Data     []byte
	Warnings []diagnostic.Warning
}

// evaluator holds all per-call state. A fresh evaluator is created for
// every Run; nothing is shared across calls (spec.md §5).
type evaluator struct {
	env      Environment
	sections Sections
	endian   types.Endian

	fieldOffsets map[string]int
	fieldSizes   map[string]int
	currentField string
	currentOff   int
	structSize   int
	haveSize     bool

	output  []byte
	pending []pendingInit
	diags   diagnostic.Collector
}

// Run evaluates file against env and sections, producing the emitted
// byte vector and any accumulated warnings.
func Run(file *ast.File, env Environment, sections Sections) (Result, error) {
	e := &evaluator{
		env:          env,
		sections:     sections,
		endian:       file.Endian,
		fieldOffsets: make(map[string]int),
		fieldSizes:   make(map[string]int),
	}

	sl, err := e.prescan(&file.Struct)
	if err != nil {
		return Result{}, err
	}
	e.structSize = sl.TotalSize
	e.haveSize = true

	// Pass 2 re-derives offsets from scratch (idempotent, per spec.md
	// §9) while emitting bytes; the pass-1 offset map is not reused.
	e.fieldOffsets = make(map[string]int)
	e.currentOff = 0

	if err := e.emit(&file.Struct); err != nil {
		return Result{}, err
	}

	if err := e.backpatch(); err != nil {
		return Result{}, err
	}

	return Result{Data: e.output, Warnings: e.diags.Warnings()}, nil
}

// prescan is pass 1: walk fields in declaration order computing each
// field's size against the partial offset map built so far, and
// return the struct's total size. Field offsets computed here are not
// retained; pass 2 rebuilds them identically while emitting.
func (e *evaluator) prescan(sd *ast.StructDef) (*layout.StructLayout, error) {
	names := make([]string, len(sd.Fields))
	for i, f := range sd.Fields {
		names[i] = f.Name
	}

	sl, err := layout.Compute(names, func(i int, partial *layout.StructLayout) (int, error) {
		field := sd.Fields[i]

		// Make the partial offset map (including this field's own
		// starting offset) visible to @offsetof during size evaluation.
		e.fieldOffsets = make(map[string]int, len(partial.Fields))
		for _, fi := range partial.Fields {
			e.fieldOffsets[fi.Name] = fi.Offset
		}
		e.currentField = field.Name
		e.currentOff = partial.Fields[len(partial.Fields)-1].Offset

		size, err := e.fieldSize(field.Type)
		if err == nil {
			e.fieldSizes[field.Name] = size
		}
		return size, err
	})
	if err != nil {
		return nil, err
	}

	e.currentField = ""
	e.currentOff = 0
	e.fieldOffsets = make(map[string]int)
	e.fieldSizes = make(map[string]int)

	return sl, nil
}

// fieldSize returns a field's byte size: its scalar width, or its
// array length (evaluated against the current partial offset map)
// times its element width. Length expressions must not reference
// subsequent fields (spec.md §4.3); since only fields declared so far
// exist in e.fieldOffsets at this point, any such reference fails with
// E02002 naturally.
func (e *evaluator) fieldSize(t ast.Type) (int, error) {
	switch v := t.(type) {
	case ast.Scalar:
		sz, err := v.Tag.Size()
		if err != nil {
			return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "%s", err)
		}
		return sz, nil
	case ast.Array:
		elemSz, err := v.Elem.Size()
		if err != nil {
			return 0, diagnostic.New(diagnostic.E03001TypeMismatch, "%s", err)
		}
		n, err := e.evalNumber(v.Len)
		if err != nil {
			return 0, err
		}
		// An underflowing length expression (e.g. "K - @offsetof(f)"
		// with K already past the offset) wraps to a huge u64 in
		// evalNumber's wrap-on-overflow arithmetic; int(n) would then
		// alias a negative or implausibly large value. Catch it here
		// rather than let layout.Compute's generic size<0 guard fire.
		if n > uint64(maxArrayLen) {
			return 0, diagnostic.New(diagnostic.E03004InvalidArraySize,
				"array length expression evaluates to %d, which is not a valid length", n)
		}
		return elemSz * int(n), nil
	default:
		return 0, fmt.Errorf("engine: unknown type %T", t)
	}
}

// emit is pass 2: walk fields, appending bytes (zero, ordinary, or a
// zeroed placeholder recorded as pending).
func (e *evaluator) emit(sd *ast.StructDef) error {
	for i := range sd.Fields {
		if err := e.emitField(&sd.Fields[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) emitField(f *ast.FieldDef) error {
	e.currentField = f.Name
	e.fieldOffsets[f.Name] = e.currentOff

	size, err := e.fieldSize(f.Type)
	if err != nil {
		return err
	}
	e.fieldSizes[f.Name] = size

	switch {
	case f.Init == nil:
		e.output = append(e.output, make([]byte, size)...)

	case isSelfReferential(f.Init, f.Name):
		e.output = append(e.output, make([]byte, size)...)
		e.pending = append(e.pending, pendingInit{
			Name: f.Name, Offset: e.currentOff, Size: size, Init: f.Init, Type: f.Type,
		})

	default:
		bytes, err := e.evalFieldValue(f.Type, f.Init)
		if err != nil {
			return err
		}
		if len(bytes) != size {
			return diagnostic.New(diagnostic.E03002ArraySizeMismatch,
				"field %q: initializer produced %d bytes, expected %d", f.Name, len(bytes), size).At(f.Pos)
		}
		e.output = append(e.output, bytes...)
	}

	e.currentOff += size
	e.currentField = ""
	return nil
}

// evalFieldValue evaluates an ordinary (non-pending) field initializer
// into exactly size(f.Type) bytes.
func (e *evaluator) evalFieldValue(t ast.Type, init ast.Expr) ([]byte, error) {
	switch v := t.(type) {
	case ast.Scalar:
		n, err := e.evalNumber(init)
		if err != nil {
			return nil, err
		}
		if types.Narrows(v.Tag, n) {
			e.diags.Add(diagnostic.W03002ValueTruncated, "value 0x%X narrowed to %s", n, v.Tag)
		}
		return types.EncodeScalar(v.Tag, n, e.endian)

	case ast.Array:
		n, err := e.evalNumber(v.Len)
		if err != nil {
			return nil, err
		}
		total := int(n) * mustSize(v.Elem)

		if call, ok := init.(*ast.BuiltinCall); ok {
			switch call.Name {
			case "bytes":
				if len(call.Args) != 1 {
					return nil, diagnostic.New(diagnostic.E04004ArgumentCount, "@bytes() requires exactly 1 argument").At(call.Pos)
				}
				s, err := e.evalString(call.Args[0])
				if err != nil {
					return nil, err
				}
				out, truncated := builtin.Bytes(s, total)
				if truncated {
					e.diags.Add(diagnostic.W03001StringTruncated, "string %q truncated to %d bytes", s, total)
				}
				return out, nil

			case "sha256":
				data, err := e.collectRangeData(call.Args, nil)
				if err != nil {
					return nil, err
				}
				if total != 32 {
					return nil, diagnostic.New(diagnostic.E03002ArraySizeMismatch,
						"@sha256() must be assigned to a 32-byte array, got %d", total).At(call.Pos)
				}
				sum := builtin.SHA256(data)
				return sum[:], nil
			}
		}

		// Any other initializer on an array field is not prescribed
		// by the language; zero-fill exactly as an absent initializer
		// would (spec.md §4.3 "Otherwise the array is zero-filled").
		return make([]byte, total), nil

	default:
		return nil, fmt.Errorf("engine: unknown type %T", t)
	}
}

func mustSize(tag types.ScalarTag) int {
	n, _ := tag.Size()
	return n
}

// maxArrayLen bounds a plausible array length so a wrapped (underflowed)
// length expression is rejected as E03004 instead of aliasing a
// negative int or exhausting memory trying to allocate it.
const maxArrayLen = 1 << 32
