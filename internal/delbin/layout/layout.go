// Package layout computes delbin's packed field-offset map: pass 1 of
// the evaluator (spec.md §4.3). It is adapted from a generic
// alignment-aware struct layout calculator, specialized to delbin's
// packed-only, expression-driven field sizing: no padding is ever
// inserted, and an array field's length expression is evaluated
// against the partial offset map built so far.
package layout

import "fmt"

// FieldInfo records one field's resolved offset and size.
type FieldInfo struct {
	Name   string
	Offset int
	Size   int
}

// StructLayout is the result of pass 1: every field's offset plus the
// struct's total size.
type StructLayout struct {
	Fields    []FieldInfo
	TotalSize int
}

// GetFieldOffset returns the offset of a named field and whether it
// was found.
func (sl *StructLayout) GetFieldOffset(name string) (int, bool) {
	for _, f := range sl.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// SizeFunc computes the byte size of a field given the partial offset
// map available at the moment the field is declared (field i's own
// entry is already present, pointing at its own starting offset, so
// length expressions like "256 - @offsetof(_pad)" can resolve). It is
// supplied by the evaluator, which alone knows how to evaluate
// expressions against environment/sections.
type SizeFunc func(fieldIndex int, partial *StructLayout) (int, error)

// Compute walks fields in declaration order, building the offset map
// one field at a time. sizeOf is invoked with a *StructLayout that
// already contains offsets for every prior field and a placeholder
// entry for the current field (Invariant 1 in spec.md §3).
func Compute(fieldNames []string, sizeOf SizeFunc) (*StructLayout, error) {
	sl := &StructLayout{}

	offset := 0
	for i, name := range fieldNames {
		// Placeholder entry for the field currently being sized, so
		// @offsetof(<own field>) resolves during size computation.
		sl.Fields = append(sl.Fields, FieldInfo{Name: name, Offset: offset})

		size, err := sizeOf(i, sl)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if size < 0 {
			return nil, fmt.Errorf("field %q: negative size", name)
		}

		sl.Fields[i].Size = size
		offset += size
	}

	sl.TotalSize = offset
	return sl, nil
}
