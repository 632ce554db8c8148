package engine

import "github.com/delbin-lang/delbin/internal/delbin/ast"

// FieldReport is one field's resolved offset and size, for the CLI's
// "explain" introspection command. It carries no evaluated bytes —
// only the layout pre-scan's output (spec.md §4.3 Pass 1).
type FieldReport struct {
	Name   string
	Offset int
	Size   int
}

// Explain runs pass 1 (layout pre-scan) only and returns every field's
// resolved offset/size plus the struct's total size. It never emits or
// back-patches, so it is safe to call even for schemas whose
// self-referential fields would otherwise require a real section to
// resolve their checksum.
func Explain(file *ast.File, env Environment, sections Sections) ([]FieldReport, int, error) {
	e := &evaluator{
		env:          env,
		sections:     sections,
		endian:       file.Endian,
		fieldOffsets: make(map[string]int),
		fieldSizes:   make(map[string]int),
	}

	sl, err := e.prescan(&file.Struct)
	if err != nil {
		return nil, 0, err
	}

	reports := make([]FieldReport, len(sl.Fields))
	for i, fi := range sl.Fields {
		reports[i] = FieldReport{Name: fi.Name, Offset: fi.Offset, Size: fi.Size}
	}
	return reports, sl.TotalSize, nil
}
