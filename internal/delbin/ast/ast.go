// Package ast defines delbin's abstract syntax tree. The tree is
// immutable once parsing completes; the evaluator never mutates it.
package ast

import (
	"github.com/delbin-lang/delbin/internal/delbin/position"
	"github.com/delbin-lang/delbin/internal/delbin/types"
)

// File is the top-level parse result: the byte order and exactly one
// struct definition. At least one directive must precede the struct,
// but the parser does not require @endian among them: Endian is little
// when no @endian directive is present, and the last one wins when
// there are several.
type File struct {
	Endian types.Endian
	Struct StructDef
	// RequireEngine is the constraint string from an optional
	// @require_engine = "<constraint>"; directive, or nil if absent.
	// The parser only checks that it is a string literal; validating
	// it against the running engine version is the host's job.
	RequireEngine *string
}

// StructDef is a single struct block.
type StructDef struct {
	Name string
	// Packed records whether the @packed attribute was written. Layout
	// is packed (no implicit inter-field padding) either way.
	Packed bool
	// Align records a parsed @align(n) attribute for introspection
	// only; it has no effect on emitted bytes (see design notes).
	Align *uint64
	Fields []FieldDef
	Pos    position.Position
}

// FieldDef is one field within a struct. Init is nil when the field
// has no initializer (zero-filled).
type FieldDef struct {
	Name string
	Type Type
	Init Expr
	Pos  position.Position
}

// Type is either a Scalar or an Array.
type Type interface {
	isType()
}

// Scalar is a fixed-width scalar field type.
type Scalar struct {
	Tag types.ScalarTag
}

func (Scalar) isType() {}

// Array is a fixed-length array of a scalar element type. Len is
// evaluated against the partial offset map available at the point the
// field is declared (see the layout package).
type Array struct {
	Elem types.ScalarTag
	Len  Expr
}

func (Array) isType() {}

// ElemTag returns the scalar tag that determines a type's element
// width: itself for a Scalar, its element type for an Array.
func ElemTag(t Type) types.ScalarTag {
	switch v := t.(type) {
	case Scalar:
		return v.Tag
	case Array:
		return v.Elem
	default:
		return ""
	}
}

// Expr is any node in the expression grammar (spec.md §3).
type Expr interface {
	isExpr()
	Position() position.Position
}

// Meta carries the source position shared by every expression node.
// It is embedded (not wrapped) so callers outside this package can
// build node literals directly, e.g. ast.NumberLit{Meta: ast.At(pos), Value: 1}.
type Meta struct{ Pos position.Position }

func (m Meta) Position() position.Position { return m.Pos }

// At builds a Meta at the given position; used by the parser when
// constructing AST nodes.
func At(pos position.Position) Meta { return Meta{Pos: pos} }

// NumberLit is an integer literal, already parsed into u64.
type NumberLit struct {
	Meta
	Value uint64
}

func (NumberLit) isExpr() {}

// StringLit is a double-quoted string literal with escapes resolved.
type StringLit struct {
	Meta
	Value string
}

func (StringLit) isExpr() {}

// EnvRef is a ${NAME} environment variable reference.
type EnvRef struct {
	Meta
	Name string
}

func (EnvRef) isExpr() {}

// BinOp is a binary operator.
type BinOp int

const (
	Or BinOp = iota
	And
	Shl
	Shr
	Add
	Sub
)

// BinaryExpr is a left-associative binary operation.
type BinaryExpr struct {
	Meta
	Op          BinOp
	Left, Right Expr
}

func (BinaryExpr) isExpr() {}

// UnaryOp is a unary operator.
type UnaryOp int

const (
	Not UnaryOp = iota // bitwise complement ~
	Neg                // two's-complement negate -
)

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Meta
	Op      UnaryOp
	Operand Expr
}

func (UnaryExpr) isExpr() {}

// BuiltinCall is an @name(args...) call.
type BuiltinCall struct {
	Meta
	Name string
	Args []Expr
}

func (BuiltinCall) isExpr() {}

// SectionRef is a bare identifier appearing inside a builtin argument
// list that names an external section.
type SectionRef struct {
	Meta
	Name string
}

func (SectionRef) isExpr() {}

// SelfRef is the standalone @self primary.
type SelfRef struct {
	Meta
}

func (SelfRef) isExpr() {}

// RangeExpr is @self[start..field] (start defaults to 0 when nil).
type RangeExpr struct {
	Meta
	Start Expr // nil means 0
	End   string
}

func (RangeExpr) isExpr() {}
