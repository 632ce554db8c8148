package parser

import (
	"testing"

	"github.com/delbin-lang/delbin/internal/delbin/ast"
	"github.com/delbin-lang/delbin/internal/delbin/types"
)

func TestParse_MinimalStruct(t *testing.T) {
	file, err := Parse(`@endian = little; struct h @packed { v: u32 = 1; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Endian != types.LittleEndian {
		t.Fatalf("endian = %v, want little", file.Endian)
	}
	if file.Struct.Name != "h" || !file.Struct.Packed {
		t.Fatalf("struct = %+v", file.Struct)
	}
	if len(file.Struct.Fields) != 1 || file.Struct.Fields[0].Name != "v" {
		t.Fatalf("fields = %+v", file.Struct.Fields)
	}
}

func TestParse_BigEndian(t *testing.T) {
	file, err := Parse(`@endian = big; struct h { v: u8; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Endian != types.BigEndian {
		t.Fatalf("endian = %v, want big", file.Endian)
	}
}

func TestParse_RequireEngineDirective(t *testing.T) {
	file, err := Parse(`@endian = little; @require_engine = "^1.0.0"; struct h { v: u8; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.RequireEngine == nil || *file.RequireEngine != "^1.0.0" {
		t.Fatalf("RequireEngine = %v, want \"^1.0.0\"", file.RequireEngine)
	}
}

func TestParse_ArrayType(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: [u8; 16]; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	arr, ok := file.Struct.Fields[0].Type.(ast.Array)
	if !ok {
		t.Fatalf("type = %T, want ast.Array", file.Struct.Fields[0].Type)
	}
	if arr.Elem != types.U8 {
		t.Fatalf("elem = %v, want u8", arr.Elem)
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	// 1 | 2 & 3 << 4 + 5 parses as 1 | (2 & (3 << (4 + 5))).
	file, err := Parse(`@endian = little; struct h { v: u64 = 1 | 2 & 3 << 4 + 5; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	top, ok := file.Struct.Fields[0].Init.(*ast.BinaryExpr)
	if !ok || top.Op != ast.Or {
		t.Fatalf("top = %+v, want top-level Or", file.Struct.Fields[0].Init)
	}
	and, ok := top.Right.(*ast.BinaryExpr)
	if !ok || and.Op != ast.And {
		t.Fatalf("right of Or = %+v, want And", top.Right)
	}
	shift, ok := and.Right.(*ast.BinaryExpr)
	if !ok || shift.Op != ast.Shl {
		t.Fatalf("right of And = %+v, want Shl", and.Right)
	}
	add, ok := shift.Right.(*ast.BinaryExpr)
	if !ok || add.Op != ast.Add {
		t.Fatalf("right of Shl = %+v, want Add", shift.Right)
	}
}

func TestParse_ParenthesesOverridePrecedence(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: u64 = (1 | 2) & 3; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	top, ok := file.Struct.Fields[0].Init.(*ast.BinaryExpr)
	if !ok || top.Op != ast.And {
		t.Fatalf("top = %+v, want top-level And", file.Struct.Fields[0].Init)
	}
	if _, ok := top.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("left of And = %+v, want parenthesized Or", top.Left)
	}
}

func TestParse_UnaryOperators(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: u64 = ~1; w: u64 = -1; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	u1 := file.Struct.Fields[0].Init.(*ast.UnaryExpr)
	if u1.Op != ast.Not {
		t.Fatalf("v op = %v, want Not", u1.Op)
	}
	u2 := file.Struct.Fields[1].Init.(*ast.UnaryExpr)
	if u2.Op != ast.Neg {
		t.Fatalf("w op = %v, want Neg", u2.Op)
	}
}

func TestParse_BuiltinCallAndRange(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: u32 = @crc32(@self[..v], image); }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := file.Struct.Fields[0].Init.(*ast.BuiltinCall)
	if call.Name != "crc32" || len(call.Args) != 2 {
		t.Fatalf("call = %+v", call)
	}
	rng, ok := call.Args[0].(*ast.RangeExpr)
	if !ok || rng.End != "v" || rng.Start != nil {
		t.Fatalf("arg0 = %+v, want range ending at v with no start", call.Args[0])
	}
	sec, ok := call.Args[1].(*ast.SectionRef)
	if !ok || sec.Name != "image" {
		t.Fatalf("arg1 = %+v, want section ref image", call.Args[1])
	}
}

func TestParse_RangeWithExplicitStart(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: u32 = @crc32(@self[8..v]); }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := file.Struct.Fields[0].Init.(*ast.BuiltinCall)
	rng := call.Args[0].(*ast.RangeExpr)
	lit, ok := rng.Start.(*ast.NumberLit)
	if !ok || lit.Value != 8 {
		t.Fatalf("start = %+v, want literal 8", rng.Start)
	}
}

func TestParse_EnvVarReference(t *testing.T) {
	file, err := Parse(`@endian = little; struct h { v: u32 = ${FOO}; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ref, ok := file.Struct.Fields[0].Init.(*ast.EnvRef)
	if !ok || ref.Name != "FOO" {
		t.Fatalf("init = %+v, want env ref FOO", file.Struct.Fields[0].Init)
	}
}

func TestParse_AlignAttribute(t *testing.T) {
	file, err := Parse(`@endian = little; struct h @align(16) { v: u8; }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if file.Struct.Align == nil || *file.Struct.Align != 16 {
		t.Fatalf("align = %v, want 16", file.Struct.Align)
	}
}

func TestParse_MissingEndianIsError(t *testing.T) {
	if _, err := Parse(`struct h { v: u8; }`); err == nil {
		t.Fatal("expected error for missing @endian directive")
	}
}

func TestParse_UnknownScalarTypeIsError(t *testing.T) {
	if _, err := Parse(`@endian = little; struct h { v: u128; }`); err == nil {
		t.Fatal("expected error for unknown scalar type")
	}
}

func TestParse_TrailingContentIsError(t *testing.T) {
	if _, err := Parse(`@endian = little; struct h { v: u8; } garbage`); err == nil {
		t.Fatal("expected error for trailing content")
	}
}

func TestParse_UnterminatedStructIsError(t *testing.T) {
	if _, err := Parse(`@endian = little; struct h { v: u8;`); err == nil {
		t.Fatal("expected error for unterminated struct body")
	}
}
