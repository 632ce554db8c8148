package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/delbin-lang/delbin/internal/delbin/parser"
)

func run(t *testing.T, src string, env Environment, sections Sections) Result {
	t.Helper()
	file, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := Run(file, env, sections)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func TestRun_OffsetofOwnFieldDuringSizing(t *testing.T) {
	res := run(t, `@endian = little;
struct h @packed {
	magic: [u8; 4] = @bytes("TEST");
	_pad: [u8; 32 - @offsetof(_pad)];
}`, Environment{}, Sections{})
	if len(res.Data) != 32 {
		t.Fatalf("len = %d, want 32", len(res.Data))
	}
}

func TestRun_PendingToPendingForwardReferenceFails(t *testing.T) {
	file, err := parser.Parse(`@endian = little;
struct h @packed {
	a: u32 = @crc32(@self[..a], @self[..b]);
	b: u32 = @crc32(@self[..b]);
}`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(file, Environment{}, Sections{}); err == nil {
		t.Fatal("expected a pending-to-pending forward reference to fail")
	} else if !strings.Contains(err.Error(), "E04005") {
		t.Fatalf("got %v, want E04005", err)
	}
}

func TestRun_BackwardPendingReferenceSucceeds(t *testing.T) {
	// b's checksum covers a's already-resolved pending slot; only
	// forward references across pending fields are disallowed.
	res := run(t, `@endian = little;
struct h @packed {
	a: u32 = @crc32(@self[..a]);
	b: u32 = @crc32(@self[..b]);
}`, Environment{}, Sections{})
	if len(res.Data) != 8 {
		t.Fatalf("len = %d, want 8", len(res.Data))
	}
}

func TestRun_MultiArgChecksumOrderPreserved(t *testing.T) {
	a := run(t, `@endian = little; struct h @packed { c: u32 = @crc32(x, y); }`,
		Environment{}, Sections{"x": []byte("AB"), "y": []byte("CD")})
	b := run(t, `@endian = little; struct h @packed { c: u32 = @crc32(y, x); }`,
		Environment{}, Sections{"x": []byte("AB"), "y": []byte("CD")})
	if bytes.Equal(a.Data, b.Data) {
		t.Fatal("argument order should affect the checksum")
	}
}

func TestRun_StringEnvValueInArithmeticIsError(t *testing.T) {
	file, err := parser.Parse(`@endian = little; struct h @packed { v: u32 = ${NAME}; }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(file, Environment{"NAME": Str("oops")}, Sections{}); err == nil {
		t.Fatal("expected error using a string env value in arithmetic")
	}
}

func TestRun_UndefinedEnvVarIsError(t *testing.T) {
	file, err := parser.Parse(`@endian = little; struct h @packed { v: u32 = ${MISSING}; }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(file, Environment{}, Sections{}); err == nil {
		t.Fatal("expected error for undefined env var")
	}
}

func TestRun_OffsetofUndefinedFieldIsError(t *testing.T) {
	file, err := parser.Parse(`@endian = little; struct h @packed { v: u32 = @offsetof(nope); }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(file, Environment{}, Sections{}); err == nil {
		t.Fatal("expected error for undefined field in @offsetof")
	}
}

func TestRun_SHA256MustBe32Bytes(t *testing.T) {
	file, err := parser.Parse(`@endian = little; struct h @packed { v: [u8; 16] = @sha256(image); }`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(file, Environment{}, Sections{"image": []byte("x")}); err == nil {
		t.Fatal("expected error assigning @sha256 to a non-32-byte array")
	}
}

func TestRun_SizeofArbitraryExpressionFallsBackToNumericEval(t *testing.T) {
	// @sizeof's argument isn't limited to @self or a section/field name;
	// any length-yielding expression is accepted (spec.md §4.3), so
	// @sizeof(${N} + 1) should evaluate the same as @offsetof/arithmetic
	// would rather than rejecting the form outright.
	res := run(t, `@endian = little;
struct h @packed {
	v: u32 = @sizeof(${N} + 1);
}`, Environment{"N": Int(7)}, Sections{})
	if len(res.Data) != 4 || res.Data[0] != 8 {
		t.Fatalf("data = % X, want a u32 holding 8", res.Data)
	}
}

func TestExplain_NeverEmitsSelfReferentialChecksum(t *testing.T) {
	file, err := parser.Parse(`@endian = little;
struct h @packed {
	crc: u32 = @crc32(@self[..crc]);
	_pad: [u8; 16 - @offsetof(_pad)];
}`)
	if err != nil {
		t.Fatal(err)
	}
	fields, total, err := Explain(file, Environment{}, Sections{})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if total != 16 {
		t.Fatalf("total = %d, want 16", total)
	}
	if len(fields) != 2 || fields[0].Name != "crc" || fields[1].Name != "_pad" {
		t.Fatalf("fields = %+v", fields)
	}
}
