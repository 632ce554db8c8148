package builtin

import (
	"bytes"
	"testing"
)

func TestCRC32_HelloWorld(t *testing.T) {
	got := CRC32([]byte("hello world"))
	if got != 0x0D4A1185 {
		t.Fatalf("CRC32 = 0x%08X, want 0x0D4A1185", got)
	}
}

func TestCRC32_Empty(t *testing.T) {
	if got := CRC32(nil); got != 0 {
		t.Fatalf("CRC32(nil) = 0x%08X, want 0", got)
	}
}

func TestSHA256_KnownVector(t *testing.T) {
	sum := SHA256([]byte("abc"))
	want := [32]byte{
		0xba, 0x78, 0x16, 0xbf, 0x8f, 0x01, 0xcf, 0xea,
		0x41, 0x41, 0x40, 0xde, 0x5d, 0xae, 0x22, 0x23,
		0xb0, 0x03, 0x61, 0xa3, 0x96, 0x17, 0x7a, 0x9c,
		0xb4, 0x10, 0xff, 0x61, 0xf2, 0x00, 0x15, 0xad,
	}
	if sum != want {
		t.Fatalf("SHA256(\"abc\") = % X, want % X", sum, want)
	}
}

func TestBytes_ExactFit(t *testing.T) {
	out, truncated := Bytes("ABCD", 4)
	if truncated {
		t.Fatal("unexpected truncation")
	}
	if !bytes.Equal(out, []byte("ABCD")) {
		t.Fatalf("got %q", out)
	}
}

func TestBytes_ZeroPad(t *testing.T) {
	out, truncated := Bytes("AB", 4)
	if truncated {
		t.Fatal("unexpected truncation")
	}
	if !bytes.Equal(out, []byte{'A', 'B', 0, 0}) {
		t.Fatalf("got % X", out)
	}
}

func TestBytes_Truncated(t *testing.T) {
	out, truncated := Bytes("ABCDE", 4)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !bytes.Equal(out, []byte("ABCD")) {
		t.Fatalf("got %q", out)
	}
}

func TestBytes_EmptyTarget(t *testing.T) {
	out, truncated := Bytes("", 0)
	if truncated || len(out) != 0 {
		t.Fatalf("got %q, truncated=%v", out, truncated)
	}
}
