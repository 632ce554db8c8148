package lexer

import "testing"

func TestLexer_Punctuation(t *testing.T) {
	l := New("@:;,={}[]()..|&<<>>+-~$")
	want := []TokenType{
		TokenAt, TokenColon, TokenSemi, TokenComma, TokenEquals,
		TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenLParen, TokenRParen, TokenDotDot, TokenPipe, TokenAmp,
		TokenShl, TokenShr, TokenPlus, TokenMinus, TokenTilde, TokenDollar,
		TokenEOF,
	}
	for i, wt := range want {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
		if tok.Type != wt {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, wt)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"0", 0},
		{"42", 42},
		{"0x1F", 0x1F},
		{"0b1010", 0b1010},
	}
	for _, c := range cases {
		l := New(c.src)
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("%s: %v", c.src, err)
		}
		if tok.Type != TokenNumber || tok.Value != c.want {
			t.Fatalf("%s: got %v, want %d", c.src, tok, c.want)
		}
	}
}

func TestLexer_NumberOverflowIsError(t *testing.T) {
	l := New("0xFFFFFFFFFFFFFFFFF")
	if _, err := l.Next(); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestLexer_Identifiers(t *testing.T) {
	l := New("_pad foo_bar2 Struct")
	for _, want := range []string{"_pad", "foo_bar2", "Struct"} {
		tok, err := l.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Type != TokenIdent || tok.Literal != want {
			t.Fatalf("got %v, want ident %q", tok, want)
		}
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\"e\0f\x41"`)
	tok, err := l.Next()
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb\tc\\d\"e\x00f\x41"
	if tok.Literal != want {
		t.Fatalf("got %q, want %q", tok.Literal, want)
	}
}

func TestLexer_UnknownEscapeIsError(t *testing.T) {
	l := New(`"\q"`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected error for unknown escape")
	}
}

func TestLexer_UnterminatedStringIsError(t *testing.T) {
	l := New(`"abc`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestLexer_CommentsAndWhitespaceIgnored(t *testing.T) {
	l := New("  // comment\n\t@ // trailing\n:")
	tok, err := l.Next()
	if err != nil || tok.Type != TokenAt {
		t.Fatalf("got %v, %v", tok, err)
	}
	tok, err = l.Next()
	if err != nil || tok.Type != TokenColon {
		t.Fatalf("got %v, %v", tok, err)
	}
}

func TestLexer_LineColumnTracking(t *testing.T) {
	l := New("a\nb")
	first, _ := l.Next()
	second, _ := l.Next()
	if first.Pos.Line != 1 || first.Pos.Column != 1 {
		t.Fatalf("first pos = %v", first.Pos)
	}
	if second.Pos.Line != 2 || second.Pos.Column != 1 {
		t.Fatalf("second pos = %v", second.Pos)
	}
}
