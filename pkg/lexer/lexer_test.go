package lexer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ksc-lang/ksc/pkg/errsink"
)

func newTestLexer(t *testing.T, input string) (*Lexer, *errsink.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := errsink.New(&buf)
	return New(strings.NewReader(input), "test.ks", sink), sink
}

func collectTokens(l *Lexer) []Token {
	var toks []Token
	for {
		tok := l.Peek()
		toks = append(toks, tok)
		if tok.Kind == Eof {
			return toks
		}
		l.Advance()
	}
}

func TestAdvanceKeywordsAndPunctuation(t *testing.T) {
	input := "def extern if then else for in binary unary var ( ) : + - * < ="
	l, _ := newTestLexer(t, input)

	want := []Kind{
		Def, Extern, If, Then, Else, For, In, Binary, Unary, Var,
		LeftParen, RightParen, Colon,
		BuiltinOp, BuiltinOp, BuiltinOp, BuiltinOp, BuiltinOp,
		Eof,
	}

	toks := collectTokens(l)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind = %v, want %v (lexeme %q)", i, toks[i].Kind, k, toks[i].Lexeme)
		}
	}
}

func TestAdvanceIdentifierAndNumberAdjacency(t *testing.T) {
	l, _ := newTestLexer(t, "abc123 123abc")
	toks := collectTokens(l)
	want := []struct {
		kind   Kind
		lexeme string
	}{
		{Identifier, "abc123"},
		{Number, "123"},
		{Identifier, "abc"},
		{Eof, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Lexeme != w.lexeme {
			t.Errorf("token %d = %v %q, want %v %q", i, toks[i].Kind, toks[i].Lexeme, w.kind, w.lexeme)
		}
	}
}

func TestBadNumberReportsOnceAndResyncs(t *testing.T) {
	l, sink := newTestLexer(t, "1.2.3")
	toks := collectTokens(l)

	want := []struct {
		kind   Kind
		lexeme string
	}{
		{Number, "1.2"},
		{Number, "3"},
		{Eof, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Lexeme != w.lexeme {
			t.Errorf("token %d = %v %q, want %v %q", i, toks[i].Kind, toks[i].Lexeme, w.kind, w.lexeme)
		}
	}
	if len(sink.Reports()) != 2 {
		t.Fatalf("expected 2 reports (bad number + stray dot), got %d", len(sink.Reports()))
	}
}

func TestLineComment(t *testing.T) {
	l, _ := newTestLexer(t, "x # this is a comment\ny")
	toks := collectTokens(l)
	want := []Kind{Identifier, Identifier, Eof}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestEmptyInputYieldsOnlyEOF(t *testing.T) {
	l, sink := newTestLexer(t, "")
	tok := l.Peek()
	if tok.Kind != Eof {
		t.Fatalf("expected Eof, got %v", tok.Kind)
	}
	if sink.HasErrors() {
		t.Fatalf("expected no errors for empty input")
	}
}

func TestCommentsAndWhitespaceOnlyYieldsEOF(t *testing.T) {
	l, sink := newTestLexer(t, "   # just a comment\n\n  # another\n")
	tok := l.Peek()
	if tok.Kind != Eof {
		t.Fatalf("expected Eof, got %v", tok.Kind)
	}
	if sink.HasErrors() {
		t.Fatalf("expected no errors")
	}
}

func TestUserOperatorInstallationAndLongestMatch(t *testing.T) {
	l, _ := newTestLexer(t, "binary ** 40")
	toks := collectTokens(l)
	if toks[0].Kind != Binary {
		t.Fatalf("expected Binary, got %v", toks[0].Kind)
	}
	if toks[1].Kind != UserBinaryOp || toks[1].Lexeme != "**" {
		t.Fatalf("expected UserBinaryOp(**), got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
	if toks[2].Kind != Number || toks[2].Lexeme != "40" {
		t.Fatalf("expected Number(40), got %v %q", toks[2].Kind, toks[2].Lexeme)
	}

	// Re-lexing "**" after installation must resolve to the registered
	// symbol as a single token, not two single-char BuiltinOp tokens.
	l2 := New(strings.NewReader("x ** y"), "test.ks", errsink.New(&bytes.Buffer{}))
	l2.ops.Install("**", UserBinaryOp)
	toks2 := collectTokens(l2)
	want := []Kind{Identifier, UserBinaryOp, Identifier, Eof}
	if len(toks2) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks2), len(want), toks2)
	}
	for i, k := range want {
		if toks2[i].Kind != k {
			t.Errorf("token %d: kind = %v, want %v", i, toks2[i].Kind, k)
		}
	}
}

func TestUnaryBangPrefersLongestRegisteredMatch(t *testing.T) {
	// New lexes the first token immediately, so each input starts with
	// an identifier: the operators are installed before the lexer reaches
	// the bytes that use them.
	l := New(strings.NewReader("y !x"), "test.ks", errsink.New(&bytes.Buffer{}))
	l.ops.Install("!", UserUnaryOp)
	toks := collectTokens(l)
	if toks[1].Kind != UserUnaryOp || toks[1].Lexeme != "!" {
		t.Fatalf("expected UserUnaryOp(!), got %v %q", toks[1].Kind, toks[1].Lexeme)
	}
	if toks[2].Kind != Identifier || toks[2].Lexeme != "x" {
		t.Fatalf("expected Identifier(x), got %v %q", toks[2].Kind, toks[2].Lexeme)
	}

	l2 := New(strings.NewReader("y !=x"), "test.ks", errsink.New(&bytes.Buffer{}))
	l2.ops.Install("!", UserUnaryOp)
	l2.ops.Install("!=", UserBinaryOp)
	toks2 := collectTokens(l2)
	if toks2[1].Kind != UserBinaryOp || toks2[1].Lexeme != "!=" {
		t.Fatalf("expected the longer registered symbol != to win, got %v %q", toks2[1].Kind, toks2[1].Lexeme)
	}
}

func TestUnknownCharacterIsNonFatalAndSkipped(t *testing.T) {
	l, sink := newTestLexer(t, "x @ y")
	toks := collectTokens(l)
	want := []Kind{Identifier, Identifier, Eof}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	if len(sink.Reports()) != 1 {
		t.Fatalf("expected 1 report for '@', got %d", len(sink.Reports()))
	}
}

func TestLocationTracking(t *testing.T) {
	l, _ := newTestLexer(t, "ab\ncd")
	first := l.Peek()
	if first.Loc.Line != 1 || first.Loc.Column != 0 {
		t.Fatalf("first token loc = %+v, want line 1 col 0", first.Loc)
	}
	l.Advance()
	second := l.Peek()
	if second.Loc.Line != 2 {
		t.Fatalf("second token loc = %+v, want line 2", second.Loc)
	}
}
