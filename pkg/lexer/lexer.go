package lexer

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
)

// Lexer is a streaming, one-character-of-lookahead tokenizer. It owns a
// per-instance OperatorTable of user-defined symbols installed so far —
// never a process-wide table, so that two Lexers in the same process
// (or the same Lexer re-run in a test) never see each other's operator
// declarations.
type Lexer struct {
	br     *bufio.Reader
	closer io.Closer
	file   string
	line   int64
	column int64

	// pushback is the small ring-buffer-equivalent the longest-match
	// loop uses to put characters back without rewinding the
	// underlying stream. Treated as a stack: the most recently pushed
	// byte is read first.
	pushback []byte

	ops      *OperatorTable
	sink     *errsink.Sink
	lastKind Kind
	cur      Token
}

// New wraps r as a Lexer attributing all locations to file. The caller
// retains ownership of r; New never closes it (see NewFile for the
// owning variant).
func New(r io.Reader, file string, sink *errsink.Sink) *Lexer {
	l := &Lexer{
		br:       bufio.NewReader(r),
		file:     file,
		line:     1,
		column:   0,
		ops:      NewOperatorTable(),
		sink:     sink,
		lastKind: Undefined,
	}
	l.cur = l.computeNext()
	return l
}

// NewFile opens path and returns a Lexer that owns the resulting
// *os.File: Close releases it. On open failure, reports IoOpenFailed
// and returns the error.
func NewFile(path string, sink *errsink.Sink) (*Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		sink.NonFatal(errsink.IoOpenFailed, ast.SourceLoc{File: path, Line: 1}, "%v", err)
		return nil, err
	}
	l := New(f, path, sink)
	l.closer = f
	return l, nil
}

// NewStdin wraps os.Stdin as a Lexer that does not own the stream: Close
// is a no-op, since standard input is shared with the rest of the
// process.
func NewStdin(sink *errsink.Sink) *Lexer {
	return New(os.Stdin, "<stdin>", sink)
}

// Close releases the underlying stream if this Lexer was constructed as
// its owner (NewFile); otherwise it does nothing.
func (l *Lexer) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Peek returns the current token without advancing.
func (l *Lexer) Peek() Token {
	return l.cur
}

// InstalledOperators returns every user-defined operator symbol this
// Lexer has installed so far, order unspecified. Used by a debug
// listing to report which def binary/def unary declarations a source
// file introduced.
func (l *Lexer) InstalledOperators() []string {
	return l.ops.Symbols()
}

// Advance computes and returns the next token, which becomes the new
// current token.
func (l *Lexer) Advance() Token {
	return l.computeNext()
}

func (l *Lexer) currentLoc() ast.SourceLoc {
	return ast.SourceLoc{File: l.file, Line: l.line, Column: l.column}
}

func (l *Lexer) peekByte() (byte, bool) {
	if n := len(l.pushback); n > 0 {
		return l.pushback[n-1], true
	}
	b, err := l.br.ReadByte()
	if err != nil {
		return 0, false
	}
	_ = l.br.UnreadByte()
	return b, true
}

func (l *Lexer) readByte() (byte, bool) {
	if n := len(l.pushback); n > 0 {
		b := l.pushback[n-1]
		l.pushback = l.pushback[:n-1]
		l.column++
		return b, true
	}
	b, err := l.br.ReadByte()
	if err != nil {
		return 0, false
	}
	if b == '\n' || b == '\r' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	return b, true
}

// pushBack undoes the effect of consuming b. Only ever called with
// operator-class bytes (never whitespace or newlines), so plain column
// arithmetic is sufficient to undo it.
func (l *Lexer) pushBack(b byte) {
	l.pushback = append(l.pushback, b)
	l.column--
}

func (l *Lexer) skipLineComment() {
	l.readByte() // consume '#'
	for {
		b, ok := l.peekByte()
		if !ok || b == '\n' || b == '\r' {
			return
		}
		l.readByte()
	}
}

func (l *Lexer) makeToken(kind Kind, lexeme string, loc ast.SourceLoc) Token {
	tok := Token{Kind: kind, Lexeme: lexeme, Loc: loc}
	l.cur = tok
	l.lastKind = kind
	return tok
}

// computeNext implements the full dispatch state machine described in
// §4.1: skip whitespace/comments, check for a pending operator
// installation, then dispatch on the first remaining character class.
func (l *Lexer) computeNext() Token {
	for {
		b, ok := l.peekByte()
		if !ok {
			return l.makeToken(Eof, "", l.currentLoc())
		}
		if isSpace(b) {
			l.readByte()
			continue
		}
		if b == '#' {
			l.skipLineComment()
			continue
		}
		break
	}

	loc := l.currentLoc()

	if l.lastKind == Binary || l.lastKind == Unary {
		return l.installOperator(loc)
	}

	b, _ := l.peekByte()
	switch {
	case isLetter(b):
		return l.readIdentifier(loc)
	case isDigit(b):
		return l.readNumber(loc)
	case b == '(':
		l.readByte()
		return l.makeToken(LeftParen, "(", loc)
	default:
		return l.readOperatorOrReserved(loc)
	}
}

// installOperator implements the "next lexeme after binary/unary is the
// operator symbol being declared" rule. It greedily reads operator-class
// bytes and registers the result in the per-instance OperatorTable so
// that subsequent lookups of the same symbol resolve to a
// UserBinaryOp/UserUnaryOp token.
func (l *Lexer) installOperator(loc ast.SourceLoc) Token {
	kind := UserBinaryOp
	if l.lastKind == Unary {
		kind = UserUnaryOp
	}

	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok || !isOperatorClass(b) {
			break
		}
		l.readByte()
		sb.WriteByte(b)
	}
	sym := sb.String()
	if sym == "" {
		l.sink.NonFatal(errsink.LexUnknownChar, loc, "expected an operator symbol after binary/unary")
		l.lastKind = Undefined
		return l.computeNext()
	}
	l.ops.Install(sym, kind)
	return l.makeToken(kind, sym, loc)
}

func (l *Lexer) readIdentifier(loc ast.SourceLoc) Token {
	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok || !(isLetter(b) || isDigit(b)) {
			break
		}
		l.readByte()
		sb.WriteByte(b)
	}
	name := sb.String()
	return l.makeToken(LookupIdentifier(name), name, loc)
}

// readNumber accumulates digits and at most one decimal point. A second
// '.' is left unconsumed: the number token ends at the good prefix, a
// LexBadNumber diagnostic is reported once, and the stray '.' is picked
// up as its own (separately erroring) token on the next Advance. This is
// what makes "1.2.3" lex as Number("1.2"), a reported error, then
// Number("3") rather than one malformed three-part token.
func (l *Lexer) readNumber(loc ast.SourceLoc) Token {
	var sb strings.Builder
	dotSeen := false
	for {
		b, ok := l.peekByte()
		if !ok {
			break
		}
		if isDigit(b) {
			l.readByte()
			sb.WriteByte(b)
			continue
		}
		if b == '.' {
			if dotSeen {
				l.sink.NonFatal(errsink.LexBadNumber, l.currentLoc(), "number %q has more than one decimal point", sb.String())
				break
			}
			dotSeen = true
			l.readByte()
			sb.WriteByte(b)
			continue
		}
		break
	}
	return l.makeToken(Number, sb.String(), loc)
}

// readOperatorOrReserved implements the longest-match lookup: accumulate
// a maximal run of operator-class bytes, then try progressively shorter
// prefixes against the OperatorTable, pushing back whatever is not
// consumed by the match. If nothing registered matches even a
// single-character prefix, fall back to the reserved-character table,
// and failing that, report an unknown character and retry from the next
// byte.
func (l *Lexer) readOperatorOrReserved(loc ast.SourceLoc) Token {
	var buf []byte
	for {
		b, ok := l.peekByte()
		if !ok || !isOperatorClass(b) {
			break
		}
		l.readByte()
		buf = append(buf, b)
	}

	for length := len(buf); length > 0; length-- {
		candidate := string(buf[:length])
		if kind, ok := l.ops.Lookup(candidate); ok {
			for i := len(buf) - 1; i >= length; i-- {
				l.pushBack(buf[i])
			}
			return l.makeToken(kind, candidate, loc)
		}
	}

	for i := len(buf) - 1; i >= 1; i-- {
		l.pushBack(buf[i])
	}
	first := buf[0]
	if kind := reservedTable[first]; kind != Undefined {
		return l.makeToken(kind, string(first), loc)
	}

	l.sink.NonFatal(errsink.LexUnknownChar, loc, "unexpected character %q", first)
	return l.computeNext()
}
