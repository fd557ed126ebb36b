// Package lexer provides lexical analysis for the language's source
// text, the first stage of the pipeline that feeds pkg/parser.
//
// Key Features:
//
// Token Recognition:
//   - Keywords: def, extern, if, then, else, for, in, binary, unary, var
//   - Identifiers: ASCII letters, digits, underscore, no leading digit
//   - Literals: 64-bit floats only (no ints, strings, or paths)
//   - Reserved single-character operators: + - * < =
//   - Parens and colon: ( ) :
//   - Dynamically installed user operators (see below)
//
// Comment Handling:
//   - Single-line comments starting with '#', consumed to end-of-line
//   - No block comments
//
// Position Tracking:
//   - 1-based line, 0-based column on every token
//   - Every '\r' and every '\n' advances the line and resets the column,
//     so a Windows "\r\n" ending counts as two line breaks
//
// User-Defined Operators:
//
// The token set is not fixed before parsing begins. When the
// previously-returned token was `binary` or `unary`, the Lexer treats
// the next lexeme as the operator symbol being declared and installs it
// into a per-instance OperatorTable as UserBinaryOp/UserUnaryOp. Every
// later occurrence of that symbol is then recognized via a longest-match
// search over the table rather than the built-in single-character
// table, so a two-character symbol like "!=" is preferred over treating
// it as "!" followed by "=" once it has been installed.
//
// The OperatorTable belongs to the Lexer instance, not to the process:
// two Lexers (or one Lexer reused across two compilations in the same
// test binary) never see each other's installed operators.
//
// Resource Ownership:
//   - NewFile opens and owns its *os.File; Close releases it.
//   - NewStdin wraps os.Stdin without taking ownership; Close is a no-op.
//
// Error Handling:
//   - Unknown characters and malformed numbers are non-fatal: the Sink
//     records a diagnostic and the Lexer resynchronizes by skipping the
//     offending byte(s) and continuing.
//
// Usage Example:
//
//	sink := errsink.New(os.Stderr)
//	lx := lexer.New(strings.NewReader("def foo(x y) x+y"), "<input>", sink)
//	for tok := lx.Peek(); tok.Kind != lexer.Eof; tok = lx.Advance() {
//	    fmt.Println(tok.Kind, tok.Lexeme)
//	}
package lexer
