package lexer

// OperatorTable is the lexer's per-instance record of symbols installed
// by `def binary`/`def unary`/`extern binary`/`extern unary` declarations
// seen so far. It is intentionally owned by the Lexer, not shared
// process-wide — the repository's earliest revision used a single
// global table, which produced cross-compilation-unit leakage; per-§4.3
// this design mandates one table per lexer instance instead.
type OperatorTable struct {
	symbols map[string]Kind
}

// NewOperatorTable returns an empty table.
func NewOperatorTable() *OperatorTable {
	return &OperatorTable{symbols: make(map[string]Kind)}
}

// Install records symbol as a user operator of the given kind (always
// UserBinaryOp or UserUnaryOp). Re-installing an already-known symbol
// with a different kind overwrites the previous entry; the parser is
// responsible for rejecting redefinitions (I5), the lexer just records
// what it is told to recognize.
func (t *OperatorTable) Install(symbol string, kind Kind) {
	t.symbols[symbol] = kind
}

// Lookup reports whether symbol has been installed, and if so, which
// kind it lexes as.
func (t *OperatorTable) Lookup(symbol string) (Kind, bool) {
	k, ok := t.symbols[symbol]
	return k, ok
}

// Symbols returns the currently registered symbols, order unspecified.
func (t *OperatorTable) Symbols() []string {
	out := make([]string, 0, len(t.symbols))
	for s := range t.symbols {
		out = append(out, s)
	}
	return out
}
