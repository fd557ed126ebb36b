package ast

import (
	"fmt"
	"strings"
)

// BinOpKind enumerates the binary operator discriminants. UserDefined
// carries its symbol and priority on the owning BinaryOp node itself,
// since the set of user symbols is open and not enumerable here.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpLessThan
	OpAssign
	OpUserDefined
	OpUnknown
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpLessThan:
		return "<"
	case OpAssign:
		return "="
	case OpUserDefined:
		return "user-defined"
	default:
		return "unknown"
	}
}

// BuiltinPrecedence returns the fixed precedence of a built-in binary
// operator. UserDefined and Unknown have no fixed precedence here; a
// UserDefined BinaryOp node carries its own Priority field instead.
func BuiltinPrecedence(k BinOpKind) int {
	switch k {
	case OpAssign:
		return 2
	case OpLessThan:
		return 10
	case OpAdd, OpSub:
		return 20
	case OpMul:
		return 40
	default:
		return -1
	}
}

// Number is a floating-point literal.
type Number struct {
	base
	Value float64
}

func NewNumber(loc SourceLoc, value float64) *Number {
	return &Number{base: newBase(loc), Value: value}
}

func (*Number) Kind() Kind       { return KindNumber }
func (*Number) exprNode()        {}
func (n *Number) String() string { return fmt.Sprintf("%g", n.Value) }

// Variable is a reference to a named binding (parameter, induction
// variable, or var-binding). Resolution against a particular scope is
// left to the code-gen collaborator (I3).
type Variable struct {
	base
	Name string
}

func NewVariable(loc SourceLoc, name string) *Variable {
	return &Variable{base: newBase(loc), Name: name}
}

func (*Variable) Kind() Kind       { return KindVariable }
func (*Variable) exprNode()        {}
func (v *Variable) String() string { return v.Name }

// BinaryOp is a two-operand expression. Symbol and Priority are only
// meaningful when Op is OpUserDefined; code-gen reconstructs the mangled
// callee name from them via Mangle.
type BinaryOp struct {
	base
	Op       BinOpKind
	LHS, RHS Expr
	Symbol   string
	Priority int
}

func NewBinaryOp(loc SourceLoc, op BinOpKind, lhs, rhs Expr, symbol string, priority int) *BinaryOp {
	return &BinaryOp{base: newBase(loc), Op: op, LHS: lhs, RHS: rhs, Symbol: symbol, Priority: priority}
}

func (*BinaryOp) Kind() Kind { return KindBinaryOp }
func (*BinaryOp) exprNode()  {}
func (b *BinaryOp) String() string {
	sym := b.Op.String()
	if b.Op == OpUserDefined {
		sym = b.Symbol
	}
	return fmt.Sprintf("(%s %s %s)", b.LHS, sym, b.RHS)
}

// UnaryOp is a single-operand prefix expression. Mangled is the linkage
// name produced by Mangle(1, opcode, 0) at parse time, cached here so
// code-gen never needs to recompute it.
type UnaryOp struct {
	base
	Opcode  string
	Operand Expr
	Mangled string
}

func NewUnaryOp(loc SourceLoc, opcode string, operand Expr, mangled string) *UnaryOp {
	return &UnaryOp{base: newBase(loc), Opcode: opcode, Operand: operand, Mangled: mangled}
}

func (*UnaryOp) Kind() Kind       { return KindUnaryOp }
func (*UnaryOp) exprNode()        {}
func (u *UnaryOp) String() string { return fmt.Sprintf("(%s%s)", u.Opcode, u.Operand) }

// Call invokes a resolved Prototype. Callee is a shared pointer into the
// parser's prototype table (I2), never a copied name.
type Call struct {
	base
	Callee *Prototype
	Args   []Expr
}

func NewCall(loc SourceLoc, callee *Prototype, args []Expr) *Call {
	return &Call{base: newBase(loc), Callee: callee, Args: args}
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) exprNode()  {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.Name, strings.Join(parts, " "))
}

// If is a conditional expression. Else is mandatory: every expression
// must yield a value, so there is no arm-less form (see DESIGN.md).
type If struct {
	base
	Cond, Then, Else Expr
}

func NewIf(loc SourceLoc, cond, then, els Expr) *If {
	return &If{base: newBase(loc), Cond: cond, Then: then, Else: els}
}

func (*If) Kind() Kind { return KindIf }
func (*If) exprNode()  {}
func (i *If) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

// For is a counted loop. Step may be nil, meaning 1.0 at code-gen time.
// The for-expression's own value is always the neutral 0.0.
type For struct {
	base
	InductionName    string
	Start, End, Step Expr
	Body             Expr
}

func NewFor(loc SourceLoc, induction string, start, end, step, body Expr) *For {
	return &For{base: newBase(loc), InductionName: induction, Start: start, End: end, Step: step, Body: body}
}

func (*For) Kind() Kind { return KindFor }
func (*For) exprNode()  {}
func (f *For) String() string {
	step := "1"
	if f.Step != nil {
		step = f.Step.String()
	}
	return fmt.Sprintf("(for %s = %s, %s, %s in %s)", f.InductionName, f.Start, f.End, step, f.Body)
}

// VarBinding is one (name, init) pair of a Var expression. Bindings take
// effect left-to-right; a later binding may reference an earlier one by
// name, and shadows any outer binding of the same name for the remainder
// of the var-expression's body.
type VarBinding struct {
	Name string
	Init Expr
}

// Var introduces one or more local bindings in scope for Body.
type Var struct {
	base
	Bindings []VarBinding
	Body     Expr
}

func NewVar(loc SourceLoc, bindings []VarBinding, body Expr) *Var {
	return &Var{base: newBase(loc), Bindings: bindings, Body: body}
}

func (*Var) Kind() Kind { return KindVar }
func (*Var) exprNode()  {}
func (v *Var) String() string {
	parts := make([]string, len(v.Bindings))
	for i, b := range v.Bindings {
		parts[i] = fmt.Sprintf("%s = %s", b.Name, b.Init)
	}
	return fmt.Sprintf("(var %s in %s)", strings.Join(parts, ", "), v.Body)
}
