package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
)

func parseSource(t *testing.T, src string) ([]ast.Node, *errsink.Sink, error) {
	t.Helper()
	var buf bytes.Buffer
	sink := errsink.New(&buf)
	lx := lexer.New(strings.NewReader(src), "test.ks", sink)
	p := New(lx, sink)
	forest, err := p.Parse()
	return forest, sink, err
}

func requireFunction(t *testing.T, n ast.Node) *ast.Function {
	t.Helper()
	fn, ok := n.(*ast.Function)
	if !ok {
		t.Fatalf("node is %T, want *ast.Function", n)
	}
	return fn
}

// S1: a simple function definition parses to Function{Proto, Body}.
func TestSimpleFunctionDefinition(t *testing.T) {
	forest, sink, err := parseSource(t, "def foo(x y) x+y")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	if len(forest) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(forest))
	}
	fn := requireFunction(t, forest[0])
	if fn.Proto.Name != "foo" || len(fn.Proto.Params) != 2 {
		t.Fatalf("unexpected prototype: %+v", fn.Proto)
	}
	bin, ok := fn.Body.(*ast.BinaryOp)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("body = %#v, want a '+' BinaryOp", fn.Body)
	}
}

// S2: extern declares a Prototype with no Function wrapper.
func TestExternDeclaration(t *testing.T) {
	forest, sink, err := parseSource(t, "extern sin(x)")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	if len(forest) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(forest))
	}
	proto, ok := forest[0].(*ast.Prototype)
	if !ok {
		t.Fatalf("node is %T, want *ast.Prototype", forest[0])
	}
	if proto.Name != "sin" {
		t.Fatalf("proto.Name = %q, want sin", proto.Name)
	}
}

// S3: a call resolves Callee to the *shared* Prototype pointer
// registered by the matching extern/def (I2).
func TestCallResolvesSharedPrototypePointer(t *testing.T) {
	forest, sink, err := parseSource(t, "extern sin(x)\nsin(1)")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	if len(forest) != 2 {
		t.Fatalf("got %d top-level nodes, want 2", len(forest))
	}
	proto := forest[0].(*ast.Prototype)
	call, ok := forest[1].(*ast.Call)
	if !ok {
		t.Fatalf("forest[1] = %T, want a bare *ast.Call", forest[1])
	}
	if call.Callee != proto {
		t.Fatalf("call.Callee does not point at the registered prototype")
	}
}

// S4: calling an undefined function is a non-fatal diagnostic, not a
// crash, and parsing continues to subsequent top-level items.
func TestUndefinedCalleeIsNonFatal(t *testing.T) {
	forest, sink, err := parseSource(t, "foo(1)\ndef bar() 1")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if len(sink.Reports()) != 1 || sink.Reports()[0].Kind != errsink.ParseUndefinedCallee {
		t.Fatalf("expected one ParseUndefinedCallee report, got %v", sink.Reports())
	}
	if len(forest) != 1 {
		t.Fatalf("got %d top-level nodes, want 1 (bar survives)", len(forest))
	}
	fn := requireFunction(t, forest[0])
	if fn.Proto.Name != "bar" {
		t.Fatalf("surviving definition = %q, want bar", fn.Proto.Name)
	}
}

// S5: if/then/else builds an If node with all three arms populated.
func TestIfExpression(t *testing.T) {
	forest, sink, err := parseSource(t, "def f(x) if x<0 then 0 else x")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[0])
	ifExpr, ok := fn.Body.(*ast.If)
	if !ok {
		t.Fatalf("body = %T, want *ast.If", fn.Body)
	}
	if _, ok := ifExpr.Cond.(*ast.BinaryOp); !ok {
		t.Fatalf("cond = %T, want *ast.BinaryOp", ifExpr.Cond)
	}
}

// S6: for-loop with an explicit step parses start/end/step/body and
// leaves Step non-nil; omitting the step leaves it nil.
func TestForLoopWithAndWithoutStep(t *testing.T) {
	forest, sink, err := parseSource(t, "def f() for i = 1 : i<10 : 2 in i")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[0])
	forExpr, ok := fn.Body.(*ast.For)
	if !ok {
		t.Fatalf("body = %T, want *ast.For", fn.Body)
	}
	if forExpr.Step == nil {
		t.Fatalf("expected a non-nil Step")
	}

	forest2, sink2, err2 := parseSource(t, "def f() for i = 1 : i<10 in i")
	if err2 != nil {
		t.Fatalf("Parse returned fatal error: %v", err2)
	}
	if sink2.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink2.Reports())
	}
	fn2 := requireFunction(t, forest2[0])
	forExpr2 := fn2.Body.(*ast.For)
	if forExpr2.Step != nil {
		t.Fatalf("expected a nil Step when omitted, got %v", forExpr2.Step)
	}
}

// S7: var introduces left-to-right bindings, later ones shadowing and
// able to reference earlier ones.
func TestVarBindingsLeftToRight(t *testing.T) {
	forest, sink, err := parseSource(t, "def f() var x = 1, y = x+1 in y")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[0])
	varExpr, ok := fn.Body.(*ast.Var)
	if !ok {
		t.Fatalf("body = %T, want *ast.Var", fn.Body)
	}
	if len(varExpr.Bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(varExpr.Bindings))
	}
	if varExpr.Bindings[0].Name != "x" || varExpr.Bindings[1].Name != "y" {
		t.Fatalf("unexpected binding order: %+v", varExpr.Bindings)
	}
}

// S8: a malformed operator symbol (alphanumeric, or redefining a
// protected built-in character) is fatal.
func TestBadOperatorSymbolIsFatal(t *testing.T) {
	_, _, err := parseSource(t, "def binary x9 (a b) a")
	if err == nil {
		t.Fatalf("expected a fatal error for an alphanumeric operator symbol")
	}
	if _, ok := err.(*errsink.FatalError); !ok {
		t.Fatalf("err = %T, want *errsink.FatalError", err)
	}

	_, _, err2 := parseSource(t, "def binary + (a b) a")
	if err2 == nil {
		t.Fatalf("expected a fatal error for redefining the protected '+' character")
	}
}

// P1: every node in a parsed forest has a unique id.
func TestNodeIDsUniqueAcrossForest(t *testing.T) {
	forest, sink, err := parseSource(t, "def a(x) x+1\ndef b(x) x-1\na(b(1))")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	seen := make(map[uint64]bool)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if seen[n.ID()] {
			t.Fatalf("duplicate node id %d", n.ID())
		}
		seen[n.ID()] = true
		switch v := n.(type) {
		case *ast.Function:
			walk(v.Proto)
			walk(v.Body)
		case *ast.BinaryOp:
			walk(v.LHS)
			walk(v.RHS)
		case *ast.Call:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	for _, n := range forest {
		walk(n)
	}
	if len(seen) == 0 {
		t.Fatalf("walked zero nodes")
	}
}

// P4: a duplicate function name is fatal (I6).
func TestDuplicateFunctionNameIsFatal(t *testing.T) {
	_, _, err := parseSource(t, "def foo(x) x\ndef foo(y) y")
	if err == nil {
		t.Fatalf("expected a fatal error for duplicate function name")
	}
	fe, ok := err.(*errsink.FatalError)
	if !ok || fe.Kind != errsink.ParseDuplicateFunction {
		t.Fatalf("err = %v, want ParseDuplicateFunction", err)
	}
}

// P5: a duplicate operator symbol is fatal (I5).
func TestDuplicateOperatorSymbolIsFatal(t *testing.T) {
	_, _, err := parseSource(t, "def binary ** 10 (a b) a\ndef binary ** 20 (a b) b")
	if err == nil {
		t.Fatalf("expected a fatal error for duplicate operator symbol")
	}
	fe, ok := err.(*errsink.FatalError)
	if !ok || fe.Kind != errsink.ParseDuplicateOperator {
		t.Fatalf("err = %v, want ParseDuplicateOperator", err)
	}
}

// Assignment folds to a BinaryOp of kind OpAssign whose LHS must be a
// *ast.Variable; any other target is fatal.
func TestAssignmentRequiresVariableTarget(t *testing.T) {
	forest, sink, err := parseSource(t, "def f(x) x = 5")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[0])
	bin, ok := fn.Body.(*ast.BinaryOp)
	if !ok || bin.Op != ast.OpAssign {
		t.Fatalf("body = %#v, want an '=' BinaryOp", fn.Body)
	}
	if _, ok := bin.LHS.(*ast.Variable); !ok {
		t.Fatalf("assignment LHS = %T, want *ast.Variable", bin.LHS)
	}

	_, _, err2 := parseSource(t, "def f(x) (x+1) = 5")
	if err2 == nil {
		t.Fatalf("expected a fatal error for a non-variable assignment target")
	}
}

// User-defined binary operators parse through the same Pratt loop as
// built-ins, respecting the declared priority against '+'.
func TestUserDefinedBinaryOperatorPrecedence(t *testing.T) {
	src := "def binary ** 50 (base exp) base\ndef f(a b c) a ** b + c"
	forest, sink, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[1])
	top, ok := fn.Body.(*ast.BinaryOp)
	if !ok || top.Op != ast.OpAdd {
		t.Fatalf("top-level op = %#v, want '+' (lower precedence than **)", fn.Body)
	}
	lhs, ok := top.LHS.(*ast.BinaryOp)
	if !ok || lhs.Op != ast.OpUserDefined || lhs.Symbol != "**" {
		t.Fatalf("lhs = %#v, want the user-defined ** operator", top.LHS)
	}
}

// User-defined unary operators mangle through ast.Mangle at parse time.
func TestUserDefinedUnaryOperatorMangling(t *testing.T) {
	src := "def unary ! (x) x\ndef f(x) !x"
	forest, sink, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	fn := requireFunction(t, forest[1])
	un, ok := fn.Body.(*ast.UnaryOp)
	if !ok {
		t.Fatalf("body = %T, want *ast.UnaryOp", fn.Body)
	}
	if un.Mangled != ast.Mangle(1, "!", 0) {
		t.Fatalf("mangled = %q, want %q", un.Mangled, ast.Mangle(1, "!", 0))
	}
}

// A bare top-level expression is appended to the forest unwrapped,
// per §4.2: no synthetic enclosing function.
func TestBareTopLevelExpressionUnwrapped(t *testing.T) {
	forest, sink, err := parseSource(t, "1+2")
	if err != nil {
		t.Fatalf("Parse returned fatal error: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.Reports())
	}
	top, ok := forest[0].(*ast.BinaryOp)
	if !ok || top.Op != ast.OpAdd {
		t.Fatalf("forest[0] = %#v, want a bare *ast.BinaryOp", forest[0])
	}
}
