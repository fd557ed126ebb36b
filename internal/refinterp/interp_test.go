package refinterp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ksc-lang/ksc/pkg/errsink"
	"github.com/ksc-lang/ksc/pkg/lexer"
	"github.com/ksc-lang/ksc/pkg/parser"
)

func mustRun(t *testing.T, src string) float64 {
	t.Helper()
	var buf bytes.Buffer
	sink := errsink.New(&buf)
	lx := lexer.New(strings.NewReader(src), "t.ks", sink)
	p := parser.New(lx, sink)
	forest, err := p.Parse()
	require.NoErrorf(t, err, "diagnostics: %v", sink.Reports())
	require.Falsef(t, sink.HasErrors(), "unexpected diagnostics: %v", sink.Reports())
	result, err := New().Run(forest)
	require.NoError(t, err)
	return result
}

func TestBareTopLevelExpressionEvaluates(t *testing.T) {
	if got := mustRun(t, "1+2*3"); got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestFunctionCallAndArithmetic(t *testing.T) {
	src := "def add(a b) a+b\nadd(3 4)"
	if got := mustRun(t, src); got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

// S4: nested if/then/else, condition is float-vs-zero comparison.
func TestNestedIfElse(t *testing.T) {
	src := "def mt1(i) 1\ndef mt(x) if mt1(1) < 5 then if mt1(2) < 3 then 1 else 2 else 3\nmt(0)"
	if got := mustRun(t, src); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

// S5: for-loop checks end before each iteration and always yields 0.
func TestForLoopChecksEndBeforeBodyAndYieldsZero(t *testing.T) {
	src := "def mt1(i) i + 1\ndef mt(x) for i = 1 : i < 5 : 1 in mt1(i + x)\nmt(0)"
	if got := mustRun(t, src); got != 0 {
		t.Fatalf("got %v, want 0 (for's own value is always the neutral constant)", got)
	}
}

// The end condition is checked before the body ever runs, so a loop
// whose start already satisfies the end condition executes zero times
// and still yields the neutral 0.0 without error.
func TestForLoopNeverExecutesBodyWhenStartAlreadyAtEnd(t *testing.T) {
	src := "def f() for i = 5 : i < 5 in neverbound\nf()"
	if got := mustRun(t, src); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

// End is a boolean condition re-evaluated before each iteration, not a
// numeric bound the induction variable is compared against: this counts
// how many times the body actually ran, which TestForLoopChecksEndBefore
// BodyAndYieldsZero cannot detect because it only observes the for's own
// (always-0) value.
func TestForLoopBodyRunsWhileEndConditionHolds(t *testing.T) {
	src := "def f() var s = 0 in (for i = 1 : i < 4 : 1 in (s = s + 1)) + s\nf()"
	if got := mustRun(t, src); got != 3 {
		t.Fatalf("got %v, want 3 (body runs for i = 1, 2, 3)", got)
	}
}

// S6: user binary operators dispatch through the mangled call name.
func TestUserBinaryOperatorDispatch(t *testing.T) {
	src := "def binary / 30 (a b) a + b + 1\ndef mt(x) x / x\nmt(2)"
	if got := mustRun(t, src); got != 5 {
		t.Fatalf("got %v, want 5 (2+2+1)", got)
	}
}

// S7: user unary operators dispatch through the mangled call name.
func TestUserUnaryOperatorDispatch(t *testing.T) {
	src := "def unary ! (a) if a then 0 else 1\ndef mt(x) x + !x\nmt(0)"
	if got := mustRun(t, src); got != 1 {
		t.Fatalf("got %v, want 1 (0 + !0 == 0 + 1)", got)
	}
}

// Var bindings take effect left-to-right: a later initializer may
// reference an earlier binding by name.
func TestVarBindingsSeeEarlierBindings(t *testing.T) {
	src := "def f() var x = 1, y = x+1 in y\nf()"
	if got := mustRun(t, src); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

// A var binding shadows an outer binding of the same name for the
// remainder of its body, and the outer binding is restored once the
// var-expression's body finishes evaluating.
func TestVarBindingShadowsAndRestores(t *testing.T) {
	src := "def f(x) (var x = x+100 in x) + x\nf(1)"
	if got := mustRun(t, src); got != 102 {
		t.Fatalf("got %v, want 102 (101 + 1)", got)
	}
}

func TestAssignmentMutatesNearestBinding(t *testing.T) {
	src := "def f() var x = 1 in (x = x + 1)\nf()"
	if got := mustRun(t, src); got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestExternWithNoReferenceImplementationErrors(t *testing.T) {
	src := "extern sin(x)\nsin(1)"
	var buf bytes.Buffer
	sink := errsink.New(&buf)
	lx := lexer.New(strings.NewReader(src), "t.ks", sink)
	p := parser.New(lx, sink)
	forest, err := p.Parse()
	require.NoError(t, err)
	_, err = New().Run(forest)
	require.Error(t, err, "expected an error calling an extern with no reference implementation")
}
