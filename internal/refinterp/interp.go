package refinterp

import (
	"fmt"
	"math"

	"github.com/ksc-lang/ksc/internal/ast"
	"github.com/ksc-lang/ksc/pkg/codegen"
)

// Interp is a pkg/codegen.Visitor that evaluates a parsed forest
// directly, the tree-walking analogue of the teacher's eval.Evaluator
// collapsed from a heterogeneous value.Value to this language's single
// float64 value type. One Interp is reused across an entire forest so
// that a def earlier in source order is callable from one later in it.
type Interp struct {
	functions map[string]*ast.Function
	externs   map[string]*ast.Prototype
	env       *Env
}

// New returns an Interp with an empty top-level scope.
func New() *Interp {
	return &Interp{
		functions: make(map[string]*ast.Function),
		externs:   make(map[string]*ast.Prototype),
		env:       NewEnv(),
	}
}

// Run evaluates forest and returns the float64 produced by the last
// top-level item (typically a bare expression), or 0 if forest is empty.
func (it *Interp) Run(forest []ast.Node) (float64, error) {
	results, err := codegen.Generate(it, forest)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	last, ok := results[len(results)-1].(float64)
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (it *Interp) VisitNumber(n *ast.Number) (codegen.Value, error) {
	return n.Value, nil
}

func (it *Interp) VisitVariable(v *ast.Variable) (codegen.Value, error) {
	val, ok := it.env.Get(v.Name)
	if !ok {
		return nil, fmt.Errorf("%s: undefined variable %q", v.Loc(), v.Name)
	}
	return val, nil
}

func (it *Interp) VisitBinaryOp(b *ast.BinaryOp) (codegen.Value, error) {
	if b.Op == ast.OpAssign {
		target := b.LHS.(*ast.Variable)
		rhs, err := it.evalFloat(b.RHS)
		if err != nil {
			return nil, err
		}
		if !it.env.Assign(target.Name, rhs) {
			it.env.Set(target.Name, rhs)
		}
		return rhs, nil
	}

	lhs, err := it.evalFloat(b.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := it.evalFloat(b.RHS)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case ast.OpAdd:
		return lhs + rhs, nil
	case ast.OpSub:
		return lhs - rhs, nil
	case ast.OpMul:
		return lhs * rhs, nil
	case ast.OpLessThan:
		if lhs < rhs {
			return 1.0, nil
		}
		return 0.0, nil
	case ast.OpUserDefined:
		return it.callMangled(ast.Mangle(2, b.Symbol, b.Priority), b.Loc(), lhs, rhs)
	default:
		return nil, fmt.Errorf("%s: unsupported binary operator", b.Loc())
	}
}

func (it *Interp) VisitUnaryOp(u *ast.UnaryOp) (codegen.Value, error) {
	operand, err := it.evalFloat(u.Operand)
	if err != nil {
		return nil, err
	}
	return it.callMangled(u.Mangled, u.Loc(), operand)
}

func (it *Interp) VisitCall(c *ast.Call) (codegen.Value, error) {
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := it.evalFloat(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return it.callMangled(c.Callee.Name, c.Loc(), args...)
}

func (it *Interp) VisitIf(i *ast.If) (codegen.Value, error) {
	cond, err := it.evalFloat(i.Cond)
	if err != nil {
		return nil, err
	}
	if cond != 0 {
		return codegen.Walk(it, i.Then)
	}
	return codegen.Walk(it, i.Else)
}

// VisitFor evaluates the counted loop and always returns 0.0 (the
// neutral value), never the body's last result. End is re-evaluated as
// a boolean condition before every body execution (non-zero continues,
// zero stops), not compared numerically against the induction variable
// — the same end_cond != 0.0 test the original codegen's CreateFCmpONE
// performs, not a bound the induction variable is checked against.
func (it *Interp) VisitFor(f *ast.For) (codegen.Value, error) {
	start, err := it.evalFloat(f.Start)
	if err != nil {
		return nil, err
	}

	loopEnv := it.env.Extend()
	loopEnv.Set(f.InductionName, start)

	prevEnv := it.env
	it.env = loopEnv
	defer func() { it.env = prevEnv }()

	step := 1.0
	if f.Step != nil {
		step, err = it.evalFloat(f.Step)
		if err != nil {
			return nil, err
		}
	}

	for {
		endVal, err := it.evalFloat(f.End)
		if err != nil {
			return nil, err
		}
		if endVal == 0 {
			return 0.0, nil
		}
		if _, err := codegen.Walk(it, f.Body); err != nil {
			return nil, err
		}
		induction, _ := loopEnv.Get(f.InductionName)
		loopEnv.Set(f.InductionName, induction+step)
	}
}

func (it *Interp) VisitVar(v *ast.Var) (codegen.Value, error) {
	scope := it.env.Extend()
	prevEnv := it.env
	it.env = scope
	defer func() { it.env = prevEnv }()

	for _, b := range v.Bindings {
		val, err := it.evalFloat(b.Init)
		if err != nil {
			return nil, err
		}
		scope.Set(b.Name, val)
	}
	return codegen.Walk(it, v.Body)
}

func (it *Interp) VisitPrototype(p *ast.Prototype) (codegen.Value, error) {
	it.externs[p.Name] = p
	return nil, nil
}

func (it *Interp) VisitFunction(fn *ast.Function) (codegen.Value, error) {
	it.functions[fn.Proto.Name] = fn
	return nil, nil
}

// evalFloat is the common "Walk and assert float64" helper every
// arithmetic-context caller needs, since Value is opaque to codegen but
// every variant this Visitor produces is in fact a float64.
func (it *Interp) evalFloat(e ast.Expr) (float64, error) {
	v, err := codegen.Walk(it, e)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: expected a numeric value, got %T", e.Loc(), v)
	}
	return f, nil
}

func (it *Interp) callMangled(name string, loc ast.SourceLoc, args ...float64) (float64, error) {
	fn, ok := it.functions[name]
	if !ok {
		if _, isExtern := it.externs[name]; isExtern {
			return 0, fmt.Errorf("%s: %q is declared extern but has no reference implementation", loc, name)
		}
		return 0, fmt.Errorf("%s: call to undefined function %q", loc, name)
	}
	return it.invoke(fn, args)
}

func (it *Interp) invoke(fn *ast.Function, args []float64) (float64, error) {
	if len(args) != len(fn.Proto.Params) {
		return 0, fmt.Errorf("%s: %q expects %d argument(s), got %d",
			fn.Loc(), fn.Proto.Name, len(fn.Proto.Params), len(args))
	}
	callEnv := NewEnv()
	for i, param := range fn.Proto.Params {
		callEnv.Set(param, args[i])
	}

	prevEnv := it.env
	it.env = callEnv
	defer func() { it.env = prevEnv }()

	v, err := codegen.Walk(it, fn.Body)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: function body did not produce a numeric value", fn.Loc())
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%s: %q produced NaN", fn.Loc(), fn.Proto.Name)
	}
	return f, nil
}
