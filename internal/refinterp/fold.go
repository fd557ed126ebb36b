package refinterp

import "github.com/ksc-lang/ksc/internal/ast"

// Fold applies the trivial constant-folding pass internal/envconfig's
// OptimizeIR flag gates: every BinaryOp with a fixed-precedence builtin
// operator (+ - * <) whose operands are both already Number literals
// collapses to a single Number. User-defined operators, Assign, and
// anything involving a Variable, Call, If, For, or Var are left alone —
// the reference interpreter has no notion of purity for those, and
// folding them would require evaluating side effects at "compile" time.
//
// Fold returns a new forest; it never mutates nodes in place, since a
// folded Number is a distinct node with its own id (I1).
func Fold(forest []ast.Node) []ast.Node {
	out := make([]ast.Node, len(forest))
	for i, n := range forest {
		out[i] = foldNode(n)
	}
	return out
}

func foldNode(n ast.Node) ast.Node {
	switch v := n.(type) {
	case *ast.Function:
		return ast.NewFunction(v.Loc(), v.Proto, foldExpr(v.Body))
	case ast.Expr:
		return foldExpr(v)
	default:
		return n
	}
}

func foldExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *ast.BinaryOp:
		lhs := foldExpr(v.LHS)
		rhs := foldExpr(v.RHS)
		if folded, ok := foldConstant(v.Op, lhs, rhs); ok {
			return ast.NewNumber(v.Loc(), folded)
		}
		return ast.NewBinaryOp(v.Loc(), v.Op, lhs, rhs, v.Symbol, v.Priority)
	case *ast.UnaryOp:
		return ast.NewUnaryOp(v.Loc(), v.Opcode, foldExpr(v.Operand), v.Mangled)
	case *ast.Call:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = foldExpr(a)
		}
		return ast.NewCall(v.Loc(), v.Callee, args)
	case *ast.If:
		return ast.NewIf(v.Loc(), foldExpr(v.Cond), foldExpr(v.Then), foldExpr(v.Else))
	case *ast.For:
		var step ast.Expr
		if v.Step != nil {
			step = foldExpr(v.Step)
		}
		return ast.NewFor(v.Loc(), v.InductionName, foldExpr(v.Start), foldExpr(v.End), step, foldExpr(v.Body))
	case *ast.Var:
		bindings := make([]ast.VarBinding, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = ast.VarBinding{Name: b.Name, Init: foldExpr(b.Init)}
		}
		return ast.NewVar(v.Loc(), bindings, foldExpr(v.Body))
	default:
		return e
	}
}

func foldConstant(op ast.BinOpKind, lhs, rhs ast.Expr) (float64, bool) {
	ln, ok := lhs.(*ast.Number)
	if !ok {
		return 0, false
	}
	rn, ok := rhs.(*ast.Number)
	if !ok {
		return 0, false
	}
	switch op {
	case ast.OpAdd:
		return ln.Value + rn.Value, true
	case ast.OpSub:
		return ln.Value - rn.Value, true
	case ast.OpMul:
		return ln.Value * rn.Value, true
	case ast.OpLessThan:
		if ln.Value < rn.Value {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}
