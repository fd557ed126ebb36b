package codegen

import "github.com/ksc-lang/ksc/internal/ast"

// Value is an opaque handle a Visitor implementation produces for a
// node it has processed. Walk and Generate never inspect it.
type Value any

// Visitor is the contract every back end (LLVM IR emission, a
// tree-walking reference interpreter, a future bytecode compiler)
// implements: one method per AST node variant. Each method is
// responsible for recursing into its own children via Walk — unlike a
// generic pre-order/post-order tree walker, this lets a lazily
// evaluating back end (e.g. If choosing only one branch to run) behave
// correctly, while an eager one (e.g. an IR builder that lowers both
// branches as basic blocks) can simply Walk every child unconditionally.
//
// Prototype and Function get their own methods because they are Nodes
// but not Exprs: neither can appear as an operand.
type Visitor interface {
	VisitNumber(n *ast.Number) (Value, error)
	VisitVariable(v *ast.Variable) (Value, error)
	VisitBinaryOp(b *ast.BinaryOp) (Value, error)
	VisitUnaryOp(u *ast.UnaryOp) (Value, error)
	VisitCall(c *ast.Call) (Value, error)
	VisitIf(i *ast.If) (Value, error)
	VisitFor(f *ast.For) (Value, error)
	VisitVar(v *ast.Var) (Value, error)

	VisitPrototype(p *ast.Prototype) (Value, error)
	VisitFunction(f *ast.Function) (Value, error)
}

// Walk dispatches node to the matching Visitor method. Every VisitXxx
// method implementation recurses by calling Walk again on its children,
// so Walk itself never recurses directly into an Expr's operands.
func Walk(v Visitor, node ast.Node) (Value, error) {
	switch n := node.(type) {
	case *ast.Number:
		return v.VisitNumber(n)
	case *ast.Variable:
		return v.VisitVariable(n)
	case *ast.BinaryOp:
		return v.VisitBinaryOp(n)
	case *ast.UnaryOp:
		return v.VisitUnaryOp(n)
	case *ast.Call:
		return v.VisitCall(n)
	case *ast.If:
		return v.VisitIf(n)
	case *ast.For:
		return v.VisitFor(n)
	case *ast.Var:
		return v.VisitVar(n)
	case *ast.Prototype:
		return v.VisitPrototype(n)
	case *ast.Function:
		return v.VisitFunction(n)
	default:
		panic("codegen: unreachable node kind")
	}
}

// Generate walks forest in order, dispatching each top-level node to v
// via Walk, and returns one Value per entry (or the first error). A
// bare top-level expression (the parser does not wrap it in a
// synthetic Function — see parser.Parser.handleTopLevelExpression)
// dispatches straight through its own VisitXxx method; Generate does
// not special-case it.
func Generate(v Visitor, forest []ast.Node) ([]Value, error) {
	results := make([]Value, 0, len(forest))
	for _, node := range forest {
		val, err := Walk(v, node)
		if err != nil {
			return nil, err
		}
		results = append(results, val)
	}
	return results, nil
}
