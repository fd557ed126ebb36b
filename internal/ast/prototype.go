package ast

import "strings"

// Prototype is a function or operator signature: a name and a parameter
// list, without a body. IsOperator distinguishes a plain function from a
// `def binary`/`def unary`/`extern`-declared operator; OperatorArity is
// 0 for non-operators, else 1 or 2. Priority is 0 for non-operators and
// for unary operators (I4).
//
// Prototype is shared, not exclusively owned: the same pointer is held
// by the global forest (directly, for an extern or as a Function's
// Proto) and by every Call that targets it.
type Prototype struct {
	base
	Name          string
	Params        []string
	IsOperator    bool
	OperatorArity int
	Priority      int
}

func NewPrototype(loc SourceLoc, name string, params []string, isOperator bool, arity, priority int) *Prototype {
	return &Prototype{
		base:          newBase(loc),
		Name:          name,
		Params:        params,
		IsOperator:    isOperator,
		OperatorArity: arity,
		Priority:      priority,
	}
}

func (*Prototype) Kind() Kind { return KindPrototype }
func (p *Prototype) String() string {
	return "declare " + p.Name + "(" + strings.Join(p.Params, " ") + ")"
}

// Function pairs a Prototype with its body expression.
type Function struct {
	base
	Proto *Prototype
	Body  Expr
}

func NewFunction(loc SourceLoc, proto *Prototype, body Expr) *Function {
	return &Function{base: newBase(loc), Proto: proto, Body: body}
}

func (*Function) Kind() Kind { return KindFunction }
func (f *Function) String() string {
	return f.Proto.String() + " = " + f.Body.String()
}
