package astcodec

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ksc-lang/ksc/internal/ast"
)

// schemaVersion guards against decoding a forest encoded by an
// incompatible future revision of this package.
const schemaVersion uint16 = 1

// tag discriminates which exprDTO fields are meaningful, the flattened
// stand-in for the sum type internal/ast.Expr represents in memory:
// msgpack has no notion of a Go interface, so every variant is encoded
// into the same struct and Tag says which fields to trust on decode.
type tag uint8

const (
	tagNumber tag = iota
	tagVariable
	tagBinaryOp
	tagUnaryOp
	tagCall
	tagIf
	tagFor
	tagVar
)

// locDTO mirrors ast.SourceLoc for encoding.
type locDTO struct {
	File   string
	Line   int64
	Column int64
}

// exprDTO is the flattened wire form of any ast.Expr. Only the fields
// relevant to Tag are populated; the rest are left at their zero value
// and omitted by the struct tag.
type exprDTO struct {
	Tag tag
	ID  uint64
	Loc locDTO

	Value float64 `msgpack:",omitempty"` // Number

	Name string `msgpack:",omitempty"` // Variable, For.InductionName

	Op       int8     `msgpack:",omitempty"` // BinaryOp
	LHS      *exprDTO `msgpack:",omitempty"`
	RHS      *exprDTO `msgpack:",omitempty"`
	Symbol   string   `msgpack:",omitempty"`
	Priority int      `msgpack:",omitempty"`

	Opcode  string   `msgpack:",omitempty"` // UnaryOp
	Operand *exprDTO `msgpack:",omitempty"`
	Mangled string   `msgpack:",omitempty"`

	CalleeName string     `msgpack:",omitempty"` // Call
	Args       []*exprDTO `msgpack:",omitempty"`

	Cond *exprDTO `msgpack:",omitempty"` // If
	Then *exprDTO `msgpack:",omitempty"`
	Else *exprDTO `msgpack:",omitempty"`

	Start *exprDTO `msgpack:",omitempty"` // For
	End   *exprDTO `msgpack:",omitempty"`
	Step  *exprDTO `msgpack:",omitempty"`
	Body  *exprDTO `msgpack:",omitempty"`

	Bindings []bindingDTO `msgpack:",omitempty"` // Var
}

type bindingDTO struct {
	Name string
	Init *exprDTO
}

// prototypeDTO is the wire form of ast.Prototype.
type prototypeDTO struct {
	ID            uint64
	Loc           locDTO
	Name          string
	Params        []string
	IsOperator    bool
	OperatorArity int
	Priority      int
}

// topLevelKind discriminates the three shapes a forest entry can take:
// an extern (bare Prototype), a def (Function), or a bare top-level
// expression (§4.2: never wrapped in a synthetic Function).
type topLevelKind uint8

const (
	topLevelPrototype topLevelKind = iota
	topLevelFunction
	topLevelExpr
)

// nodeDTO is the wire form of one top-level forest entry.
type nodeDTO struct {
	NodeKind topLevelKind
	Proto    prototypeDTO `msgpack:",omitempty"`
	Body     *exprDTO     `msgpack:",omitempty"`
	Expr     *exprDTO     `msgpack:",omitempty"`
}

// forestDTO is the top-level on-disk envelope.
type forestDTO struct {
	Schema uint16
	Nodes  []nodeDTO
}

// Encode serializes forest to msgpack. Every node in forest must be an
// *ast.Prototype, an *ast.Function, or a bare ast.Expr, matching what
// pkg/parser.Parse returns.
func Encode(forest []ast.Node) ([]byte, error) {
	dto := forestDTO{Schema: schemaVersion}
	for _, n := range forest {
		nd, err := encodeTopLevel(n)
		if err != nil {
			return nil, err
		}
		dto.Nodes = append(dto.Nodes, nd)
	}
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&dto); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTopLevel(n ast.Node) (nodeDTO, error) {
	switch v := n.(type) {
	case *ast.Prototype:
		return nodeDTO{NodeKind: topLevelPrototype, Proto: encodeProto(v)}, nil
	case *ast.Function:
		return nodeDTO{NodeKind: topLevelFunction, Proto: encodeProto(v.Proto), Body: encodeExpr(v.Body)}, nil
	case ast.Expr:
		return nodeDTO{NodeKind: topLevelExpr, Expr: encodeExpr(v)}, nil
	default:
		return nodeDTO{}, fmt.Errorf("astcodec: unsupported top-level node %T", n)
	}
}

func encodeProto(p *ast.Prototype) prototypeDTO {
	return prototypeDTO{
		ID:            p.ID(),
		Loc:           encodeLoc(p.Loc()),
		Name:          p.Name,
		Params:        append([]string(nil), p.Params...),
		IsOperator:    p.IsOperator,
		OperatorArity: p.OperatorArity,
		Priority:      p.Priority,
	}
}

func encodeLoc(l ast.SourceLoc) locDTO {
	return locDTO{File: l.File, Line: l.Line, Column: l.Column}
}

func encodeExpr(e ast.Expr) *exprDTO {
	if e == nil {
		return nil
	}
	base := exprDTO{ID: e.ID(), Loc: encodeLoc(e.Loc())}
	switch v := e.(type) {
	case *ast.Number:
		base.Tag = tagNumber
		base.Value = v.Value
	case *ast.Variable:
		base.Tag = tagVariable
		base.Name = v.Name
	case *ast.BinaryOp:
		base.Tag = tagBinaryOp
		base.Op = int8(v.Op)
		base.LHS = encodeExpr(v.LHS)
		base.RHS = encodeExpr(v.RHS)
		base.Symbol = v.Symbol
		base.Priority = v.Priority
	case *ast.UnaryOp:
		base.Tag = tagUnaryOp
		base.Opcode = v.Opcode
		base.Operand = encodeExpr(v.Operand)
		base.Mangled = v.Mangled
	case *ast.Call:
		base.Tag = tagCall
		base.CalleeName = v.Callee.Name
		for _, a := range v.Args {
			base.Args = append(base.Args, encodeExpr(a))
		}
	case *ast.If:
		base.Tag = tagIf
		base.Cond = encodeExpr(v.Cond)
		base.Then = encodeExpr(v.Then)
		base.Else = encodeExpr(v.Else)
	case *ast.For:
		base.Tag = tagFor
		base.Name = v.InductionName
		base.Start = encodeExpr(v.Start)
		base.End = encodeExpr(v.End)
		base.Step = encodeExpr(v.Step)
		base.Body = encodeExpr(v.Body)
	case *ast.Var:
		base.Tag = tagVar
		for _, b := range v.Bindings {
			base.Bindings = append(base.Bindings, bindingDTO{Name: b.Name, Init: encodeExpr(b.Init)})
		}
		base.Body = encodeExpr(v.Body)
	}
	return &base
}

// Decode parses an msgpack-encoded forest, reconstructing Call.Callee as
// a pointer shared with the corresponding Prototype/Function.Proto (I2),
// the same way pkg/parser resolves callees against its prototype table
// during a live parse.
func Decode(data []byte) ([]ast.Node, error) {
	var dto forestDTO
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&dto); err != nil {
		return nil, err
	}
	if dto.Schema != schemaVersion {
		return nil, fmt.Errorf("astcodec: unsupported schema version %d", dto.Schema)
	}

	prototypes := make(map[string]*ast.Prototype, len(dto.Nodes))
	forest := make([]ast.Node, 0, len(dto.Nodes))
	for _, nd := range dto.Nodes {
		switch nd.NodeKind {
		case topLevelExpr:
			expr, err := decodeExpr(nd.Expr, prototypes)
			if err != nil {
				return nil, err
			}
			forest = append(forest, expr)
		case topLevelFunction:
			proto := decodeProto(nd.Proto)
			prototypes[proto.Name] = proto
			body, err := decodeExpr(nd.Body, prototypes)
			if err != nil {
				return nil, err
			}
			forest = append(forest, ast.NewFunction(proto.Loc(), proto, body))
		default:
			proto := decodeProto(nd.Proto)
			prototypes[proto.Name] = proto
			forest = append(forest, proto)
		}
	}
	return forest, nil
}

func decodeProto(d prototypeDTO) *ast.Prototype {
	return ast.NewPrototype(decodeLoc(d.Loc), d.Name, d.Params, d.IsOperator, d.OperatorArity, d.Priority)
}

func decodeLoc(l locDTO) ast.SourceLoc {
	return ast.SourceLoc{File: l.File, Line: l.Line, Column: l.Column}
}

func decodeExpr(d *exprDTO, prototypes map[string]*ast.Prototype) (ast.Expr, error) {
	if d == nil {
		return nil, nil
	}
	loc := decodeLoc(d.Loc)
	switch d.Tag {
	case tagNumber:
		return ast.NewNumber(loc, d.Value), nil
	case tagVariable:
		return ast.NewVariable(loc, d.Name), nil
	case tagBinaryOp:
		lhs, err := decodeExpr(d.LHS, prototypes)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(d.RHS, prototypes)
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(loc, ast.BinOpKind(d.Op), lhs, rhs, d.Symbol, d.Priority), nil
	case tagUnaryOp:
		operand, err := decodeExpr(d.Operand, prototypes)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(loc, d.Opcode, operand, d.Mangled), nil
	case tagCall:
		proto, ok := prototypes[d.CalleeName]
		if !ok {
			return nil, fmt.Errorf("astcodec: call to %q has no matching prototype in this forest", d.CalleeName)
		}
		args := make([]ast.Expr, len(d.Args))
		for i, a := range d.Args {
			arg, err := decodeExpr(a, prototypes)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return ast.NewCall(loc, proto, args), nil
	case tagIf:
		cond, err := decodeExpr(d.Cond, prototypes)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(d.Then, prototypes)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(d.Else, prototypes)
		if err != nil {
			return nil, err
		}
		return ast.NewIf(loc, cond, then, els), nil
	case tagFor:
		start, err := decodeExpr(d.Start, prototypes)
		if err != nil {
			return nil, err
		}
		end, err := decodeExpr(d.End, prototypes)
		if err != nil {
			return nil, err
		}
		step, err := decodeExpr(d.Step, prototypes)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(d.Body, prototypes)
		if err != nil {
			return nil, err
		}
		return ast.NewFor(loc, d.Name, start, end, step, body), nil
	case tagVar:
		bindings := make([]ast.VarBinding, len(d.Bindings))
		for i, b := range d.Bindings {
			init, err := decodeExpr(b.Init, prototypes)
			if err != nil {
				return nil, err
			}
			bindings[i] = ast.VarBinding{Name: b.Name, Init: init}
		}
		body, err := decodeExpr(d.Body, prototypes)
		if err != nil {
			return nil, err
		}
		return ast.NewVar(loc, bindings, body), nil
	default:
		return nil, fmt.Errorf("astcodec: unknown tag %d", d.Tag)
	}
}
