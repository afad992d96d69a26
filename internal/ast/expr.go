package ast

import (
	"fmt"
	"strings"

	"github.com/vela-lang/vela/internal/position"
)

// Expr is the base interface for all expression nodes. The builder transform
// treats expression payloads as opaque beyond classification; only the type
// checker interprets them.
type Expr interface {
	GetSpan() position.Span
	String() string
	exprNode()
}

// Ident represents an identifier reference.
type Ident struct {
	Span position.Span
	Name string
}

func (e *Ident) GetSpan() position.Span { return e.Span }
func (e *Ident) exprNode()              {}
func (e *Ident) String() string         { return e.Name }

// LiteralKind represents the kind of literal.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

func (lk LiteralKind) String() string {
	switch lk {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralString:
		return "string"
	case LiteralBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Literal represents a literal value.
type Literal struct {
	Span  position.Span
	Kind  LiteralKind
	Value interface{}
	Raw   string
}

func (e *Literal) GetSpan() position.Span { return e.Span }
func (e *Literal) exprNode()              {}
func (e *Literal) String() string         { return e.Raw }

// Arg is one call argument with an optional label, as in
// buildEither(first: x).
type Arg struct {
	Label string
	Value Expr
}

func (a Arg) String() string {
	if a.Label != "" {
		return a.Label + ": " + a.Value.String()
	}
	return a.Value.String()
}

// CallExpr represents a function or method call.
type CallExpr struct {
	Span   position.Span
	Callee Expr
	Args   []Arg
}

func (e *CallExpr) GetSpan() position.Span { return e.Span }
func (e *CallExpr) exprNode()              {}
func (e *CallExpr) String() string {
	args := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s(%s)", e.Callee.String(), strings.Join(args, ", "))
}

// MemberExpr represents member access: obj.member.
type MemberExpr struct {
	Span   position.Span
	X      Expr
	Member string
}

func (e *MemberExpr) GetSpan() position.Span { return e.Span }
func (e *MemberExpr) exprNode()              {}
func (e *MemberExpr) String() string         { return e.X.String() + "." + e.Member }

// Operator represents binary and unary operators.
type Operator int

const (
	OpAdd Operator = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpEq                  // ==
	OpNe                  // !=
	OpLt                  // <
	OpLe                  // <=
	OpGt                  // >
	OpGe                  // >=
	OpAnd                 // &&
	OpOr                  // ||
	OpNot                 // !
)

func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	default:
		return "unknown"
	}
}

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	Span  position.Span
	Left  Expr
	Op    Operator
	Right Expr
}

func (e *BinaryExpr) GetSpan() position.Span { return e.Span }
func (e *BinaryExpr) exprNode()              {}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Op, e.Right.String())
}

// UnaryExpr represents a unary operation.
type UnaryExpr struct {
	Span position.Span
	Op   Operator
	X    Expr
}

func (e *UnaryExpr) GetSpan() position.Span { return e.Span }
func (e *UnaryExpr) exprNode()              {}
func (e *UnaryExpr) String() string         { return fmt.Sprintf("(%s%s)", e.Op, e.X.String()) }

// ArrayLit represents an array literal: [a, b, c].
type ArrayLit struct {
	Span  position.Span
	Elems []Expr
}

func (e *ArrayLit) GetSpan() position.Span { return e.Span }
func (e *ArrayLit) exprNode()              {}
func (e *ArrayLit) String() string {
	elems := make([]string, 0, len(e.Elems))
	for _, el := range e.Elems {
		elems = append(elems, el.String())
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// SomeExpr wraps a value as present. It is synthesized by the builder
// transform when a conditionally-skippable branch produces a value.
type SomeExpr struct {
	Span position.Span
	X    Expr
}

func (e *SomeExpr) GetSpan() position.Span { return e.Span }
func (e *SomeExpr) exprNode()              {}
func (e *SomeExpr) String() string         { return "some(" + e.X.String() + ")" }

// NilLit is the absent value, assignable to any optional type.
type NilLit struct {
	Span position.Span
}

func (e *NilLit) GetSpan() position.Span { return e.Span }
func (e *NilLit) exprNode()              {}
func (e *NilLit) String() string         { return "nil" }

// VoidLit is the no-value result, synthesized when an assignment statement
// is lifted through buildExpression.
type VoidLit struct {
	Span position.Span
}

func (e *VoidLit) GetSpan() position.Span { return e.Span }
func (e *VoidLit) exprNode()              {}
func (e *VoidLit) String() string         { return "()" }

// ===== Type expressions =====

// TypeExpr is the base interface for syntactic type annotations.
type TypeExpr interface {
	GetSpan() position.Span
	String() string
	typeExprNode()
}

// NamedType references a type by name.
type NamedType struct {
	Span position.Span
	Name string
}

func (t *NamedType) GetSpan() position.Span { return t.Span }
func (t *NamedType) typeExprNode()          {}
func (t *NamedType) String() string         { return t.Name }

// OptionalType is T?, a possibly-absent T.
type OptionalType struct {
	Span position.Span
	Elem TypeExpr
}

func (t *OptionalType) GetSpan() position.Span { return t.Span }
func (t *OptionalType) typeExprNode()          {}
func (t *OptionalType) String() string         { return t.Elem.String() + "?" }

// ArrayType is [T].
type ArrayType struct {
	Span position.Span
	Elem TypeExpr
}

func (t *ArrayType) GetSpan() position.Span { return t.Span }
func (t *ArrayType) typeExprNode()          {}
func (t *ArrayType) String() string         { return "[" + t.Elem.String() + "]" }

// ===== Declarations =====

// Param is one function parameter.
type Param struct {
	Span position.Span
	Name string
	Type TypeExpr
}

func (p *Param) String() string { return p.Name + ": " + p.Type.String() }

// FuncDecl represents a function definition. Builder names the builder type
// applied to the body via @builder(Name); empty means the body is not
// transformed.
type FuncDecl struct {
	Span    position.Span
	Name    string
	Params  []*Param
	Return  TypeExpr // nil for void functions
	Builder string
	Body    BlockID
}

func (f *FuncDecl) String(a *Arena) string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	ret := ""
	if f.Return != nil {
		ret = " -> " + f.Return.String()
	}
	attr := ""
	if f.Builder != "" {
		attr = fmt.Sprintf(" @builder(%s)", f.Builder)
	}
	return fmt.Sprintf("fn %s(%s)%s%s %s", f.Name, strings.Join(params, ", "), ret, attr, renderBlock(a, f.Body))
}

// File is the root of one parsed source file.
type File struct {
	Span  position.Span
	Funcs []*FuncDecl
}
