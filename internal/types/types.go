// Package types implements the restricted type model used by the builder
// transform. Statement expressions resolve to a fixed type from local
// information only; combinator calls are checked afterwards against these
// already-fixed types and never push type information back into statements.
package types

import (
	"github.com/vela-lang/vela/internal/ast"
)

// Type is the base interface for all types.
type Type interface {
	String() string
	typeNode()
}

// Named is a nominal type referenced by name.
type Named struct {
	Name string
}

func (t *Named) typeNode()      {}
func (t *Named) String() string { return t.Name }

// Optional is a possibly-absent T, written T?.
type Optional struct {
	Elem Type
}

func (t *Optional) typeNode()      {}
func (t *Optional) String() string { return t.Elem.String() + "?" }

// Array is a homogeneous sequence [T].
type Array struct {
	Elem Type
}

func (t *Array) typeNode()      {}
func (t *Array) String() string { return "[" + t.Elem.String() + "]" }

// VoidType is the no-value result type of assignments and value-less calls.
type VoidType struct{}

func (t *VoidType) typeNode()      {}
func (t *VoidType) String() string { return "Void" }

// NilType is the type of the nil literal, assignable to any optional.
type NilType struct{}

func (t *NilType) typeNode()      {}
func (t *NilType) String() string { return "nil" }

// Predeclared types.
var (
	Int    = &Named{Name: "Int"}
	Float  = &Named{Name: "Float"}
	String = &Named{Name: "String"}
	Bool   = &Named{Name: "Bool"}
	Void   = &VoidType{}
	Nil    = &NilType{}
)

// Equal reports structural type equality.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Named:
		y, ok := b.(*Named)
		return ok && x.Name == y.Name
	case *Optional:
		y, ok := b.(*Optional)
		return ok && Equal(x.Elem, y.Elem)
	case *Array:
		y, ok := b.(*Array)
		return ok && Equal(x.Elem, y.Elem)
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	case *NilType:
		_, ok := b.(*NilType)
		return ok
	default:
		return false
	}
}

// AssignableTo reports whether a value of type src can be passed where dst
// is expected. Besides equality, a T lifts to T? and nil fits any optional.
func AssignableTo(src, dst Type) bool {
	if Equal(src, dst) {
		return true
	}
	if opt, ok := dst.(*Optional); ok {
		if _, isNil := src.(*NilType); isNil {
			return true
		}
		return AssignableTo(src, opt.Elem)
	}
	if arr, ok := dst.(*Array); ok {
		if srcArr, ok2 := src.(*Array); ok2 {
			// Empty-literal element type is nil-typed; accept it.
			if _, isNil := srcArr.Elem.(*NilType); isNil {
				return true
			}
			return Equal(srcArr.Elem, arr.Elem)
		}
	}
	return false
}

// ToExpr converts a Type back to a syntactic annotation, used when the
// transform synthesizes typed variable declarations. Spans are zero.
func ToExpr(t Type) ast.TypeExpr {
	switch n := t.(type) {
	case *Named:
		return &ast.NamedType{Name: n.Name}
	case *Optional:
		return &ast.OptionalType{Elem: ToExpr(n.Elem)}
	case *Array:
		return &ast.ArrayType{Elem: ToExpr(n.Elem)}
	default:
		return &ast.NamedType{Name: "Void"}
	}
}

// FromExpr converts a syntactic type annotation to a Type. Unknown names
// become nominal types; the builder protocol supplies their meaning.
func FromExpr(t ast.TypeExpr) Type {
	switch n := t.(type) {
	case *ast.NamedType:
		switch n.Name {
		case "Int":
			return Int
		case "Float":
			return Float
		case "String":
			return String
		case "Bool":
			return Bool
		case "Void":
			return Void
		default:
			return &Named{Name: n.Name}
		}
	case *ast.OptionalType:
		return &Optional{Elem: FromExpr(n.Elem)}
	case *ast.ArrayType:
		return &Array{Elem: FromExpr(n.Elem)}
	default:
		return Void
	}
}
