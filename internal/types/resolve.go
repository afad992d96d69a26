package types

import (
	"fmt"

	"github.com/vela-lang/vela/internal/ast"
)

// FuncSig is the signature of a free function visible to statement
// expressions.
type FuncSig struct {
	Params []Type
	Result Type
}

// Resolver assigns a type to each statement expression from local
// information only. It carries a lexical scope for variable bindings and a
// flat table of free functions.
type Resolver struct {
	funcs map[string]FuncSig
	scope *scope
}

type scope struct {
	parent *scope
	vars   map[string]Type
}

// NewResolver creates a resolver with an empty global scope.
func NewResolver() *Resolver {
	return &Resolver{
		funcs: make(map[string]FuncSig),
		scope: &scope{vars: make(map[string]Type)},
	}
}

// DeclareFunc registers a free function.
func (r *Resolver) DeclareFunc(name string, sig FuncSig) {
	r.funcs[name] = sig
}

// Declare binds a variable in the current scope.
func (r *Resolver) Declare(name string, t Type) {
	r.scope.vars[name] = t
}

// Lookup finds a variable binding, innermost scope first.
func (r *Resolver) Lookup(name string) (Type, bool) {
	for s := r.scope; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Push opens a child scope.
func (r *Resolver) Push() {
	r.scope = &scope{parent: r.scope, vars: make(map[string]Type)}
}

// Pop closes the current scope.
func (r *Resolver) Pop() {
	if r.scope.parent != nil {
		r.scope = r.scope.parent
	}
}

// ResolveExpr resolves the type of one expression. Resolution is strictly
// local and forward-only: nothing outside the expression influences the
// result.
func (r *Resolver) ResolveExpr(e ast.Expr) (Type, error) {
	switch n := e.(type) {
	case *ast.Ident:
		if t, ok := r.Lookup(n.Name); ok {
			return t, nil
		}
		return nil, fmt.Errorf("%s: undefined identifier %q", n.Span, n.Name)

	case *ast.Literal:
		switch n.Kind {
		case ast.LiteralInt:
			return Int, nil
		case ast.LiteralFloat:
			return Float, nil
		case ast.LiteralString:
			return String, nil
		case ast.LiteralBool:
			return Bool, nil
		}
		return nil, fmt.Errorf("%s: unknown literal kind", n.Span)

	case *ast.CallExpr:
		callee, ok := n.Callee.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%s: only named functions can be called", n.Span)
		}
		sig, ok := r.funcs[callee.Name]
		if !ok {
			return nil, fmt.Errorf("%s: undefined function %q", n.Span, callee.Name)
		}
		if len(n.Args) != len(sig.Params) {
			return nil, fmt.Errorf("%s: %s expects %d arguments, got %d",
				n.Span, callee.Name, len(sig.Params), len(n.Args))
		}
		for i, a := range n.Args {
			at, err := r.ResolveExpr(a.Value)
			if err != nil {
				return nil, err
			}
			if !AssignableTo(at, sig.Params[i]) {
				return nil, fmt.Errorf("%s: argument %d of %s: cannot use %s as %s",
					n.Span, i+1, callee.Name, at, sig.Params[i])
			}
		}
		return sig.Result, nil

	case *ast.BinaryExpr:
		lt, err := r.ResolveExpr(n.Left)
		if err != nil {
			return nil, err
		}
		rt, err := r.ResolveExpr(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
			if !Equal(lt, rt) {
				return nil, fmt.Errorf("%s: cannot compare %s with %s", n.Span, lt, rt)
			}
			return Bool, nil
		case ast.OpAnd, ast.OpOr:
			if !Equal(lt, Bool) || !Equal(rt, Bool) {
				return nil, fmt.Errorf("%s: logical operator needs Bool operands", n.Span)
			}
			return Bool, nil
		default:
			if !Equal(lt, rt) {
				return nil, fmt.Errorf("%s: mismatched operands %s and %s", n.Span, lt, rt)
			}
			return lt, nil
		}

	case *ast.UnaryExpr:
		xt, err := r.ResolveExpr(n.X)
		if err != nil {
			return nil, err
		}
		if n.Op == ast.OpNot {
			if !Equal(xt, Bool) {
				return nil, fmt.Errorf("%s: ! needs a Bool operand", n.Span)
			}
			return Bool, nil
		}
		return xt, nil

	case *ast.ArrayLit:
		if len(n.Elems) == 0 {
			return &Array{Elem: Nil}, nil
		}
		first, err := r.ResolveExpr(n.Elems[0])
		if err != nil {
			return nil, err
		}
		for _, el := range n.Elems[1:] {
			et, err := r.ResolveExpr(el)
			if err != nil {
				return nil, err
			}
			if !Equal(et, first) {
				return nil, fmt.Errorf("%s: heterogeneous array literal (%s vs %s)", n.Span, first, et)
			}
		}
		return &Array{Elem: first}, nil

	case *ast.SomeExpr:
		xt, err := r.ResolveExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &Optional{Elem: xt}, nil

	case *ast.NilLit:
		return Nil, nil

	case *ast.VoidLit:
		return Void, nil

	case *ast.MemberExpr:
		return nil, fmt.Errorf("%s: member access is not supported in statement expressions", n.Span)

	default:
		return nil, fmt.Errorf("%s: cannot resolve expression", e.GetSpan())
	}
}
