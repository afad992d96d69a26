package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-lang/vela/internal/ast"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func intLit(v int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LiteralInt, Value: v, Raw: "1"}
}

func TestResolveLiteralsAndIdents(t *testing.T) {
	r := NewResolver()
	r.Declare("x", String)

	got, err := r.ResolveExpr(intLit(1))
	require.NoError(t, err)
	assert.True(t, Equal(got, Int))

	got, err = r.ResolveExpr(ident("x"))
	require.NoError(t, err)
	assert.True(t, Equal(got, String))

	_, err = r.ResolveExpr(ident("missing"))
	assert.Error(t, err)
}

func TestResolveCall(t *testing.T) {
	comp := &Named{Name: "Component"}
	r := NewResolver()
	r.DeclareFunc("header", FuncSig{Params: []Type{String}, Result: comp})
	r.Declare("title", String)

	call := &ast.CallExpr{Callee: ident("header"), Args: []ast.Arg{{Value: ident("title")}}}
	got, err := r.ResolveExpr(call)
	require.NoError(t, err)
	assert.True(t, Equal(got, comp))

	bad := &ast.CallExpr{Callee: ident("header"), Args: []ast.Arg{{Value: intLit(1)}}}
	_, err = r.ResolveExpr(bad)
	assert.Error(t, err)

	wrongArity := &ast.CallExpr{Callee: ident("header")}
	_, err = r.ResolveExpr(wrongArity)
	assert.Error(t, err)
}

func TestResolveArrayLiteral(t *testing.T) {
	r := NewResolver()

	got, err := r.ResolveExpr(&ast.ArrayLit{Elems: []ast.Expr{intLit(1), intLit(2)}})
	require.NoError(t, err)
	assert.True(t, Equal(got, &Array{Elem: Int}))

	// Empty literal gets the nil element type, assignable anywhere.
	got, err = r.ResolveExpr(&ast.ArrayLit{})
	require.NoError(t, err)
	assert.True(t, AssignableTo(got, &Array{Elem: String}))

	hetero := &ast.ArrayLit{Elems: []ast.Expr{
		intLit(1),
		&ast.Literal{Kind: ast.LiteralString, Value: "s", Raw: `"s"`},
	}}
	_, err = r.ResolveExpr(hetero)
	assert.Error(t, err)
}

func TestScopePushPop(t *testing.T) {
	r := NewResolver()
	r.Declare("x", Int)

	r.Push()
	r.Declare("x", String)
	r.Declare("y", Bool)
	got, _ := r.Lookup("x")
	assert.True(t, Equal(got, String))
	r.Pop()

	got, _ = r.Lookup("x")
	assert.True(t, Equal(got, Int))
	_, ok := r.Lookup("y")
	assert.False(t, ok)
}
