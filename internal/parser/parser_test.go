package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-lang/vela/internal/ast"
)

func TestParseFunctionDecl(t *testing.T) {
	src := `
fn render(title: String, items: [String]) -> Html @builder(HTML) {
  header(title)
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)
	require.Len(t, file.Funcs, 1)

	fn := file.Funcs[0]
	assert.Equal(t, "render", fn.Name)
	assert.Equal(t, "HTML", fn.Builder)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "title", fn.Params[0].Name)
	assert.Equal(t, "String", fn.Params[0].Type.String())
	assert.Equal(t, "[String]", fn.Params[1].Type.String())
	assert.Equal(t, "Html", fn.Return.String())

	body := arena.Block(fn.Body)
	require.Len(t, body.Stmts, 1)
	es, ok := arena.Stmt(body.Stmts[0]).(*ast.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, `header(title)`, es.X.String())
}

func TestParsePlainFunction(t *testing.T) {
	file, _, err := ParseFile("test.vela", `fn noop() {}`)
	require.NoError(t, err)
	fn := file.Funcs[0]
	assert.Empty(t, fn.Builder)
	assert.Nil(t, fn.Return)
	assert.Empty(t, fn.Params)
}

func TestParseOptionalAndNestedTypes(t *testing.T) {
	file, _, err := ParseFile("test.vela", `fn f(a: Int?, b: [Int?], c: [[String]]) {}`)
	require.NoError(t, err)
	fn := file.Funcs[0]
	assert.Equal(t, "Int?", fn.Params[0].Type.String())
	assert.Equal(t, "[Int?]", fn.Params[1].Type.String())
	assert.Equal(t, "[[String]]", fn.Params[2].Type.String())
}

func TestParseElseIfChain(t *testing.T) {
	src := `
fn f(a: Bool, b: Bool) {
  if a {
    one()
  } else if b {
    two()
  } else {
    three()
  }
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	require.Len(t, body.Stmts, 1)
	top, ok := arena.Stmt(body.Stmts[0]).(*ast.IfStmt)
	require.True(t, ok)
	assert.Equal(t, "a", top.Cond.String())
	require.NotEqual(t, ast.NoStmt, top.ElseIf)

	second, ok := arena.Stmt(top.ElseIf).(*ast.IfStmt)
	require.True(t, ok)
	assert.Equal(t, "b", second.Cond.String())
	assert.Equal(t, ast.NoStmt, second.ElseIf)
	assert.NotEqual(t, ast.NoBlock, second.ElseBlock)
}

func TestParseAvailabilityClause(t *testing.T) {
	src := `
fn f() {
  if available(">=1.2") {
    modern()
  }
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	ifStmt, ok := arena.Stmt(body.Stmts[0]).(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Avail)
	assert.Equal(t, ">=1.2", ifStmt.Avail.Constraint)
	assert.Nil(t, ifStmt.Cond)
}

func TestParseSwitch(t *testing.T) {
	src := `
fn f(n: Int) {
  switch n {
  case 1, 2:
    small()
  case 3:
    three()
  default:
    big()
  }
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	sw, ok := arena.Stmt(body.Stmts[0]).(*ast.SwitchStmt)
	require.True(t, ok)
	assert.Equal(t, "n", sw.Subject.String())
	require.Len(t, sw.Cases, 2)
	assert.Len(t, sw.Cases[0].Values, 2)
	assert.NotEqual(t, ast.NoBlock, sw.Default)
}

func TestParseDoCatchAndLoop(t *testing.T) {
	src := `
fn f(items: [String]) {
  do {
    risky()
  } catch err {
    recover()
  }
  for item in items {
    use(item)
  }
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	require.Len(t, body.Stmts, 2)

	doStmt, ok := arena.Stmt(body.Stmts[0]).(*ast.DoStmt)
	require.True(t, ok)
	require.Len(t, doStmt.Catches, 1)
	assert.Equal(t, "err", doStmt.Catches[0].Binding)

	loop, ok := arena.Stmt(body.Stmts[1]).(*ast.ForInStmt)
	require.True(t, ok)
	assert.Equal(t, "item", loop.Var)
	assert.Equal(t, "items", loop.Seq.String())
}

func TestParseDirectives(t *testing.T) {
	src := `
fn f() {
  #warning("half-baked")
  #error("do not ship")
}
`
	file, arena, err := ParseFile("test.vela", src)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	w, ok := arena.Stmt(body.Stmts[0]).(*ast.DirectiveStmt)
	require.True(t, ok)
	assert.Equal(t, ast.DirectiveWarning, w.Level)
	assert.Equal(t, "half-baked", w.Message)

	e, ok := arena.Stmt(body.Stmts[1]).(*ast.DirectiveStmt)
	require.True(t, ok)
	assert.Equal(t, ast.DirectiveError, e.Level)
}

func TestParsePrecedence(t *testing.T) {
	file, arena, err := ParseFile("test.vela", `fn f(a: Int, b: Int, c: Bool) { let x = a + b * 2 == 7 && !c }`)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	decl, ok := arena.Stmt(body.Stmts[0]).(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "(((a + (b * 2)) == 7) && (!c))", decl.Value.String())
}

func TestParseLabeledCallArgs(t *testing.T) {
	file, arena, err := ParseFile("test.vela", `fn f(x: Int) { build(first: x, 2) }`)
	require.NoError(t, err)

	body := arena.Block(file.Funcs[0].Body)
	es := arena.Stmt(body.Stmts[0]).(*ast.ExprStmt)
	call, ok := es.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "first", call.Args[0].Label)
	assert.Empty(t, call.Args[1].Label)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing brace", `fn f() { header("x")`},
		{"missing paren", `fn f( {}`},
		{"assignment to literal", `fn f() { 1 = 2 }`},
		{"stray token at top level", `let x = 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFile("test.vela", tt.src)
			assert.Error(t, err)
		})
	}
}
