package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/parser"
)

func TestClassify(t *testing.T) {
	a := ast.NewArena()
	emptyBlock := a.AddBlock(ast.Block{})

	tests := []struct {
		name string
		stmt ast.Stmt
		want Class
	}{
		{"let", &ast.VarDecl{Name: "x"}, ClassDeclaration},
		{"expr", &ast.ExprStmt{X: &ast.Ident{Name: "x"}}, ClassPlainExpr},
		{"assign", &ast.AssignStmt{Target: &ast.Ident{Name: "x"}, Value: &ast.Ident{Name: "y"}}, ClassAssign},
		{"if", &ast.IfStmt{Then: emptyBlock, ElseIf: ast.NoStmt, ElseBlock: ast.NoBlock}, ClassSelection},
		{"switch", &ast.SwitchStmt{Subject: &ast.Ident{Name: "x"}, Default: ast.NoBlock}, ClassSelection},
		{"do", &ast.DoStmt{Body: emptyBlock}, ClassDo},
		{"do-catch", &ast.DoStmt{Body: emptyBlock, Catches: []ast.CatchClause{{Body: emptyBlock}}}, ClassIllegal},
		{"for-in", &ast.ForInStmt{Var: "x", Seq: &ast.Ident{Name: "xs"}, Body: emptyBlock}, ClassForIn},
		{"throw", &ast.ThrowStmt{Value: &ast.Ident{Name: "e"}}, ClassThrow},
		{"directive", &ast.DirectiveStmt{Message: "m"}, ClassDiagnostic},
		{"return", &ast.ReturnStmt{}, ClassIllegal},
		{"break", &ast.BreakStmt{}, ClassIllegal},
		{"continue", &ast.ContinueStmt{}, ClassIllegal},
		{"guard", &ast.GuardStmt{Cond: &ast.Ident{Name: "c"}, Else: emptyBlock}, ClassIllegal},
		{"defer", &ast.DeferStmt{Body: emptyBlock}, ClassIllegal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stmt))
		})
	}
}

func TestHasNonLocalExit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"no return", `header("x")`, false},
		{"top-level return", `return header("x")`, true},
		{"return nested in if", `if flag { return header("x") }`, true},
		{"return nested in loop", `for item in items { return text(item) }`, true},
		{"break is not a return", `for item in items { break }`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "fn f(flag: Bool, items: [String]) {\n" + tt.body + "\n}"
			file, arena, err := parser.ParseFile("test.vela", src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, HasNonLocalExit(arena, file.Funcs[0].Body))
		})
	}
}
