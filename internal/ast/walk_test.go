package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspectBlockVisitsNestedStatements(t *testing.T) {
	a := NewArena()

	inner := a.AddBlock(Block{Stmts: []StmtID{
		a.AddStmt(&ReturnStmt{}),
	}})
	loopBody := a.AddBlock(Block{Stmts: []StmtID{
		a.AddStmt(&IfStmt{Then: inner, ElseIf: NoStmt, ElseBlock: NoBlock}),
	}})
	body := a.AddBlock(Block{Stmts: []StmtID{
		a.AddStmt(&VarDecl{Name: "x"}),
		a.AddStmt(&ForInStmt{Var: "i", Seq: &Ident{Name: "xs"}, Body: loopBody}),
	}})

	var visited []string
	InspectBlock(a, body, func(s Stmt) bool {
		switch s.(type) {
		case *VarDecl:
			visited = append(visited, "var")
		case *ForInStmt:
			visited = append(visited, "for")
		case *IfStmt:
			visited = append(visited, "if")
		case *ReturnStmt:
			visited = append(visited, "return")
		}
		return true
	})
	assert.Equal(t, []string{"var", "for", "if", "return"}, visited)
}

func TestInspectBlockPrunesChildren(t *testing.T) {
	a := NewArena()
	inner := a.AddBlock(Block{Stmts: []StmtID{
		a.AddStmt(&ReturnStmt{}),
	}})
	body := a.AddBlock(Block{Stmts: []StmtID{
		a.AddStmt(&IfStmt{Then: inner, ElseIf: NoStmt, ElseBlock: NoBlock}),
		a.AddStmt(&VarDecl{Name: "after"}),
	}})

	var visited []string
	InspectBlock(a, body, func(s Stmt) bool {
		switch s.(type) {
		case *IfStmt:
			visited = append(visited, "if")
			return false // skip the if's children
		case *ReturnStmt:
			visited = append(visited, "return")
		case *VarDecl:
			visited = append(visited, "var")
		}
		return true
	})
	// The nested return is pruned; the sibling after the if is still visited.
	assert.Equal(t, []string{"if", "var"}, visited)
}
