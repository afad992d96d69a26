package builder

import (
	"github.com/vela-lang/vela/internal/ast"
)

// Class is the statement category the transform dispatches on.
type Class int

const (
	// ClassDeclaration: local bindings pass through untouched so callers
	// can factor out sub-expressions without perturbing the transform.
	ClassDeclaration Class = iota
	// ClassPlainExpr: a value-producing expression statement.
	ClassPlainExpr
	// ClassAssign: an assignment; always yields the no-value result.
	ClassAssign
	// ClassSelection: if/else chain or switch.
	ClassSelection
	// ClassDo: a do block without error handling.
	ClassDo
	// ClassForIn: a for-in loop.
	ClassForIn
	// ClassThrow: throw passes through like a declaration.
	ClassThrow
	// ClassIllegal: a non-local exit; aborts the transform for this body.
	ClassIllegal
	// ClassDiagnostic: compile-time directive with no runtime effect.
	ClassDiagnostic
)

func (c Class) String() string {
	switch c {
	case ClassDeclaration:
		return "declaration"
	case ClassPlainExpr:
		return "expression"
	case ClassAssign:
		return "assignment"
	case ClassSelection:
		return "selection"
	case ClassDo:
		return "do"
	case ClassForIn:
		return "for-in"
	case ClassThrow:
		return "throw"
	case ClassIllegal:
		return "illegal"
	case ClassDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Classify categorizes one statement. It is a pure function applied once per
// statement in source order; child blocks are not inspected except to detect
// error-handling do blocks.
func Classify(s ast.Stmt) Class {
	switch n := s.(type) {
	case *ast.VarDecl:
		return ClassDeclaration
	case *ast.ExprStmt:
		return ClassPlainExpr
	case *ast.AssignStmt:
		return ClassAssign
	case *ast.IfStmt, *ast.SwitchStmt:
		return ClassSelection
	case *ast.DoStmt:
		if len(n.Catches) > 0 {
			return ClassIllegal
		}
		return ClassDo
	case *ast.ForInStmt:
		return ClassForIn
	case *ast.ThrowStmt:
		return ClassThrow
	case *ast.DirectiveStmt:
		return ClassDiagnostic
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt, *ast.GuardStmt, *ast.DeferStmt:
		return ClassIllegal
	default:
		return ClassIllegal
	}
}

// constructName names a statement for diagnostics.
func constructName(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return "return"
	case *ast.BreakStmt:
		return "break"
	case *ast.ContinueStmt:
		return "continue"
	case *ast.GuardStmt:
		return "guard"
	case *ast.DeferStmt:
		return "defer"
	case *ast.DoStmt:
		if len(n.Catches) > 0 {
			return "do-catch"
		}
		return "do"
	case *ast.ForInStmt:
		return "for-in loop"
	case *ast.IfStmt:
		return "if"
	case *ast.SwitchStmt:
		return "switch"
	default:
		return "statement"
	}
}

// HasNonLocalExit is the pre-scan pass: it reports whether a body contains a
// return statement at any nesting depth. The host passes the result into
// Transform, which then suppresses the rewrite for that body.
func HasNonLocalExit(a *ast.Arena, body ast.BlockID) bool {
	found := false
	ast.InspectBlock(a, body, func(s ast.Stmt) bool {
		if _, ok := s.(*ast.ReturnStmt); ok {
			found = true
		}
		return !found
	})
	return found
}
