package ast

// InspectBlock walks every statement of a block in source order, depth-first.
// If f returns false for a statement, its child blocks are not visited.
// Expression payloads are not traversed.
func InspectBlock(a *Arena, id BlockID, f func(Stmt) bool) {
	if id == NoBlock {
		return
	}
	for _, sid := range a.Block(id).Stmts {
		inspectStmt(a, sid, f)
	}
}

func inspectStmt(a *Arena, id StmtID, f func(Stmt) bool) {
	if id == NoStmt {
		return
	}
	s := a.Stmt(id)
	if !f(s) {
		return
	}
	switch n := s.(type) {
	case *IfStmt:
		InspectBlock(a, n.Then, f)
		inspectStmt(a, n.ElseIf, f)
		InspectBlock(a, n.ElseBlock, f)
	case *SwitchStmt:
		for _, c := range n.Cases {
			InspectBlock(a, c.Body, f)
		}
		InspectBlock(a, n.Default, f)
	case *DoStmt:
		InspectBlock(a, n.Body, f)
		for _, c := range n.Catches {
			InspectBlock(a, c.Body, f)
		}
	case *ForInStmt:
		InspectBlock(a, n.Body, f)
	case *GuardStmt:
		InspectBlock(a, n.Else, f)
	case *DeferStmt:
		InspectBlock(a, n.Body, f)
	}
}
