package builder

import (
	"fmt"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/availability"
	"github.com/vela-lang/vela/internal/position"
	"github.com/vela-lang/vela/internal/types"
)

// treeStep is one Left/Right step on the path from the injection tree's root
// to a leaf.
type treeStep int

const (
	stepLeft treeStep = iota
	stepRight
)

// leafPaths computes the root-to-leaf path of each of n leaves of the
// injection tree, in source order. The shape is deterministic: a subtree
// over n leaves sends floor(n/2) to the left and the rest to the right,
// recursively. Callers must not depend on this shape staying stable across
// versions; only determinism within one compilation is guaranteed.
func leafPaths(n int) [][]treeStep {
	if n <= 1 {
		return [][]treeStep{{}}
	}
	left := n / 2
	paths := make([][]treeStep, 0, n)
	for _, p := range leafPaths(left) {
		paths = append(paths, append([]treeStep{stepLeft}, p...))
	}
	for _, p := range leafPaths(n-left) {
		paths = append(paths, append([]treeStep{stepRight}, p...))
	}
	return paths
}

// branchInfo is one branch of a selection construct as seen by the injection
// tree builder.
type branchInfo struct {
	span   position.Span
	cond   ast.Expr                // nil for else/default arms
	avail  *ast.AvailabilityClause // non-nil for availability-guarded arms
	values []ast.Expr              // switch case values
	body   ast.BlockID

	child   *blockOutcome
	newBody ast.BlockID // NoBlock when the branch body stays untouched
}

func (b *branchInfo) finalBody() ast.BlockID {
	if b.newBody != ast.NoBlock {
		return b.newBody
	}
	return b.body
}

// selection lowers an if/else chain or switch. It dispatches between the
// injection-tree strategy (buildEither present) and the
// optional-variable-per-branch strategy.
func (t *transformer) selection(bs *blockState, sid ast.StmtID, s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.IfStmt:
		branches, hasElse, err := t.gatherIf(n)
		if err != nil {
			return err
		}
		rebuild := func() ast.StmtID { return t.rebuildIf(branches, hasElse) }
		return t.lowerSelection(bs, sid, n.Span, "if", branches, hasElse, rebuild)

	case *ast.SwitchStmt:
		branches, hasDefault, err := t.gatherSwitch(n)
		if err != nil {
			return err
		}
		rebuild := func() ast.StmtID { return t.rebuildSwitch(n, branches, hasDefault) }
		return t.lowerSelection(bs, sid, n.Span, "switch", branches, hasDefault, rebuild)

	default:
		return errIllegal(s.GetSpan(), constructName(s))
	}
}

// gatherIf flattens an if/else-if/else chain into its branches in source
// order. Nested selections inside a branch are not folded into the same
// analysis; they recurse as separate transforms.
func (t *transformer) gatherIf(n *ast.IfStmt) ([]*branchInfo, bool, error) {
	var branches []*branchInfo
	cur := n
	for {
		branches = append(branches, &branchInfo{
			span: cur.Span, cond: cur.Cond, avail: cur.Avail, body: cur.Then, newBody: ast.NoBlock,
		})
		if cur.ElseIf != ast.NoStmt {
			next, ok := t.arena.Stmt(cur.ElseIf).(*ast.IfStmt)
			if !ok {
				return nil, false, fmt.Errorf("%s: malformed else-if chain", cur.Span)
			}
			cur = next
			continue
		}
		if cur.ElseBlock != ast.NoBlock {
			branches = append(branches, &branchInfo{span: cur.Span, body: cur.ElseBlock, newBody: ast.NoBlock})
			return branches, true, nil
		}
		return branches, false, nil
	}
}

// rebuildIf reconstructs the chain with the rewritten branch bodies,
// preserving every condition and availability guard.
func (t *transformer) rebuildIf(branches []*branchInfo, hasElse bool) ast.StmtID {
	condCount := len(branches)
	elseBlock := ast.NoBlock
	if hasElse {
		condCount--
		elseBlock = branches[len(branches)-1].finalBody()
	}

	cur := ast.NoStmt
	for i := condCount - 1; i >= 0; i-- {
		b := branches[i]
		stmt := &ast.IfStmt{
			Span: b.span, Cond: b.cond, Avail: b.avail, Then: b.finalBody(),
			ElseIf: cur, ElseBlock: ast.NoBlock,
		}
		if i == condCount-1 {
			stmt.ElseIf = ast.NoStmt
			stmt.ElseBlock = elseBlock
		}
		cur = t.arena.AddStmt(stmt)
	}
	return cur
}

// gatherSwitch lists a switch statement's arms in source order, the default
// arm last.
func (t *transformer) gatherSwitch(n *ast.SwitchStmt) ([]*branchInfo, bool, error) {
	subjT, err := t.res.ResolveExpr(n.Subject)
	if err != nil {
		return nil, false, err
	}

	var branches []*branchInfo
	for i := range n.Cases {
		c := &n.Cases[i]
		for _, v := range c.Values {
			vt, err := t.res.ResolveExpr(v)
			if err != nil {
				return nil, false, err
			}
			if !types.Equal(vt, subjT) {
				return nil, false, fmt.Errorf("%s: case value type %s does not match subject type %s",
					c.Span, vt, subjT)
			}
		}
		branches = append(branches, &branchInfo{
			span: c.Span, values: c.Values, body: c.Body, newBody: ast.NoBlock,
		})
	}
	if n.Default != ast.NoBlock {
		branches = append(branches, &branchInfo{span: n.Span, body: n.Default, newBody: ast.NoBlock})
		return branches, true, nil
	}
	return branches, false, nil
}

func (t *transformer) rebuildSwitch(n *ast.SwitchStmt, branches []*branchInfo, hasDefault bool) ast.StmtID {
	caseCount := len(branches)
	def := ast.NoBlock
	if hasDefault {
		caseCount--
		def = branches[len(branches)-1].finalBody()
	}

	cases := make([]ast.SwitchCase, 0, caseCount)
	for _, b := range branches[:caseCount] {
		cases = append(cases, ast.SwitchCase{Span: b.span, Values: b.values, Body: b.finalBody()})
	}
	return t.arena.AddStmt(&ast.SwitchStmt{Span: n.Span, Subject: n.Subject, Cases: cases, Default: def})
}

// lowerSelection recursively transforms every branch body, counts the
// result-producing branches, and applies one of the two strategies. A
// selection with no producing branch is ignored and emitted unchanged.
func (t *transformer) lowerSelection(bs *blockState, sid ast.StmtID, span position.Span, construct string, branches []*branchInfo, hasElse bool, rebuild func() ast.StmtID) error {
	for _, b := range branches {
		if b.avail != nil {
			cond, err := availability.Parse(b.avail.Constraint)
			if err != nil {
				return fmt.Errorf("%s: %w", b.span, err)
			}
			if !cond.Satisfied(t.target) {
				// The pinned target can never reach this branch. Its body
				// stays as dead code and contributes no result.
				b.child = &blockOutcome{span: b.span, out: b.body}
				continue
			}
		}
		if b.cond != nil {
			ct, err := t.res.ResolveExpr(b.cond)
			if err != nil {
				return err
			}
			if !types.Equal(ct, types.Bool) {
				return fmt.Errorf("%s: condition must be Bool, got %s", b.span, ct)
			}
		}

		t.res.Push()
		child, err := t.block(b.body)
		t.res.Pop()
		if err != nil {
			return err
		}
		b.child = child
	}

	var producing []*branchInfo
	anySkippable := !hasElse
	for _, b := range branches {
		if b.child.producing() {
			producing = append(producing, b)
		} else {
			anySkippable = true
		}
	}

	if len(producing) == 0 {
		bs.emit(sid)
		return nil
	}

	if t.caps.Either {
		return t.lowerEither(bs, span, construct, producing, anySkippable, rebuild)
	}
	return t.lowerSlots(bs, span, construct, producing, rebuild)
}

// branchValue is a producing branch's combined result, wrapped with
// buildLimitedAvailability when the branch is availability-guarded and the
// builder declares the operation (identity otherwise).
func (t *transformer) branchValue(b *branchInfo) (ast.Expr, types.Type, error) {
	e, typ, err := t.combinedOf(b.child, OpBlock, false)
	if err != nil {
		return nil, nil, err
	}
	if b.avail != nil && t.caps.LimitedAvailability {
		return t.callOp(b.span, OpLimitedAvailability, []callArg{{expr: e, typ: typ}})
	}
	return e, typ, nil
}

// lowerEither materializes the injection-tree strategy: a full binary tree
// with exactly one leaf per producing branch. The leaf reached via path P
// injects its value by folding P right to left, wrapping with
// buildEither(first:) for Left steps and buildEither(second:) for Right
// steps; when any branch can be skipped, the folded value is additionally
// wrapped as present and the merged variable is passed through
// buildOptional. The selection contributes exactly one partial result.
func (t *transformer) lowerEither(bs *blockState, span position.Span, construct string, producing []*branchInfo, anySkippable bool, rebuild func() ast.StmtID) error {
	paths := leafPaths(len(producing))

	injects := make([]ast.Expr, len(producing))
	var mergedT types.Type
	for i, b := range producing {
		e, typ, err := t.branchValue(b)
		if err != nil {
			return err
		}
		path := paths[i]
		for j := len(path) - 1; j >= 0; j-- {
			label := "first"
			if path[j] == stepRight {
				label = "second"
			}
			e, typ, err = t.callOp(b.span, OpEither, []callArg{{label: label, expr: e, typ: typ}})
			if err != nil {
				return err
			}
		}
		if anySkippable {
			e = &ast.SomeExpr{Span: b.span, X: e}
			typ = &types.Optional{Elem: typ}
		}

		injects[i] = e
		if mergedT == nil {
			mergedT = typ
		} else if !types.Equal(mergedT, typ) {
			return &TransformError{
				Kind: CombinatorTypeMismatch, Span: b.span, Construct: construct, Operation: OpEither,
				Message: fmt.Sprintf("branch injections have incompatible types %s and %s", mergedT, typ),
			}
		}
	}

	slot := t.fresh()
	decl := &ast.VarDecl{Span: span, Name: slot, Kind: ast.VarKindVar, Type: types.ToExpr(mergedT)}
	if anySkippable {
		decl.Value = &ast.NilLit{Span: span}
	}
	bs.emit(t.arena.AddStmt(decl))
	t.res.Declare(slot, mergedT)

	for i, b := range producing {
		t.arena.AppendStmt(b.child.out, t.arena.AddStmt(&ast.AssignStmt{
			Span:   b.span,
			Target: &ast.Ident{Span: b.span, Name: slot},
			Value:  injects[i],
		}))
		b.newBody = b.child.out
	}
	bs.emit(rebuild())

	if !anySkippable {
		bs.addPartial(partial{name: slot, typ: mergedT, span: span})
		return nil
	}

	if !t.caps.Optional {
		return errMissing(span, construct+" with a skippable branch", OpOptional)
	}
	pe, pt, err := t.callOp(span, OpOptional, []callArg{{expr: &ast.Ident{Span: span, Name: slot}, typ: mergedT}})
	if err != nil {
		return err
	}
	t.bindPartial(bs, span, pe, pt)
	return nil
}

// lowerSlots materializes the optional-variable-per-branch strategy: every
// producing branch gets its own slot, absent unless that branch ran, and
// each slot passes through buildOptional into its own partial result. A
// selection lowered this way may contribute several partial results to the
// same enclosing block.
func (t *transformer) lowerSlots(bs *blockState, span position.Span, construct string, producing []*branchInfo, rebuild func() ast.StmtID) error {
	if !t.caps.Optional {
		return errMissing(span, construct+" with a skippable branch", OpOptional)
	}

	type slotInfo struct {
		name string
		typ  *types.Optional
	}
	slots := make([]slotInfo, 0, len(producing))

	for _, b := range producing {
		e, typ, err := t.branchValue(b)
		if err != nil {
			return err
		}

		slot := t.fresh()
		slotT := &types.Optional{Elem: typ}
		bs.emit(t.arena.AddStmt(&ast.VarDecl{
			Span: span, Name: slot, Kind: ast.VarKindVar,
			Type:  types.ToExpr(slotT),
			Value: &ast.NilLit{Span: span},
		}))
		t.res.Declare(slot, slotT)

		t.arena.AppendStmt(b.child.out, t.arena.AddStmt(&ast.AssignStmt{
			Span:   b.span,
			Target: &ast.Ident{Span: b.span, Name: slot},
			Value:  &ast.SomeExpr{Span: b.span, X: e},
		}))
		b.newBody = b.child.out
		slots = append(slots, slotInfo{name: slot, typ: slotT})
	}
	bs.emit(rebuild())

	for _, s := range slots {
		pe, pt, err := t.callOp(span, OpOptional, []callArg{{expr: &ast.Ident{Span: span, Name: s.name}, typ: s.typ}})
		if err != nil {
			return err
		}
		t.bindPartial(bs, span, pe, pt)
	}
	return nil
}
