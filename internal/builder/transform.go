// Package builder implements the statement-to-expression transform applied
// to function bodies marked with a builder attribute. The transform rewrites
// an imperative statement sequence into a single aggregated value by routing
// every statement's contribution through the builder type's combinator
// operations. Statements keep their source order and run exactly once per
// dynamic execution; only the collection of otherwise-discarded values
// changes.
package builder

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/position"
	"github.com/vela-lang/vela/internal/types"
)

// Options carries per-invocation state supplied by the host. Activation is
// explicit: the host decides which bodies are transformed and under which
// builder type, and pre-computes the non-local-return flag (HasNonLocalExit).
type Options struct {
	// HasNonLocalReturn suppresses the transform for this body entirely;
	// the original statements are returned unchanged.
	HasNonLocalReturn bool
	// TargetVersion is the platform version availability conditions are
	// checked against. Nil leaves availability as a runtime concern.
	TargetVersion *semver.Version
}

// Result is the outcome of one transform invocation.
type Result struct {
	// Body is the rewritten statement sequence, ending in a return of the
	// combined result. Equal to the input body when the transform was
	// suppressed.
	Body ast.BlockID
	// Transformed reports whether the body was rewritten.
	Transformed bool
	// ReturnType is the type of the value the rewritten body returns,
	// after buildFinalResult when declared. Nil when suppressed.
	ReturnType types.Type
}

// Transform rewrites one function body under a builder type. All failures
// are hard: the first illegal statement, missing capability, or combinator
// type error halts the descent and is returned as the single failure for
// this body. No partial transform is ever emitted.
func Transform(a *ast.Arena, body ast.BlockID, b *types.BuilderType, caps Capabilities, res *types.Resolver, opts Options) (Result, error) {
	if opts.HasNonLocalReturn {
		return Result{Body: body}, nil
	}

	span := a.Block(body).Span
	if !caps.Block {
		return Result{}, errMissing(span, "function body", OpBlock)
	}

	t := &transformer{
		arena:   a,
		builder: b,
		caps:    caps,
		res:     res,
		target:  opts.TargetVersion,
	}

	outcome, err := t.block(body)
	if err != nil {
		return Result{}, err
	}

	return t.assemble(span, body, outcome)
}

// transformer holds the state of one recursive descent. One descent is
// single-threaded; only the capability cache is shared between invocations.
type transformer struct {
	arena   *ast.Arena
	builder *types.BuilderType
	caps    Capabilities
	res     *types.Resolver
	target  *semver.Version
	ntemp   int
}

// fresh returns the next transform-generated identifier. Identities are
// unique across one invocation, so in particular unique within the block
// that declares them.
func (t *transformer) fresh() string {
	name := fmt.Sprintf("__b%d", t.ntemp)
	t.ntemp++
	return name
}

// partial is one statement's or nested block's contribution to its enclosing
// block, bound to a transform-generated identifier.
type partial struct {
	name string
	typ  types.Type
	span position.Span
}

// blockState accumulates the rewritten statements and ordered partial
// results of one block while its statements are processed.
type blockState struct {
	stmts    []ast.StmtID
	partials []partial
}

func (bs *blockState) emit(id ast.StmtID) {
	bs.stmts = append(bs.stmts, id)
}

func (bs *blockState) addPartial(p partial) {
	bs.partials = append(bs.partials, p)
}

// blockOutcome is what one processed block exposes to its parent. A block
// with zero partial results is ignored: out equals the original block and
// the statements are untouched.
type blockOutcome struct {
	span     position.Span
	out      ast.BlockID
	partials []partial
}

func (o *blockOutcome) producing() bool { return len(o.partials) > 0 }

// block processes one statement sequence in source order. Combination of
// the partial results is the caller's decision: do bodies combine with
// buildDo, nested blocks with a single partial expose it directly, and the
// outermost body always combines with buildBlock.
func (t *transformer) block(body ast.BlockID) (*blockOutcome, error) {
	span := t.arena.Block(body).Span
	stmts := append([]ast.StmtID(nil), t.arena.Block(body).Stmts...)

	bs := &blockState{}
	for _, sid := range stmts {
		if err := t.statement(bs, sid); err != nil {
			return nil, err
		}
	}

	if len(bs.partials) == 0 {
		return &blockOutcome{span: span, out: body}, nil
	}

	out := t.arena.AddBlock(ast.Block{Span: span, Stmts: bs.stmts})
	return &blockOutcome{span: span, out: out, partials: bs.partials}, nil
}

// combinedOf turns a producing block's partial results into its single
// combined value. When alwaysCombine is false a lone partial passes through
// uncombined; do bodies and the outermost block set alwaysCombine.
func (t *transformer) combinedOf(o *blockOutcome, combineOp string, alwaysCombine bool) (ast.Expr, types.Type, error) {
	if !alwaysCombine && len(o.partials) == 1 {
		p := o.partials[0]
		return &ast.Ident{Span: p.span, Name: p.name}, p.typ, nil
	}
	return t.combine(o.span, combineOp, o.partials)
}

// statement processes one statement and appends its rewritten form plus zero
// or more partial results to bs.
func (t *transformer) statement(bs *blockState, sid ast.StmtID) error {
	s := t.arena.Stmt(sid)
	span := s.GetSpan()

	switch Classify(s) {
	case ClassIllegal:
		return errIllegal(span, constructName(s))

	case ClassDeclaration:
		return t.declaration(bs, sid, s.(*ast.VarDecl))

	case ClassThrow:
		if _, err := t.res.ResolveExpr(s.(*ast.ThrowStmt).Value); err != nil {
			return err
		}
		bs.emit(sid)
		return nil

	case ClassDiagnostic:
		bs.emit(sid)
		return nil

	case ClassPlainExpr:
		return t.plainExpr(bs, s.(*ast.ExprStmt))

	case ClassAssign:
		return t.assignment(bs, sid, s.(*ast.AssignStmt))

	case ClassDo:
		return t.doBlock(bs, sid, s.(*ast.DoStmt))

	case ClassForIn:
		return t.forIn(bs, sid, s.(*ast.ForInStmt))

	case ClassSelection:
		return t.selection(bs, sid, s)

	default:
		return errIllegal(span, constructName(s))
	}
}

// declaration passes a local binding through untouched, recording its type
// so later statement expressions can reference it.
func (t *transformer) declaration(bs *blockState, sid ast.StmtID, d *ast.VarDecl) error {
	var declared types.Type
	switch {
	case d.Type != nil:
		declared = types.FromExpr(d.Type)
		if d.Value != nil {
			vt, err := t.res.ResolveExpr(d.Value)
			if err != nil {
				return err
			}
			if !types.AssignableTo(vt, declared) {
				return fmt.Errorf("%s: cannot initialize %s with %s", d.Span, declared, vt)
			}
		}
	case d.Value != nil:
		vt, err := t.res.ResolveExpr(d.Value)
		if err != nil {
			return err
		}
		declared = vt
	default:
		return fmt.Errorf("%s: cannot infer type of %s without initializer", d.Span, d.Name)
	}

	t.res.Declare(d.Name, declared)
	bs.emit(sid)
	return nil
}

// plainExpr lifts one expression statement's value through buildExpression
// (identity when absent) and binds it as a new partial result.
func (t *transformer) plainExpr(bs *blockState, e *ast.ExprStmt) error {
	et, err := t.res.ResolveExpr(e.X)
	if err != nil {
		return err
	}

	lifted, lt, err := t.lift(e.Span, e.X, et)
	if err != nil {
		return err
	}

	t.bindPartial(bs, e.Span, lifted, lt)
	return nil
}

// assignment keeps the assignment in place and, when the builder lifts the
// no-value type, contributes the lifted unit as a partial result. A builder
// without a matching buildExpression overload leaves the statement untouched
// with no contribution.
func (t *transformer) assignment(bs *blockState, sid ast.StmtID, as *ast.AssignStmt) error {
	tt, err := t.res.ResolveExpr(as.Target)
	if err != nil {
		return err
	}
	vt, err := t.res.ResolveExpr(as.Value)
	if err != nil {
		return err
	}
	if !types.AssignableTo(vt, tt) {
		return fmt.Errorf("%s: cannot assign %s to %s", as.Span, vt, tt)
	}

	bs.emit(sid)

	if !t.caps.Expression {
		return nil
	}
	if _, m := types.Match(t.builder.Overloads(OpExpression), []types.CallArg{{Type: types.Void}}); m != types.MatchOK {
		return nil
	}

	lifted, lt, err := t.callOp(as.Span, OpExpression, []callArg{{expr: &ast.VoidLit{Span: as.Span}, typ: types.Void}})
	if err != nil {
		return err
	}
	t.bindPartial(bs, as.Span, lifted, lt)
	return nil
}

// doBlock recursively transforms a do body and combines it with buildDo. The
// child's combined result escapes through a single synthesized variable
// assigned as the body's last statement.
func (t *transformer) doBlock(bs *blockState, sid ast.StmtID, d *ast.DoStmt) error {
	t.res.Push()
	child, err := t.block(d.Body)
	t.res.Pop()
	if err != nil {
		return err
	}

	if !child.producing() {
		bs.emit(sid)
		return nil
	}
	if !t.caps.Do {
		return errMissing(d.Span, "do", OpDo)
	}

	combined, ctype, err := t.combinedOf(child, OpDo, true)
	if err != nil {
		return err
	}

	name := t.fresh()
	bs.emit(t.arena.AddStmt(&ast.VarDecl{
		Span: d.Span, Name: name, Kind: ast.VarKindVar, Type: types.ToExpr(ctype),
	}))
	t.arena.AppendStmt(child.out, t.arena.AddStmt(&ast.AssignStmt{
		Span:   d.Span,
		Target: &ast.Ident{Span: d.Span, Name: name},
		Value:  combined,
	}))
	bs.emit(t.arena.AddStmt(&ast.DoStmt{Span: d.Span, Body: child.out}))

	t.res.Declare(name, ctype)
	bs.addPartial(partial{name: name, typ: ctype, span: d.Span})
	return nil
}

// forIn transforms the loop body for one iteration's shape; each iteration
// appends its combined result to a synthesized sequence, which after the
// loop is passed as one argument to buildArray.
func (t *transformer) forIn(bs *blockState, sid ast.StmtID, f *ast.ForInStmt) error {
	seqT, err := t.res.ResolveExpr(f.Seq)
	if err != nil {
		return err
	}
	arr, ok := seqT.(*types.Array)
	if !ok {
		return fmt.Errorf("%s: cannot iterate over %s", f.Span, seqT)
	}

	t.res.Push()
	t.res.Declare(f.Var, arr.Elem)
	child, err := t.block(f.Body)
	t.res.Pop()
	if err != nil {
		return err
	}

	if !child.producing() {
		bs.emit(sid)
		return nil
	}
	if !t.caps.Array {
		return errMissing(f.Span, "for-in loop", OpArray)
	}

	combined, ctype, err := t.combinedOf(child, OpBlock, false)
	if err != nil {
		return err
	}

	accType := &types.Array{Elem: ctype}
	acc := t.fresh()
	bs.emit(t.arena.AddStmt(&ast.VarDecl{
		Span: f.Span, Name: acc, Kind: ast.VarKindVar,
		Type:  types.ToExpr(accType),
		Value: &ast.ArrayLit{Span: f.Span},
	}))
	t.res.Declare(acc, accType)

	appendCall := &ast.CallExpr{
		Span:   f.Span,
		Callee: &ast.Ident{Span: f.Span, Name: "__append"},
		Args: []ast.Arg{
			{Value: &ast.Ident{Span: f.Span, Name: acc}},
			{Value: combined},
		},
	}
	t.arena.AppendStmt(child.out, t.arena.AddStmt(&ast.AssignStmt{
		Span:   f.Span,
		Target: &ast.Ident{Span: f.Span, Name: acc},
		Value:  appendCall,
	}))
	bs.emit(t.arena.AddStmt(&ast.ForInStmt{Span: f.Span, Var: f.Var, Seq: f.Seq, Body: child.out}))

	pe, pt, err := t.callOp(f.Span, OpArray, []callArg{{expr: &ast.Ident{Span: f.Span, Name: acc}, typ: accType}})
	if err != nil {
		return err
	}
	t.bindPartial(bs, f.Span, pe, pt)
	return nil
}

// bindPartial binds a value to a fresh identifier and records it as the next
// partial result of the enclosing block.
func (t *transformer) bindPartial(bs *blockState, span position.Span, value ast.Expr, typ types.Type) {
	name := t.fresh()
	bs.emit(t.arena.AddStmt(&ast.VarDecl{Span: span, Name: name, Kind: ast.VarKindLet, Value: value}))
	t.res.Declare(name, typ)
	bs.addPartial(partial{name: name, typ: typ, span: span})
}

// lift wraps a statement value through buildExpression when declared;
// identity lift otherwise.
func (t *transformer) lift(span position.Span, e ast.Expr, et types.Type) (ast.Expr, types.Type, error) {
	if !t.caps.Expression {
		return e, et, nil
	}
	return t.callOp(span, OpExpression, []callArg{{expr: e, typ: et}})
}

// combine invokes combineOp over a block's ordered partial results.
func (t *transformer) combine(span position.Span, combineOp string, partials []partial) (ast.Expr, types.Type, error) {
	args := make([]callArg, 0, len(partials))
	for _, p := range partials {
		args = append(args, callArg{expr: &ast.Ident{Span: p.span, Name: p.name}, typ: p.typ})
	}
	return t.callOp(span, combineOp, args)
}

// callArg is one argument of a synthesized combinator call, with its
// already-resolved type.
type callArg struct {
	label string
	expr  ast.Expr
	typ   types.Type
}

// callOp type-checks and synthesizes one combinator call. Argument types are
// fixed inputs: a signature that cannot accept them fails here rather than
// forcing the types to change (forward-only propagation).
func (t *transformer) callOp(span position.Span, op string, args []callArg) (ast.Expr, types.Type, error) {
	sigs := t.builder.Overloads(op)
	if len(sigs) == 0 {
		return nil, nil, errMissing(span, "", op)
	}

	margs := make([]types.CallArg, 0, len(args))
	for _, a := range args {
		margs = append(margs, types.CallArg{Label: a.label, Type: a.typ})
	}

	idx, m := types.Match(sigs, margs)
	switch m {
	case types.MatchOK:
		callArgs := make([]ast.Arg, 0, len(args))
		for _, a := range args {
			callArgs = append(callArgs, ast.Arg{Label: a.label, Value: a.expr})
		}
		call := &ast.CallExpr{
			Span:   span,
			Callee: &ast.MemberExpr{Span: span, X: &ast.Ident{Span: span, Name: t.builder.Name}, Member: op},
			Args:   callArgs,
		}
		return call, sigs[idx].Result, nil

	case types.MatchNoTypes:
		return nil, nil, &TransformError{
			Kind: CombinatorTypeMismatch, Span: span, Operation: op,
			Message: fmt.Sprintf("no overload of %s.%s accepts %s", t.builder.Name, op, formatArgTypes(margs)),
		}

	default:
		return nil, nil, &TransformError{
			Kind: UnresolvableOverload, Span: span, Operation: op,
			Message: fmt.Sprintf("%s.%s exists but no overload matches this call shape", t.builder.Name, op),
		}
	}
}

func formatArgTypes(args []types.CallArg) string {
	out := "("
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		if a.Label != "" {
			out += a.Label + ": "
		}
		out += a.Type.String()
	}
	return out + ")"
}
