package builder

import (
	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/position"
)

// assemble finalizes the outermost block: its ordered partial results are
// combined with buildBlock (a zero-argument call when the body produced
// nothing), optionally passed through buildFinalResult, and returned as the
// function's value.
func (t *transformer) assemble(span position.Span, origBody ast.BlockID, outcome *blockOutcome) (Result, error) {
	combined, ctype, err := t.combine(span, OpBlock, outcome.partials)
	if err != nil {
		return Result{}, err
	}

	outBlock := outcome.out
	if !outcome.producing() {
		// The statements stayed untouched; the rewritten body still needs
		// its own block so the original one is not mutated.
		stmts := append([]ast.StmtID(nil), t.arena.Block(origBody).Stmts...)
		outBlock = t.arena.AddBlock(ast.Block{Span: span, Stmts: stmts})
	}

	if t.caps.FinalResult {
		combined, ctype, err = t.callOp(span, OpFinalResult, []callArg{{expr: combined, typ: ctype}})
		if err != nil {
			return Result{}, err
		}
	}

	t.arena.AppendStmt(outBlock, t.arena.AddStmt(&ast.ReturnStmt{Span: span, Value: combined}))
	return Result{Body: outBlock, Transformed: true, ReturnType: ctype}, nil
}
