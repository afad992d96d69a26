// Package codegen renders vela functions as Go source using jennifer.
// Transformed bodies come out as ordinary Go: synthesized bindings,
// combinator calls on the builder value, and a trailing return.
package codegen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/types"
)

// Function is one function to render; Body may be the rewritten body
// produced by the builder transform, and ReturnType its assembled result
// type (nil falls back to the declared annotation).
type Function struct {
	Decl       *ast.FuncDecl
	Body       ast.BlockID
	ReturnType types.Type
}

// Generate renders a Go file containing the given functions plus the
// support helpers the lowered forms rely on.
func Generate(pkg string, arena *ast.Arena, fns []Function) (string, error) {
	g := &generator{arena: arena}
	f := jen.NewFile(pkg)

	f.Comment("__some lifts a value into its optional form.")
	f.Func().Id("__some").Types(jen.Id("T").Any()).Params(jen.Id("v").Id("T")).Op("*").Id("T").Block(
		jen.Return(jen.Op("&").Id("v")),
	)
	f.Line()
	f.Comment("__available reports whether the running platform satisfies a version constraint.")
	f.Func().Id("__available").Params(jen.Id("constraint").String()).Bool().Block(
		jen.Return(jen.Id("platformSatisfies").Call(jen.Id("constraint"))),
	)

	for _, fn := range fns {
		f.Line()
		code, err := g.function(fn)
		if err != nil {
			return "", err
		}
		f.Add(code)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering generated code: %w", err)
	}
	return buf.String(), nil
}

type generator struct {
	arena *ast.Arena
}

func (g *generator) function(fn Function) (*jen.Statement, error) {
	params := make([]jen.Code, 0, len(fn.Decl.Params))
	for _, p := range fn.Decl.Params {
		params = append(params, jen.Id(p.Name).Add(goType(types.FromExpr(p.Type))))
	}

	stmt := jen.Func().Id(fn.Decl.Name).Params(params...)
	switch {
	case fn.ReturnType != nil:
		stmt.Add(goType(fn.ReturnType))
	case fn.Decl.Return != nil:
		stmt.Add(goType(types.FromExpr(fn.Decl.Return)))
	}

	body, err := g.blockStmts(fn.Body)
	if err != nil {
		return nil, err
	}
	return stmt.Block(body...), nil
}

func (g *generator) blockStmts(id ast.BlockID) ([]jen.Code, error) {
	if id == ast.NoBlock {
		return nil, nil
	}
	blk := g.arena.Block(id)
	out := make([]jen.Code, 0, len(blk.Stmts))
	for _, sid := range blk.Stmts {
		code, err := g.stmt(sid)
		if err != nil {
			return nil, err
		}
		if code != nil {
			out = append(out, code)
		}
	}
	return out, nil
}

func (g *generator) stmt(sid ast.StmtID) (jen.Code, error) {
	switch n := g.arena.Stmt(sid).(type) {
	case *ast.VarDecl:
		return g.varDecl(n)

	case *ast.AssignStmt:
		target, err := g.expr(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := g.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return jen.Add(target).Op("=").Add(value), nil

	case *ast.ExprStmt:
		return g.expr(n.X)

	case *ast.IfStmt:
		return g.ifStmt(n)

	case *ast.SwitchStmt:
		return g.switchStmt(n)

	case *ast.DoStmt:
		body, err := g.blockStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return jen.Block(body...), nil

	case *ast.ForInStmt:
		seq, err := g.expr(n.Seq)
		if err != nil {
			return nil, err
		}
		body, err := g.blockStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return jen.For(jen.List(jen.Id("_"), jen.Id(n.Var)).Op(":=").Range().Add(seq)).Block(body...), nil

	case *ast.ReturnStmt:
		if n.Value == nil {
			return jen.Return(), nil
		}
		value, err := g.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return jen.Return(value), nil

	case *ast.BreakStmt:
		return jen.Break(), nil

	case *ast.ContinueStmt:
		return jen.Continue(), nil

	case *ast.GuardStmt:
		cond, err := g.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := g.blockStmts(n.Else)
		if err != nil {
			return nil, err
		}
		return jen.If(jen.Op("!").Parens(cond)).Block(body...), nil

	case *ast.DeferStmt:
		body, err := g.blockStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return jen.Defer().Func().Params().Block(body...).Call(), nil

	case *ast.ThrowStmt:
		value, err := g.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return jen.Panic(value), nil

	case *ast.DirectiveStmt:
		// Compile-time only; surfaces as a comment in the output.
		return jen.Commentf("%s: %s", n.Level, n.Message), nil

	default:
		return nil, fmt.Errorf("cannot generate statement %T", n)
	}
}

func (g *generator) varDecl(n *ast.VarDecl) (jen.Code, error) {
	var value *jen.Statement
	if n.Value != nil {
		v, err := g.expr(n.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}

	if n.Type != nil {
		decl := jen.Var().Id(n.Name).Add(goType(types.FromExpr(n.Type)))
		if value != nil {
			decl.Op("=").Add(value)
		}
		return decl, nil
	}
	if value == nil {
		return nil, fmt.Errorf("variable %s has neither type nor value", n.Name)
	}
	return jen.Id(n.Name).Op(":=").Add(value), nil
}

func (g *generator) ifStmt(n *ast.IfStmt) (jen.Code, error) {
	var cond *jen.Statement
	switch {
	case n.Avail != nil:
		cond = jen.Id("__available").Call(jen.Lit(n.Avail.Constraint))
	default:
		c, err := g.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		cond = c
	}

	body, err := g.blockStmts(n.Then)
	if err != nil {
		return nil, err
	}
	stmt := jen.If(cond).Block(body...)

	switch {
	case n.ElseIf != ast.NoStmt:
		elseStmt, err := g.stmt(n.ElseIf)
		if err != nil {
			return nil, err
		}
		stmt.Else().Add(elseStmt)
	case n.ElseBlock != ast.NoBlock:
		elseBody, err := g.blockStmts(n.ElseBlock)
		if err != nil {
			return nil, err
		}
		stmt.Else().Block(elseBody...)
	}
	return stmt, nil
}

func (g *generator) switchStmt(n *ast.SwitchStmt) (jen.Code, error) {
	subject, err := g.expr(n.Subject)
	if err != nil {
		return nil, err
	}

	var arms []jen.Code
	for _, c := range n.Cases {
		values := make([]jen.Code, 0, len(c.Values))
		for _, v := range c.Values {
			ve, err := g.expr(v)
			if err != nil {
				return nil, err
			}
			values = append(values, ve)
		}
		body, err := g.blockStmts(c.Body)
		if err != nil {
			return nil, err
		}
		arms = append(arms, jen.Case(values...).Block(body...))
	}
	if n.Default != ast.NoBlock {
		body, err := g.blockStmts(n.Default)
		if err != nil {
			return nil, err
		}
		arms = append(arms, jen.Default().Block(body...))
	}
	return jen.Switch(subject).Block(arms...), nil
}

func (g *generator) expr(e ast.Expr) (*jen.Statement, error) {
	switch n := e.(type) {
	case *ast.Ident:
		return jen.Id(n.Name), nil

	case *ast.Literal:
		return jen.Lit(n.Value), nil

	case *ast.CallExpr:
		args := make([]jen.Code, 0, len(n.Args))
		for _, a := range n.Args {
			ae, err := g.expr(a.Value)
			if err != nil {
				return nil, err
			}
			args = append(args, ae)
		}
		if id, ok := n.Callee.(*ast.Ident); ok && id.Name == "__append" {
			return jen.Append(args...), nil
		}
		callee, err := g.expr(n.Callee)
		if err != nil {
			return nil, err
		}
		return callee.Call(args...), nil

	case *ast.MemberExpr:
		x, err := g.expr(n.X)
		if err != nil {
			return nil, err
		}
		return x.Dot(n.Member), nil

	case *ast.BinaryExpr:
		left, err := g.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := g.expr(n.Right)
		if err != nil {
			return nil, err
		}
		return jen.Parens(left.Op(n.Op.String()).Add(right)), nil

	case *ast.UnaryExpr:
		x, err := g.expr(n.X)
		if err != nil {
			return nil, err
		}
		return jen.Parens(jen.Op(n.Op.String()).Add(x)), nil

	case *ast.ArrayLit:
		elems := make([]jen.Code, 0, len(n.Elems))
		for _, el := range n.Elems {
			ee, err := g.expr(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ee)
		}
		return jen.Index().Add(arrayElemType(n)).Values(elems...), nil

	case *ast.SomeExpr:
		x, err := g.expr(n.X)
		if err != nil {
			return nil, err
		}
		return jen.Id("__some").Call(x), nil

	case *ast.NilLit:
		return jen.Nil(), nil

	case *ast.VoidLit:
		return jen.Struct().Values(), nil

	default:
		return nil, fmt.Errorf("cannot generate expression %T", n)
	}
}

// arrayElemType guesses the Go element type of a source-level array literal
// from its first element; synthesized accumulators always carry an explicit
// annotation and never reach this path.
func arrayElemType(n *ast.ArrayLit) *jen.Statement {
	if len(n.Elems) == 0 {
		return jen.Any()
	}
	if lit, ok := n.Elems[0].(*ast.Literal); ok {
		switch lit.Kind {
		case ast.LiteralInt:
			return jen.Int64()
		case ast.LiteralFloat:
			return jen.Float64()
		case ast.LiteralString:
			return jen.String()
		case ast.LiteralBool:
			return jen.Bool()
		}
	}
	return jen.Any()
}

// goType maps a vela type to its Go representation: optionals become
// pointers, arrays slices, Void the empty struct.
func goType(t types.Type) *jen.Statement {
	switch n := t.(type) {
	case *types.Named:
		switch n.Name {
		case "Int":
			return jen.Int64()
		case "Float":
			return jen.Float64()
		case "String":
			return jen.String()
		case "Bool":
			return jen.Bool()
		default:
			return jen.Id(n.Name)
		}
	case *types.Optional:
		return jen.Op("*").Add(goType(n.Elem))
	case *types.Array:
		return jen.Index().Add(goType(n.Elem))
	case *types.VoidType:
		return jen.Struct()
	default:
		return jen.Any()
	}
}
