// Package parser implements the recursive-descent parser for the vela
// surface syntax, producing arena-backed AST nodes.
package parser

import (
	"fmt"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/lexer"
	"github.com/vela-lang/vela/internal/position"
)

// Parser consumes a token stream and builds an ast.File. Parsing stops at
// the first syntax error.
type Parser struct {
	arena *ast.Arena
	toks  []lexer.Token
	pos   int
}

// ParseFile parses one source file.
func ParseFile(filename, src string) (*ast.File, *ast.Arena, error) {
	toks := lexer.New(filename, src).Tokenize()
	last := toks[len(toks)-1]
	if last.Type == lexer.TokenError {
		return nil, nil, fmt.Errorf("%s: lexical error: %s", last.Span, last.Lexeme)
	}

	p := &Parser{arena: ast.NewArena(), toks: toks}
	file, err := p.file()
	if err != nil {
		return nil, nil, err
	}
	return file, p.arena, nil
}

func (p *Parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *Parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if tok.Type != lexer.TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.peek().Type == tt }

func (p *Parser) accept(tt lexer.TokenType) (lexer.Token, bool) {
	if p.at(tt) {
		return p.next(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.at(tt) {
		return p.next(), nil
	}
	tok := p.peek()
	return tok, fmt.Errorf("%s: expected %s, found %q", tok.Span, what, tok.Lexeme)
}

func (p *Parser) file() (*ast.File, error) {
	file := &ast.File{}
	for !p.at(lexer.TokenEOF) {
		fn, err := p.funcDecl()
		if err != nil {
			return nil, err
		}
		file.Funcs = append(file.Funcs, fn)
	}
	if len(file.Funcs) > 0 {
		file.Span = file.Funcs[0].Span.Union(file.Funcs[len(file.Funcs)-1].Span)
	}
	return file, nil
}

func (p *Parser) funcDecl() (*ast.FuncDecl, error) {
	start, err := p.expect(lexer.TokenFn, "fn")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
		return nil, err
	}

	var params []*ast.Param
	for !p.at(lexer.TokenRParen) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.TokenComma, ","); err != nil {
				return nil, err
			}
		}
		pname, err := p.expect(lexer.TokenIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenColon, ":"); err != nil {
			return nil, err
		}
		ptype, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Span: pname.Span, Name: pname.Lexeme, Type: ptype})
	}
	p.next() // ')'

	var ret ast.TypeExpr
	if _, ok := p.accept(lexer.TokenArrow); ok {
		if ret, err = p.typeExpr(); err != nil {
			return nil, err
		}
	}

	builderName := ""
	if _, ok := p.accept(lexer.TokenAt); ok {
		attr, err := p.expect(lexer.TokenIdent, "attribute name")
		if err != nil {
			return nil, err
		}
		if attr.Lexeme != "builder" {
			return nil, fmt.Errorf("%s: unknown attribute @%s", attr.Span, attr.Lexeme)
		}
		if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
			return nil, err
		}
		bname, err := p.expect(lexer.TokenIdent, "builder type name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return nil, err
		}
		builderName = bname.Lexeme
	}

	body, end, err := p.block()
	if err != nil {
		return nil, err
	}

	return &ast.FuncDecl{
		Span:    start.Span.Union(end),
		Name:    name.Lexeme,
		Params:  params,
		Return:  ret,
		Builder: builderName,
		Body:    body,
	}, nil
}

func (p *Parser) typeExpr() (ast.TypeExpr, error) {
	var base ast.TypeExpr
	switch {
	case p.at(lexer.TokenLBracket):
		open := p.next()
		elem, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(lexer.TokenRBracket, "]")
		if err != nil {
			return nil, err
		}
		base = &ast.ArrayType{Span: open.Span.Union(closeTok.Span), Elem: elem}
	case p.at(lexer.TokenIdent):
		tok := p.next()
		base = &ast.NamedType{Span: tok.Span, Name: tok.Lexeme}
	default:
		tok := p.peek()
		return nil, fmt.Errorf("%s: expected type, found %q", tok.Span, tok.Lexeme)
	}

	for {
		q, ok := p.accept(lexer.TokenQuestion)
		if !ok {
			return base, nil
		}
		base = &ast.OptionalType{Span: base.GetSpan().Union(q.Span), Elem: base}
	}
}

// block parses "{ stmt* }" and returns the block plus its closing span.
func (p *Parser) block() (ast.BlockID, position.Span, error) {
	open, err := p.expect(lexer.TokenLBrace, "{")
	if err != nil {
		return ast.NoBlock, position.Span{}, err
	}

	var stmts []ast.StmtID
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		sid, err := p.statement()
		if err != nil {
			return ast.NoBlock, position.Span{}, err
		}
		stmts = append(stmts, sid)
	}
	closeTok, err := p.expect(lexer.TokenRBrace, "}")
	if err != nil {
		return ast.NoBlock, position.Span{}, err
	}

	span := open.Span.Union(closeTok.Span)
	return p.arena.AddBlock(ast.Block{Span: span, Stmts: stmts}), span, nil
}

func (p *Parser) statement() (ast.StmtID, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenLet, lexer.TokenVar:
		return p.varDecl()
	case lexer.TokenIf:
		return p.ifStmt()
	case lexer.TokenSwitch:
		return p.switchStmt()
	case lexer.TokenDo:
		return p.doStmt()
	case lexer.TokenFor:
		return p.forStmt()
	case lexer.TokenReturn:
		p.next()
		var value ast.Expr
		if !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenSemicolon) {
			var err error
			if value, err = p.expr(); err != nil {
				return ast.NoStmt, err
			}
		}
		p.accept(lexer.TokenSemicolon)
		return p.arena.AddStmt(&ast.ReturnStmt{Span: tok.Span, Value: value}), nil
	case lexer.TokenBreak:
		p.next()
		p.accept(lexer.TokenSemicolon)
		return p.arena.AddStmt(&ast.BreakStmt{Span: tok.Span}), nil
	case lexer.TokenContinue:
		p.next()
		p.accept(lexer.TokenSemicolon)
		return p.arena.AddStmt(&ast.ContinueStmt{Span: tok.Span}), nil
	case lexer.TokenGuard:
		p.next()
		cond, err := p.expr()
		if err != nil {
			return ast.NoStmt, err
		}
		if _, err := p.expect(lexer.TokenElse, "else"); err != nil {
			return ast.NoStmt, err
		}
		body, end, err := p.block()
		if err != nil {
			return ast.NoStmt, err
		}
		return p.arena.AddStmt(&ast.GuardStmt{Span: tok.Span.Union(end), Cond: cond, Else: body}), nil
	case lexer.TokenDefer:
		p.next()
		body, end, err := p.block()
		if err != nil {
			return ast.NoStmt, err
		}
		return p.arena.AddStmt(&ast.DeferStmt{Span: tok.Span.Union(end), Body: body}), nil
	case lexer.TokenThrow:
		p.next()
		value, err := p.expr()
		if err != nil {
			return ast.NoStmt, err
		}
		p.accept(lexer.TokenSemicolon)
		return p.arena.AddStmt(&ast.ThrowStmt{Span: tok.Span.Union(value.GetSpan()), Value: value}), nil
	case lexer.TokenHashWarning, lexer.TokenHashError:
		return p.directive()
	default:
		return p.exprOrAssign()
	}
}

func (p *Parser) varDecl() (ast.StmtID, error) {
	kw := p.next()
	kind := ast.VarKindLet
	if kw.Type == lexer.TokenVar {
		kind = ast.VarKindVar
	}

	name, err := p.expect(lexer.TokenIdent, "variable name")
	if err != nil {
		return ast.NoStmt, err
	}

	var typ ast.TypeExpr
	if _, ok := p.accept(lexer.TokenColon); ok {
		if typ, err = p.typeExpr(); err != nil {
			return ast.NoStmt, err
		}
	}

	var value ast.Expr
	if _, ok := p.accept(lexer.TokenAssign); ok {
		if value, err = p.expr(); err != nil {
			return ast.NoStmt, err
		}
	}
	p.accept(lexer.TokenSemicolon)

	span := kw.Span.Union(name.Span)
	if value != nil {
		span = span.Union(value.GetSpan())
	}
	return p.arena.AddStmt(&ast.VarDecl{Span: span, Name: name.Lexeme, Kind: kind, Type: typ, Value: value}), nil
}

func (p *Parser) ifStmt() (ast.StmtID, error) {
	kw := p.next()

	var cond ast.Expr
	var avail *ast.AvailabilityClause
	if p.at(lexer.TokenAvailable) {
		aTok := p.next()
		if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
			return ast.NoStmt, err
		}
		cons, err := p.expect(lexer.TokenString, "availability constraint string")
		if err != nil {
			return ast.NoStmt, err
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return ast.NoStmt, err
		}
		avail = &ast.AvailabilityClause{Span: aTok.Span, Constraint: cons.Lexeme}
	} else {
		var err error
		if cond, err = p.expr(); err != nil {
			return ast.NoStmt, err
		}
	}

	then, end, err := p.block()
	if err != nil {
		return ast.NoStmt, err
	}

	stmt := &ast.IfStmt{Span: kw.Span.Union(end), Cond: cond, Avail: avail, Then: then, ElseIf: ast.NoStmt, ElseBlock: ast.NoBlock}
	if _, ok := p.accept(lexer.TokenElse); ok {
		if p.at(lexer.TokenIf) {
			elseIf, err := p.ifStmt()
			if err != nil {
				return ast.NoStmt, err
			}
			stmt.ElseIf = elseIf
			stmt.Span = stmt.Span.Union(p.arena.Stmt(elseIf).GetSpan())
		} else {
			elseBlock, elseEnd, err := p.block()
			if err != nil {
				return ast.NoStmt, err
			}
			stmt.ElseBlock = elseBlock
			stmt.Span = stmt.Span.Union(elseEnd)
		}
	}
	return p.arena.AddStmt(stmt), nil
}

func (p *Parser) switchStmt() (ast.StmtID, error) {
	kw := p.next()
	subject, err := p.expr()
	if err != nil {
		return ast.NoStmt, err
	}
	if _, err := p.expect(lexer.TokenLBrace, "{"); err != nil {
		return ast.NoStmt, err
	}

	stmt := &ast.SwitchStmt{Span: kw.Span, Subject: subject, Default: ast.NoBlock}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		switch {
		case p.at(lexer.TokenCase):
			caseTok := p.next()
			var values []ast.Expr
			for {
				v, err := p.expr()
				if err != nil {
					return ast.NoStmt, err
				}
				values = append(values, v)
				if _, ok := p.accept(lexer.TokenComma); !ok {
					break
				}
			}
			if _, err := p.expect(lexer.TokenColon, ":"); err != nil {
				return ast.NoStmt, err
			}
			body, err := p.caseBody(caseTok.Span)
			if err != nil {
				return ast.NoStmt, err
			}
			stmt.Cases = append(stmt.Cases, ast.SwitchCase{Span: caseTok.Span, Values: values, Body: body})

		case p.at(lexer.TokenDefault):
			defTok := p.next()
			if _, err := p.expect(lexer.TokenColon, ":"); err != nil {
				return ast.NoStmt, err
			}
			body, err := p.caseBody(defTok.Span)
			if err != nil {
				return ast.NoStmt, err
			}
			if stmt.Default != ast.NoBlock {
				return ast.NoStmt, fmt.Errorf("%s: duplicate default case", defTok.Span)
			}
			stmt.Default = body

		default:
			tok := p.peek()
			return ast.NoStmt, fmt.Errorf("%s: expected case or default, found %q", tok.Span, tok.Lexeme)
		}
	}
	closeTok, err := p.expect(lexer.TokenRBrace, "}")
	if err != nil {
		return ast.NoStmt, err
	}
	stmt.Span = stmt.Span.Union(closeTok.Span)
	return p.arena.AddStmt(stmt), nil
}

// caseBody parses statements up to the next case, default, or closing brace.
func (p *Parser) caseBody(span position.Span) (ast.BlockID, error) {
	var stmts []ast.StmtID
	for !p.at(lexer.TokenCase) && !p.at(lexer.TokenDefault) && !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		sid, err := p.statement()
		if err != nil {
			return ast.NoBlock, err
		}
		stmts = append(stmts, sid)
	}
	return p.arena.AddBlock(ast.Block{Span: span, Stmts: stmts}), nil
}

func (p *Parser) doStmt() (ast.StmtID, error) {
	kw := p.next()
	body, end, err := p.block()
	if err != nil {
		return ast.NoStmt, err
	}

	stmt := &ast.DoStmt{Span: kw.Span.Union(end), Body: body}
	for p.at(lexer.TokenCatch) {
		catchTok := p.next()
		binding := ""
		if name, ok := p.accept(lexer.TokenIdent); ok {
			binding = name.Lexeme
		}
		cbody, cend, err := p.block()
		if err != nil {
			return ast.NoStmt, err
		}
		stmt.Catches = append(stmt.Catches, ast.CatchClause{Span: catchTok.Span.Union(cend), Binding: binding, Body: cbody})
		stmt.Span = stmt.Span.Union(cend)
	}
	return p.arena.AddStmt(stmt), nil
}

func (p *Parser) forStmt() (ast.StmtID, error) {
	kw := p.next()
	name, err := p.expect(lexer.TokenIdent, "loop variable")
	if err != nil {
		return ast.NoStmt, err
	}
	if _, err := p.expect(lexer.TokenIn, "in"); err != nil {
		return ast.NoStmt, err
	}
	seq, err := p.expr()
	if err != nil {
		return ast.NoStmt, err
	}
	body, end, err := p.block()
	if err != nil {
		return ast.NoStmt, err
	}
	return p.arena.AddStmt(&ast.ForInStmt{Span: kw.Span.Union(end), Var: name.Lexeme, Seq: seq, Body: body}), nil
}

func (p *Parser) directive() (ast.StmtID, error) {
	tok := p.next()
	level := ast.DirectiveWarning
	if tok.Type == lexer.TokenHashError {
		level = ast.DirectiveError
	}
	if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
		return ast.NoStmt, err
	}
	msg, err := p.expect(lexer.TokenString, "directive message")
	if err != nil {
		return ast.NoStmt, err
	}
	closeTok, err := p.expect(lexer.TokenRParen, ")")
	if err != nil {
		return ast.NoStmt, err
	}
	return p.arena.AddStmt(&ast.DirectiveStmt{Span: tok.Span.Union(closeTok.Span), Level: level, Message: msg.Lexeme}), nil
}

func (p *Parser) exprOrAssign() (ast.StmtID, error) {
	e, err := p.expr()
	if err != nil {
		return ast.NoStmt, err
	}

	if _, ok := p.accept(lexer.TokenAssign); ok {
		switch e.(type) {
		case *ast.Ident, *ast.MemberExpr:
		default:
			return ast.NoStmt, fmt.Errorf("%s: cannot assign to this expression", e.GetSpan())
		}
		value, err := p.expr()
		if err != nil {
			return ast.NoStmt, err
		}
		p.accept(lexer.TokenSemicolon)
		return p.arena.AddStmt(&ast.AssignStmt{Span: e.GetSpan().Union(value.GetSpan()), Target: e, Value: value}), nil
	}

	p.accept(lexer.TokenSemicolon)
	return p.arena.AddStmt(&ast.ExprStmt{Span: e.GetSpan(), X: e}), nil
}
