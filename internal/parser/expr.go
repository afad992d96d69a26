package parser

import (
	"fmt"
	"strconv"

	"github.com/vela-lang/vela/internal/ast"
	"github.com/vela-lang/vela/internal/lexer"
)

// expr parses one expression with standard precedence climbing.
func (p *Parser) expr() (ast.Expr, error) {
	return p.orExpr()
}

func (p *Parser) orExpr() (ast.Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TokenOrOr) {
		p.next()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: ast.OpOr, Right: right}
	}
	return left, nil
}

func (p *Parser) andExpr() (ast.Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.TokenAndAnd) {
		p.next()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: ast.OpAnd, Right: right}
	}
	return left, nil
}

func (p *Parser) equality() (ast.Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.peek().Type {
		case lexer.TokenEq:
			op = ast.OpEq
		case lexer.TokenNe:
			op = ast.OpNe
		default:
			return left, nil
		}
		p.next()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: op, Right: right}
	}
}

func (p *Parser) comparison() (ast.Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.peek().Type {
		case lexer.TokenLt:
			op = ast.OpLt
		case lexer.TokenLe:
			op = ast.OpLe
		case lexer.TokenGt:
			op = ast.OpGt
		case lexer.TokenGe:
			op = ast.OpGe
		default:
			return left, nil
		}
		p.next()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: op, Right: right}
	}
}

func (p *Parser) additive() (ast.Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.peek().Type {
		case lexer.TokenPlus:
			op = ast.OpAdd
		case lexer.TokenMinus:
			op = ast.OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: op, Right: right}
	}
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.Operator
		switch p.peek().Type {
		case lexer.TokenStar:
			op = ast.OpMul
		case lexer.TokenSlash:
			op = ast.OpDiv
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Span: left.GetSpan().Union(right.GetSpan()), Left: left, Op: op, Right: right}
	}
}

func (p *Parser) unary() (ast.Expr, error) {
	switch p.peek().Type {
	case lexer.TokenNot:
		tok := p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Span: tok.Span.Union(x.GetSpan()), Op: ast.OpNot, X: x}, nil
	case lexer.TokenMinus:
		tok := p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Span: tok.Span.Union(x.GetSpan()), Op: ast.OpSub, X: x}, nil
	default:
		return p.postfix()
	}
}

func (p *Parser) postfix() (ast.Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case lexer.TokenLParen:
			p.next()
			var args []ast.Arg
			for !p.at(lexer.TokenRParen) {
				if len(args) > 0 {
					if _, err := p.expect(lexer.TokenComma, ","); err != nil {
						return nil, err
					}
				}
				label := ""
				if p.at(lexer.TokenIdent) && p.toks[p.pos+1].Type == lexer.TokenColon {
					label = p.next().Lexeme
					p.next() // ':'
				}
				value, err := p.expr()
				if err != nil {
					return nil, err
				}
				args = append(args, ast.Arg{Label: label, Value: value})
			}
			closeTok := p.next()
			e = &ast.CallExpr{Span: e.GetSpan().Union(closeTok.Span), Callee: e, Args: args}

		case lexer.TokenDot:
			p.next()
			member, err := p.expect(lexer.TokenIdent, "member name")
			if err != nil {
				return nil, err
			}
			e = &ast.MemberExpr{Span: e.GetSpan().Union(member.Span), X: e, Member: member.Lexeme}

		default:
			return e, nil
		}
	}
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenIdent:
		p.next()
		return &ast.Ident{Span: tok.Span, Name: tok.Lexeme}, nil

	case lexer.TokenInt:
		p.next()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer literal %q", tok.Span, tok.Lexeme)
		}
		return &ast.Literal{Span: tok.Span, Kind: ast.LiteralInt, Value: v, Raw: tok.Lexeme}, nil

	case lexer.TokenFloat:
		p.next()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid float literal %q", tok.Span, tok.Lexeme)
		}
		return &ast.Literal{Span: tok.Span, Kind: ast.LiteralFloat, Value: v, Raw: tok.Lexeme}, nil

	case lexer.TokenString:
		p.next()
		return &ast.Literal{Span: tok.Span, Kind: ast.LiteralString, Value: tok.Lexeme, Raw: strconv.Quote(tok.Lexeme)}, nil

	case lexer.TokenTrue, lexer.TokenFalse:
		p.next()
		return &ast.Literal{Span: tok.Span, Kind: ast.LiteralBool, Value: tok.Type == lexer.TokenTrue, Raw: tok.Lexeme}, nil

	case lexer.TokenNil:
		p.next()
		return &ast.NilLit{Span: tok.Span}, nil

	case lexer.TokenLParen:
		p.next()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return nil, err
		}
		return e, nil

	case lexer.TokenLBracket:
		open := p.next()
		var elems []ast.Expr
		for !p.at(lexer.TokenRBracket) {
			if len(elems) > 0 {
				if _, err := p.expect(lexer.TokenComma, ","); err != nil {
					return nil, err
				}
			}
			el, err := p.expr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}
		closeTok := p.next()
		return &ast.ArrayLit{Span: open.Span.Union(closeTok.Span), Elems: elems}, nil

	default:
		return nil, fmt.Errorf("%s: expected expression, found %q", tok.Span, tok.Lexeme)
	}
}
