// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"github.com/tads3/tadsc/internal/ast"
	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/symbols"
	"github.com/tads3/tadsc/internal/token"
)

// parseBlock parses a "{ stmt... }" compound statement (spec.md §3.5
// "Block"), pushing a block scope unconditionally and popping it on
// return, matching gapil/resolver/resolver.go's push/pop around every
// nested statement list.
func (p *Parser) parseBlock() *ast.Block {
	at := p.tok.At
	p.expectPunct("{")
	p.syms.Push(true)
	var stmts []ast.Node
	for !p.atPunct("}") && p.tok.Kind != token.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	p.expectPunct("}")
	scope := p.syms.Pop()
	p.reportUnreferencedLocals(scope)
	return &ast.Block{Base: ast.Base{At: at}, Statements: stmts}
}

// reportUnreferencedLocals runs the end-of-scope diagnostic pass of
// spec.md §4.2 over one just-popped block or function scope.
func (p *Parser) reportUnreferencedLocals(scope *symbols.Scope) {
	symbols.UnreferencedScan(scope, func(name string, sym *symbols.Symbol) {
		sev := diag.Warning
		if sym.Local != nil && sym.Local.IsParam {
			sev = diag.Pedantic
		}
		p.diags.Reportf(sev, sym.At, name, "local %q is never used", name)
	})
}

func (p *Parser) parseStatement() ast.Node {
	at := p.tok.At
	switch {
	case p.atPunct("{"):
		return p.parseBlock()
	case p.atKeyword("if"):
		return p.parseIf(at)
	case p.atKeyword("for"):
		return p.parseFor(at)
	case p.atKeyword("foreach"):
		return p.parseForeach(at)
	case p.atKeyword("while"):
		return p.parseWhile(at)
	case p.atKeyword("do"):
		return p.parseDoWhile(at)
	case p.atKeyword("switch"):
		return p.parseSwitch(at)
	case p.atKeyword("break"):
		p.eat()
		label := p.optionalLabel()
		p.parseReqSem()
		return &ast.Break{Base: ast.Base{At: at}, Label: label}
	case p.atKeyword("continue"):
		p.eat()
		label := p.optionalLabel()
		p.parseReqSem()
		return &ast.Continue{Base: ast.Base{At: at}, Label: label}
	case p.atKeyword("goto"):
		p.eat()
		name, _ := p.expectIdent()
		p.parseReqSem()
		return &ast.Goto{Base: ast.Base{At: at}, Label: name}
	case p.atKeyword("return"):
		p.eat()
		var val ast.Node
		if !p.atPunct(";") {
			val = p.ParseExpression()
		}
		p.parseReqSem()
		return &ast.Return{Base: ast.Base{At: at}, Value: val}
	case p.atKeyword("try"):
		return p.parseTry(at)
	case p.atKeyword("throw"):
		p.eat()
		val := p.ParseExpression()
		p.parseReqSem()
		return &ast.Throw{Base: ast.Base{At: at}, Value: val}
	case p.atKeyword("local"):
		return p.parseLocalDecl(at)
	case p.atPunct(";"):
		p.eat()
		return &ast.Block{Base: ast.Base{At: at}}
	case p.tok.Kind == token.Ident && p.peekNext().Kind == token.Operator && p.peekNext().Text == ":":
		name := p.eat().Text
		p.eat() // ":"
		stmt := p.parseStatement()
		return &ast.Label{Base: ast.Base{At: at}, Name: name, Stmt: stmt}
	default:
		expr := p.ParseExpression()
		p.parseReqSem()
		return &ast.ExprStmt{Base: ast.Base{At: at}, Expr: expr}
	}
}

func (p *Parser) optionalLabel() string {
	if p.tok.Kind == token.Ident {
		return p.eat().Text
	}
	return ""
}

func (p *Parser) parseIf(at diag.Location) ast.Node {
	p.eat() // if
	p.expectPunct("(")
	cond := p.ParseExpression()
	p.expectPunct(")")
	then := p.parseStatement()
	var els ast.Node
	if p.atKeyword("else") {
		p.eat()
		els = p.parseStatement()
	}
	return &ast.If{Base: ast.Base{At: at}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseFor(at diag.Location) ast.Node {
	p.eat() // for
	p.expectPunct("(")
	if p.atKeyword("local") {
		decl := p.parseLocalDeclNoSemi(at)
		if p.atKeyword("in") {
			p.eat()
			expr := p.ParseExpression()
			p.expectPunct(")")
			body := p.parseStatement()
			return &ast.For{Base: ast.Base{At: at}, Init: decl, In: expr, Body: body}
		}
		p.expectPunct(";")
		cond := p.optionalExpr(";")
		p.expectPunct(";")
		step := p.optionalExpr(")")
		p.expectPunct(")")
		body := p.parseStatement()
		return &ast.For{Base: ast.Base{At: at}, Init: decl, Cond: cond, Step: step, Body: body}
	}
	init := p.optionalExpr(";")
	p.expectPunct(";")
	cond := p.optionalExpr(";")
	p.expectPunct(";")
	step := p.optionalExpr(")")
	p.expectPunct(")")
	body := p.parseStatement()
	return &ast.For{Base: ast.Base{At: at}, Init: init, Cond: cond, Step: step, Body: body}
}

// optionalExpr parses an expression unless the current token is already
// the given closing punctuation/operator (an empty for-clause).
func (p *Parser) optionalExpr(closer string) ast.Node {
	if p.atPunct(closer) || p.atOperator(closer) {
		return nil
	}
	return p.ParseExpression()
}

func (p *Parser) parseForeach(at diag.Location) ast.Node {
	p.eat() // foreach
	p.expectPunct("(")
	var v ast.Node
	if p.atKeyword("local") {
		declAt := p.tok.At
		p.eat() // local
		name, _ := p.expectIdent()
		slot := p.allocLocalSlot()
		if _, err := p.syms.AddLocal(name, declAt, slot); err != nil {
			p.errorf("%s", err)
		}
		v = &ast.LocalDecl{Base: ast.Base{At: declAt}, Entries: []ast.LocalDeclEntry{{Name: name}}}
	} else {
		v = p.ParseExpression()
	}
	p.expectKeyword("in")
	expr := p.ParseExpression()
	p.expectPunct(")")
	body := p.parseStatement()
	return &ast.Foreach{Base: ast.Base{At: at}, Var: v, Expr: expr, Body: body}
}

func (p *Parser) parseWhile(at diag.Location) ast.Node {
	p.eat() // while
	p.expectPunct("(")
	cond := p.ParseExpression()
	p.expectPunct(")")
	body := p.parseStatement()
	return &ast.While{Base: ast.Base{At: at}, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile(at diag.Location) ast.Node {
	p.eat() // do
	body := p.parseStatement()
	p.expectKeyword("while")
	p.expectPunct("(")
	cond := p.ParseExpression()
	p.expectPunct(")")
	p.parseReqSem()
	return &ast.DoWhile{Base: ast.Base{At: at}, Body: body, Cond: cond}
}

func (p *Parser) parseSwitch(at diag.Location) ast.Node {
	p.eat() // switch
	p.expectPunct("(")
	expr := p.ParseExpression()
	p.expectPunct(")")
	p.expectPunct("{")
	var cases []ast.SwitchCase
	for !p.atPunct("}") && p.tok.Kind != token.EOF {
		var c ast.SwitchCase
		switch {
		case p.atKeyword("case"):
			p.eat()
			c.Values = append(c.Values, p.ParseExpression())
			for p.atOperator(",") {
				p.eat()
				c.Values = append(c.Values, p.ParseExpression())
			}
			p.expectPunctOrOperator(":")
		case p.atKeyword("default"):
			p.eat()
			p.expectPunctOrOperator(":")
			c.IsDefault = true
		default:
			p.errorf("expected 'case' or 'default', found %q", p.tok.Text)
			p.eat()
			continue
		}
		for !p.atKeyword("case") && !p.atKeyword("default") && !p.atPunct("}") && p.tok.Kind != token.EOF {
			c.Body = append(c.Body, p.parseStatement())
		}
		cases = append(cases, c)
	}
	p.expectPunct("}")
	return &ast.Switch{Base: ast.Base{At: at}, Expr: expr, Cases: cases}
}

func (p *Parser) parseTry(at diag.Location) ast.Node {
	p.eat() // try
	body := p.parseStatement()
	var catches []ast.TryCatch
	for p.atKeyword("catch") {
		p.eat()
		p.expectPunct("(")
		var types []string
		name, _ := p.expectIdent()
		types = append(types, name)
		for p.atOperator("|") {
			p.eat()
			n, _ := p.expectIdent()
			types = append(types, n)
		}
		varName, _ := p.expectIdent()
		p.expectPunct(")")
		cbody := p.parseStatement()
		catches = append(catches, ast.TryCatch{Types: types, Var: varName, Body: cbody})
	}
	var finally ast.Node
	if p.atKeyword("finally") {
		p.eat()
		finally = p.parseStatement()
	}
	return &ast.Try{Base: ast.Base{At: at}, Body: body, Catches: catches, Finally: finally}
}

func (p *Parser) parseLocalDecl(at diag.Location) ast.Node {
	decl := p.parseLocalDeclNoSemi(at)
	p.parseReqSem()
	return decl
}

// parseLocalDeclNoSemi parses "local a = expr, b, c = expr2" without
// consuming the trailing ";", so for/foreach can reuse it ahead of their
// own clause separators.
func (p *Parser) parseLocalDeclNoSemi(at diag.Location) *ast.LocalDecl {
	p.eat() // local
	var entries []ast.LocalDeclEntry
	for {
		entryAt := p.tok.At
		name, _ := p.expectIdent()
		var init ast.Node
		if p.atOperator("=") {
			p.eat()
			init = p.parseAssign()
		}
		entries = append(entries, ast.LocalDeclEntry{Name: name, Init: init})

		slot := p.allocLocalSlot()
		if sym, err := p.syms.AddLocal(name, entryAt, slot); err != nil {
			p.errorf("%s", err)
		} else if init != nil {
			sym.Local.ValueAssigned = true
		}

		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	return &ast.LocalDecl{Base: ast.Base{At: at}, Entries: entries}
}
