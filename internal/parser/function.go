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
	"github.com/tads3/tadsc/internal/token"
)

// parseFormals parses a parenthesized or bare formal-parameter list:
// identifiers separated by commas, with an optional trailing "..." varargs
// marker, per spec.md §3.5 "Code body". opener/closer name the bracketing
// punctuation ("(", ")" for full function syntax; "" for the short
// anonymous-function form, which has no parens around its formals).
func (p *Parser) parseFormals(opener, closer string) []ast.Formal {
	if opener != "" {
		p.expectPunct(opener)
	}
	var formals []ast.Formal
	atEnd := func() bool {
		if closer == "" {
			return p.atOperator(":")
		}
		return p.atPunct(closer)
	}
	for !atEnd() && p.tok.Kind != token.EOF {
		if p.atOperator("...") {
			p.eat()
			formals = append(formals, ast.Formal{Varargs: true})
			break
		}
		name, _ := p.expectIdent()
		formals = append(formals, ast.Formal{Name: name})
		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	if closer != "" {
		p.expectPunct(closer)
	}
	return formals
}

// declareFormals enters formal parameters into the current (just-pushed)
// scope as KindLocal symbols with IsParam set, per spec.md §3.4.
func (p *Parser) declareFormals(at diag.Location, formals []ast.Formal) {
	for _, f := range formals {
		if f.Varargs {
			continue
		}
		slot := p.allocLocalSlot()
		if _, err := p.syms.AddFormal(f.Name, at, slot); err != nil {
			p.errorf("%s", err)
		}
	}
}

// parseAnonFunctionExpr parses `function (formals) { statements }` used as
// a value (spec.md §3.5 "AnonFuncRef").
func (p *Parser) parseAnonFunctionExpr() ast.Node {
	at := p.tok.At
	p.eat() // "function"
	cb := &ast.CodeBody{Base: ast.Base{At: at}}
	p.pushCodeBody(cb)
	formals := p.parseFormals("(", ")")
	cb.Formals = formals
	p.declareFormals(at, formals)
	cb.HasRetval = true
	cb.Body = p.parseBlock()
	cb.Labels = p.collectLabels(cb.Body)
	p.popCodeBody()
	return &ast.AnonFuncRef{Base: ast.Base{At: at}, Body: cb}
}

// parseShortAnonFunc parses the short anonymous-function literal
// `{ formals : expr }` (spec.md §3.5), whose body is a single expression
// rather than a statement block.
func (p *Parser) parseShortAnonFunc() ast.Node {
	at := p.tok.At
	p.eat() // "{"
	cb := &ast.CodeBody{Base: ast.Base{At: at}}
	p.pushCodeBody(cb)
	formals := p.parseFormals("", "")
	cb.Formals = formals
	p.declareFormals(at, formals)
	p.expectPunctOrOperator(":")
	cb.HasRetval = true
	value := p.ParseExpression()
	retAt := p.tok.At
	cb.Body = &ast.Block{
		Base:       ast.Base{At: at},
		Statements: []ast.Node{&ast.Return{Base: ast.Base{At: retAt}, Value: value}},
	}
	p.expectPunct("}")
	p.popCodeBody()
	return &ast.AnonFuncRef{Base: ast.Base{At: at}, Body: cb}
}

// collectLabels walks a parsed body and indexes its goto-target labels by
// name, for the parser's own goto-resolution and unreferenced-label
// diagnostics (spec.md §4.2). The walk descends into nested blocks and into
// the bodies of if/for/foreach/while/do-while/switch/try statements, and
// into the statement a Label wraps, so labels at any nesting depth of the
// body are collected.
func (p *Parser) collectLabels(block *ast.Block) map[string]*ast.Label {
	labels := map[string]*ast.Label{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Label:
			labels[v.Name] = v
			walk(v.Stmt)
		case *ast.Block:
			for _, s := range v.Statements {
				walk(s)
			}
		case *ast.If:
			walk(v.Then)
			if v.Else != nil {
				walk(v.Else)
			}
		case *ast.For:
			walk(v.Body)
		case *ast.Foreach:
			walk(v.Body)
		case *ast.While:
			walk(v.Body)
		case *ast.DoWhile:
			walk(v.Body)
		case *ast.Switch:
			for _, c := range v.Cases {
				for _, s := range c.Body {
					walk(s)
				}
			}
		case *ast.Try:
			walk(v.Body)
			for _, c := range v.Catches {
				walk(c.Body)
			}
			if v.Finally != nil {
				walk(v.Finally)
			}
		}
	}
	walk(block)
	return labels
}
