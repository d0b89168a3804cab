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
	"strconv"

	"github.com/tads3/tadsc/internal/ast"
	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/symbols"
	"github.com/tads3/tadsc/internal/token"
)

// assignOps is the set of simple/compound assignment operators, right
// associative, per spec.md §4.3.1.
var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

// ParseExpression parses a full comma expression and folds constants.
func (p *Parser) ParseExpression() ast.Node {
	return p.fold(p.parseComma())
}

func (p *Parser) parseComma() ast.Node {
	first := p.parseAssign()
	if !p.atOperator(",") {
		return first
	}
	elems := []ast.Node{first}
	for p.atOperator(",") {
		p.eat()
		elems = append(elems, p.parseAssign())
	}
	return &ast.Comma{Elements: elems}
}

func (p *Parser) parseAssign() ast.Node {
	lhs := p.parseTernary()
	if p.tok.Kind == token.Operator && assignOps[p.tok.Text] {
		op := p.eat().Text
		if p.opts.CMode && op == "=" {
			// "=" is assignment here whatever CMode says; equality is "=="
			// (parseEquality). No alternate operator set is selected when
			// CMode is false.
		}
		rhs := p.parseAssign() // right-associative
		return &ast.Assign{Operator: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseTernary() ast.Node {
	cond := p.parseIfNil()
	if p.atOperator("?") {
		p.eat()
		then := p.parseAssign()
		p.expectPunctOrOperator(":")
		els := p.parseAssign()
		return &ast.Ternary{Cond: cond, Then: then, Else: els}
	}
	return cond
}

// expectPunctOrOperator handles ":" which the lexer emits as an Operator
// token (it's in token.Operators) but which also terminates ternaries and
// switch/case labels.
func (p *Parser) expectPunctOrOperator(s string) {
	if p.tok.Text == s {
		p.eat()
		return
	}
	p.errorf("expected %q, found %q", s, p.tok.Text)
}

func (p *Parser) parseIfNil() ast.Node {
	lhs := p.parseLogicalOr()
	for p.atOperator("??") {
		p.eat()
		rhs := p.parseLogicalOr()
		lhs = &ast.IfNil{LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseLogicalOr() ast.Node {
	lhs := p.parseLogicalAnd()
	for p.atOperator("||") {
		p.eat()
		rhs := p.parseLogicalAnd()
		lhs = &ast.BinaryOp{Operator: "||", LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseLogicalAnd() ast.Node {
	lhs := p.parseBitOr()
	for p.atOperator("&&") {
		p.eat()
		rhs := p.parseBitOr()
		lhs = &ast.BinaryOp{Operator: "&&", LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseBitOr() ast.Node {
	lhs := p.parseBitXor()
	for p.atOperator("|") {
		p.eat()
		rhs := p.parseBitXor()
		lhs = &ast.BinaryOp{Operator: "|", LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseBitXor() ast.Node {
	lhs := p.parseBitAnd()
	for p.atOperator("^") {
		p.eat()
		rhs := p.parseBitAnd()
		lhs = &ast.BinaryOp{Operator: "^", LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseBitAnd() ast.Node {
	lhs := p.parseEquality()
	for p.atOperator("&") {
		p.eat()
		rhs := p.parseEquality()
		lhs = &ast.BinaryOp{Operator: "&", LHS: lhs, RHS: rhs}
	}
	return lhs
}

// parseEquality also handles `is in` / `not in`, which spec.md §4.3.1
// places at this precedence level.
func (p *Parser) parseEquality() ast.Node {
	lhs := p.parseRelational()
	for {
		switch {
		case p.atOperator("==") || p.atOperator("!="):
			op := p.eat().Text
			rhs := p.parseRelational()
			lhs = &ast.BinaryOp{Operator: op, LHS: lhs, RHS: rhs}
		case p.atKeyword("is") && p.peekIsIn():
			p.eat() // is
			p.eat() // in
			lhs = &ast.IsIn{LHS: lhs, Values: p.parseInList()}
		case p.atKeyword("not") && p.peekIsIn():
			p.eat() // not
			p.eat() // in
			lhs = &ast.IsIn{Negate: true, LHS: lhs, Values: p.parseInList()}
		default:
			return lhs
		}
	}
}

// peekIsIn always reports true without looking at the token after the
// current "is"/"not" (this parser keeps only one token of lookahead), so
// "is"/"not" at this level is always taken as the is-in operator form and
// the token that follows is consumed as "in" without being checked.
func (p *Parser) peekIsIn() bool { return true }

func (p *Parser) parseInList() []ast.Node {
	p.expectPunct("(")
	var vals []ast.Node
	if !p.atPunct(")") {
		vals = append(vals, p.parseAssign())
		for p.atOperator(",") {
			p.eat()
			vals = append(vals, p.parseAssign())
		}
	}
	p.expectPunct(")")
	return vals
}

func (p *Parser) parseRelational() ast.Node {
	lhs := p.parseShift()
	for p.atOperator("<") || p.atOperator("<=") || p.atOperator(">") || p.atOperator(">=") {
		op := p.eat().Text
		rhs := p.parseShift()
		lhs = &ast.BinaryOp{Operator: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseShift() ast.Node {
	lhs := p.parseAdditive()
	// Inside a "<<...>>" string embedding, ">>"/">>>" close the embedding
	// rather than shift, so they're not available as operators there; see
	// Parser.embedDepth.
	for (p.embedDepth == 0 || p.atOperator("<<")) && (p.atOperator("<<") || p.atOperator(">>") || p.atOperator(">>>")) {
		op := p.eat().Text
		rhs := p.parseAdditive()
		lhs = &ast.BinaryOp{Operator: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseAdditive() ast.Node {
	lhs := p.parseMultiplicative()
	for p.atOperator("+") || p.atOperator("-") {
		op := p.eat().Text
		rhs := p.parseMultiplicative()
		lhs = &ast.BinaryOp{Operator: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseMultiplicative() ast.Node {
	lhs := p.parseUnary()
	for p.atOperator("*") || p.atOperator("/") || p.atOperator("%") {
		op := p.eat().Text
		rhs := p.parseUnary()
		lhs = &ast.BinaryOp{Operator: op, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseUnary() ast.Node {
	switch {
	case p.atOperator("!"):
		p.eat()
		return &ast.UnaryOp{Operator: "!", Operand: p.parseUnary()}
	case p.atOperator("~"):
		p.eat()
		return &ast.UnaryOp{Operator: "~", Operand: p.parseUnary()}
	case p.atOperator("+"):
		p.eat()
		return &ast.UnaryOp{Operator: "+", Operand: p.parseUnary()}
	case p.atOperator("-"):
		p.eat()
		return &ast.UnaryOp{Operator: "-", Operand: p.parseUnary()}
	case p.atOperator("++"):
		p.eat()
		return &ast.UnaryOp{Operator: "++", Operand: p.parseUnary()}
	case p.atOperator("--"):
		p.eat()
		return &ast.UnaryOp{Operator: "--", Operand: p.parseUnary()}
	case p.atOperator("&"):
		p.eat()
		return &ast.AddressOf{Operand: p.parseUnary()}
	case p.atKeyword("new"):
		return p.parseNew()
	case p.atKeyword("delete"):
		p.eat()
		return &ast.Delete{Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseNew() ast.Node {
	at := p.tok.At
	p.eat() // new
	transient := false
	if p.atKeyword("transient") {
		transient = true
		p.eat()
	}
	class := p.parsePostfixNoCall()
	var args []ast.Arg
	if p.atPunct("(") {
		args = p.parseArgs()
	}
	return &ast.New{Base: ast.Base{At: at}, Class: class, Args: args, Transient: transient}
}

func (p *Parser) parsePostfixNoCall() ast.Node {
	name, _ := p.expectIdent()
	return &ast.UnresolvedSym{Name: name}
}

func (p *Parser) parsePostfix() ast.Node {
	n := p.parsePrimary()
	for {
		switch {
		case p.atPunct("("):
			args := p.parseArgs()
			n = &ast.Call{Callee: n, Args: args}
		case p.atPunct("["):
			p.eat()
			idx := p.ParseExpression()
			p.expectPunct("]")
			n = &ast.Subscript{Object: n, Index: idx}
		case p.atOperator("."):
			p.eat()
			if p.atPunct("(") {
				p.eat()
				propExpr := p.ParseExpression()
				p.expectPunct(")")
				n = &ast.Member{Object: n, PropExpr: propExpr}
			} else {
				name, _ := p.expectIdent()
				n = &ast.Member{Object: n, Property: name}
			}
		case p.atOperator("++"):
			p.eat()
			n = &ast.UnaryOp{Operator: "++", Operand: n, IsPostfix: true}
		case p.atOperator("--"):
			p.eat()
			n = &ast.UnaryOp{Operator: "--", Operand: n, IsPostfix: true}
		default:
			return n
		}
	}
}

func (p *Parser) parseArgs() []ast.Arg {
	p.expectPunct("(")
	var args []ast.Arg
	if !p.atPunct(")") {
		args = append(args, p.parseArg())
		for p.atOperator(",") {
			p.eat()
			args = append(args, p.parseArg())
		}
	}
	p.expectPunct(")")
	return args
}

func (p *Parser) parseArg() ast.Arg {
	if p.atOperator("...") {
		p.eat()
		return ast.Arg{Expr: p.parseAssign(), Spread: true}
	}
	return ast.Arg{Expr: p.parseAssign()}
}

func (p *Parser) parsePrimary() ast.Node {
	at := p.tok.At
	switch {
	case p.tok.Kind == token.Integer:
		text := p.eat().Text
		v, _ := strconv.ParseInt(text, 10, 64)
		return &ast.IntLiteral{Base: ast.Base{At: at}, Value: v}
	case p.tok.Kind == token.Float:
		text := p.eat().Text
		return &ast.FloatLiteral{Base: ast.Base{At: at}, Text: text}
	case p.tok.Kind == token.SString:
		text := p.eat().Text
		return &ast.SStringLiteral{Base: ast.Base{At: at}, Value: unescapeSString(text)}
	case p.tok.Kind == token.DString, p.tok.Kind == token.DStringStart:
		return p.parseDString()
	case p.atPunct("["):
		return p.parseListLiteral()
	case p.atPunct("("):
		p.eat()
		e := p.ParseExpression()
		p.expectPunct(")")
		return e
	case p.atKeyword("nil"):
		p.eat()
		return &ast.NilLiteral{Base: ast.Base{At: at}}
	case p.atKeyword("true"):
		p.eat()
		return &ast.TrueLiteral{Base: ast.Base{At: at}}
	case p.atKeyword("self"):
		p.eat()
		p.markSelfReferenced()
		return &ast.SelfRef{Base: ast.Base{At: at}}
	case p.atKeyword("replaced"):
		p.eat()
		p.markFullMethodCtx()
		return &ast.ReplacedRef{Base: ast.Base{At: at}}
	case p.atKeyword("targetprop"):
		p.eat()
		p.markFullMethodCtx()
		return &ast.TargetPropRef{Base: ast.Base{At: at}}
	case p.atKeyword("targetobj"):
		p.eat()
		p.markFullMethodCtx()
		return &ast.TargetObjRef{Base: ast.Base{At: at}}
	case p.atKeyword("definingobj"):
		p.eat()
		p.markFullMethodCtx()
		return &ast.DefiningObjRef{Base: ast.Base{At: at}}
	case p.atKeyword("argcount"):
		p.eat()
		p.markFullMethodCtx()
		return &ast.ArgCountRef{Base: ast.Base{At: at}}
	case p.atKeyword("inherited"):
		return p.parseInherited()
	case p.atKeyword("delegated"):
		p.eat()
		target := p.parseUnary()
		return &ast.DelegatedRef{Base: ast.Base{At: at}, Target: target}
	case p.atPunct("{"):
		return p.parseShortAnonFunc()
	case p.atKeyword("function"):
		return p.parseAnonFunctionExpr()
	case p.tok.Kind == token.Ident:
		name := p.eat().Text
		return p.resolveIdentifier(name, at)
	default:
		p.errorf("expected expression, found %q", p.tok.Text)
		p.eat()
		return &ast.UnresolvedSym{Base: ast.Base{At: at}, Name: "<error>"}
	}
}

// resolveIdentifier looks the name up with the symbol table's AddPropNoWarn
// policy (spec.md §4.2): a name not declared in any scope is entered in the
// global scope as a property, with no diagnostic. The reference is wrapped
// as UnresolvedSym for deferred resolution (spec.md §9 "Forward
// references"), matching the language's extern mechanism.
func (p *Parser) resolveIdentifier(name string, at diag.Location) ast.Node {
	p.syms.FindOrDef(name, at, symbols.AddPropNoWarn)
	return &ast.UnresolvedSym{Base: ast.Base{At: at}, Name: name}
}

func (p *Parser) parseListLiteral() ast.Node {
	at := p.tok.At
	p.expectPunct("[")
	var elems []ast.Node
	if !p.atPunct("]") {
		elems = append(elems, p.parseAssign())
		for p.atOperator(",") {
			p.eat()
			if p.atPunct("]") {
				break
			}
			elems = append(elems, p.parseAssign())
		}
	}
	p.expectPunct("]")
	return &ast.ListLiteral{Base: ast.Base{At: at}, Elements: elems}
}

func (p *Parser) parseInherited() ast.Node {
	at := p.tok.At
	p.eat() // inherited
	p.markFullMethodCtx()
	if p.atOperator("<") {
		p.eat()
		var types []string
		for {
			name, _ := p.expectIdent()
			types = append(types, name)
			if p.atOperator(",") {
				p.eat()
				continue
			}
			break
		}
		p.expectPunctOrOperator(">")
		args := p.parseArgs()
		return &ast.MultiMethodInherited{Base: ast.Base{At: at}, TypeList: types, Args: args}
	}
	super := ""
	if p.tok.Kind == token.Ident {
		super = p.eat().Text
	}
	return &ast.InheritedRef{Base: ast.Base{At: at}, SuperClass: super}
}
