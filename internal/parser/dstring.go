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

// parseDString lowers a double-quoted string literal, possibly containing
// "<<...>>" embeddings, into the Comma-chain AST of spec.md §4.3.4:
// segment0, embed(expr1), segment1, ... Each text segment becomes an
// SStringLiteral; each embedding becomes whatever expression node its
// content parses to.
func (p *Parser) parseDString() ast.Node {
	at := p.tok.At
	node, _ := p.parseDStringUntil(at, "")
	return node
}

// parseDStringUntil parses dstring content up to the literal's closing
// quote, or — when stopMode names an enclosing control construct — up to
// the first marker that ends its body, whichever comes first. stopMode "if"
// (used for if and unless) stops at "<<else>>"/"<<end>>"; "oneof" stops at
// any "<<word ...>>" marker; "firsttime" stops at "<<only>>"/"<<end>>". It
// returns the lowered node and, for the latter case, the marker text that
// stopped it, or "" if it ran to the closing quote.
func (p *Parser) parseDStringUntil(at diag.Location, stopMode string) (ast.Node, string) {
	var elems []ast.Node
	for {
		switch p.tok.Kind {
		case token.DString:
			elems = append(elems, dstringTextSegment(at, p.eat().Text, true, true))
			return combineDString(at, elems), ""
		case token.DStringEnd:
			elems = append(elems, dstringTextSegment(at, p.eat().Text, false, true))
			return combineDString(at, elems), ""
		case token.DStringStart, token.DStringMid:
			isFirst := p.tok.Kind == token.DStringStart
			elems = append(elems, dstringTextSegment(at, p.eat().Text, isFirst, false))
			if !p.atOperator("<<") {
				p.errorf("expected '<<' in string embedding")
				return combineDString(at, elems), ""
			}
			p.eat() // "<<"
			p.embedDepth++
			if stopMode != "" && p.atEmbeddingMarker(stopMode) {
				marker := p.eat().Text
				for stopMode == "oneof" && p.tok.Kind == token.Ident {
					marker += " " + p.eat().Text
				}
				p.closeEmbedding()
				return combineDString(at, elems), marker
			}
			elems = append(elems, p.parseEmbedding())
		default:
			p.errorf("malformed string embedding")
			return combineDString(at, elems), ""
		}
	}
}

// atEmbeddingMarker reports whether the token right after a consumed "<<"
// is the marker that ends the current control construct's body.
func (p *Parser) atEmbeddingMarker(stopMode string) bool {
	if p.atKeyword("end") || (p.tok.Kind == token.Ident && p.tok.Text == "end") {
		return true
	}
	if stopMode == "if" && p.atKeyword("else") {
		return true
	}
	if stopMode == "oneof" && p.tok.Kind == token.Ident {
		return true
	}
	if stopMode == "firsttime" && p.tok.Kind == token.Ident && p.tok.Text == "only" {
		return true
	}
	return false
}

// closeEmbedding consumes the ">>" that closes a "<<...>>" embedding and
// resumes string-body scanning via the lexer's ContinueDString, rather than
// its ordinary Next (the text right after ">>" is still string content, not
// source code).
func (p *Parser) closeEmbedding() {
	if !p.atOperator(">>") {
		p.errorf("expected '>>' to close string embedding, found %q", p.tok.Text)
		for !p.atOperator(">>") && p.tok.Kind != token.EOF {
			p.advance()
		}
	}
	if p.embedDepth > 0 {
		p.embedDepth--
	}
	if p.tok.Kind == token.EOF {
		return
	}
	p.lastTok = p.tok
	tok, err := p.lex.ContinueDString()
	if err != nil {
		tok = token.Token{Kind: token.Invalid, At: p.tok.At}
	}
	p.tok = tok
}

// parseEmbedding parses the content of one "<<...>>" span (the "<<" has
// already been consumed, and this is not a branch-ending marker) and
// returns the expression node it lowers to, having also consumed the
// closing ">>".
func (p *Parser) parseEmbedding() ast.Node {
	at := p.tok.At
	switch {
	case p.atKeyword("if"):
		return p.parseIfEmbedding(at)
	case p.tok.Kind == token.Ident && p.tok.Text == "unless":
		return p.parseUnlessEmbedding(at)
	case p.tok.Kind == token.Ident && p.tok.Text == "one":
		return p.parseOneOfEmbedding(at)
	case p.tok.Kind == token.Ident && p.tok.Text == "first":
		return p.parseFirstTimeEmbedding(at)
	default:
		expr := p.parseComma()
		p.closeEmbedding()
		return expr
	}
}

// parseIfEmbedding lowers "<<if cond>>then<<else>>else<<end>>" (else
// optional) to a Ternary, per spec.md §4.3.4.
func (p *Parser) parseIfEmbedding(at diag.Location) ast.Node {
	p.eat() // "if"
	cond := p.parseComma()
	p.closeEmbedding()
	thenNode, marker := p.parseDStringUntil(at, "if")
	var elseNode ast.Node = &ast.SStringLiteral{Base: ast.Base{At: at}}
	if marker == "else" {
		elseNode, _ = p.parseDStringUntil(at, "if")
	}
	return &ast.Ternary{Base: ast.Base{At: at}, Cond: cond, Then: thenNode, Else: elseNode}
}

// parseUnlessEmbedding lowers "<<unless cond>>body<<end>>" to a Ternary
// with the condition negated.
func (p *Parser) parseUnlessEmbedding(at diag.Location) ast.Node {
	p.eat() // "unless"
	cond := p.parseComma()
	p.closeEmbedding()
	body, _ := p.parseDStringUntil(at, "if")
	return &ast.Ternary{
		Base: ast.Base{At: at},
		Cond: &ast.UnaryOp{Base: ast.Base{At: at}, Operator: "!", Operand: cond},
		Then: body,
		Else: &ast.SStringLiteral{Base: ast.Base{At: at}},
	}
}

// parseOneOfEmbedding lowers "<<one of>>alt1<<or>>alt2<<or>>alt3<<at
// random>>" (the selection mode words after the last alternative are joined
// with single spaces into the mode string) into a call to the runtime's one-of selector, spec.md §3.5's
// built-in dstring helpers.
func (p *Parser) parseOneOfEmbedding(at diag.Location) ast.Node {
	p.eat() // "one"
	if p.tok.Kind == token.Ident && p.tok.Text == "of" {
		p.eat()
	}
	p.closeEmbedding()

	var alts []ast.Node
	mode := "sequence"
	for {
		alt, marker := p.parseDStringUntil(at, "oneof")
		alts = append(alts, alt)
		if marker == "" || marker == "end" {
			break
		}
		// marker == "or": another alternative follows only if the text
		// right before ">>" was literally "or"; any other marker word
		// names the selection mode and ends the list.
		if marker != "or" {
			mode = marker
			break
		}
	}
	return &ast.Call{
		Base:   ast.Base{At: at},
		Callee: &ast.BuiltInRef{Base: ast.Base{At: at}, Name: "oneOf"},
		Args: []ast.Arg{
			{Expr: &ast.ListLiteral{Base: ast.Base{At: at}, Elements: alts}},
			{Expr: &ast.SStringLiteral{Base: ast.Base{At: at}, Value: mode}},
		},
	}
}

// parseFirstTimeEmbedding lowers "<<first time>>body<<only>>" to a call to
// the runtime's first-time-only gate.
func (p *Parser) parseFirstTimeEmbedding(at diag.Location) ast.Node {
	p.eat() // "first"
	if p.tok.Kind == token.Ident && p.tok.Text == "time" {
		p.eat()
	}
	p.closeEmbedding()
	body, _ := p.parseDStringUntil(at, "firsttime")
	return &ast.Call{
		Base:   ast.Base{At: at},
		Callee: &ast.BuiltInRef{Base: ast.Base{At: at}, Name: "firstTimeOnly"},
		Args:   []ast.Arg{{Expr: body}},
	}
}

// dstringTextSegment strips the delimiters scanDString/ContinueDString
// leave attached to a DString/DStringStart/DStringMid/DStringEnd token's
// raw text (an opening quote on the first segment, a closing quote on the
// last) and resolves backslash escapes.
func dstringTextSegment(at diag.Location, raw string, hasOpenQuote, hasCloseQuote bool) ast.Node {
	s := raw
	if hasOpenQuote && len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if hasCloseQuote && len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	return &ast.SStringLiteral{Base: ast.Base{At: at}, Value: unescapeQuoted(s, '"')}
}

func combineDString(at diag.Location, elems []ast.Node) ast.Node {
	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.Comma{Base: ast.Base{At: at}, Elements: elems}
}
