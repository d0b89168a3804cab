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
	"testing"

	"github.com/tads3/tadsc/internal/arena"
	"github.com/tads3/tadsc/internal/ast"
	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/symbols"
	"github.com/tads3/tadsc/internal/token"
)

func newTestParser(t *testing.T, src string) (*Parser, *diag.Bag) {
	t.Helper()
	diags := diag.NewBag()
	in := token.NewInterner()
	syms := symbols.NewTable(diags)
	a := arena.New()
	return New("test.t", src, DefaultOptions(), a, in, syms, diags), diags
}

func parseExpr(t *testing.T, src string) ast.Node {
	t.Helper()
	p, diags := newTestParser(t, src+";")
	n := p.ParseExpression()
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics parsing %q: %v", src, diags.All())
	}
	return n
}

func TestFoldIntegerArithmetic(t *testing.T) {
	n := parseExpr(t, "2 + 3 * 4")
	lit, ok := n.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.IntLiteral", n)
	}
	if lit.Value != 14 {
		t.Fatalf("got %d, want 14", lit.Value)
	}
}

func TestFoldIntegerOverflowPromotesToFloat(t *testing.T) {
	n := parseExpr(t, "2000000000 + 2000000000")
	lit, ok := n.(*ast.FloatLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.FloatLiteral", n)
	}
	if !lit.Promoted {
		t.Fatalf("expected Promoted flag set on overflow result")
	}
}

func TestFoldDivisionByZeroReportsError(t *testing.T) {
	p, diags := newTestParser(t, "1 / 0;")
	p.ParseExpression()
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for division by zero")
	}
}

func TestFoldStringConcatenation(t *testing.T) {
	n := parseExpr(t, `'abc' + 'def'`)
	lit, ok := n.(*ast.SStringLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.SStringLiteral", n)
	}
	if lit.Value != "abcdef" {
		t.Fatalf("got %q, want %q", lit.Value, "abcdef")
	}
}

func TestFoldListConcatenation(t *testing.T) {
	n := parseExpr(t, "[1, 2] + [3, 4]")
	lit, ok := n.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.ListLiteral", n)
	}
	if len(lit.Elements) != 4 {
		t.Fatalf("got %d elements, want 4", len(lit.Elements))
	}
}

func TestFoldTernaryConstantCondition(t *testing.T) {
	n := parseExpr(t, "true ? 1 : 2")
	lit, ok := n.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.IntLiteral", n)
	}
	if lit.Value != 1 {
		t.Fatalf("got %d, want 1", lit.Value)
	}
}

func TestFoldShortCircuitAnd(t *testing.T) {
	n := parseExpr(t, "nil && undefinedThing")
	if _, ok := n.(*ast.NilLiteral); !ok {
		t.Fatalf("got %T, want *ast.NilLiteral (short-circuited)", n)
	}
}

func TestFoldSubscriptInRange(t *testing.T) {
	n := parseExpr(t, "[10, 20, 30][2]")
	lit, ok := n.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.IntLiteral", n)
	}
	if lit.Value != 20 {
		t.Fatalf("got %d, want 20", lit.Value)
	}
}

func TestFoldSubscriptOutOfRangeReportsError(t *testing.T) {
	p, diags := newTestParser(t, "[1, 2][5];")
	p.ParseExpression()
	if !diags.HasErrors() {
		t.Fatalf("expected an out-of-range diagnostic")
	}
}

func TestParseDStringEmbedding(t *testing.T) {
	n := parseExpr(t, `"hello <<1+1>> world"`)
	comma, ok := n.(*ast.Comma)
	if !ok {
		t.Fatalf("got %T, want *ast.Comma", n)
	}
	if len(comma.Elements) != 3 {
		t.Fatalf("got %d segments, want 3", len(comma.Elements))
	}
	mid, ok := comma.Elements[1].(*ast.IntLiteral)
	if !ok || mid.Value != 2 {
		t.Fatalf("embedded segment = %#v, want folded IntLiteral(2)", comma.Elements[1])
	}
}

func TestParseFunctionDef(t *testing.T) {
	p, diags := newTestParser(t, "function addOne(x) { return x + 1; }")
	mod := p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if len(mod.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(mod.Decls))
	}
	fn, ok := mod.Decls[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("got %T, want *ast.FunctionDef", mod.Decls[0])
	}
	if fn.Name != "addOne" || len(fn.Body.Formals) != 1 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
}

func TestParseObjectDefWithSuperclasses(t *testing.T) {
	p, diags := newTestParser(t, "thing1 : Thing, Readable { desc = 'a thing'; }")
	mod := p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	obj, ok := mod.Decls[0].(*ast.ObjectDef)
	if !ok {
		t.Fatalf("got %T, want *ast.ObjectDef", mod.Decls[0])
	}
	if obj.Name != "thing1" || len(obj.SuperClass) != 2 {
		t.Fatalf("unexpected object shape: %+v", obj)
	}
	if len(obj.Props) != 1 || obj.Props[0].Property != "desc" {
		t.Fatalf("unexpected props: %+v", obj.Props)
	}
}

func TestParseModifyAndExtern(t *testing.T) {
	p, diags := newTestParser(t, "extern object thing1; modify thing1 { desc = 'new desc'; }")
	mod := p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if _, ok := mod.Decls[0].(*ast.ExternDecl); !ok {
		t.Fatalf("got %T, want *ast.ExternDecl", mod.Decls[0])
	}
	m, ok := mod.Decls[1].(*ast.Modify)
	if !ok {
		t.Fatalf("got %T, want *ast.Modify", mod.Decls[1])
	}
	if m.Name != "thing1" {
		t.Fatalf("unexpected modify target: %+v", m)
	}
}

func TestUnusedLocalGetsAccumulatedDiagnostic(t *testing.T) {
	p, diags := newTestParser(t, "function f() { local unused = 1; return nil; }")
	p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unused local should warn, not error: %v", diags.All())
	}
	if diags.Count(diag.Warning) == 0 {
		t.Fatalf("expected an unreferenced-local warning")
	}
}

func TestAnonymousFunctionCapturesEnclosingSelf(t *testing.T) {
	p, diags := newTestParser(t, "function f() { local g = function() { return self; }; return g; }")
	mod := p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	fn, ok := mod.Decls[0].(*ast.FunctionDef)
	if !ok || !fn.Body.Context.NeedsSelf {
		t.Fatalf("expected the enclosing function to record that a nested body captures self, got %+v", mod.Decls[0])
	}
}

func TestParseDictionaryDefDefinesObjectSymbol(t *testing.T) {
	p, diags := newTestParser(t, "dictionary cmdDict;")
	mod := p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	if _, ok := mod.Decls[0].(*ast.DictionaryDef); !ok {
		t.Fatalf("got %T, want *ast.DictionaryDef", mod.Decls[0])
	}
	sym := p.syms.FindNoRef("cmdDict")
	if sym == nil || sym.Kind != symbols.KindObject {
		t.Fatalf("expected cmdDict to be defined as a KindObject symbol, got %+v", sym)
	}
	if sym.Object.Metaclass != "Dict" {
		t.Fatalf("got Metaclass %q, want %q", sym.Object.Metaclass, "Dict")
	}
}

func TestParseObjectVocabularyWords(t *testing.T) {
	p, diags := newTestParser(t, "thing1 : Thing { 'box' 'crate' noun = 'thing'; }")
	p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	sym := p.syms.FindNoRef("thing1")
	if sym == nil || sym.Object == nil {
		t.Fatalf("expected thing1 to be defined")
	}
	want := []symbols.VocabWord{{Word: "box", Property: "noun"}, {Word: "crate", Property: "noun"}}
	if len(sym.Object.Vocabulary) != len(want) {
		t.Fatalf("got %d vocabulary words, want %d: %+v", len(sym.Object.Vocabulary), len(want), sym.Object.Vocabulary)
	}
	for i, w := range want {
		if sym.Object.Vocabulary[i] != w {
			t.Fatalf("vocab[%d] = %+v, want %+v", i, sym.Object.Vocabulary[i], w)
		}
	}
}

func TestParseGrammarDefAccumulatesAltsAcrossStatements(t *testing.T) {
	src := `grammar takeVerb(main): 'take' singleDobj -> dobj_ : TakeAction;
grammar takeVerb(main): 'pick' 'up' singleDobj -> dobj_ : TakeAction;`
	p, diags := newTestParser(t, src)
	p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	sym := p.syms.FindNoRef("takeVerb")
	if sym == nil || sym.Object == nil {
		t.Fatalf("expected takeVerb to be defined as an object symbol")
	}
	if sym.Object.Metaclass != "GrammarProd" {
		t.Fatalf("got Metaclass %q, want %q", sym.Object.Metaclass, "GrammarProd")
	}
	if len(sym.Object.GrammarAlts) != 2 {
		t.Fatalf("got %d alternatives, want 2 (one per statement): %+v", len(sym.Object.GrammarAlts), sym.Object.GrammarAlts)
	}
}

func TestParseTemplateDefAttachesToNamedClass(t *testing.T) {
	p, diags := newTestParser(t, "class Box : Thing { } Box template 'desc'?;")
	p.ParseModule("test.t")
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.All())
	}
	sym := p.syms.FindNoRef("Box")
	if sym == nil || sym.Object == nil {
		t.Fatalf("expected Box to be defined as an object symbol")
	}
	if len(sym.Object.Templates) != 1 || len(sym.Object.Templates[0]) != 1 {
		t.Fatalf("expected one attached template with one item, got %+v", sym.Object.Templates)
	}
	item := sym.Object.Templates[0][0]
	if item.TokenType != "string" || !item.IsOpt {
		t.Fatalf("unexpected template item: %+v", item)
	}
}

func TestFoldDemotesPromotedFloatBackToInt(t *testing.T) {
	n := parseExpr(t, "(2000000000 + 2000000000) - 3000000000")
	lit, ok := n.(*ast.IntLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.IntLiteral (demoted back from a promoted float)", n)
	}
	if lit.Value != 1000000000 {
		t.Fatalf("got %d, want 1000000000", lit.Value)
	}
}

func TestFoldGenuineFloatOperandStaysFloat(t *testing.T) {
	n := parseExpr(t, "2000000000 + 2000000000.0")
	if _, ok := n.(*ast.FloatLiteral); !ok {
		t.Fatalf("got %T, want *ast.FloatLiteral (a real source float operand must not demote)", n)
	}
}
