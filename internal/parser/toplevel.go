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
	"github.com/tads3/tadsc/internal/symbols"
	"github.com/tads3/tadsc/internal/token"
)

// ParseModule parses one translation unit to EOF (spec.md §3.1 "Module"),
// the outermost entry point a compile driver calls once per input file. The
// returned *ast.Module is a record of what was parsed, not the sole carrier
// of its meaning: every declaration that contributes object-file payload
// (objects, enums, externs, dictionaries, grammar productions, templates,
// vocabulary words) also lowers itself into p.syms as it is parsed, the same
// way parseObjectDef/parseEnumDef always have. A driver is free to discard
// the *ast.Module once diagnostics have been checked — objfile.NewModule
// reads only the shared symbol table, never the AST.
func (p *Parser) ParseModule(filename string) *ast.Module {
	at := p.tok.At
	var decls []ast.Node
	for p.tok.Kind != token.EOF {
		if d := p.parseTopLevel(); d != nil {
			decls = append(decls, d)
		}
	}
	return &ast.Module{Base: ast.Base{At: at}, Filename: filename, Decls: decls}
}

func (p *Parser) parseTopLevel() ast.Node {
	switch {
	case p.atOperator("+"):
		return p.parsePlusObject()
	case p.atKeyword("class"):
		p.eat()
		return p.parseObjectDef(false, true)
	case p.atKeyword("transient"):
		p.eat()
		return p.parseObjectDef(true, false)
	case p.atKeyword("modify"):
		return p.parseModifyOrReplace(false)
	case p.atKeyword("replace"):
		return p.parseModifyOrReplace(true)
	case p.atKeyword("function"):
		return p.parseFunctionDef()
	case p.atKeyword("enum"):
		return p.parseEnumDef()
	case p.atKeyword("dictionary"):
		return p.parseDictionaryDef()
	case p.atKeyword("grammar"):
		return p.parseGrammarDef()
	case p.atKeyword("export"):
		return p.parseExportDef()
	case p.atKeyword("extern"):
		return p.parseExternDecl()
	case p.atKeyword("propertyset"):
		return p.parsePropertySetDef()
	case p.atKeyword("intrinsic"):
		return p.parseIntrinsicClass()
	case p.atKeyword("template"):
		return p.parseTemplateDef("")
	case p.tok.Kind == token.Ident:
		if p.peekNext().Kind == token.Keyword && p.peekNext().Text == "template" {
			className := p.eat().Text
			return p.parseTemplateDef(className)
		}
		return p.parseObjectDef(false, false)
	default:
		p.errorf("expected a top-level declaration, found %q", p.tok.Text)
		p.skipToSem()
		return nil
	}
}

// parsePlusObject consumes the "+"-location stack prefix of spec.md
// §4.3.5 ("+obj" / "++obj" nest an inline object under the most recent
// object at the previous depth) and parses the object it introduces.
func (p *Parser) parsePlusObject() ast.Node {
	depth := 0
	for p.atOperator("+") {
		p.eat()
		depth++
	}
	obj := p.parseObjectDefBody(false, false)
	obj.PlusDepth = depth
	if depth > 0 && depth <= len(p.plusStack) {
		obj.LexicalParent = p.plusStack[depth-1].Name
	}
	for len(p.plusStack) < depth {
		p.plusStack = append(p.plusStack, nil)
	}
	p.plusStack = p.plusStack[:depth]
	p.plusStack = append(p.plusStack, obj)
	return obj
}

func (p *Parser) parseObjectDef(transient, isClass bool) ast.Node {
	obj := p.parseObjectDefBody(transient, isClass)
	// A top-level object is the depth-0 parent for any "+" objects after it.
	p.plusStack = append(p.plusStack[:0], obj)
	return obj
}

// parseObjectDefBody parses "Name [: SC1, SC2, ...] ( templateArgs | { props } ) ;"
// per spec.md §3.5 "ObjectDef"/§4.3.5. The class/transient keywords, if
// any, have already been consumed by the caller.
func (p *Parser) parseObjectDefBody(transient, isClass bool) *ast.ObjectDef {
	at := p.tok.At
	name, _ := p.expectIdent()
	obj := &ast.ObjectDef{Base: ast.Base{At: at}, Name: name, IsClass: isClass, Transient: transient}

	if p.atOperator(":") {
		p.eat()
		obj.SuperClass = p.parseSuperClassList()
	}

	sym := &symbols.Symbol{
		Name: name, Kind: symbols.KindObject, At: at, Referenced: true,
		Object: &symbols.ObjectSymbol{
			ObjectID: p.syms.AllocObjectID(), IsClass: isClass, IsTransient: transient, SuperClasses: obj.SuperClass,
		},
	}
	if err := p.syms.DefineGlobal(sym); err != nil {
		p.errorf("%s", err)
	}

	switch {
	case p.atPunct("{"):
		obj.Props = p.parseObjectBody(sym.Object)
	case p.atPunct("("):
		obj.TemplateArgs = p.parseTemplateArgs()
		p.parseReqSem()
	default:
		p.parseReqSem()
	}
	return obj
}

func (p *Parser) parseSuperClassList() []string {
	var names []string
	for {
		name, _ := p.expectIdent()
		names = append(names, name)
		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	return names
}

// parseTemplateArgs parses the positional-argument form of an object
// instantiation, "(arg1, arg2, ...)", matched against the class's
// templates at fold/link time (spec.md §3.7).
func (p *Parser) parseTemplateArgs() []ast.Node {
	p.expectPunct("(")
	var args []ast.Node
	if !p.atPunct(")") {
		args = append(args, p.parseAssign())
		for p.atOperator(",") {
			p.eat()
			args = append(args, p.parseAssign())
		}
	}
	p.expectPunct(")")
	return args
}

// parseObjectBody parses the "{ ... }" member list of an object, modify or
// propertyset body. obj, when non-nil, is the object symbol these members
// belong to: a bare single-quoted vocabulary word is appended directly to
// obj.Vocabulary as it's parsed, the way parsePropEntry's property entries
// already attach their ids via find_or_def. obj is nil for a propertyset
// body, which has no single owning object to attach vocabulary to.
func (p *Parser) parseObjectBody(obj *symbols.ObjectSymbol) []ast.PropEntry {
	p.expectPunct("{")
	var props []ast.PropEntry
	for !p.atPunct("}") && p.tok.Kind != token.EOF {
		if p.tok.Kind == token.SString {
			props = append(props, p.parseVocabWord(obj))
			continue
		}
		props = append(props, p.parsePropEntry())
	}
	p.expectPunct("}")
	return props
}

// parseVocabWord parses one bare 'word' vocabulary-word entry (spec.md
// §3.3/§3.8's object vocabulary list). Every word found this way is
// associated with the generic "noun" part-of-speech property: the
// original grammar lets a single string encode several part-of-speech
// forms at once (adjective/noun pairs, ';'-separated synonyms); this port
// keeps the simpler (word, property) pair spec.md itself describes rather
// than reproducing that string micro-syntax, and records the
// simplification in DESIGN.md.
func (p *Parser) parseVocabWord(obj *symbols.ObjectSymbol) ast.PropEntry {
	tok := p.eat()
	word := unescapeSString(tok.Text)
	if obj != nil {
		obj.Vocabulary = append(obj.Vocabulary, symbols.VocabWord{Word: word, Property: "noun"})
	}
	return ast.PropEntry{VocabWord: word}
}

// parsePropEntry parses one "prop = expr;" or "prop(args) { body }" member
// (spec.md §3.5 "PropEntry"), optionally prefixed by "+Location" as used
// inside vocabulary/sense object bodies.
func (p *Parser) parsePropEntry() ast.PropEntry {
	var loc string
	if p.atOperator("+") {
		p.eat()
		if p.tok.Kind == token.Ident {
			loc = p.eat().Text
		}
	}
	name, _ := p.expectIdent()
	entry := ast.PropEntry{Property: name, Location: loc}
	at := p.tok.At
	// Properties are a flat, globally-shared namespace (spec.md §3.3): the
	// first object body to use a name allocates its id; every later use
	// resolves to the same symbol via find_or_def.
	p.syms.FindOrDef(name, at, symbols.AddPropNoWarn)

	if p.atPunct("(") {
		cb := &ast.CodeBody{Base: ast.Base{At: at}}
		p.pushCodeBody(cb)
		formals := p.parseFormals("(", ")")
		cb.Formals = formals
		p.declareFormals(at, formals)
		cb.HasRetval = true
		cb.Body = p.parseBlock()
		cb.Labels = p.collectLabels(cb.Body)
		p.popCodeBody()
		entry.Method = cb
		return entry
	}
	if p.atPunct("{") {
		cb := &ast.CodeBody{Base: ast.Base{At: at}}
		p.pushCodeBody(cb)
		cb.HasRetval = true
		cb.Body = p.parseBlock()
		cb.Labels = p.collectLabels(cb.Body)
		p.popCodeBody()
		entry.Method = cb
		return entry
	}
	p.expectPunctOrOperator("=")
	entry.Value = p.ParseExpression()
	p.parseReqSem()
	return entry
}

// parseModifyOrReplace parses "modify Name { ... }" / "replace Name { ... }"
// (spec.md §4.3.5). When Name's object symbol is already defined in this
// module, the Modified/ExtReplace flags are set directly on it so
// internal/objfile's linker can see the overlay without a separate
// synthesized placeholder symbol; a target defined only in another module
// (an as-yet-unseen extern) is resolved at link time instead, since this
// module's symbol table has no entry to flag yet.
func (p *Parser) parseModifyOrReplace(replace bool) ast.Node {
	at := p.tok.At
	p.eat() // "modify" | "replace"
	name, _ := p.expectIdent()
	m := &ast.Modify{Base: ast.Base{At: at}, Name: name, Replace: replace}
	var obj *symbols.ObjectSymbol
	if sym := p.syms.FindNoRef(name); sym != nil && sym.Kind == symbols.KindObject {
		obj = sym.Object
		if replace {
			obj.ExtReplace = true
		} else {
			obj.Modified = true
		}
	}
	m.Props = p.parseObjectBody(obj)
	return m
}

// parseFunctionDef parses "function name(formals) { body }" and defines the
// function symbol under its plain name. Typed formals are not parsed and no
// multi-method name decoration is applied.
func (p *Parser) parseFunctionDef() ast.Node {
	at := p.tok.At
	p.eat() // "function"
	name, _ := p.expectIdent()
	cb := &ast.CodeBody{Base: ast.Base{At: at}}
	p.pushCodeBody(cb)
	formals := p.parseFormals("(", ")")
	cb.Formals = formals
	p.declareFormals(at, formals)
	cb.HasRetval = true
	cb.Body = p.parseBlock()
	cb.Labels = p.collectLabels(cb.Body)
	p.popCodeBody()

	fn := &ast.FunctionDef{Base: ast.Base{At: at}, Name: name, Body: cb}
	sym := &symbols.Symbol{
		Name: name, Kind: symbols.KindFunction, At: at, Referenced: true,
		Function: &symbols.FunctionSymbol{Argc: len(formals), HasRetval: true},
	}
	if err := p.syms.DefineGlobal(sym); err != nil {
		p.errorf("%s", err)
	}
	return fn
}

func (p *Parser) parseEnumDef() ast.Node {
	at := p.tok.At
	p.eat() // "enum"
	isToken := false
	if p.tok.Kind == token.Ident && p.tok.Text == "token" {
		isToken = true
		p.eat()
	}
	var names []string
	for {
		name, _ := p.expectIdent()
		names = append(names, name)
		sym := &symbols.Symbol{
			Name: name, Kind: symbols.KindEnum, At: at, Referenced: true,
			Enum: &symbols.EnumSymbol{EnumID: p.syms.AllocEnumID(), IsToken: isToken},
		}
		if err := p.syms.DefineGlobal(sym); err != nil {
			p.errorf("%s", err)
		}
		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	p.parseReqSem()
	return &ast.EnumDef{Base: ast.Base{At: at}, IsToken: isToken, Names: names}
}

// parseDictionaryDef parses "dictionary name;" (spec.md §3.8), defining a
// real Dict-metaclass object symbol the way parseObjectDef defines a
// TadsObj one, so the dictionary survives into BuildModule/WriteModule
// instead of existing only as a throwaway AST node.
func (p *Parser) parseDictionaryDef() ast.Node {
	at := p.tok.At
	p.eat() // "dictionary"
	name, _ := p.expectIdent()
	p.parseReqSem()

	sym := &symbols.Symbol{
		Name: name, Kind: symbols.KindObject, At: at, Referenced: true,
		Object: &symbols.ObjectSymbol{ObjectID: p.syms.AllocObjectID(), Metaclass: "Dict"},
	}
	if err := p.syms.DefineGlobal(sym); err != nil {
		p.errorf("%s", err)
	}
	return &ast.DictionaryDef{Base: ast.Base{At: at}, Name: name}
}

// parseGrammarDef parses "grammar name(tag): alt1 | alt2 | ... : Processor;"
// (spec.md §3.8/§4.3.6). Each alternative is a sequence of tokens: bare
// identifiers name a part-of-speech property or sub-production, single-
// quoted strings are literals, "*" is the wildcard, and "->prop" tags the
// preceding token's match target.
func (p *Parser) parseGrammarDef() ast.Node {
	at := p.tok.At
	p.eat() // "grammar"
	name, _ := p.expectIdent()
	p.expectPunct("(")
	tag, _ := p.expectIdent()
	p.expectPunct(")")
	p.expectPunctOrOperator(":")

	var alts []ast.GrammarAlt
	alts = append(alts, p.parseGrammarAlt())
	for p.atOperator("|") {
		p.eat()
		alts = append(alts, p.parseGrammarAlt())
	}
	processor := ""
	if p.atOperator(":") {
		p.eat()
		processor, _ = p.expectIdent()
	}
	p.parseReqSem()

	// A production name is shared across every "grammar name(tag): ...;"
	// statement that names it: each statement contributes one more group
	// of alternatives to the same GrammarProd object (spec.md §3.8,
	// "alternatives are inherited by subclassing"), so the symbol is
	// find-or-defined here rather than required to be fresh the way
	// parseObjectDef's name is.
	sym := p.syms.FindNoRef(name)
	if sym == nil {
		sym = &symbols.Symbol{
			Name: name, Kind: symbols.KindObject, At: at, Referenced: true,
			Object: &symbols.ObjectSymbol{ObjectID: p.syms.AllocObjectID(), Metaclass: "GrammarProd"},
		}
		if err := p.syms.DefineGlobal(sym); err != nil {
			p.errorf("%s", err)
		}
	} else if sym.Kind != symbols.KindObject || sym.Object == nil {
		p.errorf("%q is already defined and is not a grammar production", name)
		return &ast.GrammarProdDef{Base: ast.Base{At: at}, Name: name, Tag: tag, Alts: alts, Processor: processor}
	}
	sym.Object.GrammarAlts = append(sym.Object.GrammarAlts, toGrammarAltRecords(alts, processor)...)

	return &ast.GrammarProdDef{Base: ast.Base{At: at}, Name: name, Tag: tag, Alts: alts, Processor: processor}
}

// toGrammarAltRecords converts one grammar statement's parsed alternatives
// into the symbols.GrammarAltRecord form stored on the production's object
// symbol, tagging each with the statement's own processor (falling back to
// the per-alt Processor field, which the grammar token parser never
// currently populates, so this is effectively the statement's processor
// for every alt it contributes).
func toGrammarAltRecords(alts []ast.GrammarAlt, processor string) []symbols.GrammarAltRecord {
	out := make([]symbols.GrammarAltRecord, len(alts))
	for i, alt := range alts {
		rec := symbols.GrammarAltRecord{
			Score:     alt.Score,
			Badness:   alt.Badness,
			Processor: processor,
		}
		if alt.Processor != "" {
			rec.Processor = alt.Processor
		}
		rec.Tokens = make([]symbols.GrammarTokenRecord, len(alt.Tokens))
		for j, tok := range alt.Tokens {
			rec.Tokens[j] = symbols.GrammarTokenRecord{
				Kind: tok.Kind, Text: tok.Text, Set: tok.Set, ArrowProp: tok.ArrowProp,
			}
		}
		out[i] = rec
	}
	return out
}

func (p *Parser) parseGrammarAlt() ast.GrammarAlt {
	var alt ast.GrammarAlt
	for {
		if p.atPunct(";") || p.atOperator("|") || p.atOperator(":") {
			break
		}
		alt.Tokens = append(alt.Tokens, p.parseGrammarToken())
		if p.tok.Kind == token.EOF {
			break
		}
	}
	return alt
}

func (p *Parser) parseGrammarToken() ast.GrammarToken {
	var gt ast.GrammarToken
	switch {
	case p.tok.Kind == token.SString:
		gt.Kind = "literal"
		gt.Text = unescapeSString(p.eat().Text)
	case p.atOperator("*"):
		p.eat()
		gt.Kind = "star"
	case p.tok.Kind == token.Ident:
		gt.Kind = "pos"
		gt.Text = p.eat().Text
	default:
		p.errorf("unexpected token %q in grammar rule", p.tok.Text)
		p.eat()
		gt.Kind = "literal"
	}
	if p.atOperator("->") {
		p.eat()
		gt.ArrowProp, _ = p.expectIdent()
	}
	return gt
}

func (p *Parser) parseExportDef() ast.Node {
	at := p.tok.At
	p.eat() // "export"
	var names []string
	for {
		name, _ := p.expectIdent()
		names = append(names, name)
		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	p.parseReqSem()
	return &ast.ExportDef{Base: ast.Base{At: at}, Names: names}
}

// parseExternDecl parses "extern object Name;" / "extern function Name(...);"
// (spec.md §4.3.6). When the name has no entry yet, a symbol is defined
// with its IsExtern flag set, so internal/objfile's linker has something
// concrete to resolve against the global registry built from every other
// module; when the name already has an entry, that entry is left unchanged.
func (p *Parser) parseExternDecl() ast.Node {
	at := p.tok.At
	p.eat() // "extern"
	kind := "object"
	if p.atKeyword("function") {
		kind = "function"
		p.eat()
	} else if p.tok.Kind == token.Ident && p.tok.Text == "object" {
		p.eat()
	}
	name, _ := p.expectIdent()
	var formals []ast.Formal
	if p.atPunct("(") {
		formals = p.parseFormals("(", ")")
	}
	p.parseReqSem()

	if existing := p.syms.FindNoRef(name); existing == nil {
		sym := &symbols.Symbol{Name: name, Kind: symbols.KindObject, At: at}
		if kind == "function" {
			sym.Kind = symbols.KindFunction
			varargs := false
			argc := len(formals)
			if argc > 0 && formals[argc-1].Varargs {
				varargs = true
				argc--
			}
			sym.Function = &symbols.FunctionSymbol{Argc: argc, Varargs: varargs, IsExtern: true}
		} else {
			sym.Object = &symbols.ObjectSymbol{ObjectID: p.syms.AllocObjectID(), IsExtern: true}
		}
		p.syms.DefineGlobal(sym)
	}
	return &ast.ExternDecl{Base: ast.Base{At: at}, Kind: kind, Name: name}
}

// parsePropertySetDef expands "propertyset 'pat_*' { members }" into the
// member PropEntry list, leaving the pattern recorded for the property
// names to be rewritten against at fold time (spec.md §3.5).
func (p *Parser) parsePropertySetDef() ast.Node {
	at := p.tok.At
	p.eat() // "propertyset"
	pattern := ""
	if p.tok.Kind == token.SString {
		pattern = unescapeSString(p.eat().Text)
	}
	props := p.parseObjectBody(nil)
	return &ast.PropertySetDef{Base: ast.Base{At: at}, Pattern: pattern, Props: props}
}

// parseIntrinsicClass parses "intrinsic class Name : Base;" metaclass
// import declarations as an ExternDecl, since (spec.md §1) the metaclass
// dispatch tables themselves are out of this compiler's scope — only the
// linker-visible name needs recording.
func (p *Parser) parseIntrinsicClass() ast.Node {
	at := p.tok.At
	p.eat() // "intrinsic"
	p.expectKeyword("class")
	name, _ := p.expectIdent()
	if p.atOperator(":") {
		p.eat()
		p.parseSuperClassList()
	}
	p.parseReqSem()
	return &ast.ExternDecl{Base: ast.Base{At: at}, Kind: "class", Name: name}
}

// parseTemplateDef parses a standalone "[ClassName] template item, item2;"
// declaration (spec.md §3.7). className is "" for the bare global form,
// which (per the original grammar's add_template_def always taking a
// class symbol) has no object to attach to and is recorded in the AST
// only. When className is given, the item list is appended to that
// class's Object.Templates the way parseObjectDefBody already attaches an
// inline object's own fields, so the template survives into BuildModule.
func (p *Parser) parseTemplateDef(className string) ast.Node {
	at := p.tok.At
	p.eat() // "template"
	items := p.parseTemplateItemList()
	p.parseReqSem()

	if className != "" {
		if sym := p.syms.FindNoRef(className); sym != nil && sym.Kind == symbols.KindObject && sym.Object != nil {
			sym.Object.Templates = append(sym.Object.Templates, toSymbolTemplateItems(items))
		}
	}
	return &ast.TemplateDef{Base: ast.Base{At: at}, ClassName: className, Items: items}
}

func toSymbolTemplateItems(items []ast.TemplateItem) []symbols.TemplateItem {
	out := make([]symbols.TemplateItem, len(items))
	for i, item := range items {
		out[i] = symbols.TemplateItem{
			Property: item.Property, TokenType: item.TokenType, IsAlt: item.IsAlt, IsOpt: item.IsOpt,
		}
	}
	return out
}

func (p *Parser) parseTemplateItemList() []ast.TemplateItem {
	var items []ast.TemplateItem
	for {
		if p.atPunct(";") || p.tok.Kind == token.EOF {
			break
		}
		item := ast.TemplateItem{}
		if p.tok.Kind == token.SString {
			item.TokenType = "string"
			p.eat()
		} else {
			name, _ := p.expectIdent()
			item.Property = name
		}
		if p.atOperator("?") {
			p.eat()
			item.IsOpt = true
		}
		items = append(items, item)
		if p.atOperator("|") {
			p.eat()
			continue
		}
		if p.atOperator(",") {
			p.eat()
			continue
		}
		break
	}
	return items
}
