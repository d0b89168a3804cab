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

package ast

// Module is the root node of one parsed translation unit: an ordered list
// of top-level declarations, the rough equivalent of the teacher's
// gapil/ast.API (gapil/ast/api.go) generalized from "one api file's worth
// of declarations" to "one .t source file's worth of declarations".
type Module struct {
	Base
	Filename string
	Decls    []Node
}

// PropEntry is one `prop = expr;` or `prop(args) { body }` member of an
// object or class body, or one bare single-quoted vocabulary word
// (VocabWord non-empty, every other field zero) per spec.md §3.3's
// "vocabulary-word list".
type PropEntry struct {
	Property   string
	Method     *CodeBody // non-nil for `prop(args) { ... }`
	Value      Node      // non-nil for `prop = expr;`
	IsStatic   bool      // propertyset / metaclass static members
	Location   string    // "+Location" prefix, "" if none
	VocabWord  string    // non-"" for a bare 'word' vocabulary entry
}

// TemplateItem is one slot of an object template (spec.md §3.7).
type TemplateItem struct {
	Property string
	TokenType string // lexical category this slot accepts ("string", "object", ...)
	IsAlt    bool    // this item is one of a `|` alternate set
	IsOpt    bool    // trailing `?`
}

// ObjectDef is `[class] Name : SC1, SC2, ... { ... }`, spec.md §4.3.5.
type ObjectDef struct {
	Base
	Name        string
	IsClass     bool
	Transient   bool
	SuperClass  []string
	Templates   [][]TemplateItem // alternate template lists, source order
	TemplateArgs []Node          // positional args matched against Templates
	Props       []PropEntry
	PlusDepth   int    // 0 if no leading "+"
	LexicalParent string // for anonymous/nested inline objects
}

// Modify is `modify Name { ... }`; Replace marks `replace Name { ... }`.
type Modify struct {
	Base
	Name    string
	Replace bool
	Props   []PropEntry
}

// FunctionDef is a top-level `function name(args) { body }`.
type FunctionDef struct {
	Base
	Name string
	Body *CodeBody
	// MultiMethodTypes holds a multi-method's formal types; parseFunctionDef
	// does not set it, and function names are not decorated.
	MultiMethodTypes []string
}

// ClassDef mirrors ObjectDef for the `class Name : SC { ... }` form when
// parsed as a standalone top-level statement rather than inline.
type ClassDef struct {
	Base
	Object *ObjectDef
}

// GrammarToken is one element of a grammar-production alternative
// (spec.md §3.8/§4.3.6): a literal, a part-of-speech property, a token
// type enum, a sub-production reference, '*', or a set expression.
type GrammarToken struct {
	Kind     string // "literal" | "pos" | "tokentype" | "subprod" | "star" | "set"
	Text     string // literal text, property name, production name, ...
	Set      []string
	ArrowProp string // "" unless this token carries "->property"
}

type GrammarAlt struct {
	Tokens    []GrammarToken
	Score     int
	Badness   int
	Processor string // processor-object reference
}

// GrammarProdDef is `grammar Name(tag): alt1 | alt2 | ... : Processor;`.
type GrammarProdDef struct {
	Base
	Name      string
	Tag       string
	Alts      []GrammarAlt
	Processor string
	Modify    bool
	Replace   bool
}

// DictionaryDef declares a vocabulary dictionary object.
type DictionaryDef struct {
	Base
	Name string
}

// EnumDef is `enum [token] a, b, c;`.
type EnumDef struct {
	Base
	IsToken bool
	Names   []string
}

// TemplateDef is a standalone `Name template ...;` or global `template ...;`
// declaration (as opposed to one inline in an ObjectDef).
type TemplateDef struct {
	Base
	ClassName string // "" for a global template
	Items     []TemplateItem
}

// ExportDef is `export name1, name2, ...;`.
type ExportDef struct {
	Base
	Names []string
}

// Extern is an `extern` declaration of an object/function (C4's linkage
// contract, spec.md §3.3/§4.4).
type ExternDecl struct {
	Base
	Kind string // "object" | "function"
	Name string
}

// PropertySetDef is `propertyset 'pat_*' { ... }` sugar that expands into
// several PropEntry members sharing a naming pattern.
type PropertySetDef struct {
	Base
	Pattern string
	Props   []PropEntry
}
