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

// --- Constants (spec.md §3.5 "Constant") ---------------------------------

// IntLiteral is an integer constant.
type IntLiteral struct {
	Base
	Value int64
}

// FloatLiteral stores the source-text decimal form, plus whether it is the
// result of an integer overflow promotion (spec.md §3.5/§8.3 scenario 1).
type FloatLiteral struct {
	Base
	Text      string // exact source text, e.g. "4000000000"
	Promoted  bool   // set when produced by int-overflow promotion
}

// SStringLiteral is a single-quoted string constant.
type SStringLiteral struct {
	Base
	Value string
}

// ListLiteral is `[ e1, e2, ... ]`; Elements form a linked chain per
// spec.md §3.5 but are represented here as a slice, which is the idiomatic
// Go equivalent of "linked chain of element nodes" (a slice header is
// itself just a pointer+len+cap; nothing about spec.md's invariants
// depends on linked-list representation).
type ListLiteral struct {
	Base
	Elements []Node
}

// NilLiteral, TrueLiteral are the two built-in constant keywords besides
// nil/true's boolean-complement "false" (the language has no `false`
// keyword; `nil` doubles as false in boolean contexts, per the original).
type NilLiteral struct{ Base }
type TrueLiteral struct{ Base }

// ObjectRef/PropertyRef/FunctionRef/BuiltInRef/EnumRef are constant
// references to named symbols, resolved (or left as UnresolvedSym, see
// below) at parse or fold time.
type ObjectRef struct {
	Base
	Name string
}
type PropertyRef struct {
	Base
	Name string
}
type FunctionRef struct {
	Base
	Name string
}
type BuiltInRef struct {
	Base
	Name string
}
type EnumRef struct {
	Base
	Name string
}

// AnonFuncRef wraps an anonymous function/method literal used as a value,
// e.g. `new function { ... }` or the short-form `{ params: body }`.
type AnonFuncRef struct {
	Base
	Body *CodeBody
}

// VocabListPlaceholder stands in for a vocabulary-word list construct
// referenced from an object body (spec.md §3.5).
type VocabListPlaceholder struct {
	Base
	Words []string
}

// UnresolvedSym wraps any identifier that couldn't be resolved against the
// symbol table during parsing; spec.md §9 "Forward references" — resolved
// later at fold_constants/link time.
type UnresolvedSym struct {
	Base
	Name string
}

// --- Unary (spec.md §3.5 "Unary") ----------------------------------------

type UnaryOp struct {
	Base
	Operator   string // "!", "~", "+", "-", "++", "--" (IsPostfix marks the postfix forms)
	Operand    Node
	IsPostfix  bool
}

// AddressOf is `&property` / `&func`.
type AddressOf struct {
	Base
	Operand Node
}

// New is the `new ClassName(args)` / `new function {...}` constructor
// expression; Transient marks `new transient ClassName(...)`.
type New struct {
	Base
	Class     Node
	Args      []Arg
	Transient bool
}

// Delete is `delete expr`.
type Delete struct {
	Base
	Operand Node
}

// --- Binary (spec.md §3.5 "Binary") --------------------------------------

type BinaryOp struct {
	Base
	Operator string
	LHS, RHS Node
}

// Subscript is `a[b]`.
type Subscript struct {
	Base
	Object, Index Node
}

// Member is `a.prop` or `a.(propExpr)`; PropExpr is set for the latter.
type Member struct {
	Base
	Object      Node
	Property    string
	PropExpr    Node
}

// --- Call (spec.md §3.5 "Call and member-call") ---------------------------

// Arg is one call argument; Spread marks `...` varargs-spread.
type Arg struct {
	Expr   Node
	Spread bool
}

type Call struct {
	Base
	Callee Node
	Args   []Arg
}

// --- Assignment ------------------------------------------------------------

type Assign struct {
	Base
	Operator string // "=", "+=", "-=", ...
	LHS, RHS Node
}

// --- Ternary / if-nil --------------------------------------------------

type Ternary struct {
	Base
	Cond, Then, Else Node
}

type IfNil struct {
	Base
	LHS, RHS Node
}

// --- Method-context references (spec.md §3.5) ----------------------------

type SelfRef struct{ Base }
type ReplacedRef struct{ Base }
type TargetPropRef struct{ Base }
type TargetObjRef struct{ Base }
type DefiningObjRef struct{ Base }
type ArgCountRef struct{ Base }

// InheritedRef is plain `inherited`, `inherited ClassName`, or
// `inherited(args)`; InheritedCall wraps it when called with arguments.
type InheritedRef struct {
	Base
	SuperClass string // "" if unqualified
}

// MultiMethodInherited is `inherited<T1,T2,...>(args)` — explicit
// multi-method dispatch (spec.md §3.5, §4.3.9).
type MultiMethodInherited struct {
	Base
	TypeList []string
	Args     []Arg
}

type DelegatedRef struct {
	Base
	Target Node
}

// --- is in / not in --------------------------------------------------------

type IsIn struct {
	Base
	Negate bool
	LHS    Node
	Values []Node
}

// --- Double-quoted string with embeddings (spec.md §4.3.4) ----------------

// DString is the parsed form of a `"...<<expr>>..."` literal before
// lowering; internal/parser lowers it into a Comma-chain AST per
// spec.md §4.3.4 ("segment0 , embed(expr1) , segment1 , ...").
type DString struct {
	Base
	Segments []DStringPart
}

// DStringPart is one piece of a DString: either a literal text segment or
// an embedded expression (including <<if>>/<<unless>>/<<one of>>/
// <<first time ... only>> control constructs, parsed into ordinary
// expression/statement nodes by internal/parser/dstring.go).
type DStringPart struct {
	Text  string // non-empty only when Expr == nil
	Expr  Node   // non-nil for an embedded "<<...>>"
}

// Comma is the lowered `a, b` / dstring-segment chain.
type Comma struct {
	Base
	Elements []Node
}
