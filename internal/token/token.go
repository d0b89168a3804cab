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

// Package token defines the lexical tokens produced by internal/lexer and
// the source-text interner they point into (spec.md §3.2).
package token

import "github.com/tads3/tadsc/internal/diag"

// Kind tags a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	Invalid

	Ident
	Integer
	Float // stored as source-text decimal string, per spec.md §3.5
	SString
	DString
	DStringStart
	DStringMid
	DStringEnd

	Keyword
	Operator
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Invalid:
		return "invalid"
	case Ident:
		return "identifier"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case SString:
		return "sstring"
	case DString:
		return "dstring"
	case DStringStart:
		return "dstring-start"
	case DStringMid:
		return "dstring-mid"
	case DStringEnd:
		return "dstring-end"
	case Keyword:
		return "keyword"
	case Operator:
		return "operator"
	case Punct:
		return "punct"
	default:
		return "?"
	}
}

// Token is a single lexical unit. Text points into interner-owned storage
// that outlives the compiler arena (spec.md §3.2): tokens may be quoted
// verbatim into object files after the arena that built the AST around
// them has been discarded.
type Token struct {
	Kind Kind
	Text string // interned; stable for the life of the compile
	At   diag.Location
}

func (t Token) String() string { return t.Text }

// Keywords is the reserved-word set of the language, recognized by the
// lexer after ordinary identifier scanning.
var Keywords = map[string]bool{
	"class": true, "modify": true, "replace": true, "extern": true,
	"transient": true, "function": true, "method": true,
	"return": true, "if": true, "else": true, "for": true, "in": true,
	"foreach": true, "while": true, "do": true, "switch": true, "case": true,
	"default": true, "break": true, "continue": true, "goto": true,
	"try": true, "catch": true, "finally": true, "throw": true,
	"local": true, "new": true, "delete": true, "nil": true, "true": true,
	"self": true, "inherited": true, "delegated": true, "replaced": true,
	"targetprop": true, "targetobj": true, "definingobj": true,
	"argcount": true, "enum": true, "template": true, "dictionary": true,
	"grammar": true, "propertyset": true, "export": true, "intrinsic": true,
	"static": true, "is": true, "not": true,
}

// Operators lists the multi-character and word operators recognized at the
// operator-scanning level, longest first so e.g. ">>>=" is preferred over
// ">>>" over ">>" over ">". Mirrors gapil/ast's Operators table shape
// (gapil/ast/operator.go), generalized to the C-like operator set of
// spec.md §4.3.1.
var Operators = []string{
	">>>=", "<<=", ">>=", ">>>",
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"++", "--", "??", "...", "->",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!",
	"<", ">", "=", "?", ":", ",", ".",
}
