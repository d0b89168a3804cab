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

// Formal is one formal parameter of a CodeBody.
type Formal struct {
	Name     string
	Type     string // "" unless this is a typed multi-method formal
	Varargs  bool   // trailing "..." formal
}

// LocalContextInfo holds the closure-conversion bookkeeping of spec.md §3.6:
// when a nested CodeBody captures a local of this one, the local is
// promoted to a slot in a shared context object that every nested body
// reaches through one pointer per lexical level of nesting.
type LocalContextInfo struct {
	// HasContext is true once any local of this CodeBody has been
	// converted to a context local.
	HasContext bool
	// ContextVarSlot is the local-variable slot holding this body's own
	// context object (valid only if HasContext).
	ContextVarSlot int
	// NeedsSelf/NeedsFullMethodCtx record that a nested body references
	// self/targetprop/targetobj/definingobj and so this body must capture
	// the full method context alongside any captured locals.
	NeedsSelf         bool
	NeedsFullMethodCtx bool
	// CapturedLocals maps an outer local's original slot number to its
	// stable index within the shared context object. Multiple nesting
	// levels share the same index for a given original local.
	CapturedLocals map[int]int
}

// CodeBody is the AST subtree rooted at a function or method body
// (spec.md §3.5 "Code body"). It owns the local symbol table (held by
// internal/symbols, referenced here by the parser while building), the
// goto/label table, and closure metadata.
type CodeBody struct {
	Base
	Formals      []Formal
	HasRetval    bool
	Body         *Block
	LocalCount   int // high-water mark of the local slot counter
	Context      LocalContextInfo
	// Enclosing points at the CodeBody this one is lexically nested in, for
	// anonymous functions/methods; nil for a top-level function/method.
	Enclosing *CodeBody
	// SelfReferenced/FullMethodCtxReferenced are set by the parser when it
	// sees `self`/`replaced`/`targetprop`/`targetobj`/`definingobj`/
	// `argcount`/`inherited` directly in this body (spec.md §4.3.8).
	SelfReferenced          bool
	FullMethodCtxReferenced bool
	// Labels maps a goto-label name to its statement, used for the
	// unreferenced-label scan of spec.md §4.2 and to validate goto targets.
	Labels map[string]*Label
}
