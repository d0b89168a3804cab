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
	"github.com/tads3/tadsc/internal/symbols"
)

// markSelfReferenced records that the innermost code body currently being
// parsed references `self`. If that body is itself nested (an anonymous
// function/method), every enclosing body up to and including the one that
// actually owns `self` needs to capture self, per
// spec.md §3.6 ("The parser records, on each outer code body, whether self
// or the full method context must be captured").
func (p *Parser) markSelfReferenced() {
	if n := len(p.enclosingBody); n > 0 {
		p.enclosingBody[n-1].SelfReferenced = true
		p.propagateFullMethodCtx()
	}
}

// markFullMethodCtx records a reference to replaced/targetprop/targetobj/
// definingobj/argcount, which all require the full method context rather
// than just `self`.
func (p *Parser) markFullMethodCtx() {
	if n := len(p.enclosingBody); n > 0 {
		p.enclosingBody[n-1].FullMethodCtxReferenced = true
		p.propagateFullMethodCtx()
	}
}

// propagateFullMethodCtx marks every enclosing body's LocalContextInfo so
// that Enclosing.Context.NeedsSelf/NeedsFullMethodCtx is set wherever a
// nested body captured self or the method context, per spec.md §3.6.
func (p *Parser) propagateFullMethodCtx() {
	n := len(p.enclosingBody)
	if n < 2 {
		return
	}
	inner := p.enclosingBody[n-1]
	for i := n - 2; i >= 0; i-- {
		outer := p.enclosingBody[i]
		outer.Context.HasContext = true
		if inner.SelfReferenced || inner.Context.NeedsSelf {
			outer.Context.NeedsSelf = true
		}
		if inner.FullMethodCtxReferenced || inner.Context.NeedsFullMethodCtx {
			outer.Context.NeedsFullMethodCtx = true
		}
		inner = outer
	}
}

// captureLocal converts name, found in an outer code body, into a context
// local: the outer body gets (or reuses) a shared context object, the
// local is assigned a stable index within it, and every nested body
// between the reference and the owning body reaches it through one
// context-pointer indirection per lexical level (spec.md §3.6).
//
// ownerBody is the CodeBody that originally declared the local; slot is
// its original local-variable slot number within ownerBody.
func (p *Parser) captureLocal(ownerBody *ast.CodeBody, slot int) int {
	if ownerBody.Context.CapturedLocals == nil {
		ownerBody.Context.CapturedLocals = map[int]int{}
	}
	if idx, ok := ownerBody.Context.CapturedLocals[slot]; ok {
		ownerBody.Context.HasContext = true
		return idx
	}
	idx := len(ownerBody.Context.CapturedLocals)
	if !ownerBody.Context.HasContext {
		ownerBody.Context.ContextVarSlot = ownerBody.LocalCount
		ownerBody.LocalCount++
	}
	ownerBody.Context.CapturedLocals[slot] = idx
	ownerBody.Context.HasContext = true
	return idx
}

// pushCodeBody enters a new CodeBody scope (spec.md §4.3.8), tracking the
// lexical-nesting stack used by markSelfReferenced/markFullMethodCtx and
// captureLocal.
func (p *Parser) pushCodeBody(cb *ast.CodeBody) {
	if n := len(p.enclosingBody); n > 0 {
		cb.Enclosing = p.enclosingBody[n-1]
	}
	p.enclosingBody = append(p.enclosingBody, cb)
	p.nextLocalSlot = append(p.nextLocalSlot, 0)
	p.syms.Push(false)
}

// popCodeBody leaves the current CodeBody scope, running the
// unreferenced-local scan of spec.md §4.2 before popping the symbol table.
func (p *Parser) popCodeBody() *ast.CodeBody {
	n := len(p.enclosingBody)
	cb := p.enclosingBody[n-1]
	scope := p.syms.Pop()
	symbols.UnreferencedScan(scope, func(name string, sym *symbols.Symbol) {
		sev := diag.Warning
		if sym.Local != nil && sym.Local.IsParam {
			sev = diag.Pedantic
		}
		p.diags.Reportf(sev, sym.At, name, "local %q is never used", name)
	})
	cb.LocalCount = p.nextLocalSlot[len(p.nextLocalSlot)-1]
	p.enclosingBody = p.enclosingBody[:n-1]
	p.nextLocalSlot = p.nextLocalSlot[:len(p.nextLocalSlot)-1]
	return cb
}

// allocLocalSlot returns the next local-variable slot number for the
// current code body, advancing the high-water mark.
func (p *Parser) allocLocalSlot() int {
	n := len(p.nextLocalSlot)
	slot := p.nextLocalSlot[n-1]
	p.nextLocalSlot[n-1] = slot + 1
	return slot
}

// currentBody returns the CodeBody currently being parsed, or nil at
// top level.
func (p *Parser) currentBody() *ast.CodeBody {
	if n := len(p.enclosingBody); n > 0 {
		return p.enclosingBody[n-1]
	}
	return nil
}
