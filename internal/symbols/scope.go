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

package symbols

import (
	"fmt"

	"github.com/tads3/tadsc/internal/diag"
)

// AddPolicy controls FindOrDef's behavior when a name is absent from every
// scope in the stack, per spec.md §4.2.
type AddPolicy int

const (
	// AddUndef inserts as an undefined placeholder and logs an error.
	AddUndef AddPolicy = iota
	// AddProp inserts as a Property and logs a "assumed to be property"
	// warning (spec.md §8.3 scenario 2).
	AddProp
	// AddPropNoWarn is AddProp without the warning.
	AddPropNoWarn
	// AddPropWeak inserts a weak Property: a later explicit definition may
	// replace it without error.
	AddPropWeak
)

// Scope is one hash-chained lexical level: a hash table plus a parent
// link (spec.md §3.4). Scopes form a stack during parsing; internal/parser
// pushes a block scope for every block, and a scope's entries map is only
// allocated when the first name is defined in it.
type Scope struct {
	parent  *Scope
	entries map[string]*Symbol
	isBlock bool
}

// Table owns the scope stack for one compile: a global scope at the
// bottom, with function/block scopes pushed and popped as the parser
// descends (spec.md §3.4).
type Table struct {
	global  *Scope
	current *Scope
	diags   *diag.Bag

	// nextObjectID/nextPropID/nextEnumID assign the module-local ids
	// spec.md §3.3 requires on Object/Property/Enum symbols, and double as
	// the object-file header's next_obj_id/next_prop_id/next_enum_id
	// counters (spec.md §6) once parsing finishes.
	nextObjectID, nextPropID, nextEnumID uint32
}

// AllocObjectID/AllocPropID/AllocEnumID hand out the next module-local id
// in each namespace, used by internal/parser when it defines a new
// Object/Property/Enum symbol.
func (t *Table) AllocObjectID() uint32 { id := t.nextObjectID; t.nextObjectID++; return id }
func (t *Table) AllocPropID() uint32   { id := t.nextPropID; t.nextPropID++; return id }
func (t *Table) AllocEnumID() uint32   { id := t.nextEnumID; t.nextEnumID++; return id }

// NextObjectID/NextPropID/NextEnumID report the next id that would be
// allocated, i.e. the object-file header counters of spec.md §6.
func (t *Table) NextObjectID() uint32 { return t.nextObjectID }
func (t *Table) NextPropID() uint32   { return t.nextPropID }
func (t *Table) NextEnumID() uint32   { return t.nextEnumID }

// NewTable returns a Table with just the global scope active.
func NewTable(diags *diag.Bag) *Table {
	g := &Scope{entries: map[string]*Symbol{}}
	return &Table{global: g, current: g, diags: diags}
}

// Global returns the outermost scope, where FindOrDef inserts new symbols.
func (t *Table) Global() *Scope { return t.global }

// Push enters a new nested scope (function body or block).
func (t *Table) Push(isBlock bool) *Scope {
	s := &Scope{parent: t.current, isBlock: isBlock}
	t.current = s
	return s
}

// Pop leaves the current scope, restoring its parent as current. Returns
// the scope being left, so callers (e.g. the unreferenced-local scan) can
// still walk its entries after popping.
func (t *Table) Pop() *Scope {
	left := t.current
	if left.parent != nil {
		t.current = left.parent
	}
	return left
}

// Current returns the active scope without modifying the stack.
func (t *Table) Current() *Scope { return t.current }

func (s *Scope) lazyEntries() map[string]*Symbol {
	if s.entries == nil {
		s.entries = map[string]*Symbol{}
	}
	return s.entries
}

// find walks from s outward, returning the symbol and the scope it was
// found in.
func (s *Scope) find(name string) (*Symbol, *Scope) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.entries == nil {
			continue
		}
		if sym, ok := cur.entries[name]; ok {
			return sym, cur
		}
	}
	return nil, nil
}

// Find looks up name from the current scope outward, marking it referenced
// on success (spec.md §4.2).
func (t *Table) Find(name string) *Symbol {
	sym, _ := t.current.find(name)
	if sym != nil {
		sym.Referenced = true
	}
	return sym
}

// FindNoRef is Find without marking the symbol referenced.
func (t *Table) FindNoRef(name string) *Symbol {
	sym, _ := t.current.find(name)
	return sym
}

// FindInScope looks up name only in s itself, not its ancestors. Used by
// AddFormal/AddLocal/AddCodeLabel to detect same-scope redefinition while
// still permitting shadowing of an enclosing scope.
func (s *Scope) FindInScope(name string) *Symbol {
	if s.entries == nil {
		return nil
	}
	return s.entries[name]
}

// FindOrDef finds name from the current scope outward; if absent anywhere,
// it is inserted into the *global* scope under the given policy
// (spec.md §4.2).
func (t *Table) FindOrDef(name string, at diag.Location, policy AddPolicy) *Symbol {
	if sym, _ := t.current.find(name); sym != nil {
		sym.Referenced = true
		return sym
	}
	sym := &Symbol{Name: name, At: at, Referenced: true}
	switch policy {
	case AddUndef:
		sym.Kind = KindObject // placeholder kind; resolved later at link/fold
		if t.diags != nil {
			t.diags.Reportf(diag.Error, at, name, "undefined symbol %q", name)
		}
	case AddProp:
		sym.Kind = KindProperty
		sym.Property = &PropertySymbol{PropID: t.AllocPropID()}
		if t.diags != nil {
			t.diags.Reportf(diag.Warning, at, name, "%q assumed to be a property", name)
		}
	case AddPropNoWarn:
		sym.Kind = KindProperty
		sym.Property = &PropertySymbol{PropID: t.AllocPropID()}
	case AddPropWeak:
		sym.Kind = KindProperty
		sym.Property = &PropertySymbol{Weak: true, PropID: t.AllocPropID()}
	}
	t.global.lazyEntries()[name] = sym
	return sym
}

// FindDeleteWeak looks name up through the scope chain and, if it names a
// weak property, removes it from the scope where it was found, so a stronger explicit definition can replace it without
// triggering a redefinition error (spec.md §4.2).
func (t *Table) FindDeleteWeak(name string) bool {
	sym, scope := t.current.find(name)
	if sym == nil || sym.Kind != KindProperty || sym.Property == nil || !sym.Property.Weak {
		return false
	}
	delete(scope.entries, name)
	return true
}

// define inserts sym into scope, returning an error if name already exists
// directly in scope (redefinition in the same scope is a hard error;
// shadowing an outer scope is allowed, per spec.md §4.2).
func (s *Scope) define(sym *Symbol) error {
	if existing := s.FindInScope(sym.Name); existing != nil {
		return fmt.Errorf("%q is already defined in this scope (as %s, at %s)", sym.Name, existing.Kind, existing.At)
	}
	s.lazyEntries()[sym.Name] = sym
	return nil
}

// AddFormal declares a function/method formal parameter in the current
// (function) scope.
func (t *Table) AddFormal(name string, at diag.Location, slot int) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: KindLocal, At: at, Local: &LocalSymbol{Slot: slot, IsParam: true}}
	if err := t.current.define(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// AddLocal declares a `local` variable in the current scope.
func (t *Table) AddLocal(name string, at diag.Location, slot int) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: KindLocal, At: at, Local: &LocalSymbol{Slot: slot}}
	if err := t.current.define(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// AddCodeLabel declares a goto target label in the current function scope.
func (t *Table) AddCodeLabel(name string, at diag.Location, target interface{}) (*Symbol, error) {
	sym := &Symbol{Name: name, Kind: KindLabel, At: at, Label: &LabelSymbol{Target: target}}
	if err := t.current.define(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// DefineGlobal inserts sym (any kind) directly into the global scope,
// erroring on same-scope redefinition. Used by the parser for top-level
// object/function/enum/dictionary/grammar declarations.
func (t *Table) DefineGlobal(sym *Symbol) error {
	return t.global.define(sym)
}

// Entries returns the scope's own symbol table, not including ancestors.
// internal/objfile uses this to enumerate every global symbol for object-file
// serialization (spec.md §4.4).
func (s *Scope) Entries() map[string]*Symbol {
	return s.entries
}

// UnreferencedScan walks s's direct entries (not ancestors) and invokes cb
// for each Local that was never referenced or never assigned, per
// spec.md §4.2's end-of-code-body diagnostic pass. Parameters get a lower
// ("pedantic") severity than locals, which cb is expected to honor.
func UnreferencedScan(s *Scope, cb func(name string, sym *Symbol)) {
	for name, sym := range s.entries {
		if sym.Kind != KindLocal {
			continue
		}
		if !sym.Referenced || (!sym.Local.IsParam && !sym.Local.ValueAssigned) {
			cb(name, sym)
		}
	}
}
