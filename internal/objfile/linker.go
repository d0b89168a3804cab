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

package objfile

import (
	"fmt"
	"sort"

	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/symbols"
)

// LinkedImage is the merged result of linking one or more Modules
// (spec.md §4.4): every definition resolved to a single global id, modify
// chains applied, and extern references translated to the symbol that
// defines them.
//
// Building the byte-addressable image file itself (the VM's object table,
// with actual code-stream fixup patching) is the image-file writer spec.md
// §1 places out of scope ("consumer of compiled output"); LinkedImage stops
// at the fully-resolved, ready-to-serialize symbol graph that writer would
// consume, which is the boundary spec.md §4.4 actually describes for C4.
type LinkedImage struct {
	Objects    []*symbols.Symbol
	Properties []*symbols.Symbol
	Functions  []*symbols.Symbol
	Enums      []*symbols.Symbol

	// ModuleIDs maps, per input module (by index), each of that module's
	// local object/property/enum ids to the id the symbol carries in this
	// LinkedImage — the "per-module translation table" of spec.md §4.4.
	ModuleIDs []TranslationTable
}

// TranslationTable is one module's local-id -> global-id mapping, split by
// symbol kind since object, property and enum ids are independent spaces.
type TranslationTable struct {
	Objects    map[uint32]uint32
	Properties map[uint32]uint32
	Enums      map[uint32]uint32
}

func newTranslationTable() TranslationTable {
	return TranslationTable{
		Objects:    map[uint32]uint32{},
		Properties: map[uint32]uint32{},
		Enums:      map[uint32]uint32{},
	}
}

// registryEntry is one globally-merged symbol, tracking the modify chain
// and which module index it was first (non-extern) defined in.
type registryEntry struct {
	sym        *symbols.Symbol
	globalID   uint32 // valid for Object/Property/Enum kinds
	definedIn  int
	isMultiBase bool
}

// Link merges modules in the order given (spec.md §4.4's "at link time")
// into one LinkedImage. Diagnostics are reported through diags; a conflict
// (same name, different kinds; or a plain non-modify/non-replace
// redefinition) is logged but does not stop the link, matching
// spec.md §4.4's "Symbol conflicts ... are logged but parsing continues".
// An unresolved extern at the end of all modules is reported as an error
// and Link returns a non-nil error, matching "Undefined externs at link
// end are errors".
func Link(modules []*Module, diags *diag.Bag) (*LinkedImage, error) {
	registry := map[string]*registryEntry{}
	var order []string // first-seen order, for deterministic output

	var nextObjectID, nextPropID, nextEnumID uint32
	tables := make([]TranslationTable, len(modules))
	for i := range tables {
		tables[i] = newTranslationTable()
	}

	type pendingExtern struct {
		moduleIdx int
		sym       *symbols.Symbol
	}
	var externs []pendingExtern

	for mi, mod := range modules {
		for _, sym := range mod.Symbols {
			if isExternSymbol(sym) {
				externs = append(externs, pendingExtern{mi, sym})
				continue
			}
			existing, seen := registry[sym.Name]
			switch {
			case !seen:
				entry := &registryEntry{sym: sym, definedIn: mi}
				switch sym.Kind {
				case symbols.KindObject:
					entry.globalID = nextObjectID
					tables[mi].Objects[sym.Object.ObjectID] = entry.globalID
					nextObjectID++
				case symbols.KindProperty:
					entry.globalID = nextPropID
					tables[mi].Properties[sym.Property.PropID] = entry.globalID
					nextPropID++
				case symbols.KindEnum:
					entry.globalID = nextEnumID
					tables[mi].Enums[sym.Enum.EnumID] = entry.globalID
					nextEnumID++
				case symbols.KindFunction:
					entry.isMultiBase = sym.Function.IsMultiMethodBase
				}
				registry[sym.Name] = entry
				order = append(order, sym.Name)

			case sym.Kind != existing.sym.Kind:
				diags.Reportf(diag.Error, sym.At, sym.Name,
					"%q is defined as both %s and %s", sym.Name, existing.sym.Kind, sym.Kind)

			case sym.Kind == symbols.KindFunction && sym.Function.IsMultiMethodBase && existing.isMultiBase:
				// Shared multi-method base placeholder: every module that
				// contributes a variant re-declares it. Not a conflict.

			case sym.Kind == symbols.KindObject && sym.Object.Modified:
				sym.Object.ModBase = existing.sym
				tables[mi].Objects[sym.Object.ObjectID] = existing.globalID
				registry[sym.Name] = &registryEntry{sym: sym, globalID: existing.globalID, definedIn: mi}

			case sym.Kind == symbols.KindFunction && sym.Function.ModBase != nil:
				sym.Function.ModBase = existing.sym
				registry[sym.Name] = &registryEntry{sym: sym, definedIn: mi, isMultiBase: entryIsMultiBase(sym)}

			case sym.Kind == symbols.KindObject && sym.Object.ExtReplace:
				registry[sym.Name] = &registryEntry{sym: sym, globalID: existing.globalID, definedIn: mi}

			case sym.Kind == symbols.KindFunction && sym.Function.ExtReplace:
				registry[sym.Name] = &registryEntry{sym: sym, definedIn: mi}

			default:
				diags.Reportf(diag.Error, sym.At, sym.Name,
					"%q is redefined (at %s, first defined at %s)", sym.Name, sym.At, existing.sym.At)
			}
		}
	}

	var missing []pendingExtern
	for _, pe := range externs {
		existing, ok := registry[pe.sym.Name]
		if !ok || existing.sym.Kind != pe.sym.Kind {
			missing = append(missing, pe)
			continue
		}
		switch pe.sym.Kind {
		case symbols.KindObject:
			tables[pe.moduleIdx].Objects[pe.sym.Object.ObjectID] = existing.globalID
		case symbols.KindProperty:
			tables[pe.moduleIdx].Properties[pe.sym.Property.PropID] = existing.globalID
		case symbols.KindEnum:
			tables[pe.moduleIdx].Enums[pe.sym.Enum.EnumID] = existing.globalID
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i].sym.Name < missing[j].sym.Name })
		for _, pe := range missing {
			diags.Reportf(diag.Error, pe.sym.At, pe.sym.Name, "undefined extern symbol %q", pe.sym.Name)
		}
		return nil, fmt.Errorf("objfile: link failed: %d undefined extern symbol(s)", len(missing))
	}

	img := &LinkedImage{ModuleIDs: tables}
	for _, name := range order {
		e := registry[name]
		switch e.sym.Kind {
		case symbols.KindObject:
			img.Objects = append(img.Objects, e.sym)
		case symbols.KindProperty:
			img.Properties = append(img.Properties, e.sym)
		case symbols.KindFunction:
			img.Functions = append(img.Functions, e.sym)
		case symbols.KindEnum:
			img.Enums = append(img.Enums, e.sym)
		}
	}
	return img, nil
}

// isExternSymbol reports whether sym is an unresolved reference into
// another module, per spec.md §4.4's extern-resolution rule: extern
// symbols are never exported themselves (the one exception, multi-method
// base symbols, are never marked extern in the first place — they're
// ordinary shared definitions).
func isExternSymbol(sym *symbols.Symbol) bool {
	switch sym.Kind {
	case symbols.KindObject:
		return sym.Object.IsExtern
	case symbols.KindFunction:
		return sym.Function.IsExtern
	default:
		return false
	}
}

func entryIsMultiBase(sym *symbols.Symbol) bool {
	return sym.Kind == symbols.KindFunction && sym.Function.IsMultiMethodBase
}
