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
	"testing"

	"github.com/tads3/tadsc/internal/diag"
)

func TestFindWalksEnclosingScopes(t *testing.T) {
	tbl := NewTable(diag.NewBag())
	tbl.DefineGlobal(&Symbol{Name: "outer", Kind: KindFunction, Function: &FunctionSymbol{}})
	tbl.Push(false)
	if sym := tbl.Find("outer"); sym == nil {
		t.Fatalf("expected to find global symbol from nested scope")
	}
}

func TestShadowingAllowedRedefinitionForbidden(t *testing.T) {
	tbl := NewTable(diag.NewBag())
	if _, err := tbl.AddLocal("x", diag.Location{Line: 1}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl.Push(true)
	if _, err := tbl.AddLocal("x", diag.Location{Line: 2}, 1); err != nil {
		t.Fatalf("shadowing an outer local must be allowed, got: %v", err)
	}
	if _, err := tbl.AddLocal("x", diag.Location{Line: 3}, 2); err == nil {
		t.Fatalf("redefining in the same scope must be an error")
	}
}

func TestFindOrDefAssumesProperty(t *testing.T) {
	bag := diag.NewBag()
	tbl := NewTable(bag)
	sym := tbl.FindOrDef("bar", diag.Location{Line: 5}, AddProp)
	if sym.Kind != KindProperty {
		t.Fatalf("expected KindProperty, got %v", sym.Kind)
	}
	if bag.Count(diag.Warning) != 1 {
		t.Fatalf("expected exactly one warning diagnostic, got %d", bag.Count(diag.Warning))
	}
}

func TestFindDeleteWeakAllowsRedefinition(t *testing.T) {
	tbl := NewTable(diag.NewBag())
	tbl.FindOrDef("p", diag.Location{Line: 1}, AddPropWeak)
	if !tbl.FindDeleteWeak("p") {
		t.Fatalf("expected weak property to be deletable")
	}
	if tbl.FindNoRef("p") != nil {
		t.Fatalf("expected weak property to be gone after FindDeleteWeak")
	}
}
