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

package compctx

import (
	"testing"

	"github.com/tads3/tadsc/internal/parser"
)

func TestSharedSymbolsAcrossFiles(t *testing.T) {
	ctx := New(parser.DefaultOptions())

	p1 := ctx.NewFileParser("a.t", "foo : object { x = 1; }")
	p1.ParseModule("a.t")

	p2 := ctx.NewFileParser("b.t", "bar : object { y = foo; }")
	p2.ParseModule("b.t")

	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", ctx.Diags.All())
	}
	if sym := ctx.Symbols.FindNoRef("foo"); sym == nil {
		t.Fatalf("expected %q defined by the first file to be visible to the second", "foo")
	}

	mod := ctx.BuildModule()
	if len(mod.Symbols) == 0 {
		t.Fatalf("expected BuildModule to snapshot at least one symbol")
	}
}
