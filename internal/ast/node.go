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

// Package ast holds the tagged AST node set built by internal/parser, the
// contract consumed by the (out-of-scope, per spec.md §1) code generator.
//
// Node dispatch follows the teacher's idiom in gapil/resolver/expression.go
// (entity()'s switch in := in.(type) { case *ast.UnaryOp: ... }) rather than
// per-node interface methods: fold_constants from spec.md §3.5 is
// implemented as package-level functions in internal/parser/fold.go that
// type-switch over Node, instead of a FoldConstants method on every struct
// (there is no adjust_for_debug pass). This keeps
// new node types a one-line addition to a switch rather than a new method
// on every existing type, the same tradeoff the teacher made for its own
// AST-to-semantic conversion.
package ast

import "github.com/tads3/tadsc/internal/diag"

// Node is implemented by every AST node. All nodes are arena-allocated by
// the parser (spec.md §3.1).
type Node interface {
	Loc() diag.Location
}

// Base is embedded by every concrete node to provide Loc() and save
// repeating the field everywhere.
type Base struct {
	At diag.Location
}

func (b Base) Loc() diag.Location { return b.At }
