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

// Package arena implements a forward-only bump allocator with
// checkpoint/rollback, the parse-memory arena of spec.md §3.1/§4.1.
//
// The teacher's own core/memory/arena is a cgo wrapper around a native C
// allocator (arena_create/arena_alloc/arena_free, backed by
// core/memory/arena/cc) — there is no pure-Go flavor of it anywhere in the
// retrieved pack. This port keeps the teacher's API shape (Alloc, Stats)
// but implements it without cgo or unsafe: blocks are plain []byte, and
// "ownership" of higher-level Go values (AST nodes, symbols) is tracked by
// a parallel handle registry so that Rollback can make pre-checkpoint
// pointers provably inaccessible without raw pointer arithmetic.
package arena

const blockSize = 64 * 1024 // ~64 KiB per spec.md §3.1

// Arena is a single-compile-pass bump allocator. It is not safe for
// concurrent use; spec.md §5 requires one compiler instance (and therefore
// one Arena) per thread.
type Arena struct {
	blocks  [][]byte // each block is len==cap==blockSize until the active one
	active  int      // index of the block currently being filled
	free    int      // offset of the free pointer within blocks[active]
	handles []interface{}
}

// New returns a fresh, empty Arena with one block pre-allocated.
func New() *Arena {
	a := &Arena{}
	a.pushBlock()
	return a
}

func (a *Arena) pushBlock() {
	a.blocks = append(a.blocks, make([]byte, blockSize))
	a.active = len(a.blocks) - 1
	a.free = 0
}

// Alloc returns n bytes of zeroed, arena-owned storage. Allocations larger
// than a block get their own dedicated block.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	if n > blockSize {
		// Oversized allocation: give it a private block so block-aligned
		// Stats/rollback bookkeeping stays simple.
		a.blocks = append(a.blocks, make([]byte, n))
		a.active = len(a.blocks) - 1
		a.free = n
		return a.blocks[a.active]
	}
	if a.free+n > len(a.blocks[a.active]) {
		a.pushBlock()
	}
	b := a.blocks[a.active][a.free : a.free+n : a.free+n]
	a.free += n
	return b
}

// Handle is an opaque reference to an arena-tracked Go value, used by
// higher layers (symbol table, AST builder) that need Rollback to
// invalidate previously-handed-out node references.
type Handle struct {
	index int
	gen   *Arena
}

// Track registers obj as arena-owned and returns a Handle to it. The value
// itself is an ordinary Go heap value (Go has no manual free); Track exists
// so Valid can answer "was this allocated before some earlier Checkpoint".
func (a *Arena) Track(obj interface{}) Handle {
	a.handles = append(a.handles, obj)
	return Handle{index: len(a.handles) - 1, gen: a}
}

// Valid reports whether h's underlying object is still reachable, i.e. no
// Rollback has discarded the checkpoint interval it was allocated in.
func (h Handle) Valid() bool {
	return h.gen != nil && h.index < len(h.gen.handles)
}

// Value returns the tracked object, or nil if the handle is no longer
// valid per Rollback semantics.
func (h Handle) Value() interface{} {
	if !h.Valid() {
		return nil
	}
	return h.gen.handles[h.index]
}

// State is an opaque checkpoint produced by Checkpoint and consumed by
// Rollback.
type State struct {
	blockCount int
	free       int
	handles    int
}

// Checkpoint captures the current allocation position for a later
// Rollback, supporting the speculative-parse use case of spec.md §4.1
// (property-expression wrappers that may need to be undone).
func (a *Arena) Checkpoint() State {
	return State{blockCount: len(a.blocks), free: a.free, handles: len(a.handles)}
}

// Rollback discards every block appended and every byte allocated in the
// active block since s was captured, and forgets every handle tracked
// since then. Any Handle obtained after s was captured becomes invalid.
func (a *Arena) Rollback(s State) {
	if s.blockCount == 0 {
		s.blockCount = 1
	}
	a.blocks = a.blocks[:s.blockCount]
	a.active = s.blockCount - 1
	a.free = s.free
	a.handles = a.handles[:s.handles]
}

// Reset drops every block but one fresh one, and forgets all handles. Used
// between independent compiles that reuse the same Arena value.
func (a *Arena) Reset() {
	a.blocks = a.blocks[:0]
	a.handles = a.handles[:0]
	a.pushBlock()
}

// Stats reports arena usage, mirroring the teacher's Arena.Stats shape.
type Stats struct {
	NumBlocks      int
	BytesAllocated int
}

func (a *Arena) Stats() Stats {
	total := 0
	for i, b := range a.blocks {
		if i == a.active {
			total += a.free
		} else {
			total += len(b)
		}
	}
	return Stats{NumBlocks: len(a.blocks), BytesAllocated: total}
}
