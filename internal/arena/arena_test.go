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

package arena

import "testing"

func TestAllocGrowsAcrossBlocks(t *testing.T) {
	a := New()
	first := a.Alloc(blockSize - 16)
	second := a.Alloc(64) // must spill into a new block
	if len(first) != blockSize-16 || len(second) != 64 {
		t.Fatalf("unexpected allocation sizes: %d, %d", len(first), len(second))
	}
	if a.Stats().NumBlocks < 2 {
		t.Fatalf("expected allocation to spill into a second block, got %d blocks", a.Stats().NumBlocks)
	}
}

func TestRollbackInvalidatesLaterHandles(t *testing.T) {
	a := New()
	before := a.Track("before")
	cp := a.Checkpoint()
	after := a.Track("after")

	if !before.Valid() || !after.Valid() {
		t.Fatalf("expected both handles valid before rollback")
	}

	a.Rollback(cp)

	if !before.Valid() {
		t.Fatalf("handle allocated before the checkpoint must survive rollback")
	}
	if after.Valid() {
		t.Fatalf("handle allocated after the checkpoint must be inaccessible after rollback")
	}
}

func TestRollbackTruncatesBytes(t *testing.T) {
	a := New()
	a.Alloc(100)
	cp := a.Checkpoint()
	a.Alloc(200)
	if got := a.Stats().BytesAllocated; got != 300 {
		t.Fatalf("expected 300 bytes allocated, got %d", got)
	}
	a.Rollback(cp)
	if got := a.Stats().BytesAllocated; got != 100 {
		t.Fatalf("expected rollback to restore 100 bytes allocated, got %d", got)
	}
}

func TestReset(t *testing.T) {
	a := New()
	a.Alloc(1000)
	a.Track("x")
	a.Reset()
	if got := a.Stats(); got.NumBlocks != 1 || got.BytesAllocated != 0 {
		t.Fatalf("expected a single empty block after Reset, got %+v", got)
	}
}
