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

package token

// Interner owns every distinct source-text string seen during a compile.
// It is process-wide per spec.md §5 ("the source-text intern table in the
// tokenizer lives for the whole compile") and outlives the parse arena:
// tokens reference interned text by Go string (itself backed by an
// immutable byte array), so no arena rollback can invalidate it.
type Interner struct {
	strings map[string]string
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{strings: make(map[string]string)}
}

// Intern returns the canonical copy of s, inserting s as its own canonical
// copy the first time it's seen.
func (in *Interner) Intern(s string) string {
	if v, ok := in.strings[s]; ok {
		return v
	}
	in.strings[s] = s
	return s
}

// Len returns the number of distinct interned strings, for diagnostics.
func (in *Interner) Len() int { return len(in.strings) }
