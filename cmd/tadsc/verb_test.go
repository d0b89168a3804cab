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

package main

import "testing"

func TestBuiltinVerbsRegistered(t *testing.T) {
	for _, name := range []string{"compile", "link", "dump-symbols", "regex-test"} {
		if lookupVerb(name) == nil {
			t.Fatalf("expected verb %q to be registered by init()", name)
		}
	}
}

func TestLookupVerbUnknown(t *testing.T) {
	if v := lookupVerb("no-such-verb"); v != nil {
		t.Fatalf("expected nil for unknown verb, got %+v", v)
	}
}

func TestAddVerbDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected addVerb to panic on a duplicate name")
		}
	}()
	addVerb(&Verb{Name: "compile", ShortHelp: "dup", Run: func([]string) error { return nil }})
}
