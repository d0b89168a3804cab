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

package regex

import "testing"

func mustCompile(t *testing.T, pat string) *Pattern {
	t.Helper()
	p, err := Compile(pat)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pat, err)
	}
	return p
}

func TestSearchGroup(t *testing.T) {
	p := mustCompile(t, "(ab)+")
	res, ok := SearchGroups(p, "xxababcd", 0)
	if !ok {
		t.Fatalf("expected a match")
	}
	if res.Start != 2 || res.End-res.Start != 4 {
		t.Fatalf("got (%d,%d), want (2,4)", res.Start, res.End-res.Start)
	}
	lo, hi, bound := res.Group(1)
	if !bound || lo != 4 || hi != 6 {
		t.Fatalf("group 1 = (%d,%d,%v), want (4,6,true)", lo, hi, bound)
	}
}

func TestSearchAlternationLongestVsShortest(t *testing.T) {
	pMax := mustCompile(t, "a|ab")
	start, length := Search(pMax, "xab", 0)
	if start != 1 || length != 2 {
		t.Fatalf("<Max> (default): got (%d,%d), want (1,2)", start, length)
	}

	pMin := mustCompile(t, "<Min>a|ab")
	start, length = Search(pMin, "xab", 0)
	if start != 1 || length != 1 {
		t.Fatalf("<Min>: got (%d,%d), want (1,1)", start, length)
	}
}

func TestBackreference(t *testing.T) {
	p := mustCompile(t, "(a+)b%1")
	if n := Match(p, "aaabaaa"); n != 7 {
		t.Fatalf("match length = %d, want 7", n)
	}
	if n := Match(p, "aaabaa"); n != -1 {
		t.Fatalf("match length = %d, want -1 (no match)", n)
	}
}

func TestReplaceAll(t *testing.T) {
	p := mustCompile(t, "%d+")
	got := Replace(p, "#", "a12b345c", ReplaceAll, 0)
	if got != "a#b#c" {
		t.Fatalf("got %q, want %q", got, "a#b#c")
	}

	star := mustCompile(t, "x*")
	got = Replace(star, "-", "abc", ReplaceAll, 0)
	if got != "-a-b-c-" {
		t.Fatalf("got %q, want %q", got, "-a-b-c-")
	}
}

func TestCaseInsensitiveRoundTrip(t *testing.T) {
	p := mustCompile(t, "<NoCase>hello")
	n := Match(p, "HELLO")
	if n != 5 {
		t.Fatalf("match length = %d, want 5", n)
	}
	n = Match(p, "hello")
	if n != 5 {
		t.Fatalf("match length = %d, want 5", n)
	}
}

func TestBoundedInterval(t *testing.T) {
	p := mustCompile(t, "a{2,3}")
	if n := Match(p, "aaaa"); n != 3 {
		t.Fatalf("greedy {2,3} match length = %d, want 3", n)
	}
	p2 := mustCompile(t, "a{2}")
	if n := Match(p2, "a"); n != -1 {
		t.Fatalf("a{2} against a single 'a' should not match, got length %d", n)
	}
}

func TestCharacterClassNegation(t *testing.T) {
	p := mustCompile(t, "[^abc]+")
	if n := Match(p, "xyzabc"); n != 3 {
		t.Fatalf("match length = %d, want 3", n)
	}
}

func TestLookaheadAssertion(t *testing.T) {
	p := mustCompile(t, "foo(?=bar)")
	if n := Match(p, "foobar"); n != 3 {
		t.Fatalf("positive lookahead: match length = %d, want 3", n)
	}
	if n := Match(p, "foobaz"); n != -1 {
		t.Fatalf("positive lookahead should have failed against foobaz, got %d", n)
	}

	neg := mustCompile(t, "foo(?!bar)")
	if n := Match(neg, "foobaz"); n != 3 {
		t.Fatalf("negative lookahead: match length = %d, want 3", n)
	}
	if n := Match(neg, "foobar"); n != -1 {
		t.Fatalf("negative lookahead should have failed against foobar, got %d", n)
	}
}

func TestNamedEscapes(t *testing.T) {
	p := mustCompile(t, "<lparen>abc<rparen>")
	if n := Match(p, "(abc)"); n != 5 {
		t.Fatalf("match length = %d, want 5", n)
	}
}
