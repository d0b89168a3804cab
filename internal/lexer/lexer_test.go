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

package lexer

import (
	"testing"

	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New("test.t", src, token.NewInterner(), diag.NewBag())
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	toks := scanAll(t, "foo class bar_1")
	want := []token.Kind{token.Ident, token.Keyword, token.Ident, token.EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v want %v", i, toks[i].Kind, k)
		}
	}
}

func TestNumbers(t *testing.T) {
	toks := scanAll(t, "123 3.14 2e10")
	if toks[0].Kind != token.Integer || toks[0].Text != "123" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Kind != token.Float || toks[1].Text != "3.14" {
		t.Fatalf("got %+v", toks[1])
	}
	if toks[2].Kind != token.Float || toks[2].Text != "2e10" {
		t.Fatalf("got %+v", toks[2])
	}
}

func TestOperatorsLongestMatchFirst(t *testing.T) {
	toks := scanAll(t, ">>>= >> >")
	want := []string{">>>=", ">>", ">"}
	for i, w := range want {
		if toks[i].Text != w {
			t.Fatalf("operator %d: got %q want %q", i, toks[i].Text, w)
		}
	}
}

func TestDStringWithoutEmbedding(t *testing.T) {
	toks := scanAll(t, `"hello world"`)
	if toks[0].Kind != token.DString {
		t.Fatalf("expected plain DString, got %v", toks[0].Kind)
	}
}

func TestDStringEmbeddingSplit(t *testing.T) {
	l := New("test.t", `"a <<b>> c"`, token.NewInterner(), diag.NewBag())
	start, err := l.Next()
	if err != nil || start.Kind != token.DStringStart {
		t.Fatalf("expected DStringStart, got %+v err=%v", start, err)
	}
	// The "<<" marker is not part of the start segment: the lexer leaves
	// it for the next Next call, which returns it as an operator token.
	if start.Text != `"a ` {
		t.Fatalf("unexpected start segment %q", start.Text)
	}
}
