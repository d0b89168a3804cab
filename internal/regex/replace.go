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

import (
	"strings"
	"unicode/utf8"
)

// ReplaceFlags controls Replace, spec.md §4.5.4's replace(...) flags word.
type ReplaceFlags int

// ReplaceAll repeats the search/replace past the first match, resuming
// after each one (advancing one character past a zero-length match to
// avoid looping forever), per spec.md §4.5.4.
const ReplaceAll ReplaceFlags = 1 << 0

// Replace implements spec.md §6's replace(pat, repl, str, flags, start):
// substitutes each match of p in s (or just the first, without
// ReplaceAll) with replacement, expanding %1..%9 (group slices), %*
// (whole match) and %% (literal '%') in replacement.
//
// vmregex.cpp computes the output length in a first pass before
// allocating and filling the result in a second; that two-pass shape
// exists to avoid reallocation in a manually-managed C buffer. Go's
// strings.Builder already grows amortized, so this builds the result in
// one pass — same observable behavior, without a length pass that would
// just be working around a constraint Go doesn't have.
func Replace(p *Pattern, replacement, s string, flags ReplaceFlags, start int) string {
	var out strings.Builder
	out.WriteString(s[:start])

	pos := start
	for pos <= len(s) {
		res, ok := SearchGroups(p, s, pos)
		if !ok {
			break
		}
		out.WriteString(s[pos:res.Start])
		expandTemplate(&out, replacement, s, res)

		next := res.End
		if res.End == res.Start {
			if res.End >= len(s) {
				pos = res.End + 1
				break
			}
			_, w := utf8.DecodeRuneInString(s[res.End:])
			out.WriteString(s[res.End : res.End+w])
			next = res.End + w
		}
		pos = next

		if flags&ReplaceAll == 0 {
			break
		}
	}
	if pos < len(s) {
		out.WriteString(s[pos:])
	}
	return out.String()
}

func expandTemplate(out *strings.Builder, tmpl, s string, res MatchResult) {
	rs := []rune(tmpl)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '%' || i+1 >= len(rs) {
			out.WriteRune(rs[i])
			continue
		}
		i++
		switch {
		case rs[i] == '*':
			out.WriteString(s[res.Start:res.End])
		case rs[i] == '%':
			out.WriteByte('%')
		case rs[i] >= '1' && rs[i] <= '9':
			if lo, hi, ok := res.Group(int(rs[i] - '0')); ok {
				out.WriteString(s[lo:hi])
			}
		default:
			out.WriteRune('%')
			out.WriteRune(rs[i])
		}
	}
}
