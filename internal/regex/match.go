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

import "unicode/utf8"

// maxLoopVars bounds the number of independent {m,n} loop counters one
// pattern can use. spec.md §4.5.1 ties this to group nesting depth
// (maxNestedGroups); 64 comfortably covers any pattern that also respects
// the 50-nested-group limit.
const maxLoopVars = 64

type loopVarArr [maxLoopVars]int

// region is one capture group's (start, end) byte-offset register,
// exposed to callers via Group (spec.md §6: "Group registers exposed as
// (start_ofs, end_ofs) byte offsets").
type region struct {
	lo, hi int
	bound  bool
}

type groupRegs [maxCaptureGroups + 1]region // index 0 unused, 1..10 live

// matchResult is one complete path through the NFA from a fixed start
// position: where it ended, and the capture registers it produced.
type matchResult struct {
	end  int
	regs groupRegs
}

// MatchResult is the public result of a successful Match/Search call.
type MatchResult struct {
	Start, End int
	groups     groupRegs
}

// Group returns group g's (start, end) byte offsets into the matched
// string, and whether that group participated in the match. g must be in
// 1..10; group 0 is the overall match and is always available via Start/End.
func (m MatchResult) Group(g int) (start, end int, ok bool) {
	if g < 1 || g > maxCaptureGroups {
		return 0, 0, false
	}
	r := m.groups[g]
	return r.lo, r.hi, r.bound
}

// enumerate walks every path reachable from id at pos, returning one
// matchResult per distinct way to reach the pattern's terminal state.
//
// This is the one deliberate simplification from vmregex.cpp's matcher:
// rather than a short-circuiting explicit-stack backtracker that tries one
// branch of a two-out choice, compares only when both have been fully
// explored, and discards the loser's register/loop-var state, enumerate
// exhaustively collects every completion and lets Match/Search pick the
// best one by the pattern's longest/shortest policy afterward. Because that
// policy is pattern-wide, a per-quantifier "?" marker does not change which
// match length wins (see takeShortestMarker); what's also traded away is the
// teacher algorithm's bounded-stack-depth performance guarantee in
// exchange for an implementation that doesn't need a second, separate
// stack-frame type per NFA node kind.
func (p *Pattern) enumerate(s string, id stateID, pos int, regs groupRegs, loops loopVarArr) []matchResult {
	if id == noState {
		return nil
	}
	st := &p.states[id]
	switch st.op {
	case opEpsilon:
		if st.next1 == noState && st.next2 == noState {
			return []matchResult{{end: pos, regs: regs}}
		}
		var out []matchResult
		out = append(out, p.enumerate(s, st.next1, pos, regs, loops)...)
		out = append(out, p.enumerate(s, st.next2, pos, regs, loops)...)
		return out

	case opLiteral:
		r, w := utf8.DecodeRuneInString(s[pos:])
		if w == 0 || !p.runeEq(r, st.ch) {
			return nil
		}
		return p.enumerate(s, st.next1, pos+w, regs, loops)

	case opRange, opRangeExcl:
		r, w := utf8.DecodeRuneInString(s[pos:])
		if w == 0 {
			return nil
		}
		in := p.runeInRanges(r, st.ranges)
		if st.op == opRangeExcl {
			in = !in
		}
		if !in {
			return nil
		}
		return p.enumerate(s, st.next1, pos+w, regs, loops)

	case opWildcard:
		r, w := utf8.DecodeRuneInString(s[pos:])
		if w == 0 {
			return nil
		}
		_ = r
		return p.enumerate(s, st.next1, pos+w, regs, loops)

	case opWordChar, opNonWordChar:
		r, w := utf8.DecodeRuneInString(s[pos:])
		if w == 0 {
			return nil
		}
		if isWordRune(r) != (st.op == opWordChar) {
			return nil
		}
		return p.enumerate(s, st.next1, pos+w, regs, loops)

	case opClass:
		r, w := utf8.DecodeRuneInString(s[pos:])
		if w == 0 {
			return nil
		}
		if inClass(r, st.cls) == st.negated {
			return nil
		}
		return p.enumerate(s, st.next1, pos+w, regs, loops)

	case opWordBegin:
		if !(atWordBoundary(s, pos) && runeAfterIsWord(s, pos)) {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)
	case opWordEnd:
		if !(atWordBoundary(s, pos) && runeBeforeIsWord(s, pos)) {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)
	case opWordBoundary:
		if !atWordBoundary(s, pos) {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)
	case opNonWordBoundary:
		if atWordBoundary(s, pos) {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)
	case opTextBegin:
		if pos != 0 {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)
	case opTextEnd:
		if pos != len(s) {
			return nil
		}
		return p.enumerate(s, st.next1, pos, regs, loops)

	case opGroupEnter:
		regs2 := regs
		regs2[st.group] = region{lo: pos}
		return p.enumerate(s, st.next1, pos, regs2, loops)
	case opGroupExit:
		regs2 := regs
		regs2[st.group].hi = pos
		regs2[st.group].bound = true
		return p.enumerate(s, st.next1, pos, regs2, loops)
	case opGroupMatch:
		reg := regs[st.group]
		if !reg.bound {
			return nil
		}
		captured := s[reg.lo:reg.hi]
		if pos+len(captured) > len(s) {
			return nil
		}
		if !p.textEqual(captured, s[pos:pos+len(captured)]) {
			return nil
		}
		return p.enumerate(s, st.next1, pos+len(captured), regs, loops)

	case opZeroVar:
		loops2 := loops
		loops2[st.loopVar] = 0
		return p.enumerate(s, st.next1, pos, regs, loops2)

	case opLoopBranch:
		count := loops[st.loopVar]
		mustEnter := count < st.min
		canEnter := st.max < 0 || count < st.max
		var out []matchResult
		if mustEnter {
			loops2 := loops
			loops2[st.loopVar] = count + 1
			out = append(out, p.enumerate(s, st.next1, pos, regs, loops2)...)
			return out
		}
		if canEnter {
			loops2 := loops
			loops2[st.loopVar] = count + 1
			out = append(out, p.enumerate(s, st.next1, pos, regs, loops2)...)
		}
		out = append(out, p.enumerate(s, st.next2, pos, regs, loops)...)
		return out

	case opAssertPos, opAssertNeg:
		sub := p.enumerate(s, st.assertInit, pos, regs, loops)
		ok := len(sub) > 0
		if st.op == opAssertNeg {
			ok = !ok
		}
		if !ok {
			return nil
		}
		// Lookaround consumes no input; a positive assertion's captures do
		// propagate outward (vmregex.cpp behavior for "(?=...)"), so reuse
		// the best sub-match's registers rather than the caller's original.
		nextRegs := regs
		if st.op == opAssertPos {
			nextRegs = sub[0].regs
		}
		return p.enumerate(s, st.next1, pos, nextRegs, loops)

	default:
		return nil
	}
}

// runeEq compares one pattern literal against an input rune under the
// pattern's case-sensitivity mode (spec.md §4.5.3's "compare after
// normalizing to the case of the pattern character" rule).
func (p *Pattern) runeEq(input, patternCh rune) bool {
	if p.caseSensitive {
		return input == patternCh
	}
	return foldEqual(input, patternCh)
}

func (p *Pattern) runeInRanges(r rune, ranges []charRange) bool {
	for _, rg := range ranges {
		if rg.contains(r) {
			return true
		}
		if !p.caseSensitive {
			// "Ranges where both endpoints are upper- or both lower-case
			// fold the input to the range's case."
			if isUpperRune(rg.lo) && isUpperRune(rg.hi) && rg.contains(toUpperRune(r)) {
				return true
			}
			if isLowerRune(rg.lo) && isLowerRune(rg.hi) && rg.contains(toLowerRune(r)) {
				return true
			}
		}
	}
	return false
}

func (p *Pattern) textEqual(a, b string) bool {
	if p.caseSensitive {
		return a == b
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if !foldEqual(ra[i], rb[i]) {
			return false
		}
	}
	return true
}

// pick selects the best completion from results per the pattern's
// longest/shortest policy, breaking ties toward the first-enumerated path
// (the deterministic "first branch first" order spec.md §5 guarantees).
func pick(results []matchResult, longest bool) (matchResult, bool) {
	if len(results) == 0 {
		return matchResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if longest && r.end > best.end {
			best = r
		} else if !longest && r.end < best.end {
			best = r
		}
	}
	return best, true
}

// Match implements spec.md §6's match_pattern: the pattern must match
// starting exactly at offset 0 of s. Returns the matched byte length, or
// -1 on no match.
func Match(p *Pattern, s string) int {
	results := p.enumerate(s, p.start, 0, groupRegs{}, loopVarArr{})
	best, ok := pick(results, p.longestMatch)
	if !ok {
		return -1
	}
	return best.end
}

// Search implements spec.md §6's search_for_pattern: scans s from start
// for the first substring matching p, per the pattern's first_begin vs
// first_end policy (spec.md §4.5.4). Returns (-1, -1) on no match.
func Search(p *Pattern, s string, start int) (int, int) {
	if p.firstBegin {
		for i := start; i <= len(s); {
			results := p.enumerate(s, p.start, i, groupRegs{}, loopVarArr{})
			if best, ok := pick(results, p.longestMatch); ok {
				return i, best.end - i
			}
			_, w := utf8.DecodeRuneInString(s[i:])
			if w == 0 {
				break
			}
			i += w
		}
		return -1, -1
	}

	// first_end: scan all start positions, keep the match that ends
	// earliest; ties broken by longest_match.
	bestStart, bestEnd := -1, -1
	for i := start; i <= len(s); {
		results := p.enumerate(s, p.start, i, groupRegs{}, loopVarArr{})
		if best, ok := pick(results, p.longestMatch); ok {
			if bestEnd < 0 || best.end < bestEnd || (best.end == bestEnd && p.longestMatch && best.end-i > bestEnd-bestStart) {
				bestStart, bestEnd = i, best.end
			}
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		if w == 0 {
			break
		}
		i += w
	}
	if bestStart < 0 {
		return -1, -1
	}
	return bestStart, bestEnd - bestStart
}

// SearchGroups is Search plus the capture-group registers of the winning
// match, for callers (internal/regex's own replace driver, and eventually
// a built-in regex verb) that need group text rather than just the span.
func SearchGroups(p *Pattern, s string, start int) (MatchResult, bool) {
	if p.firstBegin {
		for i := start; i <= len(s); {
			results := p.enumerate(s, p.start, i, groupRegs{}, loopVarArr{})
			if best, ok := pick(results, p.longestMatch); ok {
				return MatchResult{Start: i, End: best.end, groups: best.regs}, true
			}
			_, w := utf8.DecodeRuneInString(s[i:])
			if w == 0 {
				break
			}
			i += w
		}
		return MatchResult{}, false
	}
	var bestResult MatchResult
	found := false
	for i := start; i <= len(s); {
		results := p.enumerate(s, p.start, i, groupRegs{}, loopVarArr{})
		if best, ok := pick(results, p.longestMatch); ok {
			if !found || best.end < bestResult.End || (best.end == bestResult.End && p.longestMatch && best.end-i > bestResult.End-bestResult.Start) {
				bestResult = MatchResult{Start: i, End: best.end, groups: best.regs}
				found = true
			}
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		if w == 0 {
			break
		}
		i += w
	}
	return bestResult, found
}
