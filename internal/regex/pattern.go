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

// Package regex implements the self-contained pattern compiler and NFA
// matcher of spec.md §4.5 (C5): a Thompson-construction regex engine with
// positional capture groups, backreferences, bounded-repeat counters,
// lookahead assertions and a longest/shortest match policy, matched by a
// recursive enumeration of every path through the NFA (see enumerate in
// match.go), so recursion depth grows with the length of the input.
//
// There is no teacher analogue for a regex engine in google-gapid; the NFA
// state representation here — a flat slice of tagged state records, each
// with up to two outgoing transitions and a type-specific payload, indexed
// by small integer ids rather than pointers — follows the same
// small-tagged-transition-table idiom gapil/constset uses for its constant
// sets. Exact matcher semantics (backtracking order, interval greediness,
// assertion lookaround, the case-folding rule) are grounded on
// _examples/original_source/trunk/tads/tads3/vmregex.cpp.
package regex

import "fmt"

// opcode tags one NFA state's behavior, the node-type enumeration of
// spec.md §3.9.
type opcode int

const (
	opEpsilon opcode = iota
	opLiteral
	opRange
	opRangeExcl
	opWildcard
	opWordChar
	opNonWordChar
	opWordBegin
	opWordEnd
	opWordBoundary
	opNonWordBoundary
	opTextBegin
	opTextEnd
	opClass
	opGroupEnter
	opGroupExit
	opGroupMatch
	opLoopBranch
	opZeroVar
	opAssertPos
	opAssertNeg
)

// class is one of the named character classes spec.md §4.5.1 exposes both
// as <Name> escapes and as the %d/%D/%s/%S shorthand.
type class int

const (
	classAlpha class = iota
	classDigit
	classUpper
	classLower
	classAlphaNum
	classSpace
	classPunct
	classNewline
	classNull
)

// charRange is one (lo, hi) inclusive endpoint pair of a RANGE/RANGE_EXCL
// node's packed range list.
type charRange struct {
	lo, hi rune
}

func (r charRange) contains(c rune) bool { return c >= r.lo && c <= r.hi }

// stateID indexes into Pattern.states; -1 means "no such transition".
type stateID int

const noState stateID = -1

// state is one NFA tuple: a node type, up to two outgoing transitions, and
// a type-specific payload (spec.md §3.9).
type state struct {
	op          opcode
	next1, next2 stateID

	ch      rune        // opLiteral
	ranges  []charRange // opRange / opRangeExcl
	cls     class       // opClass
	negated bool        // opClass: true for %D/%S/%W-style negated shorthand

	group int // opGroupEnter / opGroupExit / opGroupMatch (1-based)

	loopVar  int // opZeroVar / opLoopBranch
	min, max int // opLoopBranch; max < 0 means unbounded

	// assertInit/assertFinal are the entry/exit states of an assertion's
	// sub-machine. They are not reached through next1/next2: the assertion
	// node itself never consumes input, it only probes the sub-machine and
	// continues via next1 on success (ASSERT_POS) or failure (ASSERT_NEG).
	assertInit, assertFinal stateID
}

// Limits from spec.md §4.5.1.
const (
	maxNestedGroups = 50
	maxCaptureGroups = 10
)

// Pattern is a compiled regex: the tuple array plus the machine's
// init/final state ids, mode flags, and group/loop-variable counts
// (spec.md §3.9).
type Pattern struct {
	states       []state
	start, final stateID

	groupCount   int
	loopVarCount int

	caseSensitive bool
	longestMatch  bool // <Max> (default) vs <Min>
	firstBegin    bool // first_begin (default) vs first_end

	source string // original pattern text, for diagnostics
}

// Source returns the pattern text this Pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// GroupCount returns the number of captured groups (0..10), per spec.md
// §4.5.1's "at most 10 captured groups".
func (p *Pattern) GroupCount() int { return p.groupCount }

// CompileError reports a problem found while compiling a pattern string.
// Per spec.md §4.5.5, a malformed pattern still compiles on a best-effort
// basis (certain constructs degenerate to literal matches); CompileError is
// only returned for the hard limits spec.md §4.5.1 fixes (group nesting,
// capture count) and unterminated constructs the parser cannot recover
// from locally.
type CompileError struct {
	Pos     int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("regex: %s (at offset %d)", e.Message, e.Pos)
}
