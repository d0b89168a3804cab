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
	"unicode"
)

// fragment is an (init, final) pair, the universal shape every NFA
// constructor in spec.md §4.5.2 returns.
type fragment struct {
	init, final stateID
}

// compiler holds the mutable state of one pattern compile: the rune
// cursor, the growing state array, and the mode flags a <...> directive can
// flip mid-pattern (spec.md §5: "the regex parser's tuple_arr and
// range_buf, reset between compilations").
type compiler struct {
	src []rune
	pos int

	states []state

	groupCount   int
	groupDepth   int
	loopVarCount int

	caseSensitive bool
	longestMatch  bool
	firstBegin    bool
}

// Compile parses pat per spec.md §4.5.1 and builds its NFA per §4.5.2.
func Compile(pat string) (*Pattern, error) {
	c := &compiler{
		src:           []rune(pat),
		caseSensitive: true,
		longestMatch:  true,
		firstBegin:    true,
	}
	frag, err := c.parseAlternation()
	if err != nil {
		return nil, err
	}
	if c.pos < len(c.src) {
		return nil, &CompileError{Pos: c.pos, Message: "unexpected trailing character " + string(c.src[c.pos])}
	}
	p := &Pattern{
		states:        c.states,
		start:         frag.init,
		final:         frag.final,
		groupCount:    c.groupCount,
		loopVarCount:  c.loopVarCount,
		caseSensitive: c.caseSensitive,
		longestMatch:  c.longestMatch,
		firstBegin:    c.firstBegin,
		source:        pat,
	}
	breakEpsilonCycles(p)
	elideEpsilonChains(p)
	return p, nil
}

func (c *compiler) eof() bool   { return c.pos >= len(c.src) }
func (c *compiler) peek() rune {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}
func (c *compiler) peekAt(n int) rune {
	if c.pos+n >= len(c.src) {
		return 0
	}
	return c.src[c.pos+n]
}
func (c *compiler) advance() rune { r := c.peek(); c.pos++; return r }

func (c *compiler) newState(op opcode) stateID {
	c.states = append(c.states, state{op: op, next1: noState, next2: noState})
	return stateID(len(c.states) - 1)
}

func (c *compiler) st(id stateID) *state { return &c.states[id] }

// link sets from's first unused outgoing transition to to.
func (c *compiler) link(from, to stateID) {
	s := c.st(from)
	if s.next1 == noState {
		s.next1 = to
	} else {
		s.next2 = to
	}
}

// epsilonFragment allocates a single epsilon state usable as a fragment's
// final sink (a place for the next concatenated fragment to link onto).
func (c *compiler) epsilonFragment() fragment {
	id := c.newState(opEpsilon)
	return fragment{init: id, final: id}
}

// atom wires a single consuming or zero-width node as init, with a fresh
// epsilon state as final — "a single transition from init to final with
// the matching tuple type" (spec.md §3.9).
func (c *compiler) atom(op opcode, fill func(*state)) fragment {
	init := c.newState(op)
	if fill != nil {
		fill(c.st(init))
	}
	final := c.newState(opEpsilon)
	c.link(init, final)
	return fragment{init: init, final: final}
}

// concat wires epsilon init->a.init, a.final->b.init, b.final->final
// (spec.md §4.5.2).
func (c *compiler) concat(a, b fragment) fragment {
	init := c.newState(opEpsilon)
	final := c.newState(opEpsilon)
	c.link(init, a.init)
	c.link(a.final, b.init)
	c.link(b.final, final)
	return fragment{init: init, final: final}
}

// alternate wires epsilon init->{a.init, b.init}, {a.final, b.final}->final,
// first-branch-first (spec.md §4.5.2/§5's alternation ordering guarantee).
func (c *compiler) alternate(a, b fragment) fragment {
	init := c.newState(opEpsilon)
	final := c.newState(opEpsilon)
	c.link(init, a.init)
	c.link(init, b.init)
	c.link(a.final, final)
	c.link(b.final, final)
	return fragment{init: init, final: final}
}

// --- grammar: alternation > concatenation > closure > atom ---

func (c *compiler) parseAlternation() (fragment, error) {
	left, err := c.parseConcat()
	if err != nil {
		return fragment{}, err
	}
	for !c.eof() && c.peek() == '|' {
		c.advance()
		right, err := c.parseConcat()
		if err != nil {
			return fragment{}, err
		}
		left = c.alternate(left, right)
	}
	return left, nil
}

func (c *compiler) atTermEnd() bool {
	if c.eof() {
		return true
	}
	switch c.peek() {
	case '|', ')':
		return true
	}
	return false
}

func (c *compiler) parseConcat() (fragment, error) {
	var result fragment
	have := false
	for !c.atTermEnd() {
		f, modeOnly, err := c.parseClosure()
		if err != nil {
			return fragment{}, err
		}
		if modeOnly {
			// A bare mode directive consumed no input and contributes no
			// NFA shape; skip it rather than concatenating an empty node.
			continue
		}
		if !have {
			result, have = f, true
		} else {
			result = c.concat(result, f)
		}
	}
	if !have {
		// Empty alternative (e.g. "a|" or "()"): matches the empty string.
		return c.epsilonFragment(), nil
	}
	return result, nil
}

// parseClosure parses one atom and any trailing quantifier. modeOnly
// reports that the "atom" was actually a <Case>/<Min>/... directive with
// no matchable shape of its own.
func (c *compiler) parseClosure() (fragment, bool, error) {
	f, modeOnly, err := c.parseAtom()
	if err != nil || modeOnly {
		return f, modeOnly, err
	}
	for !c.eof() {
		switch c.peek() {
		case '*':
			c.advance()
			f = c.star(f, c.takeShortestMarker())
		case '+':
			c.advance()
			f = c.plus(f, c.takeShortestMarker())
		case '?':
			c.advance()
			f = c.optional(f, c.takeShortestMarker())
		case '{':
			save := c.pos
			m, n, ok := c.tryParseInterval()
			if !ok {
				c.pos = save
				return f, false, nil
			}
			f = c.bounded(f, m, n, c.takeShortestMarker())
		default:
			return f, false, nil
		}
	}
	return f, false, nil
}

// takeShortestMarker consumes a trailing "?" after a quantifier and reports
// whether it was there. The marker only reorders that quantifier's edges;
// the match is still chosen by the pattern-wide <Min>/<Max> policy, so the
// marker decides only between completions of equal length.
func (c *compiler) takeShortestMarker() bool {
	if !c.eof() && c.peek() == '?' {
		c.advance()
		return true
	}
	return !c.longestMatch
}

func (c *compiler) tryParseInterval() (min, max int, ok bool) {
	if c.peek() != '{' {
		return 0, 0, false
	}
	c.advance()
	minStr := c.takeDigits()
	max = -1
	hasComma := false
	if c.peek() == ',' {
		hasComma = true
		c.advance()
		maxStr := c.takeDigits()
		if maxStr != "" {
			max = atoiSafe(maxStr)
		}
	}
	if c.peek() != '}' {
		return 0, 0, false
	}
	c.advance()
	if minStr == "" {
		min = 0
	} else {
		min = atoiSafe(minStr)
	}
	if !hasComma {
		max = min // {n} == {n,n}
	}
	return min, max, true
}

func (c *compiler) takeDigits() string {
	start := c.pos
	for !c.eof() && unicode.IsDigit(c.peek()) {
		c.advance()
	}
	return string(c.src[start:c.pos])
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// star/plus/optional/bounded implement spec.md §4.5.2's closure
// constructions, including the shortest-vs-longest edge-ordering rule:
// when shortest is in effect the bypass/skip edge is emitted first so the
// matcher explores the short path first.

func (c *compiler) star(a fragment, shortest bool) fragment {
	init := c.newState(opEpsilon)
	final := c.newState(opEpsilon)
	if shortest {
		c.link(init, final)
		c.link(init, a.init)
	} else {
		c.link(init, a.init)
		c.link(init, final)
	}
	c.link(a.final, init)
	return fragment{init: init, final: final}
}

func (c *compiler) plus(a fragment, shortest bool) fragment {
	branch := c.newState(opEpsilon)
	final := c.newState(opEpsilon)
	c.link(a.final, branch)
	if shortest {
		c.link(branch, final)
		c.link(branch, a.init)
	} else {
		c.link(branch, a.init)
		c.link(branch, final)
	}
	return fragment{init: a.init, final: final}
}

func (c *compiler) optional(a fragment, shortest bool) fragment {
	init := c.newState(opEpsilon)
	final := c.newState(opEpsilon)
	if shortest {
		c.link(init, final)
		c.link(init, a.init)
	} else {
		c.link(init, a.init)
		c.link(init, final)
	}
	c.link(a.final, final)
	return fragment{init: init, final: final}
}

// bounded implements {m,n}: a ZERO_VAR node resets the loop counter, then a
// LOOP_BRANCH consults it on every visit — unconditionally looping below m,
// unconditionally stopping at/above a finite n, and forking in between.
// next1 is always the "enter the body" edge and next2 always "stop" for a
// LOOP_BRANCH node: the matcher needs fixed roles to gate on the counter
// (see enumerate's opLoopBranch case), unlike the plain two-out epsilon
// nodes star/plus/optional build, where both edges are explored
// unconditionally and the shortest/longest emission order is therefore
// only documentary. The matcher increments the counter each time it takes
// the "enter the body" branch.
func (c *compiler) bounded(a fragment, min, max int, shortest bool) fragment {
	_ = shortest // preference is immaterial once both branches are always explored; see enumerate.
	v := c.loopVarCount
	c.loopVarCount++

	zero := c.newState(opZeroVar)
	c.st(zero).loopVar = v

	branch := c.newState(opLoopBranch)
	bs := c.st(branch)
	bs.loopVar, bs.min, bs.max = v, min, max

	final := c.newState(opEpsilon)
	c.link(branch, a.init)
	c.link(branch, final)
	c.link(a.final, branch)
	c.link(zero, branch)
	return fragment{init: zero, final: final}
}

// --- atoms ---

func (c *compiler) parseAtom() (fragment, bool, error) {
	switch c.peek() {
	case '(':
		return c.parseGroup()
	case '[':
		f, err := c.parseClass()
		return f, false, err
	case '.':
		c.advance()
		return c.atom(opWildcard, nil), false, nil
	case '^':
		c.advance()
		return c.atom(opTextBegin, nil), false, nil
	case '$':
		c.advance()
		return c.atom(opTextEnd, nil), false, nil
	case '%':
		return c.parsePercentEscape()
	case '<':
		return c.parseNamedEscape()
	default:
		ch := c.advance()
		return c.atom(opLiteral, func(s *state) { s.ch = ch }), false, nil
	}
}

func (c *compiler) parseGroup() (fragment, bool, error) {
	c.advance() // '('
	nonCapturing := false
	assertKind := opcode(0)
	isAssert := false
	if c.peek() == '?' {
		switch c.peekAt(1) {
		case ':':
			c.advance()
			c.advance()
			nonCapturing = true
		case '=':
			c.advance()
			c.advance()
			isAssert, assertKind = true, opAssertPos
		case '!':
			c.advance()
			c.advance()
			isAssert, assertKind = true, opAssertNeg
		}
	}

	c.groupDepth++
	if c.groupDepth > maxNestedGroups {
		return fragment{}, false, &CompileError{Pos: c.pos, Message: "group nesting too deep"}
	}
	defer func() { c.groupDepth-- }()

	inner, err := c.parseAlternation()
	if err != nil {
		return fragment{}, false, err
	}
	if c.peek() != ')' {
		return fragment{}, false, &CompileError{Pos: c.pos, Message: "unterminated group"}
	}
	c.advance()

	if isAssert {
		node := c.newState(assertKind)
		s := c.st(node)
		s.assertInit, s.assertFinal = inner.init, inner.final
		final := c.newState(opEpsilon)
		c.link(node, final)
		return fragment{init: node, final: final}, false, nil
	}
	if nonCapturing {
		return inner, false, nil
	}

	c.groupCount++
	if c.groupCount > maxCaptureGroups {
		return fragment{}, false, &CompileError{Pos: c.pos, Message: "too many capture groups"}
	}
	id := c.groupCount

	enter := c.newState(opGroupEnter)
	c.st(enter).group = id
	exit := c.newState(opGroupExit)
	c.st(exit).group = id

	c.link(enter, inner.init)
	c.link(inner.final, exit)
	return fragment{init: enter, final: exit}, false, nil
}

// parseClass parses "[...]" per spec.md §4.5.1's positional ']'/'-'
// escaping rule: a ']' immediately after the optional '^' is literal, and
// a '-' immediately after that is literal too.
func (c *compiler) parseClass() (fragment, error) {
	c.advance() // '['
	negate := false
	if c.peek() == '^' {
		negate = true
		c.advance()
	}
	var ranges []charRange
	first := true
	for {
		if c.eof() {
			return fragment{}, &CompileError{Pos: c.pos, Message: "unterminated character class"}
		}
		if c.peek() == ']' && !first {
			c.advance()
			break
		}
		lo := c.classLiteral()
		first = false
		if c.peek() == '-' && c.peekAt(1) != ']' && c.peekAt(1) != 0 {
			c.advance()
			hi := c.classLiteral()
			ranges = append(ranges, charRange{lo, hi})
		} else {
			ranges = append(ranges, charRange{lo, lo})
		}
	}
	op := opRange
	if negate {
		op = opRangeExcl
	}
	return c.atom(op, func(s *state) { s.ranges = ranges }), nil
}

func (c *compiler) classLiteral() rune {
	if c.peek() == '%' && !c.eof() {
		c.advance()
		return c.advance()
	}
	return c.advance()
}

// parsePercentEscape handles "%<punct>" literal escapes, "%1".."%9"
// backreferences, and the "%w %W %b %B %< %>" word operators plus the
// "%d %D %s %S" class shorthands spec.md's scenario list exercises
// directly (e.g. "%d+").
func (c *compiler) parsePercentEscape() (fragment, bool, error) {
	c.advance() // '%'
	if c.eof() {
		return fragment{}, false, &CompileError{Pos: c.pos, Message: "dangling %% escape"}
	}
	r := c.advance()
	switch r {
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		id := int(r - '0')
		return c.atom(opGroupMatch, func(s *state) { s.group = id }), false, nil
	case 'w':
		return c.atom(opWordChar, nil), false, nil
	case 'W':
		return c.atom(opNonWordChar, nil), false, nil
	case 'b':
		return c.atom(opWordBoundary, nil), false, nil
	case 'B':
		return c.atom(opNonWordBoundary, nil), false, nil
	case '<':
		return c.atom(opWordBegin, nil), false, nil
	case '>':
		return c.atom(opWordEnd, nil), false, nil
	case 'd':
		return c.atom(opClass, func(s *state) { s.cls = classDigit }), false, nil
	case 'D':
		return c.atom(opClass, func(s *state) { s.cls, s.negated = classDigit, true }), false, nil
	case 's':
		return c.atom(opClass, func(s *state) { s.cls = classSpace }), false, nil
	case 'S':
		return c.atom(opClass, func(s *state) { s.cls, s.negated = classSpace, true }), false, nil
	default:
		// "escape via % of punctuation": the escaped character matches
		// itself literally.
		return c.atom(opLiteral, func(s *state) { s.ch = r }), false, nil
	}
}

var namedChars = map[string]rune{
	"lparen": '(', "rparen": ')',
	"lsquare": '[', "rsquare": ']',
	"lbrace": '{', "rbrace": '}',
	"langle": '<', "rangle": '>',
	"return": '\r', "tab": '\t', "null": 0,
}

var namedClasses = map[string]class{
	"alpha": classAlpha, "digit": classDigit, "upper": classUpper,
	"lower": classLower, "alphanum": classAlphaNum, "space": classSpace,
	"punct": classPunct, "newline": classNewline,
}

// parseNamedEscape parses "<name[|name...]>", which is either a mode
// directive (<Case> <NoCase> <Min> <Max> <FE> <FirstEnd> <FB>
// <FirstBegin>), a named literal character, or one or more combinable
// named character classes (spec.md §4.5.1). Names are case-insensitive.
func (c *compiler) parseNamedEscape() (fragment, bool, error) {
	save := c.pos
	c.advance() // '<'
	start := c.pos
	for !c.eof() && c.peek() != '>' {
		c.advance()
	}
	if c.eof() {
		c.pos = save
		// Not a recognized construct: treat '<' as a literal, matching
		// spec.md §4.5.5's "malformed pattern ... degenerates to a literal
		// match" robustness rule.
		c.advance()
		return c.atom(opLiteral, func(s *state) { s.ch = '<' }), false, nil
	}
	body := string(c.src[start:c.pos])
	c.advance() // '>'

	switch strings.ToLower(body) {
	case "case":
		c.caseSensitive = true
		return fragment{}, true, nil
	case "nocase":
		c.caseSensitive = false
		return fragment{}, true, nil
	case "min":
		c.longestMatch = false
		return fragment{}, true, nil
	case "max":
		c.longestMatch = true
		return fragment{}, true, nil
	case "fe", "firstend":
		c.firstBegin = false
		return fragment{}, true, nil
	case "fb", "firstbegin":
		c.firstBegin = true
		return fragment{}, true, nil
	}

	var ranges []charRange
	var classes []class
	for _, part := range strings.Split(body, "|") {
		lower := strings.ToLower(part)
		if ch, ok := namedChars[lower]; ok {
			ranges = append(ranges, charRange{ch, ch})
			continue
		}
		if cl, ok := namedClasses[lower]; ok {
			classes = append(classes, cl)
			continue
		}
		return fragment{}, false, &CompileError{Pos: start, Message: "unknown named escape " + part}
	}
	if len(classes) == 0 {
		return c.atom(opRange, func(s *state) { s.ranges = ranges }), false, nil
	}
	if len(classes) == 1 && len(ranges) == 0 {
		cl := classes[0]
		return c.atom(opClass, func(s *state) { s.cls = cl }), false, nil
	}
	// Multiple combined classes: fold into an alternation of single-class
	// atoms rather than inventing a multi-class node type.
	var frag fragment
	have := false
	for _, cl := range classes {
		cl := cl
		f := c.atom(opClass, func(s *state) { s.cls = cl })
		if !have {
			frag, have = f, true
		} else {
			frag = c.alternate(frag, f)
		}
	}
	for _, rg := range ranges {
		rg := rg
		f := c.atom(opRange, func(s *state) { s.ranges = []charRange{rg} })
		frag = c.alternate(frag, f)
	}
	return frag, false, nil
}

// breakEpsilonCycles detects a purely-epsilon path from a state back to
// itself and invalidates the later of the offending branches, matching
// spec.md §4.5.2's post-construction pass. This only arises from the star
// closure's back edge when its body is itself nullable to an epsilon-only
// path, which the constructors above never produce directly but a
// pathological "(a*)*"-shaped pattern can.
func breakEpsilonCycles(p *Pattern) {
	const white, gray, black = 0, 1, 2
	color := make([]int, len(p.states))
	var visit func(id stateID)
	visit = func(id stateID) {
		if id == noState || color[id] == black {
			return
		}
		if color[id] == gray {
			return // cycle detected; caller already mid-walk on this path
		}
		color[id] = gray
		s := &p.states[id]
		if s.op == opEpsilon {
			if s.next1 != noState && onEpsilonCycle(p, color, s.next1, id) {
				s.next1 = noState
			} else {
				visit(s.next1)
			}
			if s.next2 != noState && onEpsilonCycle(p, color, s.next2, id) {
				s.next2 = noState
			} else {
				visit(s.next2)
			}
		}
		color[id] = black
	}
	visit(p.start)
}

func onEpsilonCycle(p *Pattern, color []int, from, target stateID) bool {
	seen := map[stateID]bool{}
	var walk func(id stateID) bool
	walk = func(id stateID) bool {
		if id == target {
			return true
		}
		if id == noState || seen[id] || p.states[id].op != opEpsilon {
			return false
		}
		seen[id] = true
		s := &p.states[id]
		return walk(s.next1) || walk(s.next2)
	}
	return walk(from)
}

// elideEpsilonChains rewrites any transition landing on a single-out
// epsilon state to the target of that epsilon, shortening chains the
// constructors above introduce at every concatenation boundary
// (spec.md §4.5.2).
func elideEpsilonChains(p *Pattern) {
	resolve := func(id stateID) stateID {
		seen := map[stateID]bool{}
		for id != noState && p.states[id].op == opEpsilon && p.states[id].next2 == noState && !seen[id] {
			seen[id] = true
			if p.states[id].next1 == noState {
				break
			}
			id = p.states[id].next1
		}
		return id
	}
	for i := range p.states {
		s := &p.states[i]
		s.next1 = resolve(s.next1)
		s.next2 = resolve(s.next2)
		if s.op == opAssertPos || s.op == opAssertNeg {
			s.assertInit = resolve(s.assertInit)
		}
	}
	p.start = resolve(p.start)
}
