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

// Package lexer tokenizes TADS 3 source text into internal/token.Tokens.
// The cursor/offset/rune-array shape is grounded on
// core/text/parse/reader.go's Reader (offset = start of current token,
// cursor = next unparsed rune); this port drops the CST-node production
// that Reader is wired for (out of scope per spec.md §1) and returns a
// flat Token stream instead.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/token"
)

// Lexer tokenizes one source file's worth of interned text.
type Lexer struct {
	filename string
	runes    []rune
	offset   int
	cursor   int
	line     int
	interner *token.Interner
	diags    *diag.Bag
}

// New returns a Lexer over data, which is interned through in so that
// emitted token text outlives the parse arena.
func New(filename, data string, in *token.Interner, diags *diag.Bag) *Lexer {
	return &Lexer{
		filename: filename,
		runes:    []rune(data),
		line:     1,
		interner: in,
		diags:    diags,
	}
}

func (l *Lexer) peekN(n int) rune {
	i := l.cursor + n
	if i < 0 || i >= len(l.runes) {
		return 0
	}
	return l.runes[i]
}

func (l *Lexer) peek() rune { return l.peekN(0) }

func (l *Lexer) advance() rune {
	r := l.peek()
	if l.cursor < len(l.runes) {
		l.cursor++
		if r == '\n' {
			l.line++
		}
	}
	return r
}

func (l *Lexer) isEOF() bool { return l.cursor >= len(l.runes) }

func (l *Lexer) loc() diag.Location { return diag.Location{File: l.filename, Line: l.line} }

func (l *Lexer) emit(kind token.Kind) token.Token {
	text := string(l.runes[l.offset:l.cursor])
	tok := token.Token{Kind: kind, Text: l.interner.Intern(text), At: l.loc()}
	l.offset = l.cursor
	return tok
}

// skipTrivia consumes whitespace and // and /* */ comments, the way
// core/text/parse.NewSkip("//", "/*", "*/") configures the teacher's
// parser for the api language.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case unicode.IsSpace(l.peek()):
			l.advance()
		case l.peek() == '/' && l.peekN(1) == '/':
			for !l.isEOF() && l.peek() != '\n' {
				l.advance()
			}
		case l.peek() == '/' && l.peekN(1) == '*':
			l.advance()
			l.advance()
			for !l.isEOF() && !(l.peek() == '*' && l.peekN(1) == '/') {
				l.advance()
			}
			if !l.isEOF() {
				l.advance()
				l.advance()
			}
		default:
			l.offset = l.cursor
			return
		}
	}
	l.offset = l.cursor
}

// Next scans and returns the next token, skipping leading trivia.
func (l *Lexer) Next() (token.Token, error) {
	l.skipTrivia()
	l.offset = l.cursor
	if l.isEOF() {
		return token.Token{Kind: token.EOF, At: l.loc()}, nil
	}

	r := l.peek()
	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.scanIdentOrKeyword(), nil
	case unicode.IsDigit(r):
		return l.scanNumber(), nil
	case r == '"':
		return l.scanDString()
	case r == '\'':
		return l.scanSString()
	default:
		return l.scanOperatorOrPunct()
	}
}

func (l *Lexer) scanIdentOrKeyword() token.Token {
	for isIdentRune(l.peek()) {
		l.advance()
	}
	text := string(l.runes[l.offset:l.cursor])
	kind := token.Ident
	if token.Keywords[text] {
		kind = token.Keyword
	}
	return l.emit(kind)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanNumber() token.Token {
	isFloat := false
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.cursor
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if unicode.IsDigit(l.peek()) {
			isFloat = true
			for unicode.IsDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.cursor = save
		}
	}
	if isFloat {
		return l.emit(token.Float)
	}
	return l.emit(token.Integer)
}

// scanSString scans a single-quoted string literal. Escapes are limited to
// a backslash-escaped quote and backslash itself; unescaping happens in the
// parser (internal/parser/literal.go) so the lexer stays a pure
// byte-range scanner.
func (l *Lexer) scanSString() (token.Token, error) {
	l.advance() // opening '
	for {
		if l.isEOF() {
			return token.Token{}, l.errf("unterminated single-quoted string")
		}
		switch l.peek() {
		case '\\':
			l.advance()
			l.advance()
		case '\'':
			l.advance()
			return l.emit(token.SString), nil
		default:
			l.advance()
		}
	}
}

// scanDString scans a double-quoted string, stopping early (with DString
// kind) if no "<<" embedding is present, or at the first "<<" if one is,
// leaving the caller (internal/parser) to drive DStringStart/Mid/End via
// ContinueDString once it has parsed the embedded expression. This mirrors
// spec.md §3.2's dstring-start/mid/end token kinds.
func (l *Lexer) scanDString() (token.Token, error) {
	l.advance() // opening "
	for {
		if l.isEOF() {
			return token.Token{}, l.errf("unterminated double-quoted string")
		}
		switch {
		case l.peek() == '\\':
			l.advance()
			l.advance()
		case l.peek() == '"':
			l.advance()
			return l.emit(token.DString), nil
		case l.peek() == '<' && l.peekN(1) == '<':
			return l.emit(token.DStringStart), nil
		default:
			l.advance()
		}
	}
}

// ContinueDString resumes scanning a double-quoted string after an embedded
// "<<expr>>" has been consumed by the parser. It returns DStringMid if
// another "<<" follows, or DStringEnd at the closing quote.
func (l *Lexer) ContinueDString() (token.Token, error) {
	l.offset = l.cursor
	for {
		if l.isEOF() {
			return token.Token{}, l.errf("unterminated double-quoted string")
		}
		switch {
		case l.peek() == '\\':
			l.advance()
			l.advance()
		case l.peek() == '"':
			l.advance()
			return l.emit(token.DStringEnd), nil
		case l.peek() == '<' && l.peekN(1) == '<':
			return l.emit(token.DStringMid), nil
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanOperatorOrPunct() (token.Token, error) {
	for _, op := range token.Operators {
		if l.lookingAt(op) {
			r, _ := utf8.DecodeLastRuneInString(op)
			// Word-like operators ("is", "in", "not") are handled as
			// keywords, not here; this loop is for symbolic operators only,
			// so the letter guard from gapil/parser/operator.go's
			// scanOperator is not needed.
			_ = r
			l.cursor += len([]rune(op))
			return l.emit(token.Operator), nil
		}
	}
	switch l.peek() {
	case '(', ')', '{', '}', '[', ']', ';', '#':
		l.advance()
		return l.emit(token.Punct), nil
	default:
		bad := l.peek()
		l.advance()
		l.emit(token.Invalid)
		return token.Token{}, l.errf("unexpected character %q", bad)
	}
}

func (l *Lexer) lookingAt(s string) bool {
	rs := []rune(s)
	for i, r := range rs {
		if l.peekN(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) errf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if l.diags != nil {
		l.diags.Reportf(diag.Error, l.loc(), "", "%s", msg)
	}
	return errors.Wrapf(fmt.Errorf("%s", msg), "%s", l.loc())
}

// Filename returns the source filename this lexer was built over.
func (l *Lexer) Filename() string { return l.filename }
