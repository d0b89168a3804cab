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

// Package diag holds the shared diagnostic machinery used by the lexer,
// parser, linker and regex compiler: severities, source locations, and an
// accumulating bag that the toolchain drains at the end of a compile.
package diag

import (
	"fmt"

	"github.com/golang/glog"
)

// Severity is the four-level diagnostic severity from spec.md §7.
type Severity int

const (
	Pedantic Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Pedantic:
		return "pedantic"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Location is a source position: the file the token came from, and its
// 1-based line number. Columns are not tracked by the tokenizer (spec.md
// §3.2 only specifies file + line).
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	At       Location
	Message  string
	Token    string // current token text, for context, per spec.md §7
}

func (d Diagnostic) Error() string {
	if d.Token != "" {
		return fmt.Sprintf("%s: %s: %s (at %q)", d.At, d.Severity, d.Message, d.Token)
	}
	return fmt.Sprintf("%s: %s: %s", d.At, d.Severity, d.Message)
}

// Bag accumulates diagnostics for one compile. The default maximum is
// unbounded, matching spec.md §7 ("by default unbounded"). Limit is recorded
// but not enforced: Add keeps every diagnostic whatever its value.
type Bag struct {
	Limit int // 0 == unbounded
	items []Diagnostic
}

// NewBag returns an empty, unbounded diagnostic bag.
func NewBag() *Bag { return &Bag{} }

// Add reports a diagnostic. In addition to being recorded, Error and Fatal
// are logged with glog.Errorf, Warning with glog.Warningf, and Pedantic with
// glog.Infof only when glog.V(1) is enabled, the way
// google-kati's func.go threads glog.V(1)/glog.Warningf calls alongside its
// own error returns.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
	switch d.Severity {
	case Fatal, Error:
		glog.Errorf("%s", d.Error())
	case Warning:
		glog.Warningf("%s", d.Error())
	default:
		if glog.V(1) {
			glog.Infof("%s", d.Error())
		}
	}
}

// Reportf is a convenience wrapper around Add.
func (b *Bag) Reportf(sev Severity, at Location, tok, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: sev, At: at, Token: tok, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error or Fatal diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// HasFatal reports whether any Fatal diagnostic was recorded.
func (b *Bag) HasFatal() bool {
	for _, d := range b.items {
		if d.Severity == Fatal {
			return true
		}
	}
	return false
}

// Count returns the number of accumulated diagnostics, optionally filtered
// to a minimum severity.
func (b *Bag) Count(min Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity >= min {
			n++
		}
	}
	return n
}

// All returns every accumulated diagnostic, in report order.
func (b *Bag) All() []Diagnostic { return b.items }

// ExitCode implements spec.md §6's exit-code rule: 0 clean, 1 any
// error-severity diagnostic, 2 fatal internal error.
func (b *Bag) ExitCode() int {
	switch {
	case b.HasFatal():
		return 2
	case b.HasErrors():
		return 1
	default:
		return 0
	}
}
