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

// Package main is tadsc, the command-line driver: compile sources to an
// object file, link object files into a linked image, dump a module's
// symbol table, or exercise the regex engine directly.
//
// Its verb dispatch is grounded on cmd/apic/compile.go's shape (a named
// verb, each owning its own flag.FlagSet) but reimplemented standalone
// rather than importing core/app: core/app's Verb/Action plumbing pulls in
// its analytics, crash-reporting and status subpackages, none of which
// carry meaning for this toolchain, and all of it still imports under
// github.com/google/gapid/..., a path this module does not own. See
// DESIGN.md for the full rationale.
package main

// Verb is one tadsc subcommand.
type Verb struct {
	Name      string
	ShortHelp string
	Run       func(args []string) error
}

var verbs []*Verb

// addVerb registers v, panicking on a duplicate name the same way
// core/app.Verb.Add does for its own registry.
func addVerb(v *Verb) *Verb {
	for _, existing := range verbs {
		if existing.Name == v.Name {
			panic("tadsc: duplicate verb name " + v.Name)
		}
	}
	verbs = append(verbs, v)
	return v
}

func lookupVerb(name string) *Verb {
	for _, v := range verbs {
		if v.Name == name {
			return v
		}
	}
	return nil
}
