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

import (
	"flag"
	"fmt"

	"github.com/tads3/tadsc/internal/regex"
)

func init() {
	addVerb(&Verb{
		Name:      "regex-test",
		ShortHelp: "Compiles a pattern and runs search/replace against a string",
		Run:       runRegexTest,
	})
}

func runRegexTest(args []string) error {
	fs := flag.NewFlagSet("regex-test", flag.ExitOnError)
	replacement := fs.String("replace", "", "if set, replace matches with this template instead of just searching")
	all := fs.Bool("all", false, "with -replace, replace every match instead of just the first")
	start := fs.Int("start", 0, "byte offset to start searching from")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: regex-test [flags] <pattern> <string>")
	}
	pattern, input := rest[0], rest[1]

	p, err := regex.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling %q: %w", pattern, err)
	}

	if *replacement != "" {
		var flags regex.ReplaceFlags
		if *all {
			flags |= regex.ReplaceAll
		}
		fmt.Println(regex.Replace(p, *replacement, input, flags, *start))
		return nil
	}

	res, ok := regex.SearchGroups(p, input, *start)
	if !ok {
		fmt.Println("no match")
		return nil
	}
	fmt.Printf("match: [%d,%d) %q\n", res.Start, res.End, input[res.Start:res.End])
	for g := 1; g <= 9; g++ {
		lo, hi, bound := res.Group(g)
		if !bound {
			continue
		}
		fmt.Printf("  group %d: [%d,%d) %q\n", g, lo, hi, input[lo:hi])
	}
	return nil
}
