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
	"os"

	"github.com/tads3/tadsc/internal/compctx"
	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/parser"
)

func init() {
	addVerb(&Verb{
		Name:      "dump-symbols",
		ShortHelp: "Parses source files and prints the resulting global symbol table",
		Run:       runDumpSymbols,
	})
}

func runDumpSymbols(args []string) error {
	fs := flag.NewFlagSet("dump-symbols", flag.ExitOnError)
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("at least one source file required")
	}

	ctx := compctx.New(parser.DefaultOptions())
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ctx.NewFileParser(path, string(data)).ParseModule(path)
	}
	for _, d := range ctx.Diags.All() {
		if d.Severity >= diag.Warning {
			fmt.Fprintln(os.Stderr, d.Error())
		}
	}

	mod := ctx.BuildModule()
	for _, sym := range mod.Symbols {
		fmt.Printf("%-24s %s", sym.Name, sym.Kind)
		switch {
		case sym.Object != nil:
			fmt.Printf(" obj#%d", sym.Object.ObjectID)
			if len(sym.Object.SuperClasses) > 0 {
				fmt.Printf(" : %v", sym.Object.SuperClasses)
			}
			if sym.Object.IsExtern {
				fmt.Print(" extern")
			}
			if sym.Object.Modified {
				fmt.Print(" modified")
			}
		case sym.Function != nil:
			fmt.Printf(" argc=%d", sym.Function.Argc)
			if sym.Function.Varargs {
				fmt.Print("+")
			}
			if sym.Function.IsExtern {
				fmt.Print(" extern")
			}
		case sym.Property != nil:
			fmt.Printf(" prop#%d", sym.Property.PropID)
		case sym.Enum != nil:
			fmt.Printf(" enum#%d", sym.Enum.EnumID)
		}
		fmt.Println()
	}
	if ctx.Diags.HasErrors() {
		return fmt.Errorf("%d error(s)", ctx.Diags.Count(diag.Error))
	}
	return nil
}
