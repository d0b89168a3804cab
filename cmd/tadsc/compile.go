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

	"github.com/golang/glog"

	"github.com/tads3/tadsc/internal/compctx"
	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/objfile"
	"github.com/tads3/tadsc/internal/parser"
)

func init() {
	addVerb(&Verb{
		Name:      "compile",
		ShortHelp: "Parses one or more source files into a single module, optionally writing an object file",
		Run:       runCompile,
	})
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("out", "", "object file to write; omitted to just report diagnostics")
	pedantic := fs.Bool("pedantic", false, "also report pedantic-level diagnostics")
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
		glog.V(1).Infof("parsing %s", path)
		ctx.NewFileParser(path, string(data)).ParseModule(path)
	}

	minSeverity := diag.Warning
	if *pedantic {
		minSeverity = diag.Pedantic
	}
	for _, d := range ctx.Diags.All() {
		if d.Severity >= minSeverity {
			fmt.Fprintln(os.Stderr, d.Error())
		}
	}
	if ctx.Diags.HasErrors() {
		return fmt.Errorf("%d error(s)", ctx.Diags.Count(diag.Error))
	}

	mod := ctx.BuildModule()
	fmt.Printf("compile: %d file(s), %d symbol(s)\n", len(files), len(mod.Symbols))

	if *out == "" {
		return nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := objfile.NewWriter(f)
	if err := objfile.WriteModule(w, mod); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	glog.V(1).Infof("wrote %s", *out)
	return nil
}
