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

	"github.com/tads3/tadsc/internal/diag"
	"github.com/tads3/tadsc/internal/objfile"
)

func init() {
	addVerb(&Verb{
		Name:      "link",
		ShortHelp: "Merges two or more object files into a linked image",
		Run:       runLink,
	})
}

func runLink(args []string) error {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	fs.Parse(args)

	files := fs.Args()
	if len(files) < 2 {
		return fmt.Errorf("link requires at least two object files")
	}

	modules := make([]*objfile.Module, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		mod, _, err := objfile.ReadModule(objfile.NewReader(f))
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		glog.V(1).Infof("read %s: %d symbol(s)", path, len(mod.Symbols))
		modules = append(modules, mod)
	}

	diags := diag.NewBag()
	img, err := objfile.Link(modules, diags)
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if err != nil {
		return err
	}

	fmt.Printf("link: %d module(s) -> %d object(s), %d propert(ies), %d function(s), %d enum(s)\n",
		len(modules), len(img.Objects), len(img.Properties), len(img.Functions), len(img.Enums))
	return nil
}
