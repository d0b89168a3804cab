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
)

func main() {
	flag.Usage = usage
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	name := args[0]
	v := lookupVerb(name)
	if v == nil {
		fmt.Fprintf(os.Stderr, "tadsc: unknown verb %q\n\n", name)
		usage()
		os.Exit(2)
	}
	if err := v.Run(args[1:]); err != nil {
		glog.Errorf("%s: %v", name, err)
		fmt.Fprintf(os.Stderr, "tadsc %s: %v\n", name, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tadsc <verb> [flags] args...\n\nverbs:\n")
	for _, v := range verbs {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", v.Name, v.ShortHelp)
	}
	fmt.Fprintf(os.Stderr, "\nglobal flags:\n")
	flag.PrintDefaults()
}
