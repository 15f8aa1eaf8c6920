/*
 * Copyright (c) 2024 The GoPlus Authors (goplus.org). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goplus/cdecl"
	"github.com/goplus/cdecl/internal/dump"
	"github.com/goplus/cdecl/parse"
	"github.com/qiniu/x/errors"
)

func main() {
	var verbose, help bool
	var output string
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: cdecl [-v] [-o out.json] [-h|--help] FILE...")
		fmt.Fprintln(os.Stderr, "Reads C declaration fragments (use - for stdin) and dumps")
		fmt.Fprintln(os.Stderr, "the resulting declaration table as JSON.")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}
	flag.BoolVar(&verbose, "v", false, "Enable verbose output")
	flag.StringVar(&output, "o", "", "Write the declaration table to this file instead of stdout")
	flag.BoolVar(&help, "h", false, "Display help information")
	flag.BoolVar(&help, "help", false, "Display help information")
	flag.Parse()

	if help || flag.NArg() == 0 {
		flag.Usage()
		return
	}
	if verbose {
		parse.SetDebug(parse.DbgFlagAll)
	}

	compiler := cdecl.NewCompiler()
	var errs errors.List
	for _, file := range flag.Args() {
		src, err := readInput(file)
		if err != nil {
			errs.Add(err)
			continue
		}
		if err := compiler.Declare(string(src)); err != nil {
			errs.Add(fmt.Errorf("%s: %w", file, err))
		}
	}
	check(errs.ToError())

	table := dump.Table(compiler.Names(), compiler.Lookup)
	data, err := json.MarshalIndent(table, "", "  ")
	check(err)
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(output, data, 0644)
	}
	check(err)
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "cdecl:", err)
		os.Exit(1)
	}
}
