// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/codegen/golang"
	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/encoding/ircbor"
	"go.tagwire.dev/tagwire/syntax"
)

// With a schema path, compiles it and prints the generated Go source. With
// no arguments, reads a CBOR CodegenRequest from stdin and writes the
// CodegenResponse to stdout.
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		serveRequest()
		return
	}
	schemaPath := args[0]

	src, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("ReadFile(%q): %v", schemaPath, err)
	}

	var opts []compiler.CompileOption
	if !filepath.IsAbs(schemaPath) {
		opts = append(opts, compiler.WithSourcePath(strings.Join(splitPath(schemaPath), "/")))
	}

	var compiled compiler.CompileResult
	switch strings.ToLower(filepath.Ext(schemaPath)) {
	case ".json", ".jsonc":
		parsed, err := cborschema.Parse(src)
		if err != nil {
			log.Fatalf("Parse(%q): %v", schemaPath, err)
		}
		compiled = compiler.CompileCBOR(parsed, opts...)
	default:
		parsed, err := syntax.Parse(src)
		if err != nil {
			log.Fatalf("Parse(%q): %v", schemaPath, err)
		}
		compiled = compiler.Compile(parsed, opts...)
	}
	for _, warn := range compiled.Warnings {
		log.Printf("[WARN ] %v", warn)
	}
	if len(compiled.Errors) > 0 {
		for _, err := range compiled.Errors {
			log.Printf("[ERROR] %v", err)
		}
		os.Exit(1)
	}

	schema := compiled.Schema()
	fp, err := ircbor.Compute(schema)
	if err != nil {
		log.Fatal(err)
	}
	file, err := golang.Generate(schema, codec.Derive(schema), golang.Options{
		Fingerprint: fp.String(),
	})
	if err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stdout.Write(file.Content); err != nil {
		log.Fatal(err)
	}
}

func serveRequest() {
	requestBuf, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}
	var response *ircbor.CodegenResponse
	request, err := ircbor.UnmarshalRequest(requestBuf)
	if err != nil {
		response = &ircbor.CodegenResponse{Error: err.Error()}
	} else {
		response = golang.HandleRequest(request)
	}
	responseBuf, err := ircbor.MarshalResponse(response)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := os.Stdout.Write(responseBuf); err != nil {
		log.Fatal(err)
	}
	if response.Error != "" {
		os.Exit(1)
	}
}

func splitPath(path string) []string {
	var out []string
	for {
		dir, file := filepath.Split(path)
		if dir == "" {
			out = append(out, file)
			slices.Reverse(out)
			return out
		}
		out = append(out, file)
		path = dir[:len(dir)-1]
	}
}
