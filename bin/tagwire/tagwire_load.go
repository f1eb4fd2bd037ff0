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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

// detectDialect picks the schema dialect: an explicit choice wins, then the
// file extension.
func detectDialect(path, explicit string) (ir.Dialect, error) {
	if explicit != "" {
		return ir.ParseDialect(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return ir.DialectCBOR, nil
	}
	return ir.DialectProto, nil
}

// loadSchema reads and compiles the schema at path, printing every
// diagnostic. It returns nil if the schema could not be compiled.
func (g *globals) loadSchema(path, dialectFlag string) *ir.Schema {
	if dialectFlag == "" {
		dialectFlag = g.cfg.Compile.Dialect
	}
	dialect, err := detectDialect(path, dialectFlag)
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return nil
	}
	diags := newDiagnostics(g.stderr, g.renderer, path, src)

	var opts []compiler.CompileOption
	opts = append(opts, compiler.WithLogger(g.log))
	if !filepath.IsAbs(path) {
		opts = append(opts, compiler.WithSourcePath(strings.Join(splitPath(path), "/")))
	}

	var result compiler.CompileResult
	switch dialect {
	case ir.DialectCBOR:
		parsed, err := cborschema.Parse(src)
		if err != nil {
			diags.parseError(err)
			return nil
		}
		result = compiler.CompileCBOR(parsed, opts...)
	default:
		parsed, err := syntax.Parse(src)
		if err != nil {
			diags.parseError(err)
			return nil
		}
		result = compiler.Compile(parsed, opts...)
	}

	for _, warn := range result.Warnings {
		diags.compileWarning(warn)
	}
	for _, err := range result.Errors {
		diags.compileError(err)
	}
	if len(result.Errors) > 0 {
		g.log.Debug("schema has errors",
			slog.String("path", path),
			slog.Int("errors", len(result.Errors)),
		)
		return nil
	}
	return result.Schema()
}
