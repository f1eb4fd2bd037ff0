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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"go.tagwire.dev/tagwire/encoding/ircbor"
	"go.tagwire.dev/tagwire/encoding/irtext"
	"go.tagwire.dev/tagwire/ir"
)

type cmdCompile struct {
	g *globals

	outPath string
	format  string
	dialect string
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile SCHEMA",
		summary: "Check a schema and write its compiled form",
		minArgs: 1,
		maxArgs: 1,
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "output file (default stdout)")
	flags.StringVarP(&cmd.format, "format", "f", "", "output format: text, cbor, json or fingerprint")
	flags.StringVar(&cmd.dialect, "dialect", "", "schema dialect: proto or cbor (default from the file extension)")
}

// outputFormat picks the format: the flag, then the output file extension,
// then the configured default.
func (cmd *cmdCompile) outputFormat() (string, error) {
	format := cmd.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(cmd.outPath)) {
		case ".txt":
			format = "text"
		case ".cbor":
			format = "cbor"
		case ".json":
			format = "json"
		default:
			format = cmd.g.cfg.Compile.Format
		}
	}
	switch format {
	case "text", "cbor", "json", "fingerprint":
		return format, nil
	}
	return "", fmt.Errorf("Unsupported output format %q (choose text, cbor, json or fingerprint)", format)
}

func encodeSchema(schema *ir.Schema, format string) ([]byte, error) {
	switch format {
	case "text":
		return []byte(irtext.Encode(schema)), nil
	case "cbor":
		return ircbor.Marshal(schema)
	case "json":
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "fingerprint":
		fp, err := ircbor.Compute(schema)
		if err != nil {
			return nil, err
		}
		return []byte(fp.String() + "\n"), nil
	}
	panic("unreachable")
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	g := cmd.g
	srcPath := argv[0]

	format, err := cmd.outputFormat()
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}

	schema := g.loadSchema(srcPath, cmd.dialect)
	if schema == nil {
		return 1
	}

	output, err := encodeSchema(schema, format)
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}
	if err := writeOutput(cmd.outPath, output); err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}
	g.log.Debug("compiled schema",
		slog.String("path", srcPath),
		slog.String("format", format),
		slog.Int("bytes", len(output)),
	)
	return 0
}
