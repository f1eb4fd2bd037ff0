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
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/cborwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/dynamic"
	"go.tagwire.dev/tagwire/ir"
)

type cmdInspect struct {
	g *globals

	fieldPath string
	hexInput  bool
	diagnose  bool
	dialect   string
}

func (*cmdInspect) help() *commandHelp {
	return &commandHelp{
		usage:   "inspect SCHEMA MESSAGE [PAYLOAD]",
		summary: "Decode a payload with a schema, or resolve a field path",
		minArgs: 2,
		maxArgs: 3,
	}
}

func (cmd *cmdInspect) flags(flags *pflag.FlagSet) {
	flags.StringVar(&cmd.fieldPath, "path", "", "print the field ids of a dotted field path instead of decoding")
	flags.BoolVar(&cmd.hexInput, "hex", false, "payload is hex encoded")
	flags.BoolVar(&cmd.diagnose, "diag", false, "print CBOR payloads in diagnostic notation before decoding")
	flags.StringVar(&cmd.dialect, "dialect", "", "schema dialect: proto or cbor (default from the file extension)")
}

// findPlan accepts a message name with or without the schema package.
func findPlan(schema *ir.Schema, rules *codec.Rules, name string) *codec.Plan {
	name = strings.TrimPrefix(name, ".")
	if plan := rules.Plan(name); plan != nil {
		return plan
	}
	if schema.Package != "" {
		return rules.Plan(schema.Package + "." + name)
	}
	return nil
}

func formatIDPath(ids []uint32) string {
	parts := make([]string, len(ids))
	for ii, id := range ids {
		parts[ii] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ".")
}

func readPayload(path string, hexInput bool) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if hexInput {
		text := strings.Join(strings.Fields(string(data)), "")
		return hex.DecodeString(text)
	}
	return data, nil
}

func (cmd *cmdInspect) run(ctx context.Context, argv []string) int {
	g := cmd.g

	schema := g.loadSchema(argv[0], cmd.dialect)
	if schema == nil {
		return 1
	}
	rules := codec.Derive(schema)
	plan := findPlan(schema, rules, argv[1])
	if plan == nil {
		fmt.Fprintf(g.stderr, "Schema has no message named %q\n", argv[1])
		return 1
	}

	if cmd.fieldPath != "" {
		ids, err := plan.Path(cmd.fieldPath)
		if err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
		fmt.Fprintln(g.stdout, formatIDPath(ids))
		return 0
	}

	payloadPath := ""
	if len(argv) > 2 {
		payloadPath = argv[2]
	}
	payload, err := readPayload(payloadPath, cmd.hexInput)
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}

	decodeCtx := &tagwire.DecodeCtx{MaxDepth: g.cfg.Decode.MaxDepth}
	var msg *dynamic.Message
	switch schema.Dialect {
	case ir.DialectCBOR:
		if cmd.diagnose {
			diag, err := cborwire.Diagnose(payload)
			if err != nil {
				fmt.Fprintln(g.stderr, err)
				return 1
			}
			fmt.Fprintln(g.stdout, diag)
		}
		msg, err = dynamic.DecodeCBOR(decodeCtx, plan, payload)
	default:
		msg, err = dynamic.Decode(decodeCtx, plan, payload)
	}
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}
	g.log.Debug("decoded payload",
		slog.String("message", plan.Message.FullName),
		slog.Int("bytes", len(payload)),
	)

	if _, err := io.WriteString(g.stdout, msg.String()); err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}
	return 0
}
