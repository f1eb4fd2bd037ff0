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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"go.tagwire.dev/tagwire/syntax"
)

type SyntaxError struct {
	code    uint32
	message string
	pattern *regexp.Regexp
}

func (err *SyntaxError) Code() uint32 {
	return err.code
}

func (err *SyntaxError) Message() string {
	return err.message
}

func (err *SyntaxError) MessagePattern() *regexp.Regexp {
	return err.pattern
}

func LoadSyntaxErrors(testdata fs.FS) (map[string]*SyntaxError, error) {
	type syntaxError struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, "diagnostics/syntax_errors.json")
	if err != nil {
		return nil, err
	}

	var rawErrors map[string]syntaxError
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawErrors); err != nil {
		return nil, err
	}

	out := make(map[string]*SyntaxError, len(rawErrors))
	codes := make(map[uint32]struct{}, len(rawErrors))
	for key, raw := range rawErrors {
		if key[0] == '_' {
			if raw.Code != 0 {
				if _, conflict := codes[raw.Code]; conflict {
					return nil, fmt.Errorf("duplicate syntax error code %d", raw.Code)
				}
				codes[raw.Code] = struct{}{}
			}
			continue
		}

		if raw.Code == 0 {
			return nil, fmt.Errorf("syntax error %q has no error code", key)
		}
		if _, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf("duplicate syntax error code %d", raw.Code)
		}
		codes[raw.Code] = struct{}{}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &SyntaxError{
			code:    raw.Code,
			message: raw.Message,
			pattern: pattern,
		}
	}

	return out, nil
}

// DumpOutline renders the declarations of a parsed schema one per line,
// indented by nesting depth. Whitespace and free-standing comments are
// omitted.
func DumpOutline(schema *syntax.Schema) string {
	var sb strings.Builder
	for _, decl := range schema.Decls() {
		dumpDecl(&sb, decl, 0)
	}
	return sb.String()
}

func dumpDecl(sb *strings.Builder, node syntax.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node := node.(type) {
	case *syntax.SyntaxDecl:
		fmt.Fprintf(sb, "%ssyntax %s\n", indent, syntax.Unparse(node.Value()))
	case *syntax.Package:
		fmt.Fprintf(sb, "%spackage %s\n", indent, node.Name())
	case *syntax.Option:
		fmt.Fprintf(sb, "%soption %s = %s\n", indent, node.Name(), syntax.Unparse(node.Value()))
	case *syntax.Enum:
		fmt.Fprintf(sb, "%senum %s\n", indent, node.Name().Get())
		for _, item := range node.Items() {
			fmt.Fprintf(sb, "%s  %s = %s", indent, item.Name().Get(), item.Value().Raw())
			if comment := item.Comment(); comment != nil {
				fmt.Fprintf(sb, " %s", comment.Text())
			}
			sb.WriteString("\n")
		}
	case *syntax.Message:
		fmt.Fprintf(sb, "%smessage %s\n", indent, node.Name().Get())
		for _, option := range node.Options() {
			dumpDecl(sb, option, depth+1)
		}
		for _, field := range node.Fields() {
			dumpDecl(sb, field, depth+1)
		}
		for _, enum := range node.Enums() {
			dumpDecl(sb, enum, depth+1)
		}
		for _, msg := range node.Messages() {
			dumpDecl(sb, msg, depth+1)
		}
	case *syntax.Field:
		fmt.Fprintf(
			sb, "%sfield %s %s %s = %s",
			indent,
			node.Label().Get(),
			node.TypeName(),
			node.Name().Get(),
			node.ID().Raw(),
		)
		for _, option := range node.Options() {
			fmt.Fprintf(sb, " [%s=%s]", option.Name().Get(), syntax.Unparse(option.Value()))
		}
		if comment := node.Comment(); comment != nil {
			fmt.Fprintf(sb, " %s", comment.Text())
		}
		sb.WriteString("\n")
	default:
		fmt.Fprintf(sb, "%s%T\n", indent, node)
	}
}
