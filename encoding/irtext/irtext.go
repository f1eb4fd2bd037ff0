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

// Package irtext renders a compiled schema as stable, human-readable text.
// It is the format of `tagwire inspect` and of the compiler's golden tests.
package irtext

import (
	"fmt"
	"io"
	"strings"

	"go.tagwire.dev/tagwire/ir"
)

func Encode(schema *ir.Schema) string {
	var buf strings.Builder
	EncodeTo(schema, &buf)
	return buf.String()
}

func EncodeTo(schema *ir.Schema, w io.Writer) error {
	e := encoder{w: w}
	e.visitSchema(schema)
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) visitSchema(schema *ir.Schema) {
	e.linef("dialect %s", schema.Dialect)
	if schema.Syntax != "" {
		e.linef("syntax %s", quote(schema.Syntax))
	}
	if schema.Package != "" {
		e.linef("package %s", schema.Package)
	}
	e.visitOptions(schema.Options)
	for _, msg := range schema.Messages {
		e.visitMessage(msg)
	}
	for _, enum := range schema.Enums {
		e.visitEnum(enum)
	}
}

func (e *encoder) visitOptions(options []*ir.Option) {
	for _, opt := range options {
		e.linef("option %s = %s", opt.Name, quote(opt.Value))
	}
}

func (e *encoder) visitMessage(msg *ir.Message) {
	e.linef("message %s {", msg.FullName)
	e.indent += 1
	e.visitOptions(msg.Options)
	for _, field := range msg.Fields {
		e.line(fieldLine(field))
	}
	for _, child := range msg.Messages {
		e.visitMessage(child)
	}
	for _, enum := range msg.Enums {
		e.visitEnum(enum)
	}
	e.indent -= 1
	e.line("}")
}

func fieldLine(field *ir.Field) string {
	var buf strings.Builder
	typeName := field.Kind.String()
	if field.TypeName != "" {
		typeName = field.Kind.String() + " " + field.TypeName
	}
	fmt.Fprintf(&buf, "%d %s %s %s", field.ID, field.Label, typeName, field.Name)

	var attrs []string
	if field.Packed {
		attrs = append(attrs, "packed")
	}
	if field.View {
		attrs = append(attrs, "view")
	}
	if def := field.Default; def != nil {
		value := def.Raw
		if field.Kind == ir.KindEnum {
			value = def.Enum
		}
		attrs = append(attrs, "default = "+value)
	}
	if len(attrs) > 0 {
		fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
	}
	if field.Comment != "" {
		fmt.Fprintf(&buf, " // %s", quote(field.Comment))
	}
	return buf.String()
}

func (e *encoder) visitEnum(enum *ir.Enum) {
	e.linef("enum %s {", enum.FullName)
	e.indent += 1
	for _, value := range enum.Values {
		e.linef("%s = %d", value.Name, value.Number)
	}
	e.indent -= 1
	e.line("}")
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
