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

package golang

import (
	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/ir"
)

// Suffix of the Encoder and Decoder methods for each scalar kind.
func accessor(kind ir.Kind) string {
	switch kind {
	case ir.KindInt32:
		return "Int32"
	case ir.KindInt64:
		return "Int64"
	case ir.KindUint32:
		return "Uint32"
	case ir.KindUint64:
		return "Uint64"
	case ir.KindSint32:
		return "Sint32"
	case ir.KindSint64:
		return "Sint64"
	case ir.KindFixed32:
		return "Fixed32"
	case ir.KindFixed64:
		return "Fixed64"
	case ir.KindSfixed32:
		return "Sfixed32"
	case ir.KindSfixed64:
		return "Sfixed64"
	case ir.KindFloat:
		return "Float"
	case ir.KindDouble:
		return "Double"
	case ir.KindBool:
		return "Bool"
	case ir.KindEnum:
		return "Enum"
	case ir.KindString:
		return "String"
	case ir.KindBytes:
		return "Bytes"
	}
	panic("unreachable")
}

func wireConst(wt tagwire.WireType) string {
	switch wt {
	case tagwire.WireVarint:
		return "tagwire.WireVarint"
	case tagwire.WireFixed32:
		return "tagwire.WireFixed32"
	case tagwire.WireFixed64:
		return "tagwire.WireFixed64"
	case tagwire.WireBytes:
		return "tagwire.WireBytes"
	}
	panic("unreachable")
}

func (g *generator) emitEncode(typ string, names map[uint32]string, plan *codec.Plan) {
	g.imports[runtimeImport] = true

	g.linef("func (m *%s) EncodeTagwire(e *tagwire.Encoder) error {", typ)
	g.line("if m == nil {")
	g.line("return nil")
	g.line("}")
	for _, rule := range plan.Rules {
		field := rule.Field
		name := names[field.ID]
		id := field.ID
		switch {
		case rule.Packed:
			g.linef("e.Packed%s(%d, m.%s)", accessor(field.Kind), id, name)
		case rule.Container == codec.ContainerSequence:
			g.linef("for _, v := range m.%s {", name)
			g.emitEncodeValue(rule, "v")
			g.line("}")
		case field.Kind == ir.KindBytes, field.Kind == ir.KindMessage:
			g.linef("if m.%s != nil {", name)
			g.emitEncodeValue(rule, "m."+name)
			g.line("}")
		default:
			g.linef("if m.%s != nil {", name)
			g.emitEncodeValue(rule, "*m."+name)
			g.line("}")
		}
	}
	g.line("return nil")
	g.line("}")
	g.line("")

	g.linef("func (m *%s) Marshal() ([]byte, error) {", typ)
	g.line("return tagwire.Encode(nil, m)")
	g.line("}")
	g.line("")
}

func (g *generator) emitEncodeValue(rule *codec.Rule, expr string) {
	id := rule.Field.ID
	switch rule.Field.Kind {
	case ir.KindMessage:
		g.linef("if err := e.Message(%d, %s); err != nil {", id, expr)
		g.line("return err")
		g.line("}")
	case ir.KindEnum:
		g.linef("e.Enum(%d, uint32(%s))", id, expr)
	default:
		g.linef("e.%s(%d, %s)", accessor(rule.Field.Kind), id, expr)
	}
}

// The decode table of each message is filled in init: the decoders of
// recursive messages refer to each other's tables.
func (g *generator) emitDecode(typ string, names map[uint32]string, plan *codec.Plan) {
	table := "_" + typ + "_fields"
	fnType := "func(*" + typ + ", *tagwire.Decoder, tagwire.WireType) error"

	g.linef("var %s map[uint32]%s", table, fnType)
	g.line("")
	g.line("func init() {")
	g.linef("%s = map[uint32]%s{", table, fnType)
	for _, rule := range plan.Rules {
		g.linef("%d: func(m *%s, d *tagwire.Decoder, wt tagwire.WireType) error {", rule.Field.ID, typ)
		g.emitDecodeField(rule, names[rule.Field.ID])
		g.line("},")
	}
	g.line("}")
	g.line("}")
	g.line("")

	g.linef("func (m *%s) DecodeTagwire(d *tagwire.Decoder) error {", typ)
	g.line("for !d.Done() {")
	g.line("id, wt, err := d.Next()")
	g.line("if err != nil {")
	g.line("return err")
	g.line("}")
	g.linef("decode, ok := %s[id]", table)
	g.line("if !ok {")
	g.line("if err := d.Skip(wt); err != nil {")
	g.line("return err")
	g.line("}")
	g.line("continue")
	g.line("}")
	g.line("if err := decode(m, d, wt); err != nil {")
	g.line("return err")
	g.line("}")
	g.line("}")
	g.line("return nil")
	g.line("}")
	g.line("")

	g.line("// Unmarshal" + typ + " decodes buf into a new value. Nothing is returned")
	g.line("// unless the whole buffer decodes.")
	g.linef("func Unmarshal%s(buf []byte) (*%s, error) {", typ, typ)
	g.linef("return tagwire.DecodeAs[%s](nil, buf)", typ)
	g.line("}")
	g.line("")
}

func (g *generator) emitDecodeField(rule *codec.Rule, name string) {
	field := rule.Field
	wire := wireConst(rule.Wire)

	if rule.Container == codec.ContainerSequence && field.Kind != ir.KindMessage {
		g.linef("return d.Repeated(wt, %s, func(d *tagwire.Decoder) error {", wire)
		g.emitDecodeValue(rule)
		g.linef("m.%s = append(m.%s, %s)", name, name, g.decodedValue(rule))
		g.line("return nil")
		g.line("})")
		return
	}

	g.linef("if wt != %s {", wire)
	g.linef("return d.WireTypeError(wt, %s)", wire)
	g.line("}")
	g.emitDecodeValue(rule)
	switch {
	case rule.Container == codec.ContainerSequence:
		g.linef("m.%s = append(m.%s, v)", name, name)
	case field.Kind == ir.KindMessage, field.Kind == ir.KindBytes:
		g.linef("m.%s = v", name)
	case field.Kind == ir.KindEnum:
		g.line("x := " + g.types[field.TypeName] + "(v)")
		g.linef("m.%s = &x", name)
	default:
		g.linef("m.%s = &v", name)
	}
	g.line("return nil")
}

// emitDecodeValue reads one element into v.
func (g *generator) emitDecodeValue(rule *codec.Rule) {
	field := rule.Field
	switch {
	case field.Kind == ir.KindMessage:
		g.linef("v := &%s{}", g.types[field.TypeName])
		g.line("if err := d.Message(v); err != nil {")
		g.line("return err")
		g.line("}")
		return
	case field.Kind == ir.KindBytes && rule.View:
		g.line("v, err := d.View()")
	case field.Kind == ir.KindString:
		g.line("v, err := d.Text()")
	default:
		g.linef("v, err := d.%s()", accessor(field.Kind))
	}
	g.line("if err != nil {")
	g.line("return err")
	g.line("}")
}

func (g *generator) decodedValue(rule *codec.Rule) string {
	if rule.Field.Kind == ir.KindEnum {
		return g.types[rule.Field.TypeName] + "(v)"
	}
	return "v"
}

func (g *generator) emitCBORCodec(typ string) {
	g.imports[cborImport] = true

	g.linef("func (m *%s) Marshal() ([]byte, error) {", typ)
	g.line("return cborwire.Marshal(m)")
	g.line("}")
	g.line("")

	g.linef("func Unmarshal%s(data []byte) (*%s, error) {", typ, typ)
	g.linef("m := &%s{}", typ)
	g.line("if err := cborwire.Unmarshal(data, m); err != nil {")
	g.line("return nil, err")
	g.line("}")
	g.line("return m, nil")
	g.line("}")
	g.line("")
}
