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
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/ir"
)

type generator struct {
	schema  *ir.Schema
	rules   *codec.Rules
	opts    Options
	goPkg   string
	imports map[string]bool
	types   map[string]string

	body bytes.Buffer
}

func (g *generator) line(s string) {
	g.body.WriteString(s)
	g.body.WriteByte('\n')
}

func (g *generator) linef(format string, a ...any) {
	fmt.Fprintf(&g.body, format, a...)
	g.body.WriteByte('\n')
}

func (g *generator) output() []byte {
	var out bytes.Buffer
	out.WriteString("// Code generated by tagwire. DO NOT EDIT.\n")
	if g.schema.SourcePath != "" {
		fmt.Fprintf(&out, "// source: %s\n", g.schema.SourcePath)
	}
	if g.opts.Fingerprint != "" {
		fmt.Fprintf(&out, "// fingerprint: %s\n", g.opts.Fingerprint)
	}
	fmt.Fprintf(&out, "\npackage %s\n\n", g.goPkg)

	if len(g.imports) > 0 {
		var imports []string
		for imp := range g.imports {
			imports = append(imports, imp)
		}
		slices.Sort(imports)
		out.WriteString("import (\n")
		for _, imp := range imports {
			fmt.Fprintf(&out, "\t%q\n", imp)
		}
		out.WriteString(")\n\n")
	}
	out.Write(g.body.Bytes())
	return out.Bytes()
}

func (g *generator) emitFile() {
	for _, enum := range g.schema.AllEnums() {
		g.emitEnum(enum)
	}
	for _, plan := range g.rules.Plans() {
		g.emitMessage(plan)
	}
}

func (g *generator) emitEnum(enum *ir.Enum) {
	name := g.types[enum.FullName]
	g.imports["strconv"] = true

	g.linef("type %s uint32", name)
	g.line("")
	g.line("const (")
	for _, value := range enum.Values {
		g.linef("%s_%s %s = %d", name, value.Name, name, value.Number)
	}
	g.line(")")
	g.line("")

	// Aliased values print as the first name declared for them.
	g.linef("func (x %s) String() string {", name)
	g.line("switch x {")
	seen := make(map[uint32]bool)
	for _, value := range enum.Values {
		if seen[value.Number] {
			continue
		}
		seen[value.Number] = true
		g.linef("case %s_%s:", name, value.Name)
		g.linef("return %q", value.Name)
	}
	g.line("}")
	g.linef(`return "%s(" + strconv.FormatUint(uint64(x), 10) + ")"`, name)
	g.line("}")
	g.line("")
}

func (g *generator) emitMessage(plan *codec.Plan) {
	msg := plan.Message
	name := g.types[msg.FullName]
	names := fieldNames(msg)

	g.linef("type %s struct {", name)
	for _, rule := range plan.Rules {
		field := rule.Field
		if field.Comment != "" {
			for _, line := range strings.Split(field.Comment, "\n") {
				g.linef("// %s", line)
			}
		}
		tag := ""
		if g.schema.Dialect == ir.DialectCBOR {
			tag = fmt.Sprintf(" `cbor:\"%d,keyasint,%s\"`", field.ID, cborOmit(rule))
		}
		g.linef("%s %s%s", names[field.ID], g.fieldType(rule), tag)
	}
	g.line("}")
	g.line("")

	g.linef("func New%s() *%s {", name, name)
	g.linef("return &%s{}", name)
	g.line("}")
	g.line("")

	g.line("// Clear resets every field to absent. Getters of fields with a")
	g.line("// declared default return that default again.")
	g.linef("func (m *%s) Clear() {", name)
	g.linef("*m = %s{}", name)
	g.line("}")
	g.line("")

	for _, rule := range plan.Rules {
		g.emitGetter(name, names[rule.Field.ID], rule)
	}

	switch g.schema.Dialect {
	case ir.DialectCBOR:
		g.emitCBORCodec(name)
	default:
		g.emitEncode(name, names, plan)
		g.emitDecode(name, names, plan)
	}
}

func (g *generator) elemType(rule *codec.Rule) string {
	field := rule.Field
	switch field.Kind {
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		return "int32"
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		return "int64"
	case ir.KindUint32, ir.KindFixed32:
		return "uint32"
	case ir.KindUint64, ir.KindFixed64:
		return "uint64"
	case ir.KindFloat:
		return "float32"
	case ir.KindDouble:
		return "float64"
	case ir.KindBool:
		return "bool"
	case ir.KindString:
		return "string"
	case ir.KindBytes:
		return "[]byte"
	case ir.KindEnum:
		return g.types[field.TypeName]
	case ir.KindMessage:
		return "*" + g.types[field.TypeName]
	}
	panic("unreachable")
}

// fieldType is the Go type of a struct field. Singular scalars are
// pointers so that absence is distinct from the zero value; bytes use nil.
func (g *generator) fieldType(rule *codec.Rule) string {
	elem := g.elemType(rule)
	if rule.Container == codec.ContainerSequence {
		return "[]" + elem
	}
	switch rule.Field.Kind {
	case ir.KindBytes, ir.KindMessage:
		return elem
	}
	return "*" + elem
}

func (g *generator) emitGetter(typ, fieldName string, rule *codec.Rule) {
	field := rule.Field
	ret := g.fieldType(rule)
	if rule.Container == codec.ContainerSingle && field.Kind != ir.KindBytes && field.Kind != ir.KindMessage {
		ret = g.elemType(rule)
	}
	g.linef("func (m *%s) Get%s() %s {", typ, fieldName, ret)
	switch {
	case rule.Container == codec.ContainerSequence, field.Kind == ir.KindMessage:
		g.line("if m == nil {")
		g.line("return nil")
		g.line("}")
		g.linef("return m.%s", fieldName)
	case field.Kind == ir.KindBytes:
		g.linef("if m != nil && m.%s != nil {", fieldName)
		g.linef("return m.%s", fieldName)
		g.line("}")
		if field.Default != nil {
			g.linef("return []byte(%s)", strconv.Quote(field.Default.Text))
		} else {
			g.line("return nil")
		}
	default:
		g.linef("if m != nil && m.%s != nil {", fieldName)
		g.linef("return *m.%s", fieldName)
		g.line("}")
		g.linef("return %s", g.defaultLiteral(rule))
	}
	g.line("}")
	g.line("")
}

func (g *generator) defaultLiteral(rule *codec.Rule) string {
	field := rule.Field
	def := field.Default
	if def == nil {
		switch field.Kind {
		case ir.KindBool:
			return "false"
		case ir.KindString:
			return `""`
		}
		return "0"
	}
	switch field.Kind {
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32, ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		return strconv.FormatInt(def.Int, 10)
	case ir.KindUint32, ir.KindFixed32, ir.KindUint64, ir.KindFixed64:
		return strconv.FormatUint(def.Uint, 10)
	case ir.KindFloat, ir.KindDouble:
		return g.floatLiteral(field.Kind, def.Float)
	case ir.KindBool:
		return strconv.FormatBool(def.Bool)
	case ir.KindString:
		return strconv.Quote(def.Text)
	case ir.KindEnum:
		return fmt.Sprintf("%s_%s", g.types[field.TypeName], def.Enum)
	}
	panic("unreachable")
}

func (g *generator) floatLiteral(kind ir.Kind, f float64) string {
	typ := "float64"
	bits := 64
	if kind == ir.KindFloat {
		typ = "float32"
		bits = 32
	}
	switch {
	case math.IsNaN(f):
		g.imports["math"] = true
		return typ + "(math.NaN())"
	case math.IsInf(f, 1):
		g.imports["math"] = true
		return typ + "(math.Inf(1))"
	case math.IsInf(f, -1):
		g.imports["math"] = true
		return typ + "(math.Inf(-1))"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// A present but empty bytes value is kept: omitempty would drop []byte{}
// along with nil.
func cborOmit(rule *codec.Rule) string {
	if rule.Container == codec.ContainerSingle && rule.Field.Kind == ir.KindBytes {
		return "omitzero"
	}
	return "omitempty"
}
