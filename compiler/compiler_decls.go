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

package compiler

import (
	"strconv"
	"strings"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

// Both dialects are reduced to this declaration tree before compilation, so
// that the passes below never look at dialect-specific nodes.

// loc points into the source: a byte span for the proto dialect, a JSON
// path for the CBOR dialect.
type loc struct {
	span syntax.Span
	path string
}

type schemaDecl struct {
	dialect  ir.Dialect
	syntaxes []*literal
	packages []*nameDecl
	options  []*optionDecl
	messages []*messageDecl
	enums    []*enumDecl
}

type nameDecl struct {
	name string
	loc  loc
}

type optionDecl struct {
	name  nameDecl
	value *literal
}

type messageDecl struct {
	name     nameDecl
	fields   []*fieldDecl
	messages []*messageDecl
	enums    []*enumDecl
	options  []*optionDecl

	// Set by registerDecls()
	fullName string
	scope    string
}

type fieldDecl struct {
	label    ir.Label
	typeName nameDecl
	name     nameDecl
	id       *literal
	options  []*optionDecl
	comment  *nameDecl
}

type enumDecl struct {
	name  nameDecl
	items []*enumItemDecl

	// Set by registerDecls()
	fullName string
}

type enumItemDecl struct {
	name  nameDecl
	value *literal
}

type literalKind uint8

const (
	litInt literalKind = iota
	litFloat
	litText
	litIdent
	litBool
)

func (k literalKind) String() string {
	switch k {
	case litInt:
		return "integer"
	case litFloat:
		return "float"
	case litText:
		return "text"
	case litBool:
		return "boolean"
	default:
		return "identifier"
	}
}

// literal is a value as written, with every interpretation the literal
// allows already computed.
type literal struct {
	kind literalKind
	raw  string
	loc  loc

	i64   int64
	i64ok bool
	u64   uint64
	u64ok bool
	f64   float64
	text  string
}

// boolValue interprets true/false identifiers and JSON booleans.
func (l *literal) boolValue() (bool, bool) {
	if l.kind != litIdent && l.kind != litBool {
		return false, false
	}
	switch l.raw {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func spanLoc(node syntax.Node) loc {
	return loc{span: node.Span()}
}

func declsFromSyntax(parsed *syntax.Schema) *schemaDecl {
	decls := &schemaDecl{dialect: ir.DialectProto}
	for _, node := range parsed.Decls() {
		switch node := node.(type) {
		case *syntax.SyntaxDecl:
			decls.syntaxes = append(decls.syntaxes, literalFromNode(node.Value()))
		case *syntax.Package:
			decls.packages = append(decls.packages, &nameDecl{
				name: node.Name().String(),
				loc:  spanLoc(node.Name()),
			})
		case *syntax.Option:
			decls.options = append(decls.options, optionFromSyntax(node))
		case *syntax.Message:
			decls.messages = append(decls.messages, messageFromSyntax(node))
		case *syntax.Enum:
			decls.enums = append(decls.enums, enumFromSyntax(node))
		}
	}
	return decls
}

func optionFromSyntax(node *syntax.Option) *optionDecl {
	return &optionDecl{
		name: nameDecl{
			name: node.Name().String(),
			loc:  spanLoc(node.Name()),
		},
		value: literalFromNode(node.Value()),
	}
}

func messageFromSyntax(node *syntax.Message) *messageDecl {
	msg := &messageDecl{
		name: nameDecl{
			name: node.Name().Get(),
			loc:  spanLoc(node.Name()),
		},
	}
	for _, option := range node.Options() {
		msg.options = append(msg.options, optionFromSyntax(option))
	}
	for _, field := range node.Fields() {
		msg.fields = append(msg.fields, fieldFromSyntax(field))
	}
	for _, child := range node.Messages() {
		msg.messages = append(msg.messages, messageFromSyntax(child))
	}
	for _, enum := range node.Enums() {
		msg.enums = append(msg.enums, enumFromSyntax(enum))
	}
	return msg
}

func fieldFromSyntax(node *syntax.Field) *fieldDecl {
	field := &fieldDecl{
		typeName: nameDecl{
			name: node.TypeName().String(),
			loc:  spanLoc(node.TypeName()),
		},
		name: nameDecl{
			name: node.Name().Get(),
			loc:  spanLoc(node.Name()),
		},
		id: literalFromNode(node.ID()),
	}
	switch node.Label().Get() {
	case "required":
		field.label = ir.LabelRequired
	case "repeated":
		field.label = ir.LabelRepeated
	default:
		field.label = ir.LabelOptional
	}
	for _, option := range node.Options() {
		field.options = append(field.options, &optionDecl{
			name: nameDecl{
				name: option.Name().Get(),
				loc:  spanLoc(option.Name()),
			},
			value: literalFromNode(option.Value()),
		})
	}
	if comment := node.Comment(); comment != nil {
		field.comment = &nameDecl{
			name: comment.Body(),
			loc:  spanLoc(comment),
		}
	}
	return field
}

func enumFromSyntax(node *syntax.Enum) *enumDecl {
	enum := &enumDecl{
		name: nameDecl{
			name: node.Name().Get(),
			loc:  spanLoc(node.Name()),
		},
	}
	for _, item := range node.Items() {
		enum.items = append(enum.items, &enumItemDecl{
			name: nameDecl{
				name: item.Name().Get(),
				loc:  spanLoc(item.Name()),
			},
			value: literalFromNode(item.Value()),
		})
	}
	return enum
}

func literalFromNode(node syntax.Node) *literal {
	lit := &literal{
		raw: syntax.Unparse(node),
		loc: spanLoc(node),
	}
	switch node := node.(type) {
	case *syntax.IntLit:
		lit.kind = litInt
		lit.i64, lit.i64ok = node.GetInt64()
		lit.u64, lit.u64ok = node.GetUint64()
		lit.f64 = node.GetFloat64()
	case *syntax.FloatLit:
		lit.kind = litFloat
		lit.f64 = node.Get()
	case *syntax.TextLit:
		lit.kind = litText
		lit.text = node.Get()
	default:
		lit.kind = litIdent
	}
	return lit
}

func declsFromCBOR(parsed *cborschema.Schema) *schemaDecl {
	decls := &schemaDecl{dialect: ir.DialectCBOR}
	if parsed.Syntax != "" {
		decls.syntaxes = append(decls.syntaxes, &literal{
			kind: litText,
			raw:  strconv.Quote(parsed.Syntax),
			text: parsed.Syntax,
			loc:  loc{path: "$.syntax"},
		})
	}
	if parsed.Namespace != "" {
		decls.packages = append(decls.packages, &nameDecl{
			name: parsed.Namespace,
			loc:  loc{path: "$.namespace"},
		})
	}
	for _, option := range parsed.Options {
		decls.options = append(decls.options, &optionDecl{
			name:  nameDecl{name: option.Name, loc: loc{path: option.Path}},
			value: literalFromValue(option.Value),
		})
	}
	for _, msg := range parsed.Messages {
		decls.messages = append(decls.messages, messageFromCBOR(msg))
	}
	for _, enum := range parsed.Enums {
		decls.enums = append(decls.enums, enumFromCBOR(enum))
	}
	return decls
}

func messageFromCBOR(node *cborschema.Message) *messageDecl {
	msg := &messageDecl{
		name: nameDecl{name: node.Name, loc: loc{path: node.Path + ".name"}},
	}
	for _, field := range node.Fields {
		msg.fields = append(msg.fields, fieldFromCBOR(field))
	}
	for _, child := range node.Messages {
		msg.messages = append(msg.messages, messageFromCBOR(child))
	}
	for _, enum := range node.Enums {
		msg.enums = append(msg.enums, enumFromCBOR(enum))
	}
	return msg
}

func fieldFromCBOR(node *cborschema.Field) *fieldDecl {
	field := &fieldDecl{
		typeName: nameDecl{name: node.Type, loc: loc{path: node.Path + ".type"}},
		name:     nameDecl{name: node.Name, loc: loc{path: node.Path + ".name"}},
		id:       literalFromValue(node.ID),
	}
	switch {
	case node.Repeated:
		field.label = ir.LabelRepeated
	case node.Required:
		field.label = ir.LabelRequired
	default:
		field.label = ir.LabelOptional
	}
	if node.Packed != nil {
		field.options = append(field.options, &optionDecl{
			name:  nameDecl{name: "packed", loc: loc{path: node.Packed.Path}},
			value: literalFromValue(*node.Packed),
		})
	}
	if node.Default != nil {
		field.options = append(field.options, &optionDecl{
			name:  nameDecl{name: "default", loc: loc{path: node.Default.Path}},
			value: literalFromValue(*node.Default),
		})
	}
	comment := node.Comment
	if node.View && !strings.Contains(comment, viewHint) {
		comment = strings.TrimSpace(comment + " " + viewHint)
	}
	if comment != "" {
		field.comment = &nameDecl{name: comment, loc: loc{path: node.Path}}
	}
	return field
}

func enumFromCBOR(node *cborschema.Enum) *enumDecl {
	enum := &enumDecl{
		name: nameDecl{name: node.Name, loc: loc{path: node.Path + ".name"}},
	}
	for _, item := range node.Values {
		enum.items = append(enum.items, &enumItemDecl{
			name:  nameDecl{name: item.Name, loc: loc{path: item.Path + ".name"}},
			value: literalFromValue(item.Value),
		})
	}
	return enum
}

func literalFromValue(value cborschema.Value) *literal {
	lit := &literal{
		raw: value.Raw,
		loc: loc{path: value.Path},
	}
	switch value.Kind {
	case cborschema.ValueString:
		lit.kind = litText
		lit.text = value.Text()
	case cborschema.ValueBool:
		lit.kind = litBool
	default:
		lit.f64, _ = strconv.ParseFloat(value.Raw, 64)
		if strings.ContainsAny(value.Raw, ".eE") {
			lit.kind = litFloat
			break
		}
		lit.kind = litInt
		var err error
		lit.i64, err = strconv.ParseInt(value.Raw, 10, 64)
		lit.i64ok = err == nil
		lit.u64, err = strconv.ParseUint(value.Raw, 10, 64)
		lit.u64ok = err == nil
	}
	return lit
}
