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

// Package cborschema reads schemas of the CBOR-map dialect. A schema is a
// JSON document, comments and trailing commas allowed, describing messages
// and enums. Every node records the JSON path it was read from so that
// compile errors can point back into the document.
package cborschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

type Schema struct {
	Syntax    string
	Namespace string
	Options   []*Option
	Messages  []*Message
	Enums     []*Enum
}

type Option struct {
	Name  string
	Value Value
	Path  string
}

type Message struct {
	Name     string
	Fields   []*Field
	Messages []*Message
	Enums    []*Enum
	Path     string
}

type Field struct {
	Name     string
	Type     string
	ID       Value
	Repeated bool
	Required bool
	Packed   *Value
	Default  *Value
	View     bool
	Comment  string
	Path     string
}

type Enum struct {
	Name   string
	Values []*EnumValue
	Path   string
}

type EnumValue struct {
	Name  string
	Value Value
	Path  string
}

// ValueKind is the JSON type of a scalar value.
type ValueKind uint8

const (
	ValueNumber ValueKind = iota
	ValueString
	ValueBool
)

// Value is a JSON scalar as written in the document. Numbers keep their
// literal text.
type Value struct {
	Kind ValueKind
	Raw  string
	Path string
}

// Text returns the decoded string of a ValueString, or Raw otherwise.
func (v Value) Text() string {
	if v.Kind == ValueString {
		s, _ := strconv.Unquote(v.Raw)
		return s
	}
	return v.Raw
}

func (v Value) String() string {
	return v.Raw
}

// Error is a malformed document. Path is the JSON path of the offending
// value, or empty when Offset locates a JSON syntax error.
type Error struct {
	Path    string
	Offset  int64
	Message string
}

func (err *Error) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("offset %d: %s", err.Offset, err.Message)
	}
	return fmt.Sprintf("%s: %s", err.Path, err.Message)
}

type rawSchema struct {
	Syntax    string            `json:"syntax"`
	Namespace string            `json:"namespace"`
	Package   string            `json:"package"`
	Options   []json.RawMessage `json:"options"`
	Name      string            `json:"name"`
	Fields    []json.RawMessage `json:"fields"`
	Messages  []json.RawMessage `json:"messages"`
	Enums     []json.RawMessage `json:"enums"`
}

type rawMessage struct {
	Name     string            `json:"name"`
	Fields   []json.RawMessage `json:"fields"`
	Messages []json.RawMessage `json:"messages"`
	Enums    []json.RawMessage `json:"enums"`
}

type rawField struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ID       json.RawMessage `json:"id"`
	Repeated bool            `json:"repeated"`
	Required bool            `json:"required"`
	Packed   json.RawMessage `json:"packed"`
	Default  json.RawMessage `json:"default"`
	View     bool            `json:"view"`
	Comment  string          `json:"comment"`
}

type rawEnum struct {
	Name   string            `json:"name"`
	Values []json.RawMessage `json:"values"`
}

type rawNamedValue struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Parse reads a document. The top-level "name" and "fields" keys declare a
// single message, listed before any in "messages".
func Parse(src []byte) (*Schema, error) {
	doc := jsonc.ToJSON(src)

	var raw rawSchema
	if err := decodeStrict(doc, "$", &raw); err != nil {
		return nil, err
	}

	schema := &Schema{
		Syntax:    raw.Syntax,
		Namespace: raw.Namespace,
	}
	if schema.Namespace == "" {
		schema.Namespace = raw.Package
	}

	for ii, rawOpt := range raw.Options {
		path := fmt.Sprintf("$.options[%d]", ii)
		opt, err := parseNamedValue(rawOpt, path)
		if err != nil {
			return nil, err
		}
		schema.Options = append(schema.Options, &Option{
			Name:  opt.Name,
			Value: opt.Value,
			Path:  path,
		})
	}

	if raw.Name != "" || raw.Fields != nil {
		msg, err := parseMessageBody("$", &rawMessage{
			Name:   raw.Name,
			Fields: raw.Fields,
		})
		if err != nil {
			return nil, err
		}
		schema.Messages = append(schema.Messages, msg)
	}
	msgs, err := parseMessages("$.messages", raw.Messages)
	if err != nil {
		return nil, err
	}
	schema.Messages = append(schema.Messages, msgs...)

	schema.Enums, err = parseEnums("$.enums", raw.Enums)
	if err != nil {
		return nil, err
	}
	return schema, nil
}

func decodeStrict(data []byte, path string, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) && path == "$" {
			return &Error{Offset: syntaxErr.Offset, Message: syntaxErr.Error()}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			fieldPath := path
			if typeErr.Field != "" {
				fieldPath += "." + typeErr.Field
			}
			return &Error{
				Path:    fieldPath,
				Message: fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value),
			}
		}
		// DisallowUnknownFields reports `json: unknown field "x"`.
		return &Error{Path: path, Message: strings.TrimPrefix(err.Error(), "json: ")}
	}
	if decoder.More() {
		return &Error{Path: path, Message: "unexpected data after top-level value"}
	}
	return nil
}

func parseMessages(path string, raws []json.RawMessage) ([]*Message, error) {
	var out []*Message
	for ii, data := range raws {
		msgPath := fmt.Sprintf("%s[%d]", path, ii)
		var raw rawMessage
		if err := decodeStrict(data, msgPath, &raw); err != nil {
			return nil, err
		}
		msg, err := parseMessageBody(msgPath, &raw)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func parseMessageBody(path string, raw *rawMessage) (*Message, error) {
	if raw.Name == "" {
		return nil, &Error{Path: path, Message: `message has no "name"`}
	}
	msg := &Message{
		Name: raw.Name,
		Path: path,
	}
	for ii, data := range raw.Fields {
		field, err := parseField(fmt.Sprintf("%s.fields[%d]", path, ii), data)
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, field)
	}
	var err error
	if msg.Messages, err = parseMessages(path+".messages", raw.Messages); err != nil {
		return nil, err
	}
	if msg.Enums, err = parseEnums(path+".enums", raw.Enums); err != nil {
		return nil, err
	}
	return msg, nil
}

func parseField(path string, data json.RawMessage) (*Field, error) {
	var raw rawField
	if err := decodeStrict(data, path, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, &Error{Path: path, Message: `field has no "name"`}
	}
	if raw.Type == "" {
		return nil, &Error{Path: path, Message: `field has no "type"`}
	}
	if raw.ID == nil {
		return nil, &Error{Path: path, Message: `field has no "id"`}
	}

	id, err := parseValue(path+".id", raw.ID)
	if err != nil {
		return nil, err
	}
	// Ids may be written as decimal strings.
	if id.Kind == ValueString {
		text := id.Text()
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			return nil, &Error{
				Path:    id.Path,
				Message: fmt.Sprintf("field id %q is not a decimal integer", text),
			}
		}
		id = Value{Kind: ValueNumber, Raw: text, Path: id.Path}
	}
	if id.Kind != ValueNumber {
		return nil, &Error{Path: id.Path, Message: "field id must be a number"}
	}

	field := &Field{
		Name:     raw.Name,
		Type:     raw.Type,
		ID:       id,
		Repeated: raw.Repeated,
		Required: raw.Required,
		View:     raw.View,
		Comment:  raw.Comment,
		Path:     path,
	}
	if raw.Packed != nil {
		packed, err := parseValue(path+".packed", raw.Packed)
		if err != nil {
			return nil, err
		}
		field.Packed = &packed
	}
	if raw.Default != nil {
		def, err := parseValue(path+".default", raw.Default)
		if err != nil {
			return nil, err
		}
		field.Default = &def
	}
	return field, nil
}

func parseEnums(path string, raws []json.RawMessage) ([]*Enum, error) {
	var out []*Enum
	for ii, data := range raws {
		enumPath := fmt.Sprintf("%s[%d]", path, ii)
		var raw rawEnum
		if err := decodeStrict(data, enumPath, &raw); err != nil {
			return nil, err
		}
		if raw.Name == "" {
			return nil, &Error{Path: enumPath, Message: `enum has no "name"`}
		}
		if len(raw.Values) == 0 {
			return nil, &Error{Path: enumPath, Message: "enum has no values"}
		}
		enum := &Enum{Name: raw.Name, Path: enumPath}
		for jj, rawValue := range raw.Values {
			valuePath := fmt.Sprintf("%s.values[%d]", enumPath, jj)
			item, err := parseNamedValue(rawValue, valuePath)
			if err != nil {
				return nil, err
			}
			if item.Value.Kind != ValueNumber {
				return nil, &Error{Path: item.Value.Path, Message: "enum value must be a number"}
			}
			enum.Values = append(enum.Values, &EnumValue{
				Name:  item.Name,
				Value: item.Value,
				Path:  valuePath,
			})
		}
		out = append(out, enum)
	}
	return out, nil
}

type namedValue struct {
	Name  string
	Value Value
}

func parseNamedValue(data json.RawMessage, path string) (*namedValue, error) {
	var raw rawNamedValue
	if err := decodeStrict(data, path, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, &Error{Path: path, Message: `missing "name"`}
	}
	if raw.Value == nil {
		return nil, &Error{Path: path, Message: `missing "value"`}
	}
	value, err := parseValue(path+".value", raw.Value)
	if err != nil {
		return nil, err
	}
	return &namedValue{Name: raw.Name, Value: value}, nil
}

func parseValue(path string, data json.RawMessage) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Value{}, &Error{Path: path, Message: "missing value"}
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Value{}, &Error{Path: path, Message: err.Error()}
		}
		return Value{Kind: ValueString, Raw: strconv.Quote(s), Path: path}, nil
	case c == 't' || c == 'f':
		return Value{Kind: ValueBool, Raw: string(data), Path: path}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return Value{Kind: ValueNumber, Raw: string(data), Path: path}, nil
	}
	return Value{}, &Error{
		Path:    path,
		Message: fmt.Sprintf("expected a number, string or boolean, got %s", data),
	}
}
