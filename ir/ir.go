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

// Package ir is the resolved, order-independent model of a schema. Both
// schema dialects compile to it, and every emitter and codec reads it.
//
// Values are built by the compiler and must not be mutated afterwards.
package ir

import (
	"fmt"
)

type Schema struct {
	Dialect    Dialect    `json:"dialect" cbor:"1,keyasint"`
	Syntax     string     `json:"syntax,omitempty" cbor:"2,keyasint,omitempty"`
	Package    string     `json:"package,omitempty" cbor:"3,keyasint,omitempty"`
	Options    []*Option  `json:"options,omitempty" cbor:"4,keyasint,omitempty"`
	Messages   []*Message `json:"messages,omitempty" cbor:"5,keyasint,omitempty"`
	Enums      []*Enum    `json:"enums,omitempty" cbor:"6,keyasint,omitempty"`
	SourcePath string     `json:"source_path,omitempty" cbor:"7,keyasint,omitempty"`

	messages map[string]*Message
	enums    map[string]*Enum
}

type Option struct {
	Name  string `json:"name" cbor:"1,keyasint"`
	Value string `json:"value" cbor:"2,keyasint"`
}

type Message struct {
	Name     string     `json:"name" cbor:"1,keyasint"`
	FullName string     `json:"full_name" cbor:"2,keyasint"`
	Fields   []*Field   `json:"fields,omitempty" cbor:"3,keyasint,omitempty"`
	Messages []*Message `json:"messages,omitempty" cbor:"4,keyasint,omitempty"`
	Enums    []*Enum    `json:"enums,omitempty" cbor:"5,keyasint,omitempty"`
	Options  []*Option  `json:"options,omitempty" cbor:"6,keyasint,omitempty"`
}

type Field struct {
	ID       uint32   `json:"id" cbor:"1,keyasint"`
	Name     string   `json:"name" cbor:"2,keyasint"`
	Label    Label    `json:"label" cbor:"3,keyasint"`
	Kind     Kind     `json:"kind" cbor:"4,keyasint"`
	TypeName string   `json:"type_name,omitempty" cbor:"5,keyasint,omitempty"`
	Packed   bool     `json:"packed,omitempty" cbor:"6,keyasint,omitempty"`
	Default  *Default `json:"default,omitempty" cbor:"7,keyasint,omitempty"`
	Comment  string   `json:"comment,omitempty" cbor:"8,keyasint,omitempty"`
	View     bool     `json:"view,omitempty" cbor:"9,keyasint,omitempty"`

	// Resolved by Link from TypeName.
	Message *Message `json:"-" cbor:"-"`
	Enum    *Enum    `json:"-" cbor:"-"`
}

func (f *Field) Repeated() bool {
	return f.Label == LabelRepeated
}

type Enum struct {
	Name     string       `json:"name" cbor:"1,keyasint"`
	FullName string       `json:"full_name" cbor:"2,keyasint"`
	Values   []*EnumValue `json:"values" cbor:"3,keyasint"`
}

type EnumValue struct {
	Name   string `json:"name" cbor:"1,keyasint"`
	Number uint32 `json:"number" cbor:"2,keyasint"`
}

// Value returns the first value declared with the given name.
func (e *Enum) Value(name string) (*EnumValue, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// NameOf returns the name of the first value declared with number n.
func (e *Enum) NameOf(n uint32) (string, bool) {
	for _, v := range e.Values {
		if v.Number == n {
			return v.Name, true
		}
	}
	return "", false
}

func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Message) FieldByID(id uint32) *Field {
	for _, f := range m.Fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Message looks up a message by full name. Link must have been called.
func (s *Schema) Message(fullName string) *Message {
	return s.messages[fullName]
}

// Enum looks up an enum by full name. Link must have been called.
func (s *Schema) Enum(fullName string) *Enum {
	return s.enums[fullName]
}

// AllMessages returns every message, nested ones included, in declaration
// order with each parent before its children.
func (s *Schema) AllMessages() []*Message {
	var out []*Message
	var walk func([]*Message)
	walk = func(msgs []*Message) {
		for _, m := range msgs {
			out = append(out, m)
			walk(m.Messages)
		}
	}
	walk(s.Messages)
	return out
}

// AllEnums returns every enum, nested ones included, in declaration order.
func (s *Schema) AllEnums() []*Enum {
	out := append([]*Enum{}, s.Enums...)
	for _, m := range s.AllMessages() {
		out = append(out, m.Enums...)
	}
	return out
}

// Link rebuilds the full-name index and the resolved type pointers of every
// field. A schema decoded from its interchange encoding is unusable until
// linked.
func (s *Schema) Link() error {
	s.messages = make(map[string]*Message)
	s.enums = make(map[string]*Enum)
	for _, e := range s.AllEnums() {
		s.enums[e.FullName] = e
	}
	msgs := s.AllMessages()
	for _, m := range msgs {
		s.messages[m.FullName] = m
	}
	for _, m := range msgs {
		for _, f := range m.Fields {
			f.Message = nil
			f.Enum = nil
			switch f.Kind {
			case KindMessage:
				f.Message = s.messages[f.TypeName]
				if f.Message == nil {
					return fmt.Errorf("ir: field %s.%s: unknown message %q", m.FullName, f.Name, f.TypeName)
				}
			case KindEnum:
				f.Enum = s.enums[f.TypeName]
				if f.Enum == nil {
					return fmt.Errorf("ir: field %s.%s: unknown enum %q", m.FullName, f.Name, f.TypeName)
				}
			}
		}
	}
	return nil
}
