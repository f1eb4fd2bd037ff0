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

// Package dynamic encodes and decodes messages of a compiled schema without
// generated code. A Message is driven entirely by its codec.Plan and follows
// the same rules as generated code, for both dialects.
//
// Field values use the Go types returned by ir.Default.Value: int32, int64,
// uint32, uint64, float32, float64, bool, string and []byte, with enums as
// uint32 and message fields as *Message.
package dynamic

import (
	"bytes"
	"fmt"
	"iter"
	"math"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/ir"
)

type Message struct {
	plan   *codec.Plan
	single map[uint32]any
	seq    map[uint32][]any
}

var _ tagwire.Message = (*Message)(nil)

// New returns an empty message. Fields with a default read as that default
// until set, but are absent and not encoded.
func New(plan *codec.Plan) *Message {
	return &Message{
		plan:   plan,
		single: make(map[uint32]any),
		seq:    make(map[uint32][]any),
	}
}

func (m *Message) Plan() *codec.Plan {
	return m.plan
}

func (m *Message) Clear() {
	clear(m.single)
	clear(m.seq)
}

func (m *Message) rule(name string) (*codec.Rule, error) {
	rule, ok := m.plan.Field(name)
	if !ok {
		return nil, fmt.Errorf("dynamic: message %s has no field %q", m.plan.Message.FullName, name)
	}
	return rule, nil
}

// Has reports whether a singular field is present or a repeated field is
// non-empty.
func (m *Message) Has(name string) bool {
	rule, ok := m.plan.Field(name)
	if !ok {
		return false
	}
	if rule.Container == codec.ContainerSequence {
		return len(m.seq[rule.Field.ID]) > 0
	}
	_, ok = m.single[rule.Field.ID]
	return ok
}

// Get returns the value of a singular field, its default if absent, or nil
// if it has neither. The second result reports presence.
func (m *Message) Get(name string) (any, bool) {
	rule, ok := m.plan.Field(name)
	if !ok || rule.Container == codec.ContainerSequence {
		return nil, false
	}
	if v, ok := m.single[rule.Field.ID]; ok {
		return v, true
	}
	return rule.Default, false
}

// List returns the elements of a repeated field. The slice must not be
// modified.
func (m *Message) List(name string) []any {
	rule, ok := m.plan.Field(name)
	if !ok {
		return nil
	}
	return m.seq[rule.Field.ID]
}

func (m *Message) Set(name string, v any) error {
	rule, err := m.rule(name)
	if err != nil {
		return err
	}
	if rule.Container == codec.ContainerSequence {
		return fmt.Errorf("dynamic: field %q is repeated", name)
	}
	if err := checkValue(rule, v); err != nil {
		return err
	}
	m.single[rule.Field.ID] = v
	return nil
}

func (m *Message) Append(name string, vs ...any) error {
	rule, err := m.rule(name)
	if err != nil {
		return err
	}
	if rule.Container != codec.ContainerSequence {
		return fmt.Errorf("dynamic: field %q is not repeated", name)
	}
	for _, v := range vs {
		if err := checkValue(rule, v); err != nil {
			return err
		}
	}
	m.seq[rule.Field.ID] = append(m.seq[rule.Field.ID], vs...)
	return nil
}

// ClearField resets one field to absent, or to empty if repeated.
func (m *Message) ClearField(name string) error {
	rule, err := m.rule(name)
	if err != nil {
		return err
	}
	delete(m.single, rule.Field.ID)
	delete(m.seq, rule.Field.ID)
	return nil
}

// Fields yields the present fields in declaration order. Repeated fields
// yield their []any.
func (m *Message) Fields() iter.Seq2[*codec.Rule, any] {
	return func(yield func(*codec.Rule, any) bool) {
		for _, rule := range m.plan.Rules {
			id := rule.Field.ID
			var v any
			if rule.Container == codec.ContainerSequence {
				elems := m.seq[id]
				if len(elems) == 0 {
					continue
				}
				v = elems
			} else {
				var ok bool
				if v, ok = m.single[id]; !ok {
					continue
				}
			}
			if !yield(rule, v) {
				return
			}
		}
	}
}

func (m *Message) put(rule *codec.Rule, v any) {
	if rule.Container == codec.ContainerSequence {
		m.seq[rule.Field.ID] = append(m.seq[rule.Field.ID], v)
	} else {
		m.single[rule.Field.ID] = v
	}
}

func checkValue(rule *codec.Rule, v any) error {
	var ok bool
	switch rule.Field.Kind {
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		_, ok = v.(int32)
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		_, ok = v.(int64)
	case ir.KindUint32, ir.KindFixed32, ir.KindEnum:
		_, ok = v.(uint32)
	case ir.KindUint64, ir.KindFixed64:
		_, ok = v.(uint64)
	case ir.KindFloat:
		_, ok = v.(float32)
	case ir.KindDouble:
		_, ok = v.(float64)
	case ir.KindBool:
		_, ok = v.(bool)
	case ir.KindString:
		_, ok = v.(string)
	case ir.KindBytes:
		_, ok = v.([]byte)
	case ir.KindMessage:
		var sub *Message
		sub, ok = v.(*Message)
		ok = ok && sub != nil && sub.plan == rule.Message
	}
	if !ok {
		return fmt.Errorf(
			"dynamic: field %q (%s) cannot hold a value of type %T",
			rule.Field.Name, rule.Field.Kind, v,
		)
	}
	return nil
}

// Equal reports whether a and b have the same plan, the same present fields
// and equal values. NaN equals NaN.
func Equal(a, b *Message) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.plan != b.plan {
		return false
	}
	for _, rule := range a.plan.Rules {
		id := rule.Field.ID
		if rule.Container == codec.ContainerSequence {
			xs, ys := a.seq[id], b.seq[id]
			if len(xs) != len(ys) {
				return false
			}
			for ii := range xs {
				if !equalValue(xs[ii], ys[ii]) {
					return false
				}
			}
			continue
		}
		x, xok := a.single[id]
		y, yok := b.single[id]
		if xok != yok || (xok && !equalValue(x, y)) {
			return false
		}
	}
	return true
}

func equalValue(x, y any) bool {
	switch x := x.(type) {
	case float32:
		y, ok := y.(float32)
		return ok && (x == y || math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case float64:
		y, ok := y.(float64)
		return ok && (x == y || math.IsNaN(x) && math.IsNaN(y))
	case []byte:
		y, ok := y.([]byte)
		return ok && bytes.Equal(x, y)
	case *Message:
		y, ok := y.(*Message)
		return ok && Equal(x, y)
	}
	return x == y
}
