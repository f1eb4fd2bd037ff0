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

package dynamic

import (
	"fmt"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/ir"
)

func Encode(ctx *tagwire.EncodeCtx, m *Message) ([]byte, error) {
	return tagwire.Encode(ctx, m)
}

// Decode decodes buf as a message of plan. The message is returned only if
// the whole buffer decoded without error.
func Decode(ctx *tagwire.DecodeCtx, plan *codec.Plan, buf []byte) (*Message, error) {
	m := New(plan)
	if err := m.DecodeTagwire(tagwire.NewDecoder(ctx, buf)); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Message) EncodeTagwire(e *tagwire.Encoder) error {
	for rule, v := range m.Fields() {
		id := rule.Field.ID
		if rule.Container != codec.ContainerSequence {
			if err := encodeValue(e, rule, v); err != nil {
				return err
			}
			continue
		}
		elems := v.([]any)
		if rule.Packed {
			e.Packed(id, packBlock(rule, elems))
			continue
		}
		for _, elem := range elems {
			if err := encodeValue(e, rule, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

func packBlock(rule *codec.Rule, elems []any) []byte {
	width := rule.Wire.FixedWidth()
	block := make([]byte, 0, width*len(elems))
	for _, elem := range elems {
		switch v := elem.(type) {
		case uint32:
			block = tagwire.AppendFixed32(block, v)
		case int32:
			block = tagwire.AppendFixed32(block, uint32(v))
		case float32:
			block = tagwire.AppendFloat(block, v)
		case uint64:
			block = tagwire.AppendFixed64(block, v)
		case int64:
			block = tagwire.AppendFixed64(block, uint64(v))
		case float64:
			block = tagwire.AppendDouble(block, v)
		}
	}
	return block
}

func encodeValue(e *tagwire.Encoder, rule *codec.Rule, v any) error {
	id := rule.Field.ID
	switch rule.Field.Kind {
	case ir.KindInt32:
		e.Int32(id, v.(int32))
	case ir.KindInt64:
		e.Int64(id, v.(int64))
	case ir.KindUint32:
		e.Uint32(id, v.(uint32))
	case ir.KindUint64:
		e.Uint64(id, v.(uint64))
	case ir.KindSint32:
		e.Sint32(id, v.(int32))
	case ir.KindSint64:
		e.Sint64(id, v.(int64))
	case ir.KindFixed32:
		e.Fixed32(id, v.(uint32))
	case ir.KindSfixed32:
		e.Sfixed32(id, v.(int32))
	case ir.KindFixed64:
		e.Fixed64(id, v.(uint64))
	case ir.KindSfixed64:
		e.Sfixed64(id, v.(int64))
	case ir.KindFloat:
		e.Float(id, v.(float32))
	case ir.KindDouble:
		e.Double(id, v.(float64))
	case ir.KindBool:
		e.Bool(id, v.(bool))
	case ir.KindEnum:
		e.Enum(id, v.(uint32))
	case ir.KindString:
		e.String(id, v.(string))
	case ir.KindBytes:
		e.Bytes(id, v.([]byte))
	case ir.KindMessage:
		return e.MessageFunc(id, v.(*Message).EncodeTagwire)
	default:
		return fmt.Errorf("dynamic: cannot encode kind %s", rule.Field.Kind)
	}
	return nil
}

func (m *Message) DecodeTagwire(d *tagwire.Decoder) error {
	for !d.Done() {
		id, wt, err := d.Next()
		if err != nil {
			return err
		}
		rule, ok := m.plan.Lookup(id)
		if !ok {
			if err := d.Skip(wt); err != nil {
				return err
			}
			continue
		}
		if !rule.Accepts(wt) {
			return d.WireTypeError(wt, rule.Wire)
		}

		if rule.Field.Kind == ir.KindMessage {
			sub := New(rule.Message)
			if err := d.MessageFunc(sub.DecodeTagwire); err != nil {
				return err
			}
			m.put(rule, sub)
			continue
		}
		if rule.Container == codec.ContainerSequence {
			err = d.Repeated(wt, rule.Wire, func(d *tagwire.Decoder) error {
				v, err := decodeValue(d, rule)
				if err == nil {
					m.put(rule, v)
				}
				return err
			})
		} else {
			var v any
			if v, err = decodeValue(d, rule); err == nil {
				m.put(rule, v)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeValue(d *tagwire.Decoder, rule *codec.Rule) (any, error) {
	switch rule.Field.Kind {
	case ir.KindInt32:
		return d.Int32()
	case ir.KindInt64:
		return d.Int64()
	case ir.KindUint32:
		return d.Uint32()
	case ir.KindUint64:
		return d.Uint64()
	case ir.KindSint32:
		return d.Sint32()
	case ir.KindSint64:
		return d.Sint64()
	case ir.KindFixed32:
		return d.Fixed32()
	case ir.KindSfixed32:
		return d.Sfixed32()
	case ir.KindFixed64:
		return d.Fixed64()
	case ir.KindSfixed64:
		return d.Sfixed64()
	case ir.KindFloat:
		return d.Float()
	case ir.KindDouble:
		return d.Double()
	case ir.KindBool:
		return d.Bool()
	case ir.KindEnum:
		return d.Enum()
	case ir.KindString:
		return d.Text()
	case ir.KindBytes:
		if rule.View {
			return d.View()
		}
		return d.Bytes()
	}
	return nil, fmt.Errorf("dynamic: cannot decode kind %s", rule.Field.Kind)
}

