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
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/cborwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/ir"
)

// EncodeCBOR writes m as a CBOR map keyed by field id. Only present fields
// are written, repeated fields as arrays and message fields as nested maps.
func EncodeCBOR(ctx *tagwire.EncodeCtx, m *Message) ([]byte, error) {
	maxDepth := tagwire.DefaultMaxDepth
	if ctx != nil && ctx.MaxDepth > 0 {
		maxDepth = ctx.MaxDepth
	}
	tree, err := m.cborTree(0, maxDepth)
	if err != nil {
		return nil, err
	}
	return cborwire.Marshal(tree)
}

func (m *Message) cborTree(depth, maxDepth int) (map[uint64]any, error) {
	out := make(map[uint64]any)
	for rule, v := range m.Fields() {
		id := rule.Field.ID
		if rule.Container != codec.ContainerSequence {
			item, err := cborItem(rule, v, depth, maxDepth)
			if err != nil {
				return nil, err
			}
			out[uint64(id)] = item
			continue
		}
		elems := v.([]any)
		items := make([]any, len(elems))
		for ii, elem := range elems {
			item, err := cborItem(rule, elem, depth, maxDepth)
			if err != nil {
				return nil, err
			}
			items[ii] = item
		}
		out[uint64(id)] = items
	}
	return out, nil
}

func cborItem(rule *codec.Rule, v any, depth, maxDepth int) (any, error) {
	sub, ok := v.(*Message)
	if !ok {
		return v, nil
	}
	if depth+1 > maxDepth {
		return nil, &tagwire.EncodeError{Err: tagwire.ErrDepth, FieldID: rule.Field.ID}
	}
	return sub.cborTree(depth+1, maxDepth)
}

// DecodeCBOR decodes one CBOR map as a message of plan. Unknown keys are
// skipped. The message is returned only if the whole item decoded.
func DecodeCBOR(ctx *tagwire.DecodeCtx, plan *codec.Plan, data []byte) (*Message, error) {
	maxDepth := tagwire.DefaultMaxDepth
	if ctx != nil && ctx.MaxDepth > 0 {
		maxDepth = ctx.MaxDepth
	}
	dm, err := cborwire.NewDecMode(maxDepth)
	if err != nil {
		return nil, err
	}
	cd := cborDecoder{dm: dm, maxDepth: maxDepth}
	m := New(plan)
	if err := cd.message(m, data, 0); err != nil {
		return nil, err
	}
	return m, nil
}

type cborDecoder struct {
	dm       cbor.DecMode
	maxDepth int
}

// FieldError locates a CBOR decode failure by field id.
type FieldError struct {
	Message string
	FieldID uint32
	Err     error
}

func (err *FieldError) Error() string {
	return fmt.Sprintf("dynamic: %s field %d: %v", err.Message, err.FieldID, err.Err)
}

func (err *FieldError) Unwrap() error {
	return err.Err
}

func (cd *cborDecoder) message(m *Message, data []byte, depth int) error {
	fields, err := cborwire.Fields(cd.dm, data)
	if err != nil {
		return err
	}
	for key, raw := range fields {
		if key == 0 || key > uint64(tagwire.MaxFieldID) {
			return fmt.Errorf("%w: key %d", tagwire.ErrFieldID, key)
		}
		rule, ok := m.plan.Lookup(uint32(key))
		if !ok {
			continue
		}
		if err := cd.field(m, rule, raw, depth); err != nil {
			var fieldErr *FieldError
			if errors.As(err, &fieldErr) {
				return err
			}
			return &FieldError{
				Message: m.plan.Message.FullName,
				FieldID: rule.Field.ID,
				Err:     err,
			}
		}
	}
	return nil
}

func (cd *cborDecoder) field(m *Message, rule *codec.Rule, raw cborwire.RawMessage, depth int) error {
	if rule.Container != codec.ContainerSequence {
		v, err := cd.value(rule, raw, depth)
		if err != nil {
			return err
		}
		m.put(rule, v)
		return nil
	}
	var items []cborwire.RawMessage
	if err := cd.dm.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%w: %v", tagwire.ErrWireType, err)
	}
	for _, item := range items {
		v, err := cd.value(rule, item, depth)
		if err != nil {
			return err
		}
		m.put(rule, v)
	}
	return nil
}

func (cd *cborDecoder) value(rule *codec.Rule, raw cborwire.RawMessage, depth int) (any, error) {
	if rule.Field.Kind == ir.KindMessage {
		if depth+1 > cd.maxDepth {
			return nil, fmt.Errorf("%w: limit is %d", tagwire.ErrDepth, cd.maxDepth)
		}
		sub := New(rule.Message)
		if err := cd.message(sub, raw, depth+1); err != nil {
			return nil, err
		}
		return sub, nil
	}

	var v any
	var err error
	switch rule.Field.Kind {
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		v, err = unmarshalAs[int32](cd.dm, raw)
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		v, err = unmarshalAs[int64](cd.dm, raw)
	case ir.KindUint32, ir.KindFixed32, ir.KindEnum:
		v, err = unmarshalAs[uint32](cd.dm, raw)
	case ir.KindUint64, ir.KindFixed64:
		v, err = unmarshalAs[uint64](cd.dm, raw)
	case ir.KindFloat:
		v, err = unmarshalAs[float32](cd.dm, raw)
	case ir.KindDouble:
		v, err = unmarshalAs[float64](cd.dm, raw)
	case ir.KindBool:
		v, err = unmarshalAs[bool](cd.dm, raw)
	case ir.KindString:
		v, err = unmarshalAs[string](cd.dm, raw)
	case ir.KindBytes:
		v, err = unmarshalAs[[]byte](cd.dm, raw)
	default:
		return nil, fmt.Errorf("dynamic: cannot decode kind %s", rule.Field.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tagwire.ErrWireType, err)
	}
	return v, nil
}

func unmarshalAs[T any](dm cbor.DecMode, raw cborwire.RawMessage) (T, error) {
	var v T
	err := dm.Unmarshal(raw, &v)
	return v, err
}
