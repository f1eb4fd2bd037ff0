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

package tagwire

import (
	"math"
)

type EncodeCtx struct {
	// MaxDepth bounds sub-message nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (ctx *EncodeCtx) maxDepth() int {
	if ctx == nil || ctx.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return ctx.MaxDepth
}

type Encoder struct {
	buf      []byte
	depth    int
	maxDepth int
}

func NewEncoder(ctx *EncodeCtx, buf []byte) *Encoder {
	return &Encoder{
		buf:      buf,
		maxDepth: ctx.maxDepth(),
	}
}

// Data returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Data() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) Depth() int {
	return e.depth
}

func (e *Encoder) Header(id uint32, wt WireType) {
	e.buf = AppendHeader(e.buf, id, wt)
}

func (e *Encoder) Varint(id uint32, v uint64) {
	e.buf = AppendHeader(e.buf, id, WireVarint)
	e.buf = AppendVarint(e.buf, v)
}

// Int32 sign-extends negative values to 64 bits, so they always take ten
// bytes on the wire. Use Sint32 for fields that are often negative.
func (e *Encoder) Int32(id uint32, v int32) {
	e.Varint(id, uint64(int64(v)))
}

func (e *Encoder) Int64(id uint32, v int64) {
	e.Varint(id, uint64(v))
}

func (e *Encoder) Uint32(id uint32, v uint32) {
	e.Varint(id, uint64(v))
}

func (e *Encoder) Uint64(id uint32, v uint64) {
	e.Varint(id, v)
}

func (e *Encoder) Sint32(id uint32, v int32) {
	e.Varint(id, uint64(EncodeZigzag32(v)))
}

func (e *Encoder) Sint64(id uint32, v int64) {
	e.Varint(id, EncodeZigzag64(v))
}

func (e *Encoder) Bool(id uint32, v bool) {
	var b uint64
	if v {
		b = 1
	}
	e.Varint(id, b)
}

func (e *Encoder) Enum(id uint32, v uint32) {
	e.Varint(id, uint64(v))
}

func (e *Encoder) Fixed32(id uint32, v uint32) {
	e.buf = AppendHeader(e.buf, id, WireFixed32)
	e.buf = AppendFixed32(e.buf, v)
}

func (e *Encoder) Fixed64(id uint32, v uint64) {
	e.buf = AppendHeader(e.buf, id, WireFixed64)
	e.buf = AppendFixed64(e.buf, v)
}

func (e *Encoder) Sfixed32(id uint32, v int32) {
	e.Fixed32(id, uint32(v))
}

func (e *Encoder) Sfixed64(id uint32, v int64) {
	e.Fixed64(id, uint64(v))
}

func (e *Encoder) Float(id uint32, v float32) {
	e.Fixed32(id, math.Float32bits(v))
}

func (e *Encoder) Double(id uint32, v float64) {
	e.Fixed64(id, math.Float64bits(v))
}

func (e *Encoder) String(id uint32, v string) {
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
}

func (e *Encoder) Bytes(id uint32, v []byte) {
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendLen(e.buf, v)
}

func (e *Encoder) PackedFixed32(id uint32, vs []uint32) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(4*len(vs)))
	for _, v := range vs {
		e.buf = AppendFixed32(e.buf, v)
	}
}

func (e *Encoder) PackedFixed64(id uint32, vs []uint64) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(8*len(vs)))
	for _, v := range vs {
		e.buf = AppendFixed64(e.buf, v)
	}
}

func (e *Encoder) PackedSfixed32(id uint32, vs []int32) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(4*len(vs)))
	for _, v := range vs {
		e.buf = AppendFixed32(e.buf, uint32(v))
	}
}

func (e *Encoder) PackedSfixed64(id uint32, vs []int64) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(8*len(vs)))
	for _, v := range vs {
		e.buf = AppendFixed64(e.buf, uint64(v))
	}
}

func (e *Encoder) PackedFloat(id uint32, vs []float32) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(4*len(vs)))
	for _, v := range vs {
		e.buf = AppendFloat(e.buf, v)
	}
}

func (e *Encoder) PackedDouble(id uint32, vs []float64) {
	if len(vs) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendVarint(e.buf, uint64(8*len(vs)))
	for _, v := range vs {
		e.buf = AppendDouble(e.buf, v)
	}
}

// Message encodes m into its own buffer and writes it as a length-delimited
// field.
func (e *Encoder) Message(id uint32, m Message) error {
	return e.MessageFunc(id, m.EncodeTagwire)
}

func (e *Encoder) MessageFunc(id uint32, encode func(*Encoder) error) error {
	if e.depth+1 > e.maxDepth {
		return &EncodeError{Err: ErrDepth, FieldID: id}
	}
	sub := Encoder{
		depth:    e.depth + 1,
		maxDepth: e.maxDepth,
	}
	if err := encode(&sub); err != nil {
		return err
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendLen(e.buf, sub.buf)
	return nil
}

// Packed writes a pre-built block of concatenated values as one
// length-delimited field. Empty blocks are not written.
func (e *Encoder) Packed(id uint32, block []byte) {
	if len(block) == 0 {
		return
	}
	e.buf = AppendHeader(e.buf, id, WireBytes)
	e.buf = AppendLen(e.buf, block)
}
