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
	"fmt"
	"math"
)

type DecodeCtx struct {
	// MaxDepth bounds sub-message nesting. Zero means DefaultMaxDepth.
	MaxDepth int
}

func (ctx *DecodeCtx) maxDepth() int {
	if ctx == nil || ctx.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return ctx.MaxDepth
}

// Decoder reads fields from a buffer. Values returned by View alias the
// buffer; every other accessor copies.
type Decoder struct {
	buf      []byte
	off      int
	base     int
	depth    int
	maxDepth int
	field    uint32
}

func NewDecoder(ctx *DecodeCtx, buf []byte) *Decoder {
	return &Decoder{
		buf:      buf,
		maxDepth: ctx.maxDepth(),
	}
}

func (d *Decoder) Done() bool {
	return d.off >= len(d.buf)
}

// Offset is the absolute position of the next unread byte, counted from the
// start of the outermost buffer.
func (d *Decoder) Offset() int {
	return d.base + d.off
}

func (d *Decoder) Depth() int {
	return d.depth
}

func (d *Decoder) fail(kind error, format string, args ...any) error {
	return &DecodeError{
		Err:     kind,
		Offset:  d.Offset(),
		FieldID: d.field,
		detail:  fmt.Sprintf(format, args...),
	}
}

// Next reads one field header.
func (d *Decoder) Next() (uint32, WireType, error) {
	d.field = 0
	v, n := ConsumeVarint(d.buf[d.off:])
	if n == 0 {
		return 0, 0, d.fail(ErrBadVarint, "unterminated field header")
	}
	if n < 0 {
		return 0, 0, d.fail(ErrBadVarint, "field header overflows 64 bits")
	}
	wt := WireType(v & 7)
	id := v >> 3
	if !wt.valid() {
		return 0, 0, d.fail(ErrWireType, "unknown wire type %d", uint8(wt))
	}
	if id == 0 || id > uint64(MaxFieldID) {
		return 0, 0, d.fail(ErrFieldID, "id %d out of range", id)
	}
	d.off += n
	d.field = uint32(id)
	return uint32(id), wt, nil
}

// WireTypeError reports a known field arriving with the wrong wire type.
func (d *Decoder) WireTypeError(got, want WireType) error {
	return d.fail(ErrWireType, "got %s, expected %s", got, want)
}

// Skip discards one value of the given wire type.
func (d *Decoder) Skip(wt WireType) error {
	switch wt {
	case WireVarint:
		_, err := d.Varint()
		return err
	case WireFixed32, WireFixed64:
		_, err := d.take(wt.FixedWidth())
		return err
	case WireBytes:
		_, err := d.len()
		return err
	}
	return d.fail(ErrWireType, "cannot skip wire type %d", uint8(wt))
}

func (d *Decoder) take(n int) ([]byte, error) {
	if len(d.buf)-d.off < n {
		return nil, d.fail(ErrTruncated, "need %d bytes, have %d", n, len(d.buf)-d.off)
	}
	out := d.buf[d.off : d.off+n : d.off+n]
	d.off += n
	return out, nil
}

// len reads a length-delimited value. The value ends at d.Offset(), so its
// absolute start is d.Offset()-len(value) however the length was encoded.
func (d *Decoder) len() ([]byte, error) {
	n, err := d.Varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(d.buf)-d.off) {
		return nil, d.fail(ErrLengthOverrun, "length %d, have %d", n, len(d.buf)-d.off)
	}
	return d.take(int(n))
}

func (d *Decoder) Varint() (uint64, error) {
	v, n := ConsumeVarint(d.buf[d.off:])
	if n == 0 {
		return 0, d.fail(ErrBadVarint, "unterminated varint")
	}
	if n < 0 {
		return 0, d.fail(ErrBadVarint, "varint overflows 64 bits")
	}
	d.off += n
	return v, nil
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.Varint()
	return int32(v), err
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.Varint()
	return int64(v), err
}

func (d *Decoder) Uint32() (uint32, error) {
	v, err := d.Varint()
	return uint32(v), err
}

func (d *Decoder) Uint64() (uint64, error) {
	return d.Varint()
}

func (d *Decoder) Sint32() (int32, error) {
	v, err := d.Varint()
	return DecodeZigzag32(uint32(v)), err
}

func (d *Decoder) Sint64() (int64, error) {
	v, err := d.Varint()
	return DecodeZigzag64(v), err
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.Varint()
	return v != 0, err
}

func (d *Decoder) Enum() (uint32, error) {
	v, err := d.Varint()
	return uint32(v), err
}

func (d *Decoder) Fixed32() (uint32, error) {
	buf, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return leUint32(buf), nil
}

func (d *Decoder) Fixed64() (uint64, error) {
	buf, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return leUint64(buf), nil
}

func (d *Decoder) Sfixed32() (int32, error) {
	v, err := d.Fixed32()
	return int32(v), err
}

func (d *Decoder) Sfixed64() (int64, error) {
	v, err := d.Fixed64()
	return int64(v), err
}

func (d *Decoder) Float() (float32, error) {
	v, err := d.Fixed32()
	return math.Float32frombits(v), err
}

func (d *Decoder) Double() (float64, error) {
	v, err := d.Fixed64()
	return math.Float64frombits(v), err
}

func (d *Decoder) Text() (string, error) {
	buf, err := d.len()
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *Decoder) Bytes() ([]byte, error) {
	buf, err := d.len()
	if err != nil {
		return nil, err
	}
	return append([]byte{}, buf...), nil
}

// View returns a length-delimited value without copying it.
func (d *Decoder) View() ([]byte, error) {
	return d.len()
}

func (d *Decoder) sub() (*Decoder, error) {
	if d.depth+1 > d.maxDepth {
		return nil, d.fail(ErrDepth, "limit is %d", d.maxDepth)
	}
	buf, err := d.len()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		buf:      buf,
		base:     d.Offset() - len(buf),
		depth:    d.depth + 1,
		maxDepth: d.maxDepth,
	}, nil
}

// Message decodes a length-delimited sub-message into m.
func (d *Decoder) Message(m Message) error {
	return d.MessageFunc(m.DecodeTagwire)
}

func (d *Decoder) MessageFunc(decode func(*Decoder) error) error {
	sub, err := d.sub()
	if err != nil {
		return err
	}
	return decode(sub)
}

// Repeated decodes one occurrence of a repeated scalar field whose elements
// have wire type elem. A LEN occurrence of a non-LEN element type is a packed
// block and decode is called once per element in it.
func (d *Decoder) Repeated(got, elem WireType, decode func(*Decoder) error) error {
	if got == elem {
		return decode(d)
	}
	if got != WireBytes || elem == WireBytes {
		return d.WireTypeError(got, elem)
	}
	block, err := d.len()
	if err != nil {
		return err
	}
	if w := elem.FixedWidth(); w != 0 && len(block)%w != 0 {
		return d.fail(ErrTruncated, "packed block of %d bytes is not a multiple of %d", len(block), w)
	}
	sub := &Decoder{
		buf:      block,
		base:     d.Offset() - len(block),
		depth:    d.depth,
		maxDepth: d.maxDepth,
		field:    d.field,
	}
	for !sub.Done() {
		if err := decode(sub); err != nil {
			return err
		}
	}
	return nil
}
